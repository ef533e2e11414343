package bridge

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// Operation is a bit set of the CRUD calls an endpoint accepts
type Operation uint8

const (
	OpList Operation = 1 << iota
	OpGet
	OpCreate
	OpUpdate
	OpDelete

	opRead  = OpList | OpGet
	opWrite = opRead | OpCreate
	opAll   = opWrite | OpUpdate | OpDelete
)

func (o Operation) String() string {
	names := []string{}
	for _, op := range []struct {
		bit  Operation
		name string
	}{
		{OpList, "list"}, {OpGet, "get"}, {OpCreate, "create"}, {OpUpdate, "update"}, {OpDelete, "delete"},
	} {
		if o&op.bit != 0 {
			names = append(names, op.name)
		}
	}
	return strings.Join(names, "|")
}

// Endpoint describes one top-level collection of the API
type Endpoint struct {
	Name          string
	Path          string
	Discriminator string
	Operations    Operation
}

// Supports reports whether every operation in op is allowed
func (e Endpoint) Supports(op Operation) bool {
	return e.Operations&op == op
}

var endpointTable = map[string]Endpoint{
	"kyc_links":              {Name: "kyc_links", Path: "kyc_links", Discriminator: TypeKYCLink, Operations: opWrite},
	"wallets":                {Name: "wallets", Path: "wallets", Discriminator: TypeWallet, Operations: opWrite},
	"customers":              {Name: "customers", Path: "customers", Discriminator: TypeCustomer, Operations: opAll},
	"transfers":              {Name: "transfers", Path: "transfers", Discriminator: "transfer", Operations: opAll},
	"external_accounts":      {Name: "external_accounts", Path: "external_accounts", Discriminator: "external_account", Operations: opAll},
	"virtual_accounts":       {Name: "virtual_accounts", Path: "virtual_accounts", Discriminator: TypeVirtualAccount, Operations: opWrite},
	"cards":                  {Name: "cards", Path: "cards", Discriminator: "card", Operations: opWrite},
	"prefunded_accounts":     {Name: "prefunded_accounts", Path: "prefunded_accounts", Discriminator: "prefunded_account", Operations: opWrite},
	"liquidation_addresses":  {Name: "liquidation_addresses", Path: "liquidation_addresses", Discriminator: "liquidation_address", Operations: opWrite},
	"static_memos":           {Name: "static_memos", Path: "static_memos", Discriminator: "static_memo", Operations: opWrite},
	"batch_settlements":      {Name: "batch_settlements", Path: "batch_settlements", Discriminator: "batch_settlement", Operations: opWrite},
	"funds_requests":         {Name: "funds_requests", Path: "funds_requests", Discriminator: "funds_request", Operations: opWrite},
	"webhooks":               {Name: "webhooks", Path: "webhooks", Discriminator: TypeWebhook, Operations: opAll},
	"crypto_return_policies": {Name: "crypto_return_policies", Path: "crypto_return_policies", Discriminator: "crypto_return_policy", Operations: opWrite},
	"rewards":                {Name: "rewards", Path: "rewards", Discriminator: TypeRewardRate, Operations: opWrite},
	"developers":             {Name: "developers", Path: "developers", Discriminator: "developer", Operations: opWrite},
	"lists":                  {Name: "lists", Path: "lists", Discriminator: ListType, Operations: opRead},
}

// LookupEndpoint returns the endpoint registered under its plural name
func LookupEndpoint(name string) (Endpoint, bool) {
	e, ok := endpointTable[name]
	return e, ok
}

// Endpoints returns every endpoint sorted by name
func Endpoints() []Endpoint {
	out := make([]Endpoint, 0, len(endpointTable))
	for _, e := range endpointTable {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func endpointForDiscriminator(discriminator string) (Endpoint, bool) {
	for _, e := range endpointTable {
		if e.Discriminator == discriminator {
			return e, true
		}
	}
	return Endpoint{}, false
}

// ResourceService performs CRUD calls against one endpoint
type ResourceService struct {
	client   *Client
	endpoint Endpoint
}

// Resource returns the service for the named endpoint
func (c *Client) Resource(name string) (*ResourceService, error) {
	e, ok := LookupEndpoint(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownResource, name)
	}
	return &ResourceService{client: c, endpoint: e}, nil
}

func (c *Client) mustResource(name string) *ResourceService {
	svc, err := c.Resource(name)
	if err != nil {
		panic(err)
	}
	return svc
}

func (c *Client) Customers() *ResourceService        { return c.mustResource("customers") }
func (c *Client) Wallets() *ResourceService          { return c.mustResource("wallets") }
func (c *Client) Webhooks() *ResourceService         { return c.mustResource("webhooks") }
func (c *Client) KYCLinks() *ResourceService         { return c.mustResource("kyc_links") }
func (c *Client) VirtualAccounts() *ResourceService  { return c.mustResource("virtual_accounts") }
func (c *Client) Transfers() *ResourceService        { return c.mustResource("transfers") }
func (c *Client) ExternalAccounts() *ResourceService { return c.mustResource("external_accounts") }

// Endpoint returns the endpoint the service talks to
func (s *ResourceService) Endpoint() Endpoint { return s.endpoint }

// List fetches one page of the collection
func (s *ResourceService) List(ctx context.Context, params any) (*Result, error) {
	if err := s.check(OpList); err != nil {
		return nil, err
	}
	return s.client.Dispatch(ctx, http.MethodGet, s.endpoint.Path, params, s.options(nil))
}

// Get fetches one resource by id
func (s *ResourceService) Get(ctx context.Context, id string) (*Result, error) {
	if err := s.check(OpGet); err != nil {
		return nil, err
	}
	path, err := s.itemPath(id)
	if err != nil {
		return nil, err
	}
	return s.client.Dispatch(ctx, http.MethodGet, path, nil, s.options(nil))
}

// Create posts a new resource
func (s *ResourceService) Create(ctx context.Context, payload any, opts *RequestOptions) (*Result, error) {
	if err := s.check(OpCreate); err != nil {
		return nil, err
	}
	return s.client.Dispatch(ctx, http.MethodPost, s.endpoint.Path, payload, s.options(opts))
}

// Update patches an existing resource
func (s *ResourceService) Update(ctx context.Context, id string, payload any, opts *RequestOptions) (*Result, error) {
	if err := s.check(OpUpdate); err != nil {
		return nil, err
	}
	path, err := s.itemPath(id)
	if err != nil {
		return nil, err
	}
	return s.client.Dispatch(ctx, http.MethodPatch, path, payload, s.options(opts))
}

// Delete removes a resource
func (s *ResourceService) Delete(ctx context.Context, id string) (*Result, error) {
	if err := s.check(OpDelete); err != nil {
		return nil, err
	}
	path, err := s.itemPath(id)
	if err != nil {
		return nil, err
	}
	return s.client.Dispatch(ctx, http.MethodDelete, path, nil, s.options(nil))
}

func (s *ResourceService) check(op Operation) error {
	if !s.endpoint.Supports(op) {
		return fmt.Errorf("%w: %s on %s", ErrOperationNotSupported, op, s.endpoint.Name)
	}
	return nil
}

func (s *ResourceService) itemPath(id string) (string, error) {
	if !validID(id) {
		return "", ErrMissingID
	}
	return s.endpoint.Path + "/" + url.PathEscape(id), nil
}

// options fills in the endpoint's discriminator as the resource hint
func (s *ResourceService) options(opts *RequestOptions) *RequestOptions {
	out := RequestOptions{}
	if opts != nil {
		out = *opts
	}
	if out.ResourceHint == "" && s.client.registry.Has(s.endpoint.Discriminator) {
		out.ResourceHint = s.endpoint.Discriminator
	}
	return &out
}

// UpdateObject sends params as a PATCH for obj and merges the returned
// attributes into obj.
func (c *Client) UpdateObject(ctx context.Context, obj Object, params any, opts *RequestOptions) (*Result, error) {
	target, svc, err := c.instanceTarget(obj)
	if err != nil {
		return nil, err
	}
	res, err := svc.Update(ctx, target.ID(), params, opts)
	if err != nil || res.Error != nil {
		return res, err
	}
	if attrs := attributesOf(res.Data); attrs != nil {
		target.merge(attrs)
	}
	return res, nil
}

// DeleteObject deletes obj on the server and marks it deleted locally
func (c *Client) DeleteObject(ctx context.Context, obj Object) (*Result, error) {
	target, svc, err := c.instanceTarget(obj)
	if err != nil {
		return nil, err
	}
	res, err := svc.Delete(ctx, target.ID())
	if err != nil || res.Error != nil {
		return res, err
	}
	target.markDeleted()
	return res, nil
}

func (c *Client) instanceTarget(obj Object) (*Resource, *ResourceService, error) {
	m, ok := obj.(mutableObject)
	if !ok || m.base() == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrOperationNotSupported, describe(obj))
	}
	target := m.base()
	if target.ID() == "" {
		return nil, nil, ErrMissingID
	}
	e, ok := endpointForDiscriminator(target.Type())
	if !ok {
		return nil, nil, fmt.Errorf("%w: no endpoint for %q", ErrUnknownResource, target.Type())
	}
	return target, &ResourceService{client: c, endpoint: e}, nil
}

// validID rejects blank ids and the dot segments "." and ".."
func validID(id string) bool {
	switch strings.TrimSpace(id) {
	case "", ".", "..":
		return false
	}
	return true
}
