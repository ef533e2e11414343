package bridge

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

func pathJoin(parts ...string) (string, error) {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		if i%2 == 1 {
			if !validID(p) {
				return "", ErrMissingID
			}
			p = url.PathEscape(p)
		}
		escaped[i] = p
	}
	return strings.Join(escaped, "/"), nil
}

// CreateCustomer creates a new customer
func (c *Client) CreateCustomer(ctx context.Context, req *CreateCustomerRequest, opts *RequestOptions) (*Customer, error) {
	customer, err := As[*Customer](c.Customers().Create(ctx, req, opts))
	if err != nil {
		return nil, fmt.Errorf("create customer failed: %w", err)
	}
	return customer, nil
}

// GetCustomer retrieves a customer by ID
func (c *Client) GetCustomer(ctx context.Context, customerID string) (*Customer, error) {
	customer, err := As[*Customer](c.Customers().Get(ctx, customerID))
	if err != nil {
		return nil, fmt.Errorf("get customer failed: %w", err)
	}
	return customer, nil
}

// UpdateCustomer patches a customer
func (c *Client) UpdateCustomer(ctx context.Context, customerID string, params any, opts *RequestOptions) (*Customer, error) {
	customer, err := As[*Customer](c.Customers().Update(ctx, customerID, params, opts))
	if err != nil {
		return nil, fmt.Errorf("update customer failed: %w", err)
	}
	return customer, nil
}

// ListCustomers lists one page of customers
func (c *Client) ListCustomers(ctx context.Context, params ListParams) (*List, error) {
	return listOf(c.Customers().List(ctx, params))
}

// CustomerWallets lists the wallets of a customer
func (c *Client) CustomerWallets(ctx context.Context, customerID string, params ListParams) (*Result, error) {
	path, err := pathJoin("customers", customerID, "wallets")
	if err != nil {
		return nil, err
	}
	return c.Dispatch(ctx, http.MethodGet, path, params, nil)
}

// CreateCustomerWallet creates a custodial wallet for a customer
func (c *Client) CreateCustomerWallet(ctx context.Context, customerID string, req *CreateWalletRequest, opts *RequestOptions) (*Wallet, error) {
	path, err := pathJoin("customers", customerID, "wallets")
	if err != nil {
		return nil, err
	}
	wallet, err := As[*Wallet](c.Dispatch(ctx, http.MethodPost, path, req, withHint(opts, TypeWallet)))
	if err != nil {
		return nil, fmt.Errorf("create wallet failed: %w", err)
	}
	return wallet, nil
}

// WalletHistory lists the transactions of a wallet
func (c *Client) WalletHistory(ctx context.Context, walletID string, params ListParams) (*Result, error) {
	path, err := pathJoin("wallets", walletID, "history")
	if err != nil {
		return nil, err
	}
	return c.Dispatch(ctx, http.MethodGet, path, params, nil)
}

// WalletTotalBalances returns the balances held across all wallets. On
// success Data is a []*TotalBalance.
func (c *Client) WalletTotalBalances(ctx context.Context) (*Result, error) {
	res, err := c.Dispatch(ctx, http.MethodGet, "wallets/total_balances", nil, nil)
	if err != nil || res.Error != nil {
		return res, err
	}
	items, ok := res.Data.([]any)
	if !ok {
		return res, nil
	}
	balances := make([]*TotalBalance, 0, len(items))
	for _, item := range items {
		balances = append(balances, newTotalBalance(attributesOf(item)))
	}
	res.Data = balances
	return res, nil
}

// ExchangeRates returns the current conversion rates, e.g. {"from": "usd", "to": "eur"}
func (c *Client) ExchangeRates(ctx context.Context, params any) (*Result, error) {
	return c.Dispatch(ctx, http.MethodGet, "exchange_rates", params, nil)
}

// CustomerVirtualAccounts lists the virtual accounts of a customer
func (c *Client) CustomerVirtualAccounts(ctx context.Context, customerID string, params ListParams) (*Result, error) {
	path, err := pathJoin("customers", customerID, "virtual_accounts")
	if err != nil {
		return nil, err
	}
	return c.Dispatch(ctx, http.MethodGet, path, params, nil)
}

// CreateVirtualAccount creates a virtual account for a customer
func (c *Client) CreateVirtualAccount(ctx context.Context, customerID string, req *CreateVirtualAccountRequest, opts *RequestOptions) (*VirtualAccount, error) {
	path, err := pathJoin("customers", customerID, "virtual_accounts")
	if err != nil {
		return nil, err
	}
	va, err := As[*VirtualAccount](c.Dispatch(ctx, http.MethodPost, path, req, withHint(opts, TypeVirtualAccount)))
	if err != nil {
		return nil, fmt.Errorf("create virtual account failed: %w", err)
	}
	return va, nil
}

// GetVirtualAccount retrieves a virtual account
func (c *Client) GetVirtualAccount(ctx context.Context, customerID, virtualAccountID string) (*VirtualAccount, error) {
	path, err := pathJoin("customers", customerID, "virtual_accounts", virtualAccountID)
	if err != nil {
		return nil, err
	}
	va, err := As[*VirtualAccount](c.Dispatch(ctx, http.MethodGet, path, nil, withHint(nil, TypeVirtualAccount)))
	if err != nil {
		return nil, fmt.Errorf("get virtual account failed: %w", err)
	}
	return va, nil
}

// DeactivateVirtualAccount deactivates a virtual account
func (c *Client) DeactivateVirtualAccount(ctx context.Context, customerID, virtualAccountID string) (*VirtualAccount, error) {
	path, err := pathJoin("customers", customerID, "virtual_accounts", virtualAccountID)
	if err != nil {
		return nil, err
	}
	va, err := As[*VirtualAccount](c.Dispatch(ctx, http.MethodPost, path+"/deactivate", nil, withHint(nil, TypeVirtualAccount)))
	if err != nil {
		return nil, fmt.Errorf("deactivate virtual account failed: %w", err)
	}
	return va, nil
}

// CustomerKYCLink retrieves the hosted KYC link of a customer
func (c *Client) CustomerKYCLink(ctx context.Context, customerID string) (*Result, error) {
	path, err := pathJoin("customers", customerID, "kyc_link")
	if err != nil {
		return nil, err
	}
	return c.Dispatch(ctx, http.MethodGet, path, nil, nil)
}

// CustomerTOSLink retrieves the terms of service acceptance link of a customer
func (c *Client) CustomerTOSLink(ctx context.Context, customerID string) (*Result, error) {
	path, err := pathJoin("customers", customerID, "tos_acceptance_link")
	if err != nil {
		return nil, err
	}
	return c.Dispatch(ctx, http.MethodGet, path, nil, nil)
}

// CreateKYCLink starts a hosted KYC flow
func (c *Client) CreateKYCLink(ctx context.Context, req *CreateKYCLinkRequest, opts *RequestOptions) (*KYCLink, error) {
	link, err := As[*KYCLink](c.KYCLinks().Create(ctx, req, opts))
	if err != nil {
		return nil, fmt.Errorf("create KYC link failed: %w", err)
	}
	return link, nil
}

// CreateWebhook registers a webhook endpoint
func (c *Client) CreateWebhook(ctx context.Context, req *CreateWebhookRequest, opts *RequestOptions) (*Webhook, error) {
	webhook, err := As[*Webhook](c.Webhooks().Create(ctx, req, opts))
	if err != nil {
		return nil, fmt.Errorf("create webhook failed: %w", err)
	}
	return webhook, nil
}

// UpdateWebhook changes a webhook endpoint
func (c *Client) UpdateWebhook(ctx context.Context, webhookID string, req *UpdateWebhookRequest, opts *RequestOptions) (*Webhook, error) {
	webhook, err := As[*Webhook](c.Webhooks().Update(ctx, webhookID, req, opts))
	if err != nil {
		return nil, fmt.Errorf("update webhook failed: %w", err)
	}
	return webhook, nil
}

// WebhookEvents lists the events queued for a webhook
func (c *Client) WebhookEvents(ctx context.Context, webhookID string, params ListParams) (*Result, error) {
	path, err := pathJoin("webhooks", webhookID, "events")
	if err != nil {
		return nil, err
	}
	return c.Dispatch(ctx, http.MethodGet, path, params, nil)
}

// WebhookLogs lists recent delivery attempts of a webhook
func (c *Client) WebhookLogs(ctx context.Context, webhookID string, params ListParams) (*Result, error) {
	path, err := pathJoin("webhooks", webhookID, "logs")
	if err != nil {
		return nil, err
	}
	return c.Dispatch(ctx, http.MethodGet, path, params, nil)
}

// Ping tests connectivity to the Bridge API
func (c *Client) Ping(ctx context.Context) error {
	// Use list customers with limit 1 as a health check
	_, err := c.ListCustomers(ctx, ListParams{Limit: 1})
	return err
}

func withHint(opts *RequestOptions, hint string) *RequestOptions {
	out := RequestOptions{}
	if opts != nil {
		out = *opts
	}
	if out.ResourceHint == "" {
		out.ResourceHint = hint
	}
	return &out
}

func listOf(res *Result, err error) (*List, error) {
	if err != nil {
		return nil, err
	}
	if res.Error != nil {
		return nil, res.Error
	}
	l, ok := res.List()
	if !ok {
		return nil, &APIError{
			Kind:       ErrorKindAPI,
			StatusCode: res.StatusCode,
			Message:    "unexpected response payload: " + describe(res.Data),
		}
	}
	return l, nil
}
