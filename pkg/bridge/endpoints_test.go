package bridge

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpointTable(t *testing.T) {
	names := []string{
		"batch_settlements", "cards", "crypto_return_policies", "customers", "developers",
		"external_accounts", "funds_requests", "kyc_links", "liquidation_addresses", "lists",
		"prefunded_accounts", "rewards", "static_memos", "transfers", "virtual_accounts",
		"wallets", "webhooks",
	}
	var got []string
	for _, e := range Endpoints() {
		got = append(got, e.Name)
	}
	assert.Equal(t, names, got)

	lists, ok := LookupEndpoint("lists")
	require.True(t, ok)
	assert.True(t, lists.Supports(OpList|OpGet))
	assert.False(t, lists.Supports(OpCreate))

	customers, _ := LookupEndpoint("customers")
	assert.True(t, customers.Supports(OpUpdate|OpDelete))
	assert.Equal(t, "list|get|create|update|delete", customers.Operations.String())
}

func TestClient_ResourceUnknown(t *testing.T) {
	client, _, _ := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := client.Resource("payments")
	assert.ErrorIs(t, err, ErrUnknownResource)
}

func TestResourceService_ProgrammerErrors(t *testing.T) {
	client, _, _ := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})
	ctx := context.Background()

	lists, err := client.Resource("lists")
	require.NoError(t, err)
	_, err = lists.Create(ctx, Params{"name": "x"}, nil)
	assert.ErrorIs(t, err, ErrOperationNotSupported)

	_, err = client.Wallets().Update(ctx, "wal_1", Params{}, nil)
	assert.ErrorIs(t, err, ErrOperationNotSupported)

	_, err = client.Customers().Get(ctx, " ")
	assert.ErrorIs(t, err, ErrMissingID)

	_, err = client.Webhooks().Delete(ctx, "")
	assert.ErrorIs(t, err, ErrMissingID)
}

func TestResourceService_CRUD(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v0/webhooks":
			writeJSON(w, http.StatusOK, `{"data":[{"id":"wh_1","url":"https://a"}],"count":1}`)
		case r.Method == http.MethodGet && r.URL.Path == "/v0/webhooks/wh_1":
			writeJSON(w, http.StatusOK, `{"id":"wh_1","url":"https://a","status":"active"}`)
		case r.Method == http.MethodPost && r.URL.Path == "/v0/webhooks":
			assert.NotEmpty(t, r.Header.Get("Idempotency-Key"))
			writeJSON(w, http.StatusCreated, `{"id":"wh_2","url":"https://b","status":"disabled"}`)
		case r.Method == http.MethodPatch && r.URL.Path == "/v0/webhooks/wh_1":
			writeJSON(w, http.StatusOK, `{"id":"wh_1","url":"https://a","status":"disabled"}`)
		case r.Method == http.MethodDelete && r.URL.Path == "/v0/webhooks/wh_1":
			writeJSON(w, http.StatusOK, `{"id":"wh_1","deleted":true}`)
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	}

	client, _, _ := setupTestClient(t, handler)
	ctx := context.Background()
	svc := client.Webhooks()

	res, err := svc.List(ctx, nil)
	require.NoError(t, err)
	list, ok := res.List()
	require.True(t, ok)
	assert.IsType(t, &Webhook{}, list.First())

	webhook, err := As[*Webhook](svc.Get(ctx, "wh_1"))
	require.NoError(t, err)
	assert.Equal(t, "active", webhook.Status())

	created, err := client.CreateWebhook(ctx, &CreateWebhookRequest{URL: "https://b"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "wh_2", created.ID())

	updated, err := client.UpdateWebhook(ctx, "wh_1", &UpdateWebhookRequest{Status: "disabled"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "disabled", updated.Status())

	res, err = svc.Delete(ctx, "wh_1")
	require.NoError(t, err)
	assert.True(t, res.Success())
}

func TestClient_UpdateObjectMergesAttributes(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/v0/customers/cust_1", r.URL.Path)

		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, "Janet", body["first_name"])

		writeJSON(w, http.StatusOK, `{"id":"cust_1","first_name":"Janet","status":"under_review"}`)
	}

	client, _, _ := setupTestClient(t, handler)
	customer := DefaultRegistry().constructors[TypeCustomer](Attributes{
		"id":         "cust_1",
		"first_name": "Jane",
		"email":      "jane@example.com",
	}).(*Customer)

	res, err := client.UpdateObject(context.Background(), customer, Params{"first_name": "Janet"}, nil)
	require.NoError(t, err)
	require.True(t, res.Success())

	assert.Equal(t, "Janet", customer.FirstName())
	assert.Equal(t, CustomerStatusUnderReview, customer.Status())
	assert.Equal(t, "jane@example.com", customer.Email())
}

func TestClient_UpdateObjectFailureLeavesObject(t *testing.T) {
	client, _, _ := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"message":"nope"}`)
	})
	customer := &Customer{Resource: newResource(TypeCustomer, Attributes{"id": "cust_1", "first_name": "Jane"})}

	res, err := client.UpdateObject(context.Background(), customer, Params{"first_name": "Janet"}, nil)
	require.NoError(t, err)
	assert.Equal(t, ErrorKindBadRequest, res.Error.Kind)
	assert.Equal(t, "Jane", customer.FirstName())
}

func TestClient_DeleteObjectMarksDeleted(t *testing.T) {
	client, _, _ := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/v0/webhooks/wh_1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})
	webhook := &Webhook{Resource: newResource(TypeWebhook, Attributes{"id": "wh_1"})}

	res, err := client.DeleteObject(context.Background(), webhook)
	require.NoError(t, err)
	assert.True(t, res.Success())
	assert.True(t, webhook.Deleted())
	assert.Equal(t, true, webhook.Attributes()["deleted"])
}

func TestClient_InstanceOperationErrors(t *testing.T) {
	client, _, _ := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})
	ctx := context.Background()

	noID := &Customer{Resource: newResource(TypeCustomer, Attributes{"email": "x"})}
	_, err := client.UpdateObject(ctx, noID, Params{}, nil)
	assert.ErrorIs(t, err, ErrMissingID)

	wallet := &Wallet{Resource: newResource(TypeWallet, Attributes{"id": "wal_1"})}
	_, err = client.DeleteObject(ctx, wallet)
	assert.ErrorIs(t, err, ErrOperationNotSupported)

	event := &WebhookEvent{Resource: newResource(TypeWebhookEvent, Attributes{"id": "evt_1"})}
	_, err = client.DeleteObject(ctx, event)
	assert.ErrorIs(t, err, ErrUnknownResource)
}

func TestResourceService_EscapesIDs(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	client, _, _ := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Method+" "+r.URL.EscapedPath())
		mu.Unlock()
		writeJSON(w, http.StatusOK, `{"id":"a/b"}`)
	})
	ctx := context.Background()

	res, err := client.Customers().Get(ctx, "a/b")
	require.NoError(t, err)
	require.Nil(t, res.Error)
	_, err = client.Customers().Delete(ctx, "c1/wallets/w1")
	require.NoError(t, err)
	_, err = client.CustomerWallets(ctx, "c 1/x", ListParams{})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"GET /v0/customers/a%2Fb",
		"DELETE /v0/customers/c1%2Fwallets%2Fw1",
		"GET /v0/customers/c%201%2Fx/wallets",
	}, seen)
}

func TestResourceService_RejectsDotSegmentIDs(t *testing.T) {
	client, _, _ := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	})
	ctx := context.Background()

	for _, id := range []string{".", "..", " .. "} {
		_, err := client.Customers().Get(ctx, id)
		assert.ErrorIs(t, err, ErrMissingID, "get %q", id)

		_, err = client.Customers().Delete(ctx, id)
		assert.ErrorIs(t, err, ErrMissingID, "delete %q", id)

		_, err = client.CustomerWallets(ctx, id, ListParams{})
		assert.ErrorIs(t, err, ErrMissingID, "wallets %q", id)
	}
}
