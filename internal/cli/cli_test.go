package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rail-service/bridge_sdk/internal/infrastructure/config"
	"github.com/rail-service/bridge_sdk/pkg/bridge"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Environment: "test",
		LogLevel:    "error",
		Bridge: config.BridgeConfig{
			APIKey:  "test-api-key",
			BaseURL: baseURL,
			Timeout: 5,
		},
	}
}

// runCLI executes bridgectl against handler and returns stdout and the command error
func runCLI(t *testing.T, handler http.HandlerFunc, args ...string) (string, error) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	a := &app{
		loadConfig: func() (*config.Config, error) { return testConfig(server.URL + "/v0"), nil },
		clientOptions: []bridge.ClientOption{
			bridge.WithSleeper(func(ctx context.Context, _ time.Duration) error { return ctx.Err() }),
		},
	}
	cmd := newRootCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestResourcesCommandRunsOffline(t *testing.T) {
	a := &app{loadConfig: func() (*config.Config, error) {
		return nil, errors.New("config must not be loaded")
	}}
	cmd := newRootCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"resources"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "customers")
	assert.Contains(t, out.String(), "list|get|create|update|delete")
	assert.Contains(t, out.String(), "kyc_links")
}

func TestListCommand(t *testing.T) {
	out, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v0/customers", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, `{"count":1,"data":[{"id":"cus_1","email":"a@example.com"}]}`)
	}, "list", "customers", "--limit", "2")

	require.NoError(t, err)
	assert.Contains(t, out, `"id": "cus_1"`)
	assert.Contains(t, out, `"email": "a@example.com"`)
}

func TestListCommandAllPages(t *testing.T) {
	var mu sync.Mutex
	var cursors []string
	out, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		cursor := r.URL.Query().Get("starting_after")
		mu.Lock()
		cursors = append(cursors, cursor)
		mu.Unlock()
		if cursor == "" {
			writeJSON(w, http.StatusOK, `{"has_more":true,"data":[{"id":"cus_1"},{"id":"cus_2"}]}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"has_more":false,"data":[{"id":"cus_3"}]}`)
	}, "list", "customers", "--all")

	require.NoError(t, err)
	mu.Lock()
	assert.Equal(t, []string{"", "cus_2"}, cursors)
	mu.Unlock()

	var items []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 3)
	assert.Equal(t, "cus_3", items[2]["id"])
}

func TestGetCommandUnknownResource(t *testing.T) {
	_, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	}, "get", "planets", "p_1")

	assert.ErrorIs(t, err, bridge.ErrUnknownResource)
}

func TestGetCommandNotFound(t *testing.T) {
	_, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v0/customers/cus_missing", r.URL.Path)
		writeJSON(w, http.StatusNotFound, `{"code":"not_found","message":"Customer not found"}`)
	}, "get", "customers", "cus_missing")

	var apiErr *bridge.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNotFound())
	assert.Equal(t, "Customer not found", apiErr.Message)
}

func TestGetCommandUnauthorizedHint(t *testing.T) {
	_, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"message":"bad key"}`)
	}, "get", "customers", "cus_1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "check BRIDGE_API_KEY")
}

func TestGetCommandDump(t *testing.T) {
	out, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":"cus_1","email":"a@example.com"}`)
	}, "get", "customers", "cus_1", "--dump")

	require.NoError(t, err)
	assert.Contains(t, out, "bridge.Customer")
	assert.Contains(t, out, "a@example.com")
}

func TestCreateCommand(t *testing.T) {
	out, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v0/webhooks", r.URL.Path)
		assert.Equal(t, "key-1", r.Header.Get("Idempotency-Key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "https://example.com/hook", body["url"])

		writeJSON(w, http.StatusCreated, `{"id":"wep_1","url":"https://example.com/hook","status":"disabled"}`)
	}, "create", "webhooks", "--data", `{"url":"https://example.com/hook"}`, "--idempotency-key", "key-1")

	require.NoError(t, err)
	assert.Contains(t, out, `"id": "wep_1"`)
}

func TestCreateCommandRejectsInvalidJSON(t *testing.T) {
	_, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	}, "create", "customers", "--data", `{"email":`)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "valid JSON")
}

func TestUpdateCommand(t *testing.T) {
	out, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/v0/customers/cus_1", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"id":"cus_1","email":"new@example.com"}`)
	}, "update", "customers", "cus_1", "-d", `{"email":"new@example.com"}`)

	require.NoError(t, err)
	assert.Contains(t, out, "new@example.com")
}

func TestUpdateCommandUnsupportedOperation(t *testing.T) {
	_, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	}, "update", "lists", "l_1", "-d", `{}`)

	assert.ErrorIs(t, err, bridge.ErrOperationNotSupported)
}

func TestDeleteCommand(t *testing.T) {
	out, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/v0/webhooks/wep_1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}, "delete", "webhooks", "wep_1")

	require.NoError(t, err)
	assert.Equal(t, "ok (status 204)\n", out)
}

func TestBalancesCommand(t *testing.T) {
	out, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v0/wallets/total_balances", r.URL.Path)
		writeJSON(w, http.StatusOK, `[{"balance":"12.50","currency":"usdc","chain":"solana"}]`)
	}, "balances")

	require.NoError(t, err)
	assert.Contains(t, out, `"balance": "12.50"`)
}

func TestRatesCommand(t *testing.T) {
	out, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v0/exchange_rates", r.URL.Path)
		assert.Equal(t, "usd", r.URL.Query().Get("from"))
		assert.Equal(t, "mxn", r.URL.Query().Get("to"))
		writeJSON(w, http.StatusOK, `{"midmarket_rate":"17.1","buy_rate":"17.2","sell_rate":"17.0"}`)
	}, "rates", "--to", "mxn")

	require.NoError(t, err)
	assert.Contains(t, out, "midmarket_rate")
}

func TestCustomerWalletsCommand(t *testing.T) {
	out, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v0/customers/cus_1/wallets", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"data":[{"id":"wal_1","chain":"solana","address":"So1"}]}`)
	}, "customer-wallets", "cus_1")

	require.NoError(t, err)
	assert.Contains(t, out, "wal_1")
}

func TestOnboardCommand(t *testing.T) {
	out, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v0/customers":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "jane@example.com", body["email"])
			assert.Equal(t, "individual", body["type"])
			writeJSON(w, http.StatusCreated, `{"id":"cus_9","email":"jane@example.com"}`)
		case "/v0/customers/cus_9/wallets":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "solana", body["chain"])
			writeJSON(w, http.StatusCreated, `{"id":"wal_9","chain":"solana","address":"So9"}`)
		case "/v0/customers/cus_9/kyc_link":
			writeJSON(w, http.StatusOK, `{"url":"https://bridge.example/kyc"}`)
		case "/v0/customers/cus_9/tos_acceptance_link":
			writeJSON(w, http.StatusOK, `{"url":"https://bridge.example/tos"}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}, "onboard", "--email", "jane@example.com", "--first-name", "Jane", "--chain", "solana")

	require.NoError(t, err)
	var resp map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "https://bridge.example/kyc", resp["kyc_link"])
	assert.Equal(t, "https://bridge.example/tos", resp["tos_link"])
	assert.Equal(t, "So9", resp["wallet"].(map[string]any)["address"])
}

func TestPingCommand(t *testing.T) {
	out, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v0/customers", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, `{"data":[]}`)
	}, "ping")

	require.NoError(t, err)
	assert.Equal(t, "pong\n", out)
}

func TestBaseURLFlagOverridesConfig(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":[]}`)
	}))
	defer server.Close()

	a := &app{loadConfig: func() (*config.Config, error) {
		return testConfig("http://127.0.0.1:1/v0"), nil
	}}
	cmd := newRootCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"ping", "--base-url", server.URL + "/v0", "--timeout", "3s"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, server.URL+"/v0", a.client.Config().BaseURL)
	assert.Equal(t, 3*time.Second, a.client.Config().Timeout)
}

func TestSetupFailsWithoutConfig(t *testing.T) {
	a := &app{loadConfig: func() (*config.Config, error) { return nil, config.ErrMissingAPIKey }}
	cmd := newRootCmd(a)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"ping"})

	err := cmd.Execute()
	assert.ErrorIs(t, err, config.ErrMissingAPIKey)
}
