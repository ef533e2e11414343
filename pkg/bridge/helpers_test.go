package bridge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// recordingSleeper captures requested waits without blocking
type recordingSleeper struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.waits = append(s.waits, d)
	s.mu.Unlock()
	return ctx.Err()
}

func (s *recordingSleeper) Waits() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.waits...)
}

func setupTestClient(t *testing.T, handler http.HandlerFunc, opts ...ClientOption) (*Client, *httptest.Server, *recordingSleeper) {
	t.Helper()
	return setupConfiguredClient(t, handler, nil, opts...)
}

func setupConfiguredClient(t *testing.T, handler http.HandlerFunc, configure func(*Config), opts ...ClientOption) (*Client, *httptest.Server, *recordingSleeper) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sleeper := &recordingSleeper{}
	config := Config{
		APIKey:  "test-api-key",
		BaseURL: server.URL + "/v0",
		Timeout: 5 * time.Second,
	}
	if configure != nil {
		configure(&config)
	}
	opts = append([]ClientOption{WithSleeper(sleeper.Sleep)}, opts...)
	client, err := NewClient(config, zaptest.NewLogger(t), opts...)
	require.NoError(t, err)
	return client, server, sleeper
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
