package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rail-service/bridge_sdk/pkg/metrics"
	"github.com/rail-service/bridge_sdk/pkg/retry"
	"github.com/rail-service/bridge_sdk/pkg/security"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// defaultRetryAfter applies when a 429 carries no usable Retry-After header
const defaultRetryAfter = time.Second

var errServerFailure = errors.New("bridge: server error")

// RequestOptions tunes a single call
type RequestOptions struct {
	// IdempotencyKey is sent verbatim on every attempt of a mutating call.
	// When empty each attempt gets a fresh key.
	IdempotencyKey string
	// ResourceHint overrides the type derived from the request path
	ResourceHint string
	// Timeout bounds the whole call including rate-limit waits; zero uses Config.Timeout
	Timeout time.Duration
}

// Client represents a Bridge API client. It is safe for concurrent use.
type Client struct {
	config            Config
	baseURL           *url.URL
	httpClient        *http.Client
	registry          *Registry
	materializer      *Materializer
	retrier           *retry.Retrier
	breaker           *gobreaker.CircuitBreaker
	limiter           *rate.Limiter
	sleep             retry.Sleeper
	newIdempotencyKey func() string
	logger            *zap.Logger
	tracer            trace.Tracer
}

// ClientOption customises a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRegistry replaces the resource registry used for materialization
func WithRegistry(reg *Registry) ClientOption {
	return func(c *Client) {
		if reg != nil {
			c.registry = reg
		}
	}
}

// WithSleeper replaces the wait used between rate-limited attempts
func WithSleeper(s retry.Sleeper) ClientOption {
	return func(c *Client) {
		if s != nil {
			c.sleep = s
		}
	}
}

// WithIdempotencyKeyFunc replaces the generator for per-attempt idempotency keys
func WithIdempotencyKeyFunc(fn func() string) ClientOption {
	return func(c *Client) {
		if fn != nil {
			c.newIdempotencyKey = fn
		}
	}
}

// NewClient creates a new Bridge API client
func NewClient(cfg Config, logger *zap.Logger, opts ...ClientOption) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid bridge base URL %q: %w", cfg.BaseURL, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		config:            cfg,
		baseURL:           base,
		httpClient:        &http.Client{},
		registry:          DefaultRegistry(),
		sleep:             retry.ContextSleep,
		newIdempotencyKey: uuid.NewString,
		logger:            logger.Named("bridge"),
		tracer:            otel.Tracer("bridge-client"),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.materializer = NewMaterializer(c.registry, c.logger)
	c.retrier = retry.NewRetrier(retry.Policy{
		MaxRetries:    cfg.MaxRetries,
		BaseDelay:     defaultRetryAfter,
		MaxDelay:      time.Minute,
		Multiplier:    1,
		RetryableFunc: isRateLimitedAttempt,
	}, c.logger, retry.WithSleeper(c.sleep))

	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	if cfg.CircuitBreaker.Enabled {
		threshold := cfg.CircuitBreaker.ConsecutiveFailures
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "bridge-api",
			MaxRequests: 1,
			Timeout:     cfg.CircuitBreaker.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				c.logger.Warn("Circuit breaker state changed",
					zap.String("name", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			},
		})
	}

	c.logger.Debug("Bridge client initialized",
		zap.String("base_url", cfg.BaseURL),
		zap.String("api_key", security.MaskAPIKey(cfg.APIKey)),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Bool("circuit_breaker", c.breaker != nil))

	return c, nil
}

// NewDefaultClient creates a client from the process-wide default configuration
func NewDefaultClient(logger *zap.Logger, opts ...ClientOption) (*Client, error) {
	return NewClient(DefaultConfig(), logger, opts...)
}

// Config returns the client configuration with defaults applied
func (c *Client) Config() Config {
	return c.config
}

// Registry returns the registry used to materialize responses
func (c *Client) Registry() *Registry {
	return c.registry
}

// Dispatch sends one logical API call and returns its outcome.
//
// GET and DELETE encode payload as query parameters, every other verb as a
// JSON body. A 429 response is resubmitted after the server's Retry-After
// delay up to Config.MaxRetries times. HTTP and transport failures are
// reported in Result.Error; the returned error is reserved for calls that
// could not be built at all.
func (c *Client) Dispatch(ctx context.Context, method, endpoint string, payload any, opts *RequestOptions) (*Result, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}
	method = strings.ToUpper(method)

	target, path, err := c.resolve(endpoint)
	if err != nil {
		return nil, err
	}
	body, err := c.encodePayload(method, payload, target)
	if err != nil {
		return nil, err
	}

	hint := opts.ResourceHint
	if hint == "" {
		hint = ResourceHintForPath(c.registry, path)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = c.config.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ctx, span := c.tracer.Start(ctx, "bridge.dispatch", trace.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("bridge.path", path),
		attribute.String("bridge.resource", hint),
	))
	defer span.End()

	start := time.Now()
	raw, err := c.send(ctx, method, target.String(), body, opts)

	var res *Result
	if err != nil {
		res = &Result{Error: transportError(err)}
	} else {
		res = c.buildResult(raw, hint)
	}

	c.observe(span, method, hint, res, time.Since(start))
	return res, nil
}

// resolve joins endpoint onto the base URL. It returns the absolute target
// and the path relative to the API base.
func (c *Client) resolve(endpoint string) (*url.URL, string, error) {
	if strings.TrimSpace(endpoint) == "" || strings.Contains(endpoint, "://") || strings.HasPrefix(endpoint, "//") {
		return nil, "", fmt.Errorf("%w: %q", ErrInvalidEndpoint, endpoint)
	}
	ref, err := url.Parse(endpoint)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}

	// Work on the escaped form so an escaped "/" inside an id stays part of
	// that segment.
	path := strings.Trim(ref.EscapedPath(), "/")
	basePath := strings.Trim(c.baseURL.EscapedPath(), "/")
	if basePath != "" {
		path = strings.TrimPrefix(path, basePath+"/")
	}
	if path == "" {
		return nil, "", fmt.Errorf("%w: %q", ErrInvalidEndpoint, endpoint)
	}
	decoded, err := url.PathUnescape(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}

	u := *c.baseURL
	u.Path = strings.TrimRight(c.baseURL.Path, "/") + "/" + decoded
	u.RawPath = strings.TrimRight(c.baseURL.EscapedPath(), "/") + "/" + path
	u.RawQuery = ref.RawQuery
	return &u, path, nil
}

// encodePayload returns the JSON body for mutating verbs, or merges payload
// into target's query for GET and DELETE.
func (c *Client) encodePayload(method string, payload any, target *url.URL) ([]byte, error) {
	switch method {
	case http.MethodGet, http.MethodDelete, http.MethodHead:
		values, err := encodeQuery(payload)
		if err != nil {
			return nil, err
		}
		if len(values) > 0 {
			q := target.Query()
			for k, vs := range values {
				for _, v := range vs {
					q.Add(k, v)
				}
			}
			target.RawQuery = q.Encode()
		}
		return nil, nil
	}

	switch p := payload.(type) {
	case nil:
		return nil, nil
	case []byte:
		return p, nil
	case json.RawMessage:
		return p, nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return body, nil
}

type rawResponse struct {
	status int
	header http.Header
	body   []byte
}

// rateLimitedAttempt marks a 429 that should be resubmitted after wait
type rateLimitedAttempt struct {
	wait time.Duration
}

func (e *rateLimitedAttempt) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.wait)
}

func (e *rateLimitedAttempt) RetryAfter() time.Duration { return e.wait }

func isRateLimitedAttempt(err error) bool {
	var limited *rateLimitedAttempt
	return errors.As(err, &limited)
}

// send runs the attempt loop. Once retries are exhausted the last 429 is
// returned like any other response.
func (c *Client) send(ctx context.Context, method, target string, body []byte, opts *RequestOptions) (*rawResponse, error) {
	var last *rawResponse
	err := c.retrier.Do(ctx, func(attempt int) error {
		resp, err := c.attempt(ctx, method, target, body, opts, attempt)
		if err != nil {
			return err
		}
		last = resp
		if resp.status != http.StatusTooManyRequests {
			return nil
		}
		if attempt < c.config.MaxRetries {
			metrics.BridgeRateLimitRetriesTotal.WithLabelValues(method).Inc()
		}
		return &rateLimitedAttempt{wait: retryAfter(resp.header)}
	})

	if isRateLimitedAttempt(err) {
		return last, nil
	}
	if err != nil {
		return nil, err
	}
	return last, nil
}

func (c *Client) attempt(ctx context.Context, method, target string, body []byte, opts *RequestOptions, attempt int) (*rawResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("client rate limiter: %v: %w", err, context.DeadlineExceeded)
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Api-Key", c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	if isMutating(method) {
		key := opts.IdempotencyKey
		if key == "" {
			key = c.newIdempotencyKey()
		}
		req.Header.Set("Idempotency-Key", key)
	}

	c.logger.Debug("Sending Bridge API request",
		zap.String("method", method),
		zap.String("url", target),
		zap.Int("attempt", attempt))

	if c.breaker == nil {
		return c.roundTrip(req)
	}

	// Transport errors and 5xx count against the breaker; the response is
	// still handed back to the caller for classification.
	var captured *rawResponse
	_, err = c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.roundTrip(req)
		if err != nil {
			return nil, err
		}
		captured = resp
		if resp.status >= http.StatusInternalServerError {
			return nil, errServerFailure
		}
		return resp, nil
	})
	if captured != nil {
		return captured, nil
	}
	return nil, err
}

func (c *Client) roundTrip(req *http.Request) (*rawResponse, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("Received Bridge API response",
		zap.Int("status_code", resp.StatusCode),
		zap.Int("body_size", len(body)))

	return &rawResponse{status: resp.StatusCode, header: resp.Header, body: body}, nil
}

func (c *Client) buildResult(raw *rawResponse, hint string) *Result {
	res := &Result{StatusCode: raw.status, Header: raw.header}
	decoded := decodeBody(raw.body)

	if apiErr := Classify(raw.status, decoded, raw.header); apiErr != nil {
		c.logger.Debug("Bridge API error body",
			zap.Int("status_code", raw.status),
			zap.Any("body", security.SanitizeForLog(decoded)))
		res.Error = apiErr
		return res
	}
	if decoded != nil {
		res.Data = c.materializer.Materialize(decoded, hint)
	}
	return res
}

func (c *Client) observe(span trace.Span, method, hint string, res *Result, elapsed time.Duration) {
	resource := hint
	if resource == "" {
		resource = "untyped"
	}
	outcome := "success"
	if res.Error != nil {
		outcome = string(res.Error.Kind)
	}
	metrics.BridgeRequestsTotal.WithLabelValues(method, resource, outcome).Inc()
	metrics.BridgeRequestDuration.WithLabelValues(method, resource).Observe(elapsed.Seconds())

	if res.StatusCode != 0 {
		span.SetAttributes(attribute.Int("http.status_code", res.StatusCode))
	}
	if res.Error != nil {
		span.SetStatus(codes.Error, res.Error.Message)
		c.logger.Warn("Bridge API call failed",
			zap.String("method", method),
			zap.String("resource", resource),
			zap.String("kind", string(res.Error.Kind)),
			zap.Int("status_code", res.StatusCode),
			zap.String("message", security.MaskString(res.Error.Message)))
		return
	}
	span.SetStatus(codes.Ok, "")
}

// decodeBody parses a JSON body with numbers kept exact. Bodies that are not
// JSON come back as a string; empty bodies as nil.
func decodeBody(body []byte) any {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return string(body)
	}
	return v
}

// retryAfter reads Retry-After as whole seconds
func retryAfter(header http.Header) time.Duration {
	v := strings.TrimSpace(header.Get("Retry-After"))
	if v == "" {
		return defaultRetryAfter
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return defaultRetryAfter
	}
	return time.Duration(secs) * time.Second
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}
