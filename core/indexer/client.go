// Package indexer queries GeoAttest indexer deployments over their REST
// API. The client wraps every call in a circuit breaker and bounded
// exponential retry; the watcher polls for attestations on a schedule and
// streams previously unseen records to a callback.
package indexer

import (
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

	"github.com/cenkalti/backoff/v4"
	"github.com/golang-sql/civil"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/geoattest/sdk-go/core/types"
	"github.com/geoattest/sdk-go/internal/metrics"
)

const (
	// DefaultTimeout bounds a single HTTP attempt.
	DefaultTimeout = 10 * time.Second

	// MaxResponseSize caps indexer responses at 32MB. Attestation pages
	// with inline media stay well under this.
	MaxResponseSize = 32 * 1024 * 1024

	// UserAgent identifies the SDK to indexer operators.
	UserAgent = "geoattest-sdk-go/1.0"

	// DefaultMaxRetries bounds retry attempts per call, not counting the
	// initial attempt.
	DefaultMaxRetries = 3
)

// Circuit breaker configuration constants.
const (
	DefaultCircuitBreakerMaxRequests  = 3
	DefaultCircuitBreakerInterval     = 10 * time.Second
	DefaultCircuitBreakerTimeout      = 60 * time.Second
	DefaultCircuitBreakerFailureRatio = 0.6
)

const listPath = "/api/v0/attestations"

// QueryFilter narrows a ListAttestations call. Zero values mean "no
// constraint".
type QueryFilter struct {
	Chain        string
	Attester     string
	Recipient    string
	LocationType string

	// FromDate and ToDate bound the attestation creation date, inclusive.
	FromDate civil.Date
	ToDate   civil.Date

	Limit  int
	Offset int
}

func (f QueryFilter) values() url.Values {
	v := url.Values{}
	if f.Chain != "" {
		v.Set("chain", f.Chain)
	}
	if f.Attester != "" {
		v.Set("attester", f.Attester)
	}
	if f.Recipient != "" {
		v.Set("recipient", f.Recipient)
	}
	if f.LocationType != "" {
		v.Set("location_type", f.LocationType)
	}
	if f.FromDate.IsValid() {
		v.Set("from_date", f.FromDate.String())
	}
	if f.ToDate.IsValid() {
		v.Set("to_date", f.ToDate.String())
	}
	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset > 0 {
		v.Set("offset", strconv.Itoa(f.Offset))
	}
	return v
}

// ListResult is one page of attestations plus the total match count the
// indexer reports for the filter.
type ListResult struct {
	Attestations []types.AttestationRecord
	Total        int
}

// Client talks to one indexer deployment.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	metrics    metrics.Recorder
	breaker    *gobreaker.CircuitBreaker
	maxRetries uint64
}

// ClientOption adjusts client construction.
type ClientOption func(*Client)

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger; default is a no-op logger.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder; default records nothing.
func WithMetrics(rec metrics.Recorder) ClientOption {
	return func(c *Client) {
		if rec != nil {
			c.metrics = rec
		}
	}
}

// WithMaxRetries overrides DefaultMaxRetries.
func WithMaxRetries(n uint64) ClientOption {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// NewClient builds a client for the indexer at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, types.WrapError(types.KindConfig, "indexer", "invalid indexer URL", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, types.NewError(types.KindConfig, "indexer",
			fmt.Sprintf("indexer URL must be http or https, got %q", baseURL))
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     zap.NewNop(),
		metrics:    metrics.NewNoOp(),
		maxRetries: DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "indexer:" + parsed.Host,
		MaxRequests: DefaultCircuitBreakerMaxRequests,
		Interval:    DefaultCircuitBreakerInterval,
		Timeout:     DefaultCircuitBreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= DefaultCircuitBreakerMaxRequests && failureRatio >= DefaultCircuitBreakerFailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("indexer circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return c, nil
}

// ListAttestations returns the attestations matching filter.
func (c *Client) ListAttestations(ctx context.Context, filter QueryFilter) (*ListResult, error) {
	endpoint := c.baseURL + listPath
	if query := filter.values().Encode(); query != "" {
		endpoint += "?" + query
	}

	body, err := c.get(ctx, "list_attestations", endpoint)
	if err != nil {
		return nil, err
	}

	var wire struct {
		Attestations []map[string]any `json:"attestations"`
		Total        int              `json:"total"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, types.WrapError(types.KindIndexer, "list_attestations", "decoding response", err)
	}

	result := &ListResult{
		Attestations: make([]types.AttestationRecord, 0, len(wire.Attestations)),
		Total:        wire.Total,
	}
	for i, raw := range wire.Attestations {
		rec, err := decodeRecord(raw)
		if err != nil {
			return nil, types.WrapError(types.KindIndexer, "list_attestations",
				fmt.Sprintf("decoding attestation %d", i), err)
		}
		result.Attestations = append(result.Attestations, rec)
	}
	return result, nil
}

// GetAttestation returns a single attestation by UID.
func (c *Client) GetAttestation(ctx context.Context, uid string) (*types.AttestationRecord, error) {
	if uid == "" {
		return nil, types.NewError(types.KindValidation, "get_attestation", "uid is empty")
	}

	body, err := c.get(ctx, "get_attestation", c.baseURL+listPath+"/"+url.PathEscape(uid))
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, types.WrapError(types.KindIndexer, "get_attestation", "decoding response", err)
	}
	rec, err := decodeRecord(raw)
	if err != nil {
		return nil, types.WrapError(types.KindIndexer, "get_attestation", "decoding attestation", err)
	}
	return &rec, nil
}

// get runs one GET with circuit breaking and bounded exponential retry.
// Responses with 4xx status are not retried; 5xx and transport errors are.
func (c *Client) get(ctx context.Context, op, endpoint string) ([]byte, error) {
	requestID := uuid.NewString()
	attempt := 0

	operation := func() ([]byte, error) {
		attempt++
		if attempt > 1 {
			c.metrics.RecordIndexerRetry(ctx, op)
		}
		raw, err := c.breaker.Execute(func() (any, error) {
			return c.doGet(ctx, op, endpoint, requestID)
		})
		if err != nil {
			var permanent *permanentError
			if errors.As(err, &permanent) {
				return nil, backoff.Permanent(permanent.err)
			}
			return nil, err
		}
		return raw.([]byte), nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 250 * time.Millisecond
	bo.MaxInterval = 5 * time.Second

	body, err := backoff.RetryWithData(operation,
		backoff.WithContext(backoff.WithMaxRetries(bo, c.maxRetries), ctx))
	if err != nil {
		return nil, err
	}
	return body, nil
}

// permanentError marks a failure retrying cannot fix, such as a 4xx
// response. It crosses the circuit breaker boundary so the breaker still
// counts it as a failure.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func (c *Client) doGet(ctx context.Context, op, endpoint, requestID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &permanentError{err: types.WrapError(types.KindIndexer, op, "building request", err)}
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordIndexerRequest(ctx, op, 0, time.Since(start))
		return nil, types.WrapError(types.KindIndexer, op, "executing request", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	c.metrics.RecordIndexerRequest(ctx, op, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, &permanentError{err: types.NewError(types.KindIndexer, op, "attestation not found")}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, &permanentError{err: types.NewError(types.KindIndexer, op,
			fmt.Sprintf("indexer rejected request: %s", resp.Status))}
	default:
		return nil, types.NewError(types.KindIndexer, op,
			fmt.Sprintf("indexer returned %s", resp.Status))
	}

	limited := io.LimitReader(resp.Body, MaxResponseSize+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, types.WrapError(types.KindIndexer, op, "reading response body", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, &permanentError{err: types.NewError(types.KindIndexer, op,
			fmt.Sprintf("response exceeds %d bytes", MaxResponseSize))}
	}
	return body, nil
}

// decodeRecord maps one wire object onto AttestationRecord. Fields the
// record does not model land in Properties, so new indexer fields never
// break older SDKs.
func decodeRecord(raw map[string]any) (types.AttestationRecord, error) {
	var rec types.AttestationRecord
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &rec,
		TagName: "mapstructure",
	})
	if err != nil {
		return rec, err
	}
	if err := dec.Decode(raw); err != nil {
		return rec, err
	}
	if len(rec.Properties) == 0 {
		rec.Properties = nil
	}
	return rec, nil
}
