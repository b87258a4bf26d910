// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jeranaias/wrench-tui/internal/vehicle"
)

// DefaultUserAgent is sent with every request unless overridden.
const DefaultUserAgent = "wrench-tui"

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// BaseURLSource yields the backend URL. It is consulted on every call so a
// changed setting applies to the next request.
type BaseURLSource interface {
	BaseURL() string
}

// VehicleSource yields the vehicle context attached to chat queries.
type VehicleSource interface {
	Get() (vehicle.Context, bool)
}

// StaticURL is a BaseURLSource that never changes.
type StaticURL string

// BaseURL returns the URL.
func (s StaticURL) BaseURL() string { return string(s) }

// Options holds optional client settings.
type Options struct {
	// HTTPClient overrides the underlying client. Its transport is wrapped
	// for tracing.
	HTTPClient *http.Client

	// Timeout bounds each request. Zero means no client-side timeout.
	Timeout time.Duration

	// Logger receives one debug record per request and a warning for each
	// failure (default: slog.Default()).
	Logger *slog.Logger

	// UserAgent header value (default: DefaultUserAgent).
	UserAgent string
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is the only component that talks to the backend.
//
// The Client is safe for concurrent use; it holds no per-request state.
//
// Example:
//
//	client := api.NewClient(endpoint, store, nil)
//	resp, err := client.Query(ctx, "Explain P0300 misfire diagnosis")
type Client struct {
	base      BaseURLSource
	vehicles  VehicleSource
	http      *http.Client
	logger    *slog.Logger
	userAgent string
}

// NewClient creates a client. vehicles may be nil when no vehicle context
// should ever be attached.
func NewClient(base BaseURLSource, vehicles VehicleSource, opts *Options) *Client {
	if opts == nil {
		opts = &Options{}
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	transport := hc.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	wrapped := *hc
	wrapped.Transport = otelhttp.NewTransport(transport)
	if opts.Timeout > 0 {
		wrapped.Timeout = opts.Timeout
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}

	return &Client{
		base:      base,
		vehicles:  vehicles,
		http:      &wrapped,
		logger:    logger.With("component", "api"),
		userAgent: ua,
	}
}

// BaseURL returns the URL the next request will go to.
func (c *Client) BaseURL() string {
	if c.base == nil {
		return ""
	}
	return strings.TrimRight(c.base.BaseURL(), "/")
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Query asks the backend a question. The vehicle context current at call time
// is attached when one is set.
func (c *Client) Query(ctx context.Context, text string) (*QueryResponse, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyQuery
	}

	reqBody := QueryRequest{Query: text, TopK: DefaultTopK}
	if c.vehicles != nil {
		if v, ok := c.vehicles.Get(); ok {
			reqBody.Vehicle = &v
		}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidInput, Message: "failed to marshal request", Cause: err}
	}

	raw, err := c.do(ctx, http.MethodPost, "/query", bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, err
	}

	var result QueryResponse
	if err := decodeObject(raw, &result, "answer"); err != nil {
		return nil, err
	}
	return &result, nil
}

// LookupDiagnostic fetches a diagnostic trouble code. The code is sent as
// given; callers normalize it first.
func (c *Client) LookupDiagnostic(ctx context.Context, code string) (*DiagnosticRecord, error) {
	raw, err := c.do(ctx, http.MethodGet, "/diagnostic-codes/"+url.PathEscape(code), nil, "")
	if err != nil {
		return nil, err
	}

	var rec DiagnosticRecord
	if err := decodeObject(raw, &rec, "code"); err != nil {
		return nil, err
	}
	return &rec, nil
}

// LookupVehicleInfo fetches the specs of a vehicle.
func (c *Client) LookupVehicleInfo(ctx context.Context, mk, model string, year int) (*VehicleSpecs, error) {
	path := "/vehicle-info/" + url.PathEscape(mk) + "/" + url.PathEscape(model) + "/" + strconv.Itoa(year)
	raw, err := c.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, decodeError("vehicle info is not a JSON object", err)
	}
	return &VehicleSpecs{Raw: json.RawMessage(raw)}, nil
}

// UploadManuals sends PDF files for ingestion.
func (c *Client) UploadManuals(ctx context.Context, files []File) (*UploadResult, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	body, contentType, err := encodeFiles(files)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidInput, Message: "failed to encode upload", Cause: err}
	}

	raw, err := c.do(ctx, http.MethodPost, "/upload-documents", body, contentType)
	if err != nil {
		return nil, err
	}

	var result UploadResult
	if err := decodeObject(raw, &result, "ingested_count"); err != nil {
		return nil, err
	}
	return &result, nil
}

// Health checks whether the backend is up.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	raw, err := c.do(ctx, http.MethodGet, "/health", nil, "")
	if err != nil {
		return nil, err
	}

	var status HealthStatus
	if err := decodeObject(raw, &status, "status"); err != nil {
		return nil, err
	}
	return &status, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// do issues one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, error) {
	base := c.BaseURL()
	if base == "" {
		return nil, ErrNoBaseURL
	}

	req, err := http.NewRequestWithContext(ctx, method, base+path, body)
	if err != nil {
		return nil, transportError("failed to create request", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			"method", method, "path", path, "request_id", requestID, "error", err)
		return nil, transportError(fmt.Sprintf("cannot reach %s", base), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError("failed to read response", err)
	}

	c.logger.Debug("request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", requestID,
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reqErr := &RequestError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(raw),
		}
		c.logger.Warn("backend rejected request",
			"method", method, "path", path, "request_id", requestID, "response", reqErr.Describe())
		return nil, reqErr
	}
	return raw, nil
}

// decodeObject decodes a JSON object into out after checking that every
// required field is present and not null.
func decodeObject(raw []byte, out any, required ...string) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return decodeError("response is not a JSON object", err)
	}
	for _, name := range required {
		v, ok := fields[name]
		if !ok || string(v) == "null" {
			return decodeError(fmt.Sprintf("response is missing %q", name), nil)
		}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return decodeError("failed to decode response", err)
	}
	return nil
}
