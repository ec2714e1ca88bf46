package lib

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syscall"
	"time"

	"storepay/config"
	"storepay/helper"
)

// Recorder receives one event per outbound processor call. Implementations
// must not block; the mongo-backed one lives in the repository layer.
type Recorder interface {
	RecordProcessorEvent(ctx context.Context, event ProcessorEvent)
}

// ProcessorEvent is the audit-trail row for one call.
type ProcessorEvent struct {
	Method     string    `bson:"method" json:"method"`
	Path       string    `bson:"path" json:"path"`
	Status     int       `bson:"status" json:"status"`
	DurationMS float64   `bson:"duration_ms" json:"duration_ms"`
	RequestID  string    `bson:"request_id,omitempty" json:"request_id,omitempty"`
	Error      string    `bson:"error,omitempty" json:"error,omitempty"`
	Timestamp  time.Time `bson:"timestamp" json:"timestamp"`
}

// Client issues signed requests against the processor REST API. Single
// attempt, fail fast; retry policy belongs to the caller and the error
// classification carries enough to decide retry-worthiness.
type Client struct {
	cfg      config.PayPalConfig
	http     *http.Client
	tokens   *TokenCache
	recorder Recorder
	logger   *helper.Logger

	lastErr ErrorInfo
}

// NewClient builds a processor client on top of a token cache.
func NewClient(cfg config.PayPalConfig, tokens *TokenCache) *Client {
	return &Client{
		cfg:    cfg,
		http:   newHTTPClient(cfg),
		tokens: tokens,
		logger: helper.NewLogger("PAYPAL"),
	}
}

// newHTTPClient bounds the dial and TLS handshake with the connect timeout
// and the whole exchange with the request timeout.
func newHTTPClient(cfg config.PayPalConfig) *http.Client {
	return &http.Client{
		Timeout: cfg.RequestTimeout,
		Transport: &http.Transport{
			DialContext:         (&net.Dialer{Timeout: cfg.ConnectTimeout}).DialContext,
			TLSHandshakeTimeout: cfg.ConnectTimeout,
		},
	}
}

// SetRecorder attaches the audit-trail sink. Nil disables recording.
func (c *Client) SetRecorder(recorder Recorder) {
	c.recorder = recorder
}

// Tokens exposes the underlying token cache.
func (c *Client) Tokens() *TokenCache {
	return c.tokens
}

// ErrorInfo returns the structured record of the most recent call. It is
// reset to a success baseline at the start of every call, so stale failures
// never leak between calls.
func (c *Client) ErrorInfo() ErrorInfo {
	return c.lastErr
}

func (c *Client) fail(info ErrorInfo, sentinel error) error {
	c.lastErr = info
	return newAPIError(info, sentinel)
}

// Request performs one call and returns the decoded body. A 204 yields an
// empty payload. requestID, when non-empty, is sent as PayPal-Request-Id so
// retries of the same logical mutation stay idempotent processor-side.
func (c *Client) Request(ctx context.Context, method, path string, body interface{}, authRequired bool, requestID string) (json.RawMessage, error) {
	c.lastErr = ErrorInfo{}

	if c.http == nil {
		return nil, c.fail(ErrorInfo{
			NumericCode: CodeNoChannel,
			Name:        ErrNameNoChannel,
			Message:     "http client not initialized",
		}, ErrNoChannel)
	}

	var token string
	if authRequired {
		var err error
		token, err = c.tokens.GetToken(ctx, true)
		if err != nil {
			// Propagate the token cache's record; no network call is made.
			c.lastErr = ErrorInfoFrom(err)
			return nil, err
		}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, c.fail(ErrorInfo{
				NumericCode: CodeNoChannel,
				Name:        ErrNameNoChannel,
				Message:     fmt.Sprintf("failed to encode request body: %v", err),
			}, err)
		}
		reader = bytes.NewReader(payload)
	}

	endpoint := fmt.Sprintf("%s/%s", strings.TrimSuffix(c.cfg.BaseURL, "/"), strings.TrimPrefix(path, "/"))
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, c.fail(ErrorInfo{
			NumericCode: CodeNoChannel,
			Name:        ErrNameNoChannel,
			Message:     err.Error(),
		}, ErrNoChannel)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if requestID != "" {
		req.Header.Set("PayPal-Request-Id", requestID)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		info := transportErrorInfo(err)
		c.record(ctx, method, path, 0, time.Since(start), requestID, info.Message)
		return nil, c.fail(info, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		info := transportErrorInfo(err)
		c.record(ctx, method, path, resp.StatusCode, time.Since(start), requestID, info.Message)
		return nil, c.fail(info, err)
	}

	c.record(ctx, method, path, resp.StatusCode, time.Since(start), requestID, "")

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		return raw, nil

	case http.StatusNoContent:
		return nil, nil

	case http.StatusUnauthorized:
		c.tokens.Invalidate(ctx)
		info := ErrorInfo{
			NumericCode: http.StatusUnauthorized,
			HTTPStatus:  http.StatusUnauthorized,
			Name:        ErrNameAuthExpired,
			Message:     "access token expired or revoked; cached token cleared",
		}
		c.logger.Warn("401 from %s %s, cached token invalidated", method, path)
		return nil, c.fail(info, ErrAuthExpired)

	case http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound,
		http.StatusUnprocessableEntity, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusServiceUnavailable:
		info := protocolErrorInfo(resp.StatusCode, raw)
		c.logger.Error("%s %s failed: status=%d name=%s message=%s", method, path, resp.StatusCode, info.Name, info.Message)
		return nil, c.fail(info, errors.New("processor rejected the request"))

	default:
		c.logger.Warn("unexpected status %d from %s %s", resp.StatusCode, method, path)
		info := ErrorInfo{
			NumericCode: resp.StatusCode,
			HTTPStatus:  resp.StatusCode,
			Name:        ErrNameUnexpectedStatus,
			Message:     fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}
		return nil, c.fail(info, errors.New("unexpected processor status"))
	}
}

func (c *Client) record(ctx context.Context, method, path string, status int, duration time.Duration, requestID, errMsg string) {
	operation := operationFor(path)
	config.LogProcessorCall(operation, method, path, status, duration, errMsg)
	ProcessorCallCount.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	ProcessorCallDuration.WithLabelValues(operation).Observe(duration.Seconds())

	if c.recorder != nil {
		c.recorder.RecordProcessorEvent(ctx, ProcessorEvent{
			Method:     method,
			Path:       path,
			Status:     status,
			DurationMS: float64(duration.Nanoseconds()) / 1e6,
			RequestID:  requestID,
			Error:      errMsg,
			Timestamp:  time.Now(),
		})
	}
}

func operationFor(path string) string {
	switch {
	case strings.Contains(path, "oauth2/token"):
		return config.OP_TOKEN
	case strings.Contains(path, "v2/payments/"):
		return config.OP_PAYMENTS
	default:
		return config.OP_ORDERS
	}
}

// transportErrorInfo classifies a failure that never produced an HTTP status.
// The native errno is carried when the platform exposes one.
func transportErrorInfo(err error) ErrorInfo {
	info := ErrorInfo{
		NumericCode: CodeTransport,
		Name:        ErrNameTransport,
		Message:     err.Error(),
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		info.TransportErrorCode = int(errno)
	}
	return info
}

// protocolErrorInfo populates the record from the processor's structured
// error body when one is present.
func protocolErrorInfo(status int, body []byte) ErrorInfo {
	info := ErrorInfo{
		NumericCode: status,
		HTTPStatus:  status,
		Message:     fmt.Sprintf("request failed with status %d", status),
	}

	var failure processorError
	if err := json.Unmarshal(body, &failure); err == nil && failure.Name != "" {
		info.Name = failure.Name
		info.Message = failure.Message
		info.Details = failure.Details
		if failure.DebugID != "" {
			info.DetailMessage = "debug_id: " + failure.DebugID
		}
		if len(failure.Details) > 0 {
			info.DetailMessage = failure.Details[0].Description
		}
	}
	return info
}
