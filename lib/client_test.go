package lib

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient wires a client against a mux that already serves the token
// endpoint, so authenticated calls work out of the box.
func newTestClient(t *testing.T, mux *http.ServeMux) (*Client, *memStore, *httptest.Server) {
	t.Helper()

	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "A21AAFtoken",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	store := newMemStore()
	cfg := testConfig(server.URL)
	client := NewClient(cfg, NewTokenCache(cfg, store))
	return client, store, server
}

func TestRequestSuccess(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/checkout/orders/5O190127TN364715T", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer A21AAFtoken", r.Header.Get("Authorization"))
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"id": "5O190127TN364715T", "status": "CREATED"})
	})

	client, _, _ := newTestClient(t, mux)

	raw, err := client.Request(context.Background(), http.MethodGet, "v2/checkout/orders/5O190127TN364715T", nil, true, "")
	require.NoError(t, err)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, "CREATED", payload["status"])
	assert.False(t, client.ErrorInfo().Failed())
}

func TestRequestNoContent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/checkout/orders/5O190127TN364715T", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})

	client, _, _ := newTestClient(t, mux)

	raw, err := client.Request(context.Background(), http.MethodPatch, "v2/checkout/orders/5O190127TN364715T", []PatchOp{{Op: OpReplace, Path: "/x", Value: 1}}, true, "")
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestRequestIdempotencyHeader(t *testing.T) {
	var seenRequestID string
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		seenRequestID = r.Header.Get("PayPal-Request-Id")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "5O190127TN364715T"})
	})

	client, _, _ := newTestClient(t, mux)

	_, err := client.Request(context.Background(), http.MethodPost, "v2/checkout/orders", map[string]string{"intent": "CAPTURE"}, true, "req-123")
	require.NoError(t, err)
	assert.Equal(t, "req-123", seenRequestID)
}

func TestRequestProtocolError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/checkout/orders/BAD", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"name":     "UNPROCESSABLE_ENTITY",
			"message":  "The requested action could not be performed.",
			"debug_id": "b6b9a374802ea",
			"details": []map[string]string{
				{"issue": "ORDER_NOT_APPROVED", "description": "Payer has not yet approved the Order for payment."},
			},
		})
	})

	client, _, _ := newTestClient(t, mux)

	_, err := client.Request(context.Background(), http.MethodPost, "v2/checkout/orders/BAD", nil, true, "")
	require.Error(t, err)

	info := client.ErrorInfo()
	assert.True(t, info.Failed())
	assert.Equal(t, http.StatusUnprocessableEntity, info.NumericCode)
	assert.Equal(t, http.StatusUnprocessableEntity, info.HTTPStatus)
	assert.Equal(t, "UNPROCESSABLE_ENTITY", info.Name)
	assert.Equal(t, "The requested action could not be performed.", info.Message)
	assert.Equal(t, "Payer has not yet approved the Order for payment.", info.DetailMessage)
	require.Len(t, info.Details, 1)
	assert.Equal(t, "ORDER_NOT_APPROVED", info.Details[0].Issue)

	assert.Equal(t, info, ErrorInfoFrom(err))
}

func TestRequestUnauthorizedInvalidatesToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/checkout/orders/5O190127TN364715T", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	client, store, _ := newTestClient(t, mux)
	ctx := context.Background()

	// Prime the cache.
	_, err := client.Tokens().GetToken(ctx, true)
	require.NoError(t, err)
	_, found, _ := store.Get(ctx, "paypal:token:test-client-id")
	require.True(t, found)

	_, err = client.Request(ctx, http.MethodGet, "v2/checkout/orders/5O190127TN364715T", nil, true, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthExpired)

	info := client.ErrorInfo()
	assert.Equal(t, ErrNameAuthExpired, info.Name)
	assert.Equal(t, http.StatusUnauthorized, info.NumericCode)

	_, found, _ = store.Get(ctx, "paypal:token:test-client-id")
	assert.False(t, found, "cached token should be cleared after a 401")
}

func TestRequestUnexpectedStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/checkout/orders/ODD", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	client, _, _ := newTestClient(t, mux)

	_, err := client.Request(context.Background(), http.MethodGet, "v2/checkout/orders/ODD", nil, true, "")
	require.Error(t, err)

	info := client.ErrorInfo()
	assert.Equal(t, ErrNameUnexpectedStatus, info.Name)
	assert.Equal(t, http.StatusTeapot, info.NumericCode)
}

func TestRequestTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	serverURL := server.URL
	server.Close()

	cfg := testConfig(serverURL)
	client := NewClient(cfg, NewTokenCache(cfg, newMemStore()))

	_, err := client.Request(context.Background(), http.MethodGet, "v2/checkout/orders/X", nil, false, "")
	require.Error(t, err)

	info := client.ErrorInfo()
	assert.Equal(t, CodeTransport, info.NumericCode)
	assert.Equal(t, ErrNameTransport, info.Name)
	assert.Zero(t, info.HTTPStatus)
}

func TestErrorInfoResetsBetweenCalls(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/checkout/orders/BAD", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/v2/checkout/orders/GOOD", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "GOOD"})
	})

	client, _, _ := newTestClient(t, mux)
	ctx := context.Background()

	_, err := client.Request(ctx, http.MethodGet, "v2/checkout/orders/BAD", nil, true, "")
	require.Error(t, err)
	assert.True(t, client.ErrorInfo().Failed())

	_, err = client.Request(ctx, http.MethodGet, "v2/checkout/orders/GOOD", nil, true, "")
	require.NoError(t, err)
	assert.False(t, client.ErrorInfo().Failed())
	assert.Zero(t, client.ErrorInfo().NumericCode)
}

func TestNewClientBoundsDialAndRequest(t *testing.T) {
	cfg := testConfig("https://api-m.sandbox.paypal.com")
	client := NewClient(cfg, NewTokenCache(cfg, newMemStore()))

	require.NotNil(t, client.http)
	assert.Equal(t, cfg.RequestTimeout, client.http.Timeout)

	transport, ok := client.http.Transport.(*http.Transport)
	require.True(t, ok)
	assert.NotNil(t, transport.DialContext)
	assert.Equal(t, cfg.ConnectTimeout, transport.TLSHandshakeTimeout)
}

func TestRequestNoChannel(t *testing.T) {
	client := &Client{}

	_, err := client.Request(context.Background(), http.MethodGet, "v2/checkout/orders/X", nil, false, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoChannel)
	assert.Equal(t, CodeNoChannel, client.ErrorInfo().NumericCode)
}
