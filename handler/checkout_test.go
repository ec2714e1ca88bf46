package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storepay/config"
	"storepay/dto/model"
	"storepay/lib"
	"storepay/repository"
)

const testOrderID = "5O190127TN364715T"

// recordStore is the in-memory ledger persistence behind handler tests.
type recordStore struct {
	mu      sync.Mutex
	records []model.PaymentTransaction
}

func (s *recordStore) ListByOrder(_ context.Context, orderID string) ([]model.PaymentTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.PaymentTransaction
	for _, record := range s.records {
		if record.OrderID == orderID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (s *recordStore) GetByTxnID(_ context.Context, orderID, txnID string) (*model.PaymentTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].OrderID == orderID && s.records[i].TxnID == txnID {
			record := s.records[i]
			return &record, nil
		}
	}
	return nil, nil
}

func (s *recordStore) Insert(_ context.Context, record *model.PaymentTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record.DateAdded = time.Now()
	record.LastModified = record.DateAdded
	s.records = append(s.records, *record)
	return nil
}

func (s *recordStore) UpdateStatus(_ context.Context, orderID, txnID, status, pendingReason string, modified time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].OrderID == orderID && s.records[i].TxnID == txnID {
			s.records[i].PaymentStatus = status
			s.records[i].PendingReason = pendingReason
			s.records[i].LastModified = modified
		}
	}
	return nil
}

func (s *recordStore) find(txnType string) *model.PaymentTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].TxnType == txnType {
			record := s.records[i]
			return &record
		}
	}
	return nil
}

// newCheckoutApp wires the handler package against an httptest processor and
// in-memory stores, returning the routed app.
func newCheckoutApp(t *testing.T, mux *http.ServeMux) (*fiber.App, *recordStore, lib.SessionStore) {
	t.Helper()

	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"A21AAFtoken","token_type":"Bearer","expires_in":3600}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	cfg := config.PayPalConfig{
		BaseURL:        server.URL,
		ClientID:       "test-client-id",
		ClientSecret:   "test-client-secret",
		Mode:           "sandbox",
		ConnectTimeout: 2 * time.Second,
		RequestTimeout: 5 * time.Second,
	}

	sessionStore := repository.NewMemorySessionStore()
	client := lib.NewClient(cfg, lib.NewTokenCache(cfg, sessionStore))

	store := &recordStore{}
	Setup(client, repository.NewTransactionLedger(store, client), sessionStore)

	app := fiber.New()
	app.Post("/orders", CreateOrder)
	app.Post("/orders/:id/capture", CaptureOrder)
	app.Post("/payments/captures/:id/refund", RefundCapture)
	return app, store, sessionStore
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func checkoutBody() map[string]interface{} {
	return map[string]interface{}{
		"session_id": "S1",
		"intent":     "CAPTURE",
		"currency":   "USD",
		"amount":     "10.00",
		"invoice_id": "INV-100",
	}
}

func TestCreateOrderRetryKeepsRequestID(t *testing.T) {
	var (
		mu         sync.Mutex
		requestIDs []string
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requestIDs = append(requestIDs, r.Header.Get("PayPal-Request-Id"))
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"` + testOrderID + `","status":"CREATED"}`))
	})
	mux.HandleFunc("/v2/checkout/orders/", func(w http.ResponseWriter, r *http.Request) {
		// The reuse check finds the processor temporarily down.
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"name":"SERVICE_UNAVAILABLE","message":"temporarily unavailable"}`))
	})

	app, _, _ := newCheckoutApp(t, mux)

	resp := postJSON(t, app, "/orders", checkoutBody())
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = postJSON(t, app, "/orders", checkoutBody())
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, requestIDs, 2)
	assert.NotEmpty(t, requestIDs[0])
	assert.Equal(t, requestIDs[0], requestIDs[1])
}

func TestCreateOrderLostResponseRetriesSameRequestID(t *testing.T) {
	var (
		mu         sync.Mutex
		requestIDs []string
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requestIDs = append(requestIDs, r.Header.Get("PayPal-Request-Id"))
		calls := len(requestIDs)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"name":"SERVICE_UNAVAILABLE","message":"temporarily unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"` + testOrderID + `","status":"CREATED"}`))
	})

	app, _, _ := newCheckoutApp(t, mux)

	resp := postJSON(t, app, "/orders", checkoutBody())
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	resp = postJSON(t, app, "/orders", checkoutBody())
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	// A changed cart is a new logical create and gets a fresh key.
	changed := checkoutBody()
	changed["amount"] = "12.50"
	resp = postJSON(t, app, "/orders", changed)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, requestIDs, 3)
	assert.NotEmpty(t, requestIDs[0])
	assert.Equal(t, requestIDs[0], requestIDs[1])
	assert.NotEqual(t, requestIDs[1], requestIDs[2])
}

func TestCreateOrderReusesLiveOrder(t *testing.T) {
	var (
		mu      sync.Mutex
		creates int
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		creates++
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"` + testOrderID + `","status":"CREATED"}`))
	})
	mux.HandleFunc("/v2/checkout/orders/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"` + testOrderID + `","status":"CREATED"}`))
	})

	app, _, _ := newCheckoutApp(t, mux)

	resp := postJSON(t, app, "/orders", checkoutBody())
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = postJSON(t, app, "/orders", checkoutBody())
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var envelope struct {
		Data struct {
			OrderID string `json:"order_id"`
			Reused  bool   `json:"reused"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.True(t, envelope.Data.Reused)
	assert.Equal(t, testOrderID, envelope.Data.OrderID)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, creates)
}

func TestCaptureOrderClearsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/checkout/orders/", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/capture") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"` + testOrderID + `","status":"COMPLETED"}`))
	})

	app, _, sessionStore := newCheckoutApp(t, mux)

	ctx := context.Background()
	require.NoError(t, repository.SaveCheckoutSession(ctx, sessionStore, "S1", repository.CheckoutSession{
		OrderID:     testOrderID,
		Fingerprint: "f1",
		RequestID:   "r1",
	}))

	resp := postJSON(t, app, "/orders/"+testOrderID+"/capture", map[string]interface{}{
		"session_id": "S1",
	})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	session, err := repository.LoadCheckoutSession(ctx, sessionStore, "S1")
	require.NoError(t, err)
	assert.Nil(t, session)
}
