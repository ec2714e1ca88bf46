package lib

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storepay/config"
	"storepay/helper"
)

const tokenPath = "v1/oauth2/token"

// SessionStore is the key-value store the core keeps its session-scoped state
// in (sealed bearer token, checkout fingerprints). Implementations live in
// the repository layer; the core only needs get/set/delete by key.
type SessionStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// cachedToken is the JSON entry persisted in the session store.
type cachedToken struct {
	Sealed    string `json:"sealed"`
	ExpiresAt int64  `json:"expires_at"`
}

// TokenCache acquires bearer tokens from the processor and caches them sealed
// in the session store until the processor-declared expiry.
type TokenCache struct {
	cfg    config.PayPalConfig
	store  SessionStore
	http   *http.Client
	logger *helper.Logger
}

// NewTokenCache wires a cache against one store's credentials.
func NewTokenCache(cfg config.PayPalConfig, store SessionStore) *TokenCache {
	return &TokenCache{
		cfg:    cfg,
		store:  store,
		http:   newHTTPClient(cfg),
		logger: helper.NewLogger("PAYPAL-TOKEN"),
	}
}

func (t *TokenCache) cacheKey() string {
	return "paypal:token:" + t.cfg.ClientID
}

// GetToken returns a bearer token, reusing the cached one when useCache is
// set and the entry is still live. A cached entry that cannot be opened is
// treated as a miss: the entry is cleared and a fresh token is requested.
func (t *TokenCache) GetToken(ctx context.Context, useCache bool) (string, error) {
	if useCache {
		if token, ok := t.loadCached(ctx); ok {
			return token, nil
		}
	}

	token, expiresIn, err := t.requestToken(ctx)
	if err != nil {
		return "", err
	}

	t.save(ctx, token, expiresIn)
	return token, nil
}

// Invalidate drops the cached token unconditionally. Called when the
// processor signals an expired credential (HTTP 401).
func (t *TokenCache) Invalidate(ctx context.Context) {
	if err := t.store.Delete(ctx, t.cacheKey()); err != nil {
		t.logger.Warn("failed to clear cached token: %v", err)
	}
}

func (t *TokenCache) loadCached(ctx context.Context) (string, bool) {
	raw, found, err := t.store.Get(ctx, t.cacheKey())
	if err != nil || !found {
		return "", false
	}

	var entry cachedToken
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		t.Invalidate(ctx)
		return "", false
	}

	if time.Now().Unix() >= entry.ExpiresAt {
		t.Invalidate(ctx)
		return "", false
	}

	token, err := helper.OpenToken(entry.Sealed, t.cfg.ClientSecret)
	if err != nil {
		// Tampered or re-keyed entry: miss, re-authenticate.
		t.Invalidate(ctx)
		return "", false
	}

	return token, true
}

func (t *TokenCache) save(ctx context.Context, token string, expiresIn int) {
	sealed, err := helper.SealToken(token, t.cfg.ClientSecret)
	if err != nil {
		t.logger.Warn("failed to seal token, skipping cache: %v", err)
		return
	}

	lifetime := time.Duration(expiresIn) * time.Second
	entry := cachedToken{
		Sealed:    sealed,
		ExpiresAt: time.Now().Add(lifetime).Unix(),
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		t.logger.Warn("failed to marshal token entry: %v", err)
		return
	}

	if err := t.store.Set(ctx, t.cacheKey(), string(raw), lifetime); err != nil {
		t.logger.Warn("failed to cache token: %v", err)
	}
}

// requestToken performs the bootstrap call against the token endpoint with
// HTTP Basic credentials and a client_credentials grant.
func (t *TokenCache) requestToken(ctx context.Context) (string, int, error) {
	start := time.Now()

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	endpoint := fmt.Sprintf("%s/%s", strings.TrimSuffix(t.cfg.BaseURL, "/"), tokenPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		info := ErrorInfo{NumericCode: CodeNoChannel, Name: ErrNameNoChannel, Message: err.Error()}
		return "", 0, newAPIError(info, ErrNoChannel)
	}

	req.SetBasicAuth(t.cfg.ClientID, t.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.http.Do(req)
	if err != nil {
		info := transportErrorInfo(err)
		config.LogProcessorCall(config.OP_TOKEN, http.MethodPost, tokenPath, 0, time.Since(start), info.Message)
		return "", 0, newAPIError(info, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		info := transportErrorInfo(err)
		return "", 0, newAPIError(info, err)
	}

	config.LogProcessorCall(config.OP_TOKEN, http.MethodPost, tokenPath, resp.StatusCode, time.Since(start), "")

	if resp.StatusCode != http.StatusOK {
		var failure tokenErrorResponse
		_ = json.Unmarshal(body, &failure)

		info := ErrorInfo{
			NumericCode:   resp.StatusCode,
			HTTPStatus:    resp.StatusCode,
			Name:          ErrNameAuthFailed,
			Message:       failure.Error,
			DetailMessage: failure.ErrorDescription,
		}
		if info.Message == "" {
			info.Message = fmt.Sprintf("token request failed with status %d", resp.StatusCode)
		}
		t.logger.Error("token request failed: status=%d error=%s", resp.StatusCode, failure.Error)
		return "", 0, newAPIError(info, errors.New("token request rejected"))
	}

	var payload tokenResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		info := ErrorInfo{
			NumericCode: resp.StatusCode,
			HTTPStatus:  resp.StatusCode,
			Name:        ErrNameAuthFailed,
			Message:     "failed to decode token response",
		}
		return "", 0, newAPIError(info, err)
	}

	if payload.AccessToken == "" {
		info := ErrorInfo{
			NumericCode: resp.StatusCode,
			HTTPStatus:  resp.StatusCode,
			Name:        ErrNameAuthFailed,
			Message:     "token response missing access_token",
		}
		return "", 0, newAPIError(info, errors.New("empty access token"))
	}

	return payload.AccessToken, payload.ExpiresIn, nil
}
