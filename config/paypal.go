package config

import (
	"time"
)

const (
	sandboxBaseURL = "https://api-m.sandbox.paypal.com"
	liveBaseURL    = "https://api-m.paypal.com"
)

// PayPalConfig holds the processor credentials and endpoints for one store.
type PayPalConfig struct {
	BaseURL        string
	ClientID       string
	ClientSecret   string
	Mode           string // "sandbox" or "live"
	ConnectTimeout time.Duration
	RequestTimeout time.Duration
}

// GetPayPalConfig builds the processor configuration from the environment.
// PAYPAL_BASE_URL overrides the mode-derived endpoint (used by tests).
func GetPayPalConfig() PayPalConfig {
	mode := Config("PAYPAL_MODE", "sandbox")

	baseURL := Config("PAYPAL_BASE_URL", "")
	if baseURL == "" {
		if mode == "live" {
			baseURL = liveBaseURL
		} else {
			baseURL = sandboxBaseURL
		}
	}

	return PayPalConfig{
		BaseURL:        baseURL,
		ClientID:       Config("PAYPAL_CLIENT_ID", ""),
		ClientSecret:   Config("PAYPAL_CLIENT_SECRET", ""),
		Mode:           mode,
		ConnectTimeout: 10 * time.Second,
		RequestTimeout: 30 * time.Second,
	}
}
