package lib

import (
	"errors"
	"fmt"
)

// Failure names used in ErrorInfo.Name when the processor does not supply one.
const (
	ErrNameNoChannel        = "NO_CHANNEL"
	ErrNameTransport        = "TRANSPORT_ERROR"
	ErrNameAuthExpired      = "AUTH_EXPIRED"
	ErrNameAuthFailed       = "AUTH_FAILED"
	ErrNameUnexpectedStatus = "UNEXPECTED_STATUS"
	ErrNameDiffNotAllowed   = "DIFF_NOT_ALLOWED"
)

// Numeric codes for failures that never reached the processor. Protocol
// failures carry the HTTP status as their numeric code instead.
const (
	CodeOK        = 0
	CodeNoChannel = -1
	CodeTransport = -2
)

// Sentinel errors for errors.Is checks at call sites.
var (
	ErrNoChannel      = errors.New("http channel not available")
	ErrAuthExpired    = errors.New("access token expired")
	ErrDiffNotAllowed = errors.New("order update not allowed")
)

// ErrorDetail is one issue/description pair from a processor error body.
type ErrorDetail struct {
	Issue       string `json:"issue"`
	Description string `json:"description"`
}

// ErrorInfo is the structured failure record shared by the client, the token
// cache and the diff engine. It is rebuilt on every call, never accumulated.
type ErrorInfo struct {
	NumericCode        int           `json:"numeric_code"`
	Message            string        `json:"message"`
	TransportErrorCode int           `json:"transport_error_code,omitempty"`
	HTTPStatus         int           `json:"http_status,omitempty"`
	Name               string        `json:"name,omitempty"`
	DetailMessage      string        `json:"detail_message,omitempty"`
	Details            []ErrorDetail `json:"details,omitempty"`
}

// Failed reports whether the record describes a failure.
func (e ErrorInfo) Failed() bool {
	return e.NumericCode != CodeOK || e.Name != ""
}

// APIError carries an ErrorInfo across the error return path so callers can
// use errors.As without reaching back into the client.
type APIError struct {
	Info ErrorInfo
	Err  error
}

func (e *APIError) Error() string {
	if e.Info.Name != "" {
		return fmt.Sprintf("paypal: %s (%d): %s", e.Info.Name, e.Info.NumericCode, e.Info.Message)
	}
	return fmt.Sprintf("paypal: code %d: %s", e.Info.NumericCode, e.Info.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func newAPIError(info ErrorInfo, sentinel error) *APIError {
	return &APIError{Info: info, Err: sentinel}
}

// ErrorInfoFrom extracts the structured record from any error produced by
// this package. The zero ErrorInfo is returned for foreign errors.
func ErrorInfoFrom(err error) ErrorInfo {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Info
	}
	return ErrorInfo{}
}
