package parser

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"parseview/internal/domain"
)

// maxVendorMessage bounds how much of a raw vendor body ends up in an error message.
const maxVendorMessage = 512

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return 0
	}
	return secs
}

// NewStatusError builds a VendorError from a non-2xx vendor response.
// Rate limit responses mention Retry-After, but nothing is retried.
func NewStatusError(provider string, statusCode int, header http.Header, body []byte) *domain.VendorError {
	msg := VendorMessage(body)
	if msg == "" {
		msg = http.StatusText(statusCode)
	}
	if statusCode == http.StatusTooManyRequests {
		if secs := ParseRetryAfterHeader(header.Get("Retry-After")); secs > 0 {
			msg = fmt.Sprintf("%s (rate limited, retry after %ds)", msg, secs)
		} else {
			msg += " (rate limited)"
		}
	}
	return &domain.VendorError{Provider: provider, StatusCode: statusCode, Message: msg}
}

// NewTransportError wraps a failure that produced no HTTP response.
func NewTransportError(provider string, err error) *domain.VendorError {
	return &domain.VendorError{Provider: provider, Message: err.Error(), Err: err}
}

// NewMalformedResponseError wraps a response body that could not be decoded.
func NewMalformedResponseError(provider string, statusCode int, err error) *domain.VendorError {
	return &domain.VendorError{
		Provider:   provider,
		StatusCode: statusCode,
		Message:    "malformed vendor response: " + err.Error(),
		Err:        err,
	}
}

// VendorMessage extracts a human-readable message from a vendor error body.
// It prefers error.message, then message, then the raw body truncated.
func VendorMessage(body []byte) string {
	var payload struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		var nested struct {
			Message string `json:"message"`
		}
		if len(payload.Error) > 0 && json.Unmarshal(payload.Error, &nested) == nil && nested.Message != "" {
			return nested.Message
		}
		var flat string
		if len(payload.Error) > 0 && json.Unmarshal(payload.Error, &flat) == nil && flat != "" {
			return flat
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return truncate(strings.TrimSpace(string(body)), maxVendorMessage)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
