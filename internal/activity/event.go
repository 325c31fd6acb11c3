// Package activity implements the security-event pipeline at the heart of
// the honeypot: every business operation reports its outcome here, and each
// report is appended to two local sinks — a human-readable activity log and
// a JSON-lines feed suitable for Splunk-style ingestion.
//
// The pipeline is strictly best-effort side information: recording an event
// never fails the calling operation. See Logger.Record.
package activity

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Activity types form a closed taxonomy of coarse event categories. Record
// accepts any non-empty tag so that lifecycle events can use their own, but
// business call sites stick to this set.
const (
	TypeAuthAttempt   = "AUTH_ATTEMPT"
	TypeCartOperation = "CART_OPERATION"
	TypeProductView   = "PRODUCT_VIEW"
	TypeOrderCreated  = "ORDER_CREATED"
	TypeSuspicious    = "SUSPICIOUS_ACTIVITY"
	TypeAPIAccess     = "API_ACCESS"
	TypeHTTPRequest   = "HTTP_REQUEST"
	TypeSystemStartup = "SYSTEM_STARTUP"
	TypeSystemError   = "SYSTEM_ERROR"
)

// Cart operation sub-tags for CART_OPERATION events.
const (
	CartView   = "VIEW"
	CartAdd    = "ADD"
	CartRemove = "REMOVE"
	CartUpdate = "UPDATE"
)

// Unknown is the sentinel substituted for every request field that cannot
// be resolved. Events degrade to sentinels rather than failing.
const Unknown = "unknown"

// Details is the open, operation-specific payload of an event. Each call
// site defines its own shape under the umbrella taxonomy; the logger only
// requires that it serialize to JSON.
type Details map[string]any

// Event is the canonical record of a single logged activity. It is
// immutable once constructed and append-only once persisted.
type Event struct {
	Timestamp    string  `json:"timestamp"`
	ActivityType string  `json:"activity_type"`
	IPAddress    string  `json:"ip_address"`
	UserAgent    string  `json:"user_agent"`
	HTTPMethod   string  `json:"http_method"`
	URL          string  `json:"url"`
	Details      Details `json:"details"`
	SessionID    string  `json:"session_id"`
	UserID       string  `json:"user_id"`
}

// RequestInfo is the narrow slice of an inbound request the logger needs.
// Every field is optional; absent fields degrade to "unknown". System
// lifecycle events construct a synthetic value via SystemRequest.
type RequestInfo struct {
	IP        string
	UserAgent string
	Method    string
	URL       string
}

// FromRequest extracts logging metadata from a live HTTP request, resolving
// the client IP through proxy headers before falling back to the socket
// address.
func FromRequest(r *http.Request) RequestInfo {
	if r == nil {
		return RequestInfo{}
	}
	return RequestInfo{
		IP:        ClientIP(r),
		UserAgent: r.Header.Get("User-Agent"),
		Method:    r.Method,
		URL:       r.URL.RequestURI(),
	}
}

// SystemRequest builds the synthetic context used for process-lifecycle
// events that have no originating HTTP request.
func SystemRequest(url string) RequestInfo {
	return RequestInfo{
		IP:     "localhost",
		Method: "SYSTEM",
		URL:    url,
	}
}

// ClientIP resolves the originating client address, preferring
// X-Forwarded-For and X-Real-IP over the raw socket address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if addr := r.RemoteAddr; addr != "" {
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return addr[:idx]
		}
		return addr
	}
	return ""
}

// newEvent assembles the canonical record from a taxonomy tag, call-site
// details and request metadata, capturing the timestamp at this instant.
func newEvent(activityType string, details Details, req RequestInfo) Event {
	if details == nil {
		details = Details{}
	}
	return Event{
		Timestamp:    time.Now().UTC().Format(timestampLayout),
		ActivityType: activityType,
		IPAddress:    orUnknown(req.IP),
		UserAgent:    orUnknown(req.UserAgent),
		HTTPMethod:   orUnknown(req.Method),
		URL:          orUnknown(req.URL),
		Details:      details,
		SessionID:    detailString(details, "sessionId", "session_id"),
		UserID:       detailString(details, "userId", "user_id"),
	}
}

// timestampLayout is ISO-8601 with millisecond precision in UTC, which
// sorts lexicographically.
const timestampLayout = "2006-01-02T15:04:05.000Z"

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}

// detailString pulls a convenience field out of the details payload,
// accepting either key spelling since call sites vary.
func detailString(details Details, keys ...string) string {
	for _, key := range keys {
		v, ok := details[key]
		if !ok || v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			if s == "" {
				continue
			}
			return s
		}
		return fmt.Sprint(v)
	}
	return Unknown
}
