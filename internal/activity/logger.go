package activity

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/mssola/useragent"
)

// Sink file names, fixed for downstream collectors.
const (
	ActivityLogName = "honeypot_activity.log"
	SplunkLogName   = "splunk_input.log"
)

// Logger formats canonical activity events and appends them to the two
// sinks, echoing each record to the operational logger for live
// observability. One Logger is shared process-wide; it is safe for
// concurrent use.
//
// Recording is fire-and-forget: no method returns an error to its caller
// and sink failures degrade to an operational warning plus a metric.
type Logger struct {
	text    *fileSink
	splunk  *fileSink
	console *slog.Logger
}

// New builds a Logger writing under dir, creating the directory if needed.
func New(dir string, console *slog.Logger) (*Logger, error) {
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	if console == nil {
		console = slog.Default()
	}
	return &Logger{
		text:    newFileSink(filepath.Join(dir, ActivityLogName)),
		splunk:  newFileSink(filepath.Join(dir, SplunkLogName)),
		console: console,
	}, nil
}

// Record is the generic primitive every wrapper delegates to. It assembles
// the canonical record, appends the plain-text line and the JSON line, and
// echoes the record to the console logger. Failures never propagate to the
// calling business operation.
func (l *Logger) Record(activityType string, details Details, req RequestInfo) {
	if activityType == "" {
		activityType = Unknown
	}
	ev := newEvent(activityType, details, req)
	eventsTotal.WithLabelValues(ev.ActivityType).Inc()

	detailsJSON, err := json.Marshal(ev.Details)
	if err != nil {
		// Non-serializable caller data must not lose the event; record
		// the failure in its place so both sinks still get a line.
		ev.Details = Details{"marshal_error": err.Error()}
		detailsJSON, _ = json.Marshal(ev.Details)
		l.console.Warn("activity details not serializable",
			"activity_type", ev.ActivityType, "error", err)
	}

	line := fmt.Sprintf("%s [%s] %s %s %s %s\n",
		ev.Timestamp, ev.ActivityType, ev.IPAddress, ev.HTTPMethod, ev.URL, detailsJSON)
	if err := l.text.Append([]byte(line)); err != nil {
		writeFailuresTotal.WithLabelValues("activity").Inc()
		l.console.Warn("activity sink append failed", "error", err)
	}

	record, err := json.Marshal(ev)
	if err == nil {
		if err := l.splunk.Append(append(record, '\n')); err != nil {
			writeFailuresTotal.WithLabelValues("splunk").Inc()
			l.console.Warn("splunk sink append failed", "error", err)
		}
	}

	l.console.Info("honeypot activity",
		"activity_type", ev.ActivityType,
		"ip", ev.IPAddress,
		"method", ev.HTTPMethod,
		"url", ev.URL,
		"session_id", ev.SessionID,
		"user_id", ev.UserID,
		"details", ev.Details,
	)
}

// AuthAttempt records a login or registration attempt.
func (l *Logger) AuthAttempt(email string, success bool, userID int64, sessionID string, req RequestInfo) {
	l.Record(TypeAuthAttempt, Details{
		"email":     email,
		"success":   success,
		"userId":    idValue(userID),
		"sessionId": strValue(sessionID),
	}, req)
}

// CartOperation records a cart VIEW/ADD/REMOVE/UPDATE. Zero-valued product
// ID and quantity are recorded as null, matching operations like VIEW that
// have no item argument.
func (l *Logger) CartOperation(operation string, productID int64, quantity int, userID int64, sessionID string, req RequestInfo) {
	var qty any
	if quantity != 0 {
		qty = quantity
	}
	l.Record(TypeCartOperation, Details{
		"operation":  operation,
		"product_id": idValue(productID),
		"quantity":   qty,
		"user_id":    idValue(userID),
		"session_id": strValue(sessionID),
	}, req)
}

// ProductView records a single-product detail view.
func (l *Logger) ProductView(productID, userID int64, sessionID string, req RequestInfo) {
	l.Record(TypeProductView, Details{
		"product_id": idValue(productID),
		"user_id":    idValue(userID),
		"session_id": strValue(sessionID),
	}, req)
}

// OrderCreated records a successful order placement.
func (l *Logger) OrderCreated(orderID, userID int64, totalAmount float64, sessionID string, req RequestInfo) {
	l.Record(TypeOrderCreated, Details{
		"order_id":     idValue(orderID),
		"user_id":      idValue(userID),
		"total_amount": totalAmount,
		"session_id":   strValue(sessionID),
	}, req)
}

// Suspicious records a validation failure, authorization failure,
// not-found, or caught error, tagged with a distinguishing sub-tag. When a
// real user agent is present the details are enriched with the parsed
// browser and OS for forensics.
func (l *Logger) Suspicious(activity string, details Details, sessionID string, req RequestInfo) {
	payload := Details{
		"activity":  activity,
		"details":   details,
		"sessionId": strValue(sessionID),
	}
	if req.UserAgent != "" {
		ua := useragent.New(req.UserAgent)
		name, version := ua.Browser()
		if name != "" {
			payload["ua_browser"] = name + " " + version
		}
		if os := ua.OS(); os != "" {
			payload["ua_os"] = os
		}
		if ua.Bot() {
			payload["ua_bot"] = true
		}
	}
	l.Record(TypeSuspicious, payload, req)
}

// APIAccess records a successfully served API endpoint hit.
func (l *Logger) APIAccess(endpoint, method string, userID int64, sessionID string, req RequestInfo) {
	l.Record(TypeAPIAccess, Details{
		"endpoint":   endpoint,
		"method":     method,
		"user_id":    idValue(userID),
		"session_id": strValue(sessionID),
	}, req)
}

// Close releases both sink handles.
func (l *Logger) Close() error {
	errText := l.text.Close()
	errSplunk := l.splunk.Close()
	if errText != nil {
		return errText
	}
	return errSplunk
}

func idValue(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func strValue(s string) any {
	if s == "" {
		return nil
	}
	return s
}
