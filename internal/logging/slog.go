package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOperation = "operation"
	KeyService   = "service"
	KeyCalendar  = "calendar"
	KeyTimezone  = "timezone"
	KeyIntent    = "intent"
	KeyDuration  = "duration"
	KeyStatus    = "status"
	KeyError     = "error"
	KeyTool      = "tool"
	KeyRequestID = "request_id"
)

// Status values for consistent logging.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// WithTool returns a logger with the tool attribute set.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(KeyTool, tool))
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Service returns a slog attribute for the service name.
func Service(svc string) slog.Attr {
	return slog.String(KeyService, svc)
}

// Tool returns a slog attribute for the tool name.
func Tool(tool string) slog.Attr {
	return slog.String(KeyTool, tool)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Intent returns a slog attribute for a parsed query intent.
func Intent(kind string) slog.Attr {
	return slog.String(KeyIntent, kind)
}

// Timezone returns a slog attribute for a timezone name.
func Timezone(name string) slog.Attr {
	return slog.String(KeyTimezone, name)
}

// RequestID returns a slog attribute for an HTTP request ID.
func RequestID(id string) slog.Attr {
	return slog.String(KeyRequestID, id)
}

// Calendar returns a slog attribute for a calendar ID. IDs that are email
// addresses are hashed.
func Calendar(id string) slog.Attr {
	return slog.String(KeyCalendar, AnonymizeCalendarID(id))
}

// Err returns a slog attribute for an error.
// If err is nil, it returns an empty Group, which slog omits.
//
//	logger.Info("operation", logging.Err(err))  // Safe even if err is nil
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// AnonymizeCalendarID returns id unchanged unless it is an email address,
// in which case a short hash that keeps the domain is returned.
func AnonymizeCalendarID(id string) string {
	at := strings.LastIndex(id, "@")
	if at <= 0 {
		return id
	}
	hash := sha256.Sum256([]byte(id))
	return "cal:" + hex.EncodeToString(hash[:6]) + "@" + id[at+1:]
}
