package logger

import (
	"context"
	"log/slog"
	"strconv"
	"time"
)

// Mutation event types
const (
	EventPostCreate = "post_create"
	EventPostUpdate = "post_update"
	EventPostDelete = "post_delete"
)

// AuditEvent represents a data-changing action taken through a table session
type AuditEvent struct {
	EventType     string
	SessionID     string
	IPAddress     string
	PostID        int
	UserID        int
	Success       bool
	FailureReason string
	Metadata      map[string]string
}

// AuditLogger provides audit logging functionality
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger,
	}
}

// LogMutation logs a post mutation. Failures are logged at warn level.
func (al *AuditLogger) LogMutation(event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "mutation"),
		slog.String("event_type", event.EventType),
		slog.Bool("success", event.Success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.SessionID != "" {
		attrs = append(attrs, slog.String("session_id", event.SessionID))
	}
	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.PostID != 0 {
		attrs = append(attrs, slog.String("post_id", strconv.Itoa(event.PostID)))
	}
	if event.UserID != 0 {
		attrs = append(attrs, slog.String("user_id", strconv.Itoa(event.UserID)))
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}
	for key, val := range event.Metadata {
		attrs = append(attrs, slog.String(key, val))
	}

	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(context.Background(), level, "audit", attrs...)
}
