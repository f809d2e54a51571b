package goUmroh

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/MrEthical07/goUmroh/api"
	"github.com/MrEthical07/goUmroh/session"
)

// AuditEvent records one session lifecycle event.
type AuditEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	UserID    string            `json:"user_id,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	// InstallID and Seq are stamped by the client when the event is queued.
	InstallID string            `json:"install_id,omitempty"`
	Seq       uint64            `json:"seq"`
}

// AuditSink receives audit events from the dispatcher goroutine.
type AuditSink interface {
	Emit(ctx context.Context, event AuditEvent)
}

type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, AuditEvent) {}

// ChannelSink forwards events to a buffered channel.
type ChannelSink struct {
	events chan AuditEvent
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan AuditEvent, buffer),
	}
}

func (s *ChannelSink) Emit(ctx context.Context, event AuditEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Events() <-chan AuditEvent {
	return s.events
}

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

func (s *JSONWriterSink) Emit(ctx context.Context, event AuditEvent) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}

const (
	auditEventSessionRestored = "session_restored"
	auditEventSessionRejected = "session_rejected"
	auditEventLoginStarted    = "login_started"
	auditEventExchangeSuccess = "exchange_success"
	auditEventExchangeFailure = "exchange_failure"
	auditEventLogout          = "logout"
)

// AuditErrorCode is the coarse error class recorded on failed events.
type AuditErrorCode string

const (
	auditErrTransport    AuditErrorCode = "transport"
	auditErrUnauthorized AuditErrorCode = "unauthorized"
	auditErrNotFound     AuditErrorCode = "not_found"
	auditErrBackend      AuditErrorCode = "backend"
	auditErrStorage      AuditErrorCode = "storage"
	auditErrEmptyToken   AuditErrorCode = "empty_token"
	auditErrInternal     AuditErrorCode = "internal"
)

func (c *Client) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if c == nil || c.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	c.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, api.ErrTransport):
		return auditErrTransport
	case errors.Is(err, api.ErrEmptyExchange):
		return auditErrEmptyToken
	case api.IsUnauthorized(err):
		return auditErrUnauthorized
	case api.IsNotFound(err):
		return auditErrNotFound
	case api.StatusCode(err) > 0:
		return auditErrBackend
	case errors.Is(err, ErrCredentialStore),
		errors.Is(err, session.ErrStoreUnavailable),
		errors.Is(err, session.ErrCorrupt):
		return auditErrStorage
	default:
		return auditErrInternal
	}
}
