package goShield

import (
	"context"

	"github.com/rs/zerolog"
)

var _ AuditSink = (*ZerologSink)(nil)

// ZerologSink writes audit events as structured zerolog records. Rejections
// log at warn level, everything else at info.
type ZerologSink struct {
	log zerolog.Logger
}

// NewZerologSink describes the newzerologsink operation and its observable behavior.
//
// NewZerologSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewZerologSink(log zerolog.Logger) *ZerologSink {
	return &ZerologSink{log: log}
}

// Emit describes the emit operation and its observable behavior.
//
// Emit does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *ZerologSink) Emit(_ context.Context, event AuditEvent) {
	if s == nil {
		return
	}

	evt := s.log.Info()
	if !event.Success {
		evt = s.log.Warn()
	}

	evt = evt.
		Time("timestamp", event.Timestamp).
		Str("event_type", event.EventType).
		Bool("success", event.Success)

	if event.SessionID != "" {
		evt = evt.Str("session_id", event.SessionID)
	}
	if event.IdentityKey != "" {
		evt = evt.Str("identity_key", event.IdentityKey)
	}
	if event.Policy != "" {
		evt = evt.Str("policy", event.Policy)
	}
	if event.IP != "" {
		evt = evt.Str("ip", event.IP)
	}
	if event.ErrorKind != "" {
		evt = evt.Str("error_kind", event.ErrorKind)
	}
	for k, v := range event.Metadata {
		evt = evt.Str(k, v)
	}

	evt.Msg("gate audit")
}
