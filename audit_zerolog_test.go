package goShield

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestZerologSinkLevels(t *testing.T) {
	var buf bytes.Buffer
	sink := NewZerologSink(zerolog.New(&buf))

	sink.Emit(context.Background(), AuditEvent{
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		EventType: "token.issue",
		SessionID: "s1",
		Success:   true,
	})
	sink.Emit(context.Background(), AuditEvent{
		Timestamp:   time.Date(2026, 3, 1, 12, 0, 1, 0, time.UTC),
		EventType:   "csrf.reject",
		SessionID:   "s1",
		IdentityKey: "session:s1",
		Policy:      "api",
		Success:     false,
		ErrorKind:   "csrf_mismatch",
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d", len(lines))
	}

	var first, second map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("parse first line: %v", err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("parse second line: %v", err)
	}

	if first["level"] != "info" || first["event_type"] != "token.issue" {
		t.Fatalf("unexpected success record %v", first)
	}
	if second["level"] != "warn" || second["error_kind"] != "csrf_mismatch" {
		t.Fatalf("unexpected rejection record %v", second)
	}
	if second["policy"] != "api" || second["identity_key"] != "session:s1" {
		t.Fatalf("rejection record missing fields %v", second)
	}
	if second["message"] != "gate audit" {
		t.Fatalf("unexpected message %v", second["message"])
	}
}

func TestZerologSinkMetadata(t *testing.T) {
	var buf bytes.Buffer
	sink := NewZerologSink(zerolog.New(&buf))

	sink.Emit(context.Background(), AuditEvent{
		EventType: "gate.admit",
		Success:   true,
		Metadata:  map[string]string{"route": "/orders"},
	})

	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record); err != nil {
		t.Fatalf("parse record: %v", err)
	}
	if record["route"] != "/orders" {
		t.Fatalf("metadata field missing: %v", record)
	}
}
