package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestLoggerEmitPopulatesRequiredFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "run-123")
	if err != nil {
		t.Fatalf("unexpected error constructing logger: %v", err)
	}

	err = logger.Emit(Entry{
		Category: CategoryResolution,
		Severity: SeverityInfo,
		Message:  "merged configuration layers",
		Scope:    "project-file",
		Setting:  "node-linker",
	})
	if err != nil {
		t.Fatalf("emit failed: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}

	required := []string{"timestamp", "category", "message", "severity"}
	for _, key := range required {
		if _, ok := payload[key]; !ok {
			t.Fatalf("expected key %q in payload: %v", key, payload)
		}
	}

	if payload["category"] != string(CategoryResolution) {
		t.Fatalf("expected category %q, got %v", CategoryResolution, payload["category"])
	}
	if payload["runId"] != "run-123" {
		t.Fatalf("expected runId to be propagated, got %v", payload["runId"])
	}
	if payload["scope"] != "project-file" {
		t.Fatalf("expected scope to be preserved, got %v", payload["scope"])
	}
	if payload["setting"] != "node-linker" {
		t.Fatalf("expected setting to be preserved, got %v", payload["setting"])
	}
}

func TestLoggerEmitEscalatesSeverityOnError(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "run-123")
	if err != nil {
		t.Fatalf("unexpected error constructing logger: %v", err)
	}

	err = logger.Emit(Entry{
		Category: CategoryDiagnostic,
		Severity: SeverityInfo,
		Message:  "reading workspace manifest",
		Error:    errors.New("permission denied"),
	})
	if err != nil {
		t.Fatalf("emit failed: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if payload["severity"] != string(SeverityError) {
		t.Fatalf("expected severity escalated to error, got %v", payload["severity"])
	}
	metadata, ok := payload["metadata"].(map[string]any)
	if !ok || metadata["error"] != "permission denied" {
		t.Fatalf("expected error recorded in metadata, got %v", payload["metadata"])
	}
}

func TestLoggerRequiresWriterAndRunID(t *testing.T) {
	if _, err := NewLogger(nil, "run-123"); err == nil {
		t.Fatalf("expected error for nil writer")
	}
	var buf bytes.Buffer
	if _, err := NewLogger(&buf, "  "); err == nil {
		t.Fatalf("expected error for blank run ID")
	}
}
