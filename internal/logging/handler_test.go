package logging

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/bhanuanumula/typely-project/internal/testutil"
)

func TestEventLogHandler_WritesWarnAndAbove(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	inner := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(NewEventLogHandler(inner, db))

	logger.Info("just info")
	logger.Warn("something odd", "path", "/login")
	logger.Error("something broke", "error", "boom")

	rows, err := db.Query("SELECT level, message, metadata FROM events ORDER BY id")
	if err != nil {
		t.Fatalf("querying events: %v", err)
	}
	defer rows.Close()

	type event struct{ level, message, metadata string }
	var events []event
	for rows.Next() {
		var e event
		if err := rows.Scan(&e.level, &e.message, &e.metadata); err != nil {
			t.Fatalf("scanning event: %v", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows error: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2 (info must not be recorded)", len(events))
	}

	if events[0].level != EventLevelWarning || events[0].message != "something odd" {
		t.Errorf("unexpected first event: %+v", events[0])
	}
	if !strings.Contains(events[0].metadata, `"path":"/login"`) {
		t.Errorf("metadata missing attr: %s", events[0].metadata)
	}

	if events[1].level != EventLevelError || events[1].message != "something broke" {
		t.Errorf("unexpected second event: %+v", events[1])
	}
}

func TestEventLogHandler_WithAttrsKeepsEventLog(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	inner := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(NewEventLogHandler(inner, db)).With("component", "test")

	logger.Warn("derived logger warning")

	var count int64
	if err := db.QueryRow("SELECT COUNT(*) FROM events").Scan(&count); err != nil {
		t.Fatalf("counting events: %v", err)
	}
	if count != 1 {
		t.Errorf("event count = %d, want 1", count)
	}
}

func TestExtractMetadata_Escaping(t *testing.T) {
	if got := escapeJSON(`say "hi"` + "\n"); got != `say \"hi\"\n` {
		t.Errorf("escapeJSON = %q", got)
	}
}
