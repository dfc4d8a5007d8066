package lifecycle

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/studiowebux/beeactions/internal/logging"
	"github.com/studiowebux/beeactions/internal/recorder"
	"github.com/studiowebux/beeactions/internal/store"
)

func TestInspectAndReadEvents(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)
	h.loadPreset(t)
	h.start(t)

	bee := func(id int) recorder.SubjectPrompt {
		return func(recorder.Pending) (int, bool) { return id, true }
	}
	h.clock.Advance(12 * time.Second)
	if _, ok, err := h.manager.Activate(ctx, "E", bee(7)); err != nil || !ok {
		t.Fatalf("Activate(E) returned ok=%v err=%v", ok, err)
	}
	h.clock.Advance(8 * time.Second)
	if _, ok, err := h.manager.Activate(ctx, "A", bee(9)); err != nil || !ok {
		t.Fatalf("Activate(A) returned ok=%v err=%v", ok, err)
	}
	if err := h.manager.Stop(ctx); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}

	path := h.manager.ContainerPath()
	if err := h.manager.Close(ctx); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	ds, err := Inspect(ctx, path, logging.Discard())
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	if ds.Sample != "hive 3" || ds.Author != "Ada" {
		t.Errorf("Unexpected dataset metadata: %+v", ds)
	}
	if len(ds.Scans) != 1 {
		t.Fatalf("Expected 1 scan, got %d", len(ds.Scans))
	}
	scan := ds.Scans[0]
	if scan.Name != "Scan000" || !scan.Done || scan.Events != 2 || scan.Description != "morning run" {
		t.Errorf("Unexpected scan summary: %+v", scan)
	}

	events, err := ReadEvents(ctx, path, "Scan000", logging.Discard())
	if err != nil {
		t.Fatalf("ReadEvents returned error: %v", err)
	}
	want := []string{
		"Elapsed time: 12 s, Bee 7 did: Eat",
		"Elapsed time: 20 s, Bee 9 did: Attack",
	}
	if len(events) != len(want) {
		t.Fatalf("Expected %d events, got %d", len(want), len(events))
	}
	for i, e := range events {
		if got := recorder.FormatLine(e); got != want[i] {
			t.Errorf("event %d = %q, want %q", i, got, want[i])
		}
	}

	if _, err := ReadEvents(ctx, path, "Scan007", logging.Discard()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for a missing scan, got %v", err)
	}
}

func TestInspectMissingContainer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.bee")
	if _, err := Inspect(context.Background(), path, logging.Discard()); err == nil {
		t.Fatal("Expected an error for a missing container")
	}
	if _, err := ReadEvents(context.Background(), path, "Scan000", logging.Discard()); err == nil {
		t.Fatal("Expected an error for a missing container")
	}
}
