package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/studiowebux/beeactions/internal/config"
	"github.com/studiowebux/beeactions/internal/logging"
	"github.com/studiowebux/beeactions/internal/store"
	"github.com/studiowebux/beeactions/internal/types"
)

// steppingClock advances one second on every reading
type steppingClock struct {
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

func runRecord(t *testing.T, p *types.Preset, container string, input string) string {
	t.Helper()
	var out bytes.Buffer

	settings := config.DefaultSettings()
	settings.Storage.BasePath = filepath.Dir(container)

	err := Record(context.Background(), RecordOptions{
		Preset:    p,
		Container: container,
		Settings:  settings,
		In:        strings.NewReader(input),
		Out:       &out,
		Logger:    logging.Discard(),
		Clock:     &steppingClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)},
	})
	if err != nil {
		t.Fatalf("Record returned error: %v\noutput:\n%s", err, out.String())
	}
	return out.String()
}

func eatAttack() *types.Preset {
	p := types.NewPreset("bees", "Ada")
	p.AddBinding("Eat", "E")
	p.AddBinding("Attack", "A")
	return p
}

func TestRecordEatAttackSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hive.bee")
	input := strings.Join([]string{
		"start",
		"", "hive 3", "foraging", "", "y", // dataset: author, sample, type, description, confirm
		"", "first run", "", // scan: author, description, confirm
		"E", "7",
		"A", "",
		"stop",
		"quit",
	}, "\n") + "\n"

	out := runRecord(t, eatAttack(), path, input)

	if !strings.Contains(out, "Recording Scan000") {
		t.Errorf("Expected scan start in output:\n%s", out)
	}
	if !strings.Contains(out, "Bee 7 did: Eat") {
		t.Errorf("Expected event line in output:\n%s", out)
	}

	ctx := context.Background()
	c, err := store.Open(ctx, path, logging.Discard())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer c.Close()

	raw, err := c.Attributes(ctx, c.RawGroup().ID)
	if err != nil {
		t.Fatalf("Attributes returned error: %v", err)
	}
	if raw.String("sample") != "hive 3" || raw.String("author") != "Ada" {
		t.Errorf("Unexpected dataset metadata: %+v", raw)
	}

	scan, err := c.FindGroup(ctx, c.RawGroup(), "Scan000")
	if err != nil {
		t.Fatalf("FindGroup returned error: %v", err)
	}
	attrs, _ := c.Attributes(ctx, scan.ID)
	if done, _ := attrs.Bool("scan_done"); !done {
		t.Error("Expected scan_done=true")
	}
	if attrs.String("description") != "first run" {
		t.Errorf("Expected scan description, got %q", attrs.String("description"))
	}

	actions, err := c.FindSeries(ctx, scan, "actions")
	if err != nil {
		t.Fatalf("FindSeries returned error: %v", err)
	}
	labels, _ := c.Strings(ctx, actions)
	if len(labels) != 1 || labels[0] != "Eat" {
		t.Errorf("Expected actions=[Eat], got %v", labels)
	}
	bees, _ := c.FindSeries(ctx, scan, "bees")
	ids, _ := c.Ints(ctx, bees)
	if len(ids) != 1 || ids[0] != 7 {
		t.Errorf("Expected bees=[7], got %v", ids)
	}
}

func TestRecordWithoutPresetRefusesStart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "hive.bee")

	var out bytes.Buffer
	settings := config.DefaultSettings()
	settings.Storage.BasePath = filepath.Join(dir, "data")
	err := Record(context.Background(), RecordOptions{
		Settings: settings,
		In:       strings.NewReader("start\nE\nquit\n"),
		Out:      &out,
		Logger:   logging.Discard(),
	})
	if err != nil {
		t.Fatalf("Record returned error: %v", err)
	}

	if !strings.Contains(out.String(), "You have to load a shortcut preset before starting.") {
		t.Errorf("Expected blocking notice, got:\n%s", out.String())
	}
	for _, p := range []string{path, settings.Storage.BasePath} {
		if _, err := os.Stat(p); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("Expected %s not to exist, got %v", p, err)
		}
	}
}

func TestRecordCancelledStartAndToggle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hive.bee")
	input := strings.Join([]string{
		"start", "", "", "", "", "n", // dataset dialog refused
		"toggle 1",
		"toggle 9",
		"list",
	}, "\n") + "\n"

	out := runRecord(t, eatAttack(), path, input)

	if !strings.Contains(out, "Start cancelled.") {
		t.Errorf("Expected cancelled start, got:\n%s", out)
	}
	if !strings.Contains(out, "Eat (E) disabled") {
		t.Errorf("Expected toggle output, got:\n%s", out)
	}
	if !strings.Contains(out, "No shortcut 9") {
		t.Errorf("Expected unknown shortcut message, got:\n%s", out)
	}
	if !strings.Contains(out, "[ ] E") {
		t.Errorf("Expected disabled shortcut in list, got:\n%s", out)
	}

	ctx := context.Background()
	c, err := store.Open(ctx, path, logging.Discard())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer c.Close()
	groups, _ := c.Groups(ctx, c.RawGroup())
	if len(groups) != 0 {
		t.Errorf("Expected no scan group after cancelled start, got %+v", groups)
	}
}
