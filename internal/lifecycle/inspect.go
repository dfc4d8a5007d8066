package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/studiowebux/beeactions/internal/recorder"
	"github.com/studiowebux/beeactions/internal/store"
	"github.com/studiowebux/beeactions/internal/types"
)

// ScanSummary describes one scan group of a container
type ScanSummary struct {
	Name        string
	Author      string
	DateTime    string
	ScanType    string
	Description string
	Done        bool
	Events      int
}

// Dataset is the dataset metadata and scans of a container
type Dataset struct {
	Path           string
	Author         string
	DateTime       string
	Sample         string
	ExperimentType string
	Description    string
	Scans          []ScanSummary
}

// openExisting opens a container for reading without creating one
func openExisting(ctx context.Context, path string, logger *slog.Logger) (*store.Container, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("container %s does not exist", path)
		}
		return nil, fmt.Errorf("stat container: %w", err)
	}
	return store.Open(ctx, path, logger)
}

// Inspect reads the dataset metadata and scan list of the container at path
func Inspect(ctx context.Context, path string, logger *slog.Logger) (*Dataset, error) {
	c, err := openExisting(ctx, path, logger)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	raw := c.RawGroup()
	attrs, err := c.Attributes(ctx, raw.ID)
	if err != nil {
		return nil, err
	}
	ds := &Dataset{
		Path:           path,
		Author:         attrs.String("author"),
		DateTime:       attrs.String("date_time"),
		Sample:         attrs.String("sample"),
		ExperimentType: attrs.String("experiment_type"),
		Description:    attrs.String("description"),
	}

	groups, err := c.Groups(ctx, raw)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		scanAttrs, err := c.Attributes(ctx, g.ID)
		if err != nil {
			return nil, err
		}
		done, _ := scanAttrs.Bool("scan_done")
		summary := ScanSummary{
			Name:        g.Name,
			Author:      scanAttrs.String("author"),
			DateTime:    scanAttrs.String("date_time"),
			ScanType:    scanAttrs.String("scan_type"),
			Description: scanAttrs.String("description"),
			Done:        done,
		}
		if s, err := c.FindSeries(ctx, g, recorder.TimeAxisSeries); err == nil {
			if summary.Events, err = c.Len(ctx, s); err != nil {
				return nil, err
			}
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		ds.Scans = append(ds.Scans, summary)
	}
	return ds, nil
}

// ReadEvents returns the events recorded in one scan, in recording order
func ReadEvents(ctx context.Context, path, scan string, logger *slog.Logger) ([]types.Event, error) {
	c, err := openExisting(ctx, path, logger)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	g, err := c.FindGroup(ctx, c.RawGroup(), scan)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", scan, err)
	}

	timeSeries, err := c.FindSeries(ctx, g, recorder.TimeAxisSeries)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", scan, err)
	}
	times, err := c.Floats(ctx, timeSeries)
	if err != nil {
		return nil, err
	}

	actionSeries, err := c.FindSeries(ctx, g, recorder.ActionsSeries)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", scan, err)
	}
	actions, err := c.Strings(ctx, actionSeries)
	if err != nil {
		return nil, err
	}

	var bees []int64
	if s, err := c.FindSeries(ctx, g, recorder.BeesSeries); err == nil {
		if bees, err = c.Ints(ctx, s); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	n := min(len(times), len(actions))
	events := make([]types.Event, 0, n)
	for i := 0; i < n; i++ {
		e := types.Event{Elapsed: times[i], Action: actions[i]}
		if i < len(bees) {
			id := int(bees[i])
			e.SubjectID = &id
		}
		events = append(events, e)
	}
	return events, nil
}
