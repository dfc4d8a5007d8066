// Package recorder appends behavioural events to the series of an open scan.
//
// Every event is written in one transaction across the time, action and
// optional subject series, so the series always have the same length, and the
// container is flushed after each event.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/studiowebux/beeactions/internal/config"
	"github.com/studiowebux/beeactions/internal/paramtree"
	"github.com/studiowebux/beeactions/internal/store"
	"github.com/studiowebux/beeactions/internal/types"
)

var (
	// ErrNoSession is returned when no scan is attached
	ErrNoSession = errors.New("no recording session is open")
	// ErrSubjectRequired is returned when a subject id is missing and the policy is reject
	ErrSubjectRequired = errors.New("subject id required")
)

// Series names and titles inside a scan group
const (
	TimeAxisSeries = "time_axis"
	ActionsSeries  = "actions"
	BeesSeries     = "bees"
)

// Options controls subject tracking
type Options struct {
	SaveSubjectID  bool
	MissingSubject string
}

// OptionsFromSettings extracts the recorder options from the application settings
func OptionsFromSettings(s config.Recording) Options {
	return Options{SaveSubjectID: s.SaveSubjectID, MissingSubject: s.MissingSubject}
}

// Handles are the open series of the current scan
type Handles struct {
	Container *store.Container
	Scan      store.Group
	TimeAxis  store.Series
	Actions   store.Series
	Bees      *store.Series
}

// Pending is an activation waiting for its subject id
type Pending struct {
	Action       string
	Elapsed      float64
	NeedsSubject bool
}

// SubjectPrompt asks the operator for a subject id
// It returns false when the prompt was dismissed.
type SubjectPrompt func(p Pending) (int, bool)

// Recorder logs events into the attached scan
type Recorder struct {
	elapsed func() float64
	opts    Options
	handles *Handles
	lines   []string
	logger  *slog.Logger
}

// New creates a detached recorder reading time from elapsed
func New(elapsed func() float64, opts Options, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MissingSubject == "" {
		opts.MissingSubject = config.SubjectPolicyDrop
	}
	return &Recorder{
		elapsed: elapsed,
		opts:    opts,
		logger:  logger.With("component", "recorder"),
	}
}

// Options returns the current options
func (r *Recorder) Options() Options {
	return r.opts
}

// SetOptions replaces the options
// Subject tracking of an attached scan follows the series it was created with.
func (r *Recorder) SetOptions(opts Options) {
	if opts.MissingSubject == "" {
		opts.MissingSubject = config.SubjectPolicyDrop
	}
	r.opts = opts
}

// SettingsTree returns the recorder settings as a parameter tree
func (r *Recorder) SettingsTree() *paramtree.Node {
	return paramtree.Group("settings", "Settings",
		paramtree.Bool("save_bee_number", "Save bee number:", r.opts.SaveSubjectID),
		&paramtree.Node{
			Name: "missing_subject", Title: "Missing bee number:", Type: paramtree.TypeList,
			Value: r.opts.MissingSubject, Visible: true,
		},
	)
}

// CreateSeries creates the event series of a new scan inside tx
func (r *Recorder) CreateSeries(tx *store.Tx, container *store.Container, scan store.Group) (Handles, error) {
	h := Handles{Container: container, Scan: scan}

	var err error
	if h.TimeAxis, err = tx.CreateSeries(scan, TimeAxisSeries, "Timestamps", store.DTypeFloat); err != nil {
		return Handles{}, err
	}
	if err := tx.SetAttrs(h.TimeAxis.ID, store.Attributes{
		"title": store.StringAttr("Timestamps"),
		"units": store.StringAttr("seconds"),
	}); err != nil {
		return Handles{}, err
	}

	if h.Actions, err = tx.CreateSeries(scan, ActionsSeries, "Actions", store.DTypeString); err != nil {
		return Handles{}, err
	}
	if err := tx.SetAttrs(h.Actions.ID, store.Attributes{"title": store.StringAttr("Actions")}); err != nil {
		return Handles{}, err
	}

	if r.opts.SaveSubjectID {
		bees, err := tx.CreateSeries(scan, BeesSeries, "Bees", store.DTypeInt)
		if err != nil {
			return Handles{}, err
		}
		if err := tx.SetAttrs(bees.ID, store.Attributes{"title": store.StringAttr("Bees")}); err != nil {
			return Handles{}, err
		}
		h.Bees = &bees
	}

	return h, nil
}

// Attach binds the recorder to an open scan and clears the log view
func (r *Recorder) Attach(h Handles) {
	r.handles = &h
	r.lines = nil
	r.logger.Debug("attached", "scan", h.Scan.Name, "subjects", h.Bees != nil)
}

// Detach releases the scan handles
func (r *Recorder) Detach() {
	r.handles = nil
}

// Attached reports whether a scan is attached
func (r *Recorder) Attached() bool {
	return r.handles != nil
}

// TracksSubject reports whether the attached scan records subject ids
func (r *Recorder) TracksSubject() bool {
	return r.handles != nil && r.handles.Bees != nil
}

// Begin captures the elapsed time of an activation
func (r *Recorder) Begin(action string) (Pending, error) {
	if r.handles == nil {
		return Pending{}, ErrNoSession
	}
	return Pending{
		Action:       action,
		Elapsed:      r.elapsed(),
		NeedsSubject: r.handles.Bees != nil,
	}, nil
}

// Commit appends the pending event and flushes the container
func (r *Recorder) Commit(ctx context.Context, p Pending, subject *int) (types.Event, error) {
	h := r.handles
	if h == nil {
		return types.Event{}, ErrNoSession
	}
	if p.NeedsSubject && h.Bees == nil {
		return types.Event{}, fmt.Errorf("scan %s does not record subject ids", h.Scan.Name)
	}
	if h.Bees != nil && subject == nil {
		return types.Event{}, ErrSubjectRequired
	}

	err := h.Container.Update(ctx, func(tx *store.Tx) error {
		if _, err := tx.AppendFloat(h.TimeAxis, p.Elapsed); err != nil {
			return err
		}
		if _, err := tx.AppendString(h.Actions, p.Action); err != nil {
			return err
		}
		if h.Bees != nil {
			if _, err := tx.AppendInt(*h.Bees, int64(*subject)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Error("failed to append event", "action", p.Action, "error", err)
		return types.Event{}, fmt.Errorf("record %s: %w", p.Action, err)
	}

	if err := h.Container.Flush(ctx); err != nil {
		r.logger.Error("failed to flush container", "error", err)
		return types.Event{}, fmt.Errorf("flush after %s: %w", p.Action, err)
	}

	event := types.Event{Elapsed: p.Elapsed, Action: p.Action}
	if h.Bees != nil {
		id := *subject
		event.SubjectID = &id
	}
	r.lines = append([]string{FormatLine(event)}, r.lines...)
	r.logger.Debug("event recorded", "action", event.Action, "elapsed", event.Elapsed)
	return event, nil
}

// Abandon discards an activation whose subject prompt was dismissed
// The drop policy returns nil; the reject policy returns ErrSubjectRequired.
func (r *Recorder) Abandon(p Pending) error {
	if r.opts.MissingSubject == config.SubjectPolicyReject {
		r.logger.Warn("event rejected without subject id", "action", p.Action, "elapsed", p.Elapsed)
		return fmt.Errorf("%w: %s at %.1f s", ErrSubjectRequired, p.Action, p.Elapsed)
	}
	r.logger.Debug("event dropped without subject id", "action", p.Action, "elapsed", p.Elapsed)
	return nil
}

// Log records an action, prompting for a subject id when the scan tracks subjects
// It reports whether an event was written.
func (r *Recorder) Log(ctx context.Context, action string, prompt SubjectPrompt) (types.Event, bool, error) {
	p, err := r.Begin(action)
	if err != nil {
		return types.Event{}, false, err
	}

	var subject *int
	if p.NeedsSubject {
		var id int
		ok := false
		if prompt != nil {
			id, ok = prompt(p)
		}
		if !ok {
			return types.Event{}, false, r.Abandon(p)
		}
		subject = &id
	}

	event, err := r.Commit(ctx, p, subject)
	if err != nil {
		return types.Event{}, false, err
	}
	return event, true, nil
}

// Lines returns the log view, newest first
func (r *Recorder) Lines() []string {
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}

// FormatLine renders an event for the log view
func FormatLine(e types.Event) string {
	if e.SubjectID != nil {
		return fmt.Sprintf("Elapsed time: %d s, Bee %d did: %s", int(e.Elapsed), *e.SubjectID, e.Action)
	}
	return fmt.Sprintf("Elapsed time: %d s: %s", int(e.Elapsed), e.Action)
}
