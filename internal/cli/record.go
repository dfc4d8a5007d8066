// Package cli implements the line-oriented console recorder.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/studiowebux/beeactions/internal/config"
	"github.com/studiowebux/beeactions/internal/lifecycle"
	"github.com/studiowebux/beeactions/internal/recorder"
	"github.com/studiowebux/beeactions/internal/timer"
	"github.com/studiowebux/beeactions/internal/types"
)

// RecordOptions contains options for a console recording session
type RecordOptions struct {
	Preset     *types.Preset
	PresetPath string
	Container  string
	Author     string
	Settings   config.Settings
	In         io.Reader
	Out        io.Writer
	Logger     *slog.Logger
	Clock      timer.Clock
	// OnContainer is called with every container the session opens
	OnContainer func(path string)
}

const consoleHelp = `Commands:
  start          open a scan and start the timer
  stop           close the scan and stop the timer
  toggle <n>     enable or disable shortcut n
  list           show the shortcuts
  status         show the session state
  log            show the events of the current scan
  quit           stop and exit
Any other input is treated as a shortcut key.`

// Record runs a console recording session until quit, end of input or cancellation
// The container is released on every exit path.
func Record(ctx context.Context, opts RecordOptions) (err error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	out := opts.Out

	mgr := lifecycle.NewManager(lifecycle.Options{
		Settings: opts.Settings,
		Clock:    opts.Clock,
		Logger:   logger,
	})
	defer func() {
		if closeErr := mgr.Close(context.WithoutCancel(ctx)); closeErr != nil {
			logger.Error("failed to close container", "error", closeErr)
			err = errors.Join(err, closeErr)
		}
	}()

	if opts.Preset != nil {
		if err := mgr.LoadPreset(opts.Preset, opts.PresetPath); err != nil {
			return err
		}
	}
	if opts.Container != "" {
		if err := mgr.OpenContainer(ctx, opts.Container); err != nil {
			return err
		}
		notifyContainer(opts, mgr)
	}

	console := NewConsole(ctx, opts.In, out)
	mgr.BindTimer(ctx, func() lifecycle.Provenance {
		return lifecycle.Provenance{Author: authorFor(opts, mgr)}
	}, console)

	fmt.Fprintln(out, "Bee actions console recorder. Type 'help' for commands.")
	printBindings(out, mgr)

	for {
		line, readErr := console.ReadLine()
		if errors.Is(readErr, io.EOF) {
			return nil
		}
		if readErr != nil {
			if ctx.Err() != nil {
				return nil
			}
			return readErr
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		fields := strings.Fields(input)

		switch strings.ToLower(fields[0]) {
		case "quit", "exit":
			return nil

		case "help":
			fmt.Fprintln(out, consoleHelp)

		case "list":
			printBindings(out, mgr)

		case "status":
			fmt.Fprintf(out, "State: %s", mgr.State())
			if path := mgr.ContainerPath(); path != "" {
				fmt.Fprintf(out, ", container %s", path)
			}
			if name := mgr.ScanName(); name != "" {
				fmt.Fprintf(out, ", scan %s, %.1f s", name, mgr.Stopwatch().Elapsed())
			}
			fmt.Fprintln(out)

		case "log":
			for _, l := range mgr.Recorder().Lines() {
				fmt.Fprintln(out, l)
			}

		case "start":
			if mgr.Recording() {
				fmt.Fprintln(out, "Already recording.")
				continue
			}
			if err := mgr.Stopwatch().Start(); err != nil {
				report(out, logger, "start", err)
				continue
			}
			if mgr.Recording() {
				notifyContainer(opts, mgr)
				fmt.Fprintf(out, "Recording %s in %s\n", mgr.ScanName(), mgr.ContainerPath())
			} else {
				fmt.Fprintln(out, "Start cancelled.")
			}

		case "stop":
			if err := mgr.Stopwatch().Reset(); err != nil {
				report(out, logger, "stop", err)
				continue
			}
			fmt.Fprintf(out, "Stopped %s after %.1f s\n", mgr.ScanName(), mgr.Stopwatch().Elapsed())

		case "toggle":
			if len(fields) != 2 {
				fmt.Fprintln(out, "Usage: toggle <n>")
				continue
			}
			toggle(out, logger, mgr, fields[1])

		default:
			event, ok, err := mgr.Activate(ctx, input, console.AskSubject)
			if err != nil {
				report(out, logger, "record", err)
				continue
			}
			if ok {
				fmt.Fprintln(out, recorder.FormatLine(event))
			} else if !mgr.Recording() {
				fmt.Fprintln(out, "Not recording. Type 'start' first.")
			}
		}
	}
}

func authorFor(opts RecordOptions, mgr *lifecycle.Manager) string {
	if opts.Author != "" {
		return opts.Author
	}
	if p := mgr.Preset(); p != nil && p.Author != "" {
		return p.Author
	}
	return opts.Settings.Author
}

func notifyContainer(opts RecordOptions, mgr *lifecycle.Manager) {
	if opts.OnContainer != nil && mgr.ContainerPath() != "" {
		opts.OnContainer(mgr.ContainerPath())
	}
}

func toggle(out io.Writer, logger *slog.Logger, mgr *lifecycle.Manager, arg string) {
	p := mgr.Preset()
	if p == nil {
		report(out, logger, "toggle", lifecycle.ErrNoPreset)
		return
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(p.Actions) {
		fmt.Fprintf(out, "No shortcut %s\n", arg)
		return
	}
	b := p.Actions[n-1]
	enabled, err := mgr.ToggleBinding(b.ID)
	if err != nil {
		report(out, logger, "toggle", err)
		return
	}
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	fmt.Fprintf(out, "%s (%s) %s\n", b.Action, b.Key, state)
}

func printBindings(out io.Writer, mgr *lifecycle.Manager) {
	p := mgr.Preset()
	if p == nil {
		fmt.Fprintln(out, "No preset loaded.")
		return
	}
	fmt.Fprintf(out, "Preset %s:\n", p.Filename)
	for i, b := range p.Actions {
		mark := "x"
		if !b.Enabled {
			mark = " "
		}
		fmt.Fprintf(out, "  %d. [%s] %-6s %s\n", i+1, mark, b.Key, b.Action)
	}
}

func report(out io.Writer, logger *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrNoPreset):
		fmt.Fprintln(out, "You have to load a shortcut preset before starting.")
	case errors.Is(err, lifecycle.ErrNoSession):
		fmt.Fprintln(out, "No recording session is open.")
	case errors.Is(err, recorder.ErrSubjectRequired):
		fmt.Fprintln(out, "Event rejected: a bee number is required.")
	default:
		logger.Error("operation failed", "op", op, "error", err)
		fmt.Fprintf(out, "Error: %v\n", err)
	}
}
