package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/studiowebux/beeactions/internal/analytics"
	"github.com/studiowebux/beeactions/internal/config"
	"github.com/studiowebux/beeactions/internal/lifecycle"
	"github.com/studiowebux/beeactions/internal/logging"
)

var scansCmd = &cobra.Command{
	Use:   "scans <container>",
	Short: "List the scans of a container",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScans(cmd, args[0])
	},
}

var showCmd = &cobra.Command{
	Use:   "show <container> <scan>",
	Short: "Print the events recorded in a scan",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShow(cmd, args[0], args[1])
	},
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Print the most recent run log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLog(cmd)
	},
}

var (
	flagLogPathOnly bool
	flagShowStats   bool
)

func init() {
	logCmd.Flags().BoolVar(&flagLogPathOnly, "path", false, "Print only the log file path")
	showCmd.Flags().BoolVarP(&flagShowStats, "stats", "s", false, "Print per-action statistics instead of the events")
}

func runScans(cmd *cobra.Command, path string) error {
	path, err := config.ExpandPath(path)
	if err != nil {
		return err
	}
	ds, err := lifecycle.Inspect(cmd.Context(), path, logging.Discard())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Container:  %s\n", ds.Path)
	if ds.Author != "" || ds.Sample != "" {
		fmt.Fprintf(out, "Author:     %s\n", ds.Author)
		fmt.Fprintf(out, "Date:       %s\n", ds.DateTime)
		fmt.Fprintf(out, "Sample:     %s\n", ds.Sample)
		fmt.Fprintf(out, "Experiment: %s\n", ds.ExperimentType)
		if ds.Description != "" {
			fmt.Fprintf(out, "Notes:      %s\n", ds.Description)
		}
	}

	if len(ds.Scans) == 0 {
		fmt.Fprintln(out, "No scans recorded.")
		return nil
	}

	rows := make([][]string, 0, len(ds.Scans))
	for _, s := range ds.Scans {
		done := "open"
		if s.Done {
			done = "done"
		}
		rows = append(rows, []string{s.Name, s.DateTime, s.Author, strconv.Itoa(s.Events), done, s.Description})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Scan", "Started", "Author", "Events", "State", "Description"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
	))
	return nil
}

func runShow(cmd *cobra.Command, path, scan string) error {
	path, err := config.ExpandPath(path)
	if err != nil {
		return err
	}
	events, err := lifecycle.ReadEvents(cmd.Context(), path, scan, logging.Discard())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(events) == 0 {
		fmt.Fprintf(out, "No events in %s\n", scan)
		return nil
	}
	if flagShowStats {
		printStats(out, analytics.Summarize(events, 0))
		return nil
	}

	rows := make([][]string, 0, len(events))
	for i, e := range events {
		bee := "-"
		if e.SubjectID != nil {
			bee = strconv.Itoa(*e.SubjectID)
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), strconv.FormatFloat(e.Elapsed, 'f', 1, 64), bee, e.Action})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Elapsed (s)", "Bee", "Action"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignLeft},
	))
	return nil
}

func printStats(out io.Writer, summary analytics.Summary) {
	fmt.Fprintf(out, "%d events over %.1f s, %d bees\n", summary.Events, summary.Duration, summary.Bees)

	rows := make([][]string, 0, len(summary.Actions))
	for _, s := range summary.Actions {
		top := make([]string, 0, 3)
		for _, id := range s.TopBees(3) {
			top = append(top, fmt.Sprintf("%d (%d)", id, s.Bees[id]))
		}
		rows = append(rows, []string{
			s.Action,
			strconv.Itoa(s.Count),
			strconv.FormatFloat(s.PerMinute, 'f', 2, 64),
			strconv.FormatFloat(s.MeanInterval, 'f', 1, 64),
			strconv.FormatFloat(s.FirstAt, 'f', 1, 64),
			strconv.FormatFloat(s.LastAt, 'f', 1, 64),
			strings.Join(top, ", "),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Action", "Count", "Per min", "Mean gap (s)", "First (s)", "Last (s)", "Top bees"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft},
	))
}

func runLog(cmd *cobra.Command) error {
	if err := config.Initialize(flagHome); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}
	path, err := logging.LatestRunFile(config.LogDir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if flagLogPathOnly {
		fmt.Fprintln(out, path)
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read log file: %w", err)
	}
	fmt.Fprintf(out, "==> %s <==\n", path)
	_, err = out.Write(data)
	return err
}
