package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/studiowebux/beeactions/internal/recorder"
	"github.com/studiowebux/beeactions/internal/types"
)

// Console reads operator input line by line and answers the modal prompts
// of a recording session
type Console struct {
	ctx   context.Context
	lines chan string
	errs  chan error
	out   io.Writer
	done  bool
}

// NewConsole starts reading lines from in
func NewConsole(ctx context.Context, in io.Reader, out io.Writer) *Console {
	c := &Console{
		ctx:   ctx,
		lines: make(chan string),
		errs:  make(chan error, 1),
		out:   out,
	}
	go c.read(in)
	return c
}

func (c *Console) read(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case c.lines <- scanner.Text():
		case <-c.ctx.Done():
			return
		}
	}
	if err := scanner.Err(); err != nil {
		c.errs <- err
	}
	close(c.lines)
}

// ReadLine returns the next input line
// It returns io.EOF at the end of input and the context error on cancellation.
func (c *Console) ReadLine() (string, error) {
	if c.done {
		return "", io.EOF
	}
	select {
	case line, ok := <-c.lines:
		if !ok {
			c.done = true
			select {
			case err := <-c.errs:
				return "", err
			default:
				return "", io.EOF
			}
		}
		return line, nil
	case <-c.ctx.Done():
		return "", c.ctx.Err()
	}
}

// Ask prints a prompt and returns the trimmed answer
// An empty answer keeps current.
func (c *Console) Ask(label, current string) (string, bool) {
	if current != "" {
		fmt.Fprintf(c.out, "%s [%s]: ", label, current)
	} else {
		fmt.Fprintf(c.out, "%s: ", label)
	}
	line, err := c.ReadLine()
	if err != nil {
		fmt.Fprintln(c.out)
		return current, false
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return current, true
	}
	return line, true
}

// Confirm asks a yes/no question, defaulting to yes
func (c *Console) Confirm(question string) bool {
	fmt.Fprintf(c.out, "%s [Y/n]: ", question)
	line, err := c.ReadLine()
	if err != nil {
		fmt.Fprintln(c.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "y", "yes":
		return true
	default:
		return false
	}
}

// ConfirmDataset asks for the dataset metadata of a new container
func (c *Console) ConfirmDataset(info *types.DatasetInfo) bool {
	fmt.Fprintf(c.out, "\nDataset info (%s)\n", info.DateTime.Format(types.DateTimeLayout))
	fields := []struct {
		label string
		value *string
	}{
		{"Author", &info.Author},
		{"Sample", &info.Sample},
		{"Experiment type", &info.ExperimentType},
		{"Description", &info.Description},
	}
	for _, f := range fields {
		v, ok := c.Ask(f.label, *f.value)
		if !ok {
			return false
		}
		*f.value = v
	}
	return c.Confirm("Save dataset info?")
}

// ConfirmScan asks for the metadata of a new scan
func (c *Console) ConfirmScan(info *types.ScanInfo) bool {
	fmt.Fprintf(c.out, "\nScan %s (%s, %s)\n", info.ScanName, info.ScanType, info.DateTime.Format(types.DateTimeLayout))
	author, ok := c.Ask("Author", info.Author)
	if !ok {
		return false
	}
	info.Author = author
	description, ok := c.Ask("Description", info.Description)
	if !ok {
		return false
	}
	info.Description = description
	return c.Confirm("Start scan?")
}

// AskSubject asks for the bee number of an activation
// An empty or non-numeric answer dismisses the prompt.
func (c *Console) AskSubject(p recorder.Pending) (int, bool) {
	fmt.Fprintf(c.out, "Bee number for %s at %d s: ", p.Action, int(p.Elapsed))
	line, err := c.ReadLine()
	if err != nil {
		fmt.Fprintln(c.out)
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, false
	}
	return n, true
}
