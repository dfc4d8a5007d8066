package keybinds

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// Vocabulary is the ordered list of suggested action labels
type Vocabulary struct {
	labels []string
}

// NewVocabulary creates a vocabulary from labels, dropping blanks and duplicates
func NewVocabulary(labels []string) *Vocabulary {
	v := &Vocabulary{}
	for _, l := range labels {
		v.Add(l)
	}
	return v
}

// Add appends a label if it is not already known
func (v *Vocabulary) Add(label string) bool {
	label = strings.TrimSpace(label)
	if label == "" || v.Contains(label) {
		return false
	}
	v.labels = append(v.labels, label)
	return true
}

// Contains reports whether label is in the vocabulary
func (v *Vocabulary) Contains(label string) bool {
	for _, l := range v.labels {
		if l == label {
			return true
		}
	}
	return false
}

// Labels returns a copy of the labels in order
func (v *Vocabulary) Labels() []string {
	out := make([]string, len(v.labels))
	copy(out, v.labels)
	return out
}

// Len returns the number of labels
func (v *Vocabulary) Len() int {
	return len(v.labels)
}

// Next returns the label after current, wrapping around
// An unknown current label yields the first label
func (v *Vocabulary) Next(current string, step int) string {
	if len(v.labels) == 0 {
		return current
	}
	idx := -1
	for i, l := range v.labels {
		if l == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		if step < 0 {
			return v.labels[len(v.labels)-1]
		}
		return v.labels[0]
	}
	n := len(v.labels)
	return v.labels[((idx+step)%n+n)%n]
}

// Suggest returns labels matching the typed pattern, best match first
func (v *Vocabulary) Suggest(pattern string) []string {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return v.Labels()
	}
	matches := fuzzy.Find(pattern, v.labels)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Str)
	}
	return out
}
