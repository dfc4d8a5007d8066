package analytics

import (
	"math"
	"sort"

	"github.com/studiowebux/beeactions/internal/types"
)

// Stats summarizes the events recorded for one action label
type Stats struct {
	Action string
	Count  int
	// FirstAt and LastAt are elapsed seconds of the first and last event
	FirstAt float64
	LastAt  float64
	// MeanInterval is the mean time between consecutive events, 0 with fewer than two events
	MeanInterval float64
	// PerMinute is the event rate over the scan duration
	PerMinute float64
	// Bees counts events per subject id; events without a subject are not counted
	Bees map[int]int
}

// Summary is the statistics of a scan
type Summary struct {
	Events   int
	Duration float64
	Actions  []Stats
	// Bees is the number of distinct subjects seen in the scan
	Bees int
}

// Summarize computes per-action statistics, ordered by descending count then label
// duration is the scan length in seconds; a zero duration uses the last event time.
func Summarize(events []types.Event, duration float64) Summary {
	if duration <= 0 {
		for _, e := range events {
			duration = math.Max(duration, e.Elapsed)
		}
	}

	byAction := make(map[string]*Stats)
	last := make(map[string]float64)
	intervals := make(map[string]float64)
	bees := make(map[int]struct{})

	for _, e := range events {
		s, ok := byAction[e.Action]
		if !ok {
			s = &Stats{Action: e.Action, FirstAt: e.Elapsed, Bees: make(map[int]int)}
			byAction[e.Action] = s
		} else {
			intervals[e.Action] += e.Elapsed - last[e.Action]
		}
		last[e.Action] = e.Elapsed
		s.Count++
		s.LastAt = e.Elapsed
		if e.SubjectID != nil {
			s.Bees[*e.SubjectID]++
			bees[*e.SubjectID] = struct{}{}
		}
	}

	out := Summary{Events: len(events), Duration: duration, Bees: len(bees)}
	for action, s := range byAction {
		if s.Count > 1 {
			s.MeanInterval = intervals[action] / float64(s.Count-1)
		}
		if duration > 0 {
			s.PerMinute = float64(s.Count) / duration * 60
		}
		out.Actions = append(out.Actions, *s)
	}

	sort.Slice(out.Actions, func(i, j int) bool {
		if out.Actions[i].Count != out.Actions[j].Count {
			return out.Actions[i].Count > out.Actions[j].Count
		}
		return out.Actions[i].Action < out.Actions[j].Action
	})
	return out
}

// TopBees returns the subject ids of s ordered by descending event count, at most n
func (s Stats) TopBees(n int) []int {
	ids := make([]int, 0, len(s.Bees))
	for id := range s.Bees {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if s.Bees[ids[i]] != s.Bees[ids[j]] {
			return s.Bees[ids[i]] > s.Bees[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if n > 0 && len(ids) > n {
		ids = ids[:n]
	}
	return ids
}
