// Package milestone decides which numeric thresholds a monotonically
// increasing counter has newly crossed. The evaluator is pure: the caller
// supplies the active thresholds and the highest previously-recorded value,
// and commits the returned records itself.
package milestone

import (
	"sort"
	"time"
)

// Threshold is one externally-configured milestone step.
type Threshold struct {
	EntityType    string
	MilestoneType string
	Value         int64
	Name          string
	Active        bool
}

// UserMilestone is a crossing fact. For a given (user, entity type, entity
// id, milestone type, value) at most one record ever exists; the store
// enforces this with a unique constraint, and Evaluate never re-emits a
// value at or below the last recorded one.
type UserMilestone struct {
	UserID        string
	EntityType    string
	EntityID      string
	MilestoneType string
	Value         int64
	Name          string
	ReachedAt     time.Time
}

// Request is one counter to evaluate. LastRecorded is the highest milestone
// value previously persisted for this (user, entity, type) key, zero when
// none exists. The caller must serialize evaluations per key: two concurrent
// evaluations against the same stale LastRecorded can duplicate or miss
// crossings.
type Request struct {
	UserID        string
	EntityType    string
	EntityID      string
	MilestoneType string
	CurrentValue  int64
	LastRecorded  int64
}

// Evaluate returns one record per threshold with
// LastRecorded < threshold <= CurrentValue, in ascending threshold order.
// Inactive thresholds and thresholds for other entity or milestone types are
// ignored. The threshold slice is defensively sorted; callers passing an
// unsorted slice get correct results.
func Evaluate(req Request, thresholds []Threshold, now time.Time) []UserMilestone {
	sorted := make([]Threshold, len(thresholds))
	copy(sorted, thresholds)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Value < sorted[j].Value
	})

	var crossed []UserMilestone
	for _, t := range sorted {
		if !t.Active {
			continue
		}
		if t.EntityType != req.EntityType || t.MilestoneType != req.MilestoneType {
			continue
		}
		if t.Value <= req.LastRecorded || t.Value > req.CurrentValue {
			continue
		}
		crossed = append(crossed, UserMilestone{
			UserID:        req.UserID,
			EntityType:    req.EntityType,
			EntityID:      req.EntityID,
			MilestoneType: req.MilestoneType,
			Value:         t.Value,
			Name:          t.Name,
			ReachedAt:     now,
		})
	}
	return crossed
}

// BatchItem pairs one request with the thresholds queried for it.
type BatchItem struct {
	Request    Request
	Thresholds []Threshold
}

// Summary counts crossings per milestone name across a whole batch.
type Summary struct {
	Name  string
	Count int
}

// EvaluateBatch resolves each item independently against its own
// LastRecorded value and aggregates a per-name summary in first-crossing
// order.
func EvaluateBatch(items []BatchItem, now time.Time) ([]UserMilestone, []Summary) {
	var crossed []UserMilestone
	counts := make(map[string]int)
	var names []string

	for _, item := range items {
		for _, m := range Evaluate(item.Request, item.Thresholds, now) {
			crossed = append(crossed, m)
			if counts[m.Name] == 0 {
				names = append(names, m.Name)
			}
			counts[m.Name]++
		}
	}

	summaries := make([]Summary, 0, len(names))
	for _, name := range names {
		summaries = append(summaries, Summary{Name: name, Count: counts[name]})
	}
	return crossed, summaries
}
