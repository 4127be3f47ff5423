// Package schedule holds the pure scheduling rules: conflict detection between
// event intervals and attendance statistics for daily-window events.
package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"scheduler-assistant/internal/model"
)

// ErrInvalidInterval is returned when an interval does not end after it starts.
var ErrInvalidInterval = errors.New("end time must be after start time")

// DefaultThreshold is how close two intervals must be on both ends to count as duplicates.
const DefaultThreshold = time.Hour

// ConflictMode selects the rule used to decide whether overlapping events clash.
type ConflictMode string

const (
	// ConflictStrict rejects any overlap.
	ConflictStrict ConflictMode = "strict"
	// ConflictThreshold rejects only near-duplicates: both starts and both ends
	// within the detector threshold of each other.
	ConflictThreshold ConflictMode = "threshold"
	// ConflictDisabled never reports a conflict.
	ConflictDisabled ConflictMode = "disabled"
)

// ParseConflictMode resolves a configuration value into a mode.
func ParseConflictMode(raw string) (ConflictMode, error) {
	switch mode := ConflictMode(strings.ToLower(strings.TrimSpace(raw))); mode {
	case ConflictStrict, ConflictThreshold, ConflictDisabled:
		return mode, nil
	case "":
		return ConflictThreshold, nil
	default:
		return "", fmt.Errorf("unknown conflict mode %q", raw)
	}
}

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Validate rejects empty and inverted intervals.
func (i Interval) Validate() error {
	if !i.End.After(i.Start) {
		return ErrInvalidInterval
	}
	return nil
}

// Overlaps uses the strict test: touching endpoints do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return model.Naive(i.Start).Before(model.Naive(o.End)) && model.Naive(i.End).After(model.Naive(o.Start))
}

// ConflictDetector finds the event, if any, that blocks a candidate interval.
type ConflictDetector struct {
	Mode      ConflictMode
	Threshold time.Duration
}

// NewConflictDetector returns a detector using the default one hour threshold.
func NewConflictDetector(mode ConflictMode) ConflictDetector {
	return ConflictDetector{Mode: mode, Threshold: DefaultThreshold}
}

// FindConflict returns the first event in existing that conflicts with candidate,
// or nil. Anytime, completed and excluded events are never considered.
func (d ConflictDetector) FindConflict(candidate Interval, excludeID string, existing []model.Event) *model.Event {
	if d.Mode == ConflictDisabled {
		return nil
	}
	for i := range existing {
		ev := &existing[i]
		if ev.TimingMode == model.TimingAnytime || ev.IsCompleted {
			continue
		}
		if excludeID != "" && ev.ID == excludeID {
			continue
		}
		other := Interval{Start: ev.StartDate, End: ev.EndDate}
		if !candidate.Overlaps(other) {
			continue
		}
		if d.Mode == ConflictThreshold && !d.nearDuplicate(candidate, other) {
			continue
		}
		return ev
	}
	return nil
}

func (d ConflictDetector) nearDuplicate(a, b Interval) bool {
	threshold := d.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	startDiff := absDuration(model.Naive(a.Start).Sub(model.Naive(b.Start)))
	endDiff := absDuration(model.Naive(a.End).Sub(model.Naive(b.End)))
	return startDiff < threshold && endDiff < threshold
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
