package depthquality

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/montanaflynn/stats"
)

// Band is the quality classification of a metric value against its
// configured ranges.
type Band int

const (
	// BandNone means no configured range contains the value.
	BandNone Band = iota
	// BandGood is the acceptable range of a metric.
	BandGood
	// BandWarn is the borderline range of a metric.
	BandWarn
	// BandBad is the failing range of a metric.
	BandBad
)

func (b Band) String() string {
	switch b {
	case BandGood:
		return "good"
	case BandWarn:
		return "warn"
	case BandBad:
		return "bad"
	case BandNone:
		fallthrough
	default:
		return "none"
	}
}

// Interval is a closed numeric interval [Low, High].
type Interval struct {
	Low  float64
	High float64
}

// Contains reports whether the value lies within the interval, inclusive of
// both ends.
func (i Interval) Contains(v float64) bool {
	return v >= i.Low && v <= i.High
}

// Ranges are the three classification bands of a metric. They may overlap or
// leave gaps; no partition is enforced.
type Ranges struct {
	Good Interval
	Warn Interval
	Bad  Interval
}

// MetricSpec is the identity of a quality metric: its name, display bounds,
// unit label, operator-facing description, and classification ranges. The
// ranges are supplied atomically at construction so a track is never
// observed partially configured.
type MetricSpec struct {
	Name        string
	Min         float64
	Max         float64
	Unit        string
	Description string
	Ranges      Ranges
}

// Classify returns which configured band contains the value. Overlapping
// bands resolve in favor of good, then warn, then bad.
func (s MetricSpec) Classify(v float64) Band {
	switch {
	case s.Ranges.Good.Contains(v):
		return BandGood
	case s.Ranges.Warn.Contains(v):
		return BandWarn
	case s.Ranges.Bad.Contains(v):
		return BandBad
	default:
		return BandNone
	}
}

// Sample is one observed metric value and the time it was recorded.
type Sample struct {
	Value float64
	At    time.Time
}

// Summary are aggregate statistics over a track's recorded history.
type Summary struct {
	Mean   float64
	Median float64
	Min    float64
	Max    float64
}

// Track is the value sink for one named metric. It holds an append-only
// history of observed values, one per analyzed frame. A single writer (the
// per-frame callback) appends while any number of readers inspect the
// current value and history for display.
type Track struct {
	spec  MetricSpec
	clock clock.Clock

	mu      sync.RWMutex
	samples []Sample
}

// NewTrack returns an empty track for the given metric.
func NewTrack(spec MetricSpec) *Track {
	return NewTrackWithClock(spec, clock.New())
}

// NewTrackWithClock returns an empty track whose sample timestamps come from
// the given clock.
func NewTrackWithClock(spec MetricSpec, c clock.Clock) *Track {
	return &Track{spec: spec, clock: c}
}

// Spec returns the metric identity the track was created with.
func (t *Track) Spec() MetricSpec {
	return t.spec
}

// AddValue appends a new observed value to the track's history.
func (t *Track) AddValue(v float64) {
	now := t.clock.Now()
	t.mu.Lock()
	t.samples = append(t.samples, Sample{Value: v, At: now})
	t.mu.Unlock()
}

// CurrentValue returns the last appended value. The second return is false
// if nothing has been recorded yet.
func (t *Track) CurrentValue() (float64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.samples) == 0 {
		return 0, false
	}
	return t.samples[len(t.samples)-1].Value, true
}

// Classify returns which configured band contains the given value.
func (t *Track) Classify(v float64) Band {
	return t.spec.Classify(v)
}

// CurrentBand classifies the current value, or BandNone if the history is
// empty.
func (t *Track) CurrentBand() Band {
	v, ok := t.CurrentValue()
	if !ok {
		return BandNone
	}
	return t.spec.Classify(v)
}

// Len returns the number of recorded samples.
func (t *Track) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.samples)
}

// History returns a copy of the recorded samples in append order.
func (t *Track) History() []Sample {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Sample, len(t.samples))
	copy(out, t.samples)
	return out
}

// Summary computes aggregate statistics over the recorded history. It
// errors if the history is empty.
func (t *Track) Summary() (Summary, error) {
	t.mu.RLock()
	values := make(stats.Float64Data, len(t.samples))
	for i, s := range t.samples {
		values[i] = s.Value
	}
	t.mu.RUnlock()

	mean, err := stats.Mean(values)
	if err != nil {
		return Summary{}, err
	}
	median, err := stats.Median(values)
	if err != nil {
		return Summary{}, err
	}
	minVal, err := stats.Min(values)
	if err != nil {
		return Summary{}, err
	}
	maxVal, err := stats.Max(values)
	if err != nil {
		return Summary{}, err
	}
	return Summary{Mean: mean, Median: median, Min: minVal, Max: maxVal}, nil
}
