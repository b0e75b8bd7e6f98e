package player

import "math"

// Sample is one playback observation in seconds.
type Sample struct {
	CurrentTime float64
	Duration    float64
}

// PendingLimit bounds the time updates held while the duration is unknown.
const PendingLimit = 32

// TimeSource turns raw player callbacks into samples that always carry a known duration.
//
// Time updates that arrive before the duration is reported are held back and
// re-emitted in arrival order once it is; the oldest are dropped past PendingLimit.
// TimeSource is not safe for concurrent use.
type TimeSource struct {
	duration float64
	known    bool
	pending  []float64

	onSample func(Sample)
	onReady  func()
}

// NewTimeSource returns a TimeSource with no handlers bound.
func NewTimeSource() *TimeSource {
	return &TimeSource{}
}

// SetSampleHandler binds the sample callback, replacing any previous one.
func (ts *TimeSource) SetSampleHandler(fn func(Sample)) {
	ts.onSample = fn
}

// SetReadyHandler binds the ready callback, replacing any previous one.
func (ts *TimeSource) SetReadyHandler(fn func()) {
	ts.onReady = fn
}

// OnReady forwards the player's ready signal.
func (ts *TimeSource) OnReady() {
	if ts.onReady != nil {
		ts.onReady()
	}
}

// OnDurationChange records the media duration. Non-positive or non-finite values
// mark the duration unknown again.
func (ts *TimeSource) OnDurationChange(duration float64) {
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration <= 0 {
		ts.duration, ts.known = 0, false
		return
	}

	ts.duration, ts.known = duration, true

	pending := ts.pending
	ts.pending = nil
	for _, t := range pending {
		ts.emit(t)
	}
}

// OnTimeUpdate emits a sample for t, or holds it until the duration is known.
func (ts *TimeSource) OnTimeUpdate(t float64) {
	if !ts.known {
		if len(ts.pending) == PendingLimit {
			ts.pending = ts.pending[1:]
		}
		ts.pending = append(ts.pending, t)
		return
	}

	ts.emit(t)
}

// Duration returns the last known duration and whether one is known.
func (ts *TimeSource) Duration() (float64, bool) {
	return ts.duration, ts.known
}

// Reset forgets the duration and any held updates, as on a new media load.
func (ts *TimeSource) Reset() {
	ts.duration, ts.known = 0, false
	ts.pending = nil
}

// HandleEvent maps an mpv event, as delivered by EventListener, onto the TimeSource callbacks.
// It reports whether the event was consumed.
func (ts *TimeSource) HandleEvent(name string, data any) bool {
	switch name {
	case "time-pos":
		if t, ok := data.(float64); ok {
			ts.OnTimeUpdate(t)
		}
		return true
	case "duration":
		d, _ := data.(float64)
		ts.OnDurationChange(d)
		return true
	case "file-loaded":
		ts.OnReady()
		return true
	case "start-file":
		ts.Reset()
		return true
	default:
		return false
	}
}

func (ts *TimeSource) emit(t float64) {
	if ts.onSample != nil {
		ts.onSample(Sample{CurrentTime: t, Duration: ts.duration})
	}
}
