// Package progress turns playback samples into per-video watch progress and completion.
package progress

import (
	"math"

	"github.com/reelmark-cli/reelmark/media"
	"github.com/reelmark-cli/reelmark/player"
)

// CompletionThreshold is the watched percentage at which a video counts as done.
const CompletionThreshold = 75

// Percent returns floor(currentTime / duration * 100) clamped to [0, 100], or 0 without a duration.
func Percent(currentTime, duration float64) int {
	if duration <= 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return 0
	}
	if math.IsNaN(currentTime) || currentTime <= 0 {
		return 0
	}

	p := math.Floor(currentTime / duration * 100)
	if p > 100 {
		return 100
	}
	return int(p)
}

// Valid reports whether a sample carries usable numbers.
// Players emit negative, NaN or duration-less positions while warming up.
func Valid(s player.Sample) bool {
	for _, v := range []float64{s.CurrentTime, s.Duration} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	if s.CurrentTime < 0 {
		return false
	}

	return s.Duration > 0 || s.CurrentTime == 0
}

// Record is the last accepted position of one video.
type Record struct {
	VideoID   string
	Timestamp float64
	Duration  float64
	Done      bool
}

// Percent is derived from Timestamp and Duration on every call.
func (r Record) Percent() int {
	return Percent(r.Timestamp, r.Duration)
}

// Result describes one accepted sample.
type Result struct {
	Percent       int
	JustCompleted bool
	Done          bool
}

// Tracker keeps one Record per video seen in a session and decides completion.
//
// Only the mounted video accepts samples. The completion notification fires at most
// once per mount; Done never reverts within the session.
// Tracker is not safe for concurrent use.
type Tracker struct {
	mounted    media.Ref
	notified   bool
	records    map[string]*Record
	onComplete func(media.Ref)
}

// NewTracker returns an empty Tracker with nothing mounted.
func NewTracker() *Tracker {
	return &Tracker{records: make(map[string]*Record)}
}

// SetCompletionHandler binds the completion callback, replacing any previous one.
func (t *Tracker) SetCompletionHandler(fn func(media.Ref)) {
	t.onComplete = fn
}

// Mount makes ref the active video and re-arms the completion notification.
func (t *Tracker) Mount(ref media.Ref) {
	t.mounted = ref
	t.notified = false
}

// Unmount leaves no video active.
func (t *Tracker) Unmount() {
	t.mounted = media.Ref{}
	t.notified = false
}

// Mounted returns the active video.
func (t *Tracker) Mounted() media.Ref {
	return t.mounted
}

// Accept records a sample for the mounted video.
// Malformed samples and samples for any other video are dropped and reported with ok == false.
func (t *Tracker) Accept(ref media.Ref, sample player.Sample) (result Result, ok bool) {
	if t.mounted.IsZero() || !t.mounted.SameVideo(ref) || !Valid(sample) {
		return Result{}, false
	}

	record, exists := t.records[ref.ID()]
	if !exists {
		record = &Record{VideoID: ref.ID()}
		t.records[ref.ID()] = record
	}

	record.Timestamp = sample.CurrentTime
	record.Duration = sample.Duration

	result.Percent = record.Percent()
	if result.Percent >= CompletionThreshold && !t.notified {
		t.notified = true
		result.JustCompleted = true
		record.Done = true
	}
	result.Done = record.Done

	if result.JustCompleted && t.onComplete != nil {
		t.onComplete(ref)
	}

	return result, true
}

// Record returns a copy of the stored record for videoID.
func (t *Tracker) Record(videoID string) (Record, bool) {
	record, ok := t.records[videoID]
	if !ok {
		return Record{}, false
	}
	return *record, true
}

// IsDone reports whether videoID crossed the threshold during this session.
func (t *Tracker) IsDone(videoID string) bool {
	record, ok := t.records[videoID]
	return ok && record.Done
}
