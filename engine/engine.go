// Package engine runs one playback session of a course: progress, completion,
// resume prompting, position flushing and offline resolution behind a single API.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/reelmark-cli/reelmark/catalog"
	"github.com/reelmark-cli/reelmark/completion"
	"github.com/reelmark-cli/reelmark/history"
	"github.com/reelmark-cli/reelmark/log"
	"github.com/reelmark-cli/reelmark/media"
	"github.com/reelmark-cli/reelmark/offline"
	"github.com/reelmark-cli/reelmark/player"
	"github.com/reelmark-cli/reelmark/progress"
	"github.com/reelmark-cli/reelmark/resume"
	"github.com/reelmark-cli/reelmark/util"
	"github.com/samber/mo"
)

var (
	// ErrUnknownVideo is returned when mounting a video that is not part of the course.
	ErrUnknownVideo = errors.New("video is not part of the course")
	// ErrClosed is returned by Mount after Teardown.
	ErrClosed = errors.New("session is torn down")
)

// Options configure a Session.
type Options struct {
	ProfileID string
	// CourseID defaults to the id of Course and must match it when set.
	CourseID string
	Course   *catalog.Course
	Player   resume.Player
	// Persister receives position flushes; nil discards them.
	Persister    history.Persister
	FlushTimeout time.Duration
	// Positions holds positions saved by earlier sessions. Optional.
	Positions history.Reader
	// Index is the course's download index, used when Offline is set
	// or when the catalog carries no URL for a video.
	Index   *offline.Index
	Offline bool
}

// Source is where the mounted video plays from.
type Source struct {
	URI   string
	Local bool
}

// Session is the engine for one (profile, course) pair.
//
// All methods except Drain must be called from one goroutine, the host's event loop.
type Session struct {
	id        string
	profileID string
	course    *catalog.Course
	offline   bool
	index     *offline.Index
	positions history.Reader
	timeout   time.Duration

	clock       *player.TimeSource
	tracker     *progress.Tracker
	coordinator *resume.Coordinator
	syncer      *history.Syncer
	completion  *completion.Aggregator

	active  media.Ref
	closed  bool
	onEvent func(Event)
	logger  log.Entry
}

// New validates opts and builds a Session with nothing mounted.
func New(opts Options) (*Session, error) {
	if strings.TrimSpace(opts.ProfileID) == "" {
		return nil, errors.New("engine: profile id is empty")
	}
	if opts.Course == nil {
		return nil, errors.New("engine: course is nil")
	}
	if opts.Player == nil {
		return nil, errors.New("engine: player is nil")
	}

	courseID := opts.Course.ID()
	if opts.CourseID != "" && opts.CourseID != courseID {
		return nil, fmt.Errorf("engine: course id %q does not match document %q", opts.CourseID, courseID)
	}

	if opts.FlushTimeout <= 0 {
		opts.FlushTimeout = history.DefaultFlushTimeout
	}

	s := &Session{
		id:          uuid.NewString(),
		profileID:   opts.ProfileID,
		course:      opts.Course,
		offline:     opts.Offline,
		index:       opts.Index,
		positions:   opts.Positions,
		timeout:     opts.FlushTimeout,
		clock:       player.NewTimeSource(),
		tracker:     progress.NewTracker(),
		coordinator: resume.NewCoordinator(opts.Player),
		syncer:      history.NewSyncer(opts.Persister, opts.ProfileID, courseID, opts.FlushTimeout),
		completion:  opts.Course.Completion(),
	}

	s.logger = log.With(map[string]any{"session": s.id, "profile": s.profileID, "course": courseID})
	s.syncer.SetLogger(s.logger)

	s.clock.SetSampleHandler(s.accept)
	s.clock.SetReadyHandler(s.Ready)
	s.tracker.SetCompletionHandler(s.completed)

	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Course returns the course the session plays.
func (s *Session) Course() *catalog.Course { return s.course }

// Active returns the mounted video.
func (s *Session) Active() media.Ref { return s.active }

// Offline reports whether the session plays downloaded files only.
func (s *Session) Offline() bool { return s.offline }

// SetEventHandler binds the event callback, replacing any previous one.
func (s *Session) SetEventHandler(fn func(Event)) {
	s.onEvent = fn
}

// SetIndex swaps in a reloaded download index.
func (s *Session) SetIndex(idx *offline.Index) {
	s.index = idx
}

// Clock returns the TimeSource fed by the player; player events can be passed to its HandleEvent.
func (s *Session) Clock() *player.TimeSource { return s.clock }

// Mount makes ref the active video. The previous video's position is flushed
// before anything about ref is recorded. Mounting the active video again only
// resolves its source.
//
// The returned source is absent when the video cannot be played, in which case
// an OfflineFileMissing event was emitted when offline.
func (s *Session) Mount(ref media.Ref) (mo.Option[Source], error) {
	if s.closed {
		return mo.None[Source](), ErrClosed
	}

	known, ok := s.course.Find(ref.ID()).Get()
	if !ok {
		return mo.None[Source](), fmt.Errorf("%w: %s", ErrUnknownVideo, ref.ID())
	}
	ref = known

	if s.active.IsZero() || !s.active.SameVideo(ref) {
		s.syncer.Activate(ref)
		s.tracker.Mount(ref)
		s.coordinator.Mount(ref)
		s.clock.Reset()
		s.active = ref
		s.logger.Infof("mounted %s", ref)

		if snapshot, ok := s.resumePoint(ref.ID()).Get(); ok {
			s.Reconcile(snapshot)
		}
	}

	return s.source(ref), nil
}

// Reconcile feeds a snapshot for the active video. A timestamp not yet seen
// during this mount is evaluated and may ask for a resume decision.
func (s *Session) Reconcile(snapshot resume.Snapshot) {
	if s.closed || s.active.IsZero() {
		return
	}
	s.evaluate(mo.Some(snapshot))
}

// Ready is called when the player can take seeks. A deferred resume is applied now.
func (s *Session) Ready() {
	if s.closed {
		return
	}
	if err := s.coordinator.Ready(); err != nil {
		s.logger.Warnf("deferred resume of %s: %v", s.active, err)
	}
}

// DurationChanged forwards a duration report of the player.
func (s *Session) DurationChanged(seconds float64) {
	s.clock.OnDurationChange(seconds)
}

// TimeUpdated forwards a position report of the player.
func (s *Session) TimeUpdated(seconds float64) {
	s.clock.OnTimeUpdate(seconds)
}

// Prompt returns the snapshot a resume decision is pending for.
func (s *Session) Prompt() mo.Option[resume.Snapshot] {
	if !s.coordinator.Waiting() {
		return mo.None[resume.Snapshot]()
	}
	return mo.Some(s.coordinator.Snapshot())
}

// Choose answers a pending resume decision.
func (s *Session) Choose(choice resume.Choice) error {
	if err := s.coordinator.Choose(choice); err != nil {
		return err
	}
	s.logger.Infof("%s: %s chosen", s.active, choice)
	return nil
}

// PendingSeek returns the resume position waiting for the player to become ready.
func (s *Session) PendingSeek() mo.Option[float64] {
	return s.coordinator.Deferred()
}

// PlayerReady reports whether the player signalled ready since the active video was mounted.
func (s *Session) PlayerReady() bool {
	return s.coordinator.IsReady()
}

// Record returns the session's record for a video.
func (s *Session) Record(videoID string) (progress.Record, bool) {
	return s.tracker.Record(videoID)
}

// IsVideoDone merges the server's and the session's completions.
func (s *Session) IsVideoDone(videoID string) bool {
	return s.completion.IsVideoDone(videoID)
}

// IsCourseDone reports course completion for the course's shape.
func (s *Session) IsCourseDone() bool {
	return s.completion.IsCourseDone()
}

// CompletedNow returns the videos completed during this session.
func (s *Session) CompletedNow() []string {
	return s.completion.Local()
}

// Counts returns done and total videos of the course.
func (s *Session) Counts() (done, total int) {
	return s.completion.Counts()
}

// Teardown flushes the active video's position and discards any deferred seek.
// It is safe to call on every exit path; only the first call has an effect.
func (s *Session) Teardown() {
	if s.closed {
		return
	}
	s.closed = true

	s.syncer.End()
	s.coordinator.Teardown()
	s.tracker.Unmount()
	s.clock.Reset()
	s.logger.Infof("torn down after %s", s.active)
	s.active = media.Ref{}
}

// Drain waits for flushes still being written, or for ctx to end.
func (s *Session) Drain(ctx context.Context) error {
	return s.syncer.Drain(ctx)
}

func (s *Session) accept(sample player.Sample) {
	if s.closed || s.active.IsZero() {
		return
	}

	result, ok := s.tracker.Accept(s.active, sample)
	if !ok {
		return
	}

	s.syncer.Record(sample)
	s.emit(Event{Kind: Progress, Ref: s.active, Percent: result.Percent, Sample: sample})
}

func (s *Session) completed(ref media.Ref) {
	s.completion.Observe(ref.ID())
	s.syncer.MarkDone(ref.ID())
	s.logger.Infof("completed %s", ref)
	s.emit(Event{Kind: Completed, Ref: ref, Percent: progress.CompletionThreshold})
}

// resumePoint is the freshest known position of a video: this session's own
// record first, then the saved entry of an earlier session, then the catalog.
func (s *Session) resumePoint(videoID string) mo.Option[resume.Snapshot] {
	if record, ok := s.tracker.Record(videoID); ok && record.Timestamp > 0 {
		return mo.Some(snapshotAt(record.Timestamp))
	}

	if s.positions != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		entry, err := s.positions.Get(ctx, s.profileID, s.course.ID(), videoID)
		switch {
		case err == nil && entry.Timestamp > 0:
			return mo.Some(snapshotAt(entry.Timestamp))
		case err != nil && !errors.Is(err, history.ErrNoRecord):
			s.logger.Warnf("saved position of %s: %v", videoID, err)
		}
	}

	return s.course.Snapshot(videoID)
}

func snapshotAt(seconds float64) resume.Snapshot {
	return resume.Snapshot{TimestampSeconds: seconds, DisplayTime: util.Clock(seconds)}
}

func (s *Session) evaluate(snapshot mo.Option[resume.Snapshot]) {
	snap, ok := snapshot.Get()
	if !ok {
		return
	}

	state, changed := s.coordinator.Evaluate(snap)
	if changed && state == resume.Shown {
		s.emit(Event{Kind: ResumeDecisionNeeded, Ref: s.active, Snapshot: snap})
	}
}

func (s *Session) source(ref media.Ref) mo.Option[Source] {
	local := s.index.Resolve(ref)

	if s.offline {
		if path, ok := local.Get(); ok {
			return mo.Some(Source{URI: path, Local: true})
		}
		s.logger.Warnf("%s is not downloaded", ref)
		s.emit(Event{Kind: OfflineFileMissing, Ref: ref})
		return mo.None[Source]()
	}

	if video, ok := s.course.Video(ref.ID()).Get(); ok && video.URL != "" {
		return mo.Some(Source{URI: video.URL})
	}
	if path, ok := local.Get(); ok {
		return mo.Some(Source{URI: path, Local: true})
	}
	return mo.None[Source]()
}

func (s *Session) emit(e Event) {
	if s.onEvent != nil {
		s.onEvent(e)
	}
}
