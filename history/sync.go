package history

import (
	"context"
	"sync"
	"time"

	"github.com/reelmark-cli/reelmark/log"
	"github.com/reelmark-cli/reelmark/media"
	"github.com/reelmark-cli/reelmark/player"
	"github.com/samber/mo"
	"golang.org/x/sync/singleflight"
)

// DefaultFlushTimeout bounds a single write when no timeout is configured.
const DefaultFlushTimeout = 10 * time.Second

// Syncer holds the last sample of the active video and writes it out on
// video switch and session end only.
//
// Writes run in the background and are never retried. Writes for the same
// (profile, video) that overlap are coalesced into the one already in flight.
// Syncer methods other than Drain must be called from a single goroutine.
type Syncer struct {
	persister Persister
	profileID string
	courseID  string
	timeout   time.Duration
	logger    log.Entry

	active media.Ref
	last   mo.Option[player.Sample]
	done   map[string]struct{}

	group    singleflight.Group
	inflight sync.WaitGroup
}

// NewSyncer returns a Syncer writing to p on behalf of one profile and course.
func NewSyncer(p Persister, profileID, courseID string, timeout time.Duration) *Syncer {
	if p == nil {
		p = Discard
	}
	if timeout <= 0 {
		timeout = DefaultFlushTimeout
	}

	return &Syncer{
		persister: p,
		profileID: profileID,
		courseID:  courseID,
		timeout:   timeout,
		logger:    log.With(map[string]any{"profile": profileID, "course": courseID}),
		done:      make(map[string]struct{}),
	}
}

// SetLogger replaces the entry flush outcomes are logged with.
func (s *Syncer) SetLogger(e log.Entry) {
	s.logger = e
}

// Activate makes ref the active video. Switching away from another video
// flushes that video's last sample first.
func (s *Syncer) Activate(ref media.Ref) {
	if !s.active.IsZero() && s.active.SameVideo(ref) {
		return
	}

	s.flushActive("switch")
	s.active = ref
	s.last = mo.None[player.Sample]()
}

// Active returns the active video.
func (s *Syncer) Active() media.Ref {
	return s.active
}

// Record replaces the in-memory sample of the active video. Nothing is written.
// Samples without a duration are ignored.
func (s *Syncer) Record(sample player.Sample) {
	if s.active.IsZero() || sample.Duration <= 0 {
		return
	}
	s.last = mo.Some(sample)
}

// Last returns the in-memory sample of the active video.
func (s *Syncer) Last() mo.Option[player.Sample] {
	return s.last
}

// MarkDone stops all further writes for videoID in this session.
func (s *Syncer) MarkDone(videoID string) {
	s.done[videoID] = struct{}{}
}

// End flushes the active video and leaves none active.
func (s *Syncer) End() {
	s.flushActive("end")
	s.active = media.Ref{}
	s.last = mo.None[player.Sample]()
}

// Drain waits for writes already started, or for ctx to end.
func (s *Syncer) Drain(ctx context.Context) error {
	finished := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Syncer) flushActive(reason string) {
	if s.active.IsZero() {
		return
	}

	sample, ok := s.last.Get()
	if !ok {
		return
	}

	videoID := s.active.ID()
	if _, done := s.done[videoID]; done {
		s.logger.Debugf("skip %s flush of %s: already done", reason, videoID)
		return
	}

	f := Flush{
		ProfileID: s.profileID,
		CourseID:  s.courseID,
		VideoID:   videoID,
		Timestamp: sample.CurrentTime,
		Duration:  sample.Duration,
	}

	key := s.profileID + "\x00" + videoID
	results := s.group.DoChan(key, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		return nil, s.persister.Persist(ctx, f)
	})

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		result := <-results
		switch {
		case result.Err != nil:
			s.logger.Warnf("%s flush of %s at %.1fs failed: %v", reason, videoID, f.Timestamp, result.Err)
		case result.Shared:
			s.logger.Debugf("%s flush of %s coalesced", reason, videoID)
		default:
			s.logger.Debugf("%s flush of %s at %.1fs", reason, videoID, f.Timestamp)
		}
	}()
}
