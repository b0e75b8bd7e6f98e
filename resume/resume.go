// Package resume decides when to offer "continue watching" and applies the choice once the player can take it.
package resume

import (
	"errors"
	"fmt"

	"github.com/reelmark-cli/reelmark/media"
	"github.com/samber/mo"
)

// PromptThreshold is the saved position, in seconds, above which resuming is offered.
const PromptThreshold = 5.0

// Snapshot is the server's last known position for a video.
type Snapshot struct {
	TimestampSeconds float64 `json:"timestamp"`
	DisplayTime      string  `json:"timeSlap"`
}

// State of the prompt for the mounted video.
type State int

const (
	Unchecked State = iota
	Shown
	Suppressed
)

func (s State) String() string {
	switch s {
	case Shown:
		return "shown"
	case Suppressed:
		return "suppressed"
	default:
		return "unchecked"
	}
}

// Choice answers a shown prompt.
type Choice int

const (
	Resume Choice = iota
	Restart
)

func (c Choice) String() string {
	if c == Restart {
		return "restart"
	}
	return "resume"
}

// ErrNoPrompt is returned by Choose when no prompt is waiting for an answer.
var ErrNoPrompt = errors.New("no resume prompt is pending")

// Player is the part of a player the coordinator drives.
type Player interface {
	Seek(seconds float64) error
	Resume() error
}

type pair struct {
	videoID   string
	timestamp float64
}

// Coordinator runs the prompt state machine for one mounted video at a time.
// A (video, timestamp) pair is evaluated at most once per mount.
// Coordinator is not safe for concurrent use.
type Coordinator struct {
	player   Player
	mounted  media.Ref
	state    State
	snapshot Snapshot
	answered bool
	seen     map[pair]struct{}
	ready    bool
	pending  mo.Option[float64]
}

// NewCoordinator returns a Coordinator that seeks p.
func NewCoordinator(p Player) *Coordinator {
	return &Coordinator{
		player: p,
		seen:   make(map[pair]struct{}),
	}
}

// Mount switches to ref. Mounting the already mounted video keeps its state;
// any other video starts Unchecked with the player not yet ready.
func (c *Coordinator) Mount(ref media.Ref) {
	if !c.mounted.IsZero() && c.mounted.SameVideo(ref) {
		return
	}

	c.mounted = ref
	c.reset()
}

// Evaluate feeds the snapshot for the mounted video. It returns the resulting state
// and whether this call caused the transition out of Unchecked.
// A pair that was already evaluated during this mount leaves everything untouched.
func (c *Coordinator) Evaluate(snapshot Snapshot) (State, bool) {
	if c.mounted.IsZero() {
		return c.state, false
	}

	key := pair{videoID: c.mounted.ID(), timestamp: snapshot.TimestampSeconds}
	if _, ok := c.seen[key]; ok {
		return c.state, false
	}

	c.snapshot = snapshot
	c.answered = false
	c.pending = mo.None[float64]()
	if snapshot.TimestampSeconds > PromptThreshold {
		c.state = Shown
	} else {
		c.state = Suppressed
	}
	c.seen[key] = struct{}{}

	return c.state, true
}

// State returns the prompt state of the mounted video.
func (c *Coordinator) State() State {
	return c.state
}

// Snapshot returns the last evaluated snapshot.
func (c *Coordinator) Snapshot() Snapshot {
	return c.snapshot
}

// Waiting reports whether a shown prompt still needs an answer.
func (c *Coordinator) Waiting() bool {
	return c.state == Shown && !c.answered
}

// Choose answers the prompt. Resume seeks to the snapshot position and plays,
// deferring both until Ready when the player is still loading. Restart leaves playback at 0.
func (c *Coordinator) Choose(choice Choice) error {
	if !c.Waiting() {
		return ErrNoPrompt
	}
	c.answered = true

	if choice == Restart {
		c.pending = mo.None[float64]()
		return nil
	}

	if !c.ready {
		c.pending = mo.Some(c.snapshot.TimestampSeconds)
		return nil
	}

	return c.seek(c.snapshot.TimestampSeconds)
}

// Ready marks the player ready and applies a deferred seek once. A failed seek is not retried.
func (c *Coordinator) Ready() error {
	c.ready = true

	seconds, ok := c.pending.Get()
	if !ok {
		return nil
	}
	c.pending = mo.None[float64]()

	return c.seek(seconds)
}

// IsReady reports whether the player signalled ready since the last mount.
func (c *Coordinator) IsReady() bool {
	return c.ready
}

// Deferred returns the seek waiting for Ready, if any.
func (c *Coordinator) Deferred() mo.Option[float64] {
	return c.pending
}

// Teardown discards a deferred seek and unmounts.
func (c *Coordinator) Teardown() {
	c.mounted = media.Ref{}
	c.reset()
}

func (c *Coordinator) reset() {
	c.state = Unchecked
	c.snapshot = Snapshot{}
	c.answered = false
	c.seen = make(map[pair]struct{})
	c.ready = false
	c.pending = mo.None[float64]()
}

func (c *Coordinator) seek(seconds float64) error {
	if err := c.player.Seek(seconds); err != nil {
		return fmt.Errorf("seek to %.1fs: %w", seconds, err)
	}
	if err := c.player.Resume(); err != nil {
		return fmt.Errorf("resume playback: %w", err)
	}
	return nil
}
