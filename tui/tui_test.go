package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/reelmark-cli/reelmark/catalog"
	"github.com/reelmark-cli/reelmark/engine"
	"github.com/reelmark-cli/reelmark/history"
	"github.com/reelmark-cli/reelmark/media"
	"github.com/reelmark-cli/reelmark/offline"
	. "github.com/smartystreets/goconvey/convey"
)

const course = `{
	"id": "go-101",
	"title": "Go 101",
	"type": "series",
	"video_progress": {"e2": {"timestamp": 42, "timeSlap": "00:42"}},
	"series": [
		{"id": "e1", "title": "Hello", "url": "https://cdn.example.com/e1.m3u8"},
		{"id": "e2", "title": "Types", "url": "https://cdn.example.com/e2.m3u8"},
		{"id": "e3", "title": "Interfaces"}
	]
}`

type fakePlayer struct {
	running bool
	calls   []string
	seeks   []float64
	exited  chan struct{}
}

func (p *fakePlayer) Play(target, _ string) error {
	p.running = true
	p.calls = append(p.calls, "play "+target)
	return nil
}

func (p *fakePlayer) Load(target, _ string) error {
	p.calls = append(p.calls, "load "+target)
	return nil
}

func (p *fakePlayer) Resume() error {
	p.calls = append(p.calls, "resume")
	return nil
}

func (p *fakePlayer) Pause() error {
	p.calls = append(p.calls, "pause")
	return nil
}

func (p *fakePlayer) TogglePause() error {
	p.calls = append(p.calls, "toggle")
	return nil
}

func (p *fakePlayer) GetTimePos() (float64, error)  { return 0, errors.New("idle") }
func (p *fakePlayer) GetDuration() (float64, error) { return 0, errors.New("idle") }

func (p *fakePlayer) Seek(seconds float64) error {
	p.calls = append(p.calls, "seek")
	p.seeks = append(p.seeks, seconds)
	return nil
}

func (p *fakePlayer) IsRunning() bool { return p.running }

func (p *fakePlayer) Close() error {
	p.running = false
	p.calls = append(p.calls, "close")
	return nil
}

func (p *fakePlayer) Socket() string        { return "/nonexistent/reelmark-test.sock" }
func (p *fakePlayer) Wait() <-chan struct{} { return p.exited }

type memoryPersister struct {
	mu      sync.Mutex
	flushes []history.Flush
}

func (m *memoryPersister) Persist(_ context.Context, f history.Flush) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushes = append(m.flushes, f)
	return nil
}

func (m *memoryPersister) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.flushes)
}

func ptr(i int) *int { return &i }

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// run executes cmd and feeds its message back into the bubble.
func run(b *statefulBubble, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if msg, ok := cmd().(playerStartedMsg); ok {
		_, _ = b.Update(msg)
	}
}

func newTestBubble(persister history.Persister, offlineOnly bool, idx *offline.Index) (*statefulBubble, *fakePlayer) {
	c, err := catalog.Parse([]byte(course))
	So(err, ShouldBeNil)

	p := &fakePlayer{exited: make(chan struct{})}
	session, err := engine.New(engine.Options{
		ProfileID: "p1",
		Course:    c,
		Player:    p,
		Persister: persister,
		Index:     idx,
		Offline:   offlineOnly,
	})
	So(err, ShouldBeNil)

	return newBubble(&Options{Session: session, Player: p, Start: c.First().MustGet()}), p
}

func TestBubble(t *testing.T) {
	Convey("Given a bubble on a series", t, func() {
		persister := &memoryPersister{}
		b, p := newTestBubble(persister, false, nil)

		run(b, b.mount(b.start))

		Convey("The first episode should be launched", func() {
			So(b.state, ShouldEqual, playingState)
			So(p.calls, ShouldResemble, []string{"play https://cdn.example.com/e1.m3u8"})
		})

		Convey("A loaded file without a saved position should start playing", func() {
			_, _ = b.Update(playerEventMsg{name: "file-loaded"})
			So(p.calls, ShouldContain, "resume")
		})

		Convey("Player samples should drive the progress line", func() {
			_, _ = b.Update(playerEventMsg{name: "duration", data: 100.0})
			_, _ = b.Update(playerEventMsg{name: "time-pos", data: 80.0})

			So(b.percent, ShouldEqual, 80)
			So(b.notice, ShouldContainSubstring, "finished")
			So(b.session.IsVideoDone("e1"), ShouldBeTrue)
			So(b.View(), ShouldContainSubstring, "1:20 / 1:40")
			So(b.View(), ShouldContainSubstring, "+1 this session")
		})

		Convey("The pause property should be tracked", func() {
			_, _ = b.Update(playerEventMsg{name: "pause", data: true})
			So(b.paused, ShouldBeTrue)

			_, _ = b.Update(runes(" "))
			So(p.calls, ShouldContain, "toggle")
		})

		Convey("Moving to an episode with a saved position should ask first", func() {
			_, cmd := b.Update(runes("n"))
			run(b, cmd)

			So(b.current.ID(), ShouldEqual, "e2")
			So(b.state, ShouldEqual, promptState)
			So(p.calls[1:], ShouldResemble, []string{"pause", "play https://cdn.example.com/e2.m3u8"})
			So(b.View(), ShouldContainSubstring, "00:42")

			_, _ = b.Update(playerEventMsg{name: "file-loaded"})
			So(p.calls, ShouldNotContain, "resume")

			Convey("Resuming should seek to the saved position", func() {
				_, _ = b.Update(runes("r"))
				So(b.state, ShouldEqual, playingState)
				So(p.seeks, ShouldResemble, []float64{42})
				So(p.calls[len(p.calls)-2:], ShouldResemble, []string{"seek", "resume"})
			})

			Convey("Starting over should only start playback", func() {
				_, _ = b.Update(runes("s"))
				So(b.state, ShouldEqual, playingState)
				So(p.seeks, ShouldBeEmpty)
				So(p.calls[len(p.calls)-1], ShouldEqual, "resume")
			})
		})

		Convey("Resuming before the file loads should wait for it", func() {
			_, cmd := b.Update(runes("n"))
			run(b, cmd)
			So(b.state, ShouldEqual, promptState)

			_, _ = b.Update(runes("r"))
			So(b.state, ShouldEqual, playingState)
			So(p.seeks, ShouldBeEmpty)
			So(b.View(), ShouldContainSubstring, "resumes at 0:42")

			_, _ = b.Update(playerEventMsg{name: "file-loaded"})
			So(p.seeks, ShouldResemble, []float64{42})
			So(b.View(), ShouldNotContainSubstring, "resumes at")
		})

		Convey("Reaching the end of a file should move on", func() {
			_, cmd := b.Update(playerEventMsg{name: "eof-reached", data: true})
			So(cmd, ShouldNotBeNil)
			So(b.current.ID(), ShouldEqual, "e2")
		})

		Convey("An episode without any source should be reported and hold the player", func() {
			_, cmd := b.Update(runes("n"))
			run(b, cmd)
			_, cmd = b.Update(runes("n"))
			run(b, cmd)

			So(b.current.ID(), ShouldEqual, "e3")
			So(b.state, ShouldEqual, missingState)
			So(p.calls[len(p.calls)-1], ShouldEqual, "pause")
			So(p.calls, ShouldHaveLength, 4)
		})

		Convey("There is nothing before the first episode", func() {
			_, cmd := b.Update(runes("p"))
			So(cmd, ShouldBeNil)
			So(b.current.ID(), ShouldEqual, "e1")
		})

		Convey("Quitting should tear down and close the player", func() {
			_, _ = b.Update(playerEventMsg{name: "duration", data: 100.0})
			_, _ = b.Update(playerEventMsg{name: "time-pos", data: 30.0})

			_, cmd := b.Update(runes("q"))
			So(cmd(), ShouldHaveSameTypeAs, tea.QuitMsg{})
			So(p.running, ShouldBeFalse)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			So(b.session.Drain(ctx), ShouldBeNil)
			So(persister.count(), ShouldEqual, 1)

			b.shutdown()
			So(persister.count(), ShouldEqual, 1)
		})

		Convey("The player exiting should quit", func() {
			_, cmd := b.Update(playerExitedMsg{})
			So(cmd(), ShouldHaveSameTypeAs, tea.QuitMsg{})
		})
	})

	Convey("Given an offline bubble", t, func() {
		b, p := newTestBubble(history.Discard, true, offline.NewIndex(nil))
		run(b, b.mount(b.start))

		So(b.state, ShouldEqual, missingState)
		So(p.calls, ShouldBeEmpty)

		Convey("A reloaded index should start the download", func() {
			_, cmd := b.Update(indexReloadedMsg{index: offline.NewIndex([]offline.Entry{
				{ContentType: media.Series, SeriesIndex: ptr(0), LocalPath: "/videos/e1.mp4"},
			})})
			run(b, cmd)

			So(b.state, ShouldEqual, playingState)
			So(p.calls, ShouldResemble, []string{"play /videos/e1.mp4"})
		})
	})
}
