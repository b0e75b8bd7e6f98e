package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/reelmark-cli/reelmark/engine"
	"github.com/reelmark-cli/reelmark/icon"
	"github.com/reelmark-cli/reelmark/key"
	"github.com/reelmark-cli/reelmark/log"
	"github.com/reelmark-cli/reelmark/media"
	"github.com/reelmark-cli/reelmark/player"
	"github.com/reelmark-cli/reelmark/style"
	"github.com/reelmark-cli/reelmark/util"
	"github.com/spf13/viper"
)

// statefulBubble holds the view state of one playback session.
type statefulBubble struct {
	state  state
	keymap *statefulKeymap

	// components
	spinnerC  spinner.Model
	progressC progress.Model
	helpC     help.Model

	session  *engine.Session
	player   player.Player
	listener *player.EventListener
	send     func(tea.Msg)

	start    media.Ref
	current  media.Ref
	percent  int
	position float64
	duration float64
	paused   bool
	started  bool
	closed   bool

	notice    string
	lastError error

	width, height int
}

func newBubble(options *Options) *statefulBubble {
	bubble := &statefulBubble{
		keymap:  newStatefulKeymap(),
		session: options.Session,
		player:  options.Player,
		start:   options.Start,
	}

	bubble.helpC = help.New()

	bubble.spinnerC = spinner.New()
	bubble.spinnerC.Spinner = spinner.Dot
	bubble.spinnerC.Style = lipgloss.NewStyle().Foreground(style.AccentColor)

	bubble.progressC = progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())

	bubble.session.SetEventHandler(bubble.onEngineEvent)
	bubble.setState(loadingState)

	if w, h, err := util.TerminalSize(); err == nil {
		bubble.resize(w, h)
	}

	return bubble
}

func (b *statefulBubble) setState(s state) {
	if b.state != s {
		log.Debugf("view: %s -> %s", b.state, s)
	}
	b.state = s
	b.keymap.setState(s)
}

func (b *statefulBubble) raiseError(err error) {
	b.lastError = err
	b.setState(errorState)
}

// resize applies the terminal size, capped by the configured view width.
func (b *statefulBubble) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()

	if fixed := viper.GetInt(key.TUIWidth); fixed > 0 {
		width = util.Min(width, fixed+x)
	}

	b.width = util.Max(width-x, 0)
	b.height = util.Max(height-y, 0)
	b.helpC.Width = b.width
	b.progressC.Width = b.width
}

// onEngineEvent runs inside Update, as every session call is made from there.
func (b *statefulBubble) onEngineEvent(e engine.Event) {
	switch e.Kind {
	case engine.Progress:
		if !e.Ref.SameVideo(b.current) {
			return
		}
		b.percent = e.Percent
		b.position = e.Sample.CurrentTime
		b.duration = e.Sample.Duration
	case engine.Completed:
		b.notice = fmt.Sprintf("%s %s finished", icon.Get(icon.Done), e.Ref)
	case engine.ResumeDecisionNeeded:
		b.setState(promptState)
	case engine.OfflineFileMissing:
		b.notice = fmt.Sprintf("%s %s is not downloaded", icon.Get(icon.Missing), e.Ref)
		b.setState(missingState)
	}
}

// shutdown tears the session down and stops the player. Only the first call has an effect.
func (b *statefulBubble) shutdown() {
	if b.closed {
		return
	}
	b.closed = true

	b.session.Teardown()

	if b.listener != nil {
		b.listener.Stop()
		b.listener = nil
	}
	if b.player != nil && b.player.IsRunning() {
		util.Ignore(b.player.Close)
	}
}
