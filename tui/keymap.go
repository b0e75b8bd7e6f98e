package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/reelmark-cli/reelmark/color"
	"github.com/reelmark-cli/reelmark/style"
)

// statefulKeymap defines the keyboard interactions available within each view state.
type statefulKeymap struct {
	state state

	quit, forceQuit,
	next, prev,
	playPause,
	resume, restart,
	showHelp key.Binding
}

func (k *statefulKeymap) setState(newState state) {
	k.state = newState
}

func newStatefulKeymap() *statefulKeymap {
	return &statefulKeymap{
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
		next: key.NewBinding(
			key.WithKeys("n", "right"),
			key.WithHelp("n", "next"),
		),
		prev: key.NewBinding(
			key.WithKeys("p", "left"),
			key.WithHelp("p", "previous"),
		),
		playPause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "play/pause"),
		),
		resume: key.NewBinding(
			key.WithKeys("r", "enter"),
			key.WithHelp(style.Fg(color.Orange)("r"), style.Fg(color.Orange)("resume")),
		),
		restart: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "start over"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k *statefulKeymap) help() ([]key.Binding, []key.Binding) {
	switch k.state {
	case playingState:
		return []key.Binding{k.playPause, k.next, k.prev, k.quit}, []key.Binding{k.showHelp, k.forceQuit}
	case promptState:
		return []key.Binding{k.resume, k.restart, k.quit}, []key.Binding{k.next, k.prev, k.forceQuit}
	case missingState:
		return []key.Binding{k.next, k.prev, k.quit}, []key.Binding{k.forceQuit}
	default:
		return []key.Binding{k.quit}, []key.Binding{k.forceQuit}
	}
}

// ShortHelp returns the key bindings shown under the view.
func (k *statefulKeymap) ShortHelp() []key.Binding {
	short, _ := k.help()
	return short
}

// FullHelp returns every key binding of the current state.
func (k *statefulKeymap) FullHelp() [][]key.Binding {
	short, full := k.help()
	return [][]key.Binding{short, full}
}
