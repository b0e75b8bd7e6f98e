package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/reelmark-cli/reelmark/log"
	"github.com/reelmark-cli/reelmark/resume"
)

// Update dispatches messages to the handler of the current state.
func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
		return b, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		b.spinnerC, cmd = b.spinnerC.Update(msg)
		return b, cmd
	case playerStartedMsg:
		return b, b.handlePlayerStarted(msg)
	case playerEventMsg:
		return b, b.handlePlayerEvent(msg)
	case indexReloadedMsg:
		return b, b.handleIndexReloaded(msg)
	case playerExitedMsg:
		log.Info("player exited")
		return b, b.quit()
	case tea.KeyMsg:
		return b, b.handleKey(msg)
	}

	return b, nil
}

func (b *statefulBubble) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, b.keymap.forceQuit), key.Matches(msg, b.keymap.quit):
		return b.quit()
	case key.Matches(msg, b.keymap.showHelp):
		b.helpC.ShowAll = !b.helpC.ShowAll
		return nil
	}

	switch b.state {
	case promptState:
		switch {
		case key.Matches(msg, b.keymap.resume):
			b.choose(resume.Resume)
			return nil
		case key.Matches(msg, b.keymap.restart):
			b.choose(resume.Restart)
			return nil
		}
	case playingState:
		if key.Matches(msg, b.keymap.playPause) {
			if err := b.player.TogglePause(); err != nil {
				log.Warnf("toggle pause: %v", err)
			}
			return nil
		}
	case errorState:
		return nil
	}

	switch {
	case key.Matches(msg, b.keymap.next):
		return b.step(b.session.Course().Next)
	case key.Matches(msg, b.keymap.prev):
		return b.step(b.session.Course().Prev)
	}

	return nil
}

func (b *statefulBubble) quit() tea.Cmd {
	b.shutdown()
	return tea.Quit
}
