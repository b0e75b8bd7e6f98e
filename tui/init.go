package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Init mounts the first video and starts the spinner.
func (b *statefulBubble) Init() tea.Cmd {
	return tea.Batch(b.spinnerC.Tick, b.mount(b.start))
}
