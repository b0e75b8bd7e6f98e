// Package tui provides the playback view of a course session.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/reelmark-cli/reelmark/engine"
	"github.com/reelmark-cli/reelmark/log"
	"github.com/reelmark-cli/reelmark/media"
	"github.com/reelmark-cli/reelmark/offline"
	"github.com/reelmark-cli/reelmark/player"
)

// Options encapsulates the runtime configuration for the terminal user interface.
type Options struct {
	Session *engine.Session
	Player  player.Player
	// Start is the first video to mount.
	Start media.Ref
	// IndexPath is the download index to watch for changes. Empty disables watching.
	IndexPath string
}

// Run executes the Bubble Tea program until the viewer quits or the player exits.
// The session is torn down on every exit path.
func Run(ctx context.Context, options *Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	bubble := newBubble(options)
	defer bubble.shutdown()

	program := tea.NewProgram(bubble, tea.WithAltScreen(), tea.WithContext(ctx))
	bubble.send = program.Send

	if options.IndexPath != "" {
		go func() {
			err := offline.Watch(ctx, options.IndexPath, func(idx *offline.Index) {
				program.Send(indexReloadedMsg{index: idx})
			})
			if err != nil && ctx.Err() == nil {
				log.Warnf("watch download index: %v", err)
			}
		}()
	}

	_, err := program.Run()
	return err
}
