package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/reelmark-cli/reelmark/icon"
	"github.com/reelmark-cli/reelmark/log"
	"github.com/reelmark-cli/reelmark/media"
	"github.com/reelmark-cli/reelmark/offline"
	"github.com/reelmark-cli/reelmark/player"
	"github.com/reelmark-cli/reelmark/resume"
	"github.com/samber/mo"
)

type playerStartedMsg struct {
	ref      media.Ref
	fresh    bool
	loaded   bool
	duration float64
	listener *player.EventListener
	err      error
}

type playerEventMsg struct {
	name string
	data any
}

type playerExitedMsg struct{}

type indexReloadedMsg struct {
	index *offline.Index
}

// forward is the EventListener callback. It runs on the listener goroutine.
func (b *statefulBubble) forward(name string, data any) {
	if b.send != nil {
		b.send(playerEventMsg{name: name, data: data})
	}
}

// mount makes ref the session's active video and starts loading it into the player.
func (b *statefulBubble) mount(ref media.Ref) tea.Cmd {
	b.notice = ""
	b.percent, b.position, b.duration = 0, 0, 0
	b.setState(loadingState)

	source, err := b.session.Mount(ref)
	if err != nil {
		b.raiseError(err)
		return nil
	}
	b.current = b.session.Active()

	if b.state == loadingState && b.session.Prompt().IsPresent() {
		b.setState(promptState)
	}

	src, ok := source.Get()
	if !ok {
		if b.state != missingState {
			b.notice = fmt.Sprintf("%s %s has no playable source", icon.Get(icon.Missing), b.current)
			b.setState(missingState)
		}
		return b.pausePlayer()
	}

	if src.Local {
		log.Infof("playing %s from %s", b.current, src.URI)
	}

	return b.startPlayer(b.current, src.URI, b.title(b.current))
}

// pausePlayer holds the previous video while the mounted one cannot play.
func (b *statefulBubble) pausePlayer() tea.Cmd {
	p := b.player
	return func() tea.Msg {
		if p.IsRunning() {
			if err := p.Pause(); err != nil {
				log.Warnf("pause on missing source: %v", err)
			}
		}
		return nil
	}
}

// startPlayer loads target into the player, launching it first when needed.
// A running player is paused before the switch so a resume prompt can be answered
// before the new video plays.
func (b *statefulBubble) startPlayer(ref media.Ref, target, title string) tea.Cmd {
	p := b.player
	return func() tea.Msg {
		fresh := !p.IsRunning()
		if !fresh {
			if err := p.Pause(); err != nil {
				log.Warnf("pause before switch: %v", err)
			}
		}

		if err := p.Play(target, title); err != nil {
			return playerStartedMsg{ref: ref, err: fmt.Errorf("play %s: %w", ref, err)}
		}

		msg := playerStartedMsg{ref: ref, fresh: fresh}
		if !fresh {
			return msg
		}

		listener := player.NewEventListener(p.Socket(), b.forward)
		if err := listener.Start(); err != nil {
			log.Warnf("player events unavailable: %v", err)
		} else {
			msg.listener = listener
		}

		// the file may be loaded before the listener subscribed
		if d, err := p.GetDuration(); err == nil && d > 0 {
			msg.loaded, msg.duration = true, d
		}
		return msg
	}
}

func (b *statefulBubble) waitForExit() tea.Cmd {
	p := b.player
	return func() tea.Msg {
		<-p.Wait()
		return playerExitedMsg{}
	}
}

func (b *statefulBubble) handlePlayerStarted(msg playerStartedMsg) tea.Cmd {
	if msg.err != nil {
		b.raiseError(msg.err)
		return nil
	}

	if msg.listener != nil {
		b.listener = msg.listener
	}

	if msg.loaded && msg.ref.SameVideo(b.current) {
		b.session.DurationChanged(msg.duration)
		b.session.Ready()
		b.afterReady()
	}

	if b.state == loadingState {
		b.setState(playingState)
	}

	if msg.fresh {
		return b.waitForExit()
	}
	return nil
}

func (b *statefulBubble) handlePlayerEvent(msg playerEventMsg) tea.Cmd {
	b.session.Clock().HandleEvent(msg.name, msg.data)

	switch msg.name {
	case "file-loaded":
		b.afterReady()
	case "pause":
		paused, _ := msg.data.(bool)
		b.paused = paused
	case "eof-reached":
		if reached, _ := msg.data.(bool); reached && b.state == playingState {
			return b.step(b.session.Course().Next)
		}
	}

	return nil
}

// afterReady starts playback once the video is loaded, unless a resume decision is still pending.
func (b *statefulBubble) afterReady() {
	if b.session.Prompt().IsPresent() {
		return
	}
	if err := b.player.Resume(); err != nil {
		log.Warnf("start playback of %s: %v", b.current, err)
	}
}

func (b *statefulBubble) choose(choice resume.Choice) {
	if err := b.session.Choose(choice); err != nil {
		log.Warnf("resume choice: %v", err)
	}

	if choice == resume.Restart {
		if err := b.player.Resume(); err != nil {
			log.Warnf("start playback of %s: %v", b.current, err)
		}
	}

	b.setState(playingState)
}

func (b *statefulBubble) step(next func(media.Ref) mo.Option[media.Ref]) tea.Cmd {
	ref, ok := next(b.current).Get()
	if !ok {
		b.notice = "no more videos in this direction"
		return nil
	}
	return b.mount(ref)
}

func (b *statefulBubble) handleIndexReloaded(msg indexReloadedMsg) tea.Cmd {
	b.session.SetIndex(msg.index)
	log.Infof("download index reloaded with %d entries", msg.index.Len())

	if b.state == missingState {
		return b.mount(b.current)
	}
	return nil
}
