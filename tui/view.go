package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"
	"github.com/reelmark-cli/reelmark/color"
	"github.com/reelmark-cli/reelmark/icon"
	"github.com/reelmark-cli/reelmark/key"
	"github.com/reelmark-cli/reelmark/progress"
	"github.com/reelmark-cli/reelmark/style"
	"github.com/reelmark-cli/reelmark/util"
	"github.com/spf13/viper"
)

var paddingStyle = lipgloss.NewStyle().Padding(1, 2)

func (b *statefulBubble) View() string {
	switch b.state {
	case loadingState:
		return b.viewLoading()
	case playingState:
		return b.viewPlaying()
	case promptState:
		return b.viewPrompt()
	case missingState:
		return b.viewMissing()
	case errorState:
		return b.viewError()
	default:
		return "Unknown state"
	}
}

func (b *statefulBubble) header() []string {
	title := b.session.Course().Title()
	if b.session.Offline() {
		title += " " + icon.Get(icon.Offline)
	}

	done, total := b.session.Counts()
	counts := fmt.Sprintf("%d/%d done", done, total)
	if now := len(b.session.CompletedNow()); now > 0 {
		counts += fmt.Sprintf(" (+%d this session)", now)
	}

	return []string{
		style.Title(title) + " " + style.Faint(counts),
		"",
	}
}

func (b *statefulBubble) viewLoading() string {
	return b.renderLines(append(
		b.header(),
		style.Truncate(b.width)(b.spinnerC.View()+" Loading "+style.Fg(color.Purple)(b.title(b.current))),
	))
}

func (b *statefulBubble) viewPlaying() string {
	status := icon.Get(icon.Progress)
	switch {
	case !b.session.PlayerReady():
		status = b.spinnerC.View()
	case b.paused:
		status = style.Faint("paused")
	}

	if at, ok := b.session.PendingSeek().Get(); ok {
		status += " " + style.Faint("resumes at "+util.Clock(at))
	}

	lines := append(
		b.header(),
		style.Truncate(b.width)(fmt.Sprintf("%s %s", status, style.Fg(color.Purple)(b.title(b.current)))),
		"",
		b.progressC.ViewAs(float64(b.percent)/100),
		fmt.Sprintf(
			"%s / %s  %s",
			util.Clock(b.position),
			util.Clock(b.duration),
			style.Percent(b.percent, progress.CompletionThreshold),
		),
		"",
	)

	lines = append(lines, b.courseRows(util.Max(b.height-len(lines)-4, 3))...)
	return b.renderLines(append(lines, "", b.notice))
}

func (b *statefulBubble) viewPrompt() string {
	snapshot, _ := b.session.Prompt().Get()

	at := snapshot.DisplayTime
	if at == "" {
		at = util.Clock(snapshot.TimestampSeconds)
	}

	return b.renderLines(append(
		b.header(),
		style.Truncate(b.width)(fmt.Sprintf("%s %s", icon.Get(icon.Resume), style.Fg(color.Purple)(b.title(b.current)))),
		"",
		fmt.Sprintf("You stopped at %s. Pick up from there?", style.Bold(at)),
		"",
		style.Faint("r resume  s start over"),
	))
}

func (b *statefulBubble) viewMissing() string {
	return b.renderLines(append(
		b.header(),
		wrap.String(b.notice, b.width),
		"",
		style.Faint("Playback continues once the file shows up in the download index."),
	))
}

func (b *statefulBubble) viewError() string {
	errorBody := style.Fg(color.HiRed)(b.lastError.Error())
	return b.renderLines([]string{
		style.ErrorTitle("Error"),
		"",
		icon.Get(icon.Fail) + " An error occurred:",
		"",
		wrap.String(errorBody, b.width),
	})
}

func (b *statefulBubble) renderLines(lines []string) string {
	l := strings.Join(lines, "\n")

	if viper.GetBool(key.TUIShowHelp) {
		if h := len(lines); b.height > h {
			l += strings.Repeat("\n", b.height-h)
		}
		l += b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}
