package tui

import (
	"fmt"

	"github.com/reelmark-cli/reelmark/color"
	"github.com/reelmark-cli/reelmark/icon"
	"github.com/reelmark-cli/reelmark/media"
	"github.com/reelmark-cli/reelmark/progress"
	"github.com/reelmark-cli/reelmark/style"
	"github.com/reelmark-cli/reelmark/util"
	"github.com/samber/lo"
)

// title labels a video with its position and, when the document has one, its title.
func (b *statefulBubble) title(ref media.Ref) string {
	if ref.IsZero() {
		return ""
	}

	video, ok := b.session.Course().Video(ref.ID()).Get()
	if !ok || video.Title == "" {
		return ref.String()
	}
	return fmt.Sprintf("%s %s", ref, video.Title)
}

// courseRows renders at most limit course videos, centered on the current one.
func (b *statefulBubble) courseRows(limit int) []string {
	refs := b.session.Course().Refs()
	if len(refs) == 0 || limit <= 0 {
		return nil
	}

	_, at, _ := lo.FindIndexOf(refs, func(r media.Ref) bool { return r.SameVideo(b.current) })
	from := util.Max(at-limit/2, 0)
	to := util.Min(from+limit, len(refs))
	from = util.Max(to-limit, 0)

	return lo.Map(refs[from:to], func(r media.Ref, _ int) string { return b.row(r) })
}

func (b *statefulBubble) row(ref media.Ref) string {
	cursor := "  "
	if ref.SameVideo(b.current) {
		cursor = style.Fg(color.Purple)("> ")
	}

	badge := style.Faint(" ")
	if b.session.IsVideoDone(ref.ID()) {
		badge = style.Fg(color.Green)(icon.Get(icon.Done))
	}

	line := fmt.Sprintf("%s%s %s", cursor, badge, b.title(ref))
	if record, ok := b.session.Record(ref.ID()); ok {
		line += " " + style.Percent(record.Percent(), progress.CompletionThreshold)
	}

	return style.Truncate(b.width)(line)
}
