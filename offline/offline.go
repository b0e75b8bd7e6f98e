// Package offline finds downloaded copies of course videos in the download manager's index.
package offline

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/reelmark-cli/reelmark/filesystem"
	"github.com/reelmark-cli/reelmark/log"
	"github.com/reelmark-cli/reelmark/media"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Entry is one downloaded file as listed by the download manager.
type Entry struct {
	ContentType  media.ContentType `json:"contentType" jsonschema:"enum=single,enum=series,enum=playlist,enum=trailer"`
	SeriesIndex  *int              `json:"seriesIndex,omitempty"`
	ChapterIndex *int              `json:"chapterIndex,omitempty"`
	LessonIndex  *int              `json:"lessonIndex,omitempty"`
	LocalPath    string            `json:"localPath" jsonschema:"description=Absolute path of the downloaded file."`
}

// ref rebuilds the slot an entry stands for. Entries missing the indices of their shape are unusable.
func (e Entry) ref() (media.Ref, bool) {
	switch e.ContentType {
	case media.Single:
		return media.SingleVideo("-"), true
	case media.Trailer:
		return media.TrailerVideo("-"), true
	case media.Series:
		if e.SeriesIndex == nil {
			return media.Ref{}, false
		}
		return media.Episode("-", *e.SeriesIndex), true
	case media.Playlist:
		if e.ChapterIndex == nil || e.LessonIndex == nil {
			return media.Ref{}, false
		}
		return media.Lesson("-", *e.ChapterIndex, *e.LessonIndex), true
	default:
		return media.Ref{}, false
	}
}

type indexed struct {
	slot media.Ref
	path string
}

// Index is a read-only view over a course's download index.
type Index struct {
	entries []indexed
}

// NewIndex keeps the usable entries. Entries whose path is a URL are dropped,
// so an Index can only ever resolve to files on this device.
func NewIndex(entries []Entry) *Index {
	idx := &Index{}
	for _, e := range entries {
		path := strings.TrimSpace(e.LocalPath)
		if path == "" || isRemote(path) {
			log.Debugf("offline: skipping entry with non-local path %q", e.LocalPath)
			continue
		}

		slot, ok := e.ref()
		if !ok {
			log.Debugf("offline: skipping %s entry without its indices", e.ContentType)
			continue
		}

		idx.entries = append(idx.entries, indexed{slot: slot, path: path})
	}
	return idx
}

// Load reads the index file at path.
func Load(path string) (*Index, error) {
	var entries []Entry
	if err := filesystem.ReadJSON(path, &entries); err != nil {
		return nil, fmt.Errorf("download index: %w", err)
	}
	return NewIndex(entries), nil
}

// Resolve returns the local path for ref's slot. The first matching entry wins.
func (idx *Index) Resolve(ref media.Ref) mo.Option[string] {
	if idx == nil {
		return mo.None[string]()
	}

	match, ok := lo.Find(idx.entries, func(e indexed) bool { return e.slot.SameSlot(ref) })
	if !ok {
		return mo.None[string]()
	}
	return mo.Some(match.path)
}

// Len returns the number of usable entries.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

// isRemote reports whether p carries a URL scheme. Windows drive letters are not schemes.
func isRemote(p string) bool {
	u, err := url.Parse(p)
	if err != nil {
		return strings.Contains(p, "://")
	}
	return len(u.Scheme) > 1
}
