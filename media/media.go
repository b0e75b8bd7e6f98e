// Package media identifies playable units inside the supported course shapes.
package media

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/mo"
)

// ContentType is the shape of the course a video belongs to.
type ContentType string

const (
	Single   ContentType = "single"
	Series   ContentType = "series"
	Playlist ContentType = "playlist"
	Trailer  ContentType = "trailer"
)

// ContentTypes lists every valid ContentType.
var ContentTypes = []ContentType{Single, Series, Playlist, Trailer}

// ParseContentType accepts the lowercase names of ContentTypes.
func ParseContentType(s string) (ContentType, error) {
	t := ContentType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case Single, Series, Playlist, Trailer:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unknown content type %q", ErrInvalidRef, s)
	}
}

// ErrInvalidRef is returned for refs that cannot exist in any course.
var ErrInvalidRef = errors.New("invalid video reference")

// Ref identifies a playable unit. The zero Ref is invalid.
// Refs are immutable; build them with SingleVideo, TrailerVideo, Episode or Lesson.
type Ref struct {
	id      string
	kind    ContentType
	series  int
	chapter int
	lesson  int
}

// Position is a lesson's place in a playlist.
type Position struct {
	Chapter int
	Lesson  int
}

// SingleVideo is the only video of a single-video course.
func SingleVideo(id string) Ref {
	return Ref{id: id, kind: Single}
}

// TrailerVideo is a course trailer.
func TrailerVideo(id string) Ref {
	return Ref{id: id, kind: Trailer}
}

// Episode is the index-th video of a series course.
func Episode(id string, index int) Ref {
	return Ref{id: id, kind: Series, series: index}
}

// Lesson is a lesson inside a chapter of a playlist course.
func Lesson(id string, chapter, lesson int) Ref {
	return Ref{id: id, kind: Playlist, chapter: chapter, lesson: lesson}
}

// ID returns the video id.
func (r Ref) ID() string { return r.id }

// Type returns the content type.
func (r Ref) Type() ContentType { return r.kind }

// SeriesIndex is present for episodes only.
func (r Ref) SeriesIndex() mo.Option[int] {
	if r.kind != Series {
		return mo.None[int]()
	}
	return mo.Some(r.series)
}

// LessonPosition is present for playlist lessons only.
func (r Ref) LessonPosition() mo.Option[Position] {
	if r.kind != Playlist {
		return mo.None[Position]()
	}
	return mo.Some(Position{Chapter: r.chapter, Lesson: r.lesson})
}

// Validate reports whether r could be produced by one of the constructors with sane inputs.
func (r Ref) Validate() error {
	if strings.TrimSpace(r.id) == "" {
		return fmt.Errorf("%w: empty video id", ErrInvalidRef)
	}

	switch r.kind {
	case Single, Trailer:
		return nil
	case Series:
		if r.series < 0 {
			return fmt.Errorf("%w: negative series index %d", ErrInvalidRef, r.series)
		}
		return nil
	case Playlist:
		if r.chapter < 0 || r.lesson < 0 {
			return fmt.Errorf("%w: negative position %d/%d", ErrInvalidRef, r.chapter, r.lesson)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown content type %q", ErrInvalidRef, r.kind)
	}
}

// IsZero reports whether r is the zero Ref.
func (r Ref) IsZero() bool {
	return r == Ref{}
}

// SameVideo compares by video id, which is what progress is keyed on.
func (r Ref) SameVideo(other Ref) bool {
	return r.id == other.id
}

// SameSlot compares the full descriptor, which is what offline files are keyed on.
// The video id is not part of the slot.
func (r Ref) SameSlot(other Ref) bool {
	return r.kind == other.kind && r.series == other.series &&
		r.chapter == other.chapter && r.lesson == other.lesson
}

func (r Ref) String() string {
	switch r.kind {
	case Series:
		return fmt.Sprintf("%s[episode %d]", r.id, r.series+1)
	case Playlist:
		return fmt.Sprintf("%s[chapter %d, lesson %d]", r.id, r.chapter+1, r.lesson+1)
	case Trailer:
		return r.id + "[trailer]"
	default:
		return r.id
	}
}
