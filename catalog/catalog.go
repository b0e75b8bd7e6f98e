// Package catalog decodes course documents fetched by the catalog service.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/reelmark-cli/reelmark/completion"
	"github.com/reelmark-cli/reelmark/filesystem"
	"github.com/reelmark-cli/reelmark/media"
	"github.com/reelmark-cli/reelmark/resume"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Video is a playable item of a course document.
type Video struct {
	ID     string `json:"id" jsonschema:"description=Video identifier, unique within the course."`
	Title  string `json:"title,omitempty" jsonschema:"description=Display title."`
	URL    string `json:"url,omitempty" jsonschema:"description=Streaming URL used when online."`
	IsDone bool   `json:"is_done,omitempty" jsonschema:"description=Server flag: the viewer finished this video."`
}

// Chapter groups the lessons of a playlist course.
type Chapter struct {
	Title   string  `json:"title,omitempty"`
	Lessons []Video `json:"lessons"`
}

// Document is the course document as served. Missing fields decode to absent or false.
type Document struct {
	ID                string                     `json:"id" jsonschema:"description=Course identifier."`
	Title             string                     `json:"title,omitempty"`
	Type              string                     `json:"type" jsonschema:"enum=single,enum=series,enum=playlist"`
	IsCourseCompleted bool                       `json:"is_course_completed,omitempty" jsonschema:"description=Server flag: the viewer finished the course."`
	CompletedVideos   []string                   `json:"completed_videos,omitempty" jsonschema:"description=Ids of every video the viewer finished."`
	VideoProgress     map[string]resume.Snapshot `json:"video_progress,omitempty" jsonschema:"description=Last saved position per video id."`
	Video             *Video                     `json:"video,omitempty" jsonschema:"description=The video of a single course."`
	Trailer           *Video                     `json:"trailer,omitempty"`
	Series            []Video                    `json:"series,omitempty" jsonschema:"description=Episodes of a series course, in order."`
	Chapters          []Chapter                  `json:"chapters,omitempty" jsonschema:"description=Chapters of a playlist course, in order."`
}

// ErrEmptyID is returned for documents without a course id.
var ErrEmptyID = errors.New("course id is empty")

type slot struct {
	ref   media.Ref
	video Video
}

// Course is a decoded document with its videos in play order.
type Course struct {
	doc     Document
	kind    media.ContentType
	slots   []slot
	trailer mo.Option[slot]
	byID    map[string]int
}

// Load decodes the course document at path.
func Load(path string) (*Course, error) {
	var doc Document
	if err := filesystem.ReadJSON(path, &doc); err != nil {
		return nil, err
	}
	return New(doc)
}

// Parse decodes a course document.
func Parse(data []byte) (*Course, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode course: %w", err)
	}
	return New(doc)
}

// New indexes doc. Videos without an id are skipped.
func New(doc Document) (*Course, error) {
	if doc.ID == "" {
		return nil, ErrEmptyID
	}

	kind, err := media.ParseContentType(doc.Type)
	if err != nil {
		return nil, fmt.Errorf("course %s: %w", doc.ID, err)
	}
	if kind == media.Trailer {
		return nil, fmt.Errorf("course %s: trailer is not a course type", doc.ID)
	}

	c := &Course{doc: doc, kind: kind, byID: make(map[string]int)}

	add := func(ref media.Ref, v Video) {
		if v.ID == "" {
			return
		}
		if _, dup := c.byID[v.ID]; dup {
			return
		}
		c.byID[v.ID] = len(c.slots)
		c.slots = append(c.slots, slot{ref: ref, video: v})
	}

	switch kind {
	case media.Single:
		if doc.Video != nil {
			add(media.SingleVideo(doc.Video.ID), *doc.Video)
		}
	case media.Series:
		for i, v := range doc.Series {
			add(media.Episode(v.ID, i), v)
		}
	case media.Playlist:
		for ci, chapter := range doc.Chapters {
			for li, v := range chapter.Lessons {
				add(media.Lesson(v.ID, ci, li), v)
			}
		}
	}

	if doc.Trailer != nil && doc.Trailer.ID != "" {
		c.trailer = mo.Some(slot{ref: media.TrailerVideo(doc.Trailer.ID), video: *doc.Trailer})
	}

	return c, nil
}

// ID returns the course id.
func (c *Course) ID() string { return c.doc.ID }

// Title returns the course title, falling back to its id.
func (c *Course) Title() string {
	if c.doc.Title != "" {
		return c.doc.Title
	}
	return c.doc.ID
}

// Type returns the course shape.
func (c *Course) Type() media.ContentType { return c.kind }

// Refs lists the course videos in play order. The trailer is not part of it.
func (c *Course) Refs() []media.Ref {
	return lo.Map(c.slots, func(s slot, _ int) media.Ref { return s.ref })
}

// Trailer returns the course trailer.
func (c *Course) Trailer() mo.Option[media.Ref] {
	s, ok := c.trailer.Get()
	if !ok {
		return mo.None[media.Ref]()
	}
	return mo.Some(s.ref)
}

// Find returns the ref of a video id, trailer included.
func (c *Course) Find(videoID string) mo.Option[media.Ref] {
	if s, ok := c.lookup(videoID); ok {
		return mo.Some(s.ref)
	}
	return mo.None[media.Ref]()
}

// Video returns the document item behind a video id.
func (c *Course) Video(videoID string) mo.Option[Video] {
	if s, ok := c.lookup(videoID); ok {
		return mo.Some(s.video)
	}
	return mo.None[Video]()
}

// First returns the first video in play order.
func (c *Course) First() mo.Option[media.Ref] {
	if len(c.slots) == 0 {
		return mo.None[media.Ref]()
	}
	return mo.Some(c.slots[0].ref)
}

// Next returns the video after ref in play order.
func (c *Course) Next(ref media.Ref) mo.Option[media.Ref] {
	return c.step(ref, 1)
}

// Prev returns the video before ref in play order.
func (c *Course) Prev(ref media.Ref) mo.Option[media.Ref] {
	return c.step(ref, -1)
}

// Snapshot returns the saved server position of a video.
func (c *Course) Snapshot(videoID string) mo.Option[resume.Snapshot] {
	snapshot, ok := c.doc.VideoProgress[videoID]
	if !ok {
		return mo.None[resume.Snapshot]()
	}
	return mo.Some(snapshot)
}

// Completion builds the aggregator for the course. The trailer never counts.
func (c *Course) Completion() *completion.Aggregator {
	item := func(v Video) completion.Item {
		return completion.Item{VideoID: v.ID, Done: v.IsDone}
	}

	course := completion.Course{Type: c.kind, Completed: c.doc.IsCourseCompleted}
	switch c.kind {
	case media.Single:
		if c.doc.Video != nil {
			course.Video = item(*c.doc.Video)
		}
	case media.Series:
		course.Episodes = lo.Map(c.doc.Series, func(v Video, _ int) completion.Item { return item(v) })
	case media.Playlist:
		course.Chapters = lo.Map(c.doc.Chapters, func(ch Chapter, _ int) []completion.Item {
			return lo.Map(ch.Lessons, func(v Video, _ int) completion.Item { return item(v) })
		})
	}

	return completion.New(course, c.doc.CompletedVideos)
}

func (c *Course) lookup(videoID string) (slot, bool) {
	if i, ok := c.byID[videoID]; ok {
		return c.slots[i], true
	}
	if s, ok := c.trailer.Get(); ok && s.ref.ID() == videoID {
		return s, true
	}
	return slot{}, false
}

func (c *Course) step(ref media.Ref, delta int) mo.Option[media.Ref] {
	i, ok := c.byID[ref.ID()]
	if !ok {
		return mo.None[media.Ref]()
	}

	j := i + delta
	if j < 0 || j >= len(c.slots) {
		return mo.None[media.Ref]()
	}
	return mo.Some(c.slots[j].ref)
}
