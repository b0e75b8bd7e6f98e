// Package completion reconciles the server's and the session's view of what has been watched.
package completion

import (
	"github.com/reelmark-cli/reelmark/media"
	"github.com/samber/lo"
)

// Item is one video of a course as the server described it.
type Item struct {
	VideoID string
	// Done is the server's per-item flag.
	Done bool
}

// Course is the shape of a course, reduced to what completion needs.
// Exactly one of Video, Episodes or Chapters is meaningful, per Type.
type Course struct {
	Type     media.ContentType
	Video    Item
	Episodes []Item
	Chapters [][]Item
	// Completed is the server's course-level flag.
	Completed bool
}

// Aggregator answers completion queries for one course.
// Every answer is computed from the three sources at call time; nothing is cached.
// Aggregator is not safe for concurrent use.
type Aggregator struct {
	course Course
	server map[string]struct{}
	flags  map[string]bool
	local  map[string]struct{}
}

// New builds an Aggregator over the server's completed-video list and the course's per-item flags.
func New(course Course, completedVideos []string) *Aggregator {
	a := &Aggregator{
		course: course,
		server: lo.SliceToMap(completedVideos, func(id string) (string, struct{}) { return id, struct{}{} }),
		flags:  make(map[string]bool),
		local:  make(map[string]struct{}),
	}

	for _, item := range a.items() {
		if item.Done {
			a.flags[item.VideoID] = true
		}
	}

	return a
}

// Observe records a completion seen during this session. It never un-completes anything.
func (a *Aggregator) Observe(videoID string) {
	if videoID == "" {
		return
	}
	a.local[videoID] = struct{}{}
}

// IsVideoDone is true when any source says so.
func (a *Aggregator) IsVideoDone(videoID string) bool {
	if videoID == "" {
		return false
	}
	if _, ok := a.server[videoID]; ok {
		return true
	}
	if a.flags[videoID] {
		return true
	}
	_, ok := a.local[videoID]
	return ok
}

// IsCourseDone requires every video of the course to be done, or the server's course flag.
// A course without videos is never done, whatever the server flag says.
func (a *Aggregator) IsCourseDone() bool {
	items := a.items()
	if len(items) == 0 {
		return false
	}
	if a.course.Completed {
		return true
	}

	return lo.EveryBy(items, func(item Item) bool { return a.IsVideoDone(item.VideoID) })
}

// Counts returns how many videos are done out of the course total.
func (a *Aggregator) Counts() (done, total int) {
	items := a.items()
	return lo.CountBy(items, func(item Item) bool { return a.IsVideoDone(item.VideoID) }), len(items)
}

// Local returns the ids completed during this session, in no particular order.
func (a *Aggregator) Local() []string {
	return lo.Keys(a.local)
}

// items lists the course's videos. Items without an id count as not done.
func (a *Aggregator) items() []Item {
	switch a.course.Type {
	case media.Single:
		if a.course.Video.VideoID == "" {
			return nil
		}
		return []Item{a.course.Video}
	case media.Series:
		return a.course.Episodes
	case media.Playlist:
		return lo.Flatten(a.course.Chapters)
	default:
		return nil
	}
}
