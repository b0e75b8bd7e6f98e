package history

import (
	"fmt"
	"time"

	"github.com/reelmark-cli/reelmark/progress"
)

// Flush is one outbound position write.
type Flush struct {
	ProfileID string
	CourseID  string
	VideoID   string
	Timestamp float64
	Duration  float64
}

// Entry is a saved playback position as kept by a Store.
type Entry struct {
	ProfileID         string    `json:"profile_id"`
	CourseID          string    `json:"course_id"`
	VideoID           string    `json:"video_id"`
	Timestamp         float64   `json:"timestamp"`
	Duration          float64   `json:"duration"`
	WatchedPercentage int       `json:"watched_percentage"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (e *Entry) encode() string {
	return encode(e.ProfileID, e.CourseID, e.VideoID)
}

func encode(profileID, courseID, videoID string) string {
	return fmt.Sprintf("%s/%s/%s", profileID, courseID, videoID)
}

func (e *Entry) String() string {
	return fmt.Sprintf("%s / %s : %d%%", e.CourseID, e.VideoID, e.WatchedPercentage)
}

// apply folds f into e. The position follows the latest write while the
// watched percentage keeps the maximum ever seen, so a re-watch never lowers it.
func (e *Entry) apply(f Flush, now time.Time) {
	e.ProfileID, e.CourseID, e.VideoID = f.ProfileID, f.CourseID, f.VideoID
	e.Timestamp = f.Timestamp
	e.Duration = f.Duration
	e.WatchedPercentage = max(e.WatchedPercentage, progress.Percent(f.Timestamp, f.Duration))
	e.UpdatedAt = now
}
