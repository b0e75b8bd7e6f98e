package engine

import (
	"github.com/reelmark-cli/reelmark/media"
	"github.com/reelmark-cli/reelmark/player"
	"github.com/reelmark-cli/reelmark/resume"
)

// EventKind tells events apart.
type EventKind int

const (
	// Progress follows every accepted sample of the active video.
	Progress EventKind = iota
	// Completed fires once per mount when a video crosses the completion threshold.
	Completed
	// ResumeDecisionNeeded asks the host to offer resume or restart.
	ResumeDecisionNeeded
	// OfflineFileMissing reports an offline mount without a downloaded file.
	OfflineFileMissing
)

func (k EventKind) String() string {
	switch k {
	case Progress:
		return "progress"
	case Completed:
		return "completed"
	case ResumeDecisionNeeded:
		return "resume-decision-needed"
	case OfflineFileMissing:
		return "offline-file-missing"
	default:
		return "unknown"
	}
}

// Event is emitted by a Session. Fields beyond Kind and Ref are set per kind.
type Event struct {
	Kind     EventKind
	Ref      media.Ref
	Percent  int
	Sample   player.Sample
	Snapshot resume.Snapshot
}
