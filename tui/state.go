package tui

type state int

const (
	loadingState state = iota
	playingState
	promptState
	missingState
	errorState
)

func (s state) String() string {
	switch s {
	case loadingState:
		return "loading"
	case playingState:
		return "playing"
	case promptState:
		return "prompt"
	case missingState:
		return "missing"
	case errorState:
		return "error"
	default:
		return "unknown"
	}
}
