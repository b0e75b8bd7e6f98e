// Package player defines a unified abstraction layer for media playback engines.
// The architecture supports multiple backends, with the primary implementation targeting 'mpv' via its JSON-IPC interface.
package player

// Player encapsulates the required capabilities for a media playback backend.
type Player interface {
	// Play starts a player process for the given local path or URL.
	Play(target string, title string) error

	// Load replaces the media of the running player process.
	Load(target string, title string) error

	// Resume clears the paused state.
	Resume() error

	// Pause suspends playback.
	Pause() error

	// TogglePause inverts the current playback suspension state.
	TogglePause() error

	// GetTimePos retrieves the current absolute playback position in seconds.
	GetTimePos() (float64, error)

	// GetDuration retrieves the total temporal length of the active media file in seconds.
	GetDuration() (float64, error)

	// Seek transitions the playback position to a specific absolute timestamp in seconds.
	Seek(seconds float64) error

	// IsRunning validates the liveness of the underlying playback process or handler.
	IsRunning() bool

	// Close terminates the playback engine and releases all associated system resources.
	Close() error

	// Socket retrieves the identifier for the Inter-Process Communication (IPC) channel.
	Socket() string

	// Wait returns a channel that is closed when the playback session terminates.
	Wait() <-chan struct{}
}

// New returns the backend registered under name.
func New(name string) (Player, error) {
	switch name {
	case "mpv":
		return NewMPV(), nil
	default:
		return nil, &UnsupportedError{Name: name}
	}
}

// UnsupportedError is returned by New for unknown backends.
type UnsupportedError struct {
	Name string
}

func (e *UnsupportedError) Error() string {
	return "unsupported player: " + e.Name
}
