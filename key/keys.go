// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// DefinedFieldsCount represents the total cardinality of the application configuration schema.
const DefinedFieldsCount = 14

// Profile Selection - these keys identify the viewer whose progress is being tracked.
const (
	ProfileID = "profile.id"
)

// History Tracking - these keys configure the persistence of playback progress.
const (
	HistorySave         = "history.save"
	HistoryBackend      = "history.backend"
	HistoryFlushTimeout = "history.flush_timeout"
)

// Media Playback - these keys maintain the state and configuration for external video players.
const (
	Player        = "player.default"
	PlayerOffline = "player.offline"
)

// Downloaded Content - these keys locate the download manager's on-device index.
const (
	DownloadsIndex = "downloads.index"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-TUI application behavior.
const (
	CliColored  = "cli.colored"
	TUIWidth    = "tui.width"
	TUIShowHelp = "tui.show_help"
)

// Icons - glyph set used for status lines.
const (
	IconsVariant = "icons.variant"
)
