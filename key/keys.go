// Package key defines the canonical set of configuration identifiers.
package key

// Media element - mpv process and playback defaults.
const (
	PlayerMPV                  = "player.mpv"
	PlayerMPVArgs              = "player.mpv_args"
	PlayerVolume               = "player.volume"
	PlayerMuted                = "player.muted"
	PlayerSeekStep             = "player.seek_step"
	PlayerVolumeStep           = "player.volume_step"
	PlayerTimeUpdatesPerSecond = "player.time_updates_per_second"
)

// Manifest fetching.
const (
	NetworkTimeout     = "network.timeout"
	NetworkFingerprint = "network.fingerprint"
)

// History tracking.
const (
	HistorySave = "history.save"
)

// Source suggestions.
const (
	SearchShowSuggestions = "search.show_suggestions"
)

// Terminal user interface.
const (
	TUIPrompt = "tui.prompt"
)

// Iconography.
const (
	IconsVariant = "icons.variant"
)

// Logging.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI execution environment.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
