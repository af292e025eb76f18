// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Narrative Library - where manifests are looked up.
const (
	LibraryPath      = "library.path"
	LibraryRankPicks = "library.rank_picks"
)

// Playback Engine - clock, look-ahead and decoder pool sizing.
const (
	PlaybackTickMs              = "playback.tick_ms"
	PlaybackPreloadHorizonMs    = "playback.preload_horizon_ms"
	PlaybackAudioSlots          = "playback.audio_slots"
	PlaybackMinFrameMs          = "playback.min_frame_ms"
	PlaybackPrepareRetries      = "playback.prepare_retries"
	PlaybackPrepareRetryDelayMs = "playback.prepare_retry_delay_ms"
)

// Platform Media - which backend renders audio.
const (
	PlayerAudio = "player.audio"
)

// Image Presentation - decode concurrency and downscale-then-upgrade timing.
const (
	PresenterDecodeWorkers = "presenter.decode_workers"
	PresenterUpgradeDelay  = "presenter.upgrade_delay_ms"
)

// History Tracking - persistence of resume snapshots.
const (
	HistorySaveOnExit = "history.save_on_exit"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment.
const (
	CliColored = "cli.colored"
)
