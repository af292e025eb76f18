package constant

// Playback defaults. These seed the configuration registry and are used whenever a caller builds an
// engine without going through viper.
const (
	// TickMs is the period of the playback clock.
	TickMs = 100

	// PreloadHorizonMs must exceed TickMs and stay below MinFrameMs.
	PreloadHorizonMs = 1000

	// AudioSlots is the capacity of the audio decoder pool.
	AudioSlots = 6

	// MinFrameMs is the shortest duration a frame can be shown for.
	MinFrameMs = 2500

	// PrepareRetries bounds attempts to attach an audio data source.
	PrepareRetries = 3

	// PrepareRetryDelayMs is the pause between two attempts.
	PrepareRetryDelayMs = 100

	// DecodeWorkers bounds concurrent background image decodes.
	DecodeWorkers = 2

	// UpgradeDelayMs is how long a downscaled image stays up before the full decode replaces it.
	UpgradeDelayMs = 250

	// SeekStepMs is the scrub step of the arrow keys.
	SeekStepMs = 5000
)

// Audio backend identifiers.
const (
	AudioMPV    = "mpv"
	AudioSilent = "silent"
)
