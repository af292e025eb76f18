package engine

import (
	"time"

	"github.com/spf13/viper"
	"github.com/storyplay/storyplay/constant"
	"github.com/storyplay/storyplay/key"
	"github.com/storyplay/storyplay/player"
)

// Config holds the tunables of a playback session.
type Config struct {
	TickMs            int64
	PreloadHorizonMs  int64
	AudioSlots        int
	MinFrameMs        int64
	PrepareRetries    int
	PrepareRetryDelay time.Duration
	DecodeWorkers     int64
	UpgradeDelay      time.Duration
	ImageSize         player.Size
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		TickMs:            constant.TickMs,
		PreloadHorizonMs:  constant.PreloadHorizonMs,
		AudioSlots:        constant.AudioSlots,
		MinFrameMs:        constant.MinFrameMs,
		PrepareRetries:    constant.PrepareRetries,
		PrepareRetryDelay: constant.PrepareRetryDelayMs * time.Millisecond,
		DecodeWorkers:     constant.DecodeWorkers,
		UpgradeDelay:      constant.UpgradeDelayMs * time.Millisecond,
	}
}

// ConfigFromViper reads the playback keys of the loaded configuration.
func ConfigFromViper() Config {
	return Config{
		TickMs:            viper.GetInt64(key.PlaybackTickMs),
		PreloadHorizonMs:  viper.GetInt64(key.PlaybackPreloadHorizonMs),
		AudioSlots:        viper.GetInt(key.PlaybackAudioSlots),
		MinFrameMs:        viper.GetInt64(key.PlaybackMinFrameMs),
		PrepareRetries:    viper.GetInt(key.PlaybackPrepareRetries),
		PrepareRetryDelay: time.Duration(viper.GetInt64(key.PlaybackPrepareRetryDelayMs)) * time.Millisecond,
		DecodeWorkers:     viper.GetInt64(key.PresenterDecodeWorkers),
		UpgradeDelay:      time.Duration(viper.GetInt64(key.PresenterUpgradeDelay)) * time.Millisecond,
	}
}

// normalize replaces unusable values with defaults.
func (c Config) normalize() Config {
	d := DefaultConfig()
	if c.TickMs <= 0 {
		c.TickMs = d.TickMs
	}
	if c.PreloadHorizonMs <= 0 {
		c.PreloadHorizonMs = d.PreloadHorizonMs
	}
	if c.AudioSlots <= 0 {
		c.AudioSlots = d.AudioSlots
	}
	if c.MinFrameMs <= 0 {
		c.MinFrameMs = d.MinFrameMs
	}
	if c.PrepareRetries <= 0 {
		c.PrepareRetries = d.PrepareRetries
	}
	if c.DecodeWorkers <= 0 {
		c.DecodeWorkers = d.DecodeWorkers
	}
	return c
}
