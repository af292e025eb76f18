// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/storyplay/storyplay/color"
	"github.com/storyplay/storyplay/constant"
	"github.com/storyplay/storyplay/key"
	"github.com/storyplay/storyplay/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Storyplay + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

// typeName returns the string representation of the field's underlying value type.
func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	case []int:
		return "[]int"
	case int64:
		return "int64"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	// register adds a field to the registry; keys must be unique.
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc}
		EnvExposed = append(EnvExposed, k)
	}

	register(key.LibraryPath, "", "Directory holding narrative manifests (.yaml, .yml, .json).\nEmpty means the \"library\" folder inside the config directory")
	register(key.LibraryRankPicks, true, "Offer often played narratives first when several match")
	register(key.PlaybackTickMs, constant.TickMs, "Playback clock resolution in milliseconds")
	register(key.PlaybackPreloadHorizonMs, constant.PreloadHorizonMs, "How far ahead of the play position media is prepared, in milliseconds")
	register(key.PlaybackAudioSlots, constant.AudioSlots, "Number of audio players kept at once.\nAudio beyond this limit is skipped")
	register(key.PlaybackMinFrameMs, constant.MinFrameMs, "Shortest time a frame stays on screen, in milliseconds")
	register(key.PlaybackPrepareRetries, constant.PrepareRetries, "How many times audio preparation is attempted before the file is skipped")
	register(key.PlaybackPrepareRetryDelayMs, constant.PrepareRetryDelayMs, "Pause between audio preparation attempts, in milliseconds")
	register(key.PlayerAudio, constant.AudioMPV, "Audio backend.\nAvailable options are: mpv, silent")
	register(key.PresenterDecodeWorkers, constant.DecodeWorkers, "Maximum number of images decoded concurrently")
	register(key.PresenterUpgradeDelay, constant.UpgradeDelayMs, "Delay before a downscaled image is replaced by its full quality version, in milliseconds")
	register(key.HistorySaveOnExit, true, "Remember the playback position on exit so it can be resumed with --continue")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, plain, squares, nerd (nerd-font required)")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
