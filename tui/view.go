package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
	"github.com/storyplay/storyplay/color"
	"github.com/storyplay/storyplay/engine"
	"github.com/storyplay/storyplay/icon"
	"github.com/storyplay/storyplay/style"
	"github.com/storyplay/storyplay/util"
)

func (b *bubble) View() string {
	var output string

	switch b.state {
	case playerState:
		output = b.viewPlayer()
	case errorState:
		output = b.viewError()
	default:
		output = "Unknown state"
	}

	return b.notifier.View(output)
}

func (b *bubble) stateIcon() string {
	switch {
	case b.playing == engine.Playing:
		return icon.Get(icon.Play)
	case b.duration > 0 && b.position >= b.duration:
		return icon.Get(icon.Ended)
	default:
		return icon.Get(icon.Pause)
	}
}

func (b *bubble) viewSurface() []string {
	f := b.surface.frame()

	var lines []string
	switch {
	case f.bitmap != nil:
		lines = append(lines, f.rendered)
		caption := icon.Get(icon.Image) + " " + f.bitmap.String()
		if f.crossfade {
			caption += " " + style.Fg(color.Cyan)("crossfade")
		}
		lines = append(lines, style.Faint(caption))
	case f.icon:
		audioOnly := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(style.AccentColor).
			Padding(1, 4).
			Render(icon.Get(icon.Audio) + " audio")
		lines = append(lines, audioOnly)
	}

	if f.text != "" {
		text := wordwrap.String(f.text, util.Max(b.width, 10))
		if f.textHasImage {
			text = style.Italic(text)
		}
		lines = append(lines, "", text)
	}
	return lines
}

func (b *bubble) viewPlayer() string {
	percent := 0.0
	if b.duration > 0 {
		percent = float64(b.position) / float64(b.duration)
	}

	header := fmt.Sprintf("%s %s", style.Title(b.title), b.stateIcon())
	lines := append([]string{header, ""}, b.viewSurface()...)
	lines = append(lines,
		"",
		b.progressC.ViewAs(percent),
		fmt.Sprintf("%s / %s  %s %s",
			util.FormatMillis(b.position),
			util.FormatMillis(b.duration),
			icon.Get(icon.Frame),
			style.Fg(color.Purple)(b.frameID),
		),
	)
	return b.renderLines(true, lines)
}

func (b *bubble) viewError() string {
	errorStyle := lipgloss.NewStyle().Foreground(style.ErrorColor).Bold(true)
	errorMsg := wrap.String(errorStyle.Render(b.lastError.Error()), util.Max(b.width, 10))
	return b.renderLines(
		true,
		[]string{
			style.ErrorTitle("Error"),
			"",
			icon.Get(icon.Fail) + " Playback stopped:",
			"",
			errorMsg,
		},
	)
}

func (b *bubble) renderLines(addHelp bool, lines []string) string {
	l := strings.Join(lines, "\n")
	if addHelp {
		if h := lipgloss.Height(l); b.height > h {
			l += strings.Repeat("\n", b.height-h)
		}
		l += b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}
