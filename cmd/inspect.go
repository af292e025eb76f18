package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/storyplay/storyplay/color"
	"github.com/storyplay/storyplay/internal/cache"
	"github.com/storyplay/storyplay/key"
	"github.com/storyplay/storyplay/narrative"
	"github.com/storyplay/storyplay/style"
	"github.com/storyplay/storyplay/timeline"
	"github.com/storyplay/storyplay/util"
	"github.com/storyplay/storyplay/where"
	"github.com/storyplay/storyplay/window"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	inspectCmd.Flags().Int64P("offset", "o", -1, "Also show what is active and preloading at this offset in milliseconds")
	inspectCmd.SetOut(os.Stdout)
}

type inspectedSegment struct {
	Type      string `json:"type"`
	Path      string `json:"path"`
	StartMs   int64  `json:"start_ms"`
	EndMs     int64  `json:"end_ms"`
	FrameID   string `json:"frame_id"`
	ItemID    string `json:"item_id,omitempty"`
	Estimated bool   `json:"estimated,omitempty"`
}

type inspectedFrame struct {
	ID      string `json:"id"`
	StartMs int64  `json:"start_ms"`
	EndMs   int64  `json:"end_ms"`
}

type inspectedWindow struct {
	OffsetMs int64              `json:"offset_ms"`
	Active   []inspectedSegment `json:"active"`
	Upcoming []inspectedSegment `json:"upcoming"`
}

type inspection struct {
	ID       string             `json:"id"`
	TotalMs  int64              `json:"total_ms"`
	Frames   []inspectedFrame   `json:"frames"`
	Segments []inspectedSegment `json:"segments"`
	Window   *inspectedWindow   `json:"window,omitempty"`
}

func inspectSegments(segments []timeline.Segment) []inspectedSegment {
	return lo.Map(segments, func(s timeline.Segment, _ int) inspectedSegment {
		return inspectedSegment{
			Type:      s.Type.String(),
			Path:      s.Path,
			StartMs:   s.StartMs,
			EndMs:     s.EndMs,
			FrameID:   s.SourceFrameID,
			ItemID:    s.ItemID,
			Estimated: s.Estimated,
		}
	})
}

func inspect(id string, tl *timeline.Timeline, offset int64) inspection {
	out := inspection{
		ID:       id,
		TotalMs:  tl.TotalMs(),
		Segments: inspectSegments(tl.Segments()),
		Frames: lo.Map(tl.Frames(), func(f timeline.FrameStart, _ int) inspectedFrame {
			return inspectedFrame{ID: f.FrameID, StartMs: f.StartMs, EndMs: f.EndMs}
		}),
	}

	if offset >= 0 {
		offset = util.Clamp(offset, tl.StartMs(), tl.TotalMs())
		win := window.New(viper.GetInt64(key.PlaybackPreloadHorizonMs))
		res := win.Refresh(tl, offset, func(s timeline.Segment) int64 { return s.EndMs })
		out.Window = &inspectedWindow{
			OffsetMs: offset,
			Active:   inspectSegments(res.Active),
			Upcoming: inspectSegments(res.Upcoming),
		}
	}
	return out
}

func printSegment(cmd *cobra.Command, s inspectedSegment) {
	line := fmt.Sprintf("  %-6s %9s %9s  %s",
		s.Type,
		util.FormatMillis(s.StartMs),
		util.FormatMillis(s.EndMs),
		s.Path,
	)
	if s.Estimated {
		line += " " + style.Faint("(estimated)")
	}
	cmd.Println(line)
}

var inspectCmd = &cobra.Command{
	Use:               "inspect [narrative]",
	Short:             "Print the timeline of a narrative",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completionNarratives,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		store := narrative.NewFileStore(where.Library())

		summary, err := pickNarrative(ctx, store, args[0])
		handleErr(err)

		frames, err := store.FrameSequence(ctx, summary.ID)
		handleErr(err)

		durations := cache.DefaultDurations()
		tl, err := timeline.Build(frames, timeline.Options{
			MinFrameMs: viper.GetInt64(key.PlaybackMinFrameMs),
			Durations:  durations.Lookup,
		})
		handleErr(err)

		out := inspect(summary.ID, tl, lo.Must(cmd.Flags().GetInt64("offset")))

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(out))
			return
		}

		header := style.New().Bold(true).Foreground(color.HiPurple).Render
		cmd.Printf("%s %s\n\n", header(summary.String()), style.Faint(util.FormatMillis(out.TotalMs)))

		for _, frame := range out.Frames {
			cmd.Printf("%s %s\n", style.Fg(color.Yellow)(frame.ID),
				style.Faint(fmt.Sprintf("[%s, %s)", util.FormatMillis(frame.StartMs), util.FormatMillis(frame.EndMs))))
			for _, s := range out.Segments {
				if s.FrameID == frame.ID {
					printSegment(cmd, s)
				}
			}
		}

		if w := out.Window; w != nil {
			cmd.Printf("\n%s\n", header("at "+util.FormatMillis(w.OffsetMs)))
			cmd.Println(style.Fg(color.Green)("active"))
			for _, s := range w.Active {
				printSegment(cmd, s)
			}
			cmd.Println(style.Fg(color.Cyan)("upcoming"))
			for _, s := range w.Upcoming {
				printSegment(cmd, s)
			}
		}
	},
}
