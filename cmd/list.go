package cmd

import (
	"context"
	"encoding/json"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/storyplay/storyplay/color"
	"github.com/storyplay/storyplay/history"
	"github.com/storyplay/storyplay/icon"
	"github.com/storyplay/storyplay/narrative"
	"github.com/storyplay/storyplay/style"
	"github.com/storyplay/storyplay/util"
	"github.com/storyplay/storyplay/where"
)

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	listCmd.SetOut(os.Stdout)
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the narratives in the library",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		store := narrative.NewFileStore(where.Library())
		summaries, err := store.Narratives(context.Background())
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(summaries))
			return
		}

		if len(summaries) == 0 {
			cmd.Printf("%s no narratives in %s\n", icon.Get(icon.Info), store.Dir())
			return
		}

		saved, err := history.Get()
		handleErr(err)

		for _, s := range summaries {
			line := style.Fg(color.Purple)(s.ID)
			if s.Title != "" && s.Title != s.ID {
				line += " " + s.Title
			}
			line += " " + style.Faint(util.Quantify(s.Frames, "frame", "frames"))

			if entry, ok := saved[s.ID]; ok {
				line += " " + style.Fg(color.Yellow)(icon.Get(icon.Mark)+" "+util.FormatMillis(entry.PositionMs))
			}
			cmd.Println(line)
		}
	},
}
