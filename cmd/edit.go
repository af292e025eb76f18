package cmd

import (
	"context"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/storyplay/storyplay/narrative"
	"github.com/storyplay/storyplay/open"
	"github.com/storyplay/storyplay/where"
)

func init() {
	rootCmd.AddCommand(editCmd)
	editCmd.Flags().StringP("editor", "e", os.Getenv("EDITOR"), "Program to open the manifest with")
}

var editCmd = &cobra.Command{
	Use:               "edit [narrative]",
	Short:             "Open the manifest of a narrative for editing",
	Long:              "Open the manifest of a narrative for editing. Run storyplay with --watch in another terminal to see changes as they are saved.",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completionNarratives,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		store := narrative.NewFileStore(where.Library())

		summary, err := pickNarrative(ctx, store, args[0])
		handleErr(err)

		path, err := store.ManifestPath(ctx, summary.ID)
		handleErr(err)

		handleErr(open.RunWith(path, lo.Must(cmd.Flags().GetString("editor"))))
	},
}
