// Package cmd implements the storyplay command line.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/storyplay/storyplay/color"
	"github.com/storyplay/storyplay/constant"
	"github.com/storyplay/storyplay/history"
	"github.com/storyplay/storyplay/icon"
	"github.com/storyplay/storyplay/internal/cache"
	"github.com/storyplay/storyplay/key"
	"github.com/storyplay/storyplay/log"
	"github.com/storyplay/storyplay/narrative"
	"github.com/storyplay/storyplay/player"
	"github.com/storyplay/storyplay/style"
	"github.com/storyplay/storyplay/tui"
	"github.com/storyplay/storyplay/where"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, squares)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().StringP("library", "L", "", "Directory to read narrative manifests from")
	lo.Must0(viper.BindPFlag(key.LibraryPath, rootCmd.PersistentFlags().Lookup("library")))

	rootCmd.Flags().BoolP("write-history", "H", true, "Remember the playback position on exit")
	lo.Must0(viper.BindPFlag(key.HistorySaveOnExit, rootCmd.Flags().Lookup("write-history")))

	rootCmd.Flags().StringP("from-frame", "f", "", "Start at the frame with this id")
	rootCmd.Flags().BoolP("continue", "c", false, "Resume where the narrative was left, or the most recent one without an argument")
	rootCmd.Flags().BoolP("no-audio", "n", false, "Play without sound")
	rootCmd.Flags().BoolP("watch", "w", false, "Reload the narrative whenever its manifest changes")
	rootCmd.Flags().BoolP("paused", "p", false, "Start paused")
	rootCmd.MarkFlagsMutuallyExclusive("from-frame", "continue")

	rootCmd.ValidArgsFunction = completionNarratives

	go player.SweepSockets()
}

// rootCmd plays a narrative.
var rootCmd = &cobra.Command{
	Use:   constant.Storyplay + " [narrative]",
	Short: "Play image, audio and text narratives in the terminal",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - Play image, audio and text narratives in the terminal"),
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("version")) {
			versionCmd.Run(versionCmd, args)
			return
		}

		var (
			query      = strings.Join(args, " ")
			fromFrame  = lo.Must(cmd.Flags().GetString("from-frame"))
			resume     = lo.Must(cmd.Flags().GetBool("continue"))
			noAudio    = lo.Must(cmd.Flags().GetBool("no-audio"))
			watch      = lo.Must(cmd.Flags().GetBool("watch"))
			paused     = lo.Must(cmd.Flags().GetBool("paused"))
			store      = narrative.NewFileStore(where.Library())
			ctx, stop  = signal.NotifyContext(context.Background(), os.Interrupt)
			options    = tui.Options{Store: store, StartFrameID: fromFrame, Autoplay: !paused}
			summary    narrative.Summary
			err        error
			resumeFrom mo.Option[*history.Saved]
		)
		defer stop()

		if resume && query == "" {
			resumeFrom, err = mostRecent()
			handleErr(err)
			saved, ok := resumeFrom.Get()
			if !ok {
				handleErr(fmt.Errorf("nothing to continue, the history is empty"))
			}
			query = saved.NarrativeID
		}

		summary, err = pickNarrative(ctx, store, query)
		handleErr(err)

		if resume {
			resumeFrom, err = history.Lookup(summary.ID)
			handleErr(err)
			if saved, ok := resumeFrom.Get(); ok && !saved.Finished() {
				options.Resume = mo.Some(saved.Snapshot)
			}
		}

		options.NarrativeID = summary.ID
		options.Title = lo.Ternary(summary.Title != "", summary.Title, summary.ID)
		options.Durations = cache.DefaultDurations()
		options.Audio = audioBackend(noAudio)
		if watch {
			options.WatchPath = summary.Path
		}

		handleErr(tui.Run(ctx, &options))
	},
}

// mostRecent returns the latest history entry.
func mostRecent() (mo.Option[*history.Saved], error) {
	saved, err := history.Get()
	if err != nil {
		return mo.None[*history.Saved](), err
	}
	if len(saved) == 0 {
		return mo.None[*history.Saved](), nil
	}

	latest := lo.MaxBy(lo.Values(saved), func(a, b *history.Saved) bool {
		return a.SavedAt.After(b.SavedAt)
	})
	return mo.Some(latest), nil
}

// Execute runs the command line.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
