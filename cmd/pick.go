package cmd

import (
	"context"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/storyplay/storyplay/constant"
	"github.com/storyplay/storyplay/log"
	"github.com/storyplay/storyplay/narrative"
	"github.com/storyplay/storyplay/query"
	"github.com/storyplay/storyplay/where"
)

// pickNarrative resolves query against the library. Several matches, or no query at all, are
// settled by asking the user.
func pickNarrative(ctx context.Context, store *narrative.FileStore, q string) (narrative.Summary, error) {
	summaries, err := store.Narratives(ctx)
	if err != nil {
		return narrative.Summary{}, err
	}
	if len(summaries) == 0 {
		return narrative.Summary{}, fmt.Errorf("no narratives in %s", store.Dir())
	}

	candidates := summaries
	if q != "" {
		candidates = narrative.Find(summaries, q)
	}

	switch len(candidates) {
	case 0:
		return narrative.Summary{}, fmt.Errorf("no narrative matches %q, see %s list", q, constant.Storyplay)
	case 1:
		remember(candidates[0])
		return candidates[0], nil
	}

	candidates = ranked(candidates)

	options := lo.Map(candidates, func(s narrative.Summary, _ int) string {
		return s.String()
	})

	var chosen int
	prompt := survey.Select{
		Message: "Which narrative?",
		Options: options,
	}
	if err := survey.AskOne(&prompt, &chosen); err != nil {
		return narrative.Summary{}, err
	}
	remember(candidates[chosen])
	return candidates[chosen], nil
}

func remember(s narrative.Summary) {
	if err := query.Remember(s.ID, 1); err != nil {
		log.Warn(err)
	}
}

// ranked reorders summaries so that often picked narratives come first.
func ranked(summaries []narrative.Summary) []narrative.Summary {
	byID := lo.KeyBy(summaries, func(s narrative.Summary) string {
		return s.ID
	})
	ids := query.Rank(lo.Map(summaries, func(s narrative.Summary, _ int) string {
		return s.ID
	}))
	return lo.Map(ids, func(id string, _ int) narrative.Summary {
		return byID[id]
	})
}

func completionNarratives(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	summaries, err := narrative.NewFileStore(where.Library()).Narratives(context.Background())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return lo.Map(ranked(summaries), func(s narrative.Summary, _ int) string {
		return s.ID
	}), cobra.ShellCompDirectiveNoFileComp
}
