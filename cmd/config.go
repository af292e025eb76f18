package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/storyplay/storyplay/color"
	"github.com/storyplay/storyplay/config"
	"github.com/storyplay/storyplay/constant"
	"github.com/storyplay/storyplay/filesystem"
	"github.com/storyplay/storyplay/icon"
	"github.com/storyplay/storyplay/key"
	"github.com/storyplay/storyplay/style"
	"github.com/storyplay/storyplay/where"
	"golang.org/x/exp/slices"
)

// choices lists the accepted values of keys that take one of a few names.
func choices(k string) []string {
	switch k {
	case key.PlayerAudio:
		return []string{constant.AudioMPV, constant.AudioSilent}
	case key.IconsVariant:
		return icon.AvailableVariants()
	case key.LogsLevel:
		return lo.Map(logrus.AllLevels, func(l logrus.Level, _ int) string {
			return l.String()
		})
	default:
		return nil
	}
}

func errUnknownKey(k string) error {
	closest := lo.MinBy(lo.Keys(config.Default), func(a string, b string) bool {
		return levenshtein.Distance(k, a) < levenshtein.Distance(k, b)
	})
	return fmt.Errorf(
		"unknown key %s, did you mean %s?",
		style.Fg(color.Red)(k),
		style.Fg(color.Yellow)(closest),
	)
}

func lookupField(k string) config.Field {
	field, ok := config.Default[k]
	if !ok {
		handleErr(errUnknownKey(k))
	}
	return field
}

// parseValue converts raw into the type of the field's default.
func parseValue(field config.Field, raw string) (any, error) {
	raw = strings.TrimSpace(raw)

	var (
		v   any
		err error
	)
	switch field.Value.(type) {
	case string:
		v = raw
		if options := choices(field.Key); options != nil && !slices.Contains(options, raw) {
			err = fmt.Errorf("expected one of %s", strings.Join(options, ", "))
		}
	case int:
		var n int
		n, err = cast.ToIntE(raw)
		if err == nil && n < 0 {
			err = errors.New("expected a value of 0 or more")
		}
		v = n
	case int64:
		v, err = cast.ToInt64E(raw)
	case bool:
		v, err = cast.ToBoolE(raw)
	default:
		err = fmt.Errorf("unsupported type %T", field.Value)
	}

	if err != nil {
		return nil, fmt.Errorf("invalid value %q for %s: %w", raw, field.Key, err)
	}
	return v, nil
}

func configFile() string {
	return filepath.Join(where.Config(), constant.Storyplay+".toml")
}

// persist writes the in-memory configuration, creating the file when needed.
func persist() {
	switch err := viper.WriteConfig(); err.(type) {
	case viper.ConfigFileNotFoundError:
		handleErr(viper.SafeWriteConfig())
	default:
		handleErr(err)
	}
}

func completionConfigKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return choices(args[0]), cobra.ShellCompDirectiveNoFileComp
	}
	return lo.Keys(config.Default), cobra.ShellCompDirectiveNoFileComp
}

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and change settings",
}

func init() {
	configCmd.AddCommand(configInfoCmd)
	configInfoCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	configInfoCmd.SetOut(os.Stdout)
}

// configInfoCmd describes settings, grouped by the section their key starts with.
var configInfoCmd = &cobra.Command{
	Use:               "info [key...]",
	Short:             "Describe settings, their values and defaults",
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		fields := lo.Values(config.Default)
		if len(args) > 0 {
			fields = lo.Map(args, func(k string, _ int) config.Field {
				return lookupField(k)
			})
		}
		slices.SortFunc(fields, func(a, b config.Field) int {
			return strings.Compare(a.Key, b.Key)
		})

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(lo.ToSlicePtr(fields)))
			return
		}

		sections := lo.GroupBy(fields, func(f config.Field) string {
			section, _, _ := strings.Cut(f.Key, ".")
			return section
		})
		names := lo.Keys(sections)
		slices.Sort(names)

		for i, name := range names {
			if i > 0 {
				cmd.Println()
			}
			cmd.Println(style.Title(name))
			for _, field := range sections[name] {
				cmd.Println()
				cmd.Print(field.Pretty())
				if options := choices(field.Key); options != nil {
					cmd.Printf("\n%s %s", style.Faint("Options:"), strings.Join(options, ", "))
				}
				cmd.Println()
			}
		}
	},
}

func init() {
	configCmd.AddCommand(configSetCmd)
}

var configSetCmd = &cobra.Command{
	Use:               "set <key> <value>",
	Short:             "Change a setting and save it to the config file",
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		field := lookupField(args[0])
		v, err := parseValue(field, args[1])
		handleErr(err)

		viper.Set(field.Key, v)
		persist()

		fmt.Printf(
			"%s set %s to %s\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			style.Fg(color.Purple)(field.Key),
			style.Fg(color.Yellow)(fmt.Sprint(v)),
		)
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
}

var configGetCmd = &cobra.Command{
	Use:               "get <key>",
	Short:             "Print the current value of a setting",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		field := lookupField(args[0])
		value := viper.Get(field.Key)

		if fmt.Sprint(value) == fmt.Sprint(field.Value) {
			fmt.Println(value, style.Faint("(default)"))
			return
		}
		fmt.Println(value)
	},
}

func init() {
	configCmd.AddCommand(configWriteCmd)
	configWriteCmd.Flags().BoolP("force", "f", false, "Overwrite an existing config file")
}

var configWriteCmd = &cobra.Command{
	Use:   "write",
	Short: "Save the current settings to the config file",
	Run: func(cmd *cobra.Command, args []string) {
		path := configFile()
		if lo.Must(cmd.Flags().GetBool("force")) {
			if err := filesystem.API().Remove(path); err != nil && !os.IsNotExist(err) {
				handleErr(err)
			}
		}

		handleErr(viper.SafeWriteConfig())
		fmt.Printf("%s wrote config to %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), path)
	},
}

func init() {
	configCmd.AddCommand(configDeleteCmd)
}

var configDeleteCmd = &cobra.Command{
	Use:     "delete",
	Short:   "Remove the config file",
	Aliases: []string{"remove"},
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(filesystem.API().Remove(configFile()))
		fmt.Printf("%s deleted config\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}

func init() {
	configCmd.AddCommand(configResetCmd)
	configResetCmd.Flags().BoolP("all", "a", false, "Reset every setting")
}

var configResetCmd = &cobra.Command{
	Use:               "reset [key...]",
	Short:             "Restore settings to their defaults",
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		all := lo.Must(cmd.Flags().GetBool("all"))
		if all == (len(args) > 0) {
			handleErr(errors.New("name the keys to reset or pass --all"))
		}

		fields := lo.Map(args, func(k string, _ int) config.Field {
			return lookupField(k)
		})
		if all {
			fields = lo.Values(config.Default)
		}

		for _, field := range fields {
			viper.Set(field.Key, field.Value)
		}
		persist()

		if all {
			fmt.Printf("%s reset every setting\n", style.Fg(color.Green)(icon.Get(icon.Success)))
			return
		}
		for _, field := range fields {
			fmt.Printf(
				"%s reset %s to %s\n",
				style.Fg(color.Green)(icon.Get(icon.Success)),
				style.Fg(color.Purple)(field.Key),
				style.Fg(color.Yellow)(fmt.Sprint(field.Value)),
			)
		}
	},
}
