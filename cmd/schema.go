package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/storyplay/storyplay/narrative"
)

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.SetOut(os.Stdout)
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of narrative manifests",
	Long:  "Print the JSON schema of narrative manifests. Editors can use it to validate and complete manifest files.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		schema, err := narrative.Schema()
		handleErr(err)
		cmd.Println(string(schema))
	},
}
