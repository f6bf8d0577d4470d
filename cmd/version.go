package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spigell/skill-matcher/internal/skills"
)

// Actual version can be specified in build command.
var version = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		if short, _ := cmd.Flags().GetBool("short"); short {
			fmt.Println(version)
			return
		}
		fmt.Printf("%s version: %s (built-in vocabulary: %d terms)\n", app, version, skills.DefaultVocabulary().Len())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().Bool("short", false, "print only the version number")
}
