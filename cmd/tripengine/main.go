package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	var configPath string
	rootCmd := &cobra.Command{
		Use:   "tripengine",
		Short: "A static travel blog with maps and a local authoring tool",
		Long: `tripengine builds a static travel blog from post files, serves a local
preview with an editor for new trips, and searches places for the editor.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./tripengine.yaml)")

	rootCmd.AddCommand(newBuildCommand(&configPath))
	rootCmd.AddCommand(newServeCommand(&configPath))
	rootCmd.AddCommand(newSearchCommand(&configPath))
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the tripengine version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tripengine %s\n", version)
		},
	}
}
