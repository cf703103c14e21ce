package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"millis/config"
)

var (
	boardsFile string

	rootCmd = &cobra.Command{
		Use:          "millis",
		Short:        "Millis timer tools",
		Long:         "Run the millis echo firmware on a simulated board, list timer configurations, or probe a real board over serial.",
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&boardsFile, "boards", "b", "", "YAML board profile file (default: built-in profiles)")
	rootCmd.AddCommand(runCmd, configsCmd, probeCmd)
}

// loadProfiles returns the profiles from --boards, or the built-in set
func loadProfiles() (config.Profiles, error) {
	if boardsFile == "" {
		return config.Builtin(), nil
	}
	return config.LoadFile(boardsFile)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
