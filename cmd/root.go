package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pacer",
	Short: "Adaptive difficulty engine for quiz practice",
	Long: "Pacer picks the next question difficulty for each learner, tracks\n" +
		"per-topic mastery, and watches engagement so sessions stay in the\n" +
		"productive zone.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides PACER_DB env var)")
	rootCmd.PersistentFlags().String("store", "", "Storage backend: sqlite, memory or redis (overrides PACER_STORE)")
	rootCmd.PersistentFlags().Bool("json", false, "Print results as JSON")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(observeCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}
