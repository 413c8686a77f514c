package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/voicecorpus/voicecorpus-go/cmd/audit"
	"github.com/voicecorpus/voicecorpus-go/cmd/queue"
	"github.com/voicecorpus/voicecorpus-go/cmd/sentences"
	"github.com/voicecorpus/voicecorpus-go/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "voicecorpus",
		Short:   "VoiceCorpus review assignment CLI",
		Version: fmt.Sprintf("%s (built %s)", settings.Version, settings.BuildDate),
	}

	// Set up the global flags for the root command.
	if err := setupFlags(rootCmd, settings); err != nil {
		cobra.CheckErr(err)
	}

	subcommands := []*cobra.Command{
		audit.Command(settings),
		queue.Command(settings),
		sentences.Command(settings),
	}

	rootCmd.AddCommand(subcommands...)

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().IntVar(&settings.Review.PageSize, "pagesize", viper.GetInt("review.pagesize"), "Page size for full-table scans")
	rootCmd.PersistentFlags().IntVar(&settings.Review.ContributionCap, "cap", viper.GetInt("review.contributioncap"), "Max distinct contributors per sentence")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
