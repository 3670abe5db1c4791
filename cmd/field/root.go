package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/cascadiaherp/shellwatch/internal/i18n"
)

var (
	configPath string
	localeFlag string

	bundle *i18n.Bundle
)

var rootCmd = &cobra.Command{
	Use:   "field",
	Short: "Record turtle observations from the field",
	Long: `Field is the terminal companion to the observation service. It submits
sightings directly against the photo store and database, so surveys keep
moving when the app is unavailable, and it carries the same species guide
the app ships with.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Load .env file if it exists
	godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file (environment variables take precedence)")
	rootCmd.PersistentFlags().StringVar(&localeFlag, "locale", i18n.DefaultLocale, "locale for messages and note labels")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		loaded, err := i18n.Load()
		if err != nil {
			return fmt.Errorf("failed to load translations: %w", err)
		}
		bundle = loaded
		return nil
	}
}
