// Command preprocess cleans a churn CSV: it coerces the charges column to
// numbers, remaps the churn and senior-citizen flags and drops incomplete rows.
package main

import (
	"fmt"
	"os"

	"churnstats/internal"
	"churnstats/internal/config"
	"churnstats/internal/preprocess"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		internal.DefaultLogger.Debug("No .env file found, using system environment variables")
	}

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataPath string
	var outputPath string

	cmd := &cobra.Command{
		Use:           "preprocess",
		Short:         "Clean a churn CSV for analysis",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			logger := internal.NewDefaultLogger()
			if level, ok := internal.ParseLogLevel(cfg.LogLevel); ok {
				logger.SetLevel(level)
			}

			_, err = preprocess.ProcessFile(dataPath, outputPath, preprocess.OptionsFromConfig(cfg.Preprocess), logger)
			return err
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "data.csv", "Path to the input CSV")
	cmd.Flags().StringVar(&outputPath, "output", "data_processed.csv", "Path of the cleaned CSV")

	return cmd
}
