package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	operatorsFile string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "eligrid",
	Short: "eligrid - eligibility formula parser and truth table exporter",
	Run: func(cmd *cobra.Command, args []string) {
		// display help when only 'eligrid' is entered
		_ = cmd.Help()
	},
}

func Execute() error {
	defer func() {
		_ = logger.Sync()
	}()
	return rootCmd.Execute()
}

func init() {
	var err error
	logger, err = zap.NewProduction()
	if err != nil {
		logger = zap.NewNop()
	}

	rootCmd.PersistentFlags().StringVar(&operatorsFile, "operators", "", "Operator configuration file (YAML or JSON)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(parseCmd)
}
