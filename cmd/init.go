package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eligrid/eligrid/internal/operators"
)

// initCmd: eligrid init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a default operator configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		path := operatorsFile
		if path == "" {
			path = "operators.yaml"
		}
		if err := operators.WriteDefault(path); err != nil {
			logger.Error("Error writing operator configuration", zap.Error(err))
			return
		}
		fmt.Printf("Operator configuration created: %s\n", path)
	},
}
