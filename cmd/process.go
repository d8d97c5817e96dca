package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eligrid/eligrid/formatter"
	"github.com/eligrid/eligrid/run"
)

var (
	inputPath   string
	outputRoot  string
	mappingPath string
	maxRules    int
	noProgress  bool
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run the full pipeline: read sections, build truth tables, write exports",
	Run: func(cmd *cobra.Command, args []string) {
		if inputPath == "" {
			fmt.Println("error: Please provide an input file with --input")
			os.Exit(1)
		}

		result, err := run.Process(context.Background(), logger, run.Options{
			InputPath:     inputPath,
			OutputRoot:    outputRoot,
			OperatorsPath: operatorsFile,
			MappingPath:   mappingPath,
			MaxRules:      maxRules,
			ShowProgress:  !noProgress,
		})
		if err != nil {
			logger.Error("Run failed", zap.Error(err))
			os.Exit(1)
		}

		summary := result.Summarize()
		fmt.Print(formatter.FormatRunSummary(result.RunID, result.RunDir,
			summary.Total, summary.Succeeded, summary.Failed))
		if summary.Failed > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	processCmd.Flags().StringVarP(&inputPath, "input", "i", "", "Input CSV with section rows")
	processCmd.Flags().StringVarP(&outputRoot, "output", "o", "output", "Root directory for run output")
	processCmd.Flags().StringVar(&mappingPath, "mapping", "", "TSV file mapping variable IDs to metadata")
	processCmd.Flags().IntVar(&maxRules, "max-rules", 2000, "Maximum DNF rules per section (0 disables the cap)")
	processCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")
}
