package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eligrid/eligrid/formatter"
	"github.com/eligrid/eligrid/internal/operators"
	"github.com/eligrid/eligrid/internal/pipeline"
	"github.com/eligrid/eligrid/internal/types"
)

var parseJsonOutput bool

var parseCmd = &cobra.Command{
	Use:   "parse [formula]",
	Short: "Parse one formula and print its normalized DNF",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println("error: Please provide exactly one formula")
			os.Exit(1)
		}

		cfg, err := loadOperators()
		if err != nil {
			logger.Fatal("Failed to load operator configuration", zap.Error(err))
		}

		clauses, variables, err := pipeline.ParseFormulaIDs(args[0], cfg)
		if err != nil {
			fmt.Fprint(os.Stderr, formatter.FormatParseError(err))
			os.Exit(1)
		}

		if parseJsonOutput {
			printParseJSON(args[0], clauses, variables)
			return
		}
		fmt.Print(formatter.FormatDNF(clauses, variables))
	},
}

func init() {
	parseCmd.Flags().BoolVar(&parseJsonOutput, "json", false, "Output the DNF in JSON format")
}

func loadOperators() (*operators.Config, error) {
	if operatorsFile == "" {
		return operators.Default(), nil
	}
	return operators.Load(operatorsFile)
}

func printParseJSON(formula string, clauses []types.Clause, variables []types.Literal) {
	type jsonLiteral struct {
		ID string `json:"id"`
		Op string `json:"op"`
	}

	rules := make([][]jsonLiteral, 0, len(clauses))
	for _, clause := range clauses {
		rule := make([]jsonLiteral, 0, len(clause))
		for _, lit := range clause {
			rule = append(rule, jsonLiteral{ID: lit.ID, Op: string(lit.Op)})
		}
		rules = append(rules, rule)
	}

	ids := make([]string, 0, len(variables))
	for _, v := range variables {
		ids = append(ids, v.ID)
	}

	d, err := json.MarshalIndent(map[string]any{
		"formula":   formula,
		"rules":     rules,
		"variables": ids,
	}, "", "  ")
	if err != nil {
		logger.Error("Error marshalling DNF to JSON", zap.Error(err))
		return
	}
	fmt.Println(string(d))
}
