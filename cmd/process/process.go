// Package process re-runs reconciliation over an existing ledger
package process

import (
	"github.com/spf13/cobra"

	"github.com/devjuank/FinanceService/cmd/common"
	"github.com/devjuank/FinanceService/cmd/root"
)

// Flags of the process command.
var (
	InputFile  string
	OutputFile string
	RulesFile  string
)

// Cmd represents the process command
var Cmd = &cobra.Command{
	Use:   "process",
	Short: "Deduplicate, categorize and neutralize an existing ledger",
	Long: `Read a JSON or CSV ledger, remove duplicate records, apply the categorization
rules and pair internal transfers again. Neutralization from an earlier run
is recomputed from scratch.`,
	RunE: processFunc,
}

func init() {
	Cmd.Flags().StringVarP(&InputFile, "input", "i", "", "Input ledger (.json or .csv)")
	Cmd.Flags().StringVarP(&OutputFile, "output", "o", "", "Output ledger (.json or .csv, default rewrites the input)")
	Cmd.Flags().StringVar(&RulesFile, "rules", "", "Rule file (overrides rules.file)")
	_ = Cmd.MarkFlagRequired("input")
}

func processFunc(cmd *cobra.Command, args []string) error {
	if RulesFile != "" && root.AppConfig != nil {
		root.AppConfig.Rules.File = RulesFile
	}
	c, err := root.GetContainer()
	if err != nil {
		return err
	}

	rep, err := common.ProcessFileWithError(cmd.Context(), c, InputFile, OutputFile)
	if printErr := common.PrintReport(cmd.OutOrStdout(), rep, root.Flags.ReportFormat); printErr != nil {
		root.Log.WithError(printErr).Warn("Failed to print run report")
	}
	return err
}
