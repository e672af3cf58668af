// Package consolidate handles the full consolidation run
package consolidate

import (
	"github.com/spf13/cobra"

	"github.com/devjuank/FinanceService/cmd/common"
	"github.com/devjuank/FinanceService/cmd/root"
)

// OutputDir overrides output.directory.
var OutputDir string

// Cmd represents the consolidate command
var Cmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Build the consolidated ledger from every configured source",
	Long: `Parse every statement in each configured source directory, then deduplicate,
categorize and neutralize internal transfers before writing the ledger to the
configured outputs.`,
	RunE: consolidateFunc,
}

func init() {
	Cmd.Flags().StringVarP(&OutputDir, "output", "o", "", "Output directory (overrides output.directory)")
}

func consolidateFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer()
	if err != nil {
		return err
	}

	rep, err := common.ConsolidateWithError(cmd.Context(), c, OutputDir)
	if printErr := common.PrintReport(cmd.OutOrStdout(), rep, root.Flags.ReportFormat); printErr != nil {
		root.Log.WithError(printErr).Warn("Failed to print run report")
	}
	return err
}
