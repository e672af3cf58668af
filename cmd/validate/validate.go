// Package validate checks a ledger file against the record contract
package validate

import (
	"github.com/spf13/cobra"

	"github.com/devjuank/FinanceService/cmd/common"
	"github.com/devjuank/FinanceService/cmd/root"
)

// InputFile is the ledger to validate.
var InputFile string

// Cmd represents the validate command
var Cmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a JSON ledger",
	Long: `Check every record of a JSON ledger for required fields, field types, ISO
dates, direction values and identifier format. Exits non-zero on any
violation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := common.ValidateFileWithError(InputFile, cmd.OutOrStdout(), root.Log)
		return err
	},
}

func init() {
	Cmd.Flags().StringVarP(&InputFile, "input", "i", "", "Ledger to validate (.json)")
	_ = Cmd.MarkFlagRequired("input")
}
