package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/devjuank/FinanceService/internal/common"
	"github.com/devjuank/FinanceService/internal/config"
	"github.com/devjuank/FinanceService/internal/container"
	"github.com/devjuank/FinanceService/internal/logging"
	"github.com/devjuank/FinanceService/internal/models"
	"github.com/devjuank/FinanceService/internal/pdftext"
	"github.com/devjuank/FinanceService/internal/pipeline"
	"github.com/devjuank/FinanceService/internal/store"
	"github.com/devjuank/FinanceService/internal/validation"
)

const brubankStatement = `Brubank S.A.
Resumen de cuenta
10-03-24
000123
Transferencia enviada a cuenta tuya
1.000,00
-
5.000,00
11-03-24
000124
SPOTIFY P1234ABCD
2.999,00
-
2.001,00
12-03-24
000125
Percepción IVA RG 4240
150,50
-
1.850,50
31-02-24
000126
Fecha imposible
1,00
-
1,00
14-03-24
000127
Reintegro promoción
-
500,00
2.350,50
`

const ruleFile = `merchants:
  spotify: {category: entretenimiento, subcategory: streaming}
description_keywords:
  haberes: {category: ingresos, subcategory: sueldo}
`

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
	require.NoError(t, os.WriteFile(path, data, 0600))
}

func santanderWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A13", &[]interface{}{"", "Fecha", "Suc.", "Descripción", "Ref", "Caja", "Importe", "Saldo"}))
	require.NoError(t, f.SetSheetRow(sheet, "A14", &[]interface{}{"", "11/03/2024", "001", "Transferencia de cuenta propia", "", "", 1000.0, 11000.0}))
	require.NoError(t, f.SetSheetRow(sheet, "A15", &[]interface{}{"", "15/03/2024", "001", "Haberes", "", "", 250000.0, 261000.0}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

// setup lays out two Brubank PDFs with identical content, one Santander
// workbook and a YAML rule file, and returns a container over them.
func setup(t *testing.T) (*container.Container, string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	writeFile(t, filepath.Join(dir, "brubank", "2024-03.pdf"), []byte("%PDF"))
	writeFile(t, filepath.Join(dir, "brubank", "2024-03-copy.PDF"), []byte("%PDF"))
	writeFile(t, filepath.Join(dir, "brubank", "notes.txt"), []byte("ignored"))
	writeFile(t, filepath.Join(dir, "santander", "movimientos.xlsx"), santanderWorkbook(t))
	writeFile(t, filepath.Join(dir, "rules.yaml"), []byte(ruleFile))

	cfgPath := filepath.Join(dir, "config.yaml")
	writeFile(t, cfgPath, []byte(`rules:
  file: `+filepath.Join(dir, "rules.yaml")+`
output:
  directory: `+filepath.Join(dir, "output")+`
  sqlite:
    enabled: true
    path: `+filepath.Join(dir, "ledger.db")+`
sources:
  - name: brubank
    kind: brubank
    account: caja_ahorro
    directory: `+filepath.Join(dir, "brubank")+`
  - name: santander
    kind: santander_xlsx
    account: cuenta
    directory: `+filepath.Join(dir, "santander")+`
  - name: mercadopago
    kind: mercadopago
    account: cuenta
    directory: `+filepath.Join(dir, "missing")+`
`))

	cfg, err := config.InitializeConfig(cfgPath)
	require.NoError(t, err)

	c, err := container.NewContainer(cfg,
		container.WithLogger(logging.NewMockLogger()),
		container.WithExtractor(pdftext.NewMockExtractor(brubankStatement, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, dir
}

func consolidate(t *testing.T, c *container.Container, runID string) []models.Transaction {
	t.Helper()
	inputs, err := c.Inputs()
	require.NoError(t, err)
	out, err := c.Sink(context.Background(), runID, "")
	require.NoError(t, err)

	ledger, rep, err := c.Pipeline(out, "").Consolidate(context.Background(), runID, inputs)
	require.NoError(t, err)

	assert.Equal(t, 3, rep.FilesRead)
	assert.Equal(t, 0, rep.FilesFailed)
	assert.Equal(t, 12, rep.RowsRead)
	assert.Equal(t, 2, rep.RowsSkipped)
	assert.Equal(t, 4, rep.DuplicatesRemoved)
	assert.Equal(t, 1, rep.PairsNeutralized)
	assert.Equal(t, 6, rep.LedgerSize)
	return ledger
}

func TestCrossSourceConsolidation(t *testing.T) {
	c, dir := setup(t)
	ledger := consolidate(t, c, "run-1")

	t.Run("ledger is newest first", func(t *testing.T) {
		for i := 1; i < len(ledger); i++ {
			assert.False(t, ledger[i].Date.After(ledger[i-1].Date), "record %d out of order", i)
		}
	})

	t.Run("transfer pair crosses institutions", func(t *testing.T) {
		var neutralized []models.Transaction
		for _, tx := range ledger {
			if tx.Neutralized {
				neutralized = append(neutralized, tx)
			}
		}
		require.Len(t, neutralized, 2)
		assert.ElementsMatch(t, []string{"brubank", "santander"}, []string{neutralized[0].Source, neutralized[1].Source})
		for _, tx := range neutralized {
			assert.Equal(t, models.CategoryInternalTransfer, tx.CategoryName())
		}
	})

	t.Run("rules applied", func(t *testing.T) {
		categories := map[string]string{}
		for _, tx := range ledger {
			categories[tx.Description] = tx.CategoryName() + "/" + tx.SubcategoryName()
		}
		assert.Equal(t, "entretenimiento/streaming", categories["SPOTIFY P1234ABCD"])
		assert.Equal(t, "ingresos/sueldo", categories["Haberes"])
	})

	t.Run("persisted ledger passes validation", func(t *testing.T) {
		result, err := validation.NewValidator(nil).ValidateFile(filepath.Join(dir, "output", pipeline.LedgerName+".json"))
		require.NoError(t, err)
		assert.True(t, result.Valid(), "%v", result.Errors)
		assert.Equal(t, 6, result.Records)
	})

	t.Run("per-source snapshots hold raw records", func(t *testing.T) {
		raw, err := common.ReadLedgerFile(filepath.Join(dir, "output", "brubank.json"))
		require.NoError(t, err)
		assert.Len(t, raw, 8)
	})

	t.Run("snapshot store keeps the run", func(t *testing.T) {
		snapshots, err := store.OpenSnapshotStore(filepath.Join(dir, "ledger.db"), nil)
		require.NoError(t, err)
		defer snapshots.Close()

		saved, err := snapshots.LoadSnapshot(context.Background(), "run-1/"+pipeline.LedgerName)
		require.NoError(t, err)
		require.Len(t, saved, len(ledger))
		for i := range ledger {
			assert.Equal(t, ledger[i].ID, saved[i].ID)
		}
	})
}

func TestCrossSourceConsolidation_Deterministic(t *testing.T) {
	c, _ := setup(t)
	first := consolidate(t, c, "run-1")
	second := consolidate(t, c, "run-2")

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Neutralized, second[i].Neutralized)
	}
}
