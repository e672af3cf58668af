package pipeline

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devjuank/FinanceService/internal/categorizer"
	"github.com/devjuank/FinanceService/internal/common"
	"github.com/devjuank/FinanceService/internal/consolidator"
	"github.com/devjuank/FinanceService/internal/dedup"
	"github.com/devjuank/FinanceService/internal/heuristics"
	"github.com/devjuank/FinanceService/internal/logging"
	"github.com/devjuank/FinanceService/internal/models"
	"github.com/devjuank/FinanceService/internal/neutralizer"
	"github.com/devjuank/FinanceService/internal/parser"
	"github.com/devjuank/FinanceService/internal/sink"
)

// lineParser reads "YYYY-MM-DD;amount;description;merchant" lines.
type lineParser struct {
	parser.BaseParser
}

func newLineParser(name, account string) *lineParser {
	return &lineParser{BaseParser: parser.NewBaseParser(parser.Source{
		Name:     name,
		Account:  account,
		Currency: "ARS",
		Keywords: heuristics.Keywords{
			Transfer: []string{"transferencia"},
			Fee:      []string{"comision"},
		},
	}, nil)}
}

func (p *lineParser) Kind() string { return "lines" }

func (p *lineParser) Parse(_ context.Context, r io.Reader) (*parser.Result, error) {
	result := &parser.Result{}
	scanner := bufio.NewScanner(r)
	row := 0
	for scanner.Scan() {
		row++
		result.RowsRead++
		fields := strings.Split(scanner.Text(), ";")
		if len(fields) != 4 {
			p.Skip(result, row, "wrong field count")
			continue
		}
		p.Add(result, row, p.NewBuilder().
			WithDateString(models.DateLayoutISO, fields[0]).
			WithAmountFromString(fields[1]).
			WithDescription(fields[2]).
			WithMerchant(fields[3]).
			WithFlags(p.Flags(fields[2])))
	}
	return result, scanner.Err()
}

func rules() models.RuleTable {
	return models.RuleTable{
		Merchants: []models.KeywordRule{
			models.NewKeywordRule("spotify", "entretenimiento", "musica"),
		},
		DescriptionKeywords: []models.KeywordRule{
			models.NewKeywordRule("alquiler", "vivienda", "alquiler"),
		},
	}
}

func newPipeline(out sink.Sink, opts Options, logger logging.Logger) *Pipeline {
	return New(
		consolidator.NewConsolidator(0, logger),
		dedup.NewDeduplicator(logger),
		categorizer.NewCategorizer(rules(), logger),
		neutralizer.NewNeutralizer(neutralizer.DefaultOptions(), logger),
		out,
		opts,
		logger,
	)
}

func writeStatement(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0600))
}

func readLedger(t *testing.T, path string) []models.Transaction {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	ledger, err := common.ReadLedgerJSON(f)
	require.NoError(t, err)
	return ledger
}

func TestPipeline_Consolidate(t *testing.T) {
	root := t.TempDir()
	bankDir := filepath.Join(root, "bank")
	walletDir := filepath.Join(root, "wallet")
	outDir := filepath.Join(root, "out")

	writeStatement(t, bankDir, "marzo.txt", strings.Join([]string{
		"2024-03-10;-1000,00;Transferencia a cuenta propia;",
		"2024-03-12;-15,99;Pago SPOTIFY;SPOTIFY",
		"2024-03-13;-250000,00;Alquiler marzo;",
		"garbage",
	}, "\n"))
	// the same statement exported twice
	writeStatement(t, bankDir, "marzo-copia.txt", "2024-03-12;-15,99;Pago SPOTIFY;SPOTIFY\n")
	writeStatement(t, walletDir, "wallet.txt", strings.Join([]string{
		"2024-03-11;1000,00;Transferencia recibida;",
		"2024-01-01;-500,00;Transferencia a tercero;",
	}, "\n"))
	writeStatement(t, walletDir, "broken.txt", "")

	bank := newLineParser("bank", "caja")
	wallet := newLineParser("wallet", "cuenta")
	logger := logging.NewMockLogger()

	ledger, rep, err := newPipeline(sink.NewJSONFileSink(outDir, logger), Options{PerSource: true}, logger).
		Consolidate(context.Background(), "run-1", []consolidator.Input{
			{Parser: bank, Source: bank.Source(), Directory: bankDir, Extension: ".txt"},
			{Parser: wallet, Source: wallet.Source(), Directory: walletDir, Extension: ".txt"},
		})
	require.NoError(t, err)

	assert.Equal(t, 7, rep.RowsRead)
	assert.Equal(t, 1, rep.RowsSkipped)
	assert.Equal(t, 6, rep.TransactionsParsed)
	assert.Equal(t, 1, rep.DuplicatesRemoved)
	assert.Equal(t, 2, rep.RuleHits)
	assert.Equal(t, 1, rep.PairsNeutralized)
	assert.Equal(t, 5, rep.LedgerSize)
	assert.Equal(t, "2024-01-01_2024-03-13", rep.DateRange.String())
	require.Len(t, rep.Sources, 2)
	assert.Equal(t, 2, rep.Sources[0].Files)

	require.Len(t, ledger, 5)
	for i := 1; i < len(ledger); i++ {
		assert.False(t, ledger[i].Date.After(ledger[i-1].Date), "ledger must be sorted newest first")
	}

	byDesc := make(map[string]*models.Transaction)
	for i := range ledger {
		byDesc[ledger[i].Description] = &ledger[i]
	}
	assert.True(t, byDesc["Transferencia a cuenta propia"].Neutralized)
	assert.True(t, byDesc["Transferencia recibida"].Neutralized)
	assert.Equal(t, models.CategoryInternalTransfer, byDesc["Transferencia recibida"].CategoryName())
	assert.False(t, byDesc["Transferencia a tercero"].Neutralized)
	assert.True(t, byDesc["Transferencia a tercero"].IsTransfer)
	assert.Equal(t, "musica", byDesc["Pago SPOTIFY"].SubcategoryName())
	assert.Equal(t, "vivienda", byDesc["Alquiler marzo"].CategoryName())

	persisted := readLedger(t, filepath.Join(outDir, LedgerName+".json"))
	assert.Len(t, persisted, 5)
	assert.Len(t, readLedger(t, filepath.Join(outDir, "bank.json")), 4)
	assert.Len(t, readLedger(t, filepath.Join(outDir, "wallet.json")), 2)

	assert.True(t, logger.HasEntry("INFO", "Run complete"))
}

func TestPipeline_ConsolidateIsDeterministic(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "bank")
	writeStatement(t, dir, "a.txt", "2024-03-10;-1000,00;Transferencia;\n2024-03-11;1000,00;Transferencia;\n")
	p := newLineParser("bank", "caja")
	inputs := []consolidator.Input{{Parser: p, Source: p.Source(), Directory: dir, Extension: ".txt"}}

	first, _, err := newPipeline(nil, Options{}, nil).Consolidate(context.Background(), "a", inputs)
	require.NoError(t, err)
	second, _, err := newPipeline(nil, Options{}, nil).Consolidate(context.Background(), "b", inputs)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPipeline_NoSources(t *testing.T) {
	outDir := t.TempDir()
	ledger, rep, err := newPipeline(sink.NewJSONFileSink(outDir, nil), Options{PerSource: true}, nil).
		Consolidate(context.Background(), "run", nil)
	require.NoError(t, err)
	assert.Empty(t, ledger)
	assert.Zero(t, rep.LedgerSize)
	assert.Empty(t, readLedger(t, filepath.Join(outDir, LedgerName+".json")))
}

type failingSink struct{}

func (failingSink) Name() string { return "failing" }
func (failingSink) Write(context.Context, string, []models.Transaction) error {
	return errors.New("bucket unavailable")
}

func TestPipeline_SinkFailure(t *testing.T) {
	_, _, err := newPipeline(failingSink{}, Options{}, nil).Consolidate(context.Background(), "run", nil)
	assert.ErrorContains(t, err, "writing ledger")
}

func TestPipeline_Process(t *testing.T) {
	build := func(date string, amount string, desc string, flags models.Flags) models.Transaction {
		tx, err := models.NewTransactionBuilder("bank", "caja").
			WithDateString(models.DateLayoutISO, date).
			WithAmountFromString(amount).
			WithCurrency("ARS").
			WithDescription(desc).
			WithFlags(flags).
			Build()
		require.NoError(t, err)
		return tx
	}

	debit := build("2024-03-10", "-1000", "Transferencia enviada", models.Flags{IsTransfer: true})
	credit := build("2024-03-11", "1000", "Transferencia recibida", models.Flags{IsTransfer: true})
	rent := build("2024-03-01", "-200000", "Alquiler", models.Flags{})
	// stale state from an earlier run must not survive
	rent.Neutralized = true

	outDir := t.TempDir()
	ledger, rep, err := newPipeline(sink.NewJSONFileSink(outDir, nil), Options{LedgerName: "reviewed"}, nil).
		Process(context.Background(), "run", []models.Transaction{debit, credit, rent, debit})
	require.NoError(t, err)

	assert.Equal(t, 1, rep.DuplicatesRemoved)
	assert.Equal(t, 1, rep.PairsNeutralized)
	assert.Equal(t, 1, rep.RuleHits)
	require.Len(t, ledger, 3)
	assert.Equal(t, "Alquiler", ledger[2].Description)
	assert.False(t, ledger[2].Neutralized)
	assert.Equal(t, "vivienda", ledger[2].CategoryName())
	assert.Len(t, readLedger(t, filepath.Join(outDir, "reviewed.json")), 3)

	again, rep2, err := newPipeline(nil, Options{}, nil).Process(context.Background(), "run-2", ledger)
	require.NoError(t, err)
	assert.Equal(t, 0, rep2.DuplicatesRemoved)
	assert.Equal(t, 1, rep2.PairsNeutralized)
	assert.Len(t, again, 3)
}

func TestNewRunID(t *testing.T) {
	assert.NotEqual(t, NewRunID(), NewRunID())
	assert.Len(t, NewRunID(), 36)
}

func TestPipeline_ProcessOrphanedLeg(t *testing.T) {
	tx, err := models.NewTransactionBuilder("bank", "caja").
		WithDateString(models.DateLayoutISO, "2024-03-10").
		WithAmountFromString("-1000").
		WithCurrency("ARS").
		WithDescription("Transferencia enviada").
		WithFlags(models.Flags{IsTransfer: true}).
		Build()
	require.NoError(t, err)
	tx.SetCategory(models.CategoryInternalTransfer, "")
	tx.Neutralized = true

	refund := tx
	refund.ID = "refund"
	refund.Description = "Devolucion transferencia"
	refund.SetCategory(models.CategoryInternalTransfer, "")

	ledger, rep, err := newPipeline(nil, Options{}, nil).
		Process(context.Background(), "run", []models.Transaction{tx, refund})
	require.NoError(t, err)

	assert.Equal(t, 0, rep.PairsNeutralized)
	require.Len(t, ledger, 2)
	for i := range ledger {
		assert.False(t, ledger[i].Neutralized)
		assert.NotEqual(t, models.CategoryInternalTransfer, ledger[i].CategoryName())
		assert.True(t, ledger[i].IsTransfer)
	}
	assert.Nil(t, ledger[0].Category)
	assert.Equal(t, "ingresos", ledger[1].CategoryName())
	assert.Equal(t, "reintegros", ledger[1].SubcategoryName())
}
