package factory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devjuank/FinanceService/internal/factory"
	"github.com/devjuank/FinanceService/internal/heuristics"
	"github.com/devjuank/FinanceService/internal/logging"
	"github.com/devjuank/FinanceService/internal/parser"
	"github.com/devjuank/FinanceService/internal/pdftext"
)

func TestGetParser(t *testing.T) {
	tests := []struct {
		name        string
		kind        string
		expectError bool
	}{
		{name: "Brubank Parser", kind: heuristics.KindBrubank},
		{name: "MercadoPago Parser", kind: heuristics.KindMercadoPago},
		{name: "Deel Parser", kind: heuristics.KindDeel},
		{name: "Santander XLSX Parser", kind: heuristics.KindSantanderXLSX},
		{name: "Santander Visa Parser", kind: heuristics.KindSantanderVisa},
		{name: "Unknown Parser Type", kind: "camt", expectError: true},
	}

	opts := factory.Options{Extractor: pdftext.NewMockExtractor("", nil), StatementYear: 2024}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := parser.Source{Name: "bank", Account: "main", Currency: "ARS"}
			p, err := factory.GetParser(tt.kind, source, opts, logging.NewMockLogger())

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, p)
				assert.Contains(t, err.Error(), "unknown parser type")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.kind, p.Kind())
		})
	}
}

func TestGetParser_CoversEveryKind(t *testing.T) {
	for _, kind := range heuristics.Kinds() {
		_, err := factory.GetParser(kind, parser.Source{Name: kind, Account: "a"}, factory.Options{}, nil)
		assert.NoError(t, err, kind)
	}
}
