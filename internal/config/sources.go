package config

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/devjuank/FinanceService/internal/heuristics"
)

// DefaultSources returns the five institutions the engine knows about. None
// has a directory, so each contributes nothing until one is configured.
func DefaultSources() []SourceConfig {
	return []SourceConfig{
		{Name: "brubank", Kind: heuristics.KindBrubank, Account: "caja_ahorro"},
		{Name: "mercadopago", Kind: heuristics.KindMercadoPago, Account: "cuenta"},
		{Name: "deel", Kind: heuristics.KindDeel, Account: "usd"},
		{Name: "santander", Kind: heuristics.KindSantanderXLSX, Account: "cuenta"},
		{Name: "santander", Kind: heuristics.KindSantanderVisa, Account: "visa"},
	}
}

func defaultExtension(kind string) string {
	switch kind {
	case heuristics.KindBrubank, heuristics.KindSantanderVisa:
		return ".pdf"
	case heuristics.KindMercadoPago, heuristics.KindDeel:
		return ".csv"
	case heuristics.KindSantanderXLSX:
		return ".xlsx"
	default:
		return ""
	}
}

func defaultCurrency(kind string) string {
	if kind == heuristics.KindDeel {
		return "USD"
	}
	return "ARS"
}

// LoadEnv loads variables from a .env file in the working directory when
// one exists. Variables already set in the environment win.
func LoadEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	return godotenv.Load()
}
