// Package validation checks persisted ledgers against the canonical record
// schema in ledger.schema.json.
package validation

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/devjuank/FinanceService/internal/logging"
	"github.com/devjuank/FinanceService/internal/models"
	"github.com/devjuank/FinanceService/internal/parsererror"
)

//go:embed ledger.schema.json
var ledgerSchema []byte

const schemaURL = "https://finledger.local/schemas/ledger.schema.json"

var (
	recordSchema = mustCompile(schemaURL + "#/$defs/transaction")
	printer      = message.NewPrinter(language.English)
)

func mustCompile(location string) *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(ledgerSchema))
	if err != nil {
		panic(fmt.Sprintf("validation: decoding ledger schema: %v", err))
	}
	c := jsonschema.NewCompiler()
	c.AssertFormat()
	if err := c.AddResource(schemaURL, doc); err != nil {
		panic(fmt.Sprintf("validation: adding ledger schema: %v", err))
	}
	return c.MustCompile(location)
}

// Result is the outcome of validating one ledger.
type Result struct {
	Records int
	Errors  []*parsererror.ValidationError
}

// Valid reports whether no violation was found.
func (r *Result) Valid() bool {
	return len(r.Errors) == 0
}

// Validator enforces the ledger schema.
type Validator struct {
	logger logging.Logger
}

// NewValidator creates a Validator.
func NewValidator(logger logging.Logger) *Validator {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Validator{logger: logger}
}

// ValidateFile validates the JSON ledger at path.
func (v *Validator) ValidateFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not read file: %w", err)
	}
	defer f.Close()

	result, err := v.ValidateJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	v.logger.Info("Validated ledger",
		logging.F(logging.FieldInputFile, path),
		logging.F(logging.FieldCount, result.Records),
		logging.F("violations", len(result.Errors)))
	return result, nil
}

// ValidateJSON decodes a JSON array of records and validates each one. An
// input that is not a JSON array is an error, not a violation.
func (v *Validator) ValidateJSON(r io.Reader) (*Result, error) {
	doc, err := jsonschema.UnmarshalJSON(r)
	if err != nil {
		return nil, fmt.Errorf("root element must be an array of records: %w", err)
	}
	records, ok := doc.([]interface{})
	if !ok {
		return nil, fmt.Errorf("root element must be an array of records")
	}

	result := &Result{Records: len(records)}
	for i, raw := range records {
		record, ok := raw.(map[string]interface{})
		if !ok {
			result.Errors = append(result.Errors, &parsererror.ValidationError{Index: i, Reason: "is not an object"})
			continue
		}
		result.Errors = append(result.Errors, ValidateRecord(i, record)...)
	}
	return result, nil
}

// ValidateRecord checks one decoded record. Numbers may be json.Number or
// float64.
func ValidateRecord(index int, record map[string]interface{}) []*parsererror.ValidationError {
	err := recordSchema.Validate(record)
	if err == nil {
		return nil
	}

	var schemaErr *jsonschema.ValidationError
	if !errors.As(err, &schemaErr) {
		return []*parsererror.ValidationError{{Index: index, Reason: err.Error()}}
	}

	var errs []*parsererror.ValidationError
	collect(index, schemaErr, &errs)
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })
	return errs
}

// collect flattens the leaves of a schema error tree into field-level errors.
func collect(index int, err *jsonschema.ValidationError, out *[]*parsererror.ValidationError) {
	if len(err.Causes) > 0 {
		for _, cause := range err.Causes {
			collect(index, cause, out)
		}
		return
	}

	field := strings.Join(err.InstanceLocation, ".")
	add := func(field, reason string) {
		*out = append(*out, &parsererror.ValidationError{Index: index, Field: field, Reason: reason})
	}

	switch k := err.ErrorKind.(type) {
	case *kind.Required:
		for _, name := range k.Missing {
			add(name, "is missing")
		}
	case *kind.Type:
		add(field, fmt.Sprintf("has wrong type: expected %s, got %s", wantTypes(k.Want), k.Got))
	case *kind.Enum:
		add(field, fmt.Sprintf("must be %s or %s, got %s", models.DirectionDebit, models.DirectionCredit, quote(k.Got)))
	case *kind.Pattern:
		add(field, fmt.Sprintf("is not a %d-character lowercase hex digest", models.IDLength))
	case *kind.Format:
		add(field, fmt.Sprintf("is not an ISO calendar date (YYYY-MM-DD): %s", quote(k.Got)))
	default:
		add(field, err.ErrorKind.LocalizedString(printer))
	}
}

// wantTypes lists the accepted types with null last.
func wantTypes(want []string) string {
	types := append([]string(nil), want...)
	sort.SliceStable(types, func(i, j int) bool { return types[j] == "null" && types[i] != "null" })
	return strings.Join(types, " or ")
}

func quote(v interface{}) string {
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}
	return fmt.Sprint(v)
}
