package logging

// Field names shared by every component so log lines can be filtered per
// source, file or stage.
const (
	FieldFile          = "file_path"
	FieldSource        = "source"
	FieldAccount       = "account"
	FieldParser        = "parser"
	FieldStage         = "stage"
	FieldTransactionID = "transaction_id"
	FieldCategory      = "category"
	FieldReason        = "reason"
	FieldRow           = "row"
	FieldValue         = "value"
	FieldCount         = "count"
	FieldDuration      = "duration_ms"
	FieldInputFile     = "input_file"
	FieldOutputFile    = "output_file"
	FieldRunID         = "run_id"
	FieldError         = "error"
)
