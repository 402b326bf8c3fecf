package logging

// Field names shared by every component so log output can be filtered consistently.
const (
	FieldDocument      = "document"
	FieldFile          = "file_path"
	FieldAccount       = "account"
	FieldAccountType   = "account_type"
	FieldFingerprint   = "fingerprint"
	FieldCategory      = "category"
	FieldSubcategory   = "subcategory"
	FieldKeyword       = "keyword"
	FieldLine          = "line"
	FieldCount         = "count"
	FieldRunID         = "run_id"
	FieldSheet         = "sheet"
	FieldOperation     = "operation"
	FieldDuration      = "duration_ms"
	FieldStatementType = "statement_type"
)
