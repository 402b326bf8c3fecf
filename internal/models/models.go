// Package models provides the data structures shared by the parser, the
// categorizer, the deduplicator, the pipeline and the store.
package models

// Identifiers assigned by the persistent store.
type (
	AccountID     uint
	CategoryID    uint
	TransactionID uint
)

// Fingerprint is the stable hash identifying a transaction across parses.
type Fingerprint string

// CategoryUncategorized is the label used when no keyword rule matches.
const CategoryUncategorized = "Uncategorized"

// File permissions
const (
	PermissionConfigFile = 0600
	PermissionDirectory  = 0750
	PermissionExportFile = 0644
)
