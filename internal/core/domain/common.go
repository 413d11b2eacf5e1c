package domain

import "time"

// AuditFields holds standard audit timestamps for mutable domain entities.
// Ledger entries are append-only and carry only CreatedAt themselves.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}
