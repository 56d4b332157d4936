package domain

import "time"

// DefinitionCommon holds the fields every definition kind carries besides
// its identity. Records embed the same struct.
type DefinitionCommon struct {
	Description      string
	LastModifiedBy   string
	LastModifiedDate *time.Time
	Classifications  []string
}
