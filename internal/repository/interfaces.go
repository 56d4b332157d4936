package repository

import (
	"context"

	"github.com/alexanderramin/planbook/internal/domain"
	"github.com/alexanderramin/planbook/internal/record"
)

// ErrNotFound is returned, wrapped, when no plan matches a lookup.
var ErrNotFound = domain.ErrNotFound

// PlanRecordRepo stores and loads plan records.
//
// The definition manager reads through the repo it is given but writes
// through SQLitePlanRecordRepo values bound to its unit of work's
// transactions, so an injected implementation must read the same database.
type PlanRecordRepo interface {
	// Save inserts or replaces the plan and all of its activities.
	Save(ctx context.Context, rec *record.PlanRecord) error
	GetByID(ctx context.Context, id string) (*record.PlanRecord, error)
	GetByAlias(ctx context.Context, alias string) (*record.PlanRecord, error)
	List(ctx context.Context) ([]*record.PlanRecord, error)
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}
