package records

import (
	"context"

	"github.com/dmitrijs2005/urgekeeper/internal/records"
)

// Repository persists owner-scoped records. Every read and write is filtered
// by owner; a record owned by someone else behaves as if it did not exist.
type Repository interface {
	Create(ctx context.Context, r *records.Record) error
	OwnerOf(ctx context.Context, name string) (string, error)
	Get(ctx context.Context, owner, name string) (*records.Record, error)
	Update(ctx context.Context, r *records.Record) error
	Query(ctx context.Context, q records.Query) ([]*records.Record, error)
	Delete(ctx context.Context, owner, name string) (bool, error)
}
