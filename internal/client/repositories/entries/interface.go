// Package entries persists journal entries in the local SQLite database.
// The in-memory journal is authoritative; this store only makes it durable.
package entries

import (
	"context"

	"github.com/dmitrijs2005/urgekeeper/internal/client/models"
	"github.com/google/uuid"
)

type Repository interface {
	// Upsert inserts e or replaces the stored row with the same id.
	Upsert(ctx context.Context, e *models.Entry) error

	// GetAll returns every entry, newest first.
	GetAll(ctx context.Context) ([]*models.Entry, error)

	// DeleteByID removes one entry; a missing id is not an error.
	DeleteByID(ctx context.Context, id uuid.UUID) error

	// DeleteResolved removes every non-active entry.
	DeleteResolved(ctx context.Context) error
}
