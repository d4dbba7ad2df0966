// Package services contains server-side business logic. RecordService owns
// the owner-scoped record rules; SettingsService stores the single
// per-owner settings documents.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/urgekeeper/internal/common"
	"github.com/dmitrijs2005/urgekeeper/internal/dbx"
	"github.com/dmitrijs2005/urgekeeper/internal/records"
	"github.com/dmitrijs2005/urgekeeper/internal/server/repositories/repomanager"
)

const (
	DefaultQueryLimit = 100
	MaxQueryLimit     = 500
	MaxDeleteBatch    = 500
)

// RecordService enforces creator-only access: every record is bound to the
// caller's identity on create and every read or write is filtered by it.
type RecordService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewRecordService(db *sql.DB, m repomanager.RepositoryManager) *RecordService {
	return &RecordService{db: db, repomanager: m, now: time.Now}
}

// Create stores rec for owner. A name taken by the same owner yields
// common.ErrorAlreadyExists; a name taken by someone else yields
// common.ErrorPermissionDenied so foreign records are never overwritten.
func (s *RecordService) Create(ctx context.Context, owner string, rec *records.Record) (*records.Record, error) {
	if err := validateRecord(rec); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	stored := &records.Record{
		Name:       rec.Name,
		Type:       rec.Type,
		Owner:      owner,
		OccurredAt: rec.OccurredAt,
		Fields:     rec.Fields,
		CreatedAt:  now,
		ModifiedAt: now,
	}

	repo := s.repomanager.Records(s.db)
	err := repo.Create(ctx, stored)
	if errors.Is(err, common.ErrorAlreadyExists) {
		existing, ownerErr := repo.OwnerOf(ctx, rec.Name)
		if ownerErr == nil && existing != owner {
			return nil, common.ErrorPermissionDenied
		}
		return nil, common.ErrorAlreadyExists
	}
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// Get returns owner's record. Records of other owners are reported as absent.
func (s *RecordService) Get(ctx context.Context, owner, name string) (*records.Record, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty record name", common.ErrorInvalidArgument)
	}
	return s.repomanager.Records(s.db).Get(ctx, owner, name)
}

// Update replaces the fields of an existing record. Owner, type, name and
// occurrence time are taken from the stored row, never from the request.
func (s *RecordService) Update(ctx context.Context, owner string, rec *records.Record) (*records.Record, error) {
	if rec == nil || rec.Name == "" {
		return nil, fmt.Errorf("%w: empty record name", common.ErrorInvalidArgument)
	}

	var updated *records.Record
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Records(tx)
		existing, err := repo.Get(ctx, owner, rec.Name)
		if err != nil {
			return err
		}
		existing.Fields = rec.Fields
		existing.ModifiedAt = s.now().UTC()
		if err := repo.Update(ctx, existing); err != nil {
			return err
		}
		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Query returns owner's records of q.Type. The owner of q is always replaced
// with the caller and the limit is clamped to MaxQueryLimit.
func (s *RecordService) Query(ctx context.Context, owner string, q records.Query) ([]*records.Record, error) {
	if !q.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown record type %q", common.ErrorInvalidArgument, q.Type)
	}
	q.Owner = owner
	switch {
	case q.Limit <= 0:
		q.Limit = DefaultQueryLimit
	case q.Limit > MaxQueryLimit:
		q.Limit = MaxQueryLimit
	}
	return s.repomanager.Records(s.db).Query(ctx, q)
}

// Delete removes every named record in one transaction. A name that does not
// exist for owner aborts the whole batch with common.ErrorNotFound.
func (s *RecordService) Delete(ctx context.Context, owner string, names []string) error {
	if len(names) == 0 {
		return nil
	}
	if len(names) > MaxDeleteBatch {
		return fmt.Errorf("%w: batch of %d exceeds %d", common.ErrorInvalidArgument, len(names), MaxDeleteBatch)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Records(tx)
		for _, name := range names {
			ok, err := repo.Delete(ctx, owner, name)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s", common.ErrorNotFound, name)
			}
		}
		return nil
	})
}

func validateRecord(rec *records.Record) error {
	if rec == nil {
		return fmt.Errorf("%w: empty record", common.ErrorInvalidArgument)
	}
	if strings.TrimSpace(rec.Name) == "" {
		return fmt.Errorf("%w: empty record name", common.ErrorInvalidArgument)
	}
	if !rec.Type.Valid() {
		return fmt.Errorf("%w: unknown record type %q", common.ErrorInvalidArgument, rec.Type)
	}
	if rec.Type == records.TypeCravingEvent {
		if _, ok := records.EventIDFromName(rec.Name); !ok {
			return fmt.Errorf("%w: event record name must start with %s", common.ErrorInvalidArgument, records.EventRecordPrefix)
		}
	}
	return nil
}
