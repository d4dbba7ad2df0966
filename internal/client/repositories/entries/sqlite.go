package entries

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/urgekeeper/internal/client/models"
	"github.com/dmitrijs2005/urgekeeper/internal/dbx"
	"github.com/google/uuid"
)

// SQLiteRepository implements Repository over a DBTX (*sql.DB or *sql.Tx).
// Times are stored as Unix nanoseconds so ordering and equality survive a
// round trip exactly.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

type storedTag struct {
	Emoji string `json:"emoji"`
	Label string `json:"label"`
}

func (r *SQLiteRepository) Upsert(ctx context.Context, e *models.Entry) error {
	tags := make([]storedTag, 0, len(e.Tags))
	for _, t := range e.Tags {
		tags = append(tags, storedTag{Emoji: t.Emoji, Label: t.Label})
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	var resolved sql.NullInt64
	if e.ResolvedAt != nil {
		resolved = sql.NullInt64{Int64: e.ResolvedAt.UnixNano(), Valid: true}
	}
	remote := sql.NullString{String: e.RemoteID, Valid: e.RemoteID != ""}

	query := `
		INSERT INTO entries (id, created_at, resolved_at, status, tags, remote_id)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			resolved_at = excluded.resolved_at,
			status = excluded.status,
			tags = excluded.tags,
			remote_id = excluded.remote_id
	`
	_, err = r.db.ExecContext(ctx, query,
		e.ID.String(), e.CreatedAt.UnixNano(), resolved, string(e.Status), string(tagsJSON), remote)
	if err != nil {
		return fmt.Errorf("failed to upsert entry: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]*models.Entry, error) {
	query := `SELECT id, created_at, resolved_at, status, tags, remote_id FROM entries ORDER BY created_at DESC, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []*models.Entry
	for rows.Next() {
		var (
			id       string
			created  int64
			resolved sql.NullInt64
			status   string
			tagsJSON string
			remote   sql.NullString
		)
		if err := rows.Scan(&id, &created, &resolved, &status, &tagsJSON, &remote); err != nil {
			return nil, err
		}

		e := &models.Entry{
			CreatedAt: time.Unix(0, created),
			Status:    models.Status(status),
			RemoteID:  remote.String,
		}
		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("entry %q: %w", id, err)
		}
		if resolved.Valid {
			at := time.Unix(0, resolved.Int64)
			e.ResolvedAt = &at
		}
		var tags []storedTag
		if err := json.Unmarshal([]byte(tagsJSON), &tags); err != nil {
			return nil, fmt.Errorf("entry %s tags: %w", id, err)
		}
		for _, t := range tags {
			e.Tags = append(e.Tags, models.Tag{Emoji: t.Emoji, Label: t.Label})
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteResolved(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE status <> ?`, string(models.StatusActive)); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}
