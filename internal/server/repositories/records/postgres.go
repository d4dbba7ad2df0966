// Package records provides the PostgreSQL-backed repository for owner-scoped
// public records.
package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/urgekeeper/internal/common"
	"github.com/dmitrijs2005/urgekeeper/internal/dbx"
	"github.com/dmitrijs2005/urgekeeper/internal/logging"
	"github.com/dmitrijs2005/urgekeeper/internal/records"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the SQLSTATE for duplicate primary keys.
const uniqueViolation = "23505"

// errMalformedFields marks a row whose fields column does not decode.
var errMalformedFields = errors.New("malformed record fields")

const selectColumns = `record_name, record_type, owner_id, occurred_at, fields, created_at, modified_at`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db     dbx.DBTX
	logger logging.Logger
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX, logger logging.Logger) *PostgresRepository {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &PostgresRepository{db: db, logger: logger}
}

// Create inserts a new record. A duplicate name yields common.ErrorAlreadyExists
// whoever owns the existing row.
func (r *PostgresRepository) Create(ctx context.Context, rec *records.Record) error {
	fields, err := records.MarshalFields(rec.Fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}

	query := `
		INSERT INTO records (record_name, record_type, owner_id, occurred_at, fields, created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.db.ExecContext(ctx, query,
		rec.Name, string(rec.Type), rec.Owner, nullTime(rec.OccurredAt), string(fields), rec.CreatedAt, rec.ModifiedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// OwnerOf returns the owner of name regardless of the caller.
func (r *PostgresRepository) OwnerOf(ctx context.Context, name string) (string, error) {
	var owner string
	err := r.db.QueryRowContext(ctx, `SELECT owner_id FROM records WHERE record_name = $1`, name).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", common.ErrorNotFound
	}
	if err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}
	return owner, nil
}

func (r *PostgresRepository) Get(ctx context.Context, owner, name string) (*records.Record, error) {
	query := `SELECT ` + selectColumns + ` FROM records WHERE record_name = $1 AND owner_id = $2`

	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, name, owner))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Update replaces fields and modified_at. Name, type, owner and occurrence
// time are immutable.
func (r *PostgresRepository) Update(ctx context.Context, rec *records.Record) error {
	fields, err := records.MarshalFields(rec.Fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}

	query := `UPDATE records SET fields = $1, modified_at = $2 WHERE record_name = $3 AND owner_id = $4`
	err = dbx.ExecOne(ctx, r.db, query, string(fields), rec.ModifiedAt, rec.Name, rec.Owner)
	if errors.Is(err, dbx.ErrNoRowsAffected) {
		return common.ErrorNotFound
	}
	return err
}

// Query returns q.Owner's records of q.Type, newest occurrence first. Rows
// whose fields do not decode are logged and left out.
func (r *PostgresRepository) Query(ctx context.Context, q records.Query) ([]*records.Record, error) {
	query := `SELECT ` + selectColumns + ` FROM records WHERE owner_id = $1 AND record_type = $2`
	args := []any{q.Owner, string(q.Type)}
	if q.Since != nil {
		args = append(args, *q.Since)
		query += fmt.Sprintf(` AND occurred_at > $%d`, len(args))
	}
	args = append(args, q.Limit)
	query += fmt.Sprintf(` ORDER BY occurred_at DESC NULLS LAST, record_name LIMIT $%d`, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select records: %w", err)
	}
	defer rows.Close()

	var result []*records.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if errors.Is(err, errMalformedFields) {
			r.logger.Warn(ctx, "skipping malformed record", "owner", q.Owner, "error", err)
			continue
		}
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes name if owner owns it and reports whether a row went away.
func (r *PostgresRepository) Delete(ctx context.Context, owner, name string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE record_name = $1 AND owner_id = $2`, name, owner)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*records.Record, error) {
	var (
		rec      records.Record
		typ      string
		occurred sql.NullTime
		fields   []byte
	)
	if err := row.Scan(&rec.Name, &typ, &rec.Owner, &occurred, &fields, &rec.CreatedAt, &rec.ModifiedAt); err != nil {
		return nil, err
	}
	rec.Type = records.Type(typ)
	if occurred.Valid {
		rec.OccurredAt = occurred.Time
	}
	decoded, err := records.UnmarshalFields(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errMalformedFields, rec.Name, err)
	}
	rec.Fields = decoded
	return &rec, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
