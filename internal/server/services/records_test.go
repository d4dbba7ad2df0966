package services

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/urgekeeper/internal/common"
	"github.com/dmitrijs2005/urgekeeper/internal/dbx"
	"github.com/dmitrijs2005/urgekeeper/internal/records"
	recordsrepo "github.com/dmitrijs2005/urgekeeper/internal/server/repositories/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type memRecords struct {
	rows      map[string]*records.Record
	createErr error
	deleteErr error
	lastQuery records.Query
}

func newMemRecords() *memRecords {
	return &memRecords{rows: map[string]*records.Record{}}
}

func (m *memRecords) Create(_ context.Context, rec *records.Record) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.rows[rec.Name]; ok {
		return common.ErrorAlreadyExists
	}
	cp := *rec
	m.rows[rec.Name] = &cp
	return nil
}

func (m *memRecords) OwnerOf(_ context.Context, name string) (string, error) {
	r, ok := m.rows[name]
	if !ok {
		return "", common.ErrorNotFound
	}
	return r.Owner, nil
}

func (m *memRecords) Get(_ context.Context, owner, name string) (*records.Record, error) {
	r, ok := m.rows[name]
	if !ok || r.Owner != owner {
		return nil, common.ErrorNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memRecords) Update(_ context.Context, rec *records.Record) error {
	r, ok := m.rows[rec.Name]
	if !ok || r.Owner != rec.Owner {
		return common.ErrorNotFound
	}
	cp := *rec
	m.rows[rec.Name] = &cp
	return nil
}

func (m *memRecords) Query(_ context.Context, q records.Query) ([]*records.Record, error) {
	m.lastQuery = q
	var out []*records.Record
	for _, r := range m.rows {
		if r.Owner == q.Owner && r.Type == q.Type && (q.Since == nil || r.OccurredAt.After(*q.Since)) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *memRecords) Delete(_ context.Context, owner, name string) (bool, error) {
	if m.deleteErr != nil {
		return false, m.deleteErr
	}
	r, ok := m.rows[name]
	if !ok || r.Owner != owner {
		return false, nil
	}
	delete(m.rows, name)
	return true, nil
}

type fakeRepoManager struct {
	repo recordsrepo.Repository
}

func (f *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (f *fakeRepoManager) Records(dbx.DBTX) recordsrepo.Repository    { return f.repo }

// --- helpers ---

var fixedNow = time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)

func newRecordService(t *testing.T) (*RecordService, *memRecords, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := newMemRecords()
	s := NewRecordService(db, &fakeRepoManager{repo: repo})
	s.now = func() time.Time { return fixedNow }
	return s, repo, mock
}

func eventRecord(id string, at time.Time) *records.Record {
	return &records.Record{
		Name:       records.EventRecordName(id),
		Type:       records.TypeCravingEvent,
		Owner:      "spoofed",
		OccurredAt: at,
		Fields:     map[string]any{records.FieldEventID: id},
	}
}

// --- tests ---

func TestCreate_BindsOwnerAndTimestamps(t *testing.T) {
	s, repo, _ := newRecordService(t)

	got, err := s.Create(context.Background(), "alice", eventRecord("e1", fixedNow.Add(-time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Owner)
	assert.Equal(t, fixedNow, got.CreatedAt)
	assert.Equal(t, "alice", repo.rows["CravingEvent_e1"].Owner)
}

func TestCreate_Duplicate(t *testing.T) {
	s, _, _ := newRecordService(t)
	ctx := context.Background()

	_, err := s.Create(ctx, "alice", eventRecord("e1", fixedNow))
	require.NoError(t, err)

	_, err = s.Create(ctx, "alice", eventRecord("e1", fixedNow))
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	_, err = s.Create(ctx, "bob", eventRecord("e1", fixedNow))
	assert.ErrorIs(t, err, common.ErrorPermissionDenied)
}

func TestCreate_Validation(t *testing.T) {
	s, _, _ := newRecordService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		rec  *records.Record
	}{
		{"nil", nil},
		{"empty name", &records.Record{Type: records.TypeCravingEvent}},
		{"unknown type", &records.Record{Name: "x", Type: "Window"}},
		{"event without prefix", &records.Record{Name: "e1", Type: records.TypeCravingEvent}},
		{"event with bare prefix", &records.Record{Name: records.EventRecordPrefix, Type: records.TypeCravingEvent}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(ctx, "alice", tt.rec)
			assert.ErrorIs(t, err, common.ErrorInvalidArgument)
		})
	}
}

func TestCreate_RepoError(t *testing.T) {
	s, repo, _ := newRecordService(t)
	repo.createErr = errors.New("db down")

	_, err := s.Create(context.Background(), "alice", eventRecord("e1", fixedNow))
	assert.EqualError(t, err, "db down")
}

func TestGet_OwnerIsolation(t *testing.T) {
	s, _, _ := newRecordService(t)
	ctx := context.Background()
	_, err := s.Create(ctx, "alice", eventRecord("e1", fixedNow))
	require.NoError(t, err)

	got, err := s.Get(ctx, "alice", "CravingEvent_e1")
	require.NoError(t, err)
	assert.Equal(t, "e1", got.String(records.FieldEventID))

	_, err = s.Get(ctx, "bob", "CravingEvent_e1")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = s.Get(ctx, "alice", "")
	assert.ErrorIs(t, err, common.ErrorInvalidArgument)
}

func TestUpdate_KeepsOwnerAndIdentity(t *testing.T) {
	s, repo, mock := newRecordService(t)
	ctx := context.Background()
	occurred := fixedNow.Add(-2 * time.Hour)
	_, err := s.Create(ctx, "alice", eventRecord("e1", occurred))
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectCommit()

	s.now = func() time.Time { return fixedNow.Add(time.Minute) }
	req := &records.Record{
		Name:       "CravingEvent_e1",
		Owner:      "mallory",
		OccurredAt: fixedNow,
		Fields:     map[string]any{records.FieldTags: []any{"🎮"}},
	}
	got, err := s.Update(ctx, "alice", req)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Owner)
	assert.True(t, occurred.Equal(got.OccurredAt))
	assert.Equal(t, fixedNow.Add(time.Minute), got.ModifiedAt)
	assert.Equal(t, []any{"🎮"}, repo.rows["CravingEvent_e1"].Fields[records.FieldTags])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_NotFoundRollsBack(t *testing.T) {
	s, _, mock := newRecordService(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.Update(context.Background(), "alice", &records.Record{Name: "CravingEvent_zzz"})
	assert.ErrorIs(t, err, common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuery_ScopesAndClampsLimit(t *testing.T) {
	s, repo, _ := newRecordService(t)
	ctx := context.Background()
	for i, id := range []string{"a", "b", "c"} {
		_, err := s.Create(ctx, "alice", eventRecord(id, fixedNow.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}
	_, err := s.Create(ctx, "bob", eventRecord("d", fixedNow))
	require.NoError(t, err)

	since := fixedNow
	got, err := s.Query(ctx, "alice", records.Query{Type: records.TypeCravingEvent, Owner: "bob", Since: &since})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "CravingEvent_c", got[0].Name)
	assert.Equal(t, "alice", repo.lastQuery.Owner)
	assert.Equal(t, DefaultQueryLimit, repo.lastQuery.Limit)

	_, err = s.Query(ctx, "alice", records.Query{Type: records.TypeCravingEvent, Limit: 10_000})
	require.NoError(t, err)
	assert.Equal(t, MaxQueryLimit, repo.lastQuery.Limit)

	_, err = s.Query(ctx, "alice", records.Query{Type: "bogus"})
	assert.ErrorIs(t, err, common.ErrorInvalidArgument)
}

func TestDelete_AllOrNothing(t *testing.T) {
	s, repo, mock := newRecordService(t)
	ctx := context.Background()
	_, err := s.Create(ctx, "alice", eventRecord("a", fixedNow))
	require.NoError(t, err)
	_, err = s.Create(ctx, "bob", eventRecord("b", fixedNow))
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectRollback()
	err = s.Delete(ctx, "alice", []string{"CravingEvent_a", "CravingEvent_b"})
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Contains(t, repo.rows, "CravingEvent_b")

	mock.ExpectBegin()
	mock.ExpectCommit()
	require.NoError(t, s.Delete(ctx, "bob", []string{"CravingEvent_b"}))
	assert.NotContains(t, repo.rows, "CravingEvent_b")

	require.NoError(t, s.Delete(ctx, "bob", nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_BatchTooLarge(t *testing.T) {
	s, _, _ := newRecordService(t)

	names := make([]string, MaxDeleteBatch+1)
	err := s.Delete(context.Background(), "alice", names)
	assert.ErrorIs(t, err, common.ErrorInvalidArgument)
}
