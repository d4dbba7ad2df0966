package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/urgekeeper/internal/logging"
	"github.com/dmitrijs2005/urgekeeper/internal/records"
)

// AccountStatus is the outcome of Configure.
type AccountStatus int

const (
	// AccountUnauthenticated means there is no usable account; the client
	// keeps working locally.
	AccountUnauthenticated AccountStatus = iota
	AccountAvailable
)

func (s AccountStatus) String() string {
	if s == AccountAvailable {
		return "available"
	}
	return "unauthenticated"
}

// MaxFetchLimit is the largest page the server returns for one query.
const MaxFetchLimit = 500

// Event is the remote form of a resolved entry. Tags are emojis only.
type Event struct {
	ID         string
	OccurredAt time.Time
	UpdatedAt  time.Time
	Tags       []string
	Note       string
	Intensity  *int
	DeviceID   string
	Owner      string
}

// RecordStore performs owner-scoped event operations on top of a RecordAPI.
type RecordStore struct {
	api    RecordAPI
	logger logging.Logger

	mu       sync.RWMutex
	identity string
}

func NewRecordStore(api RecordAPI, logger logging.Logger) *RecordStore {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &RecordStore{api: api, logger: logger}
}

// Configure resolves and caches the account identity. A missing account is
// reported as AccountUnauthenticated with a nil error; any other failure is
// returned.
func (s *RecordStore) Configure(ctx context.Context) (AccountStatus, error) {
	if s.api == nil {
		return AccountUnauthenticated, nil
	}

	id, err := s.api.WhoAmI(ctx)
	if errors.Is(err, ErrUnauthorized) {
		s.logger.Info(ctx, "no signed-in account, running local only")
		return AccountUnauthenticated, nil
	}
	if err != nil {
		return AccountUnauthenticated, fmt.Errorf("configure remote store: %w", err)
	}
	if id == "" {
		return AccountUnauthenticated, nil
	}

	s.mu.Lock()
	s.identity = id
	s.mu.Unlock()
	return AccountAvailable, nil
}

// Identity returns the cached account identity.
func (s *RecordStore) Identity() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity, s.identity != ""
}

func (s *RecordStore) owner() (string, error) {
	id, ok := s.Identity()
	if !ok {
		return "", &RemoteError{Op: "owner", Err: ErrUnauthorized, Msg: "store not configured"}
	}
	return id, nil
}

// AppendEvent creates the event record. An existing record with the same
// name counts as success.
func (s *RecordStore) AppendEvent(ctx context.Context, ev Event) error {
	owner, err := s.owner()
	if err != nil {
		return err
	}
	if ev.ID == "" {
		return fmt.Errorf("append event: %w", ErrInvalidArgument)
	}

	rec := &records.Record{
		Name:       records.EventRecordName(ev.ID),
		Type:       records.TypeCravingEvent,
		Owner:      owner,
		OccurredAt: ev.OccurredAt.UTC(),
		Fields:     eventFields(ev),
	}
	rec.Fields[records.FieldEventID] = ev.ID
	if ev.DeviceID != "" {
		rec.Fields[records.FieldDeviceID] = ev.DeviceID
	}

	_, err = s.api.CreateRecord(ctx, rec)
	if errors.Is(err, ErrAlreadyExists) {
		s.logger.Debug(ctx, "event already present remotely", "event", ev.ID)
		return nil
	}
	return err
}

// UpdateEvent rewrites the mutable fields of an existing event record: tags,
// note, intensity and updatedAt. A missing record is ErrNotFound.
func (s *RecordStore) UpdateEvent(ctx context.Context, ev Event) error {
	if _, err := s.owner(); err != nil {
		return err
	}

	rec, err := s.api.GetRecord(ctx, records.EventRecordName(ev.ID))
	if err != nil {
		return err
	}

	if rec.Fields == nil {
		rec.Fields = map[string]any{}
	}
	for _, k := range []string{records.FieldNote, records.FieldIntensity} {
		delete(rec.Fields, k)
	}
	for k, v := range eventFields(ev) {
		rec.Fields[k] = v
	}

	_, err = s.api.UpdateRecord(ctx, rec)
	return err
}

func eventFields(ev Event) map[string]any {
	updated := ev.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	f := map[string]any{
		records.FieldTags:      records.SanitizeTags(ev.Tags),
		records.FieldUpdatedAt: records.FormatTime(updated),
	}
	if ev.Note != "" {
		f[records.FieldNote] = ev.Note
	}
	if ev.Intensity != nil {
		f[records.FieldIntensity] = *ev.Intensity
	}
	return f
}

// FetchHistory returns the caller's events that occurred after since (all
// when since is nil), newest first, at most limit of them. Records without an
// event id or occurrence time are logged and skipped.
func (s *RecordStore) FetchHistory(ctx context.Context, since *time.Time, limit int) ([]Event, error) {
	rs, err := s.query(ctx, since, limit)
	if err != nil {
		return nil, err
	}

	out := make([]Event, 0, len(rs))
	for _, r := range rs {
		ev, ok := decodeEvent(r)
		if !ok {
			s.logger.Warn(ctx, "skipping malformed event record", "record", r.Name)
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

func (s *RecordStore) query(ctx context.Context, since *time.Time, limit int) ([]*records.Record, error) {
	owner, err := s.owner()
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > MaxFetchLimit {
		limit = MaxFetchLimit
	}

	rs, errs, err := s.api.QueryRecords(ctx, records.Query{
		Type:  records.TypeCravingEvent,
		Owner: owner,
		Since: since,
		Limit: limit,
	})
	if err != nil {
		return nil, err
	}
	for _, e := range errs {
		s.logger.Warn(ctx, "skipping undecodable record", "error", e)
	}
	return rs, nil
}

func decodeEvent(r *records.Record) (Event, bool) {
	id := r.String(records.FieldEventID)
	if id == "" {
		id, _ = records.EventIDFromName(r.Name)
	}
	if id == "" || r.OccurredAt.IsZero() {
		return Event{}, false
	}

	ev := Event{
		ID:         id,
		OccurredAt: r.OccurredAt,
		Tags:       records.DecodeTags(r.Fields[records.FieldTags]),
		Note:       r.String(records.FieldNote),
		DeviceID:   r.String(records.FieldDeviceID),
		Owner:      r.Owner,
	}
	if t, ok := r.Time(records.FieldUpdatedAt); ok {
		ev.UpdatedAt = t
	}
	if n, ok := r.Int(records.FieldIntensity); ok {
		ev.Intensity = &n
	}
	return ev, true
}

// DeleteEvents removes the events with ids in one all-or-nothing batch.
func (s *RecordStore) DeleteEvents(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := s.owner(); err != nil {
		return err
	}

	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, records.EventRecordName(id))
	}
	return s.api.DeleteRecords(ctx, names)
}

// ClearHistory deletes every event record of the caller, one page at a time,
// and returns how many were removed. Other owners are never touched because
// the server scopes both query and delete to the caller.
func (s *RecordStore) ClearHistory(ctx context.Context) (int, error) {
	total := 0
	for {
		rs, err := s.query(ctx, nil, MaxFetchLimit)
		if err != nil {
			return total, err
		}
		if len(rs) == 0 {
			return total, nil
		}

		names := make([]string, 0, len(rs))
		for _, r := range rs {
			names = append(names, r.Name)
		}
		if err := s.api.DeleteRecords(ctx, names); err != nil {
			return total, err
		}
		total += len(names)
	}
}
