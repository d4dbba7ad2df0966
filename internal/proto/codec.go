package proto

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/urgekeeper/internal/records"
	"google.golang.org/protobuf/types/known/structpb"
)

// Message keys.
const (
	keyRecordName  = "recordName"
	keyRecordNames = "recordNames"
	keyRecordType  = "recordType"
	keyOwner       = "owner"
	keyOccurredAt  = "occurredAt"
	keyCreatedAt   = "createdAt"
	keyModifiedAt  = "modifiedAt"
	keyFields      = "fields"
	keyRecords     = "records"
	keySince       = "since"
	keyLimit       = "limit"
	keyUserID      = "userId"
	keyKind        = "kind"
	keyDocument    = "document"
)

var ErrMalformedMessage = errors.New("malformed message")

func recordToMap(r *records.Record) map[string]any {
	m := map[string]any{
		keyRecordName: r.Name,
		keyRecordType: string(r.Type),
		keyFields:     records.ToPortable(fieldsOrEmpty(r.Fields)),
	}
	if r.Owner != "" {
		m[keyOwner] = r.Owner
	}
	putTime(m, keyOccurredAt, r.OccurredAt)
	putTime(m, keyCreatedAt, r.CreatedAt)
	putTime(m, keyModifiedAt, r.ModifiedAt)
	return m
}

func recordFromMap(m map[string]any) (*records.Record, error) {
	name, _ := m[keyRecordName].(string)
	if name == "" {
		return nil, fmt.Errorf("%w: record without name", ErrMalformedMessage)
	}
	typ, _ := m[keyRecordType].(string)
	owner, _ := m[keyOwner].(string)

	r := &records.Record{Name: name, Type: records.Type(typ), Owner: owner, Fields: map[string]any{}}
	if fields, ok := records.FromPortable(m[keyFields]).(map[string]any); ok {
		r.Fields = fields
	}
	var err error
	if r.OccurredAt, err = getTime(m, keyOccurredAt); err != nil {
		return nil, err
	}
	if r.CreatedAt, err = getTime(m, keyCreatedAt); err != nil {
		return nil, err
	}
	if r.ModifiedAt, err = getTime(m, keyModifiedAt); err != nil {
		return nil, err
	}
	return r, nil
}

// RecordToStruct encodes a record. Times are RFC 3339 strings, binary field
// values use the records portable envelope.
func RecordToStruct(r *records.Record) (*structpb.Struct, error) {
	return structpb.NewStruct(recordToMap(r))
}

// RecordFromStruct decodes RecordToStruct output. Numbers come back as float64.
func RecordFromStruct(s *structpb.Struct) (*records.Record, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil record", ErrMalformedMessage)
	}
	return recordFromMap(s.AsMap())
}

// RecordsToStruct wraps a result list as {"records": [...]}.
func RecordsToStruct(rs []*records.Record) (*structpb.Struct, error) {
	list := make([]any, 0, len(rs))
	for _, r := range rs {
		list = append(list, recordToMap(r))
	}
	return structpb.NewStruct(map[string]any{keyRecords: list})
}

// RecordsFromStruct decodes a result list. Entries that cannot be decoded
// are returned as errs so the caller can log them and keep the rest.
func RecordsFromStruct(s *structpb.Struct) (rs []*records.Record, errs []error) {
	items, _ := s.AsMap()[keyRecords].([]any)
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: record is %T", ErrMalformedMessage, it))
			continue
		}
		r, err := recordFromMap(m)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rs = append(rs, r)
	}
	return rs, errs
}

// QueryToStruct encodes a query. Owner is never sent; the server scopes by
// the authenticated caller.
func QueryToStruct(q records.Query) (*structpb.Struct, error) {
	m := map[string]any{
		keyRecordType: string(q.Type),
		keyLimit:      q.Limit,
	}
	if q.Since != nil {
		m[keySince] = records.FormatTime(*q.Since)
	}
	return structpb.NewStruct(m)
}

func QueryFromStruct(s *structpb.Struct) (records.Query, error) {
	m := s.AsMap()
	typ, _ := m[keyRecordType].(string)
	q := records.Query{Type: records.Type(typ)}
	if n, ok := m[keyLimit].(float64); ok {
		q.Limit = int(n)
	}
	since, err := getTime(m, keySince)
	if err != nil {
		return records.Query{}, err
	}
	if !since.IsZero() {
		q.Since = &since
	}
	return q, nil
}

func NameToStruct(name string) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{keyRecordName: name})
}

func NameFromStruct(s *structpb.Struct) string {
	name, _ := s.AsMap()[keyRecordName].(string)
	return name
}

func NamesToStruct(names []string) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{keyRecordNames: records.ToPortable(names)})
}

func NamesFromStruct(s *structpb.Struct) []string {
	items, _ := s.AsMap()[keyRecordNames].([]any)
	names := make([]string, 0, len(items))
	for _, it := range items {
		if n, ok := it.(string); ok && n != "" {
			names = append(names, n)
		}
	}
	return names
}

func IdentityToStruct(userID string) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{keyUserID: userID})
}

func IdentityFromStruct(s *structpb.Struct) string {
	id, _ := s.AsMap()[keyUserID].(string)
	return id
}

// SettingsToStruct encodes a single-record-per-owner settings document.
func SettingsToStruct(kind records.Type, doc map[string]any) (*structpb.Struct, error) {
	m := map[string]any{keyKind: string(kind)}
	if doc != nil {
		m[keyDocument] = records.ToPortable(doc)
	}
	return structpb.NewStruct(m)
}

func SettingsFromStruct(s *structpb.Struct) (records.Type, map[string]any) {
	m := s.AsMap()
	kind, _ := m[keyKind].(string)
	doc, _ := records.FromPortable(m[keyDocument]).(map[string]any)
	return records.Type(kind), doc
}

func fieldsOrEmpty(f map[string]any) map[string]any {
	if f == nil {
		return map[string]any{}
	}
	return f
}

func putTime(m map[string]any, key string, t time.Time) {
	if !t.IsZero() {
		m[key] = records.FormatTime(t)
	}
}

func getTime(m map[string]any, key string) (time.Time, error) {
	s, _ := m[key].(string)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %v", ErrMalformedMessage, key, err)
	}
	return t, nil
}
