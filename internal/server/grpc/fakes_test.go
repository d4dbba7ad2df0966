package grpc

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/urgekeeper/internal/common"
	"github.com/dmitrijs2005/urgekeeper/internal/records"
)

type fakeRecords struct {
	mu   sync.Mutex
	rows map[string]*records.Record
	err  error
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{rows: map[string]*records.Record{}}
}

func (f *fakeRecords) Create(_ context.Context, owner string, rec *records.Record) (*records.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if existing, ok := f.rows[rec.Name]; ok {
		if existing.Owner != owner {
			return nil, common.ErrorPermissionDenied
		}
		return nil, common.ErrorAlreadyExists
	}
	cp := *rec
	cp.Owner = owner
	f.rows[rec.Name] = &cp
	return &cp, nil
}

func (f *fakeRecords) Get(_ context.Context, owner, name string) (*records.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[name]
	if !ok || r.Owner != owner {
		return nil, common.ErrorNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRecords) Update(_ context.Context, owner string, rec *records.Record) (*records.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[rec.Name]
	if !ok || r.Owner != owner {
		return nil, common.ErrorNotFound
	}
	r.Fields = rec.Fields
	cp := *r
	return &cp, nil
}

func (f *fakeRecords) Query(_ context.Context, owner string, q records.Query) ([]*records.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*records.Record
	for _, r := range f.rows {
		if r.Owner == owner && r.Type == q.Type {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecords) Delete(_ context.Context, owner string, names []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range names {
		if r, ok := f.rows[n]; !ok || r.Owner != owner {
			return common.ErrorNotFound
		}
	}
	for _, n := range names {
		delete(f.rows, n)
	}
	return nil
}

type fakeSettings struct {
	mu   sync.Mutex
	docs map[string]map[string]any
}

func (f *fakeSettings) Put(_ context.Context, owner string, kind records.Type, doc map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if kind != records.TypePreferences {
		return common.ErrorInvalidArgument
	}
	f.docs[owner] = doc
	return nil
}

func (f *fakeSettings) Get(_ context.Context, owner string, kind records.Type) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[owner]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return d, nil
}

type fakeLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (f *fakeLimiter) Allow(_ context.Context, key string) (bool, error) {
	f.keys = append(f.keys, key)
	return f.allowed, f.err
}
