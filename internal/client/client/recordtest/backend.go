// Package recordtest provides an in-memory, owner-scoped record store that
// behaves like the server: record names are unique across owners, queries
// and deletes only ever see the caller's records, and field values go
// through a JSON round trip as they would on the wire.
package recordtest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/urgekeeper/internal/client/client"
	"github.com/dmitrijs2005/urgekeeper/internal/records"
	"google.golang.org/grpc/codes"
)

type Backend struct {
	mu       sync.Mutex
	records  map[string]*records.Record
	settings map[string]map[string]any
	now      func() time.Time
}

func NewBackend() *Backend {
	return &Backend{
		records:  map[string]*records.Record{},
		settings: map[string]map[string]any{},
		now:      time.Now,
	}
}

// Client returns a view of the backend authenticated as owner. An empty
// owner behaves like a caller without a token.
func (b *Backend) Client(owner string) *Client {
	return &Client{b: b, owner: owner, failures: map[string][]error{}, calls: map[string]int{}}
}

// Put stores r as is, bypassing every check. Useful to seed odd records.
func (b *Backend) Put(r *records.Record) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records[r.Name] = r
}

// Record returns a copy of the stored record.
func (b *Backend) Record(name string) (*records.Record, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.records[name]
	if !ok {
		return nil, false
	}
	return cloneRecord(r), true
}

// Count returns how many records owner has.
func (b *Backend) Count(owner string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, r := range b.records {
		if r.Owner == owner {
			n++
		}
	}
	return n
}

type Client struct {
	b     *Backend
	owner string

	mu       sync.Mutex
	failures map[string][]error
	calls    map[string]int
}

var _ client.RecordAPI = (*Client)(nil)

// FailNext makes the next call of op return err.
func (c *Client) FailNext(op string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[op] = append(c.failures[op], err)
}

// Calls returns how many times op was invoked.
func (c *Client) Calls(op string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[op]
}

func (c *Client) enter(op string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[op]++
	if q := c.failures[op]; len(q) > 0 {
		c.failures[op] = q[1:]
		return q[0]
	}
	if c.owner == "" {
		return remoteErr(op, codes.Unauthenticated, client.ErrUnauthorized)
	}
	return nil
}

func remoteErr(op string, code codes.Code, err error) error {
	return &client.RemoteError{Op: op, Code: code, Err: err}
}

// Error builds the error GRPCClient would return for code.
func Error(op string, code codes.Code) error {
	switch code {
	case codes.Unauthenticated:
		return remoteErr(op, code, client.ErrUnauthorized)
	case codes.PermissionDenied:
		return remoteErr(op, code, client.ErrPermissionDenied)
	case codes.ResourceExhausted:
		return remoteErr(op, code, client.ErrRateLimited)
	case codes.Unavailable:
		return remoteErr(op, code, client.ErrUnavailable)
	case codes.NotFound:
		return remoteErr(op, code, client.ErrNotFound)
	case codes.AlreadyExists:
		return remoteErr(op, code, client.ErrAlreadyExists)
	}
	return remoteErr(op, code, client.ErrRemote)
}

func (c *Client) WhoAmI(ctx context.Context) (string, error) {
	if err := c.enter("WhoAmI"); err != nil {
		return "", err
	}
	return c.owner, nil
}

func (c *Client) CreateRecord(ctx context.Context, r *records.Record) (*records.Record, error) {
	if err := c.enter("CreateRecord"); err != nil {
		return nil, err
	}
	c.b.mu.Lock()
	defer c.b.mu.Unlock()

	if existing, ok := c.b.records[r.Name]; ok {
		if existing.Owner != c.owner {
			return nil, remoteErr("CreateRecord", codes.PermissionDenied, client.ErrPermissionDenied)
		}
		return nil, remoteErr("CreateRecord", codes.AlreadyExists, client.ErrAlreadyExists)
	}

	now := c.b.now().UTC()
	stored := cloneRecord(r)
	stored.Owner = c.owner
	stored.CreatedAt = now
	stored.ModifiedAt = now
	c.b.records[r.Name] = stored
	return cloneRecord(stored), nil
}

func (c *Client) GetRecord(ctx context.Context, name string) (*records.Record, error) {
	if err := c.enter("GetRecord"); err != nil {
		return nil, err
	}
	c.b.mu.Lock()
	defer c.b.mu.Unlock()

	r, ok := c.b.records[name]
	if !ok || r.Owner != c.owner {
		return nil, remoteErr("GetRecord", codes.NotFound, client.ErrNotFound)
	}
	return cloneRecord(r), nil
}

func (c *Client) UpdateRecord(ctx context.Context, r *records.Record) (*records.Record, error) {
	if err := c.enter("UpdateRecord"); err != nil {
		return nil, err
	}
	c.b.mu.Lock()
	defer c.b.mu.Unlock()

	existing, ok := c.b.records[r.Name]
	if !ok || existing.Owner != c.owner {
		return nil, remoteErr("UpdateRecord", codes.NotFound, client.ErrNotFound)
	}
	updated := cloneRecord(existing)
	updated.Fields = cloneRecord(r).Fields
	updated.ModifiedAt = c.b.now().UTC()
	c.b.records[r.Name] = updated
	return cloneRecord(updated), nil
}

func (c *Client) QueryRecords(ctx context.Context, q records.Query) ([]*records.Record, []error, error) {
	if err := c.enter("QueryRecords"); err != nil {
		return nil, nil, err
	}
	c.b.mu.Lock()
	defer c.b.mu.Unlock()

	var out []*records.Record
	for _, r := range c.b.records {
		if r.Owner != c.owner || r.Type != q.Type {
			continue
		}
		if q.Since != nil && !r.OccurredAt.After(*q.Since) {
			continue
		}
		out = append(out, cloneRecord(r))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].Name < out[j].Name
		}
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil, nil
}

func (c *Client) DeleteRecords(ctx context.Context, names []string) error {
	if err := c.enter("DeleteRecords"); err != nil {
		return err
	}
	c.b.mu.Lock()
	defer c.b.mu.Unlock()

	for _, n := range names {
		r, ok := c.b.records[n]
		if !ok || r.Owner != c.owner {
			return remoteErr("DeleteRecords", codes.NotFound, client.ErrNotFound)
		}
	}
	for _, n := range names {
		delete(c.b.records, n)
	}
	return nil
}

func (c *Client) PutSettings(ctx context.Context, kind records.Type, doc map[string]any) error {
	if err := c.enter("PutSettings"); err != nil {
		return err
	}
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	c.b.settings[settingsKey(c.owner, kind)] = roundTrip(doc)
	return nil
}

func (c *Client) GetSettings(ctx context.Context, kind records.Type) (map[string]any, error) {
	if err := c.enter("GetSettings"); err != nil {
		return nil, err
	}
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	doc, ok := c.b.settings[settingsKey(c.owner, kind)]
	if !ok {
		return nil, remoteErr("GetSettings", codes.NotFound, client.ErrNotFound)
	}
	return roundTrip(doc), nil
}

func settingsKey(owner string, kind records.Type) string {
	return fmt.Sprintf("%s/%s", owner, kind)
}

func cloneRecord(r *records.Record) *records.Record {
	cp := *r
	cp.Fields = roundTrip(r.Fields)
	return &cp
}

// roundTrip copies fields the way the wire would: through portable JSON.
func roundTrip(fields map[string]any) map[string]any {
	data, err := records.MarshalFields(fields)
	if err != nil {
		panic(fmt.Sprintf("recordtest: unportable fields: %v", err))
	}
	out, err := records.UnmarshalFields(data)
	if err != nil {
		panic(fmt.Sprintf("recordtest: %v", err))
	}
	return out
}
