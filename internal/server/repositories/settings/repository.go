// Package settings stores one JSON document per owner and settings kind in
// S3-compatible object storage.
package settings

import "context"

// Repository reads and writes whole settings documents. Get returns
// common.ErrorNotFound when the owner never stored the kind.
type Repository interface {
	Put(ctx context.Context, owner, kind string, doc []byte) error
	Get(ctx context.Context, owner, kind string) ([]byte, error)
}
