// Package client contains the client-side building blocks that talk to the
// urgekeeper backend and open the local database.
//
// # Overview
//
// The package provides:
//  1. RecordAPI, the transport contract of the owner-scoped record store,
//     and GRPCClient, its gRPC implementation. GRPCClient injects the access
//     token via an interceptor and maps gRPC status codes to sentinel errors.
//  2. RecordStore, the domain layer on top of RecordAPI: it resolves the
//     account identity, derives record names from event ids, appends events
//     idempotently, updates them in place, fetches history since a cursor and
//     skips remote fields it cannot decode instead of failing the fetch.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations), wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Remote failures are *RemoteError values wrapping one of the sentinels
// ErrUnauthorized, ErrPermissionDenied, ErrRateLimited, ErrUnavailable,
// ErrNotFound, ErrAlreadyExists or ErrInvalidArgument; match them with
// errors.Is. IsRetryable tells transient failures apart for callers that
// layer a retry policy on top.
//
// # Concurrency
//
// GRPCClient and RecordStore are safe for concurrent use. All operations
// accept context.Context and honor cancellation.
package client
