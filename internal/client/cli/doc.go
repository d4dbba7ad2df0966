// Package cli provides the interactive urgekeeper command-line client.
//
// App wires configuration, the local SQLite journal, label overrides, the
// owner loop that serializes journal access, the push queue and the cloud
// sync coordinator, then runs a line-oriented REPL until the user quits.
//
// Sync is optional: without a reachable server or a valid access token the
// client keeps working locally. When the server is unreachable at startup
// the identity lookup is retried every OnlineCheckInterval.
//
// Entries are addressed either by their number in the last listing or by a
// prefix of their id. See runREPL for the command set.
package cli
