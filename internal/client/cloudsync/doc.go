// Package cloudsync keeps the local journal and the remote record store in
// step.
//
// Outbound, every resolution and every tag edit of a resolved entry becomes a
// job on a per-entry FIFO queue (package syncqueue). The job reads the latest
// copy of the entry, appends it as an event when it was never linked and
// updates the event otherwise. A successful append links the entry and
// triggers one poll.
//
// Inbound, a poll fetches events that occurred after the persisted cursor,
// merges the unknown ones into the journal as resisted entries and advances
// the cursor to the newest fetched occurrence time. Polls run on a fixed
// interval and on demand; at most one poll is in flight at a time.
//
// All journal access goes through the owner loop (package owner); network
// calls run on queue workers and poll goroutines.
package cloudsync
