package store

import "context"

// Keys of the documents kept in the store. Activities and goals are
// single flat lists shared across all users, so every read path has
// to filter by user id (done in the repos, never here).
const (
	KeyUsers      = "users"
	KeySession    = "session"
	KeyActivities = "activities"
	KeyGoals      = "goals"
	KeyTheme      = "theme"
)

// Store is a durable key to JSON document storage with whole-value
// read/write/remove semantics. A Set fully overwrites the previous
// value for that key, there is no partial merge.
//
// Failure policy: corrupted stored content must never propagate as an
// error - Get reports a miss and the caller keeps its default value.
// Set and Remove do not fail observably; when the underlying medium is
// unavailable the in-memory state remains the source of truth for the
// rest of the session.
type Store interface {
	// Get decodes the document stored under key into dst and reports
	// whether a usable value was found.
	Get(ctx context.Context, key string, dst any) bool
	Set(ctx context.Context, key string, value any)
	Remove(ctx context.Context, key string)
}
