package history

import "context"

// Repository port (interface for history persistence). Save must also
// enforce the MaxEntries cap by evicting the oldest rows of the entry's
// session. Recent returns entries newest-first.
type Repository interface {
	Save(ctx context.Context, e *Entry) error
	Recent(ctx context.Context, sessionID string, limit int) ([]*Entry, error)
	DeleteEntry(ctx context.Context, sessionID string, id EntryID) error
	ClearSession(ctx context.Context, sessionID string) error
	Ping(ctx context.Context) error
	Close() error
}
