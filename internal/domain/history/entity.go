package history

import (
	"time"

	"github.com/kmclabs/medassist/internal/domain/analysis"
)

// MaxEntries caps the retained history per session. When a new entry pushes
// the count past the cap the oldest entry is evicted (FIFO by age, not LRU).
const MaxEntries = 10

// EntryID identifier type
type EntryID string

// Entry is an immutable snapshot pairing one submitted input with its
// resulting assessment. Entries are never mutated after creation.
type Entry struct {
	ID        EntryID          `json:"id"`
	SessionID string           `json:"session_id"`
	CreatedAt time.Time        `json:"timestamp"`
	Input     string           `json:"input"`
	Result    *analysis.Result `json:"result"`
}
