package scripting

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"sync"
	"time"
)

// ScriptRecord is the last successfully executed source for a script name.
type ScriptRecord struct {
	Name     string
	Source   string
	Hash     string
	LoadedAt time.Time
}

// Tracker remembers the loaded source of each script name so reloads of
// identical content can be skipped.
type Tracker struct {
	mu      sync.RWMutex
	records map[string]ScriptRecord
	now     func() time.Time
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		records: make(map[string]ScriptRecord),
		now:     time.Now,
	}
}

// Hash returns the hex SHA-256 of a script source.
func Hash(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// Unchanged reports whether source is exactly what is loaded under name.
// A name that was never loaded is always changed.
func (t *Tracker) Unchanged(name, source string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.records[name]
	return ok && rec.Source == source
}

// Record replaces the record for name as a whole.
func (t *Tracker) Record(name, source string) ScriptRecord {
	rec := ScriptRecord{
		Name:     name,
		Source:   source,
		Hash:     Hash(source),
		LoadedAt: t.now(),
	}
	t.mu.Lock()
	t.records[name] = rec
	t.mu.Unlock()
	return rec
}

// Get returns the record for name.
func (t *Tracker) Get(name string) (ScriptRecord, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.records[name]
	return rec, ok
}

// Names returns the loaded script names in sorted order.
func (t *Tracker) Names() []string {
	t.mu.RLock()
	names := make([]string, 0, len(t.records))
	for name := range t.records {
		names = append(names, name)
	}
	t.mu.RUnlock()
	sort.Strings(names)
	return names
}
