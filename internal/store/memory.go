package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryArchive is an Archive held in process memory.
type MemoryArchive struct {
	mu      sync.RWMutex
	entries []Entry
	now     func() time.Time
}

func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{now: time.Now}
}

func (m *MemoryArchive) Save(_ context.Context, entry Entry) (string, error) {
	if entry.Result == nil {
		return "", errors.New("cannot archive an entry without a result")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = m.now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.entries {
		if e.ID == entry.ID {
			m.entries[i] = entry
			return entry.ID, nil
		}
	}
	m.entries = append(m.entries, entry)
	return entry.ID, nil
}

func (m *MemoryArchive) Get(_ context.Context, id string) (Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, ErrNotFound
}

func (m *MemoryArchive) Latest(_ context.Context) (Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest Entry
	found := false
	for _, e := range m.entries {
		if !found || !e.CreatedAt.Before(latest.CreatedAt) {
			latest, found = e, true
		}
	}
	if !found {
		return Entry{}, ErrNotFound
	}
	return latest, nil
}

func (m *MemoryArchive) List(_ context.Context, limit int) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Entry, 0, len(m.entries))
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := m.entries[i]
		e.Result = nil
		out = append(out, e)
	}
	sortNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func sortNewestFirst(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
}
