package catalog

import (
	"sort"
	"sync"

	"courseplan/internal/core/errors"
)

// Memory is the default map-backed course store. A mutex guards it because
// watch-mode reloads land on a separate goroutine from the UI.
type Memory struct {
	mu      sync.RWMutex
	courses map[string]Course
}

func NewMemory() *Memory {
	return &Memory{courses: make(map[string]Course)}
}

// Upsert sets the entry for the course's number, overwriting any prior
// record with the same key.
func (m *Memory) Upsert(c Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.courses[c.Number] = c
	return nil
}

// Find normalizes the lookup key and returns the matching course, or a
// NOT_FOUND error when the key is absent.
func (m *Memory) Find(number string) (Course, error) {
	key := Normalize(number)

	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.courses[key]
	if !ok {
		return Course{}, errors.AddContext(
			errors.New(errors.CodeNotFound, "course not found"), errors.CtxCourse, key)
	}
	return c, nil
}

// AllSorted returns every course ordered by ascending course number.
func (m *Memory) AllSorted() ([]Course, error) {
	m.mu.RLock()
	out := make([]Course, 0, len(m.courses))
	for _, c := range m.courses {
		out = append(out, c)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

// ReplaceAll swaps the whole catalog for the given batch in one step, so a
// reload never exposes a half-populated state.
func (m *Memory) ReplaceAll(batch []Course) error {
	next := make(map[string]Course, len(batch))
	for _, c := range batch {
		next[c.Number] = c
	}

	m.mu.Lock()
	m.courses = next
	m.mu.Unlock()
	return nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	m.courses = make(map[string]Course)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Count() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.courses), nil
}

func (m *Memory) Close() error { return nil }
