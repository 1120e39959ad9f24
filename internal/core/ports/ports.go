package ports

import (
	"time"

	"courseplan/internal/catalog"
)

// CourseStore abstracts the catalog backend. The in-memory map and the
// sqlite store both satisfy it; the app only ever sees this interface.
type CourseStore interface {
	Upsert(c catalog.Course) error
	Find(number string) (catalog.Course, error)
	AllSorted() ([]catalog.Course, error)
	ReplaceAll(batch []catalog.Course) error
	Clear() error
	Count() (int, error)
	Close() error
}

// LoadHistory abstracts load-audit persistence. Only the sqlite backend
// implements it; callers probe with a type assertion.
type LoadHistory interface {
	RecordLoad(result catalog.LoadResult) error
	RecentLoads(limit int) ([]LoadEntry, error)
}

// LoadEntry is one persisted load-audit row.
type LoadEntry struct {
	LoadID    string
	Timestamp time.Time
	Records   int
	Skipped   int
	Source    string
}
