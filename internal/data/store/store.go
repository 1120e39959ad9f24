// Package store is the sqlite-backed course catalog. Every statement is
// parameterized; course data never reaches the SQL text itself.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"courseplan/internal/catalog"
	"courseplan/internal/core/errors"
	"courseplan/internal/core/ports"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("store path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("store path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts when a watch-mode reload
	// overlaps a query.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite store %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Upsert writes one course and its prerequisite rows, replacing any prior
// entry with the same number.
func (s *Store) Upsert(c catalog.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withRetry("upsert course", func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		if err := upsertCourseTx(tx, c); err != nil {
			_ = tx.Rollback()
			return err
		}
		return tx.Commit()
	})
}

func upsertCourseTx(tx *sql.Tx, c catalog.Course) error {
	if _, err := tx.Exec(`
INSERT INTO courses (course_number, title) VALUES (?, ?)
ON CONFLICT(course_number) DO UPDATE SET title=excluded.title
`, c.Number, c.Title); err != nil {
		return fmt.Errorf("insert course %q: %w", c.Number, err)
	}

	if _, err := tx.Exec(`DELETE FROM prerequisites WHERE course_number = ?`, c.Number); err != nil {
		return fmt.Errorf("clear prerequisites for %q: %w", c.Number, err)
	}
	for i, prereq := range c.Prerequisites {
		if _, err := tx.Exec(`
INSERT OR IGNORE INTO prerequisites (course_number, prereq_number, position) VALUES (?, ?, ?)
`, c.Number, prereq, i); err != nil {
			return fmt.Errorf("insert prerequisite %q -> %q: %w", c.Number, prereq, err)
		}
	}
	return nil
}

// Find normalizes the lookup key and returns the matching course, or a
// NOT_FOUND error.
func (s *Store) Find(number string) (catalog.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := catalog.Normalize(number)

	var (
		title string
		found bool
	)
	err := s.withRetry("find course", func() error {
		scanErr := s.db.QueryRow(`SELECT title FROM courses WHERE course_number = ?`, key).Scan(&title)
		if scanErr == sql.ErrNoRows {
			found = false
			return nil
		}
		if scanErr != nil {
			return scanErr
		}
		found = true
		return nil
	})
	if err != nil {
		return catalog.Course{}, err
	}
	if !found {
		return catalog.Course{}, errors.AddContext(
			errors.New(errors.CodeNotFound, "course not found"), errors.CtxCourse, key)
	}

	course := catalog.Course{Number: key, Title: title}

	rows, err := s.db.Query(`
SELECT prereq_number FROM prerequisites WHERE course_number = ? ORDER BY position ASC
`, key)
	if err != nil {
		return catalog.Course{}, fmt.Errorf("query prerequisites for %q: %w", key, err)
	}
	defer rows.Close()

	for rows.Next() {
		var prereq string
		if err := rows.Scan(&prereq); err != nil {
			return catalog.Course{}, fmt.Errorf("scan prerequisite row: %w", err)
		}
		course.Prerequisites = append(course.Prerequisites, prereq)
	}
	if err := rows.Err(); err != nil {
		return catalog.Course{}, fmt.Errorf("iterate prerequisite rows: %w", err)
	}

	return course, nil
}

// AllSorted returns every course ordered by ascending course number, with
// prerequisite lists attached.
func (s *Store) AllSorted() ([]catalog.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows *sql.Rows
	err := s.withRetry("list courses", func() error {
		var qErr error
		rows, qErr = s.db.Query(`SELECT course_number, title FROM courses ORDER BY course_number ASC`)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := make([]catalog.Course, 0)
	byNumber := make(map[string]int)
	for rows.Next() {
		var c catalog.Course
		if err := rows.Scan(&c.Number, &c.Title); err != nil {
			return nil, fmt.Errorf("scan course row: %w", err)
		}
		byNumber[c.Number] = len(courses)
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate course rows: %w", err)
	}

	prereqRows, err := s.db.Query(`
SELECT course_number, prereq_number FROM prerequisites ORDER BY course_number ASC, position ASC
`)
	if err != nil {
		return nil, fmt.Errorf("query prerequisites: %w", err)
	}
	defer prereqRows.Close()

	for prereqRows.Next() {
		var number, prereq string
		if err := prereqRows.Scan(&number, &prereq); err != nil {
			return nil, fmt.Errorf("scan prerequisite row: %w", err)
		}
		if i, ok := byNumber[number]; ok {
			courses[i].Prerequisites = append(courses[i].Prerequisites, prereq)
		}
	}
	if err := prereqRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prerequisite rows: %w", err)
	}

	return courses, nil
}

// ReplaceAll swaps the stored catalog for the batch in a single
// transaction. A failed load rolls back and leaves prior rows intact.
func (s *Store) ReplaceAll(batch []catalog.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withRetry("replace catalog", func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}

		// Child rows first; cascade covers it, but the explicit order keeps
		// the statements valid with foreign_keys off as well.
		if _, err := tx.Exec(`DELETE FROM prerequisites`); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("clear prerequisites: %w", err)
		}
		if _, err := tx.Exec(`DELETE FROM courses`); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("clear courses: %w", err)
		}

		for _, c := range batch {
			if err := upsertCourseTx(tx, c); err != nil {
				_ = tx.Rollback()
				return err
			}
		}

		return tx.Commit()
	})
}

func (s *Store) Clear() error {
	return s.ReplaceAll(nil)
}

func (s *Store) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	err := s.withRetry("count courses", func() error {
		return s.db.QueryRow(`SELECT COUNT(*) FROM courses`).Scan(&n)
	})
	return n, err
}

// RecordLoad appends one load-audit row.
func (s *Store) RecordLoad(result catalog.LoadResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withRetry("record load", func() error {
		_, err := s.db.Exec(`
INSERT INTO loads (load_id, ts_utc, record_count, skipped_count, source) VALUES (?, ?, ?, ?, ?)
`, result.LoadID, time.Now().UTC().Format(time.RFC3339Nano), result.Records, result.Skipped, result.Source)
		return err
	})
}

// RecentLoads returns up to limit load-audit rows, newest first.
func (s *Store) RecentLoads(limit int) ([]ports.LoadEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 10
	}

	var rows *sql.Rows
	err := s.withRetry("list loads", func() error {
		var qErr error
		rows, qErr = s.db.Query(`
SELECT load_id, ts_utc, record_count, skipped_count, source FROM loads ORDER BY ts_utc DESC, rowid DESC LIMIT ?
`, limit)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]ports.LoadEntry, 0, limit)
	for rows.Next() {
		var e ports.LoadEntry
		var tsRaw string
		if err := rows.Scan(&e.LoadID, &tsRaw, &e.Records, &e.Skipped, &e.Source); err != nil {
			return nil, fmt.Errorf("scan load row: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, tsRaw)
		if err != nil {
			return nil, fmt.Errorf("parse load timestamp %q: %w", tsRaw, err)
		}
		e.Timestamp = ts.UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate load rows: %w", err)
	}

	return entries, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}
