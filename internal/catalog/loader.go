package catalog

import (
	"bufio"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"courseplan/internal/core/errors"
	"courseplan/internal/shared/observability"
)

// Replacer is the slice of a course store the loader needs: an atomic
// swap of the full catalog contents.
type Replacer interface {
	ReplaceAll([]Course) error
}

// LoadResult summarizes one completed load.
type LoadResult struct {
	LoadID   string
	Source   string
	Records  int
	Skipped  int
	Duration time.Duration
}

// Load reads the comma-delimited file at path, builds a fresh batch of
// courses, and swaps it into dst. On any failure dst is left untouched; a
// missing file surfaces as SOURCE_NOT_FOUND. Malformed lines are dropped
// and counted, never fatal.
func Load(path string, dst Replacer) (LoadResult, error) {
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		observability.LoadsTotal.WithLabelValues("source_not_found").Inc()
		return LoadResult{}, errors.AddContext(
			errors.Wrap(err, errors.CodeSourceNotFound, "open catalog source"),
			errors.CtxPath, path)
	}
	defer f.Close()

	batch, skipped, err := ReadBatch(f)
	if err != nil {
		observability.LoadsTotal.WithLabelValues("error").Inc()
		return LoadResult{}, errors.AddContext(
			errors.Wrap(err, errors.CodeInternal, "read catalog source"),
			errors.CtxPath, path)
	}

	if err := dst.ReplaceAll(batch); err != nil {
		observability.LoadsTotal.WithLabelValues("error").Inc()
		return LoadResult{}, errors.AddContext(
			errors.Wrap(err, errors.CodeInternal, "replace catalog"),
			errors.CtxPath, path)
	}

	result := LoadResult{
		LoadID:   uuid.NewString(),
		Source:   path,
		Records:  len(batch),
		Skipped:  skipped,
		Duration: time.Since(start),
	}

	observability.LoadsTotal.WithLabelValues("success").Inc()
	observability.LoadDuration.Observe(result.Duration.Seconds())
	observability.LinesSkippedTotal.Add(float64(skipped))
	observability.RecordsLoadedTotal.Add(float64(result.Records))
	observability.CatalogSize.Set(float64(result.Records))

	return result, nil
}

// ReadBatch parses every line of r into a deduplicated batch. A later
// record with the same normalized number replaces the earlier one in
// place, so the batch order follows first appearance while the contents
// follow the last occurrence. The int is the count of malformed lines.
func ReadBatch(r io.Reader) ([]Course, int, error) {
	var (
		batch   []Course
		skipped int
		index   = make(map[string]int)
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		course, ok := ParseLine(line)
		if !ok {
			skipped++
			continue
		}

		if i, seen := index[course.Number]; seen {
			batch[i] = course
			continue
		}
		index[course.Number] = len(batch)
		batch = append(batch, course)
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, err
	}

	return batch, skipped, nil
}
