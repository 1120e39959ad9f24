package catalog

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"courseplan/internal/core/errors"
	"courseplan/internal/shared/observability"
)

func TestReadBatch(t *testing.T) {
	input := strings.Join([]string{
		"CS101, Intro to CS,CS100",
		"",
		"broken-line",
		"CS100,Fundamentals",
		"cs101, Intro to CS v2,CS100",
	}, "\n")

	batch, skipped, err := ReadBatch(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if skipped != 1 {
		t.Errorf("expected 1 skipped malformed line (blank lines don't count), got %d", skipped)
	}
	if len(batch) != 2 {
		t.Fatalf("expected 2 distinct courses, got %d", len(batch))
	}

	// Later duplicate replaces the earlier record in place.
	if batch[0].Number != "CS101" || batch[0].Title != "Intro to CS v2" {
		t.Errorf("expected duplicate CS101 to be replaced in place, got %+v", batch[0])
	}
	if batch[1].Number != "CS100" {
		t.Errorf("expected CS100 second, got %+v", batch[1])
	}
}

func writeCatalogFile(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "courses.csv")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeCatalogFile(t,
		"CS101, Intro to CS,CS100",
		"CS100,Fundamentals",
	)

	m := NewMemory()
	result, err := Load(path, m)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if result.Records != 2 {
		t.Errorf("expected 2 records loaded, got %d", result.Records)
	}
	if result.Skipped != 0 {
		t.Errorf("expected 0 skipped, got %d", result.Skipped)
	}
	if result.LoadID == "" {
		t.Error("expected a load id")
	}

	c, err := m.Find("cs101")
	if err != nil {
		t.Fatalf("find cs101: %v", err)
	}
	if c.Title != "Intro to CS" {
		t.Errorf("expected title Intro to CS, got %q", c.Title)
	}
	if !reflect.DeepEqual(c.Prerequisites, []string{"CS100"}) {
		t.Errorf("expected prerequisites [CS100], got %v", c.Prerequisites)
	}

	courses, err := m.AllSorted()
	if err != nil {
		t.Fatal(err)
	}
	if len(courses) != 2 || courses[0].Number != "CS100" || courses[1].Number != "CS101" {
		t.Errorf("expected [CS100 CS101], got %v", courses)
	}
}

func TestLoad_CountsLoadedRecords(t *testing.T) {
	path := writeCatalogFile(t,
		"CS101, Intro to CS,CS100",
		"CS100,Fundamentals",
	)

	before := testutil.ToFloat64(observability.RecordsLoadedTotal)
	if _, err := Load(path, NewMemory()); err != nil {
		t.Fatal(err)
	}
	after := testutil.ToFloat64(observability.RecordsLoadedTotal)

	if got := after - before; got != 2 {
		t.Errorf("expected records counter to advance by 2, got %v", got)
	}
}

func TestLoad_MalformedLinesStillSucceed(t *testing.T) {
	path := writeCatalogFile(t,
		"only-one-field",
		"CS100,Fundamentals",
		"",
		",missing number",
	)

	m := NewMemory()
	result, err := Load(path, m)
	if err != nil {
		t.Fatalf("load should succeed when the file opened: %v", err)
	}
	if result.Records != 1 {
		t.Errorf("expected 1 record, got %d", result.Records)
	}
	if result.Skipped != 2 {
		t.Errorf("expected 2 skipped lines, got %d", result.Skipped)
	}
}

func TestLoad_MissingFileLeavesCatalogIntact(t *testing.T) {
	m := NewMemory()
	if err := m.Upsert(Course{Number: "CS100", Title: "Fundamentals"}); err != nil {
		t.Fatal(err)
	}

	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"), m)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.IsCode(err, errors.CodeSourceNotFound) {
		t.Errorf("expected SOURCE_NOT_FOUND, got %v", err)
	}

	c, findErr := m.Find("CS100")
	if findErr != nil || c.Title != "Fundamentals" {
		t.Errorf("previous catalog must survive a failed load, got %+v, %v", c, findErr)
	}
}

func TestLoad_TwiceEqualsOnce(t *testing.T) {
	path := writeCatalogFile(t,
		"CS101, Intro to CS,CS100",
		"CS100,Fundamentals",
		"MATH201,Calculus",
	)

	m := NewMemory()
	if _, err := Load(path, m); err != nil {
		t.Fatal(err)
	}
	first, err := m.AllSorted()
	if err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path, m); err != nil {
		t.Fatal(err)
	}
	second, err := m.AllSorted()
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("loading twice must equal loading once:\n%v\n%v", first, second)
	}
}
