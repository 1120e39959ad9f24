// Package report renders courses as the human-readable lines the planner
// prints.
package report

import (
	"fmt"
	"strings"

	"courseplan/internal/catalog"
)

// CourseList formats one "<number>, <title>" line per course in the order
// given. Callers pass pre-sorted input.
func CourseList(courses []catalog.Course) string {
	var b strings.Builder
	for _, c := range courses {
		b.WriteString(fmt.Sprintf("%s, %s\n", c.Number, c.Title))
	}
	return b.String()
}

// CourseDetail formats a single course followed by its prerequisite line.
func CourseDetail(c catalog.Course) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s, %s\n", c.Number, c.Title))
	b.WriteString("Prerequisites: ")
	if len(c.Prerequisites) == 0 {
		b.WriteString("None")
	} else {
		b.WriteString(strings.Join(c.Prerequisites, ", "))
	}
	b.WriteString("\n")
	return b.String()
}

// NotFound is the fixed message for a lookup miss.
func NotFound() string {
	return "Error: Course not found\n"
}
