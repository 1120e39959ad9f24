package catalog

import "strings"

// ParseLine splits one comma-delimited input line into a Course. The second
// return value is false when the line carries no usable record: blank lines,
// fewer than two fields, or an empty number/title after normalization.
// Malformed lines are never an error; the loader counts and drops them.
func ParseLine(line string) (Course, bool) {
	if strings.TrimSpace(line) == "" {
		return Course{}, false
	}

	fields := strings.Split(line, ",")
	if len(fields) < 2 {
		return Course{}, false
	}

	number := Normalize(fields[0])
	title := strings.TrimSpace(fields[1])
	if number == "" || title == "" {
		return Course{}, false
	}

	course := Course{Number: number, Title: title}
	for _, raw := range fields[2:] {
		prereq := Normalize(raw)
		if prereq != "" {
			course.Prerequisites = append(course.Prerequisites, prereq)
		}
	}

	return course, true
}
