package civil

import (
	"fmt"
	"regexp"
)

var rangeName = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})_(\d{4}-\d{2}-\d{2})\.[A-Za-z0-9]+$`)

// RangeName builds names such as "semana_2026-01-06_2026-01-12.txt".
func RangeName(prefix string, start, end Date, ext string) string {
	return fmt.Sprintf("%s_%s_%s%s", prefix, start.ISO(), end.ISO(), ext)
}

// ParseRangeName extracts the start and end dates from a name built by
// RangeName. Any prefix is accepted.
func ParseRangeName(name string) (start, end Date, ok bool) {
	m := rangeName.FindStringSubmatch(name)
	if m == nil {
		return Date{}, Date{}, false
	}
	var err error
	if start, err = ParseISO(m[1]); err != nil {
		return Date{}, Date{}, false
	}
	if end, err = ParseISO(m[2]); err != nil {
		return Date{}, Date{}, false
	}
	return start, end, true
}
