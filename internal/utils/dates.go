package utils

import "time"

// DateLayout is the wire and storage format for event dates.
const DateLayout = "2006-01-02"

// ValidDate reports whether s is a well-formed YYYY-MM-DD date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// FormatDate renders a timestamp as a storage date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
