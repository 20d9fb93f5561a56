package models

import (
	"fmt"
	"strings"
	"time"
)

// deadlineLayouts are tried in order. Timestamps without a zone are UTC.
var deadlineLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

// ParseDeadline parses an ISO 8601 timestamp and returns it in UTC.
func ParseDeadline(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid deadline %q: expected an ISO 8601 timestamp", value)
}
