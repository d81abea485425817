package repository

import (
	"fmt"
	"strings"
	"time"
)

var sqliteTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
	// time.Time.String, written by databases opened without a pinned _time_format.
	"2006-01-02 15:04:05.999999999 -0700 MST",
}

// nullTime scans aggregate timestamps. sqlite returns MIN/MAX over DATETIME
// columns as text because the aggregate has no declared type.
type nullTime struct {
	Time  time.Time
	Valid bool
}

func (n *nullTime) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		n.Time, n.Valid = time.Time{}, false
		return nil
	case time.Time:
		n.Time, n.Valid = v.UTC(), true
		return nil
	case []byte:
		return n.parse(string(v))
	case string:
		return n.parse(v)
	default:
		return fmt.Errorf("unsupported timestamp type %T", value)
	}
}

func (n *nullTime) parse(s string) error {
	if i := strings.Index(s, " m="); i > 0 {
		s = s[:i]
	}
	for _, layout := range sqliteTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			n.Time, n.Valid = t.UTC(), true
			return nil
		}
	}
	return fmt.Errorf("unable to parse timestamp %q", s)
}
