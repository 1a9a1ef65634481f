package journal

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the day key used in ids and on the command line.
	DateLayout = "2006-01-02"

	// LongDateLayout is the heading form of a day.
	LongDateLayout = "January 02, 2006"
)

// Attribute names.
const (
	AttrPageTitle    = "page/title"
	AttrPageBlocks   = "page/blocks"
	AttrBlockContent = "block/content"
	AttrBlockPage    = "block/page"
	AttrBlockCreated = "block/created"
)

// DateKey formats t as YYYY-MM-DD in t's location.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// LongDate renders a YYYY-MM-DD key as "January 02, 2006".
// A key that does not parse is returned unchanged.
func LongDate(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format(LongDateLayout)
}

// ParseDate validates a YYYY-MM-DD key.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", date, err)
	}
	return t, nil
}

// PageID returns the id of the page for date.
func PageID(date string) string {
	return "page:" + date
}

// BlockID returns the id of a block created on date at nanos since the
// Unix epoch.
func BlockID(date string, nanos int64) string {
	return fmt.Sprintf("block:%s-%d", date, nanos)
}
