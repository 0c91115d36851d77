package calendar

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/jinzhu/now"
)

// Layout is the canonical wire and storage format of a Date.
const Layout = "2006-01-02"

// Date is a calendar day normalized to YYYY-MM-DD. The zero value is the empty string.
type Date string

// Parse accepts YYYY-MM-DD, or an RFC 3339 timestamp whose date part is kept as-is.
func Parse(value string) (Date, error) {
	raw := strings.TrimSpace(value)
	if len(raw) > len(Layout) && raw[len(Layout)] == 'T' {
		raw = raw[:len(Layout)]
	}
	t, err := time.ParseInLocation(Layout, raw, time.UTC)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return FromTime(t), nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(value string) Date {
	d, err := Parse(value)
	if err != nil {
		panic(err)
	}
	return d
}

// FromTime takes the calendar day of t in t's own location.
func FromTime(t time.Time) Date {
	return Date(t.Format(Layout))
}

func (d Date) String() string {
	return string(d)
}

func (d Date) IsZero() bool {
	return d == ""
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	t, err := time.ParseInLocation(Layout, string(d), time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (d Date) AddDays(n int) Date {
	return FromTime(d.Time().AddDate(0, 0, n))
}

func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (d Date) Before(other Date) bool {
	return d < other
}

func (d Date) After(other Date) bool {
	return d > other
}

// Value stores the date as YYYY-MM-DD text.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return string(d), nil
}

// Scan accepts DATE columns surfaced by the drivers as time.Time, string or []byte.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = ""
		return nil
	case time.Time:
		*d = FromTime(v.UTC())
		return nil
	case string:
		parsed, err := Parse(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		return d.Scan(string(v))
	default:
		return fmt.Errorf("calendar: cannot scan %T into Date", src)
	}
}

// Clock resolves "today" in a fixed location.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

func NewClock(loc *time.Location, nowFn func() time.Time) Clock {
	if loc == nil {
		loc = time.Local
	}
	if nowFn == nil {
		nowFn = time.Now
	}
	return Clock{loc: loc, now: nowFn}
}

// FixedClock always reports the given day, used by tests and tools.
func FixedClock(day Date) Clock {
	t := day.Time()
	return NewClock(time.UTC, func() time.Time { return t.Add(12 * time.Hour) })
}

func (c Clock) Today() Date {
	if c.now == nil {
		return FromTime(now.BeginningOfDay())
	}
	return FromTime(now.With(c.now().In(c.location())).BeginningOfDay())
}

func (c Clock) Location() *time.Location {
	return c.location()
}

func (c Clock) location() *time.Location {
	if c.loc == nil {
		return time.Local
	}
	return c.loc
}
