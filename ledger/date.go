package ledger

import "time"

// DateLayout is the only accepted wire format for calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar day with no time-of-day component. The zero value is
// not a valid date; obtain values through ParseDate or NewDate.
type Date struct {
	t time.Time
}

// ParseDate validates s as a real calendar date in YYYY-MM-DD form.
// Both malformed inputs ("03/01/2025") and impossible dates ("2025-02-30")
// fail with an InvalidDateError.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, &InvalidDateError{Input: s}
	}
	return Date{t: t}, nil
}

// MustParseDate is ParseDate for trusted, hard-coded inputs. It panics on
// error and has no place on a request path.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// NewDate builds a date from components, normalizing out-of-range values
// the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// AddDays returns the date n calendar days later, rolling over month and
// year boundaries correctly (including leap days).
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// Span expands the date into n consecutive calendar days starting at d.
// A non-positive n yields an empty slice.
func (d Date) Span(n int) []Date {
	if n <= 0 {
		return nil
	}
	out := make([]Date, n)
	for i := 0; i < n; i++ {
		out[i] = d.AddDays(i)
	}
	return out
}

func (d Date) Equal(other Date) bool  { return d.t.Equal(other.t) }
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) IsZero() bool           { return d.t.IsZero() }

// String renders the date in wire form.
func (d Date) String() string { return d.t.Format(DateLayout) }

// FormatDates renders a slice of dates in wire form, preserving order.
func FormatDates(dates []Date) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.String()
	}
	return out
}
