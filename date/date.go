package date

import (
	"fmt"
	"time"
)

const DefaultFormat = "2006-01-02"

// Represents a pure date, with no effects from time zones, or time.
// Represented in UTC time at 00:00:00
type Date struct {
	time time.Time
}

func New(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func NewFromTime(t time.Time) Date {
	return New(t.Year(), t.Month(), t.Day())
}

func (d Date) UTCTime() time.Time {
	return d.time
}

func (d Date) isPureUtcDate() bool {
	return d == NewFromTime(d.time)
}

func Parse(dFmt string, dateStr string) (Date, error) {
	tm, err := time.Parse(dFmt, dateStr)
	if err != nil {
		return Date{}, err
	}
	d := Date{tm}
	if !d.isPureUtcDate() {
		return Date{}, fmt.Errorf("format %v and string %v did not produce a pure date", dFmt, dateStr)
	}
	return d, nil
}

// MustParse is for literals in tests and wiring code only.
func MustParse(dateStr string) Date {
	d, err := Parse(DefaultFormat, dateStr)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) Equal(other Date) bool {
	return d.time.Equal(other.time)
}

// After reports whether the date instant d is after u.
func (d Date) After(u Date) bool {
	return d.time.After(u.time)
}

// Before reports whether the date instant d is before u.
func (d Date) Before(u Date) bool {
	return d.time.Before(u.time)
}

func (d Date) AfterOrOn(u Date) bool {
	return !d.time.Before(u.time)
}

func (d Date) BeforeOrOn(u Date) bool {
	return !d.time.After(u.time)
}

func (d Date) AddDays(nDays int) Date {
	newDate := Date{d.time.AddDate(0, 0, nDays)}
	if !newDate.isPureUtcDate() {
		panic("time.Time.AddDate of days resulted in time-of-day change")
	}
	return newDate
}

func (d Date) String() string {
	year, month, day := d.time.Date()
	return fmt.Sprintf("%d-%02d-%02d", year, int(month), day)
}

func (d Date) Year() int {
	return d.time.Year()
}

func (d Date) IsZero() bool {
	return d.time.IsZero()
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := Parse(DefaultFormat, string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func Min(a, b Date) Date {
	if a.Before(b) {
		return a
	}
	return b
}

func Max(a, b Date) Date {
	if a.After(b) {
		return a
	}
	return b
}
