package ticketing

import (
	"strings"
	"time"
)

// Period is the window of a sales or visitor report.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

// ParsePeriod accepts the four report periods; an empty value means daily.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PeriodDaily, nil
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly:
		return p, nil
	}
	return "", fieldErr("period", ErrInvalidPeriod, s)
}

// Window returns the current period around now as [from, to) in loc. Weeks
// start on Sunday.
func (p Period) Window(now time.Time, loc *time.Location) (from, to time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	y, m, d := now.Date()
	switch p {
	case PeriodWeekly:
		from = time.Date(y, m, d-int(now.Weekday()), 0, 0, 0, 0, loc)
		return from, from.AddDate(0, 0, 7)
	case PeriodMonthly:
		from = time.Date(y, m, 1, 0, 0, 0, 0, loc)
		return from, from.AddDate(0, 1, 0)
	case PeriodYearly:
		from = time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		return from, from.AddDate(1, 0, 0)
	default:
		from = time.Date(y, m, d, 0, 0, 0, 0, loc)
		return from, from.AddDate(0, 0, 1)
	}
}

// Bucket returns the slot of t inside the period: hour of day (0-23) for
// daily, day of week (Sunday=1 to Saturday=7) for weekly, day of month for
// monthly and month (1-12) for yearly.
func (p Period) Bucket(t time.Time) int {
	switch p {
	case PeriodWeekly:
		return int(t.Weekday()) + 1
	case PeriodMonthly:
		return t.Day()
	case PeriodYearly:
		return int(t.Month())
	default:
		return t.Hour()
	}
}

// DateBucket is Bucket for a calendar date, where there is no hour: a daily
// report keys its single day by day of month.
func (p Period) DateBucket(d time.Time) int {
	if p == PeriodDaily {
		return d.Day()
	}
	return p.Bucket(d)
}
