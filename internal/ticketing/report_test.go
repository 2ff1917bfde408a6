package ticketing

import (
	"testing"
	"time"
)

func TestParsePeriod(t *testing.T) {
	cases := map[string]Period{
		"":         PeriodDaily,
		"daily":    PeriodDaily,
		" Weekly ": PeriodWeekly,
		"monthly":  PeriodMonthly,
		"YEARLY":   PeriodYearly,
	}
	for in, want := range cases {
		got, err := ParsePeriod(in)
		if err != nil || got != want {
			t.Fatalf("ParsePeriod(%q) = %q, %v; want %q", in, got, err, want)
		}
	}

	_, err := ParsePeriod("hourly")
	assertField(t, err, ErrInvalidPeriod, "period")
}

func TestPeriod_Window(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	// Monday 19 Oct 2026, 20:00 UTC is already Tuesday the 20th in India.
	now := time.Date(2026, 10, 19, 20, 0, 0, 0, time.UTC)

	cases := []struct {
		period   Period
		from, to time.Time
	}{
		{PeriodDaily, time.Date(2026, 10, 20, 0, 0, 0, 0, ist), time.Date(2026, 10, 21, 0, 0, 0, 0, ist)},
		{PeriodWeekly, time.Date(2026, 10, 18, 0, 0, 0, 0, ist), time.Date(2026, 10, 25, 0, 0, 0, 0, ist)},
		{PeriodMonthly, time.Date(2026, 10, 1, 0, 0, 0, 0, ist), time.Date(2026, 11, 1, 0, 0, 0, 0, ist)},
		{PeriodYearly, time.Date(2026, 1, 1, 0, 0, 0, 0, ist), time.Date(2027, 1, 1, 0, 0, 0, 0, ist)},
	}
	for _, tc := range cases {
		t.Run(string(tc.period), func(t *testing.T) {
			from, to := tc.period.Window(now, ist)
			if !from.Equal(tc.from) || !to.Equal(tc.to) {
				t.Fatalf("window = [%v, %v), want [%v, %v)", from, to, tc.from, tc.to)
			}
		})
	}
}

func TestPeriod_Bucket(t *testing.T) {
	// Sunday 25 Oct 2026, 14:30.
	ts := time.Date(2026, 10, 25, 14, 30, 0, 0, time.UTC)

	cases := map[Period]int{
		PeriodDaily:   14,
		PeriodWeekly:  1,
		PeriodMonthly: 25,
		PeriodYearly:  10,
	}
	for p, want := range cases {
		if got := p.Bucket(ts); got != want {
			t.Fatalf("%s bucket = %d, want %d", p, got, want)
		}
	}

	saturday := time.Date(2026, 10, 24, 0, 0, 0, 0, time.UTC)
	if got := PeriodWeekly.DateBucket(saturday); got != 7 {
		t.Fatalf("saturday = %d, want 7", got)
	}
	if got := PeriodDaily.DateBucket(saturday); got != 24 {
		t.Fatalf("daily date bucket = %d, want 24", got)
	}
}
