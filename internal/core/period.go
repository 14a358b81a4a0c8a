package core

import "time"

// Period is the concrete [Start, End] spending window a budget is
// evaluated against. It is derived per request, never stored.
type Period struct {
	Start time.Time
	End   time.Time
}

func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// ResolvePeriod computes the spending window for a budget period relative
// to now. Explicit bounds always win: a non-zero explicitStart replaces the
// derived start and a non-nil explicitEnd replaces the derived end, so a
// budget with a fixed end date uses its own window regardless of kind.
//
// Derived windows run from 00:00:00.000 to 23:59:59.999 in now's location:
//
//	daily   the calendar day of now
//	weekly  most recent Sunday through the following Saturday
//	monthly first through last day of now's month
//	yearly  Jan 1 through Dec 31 of now's year
//
// An unknown kind normalizes to monthly. Validation rejects unknown kinds
// before they reach storage; the fallback here is defense in depth so the
// resolver stays total and never has to return an error.
func ResolvePeriod(kind PeriodKind, explicitStart time.Time, explicitEnd *time.Time, now time.Time) Period {
	var p Period
	loc := now.Location()

	switch kind {
	case Daily:
		p.Start = startOfDay(now)
		p.End = endOfDay(now)
	case Weekly:
		sunday := now.AddDate(0, 0, -int(now.Weekday()))
		p.Start = startOfDay(sunday)
		p.End = endOfDay(sunday.AddDate(0, 0, 6))
	case Yearly:
		p.Start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)
		p.End = time.Date(now.Year(), time.December, 31, 23, 59, 59, int(999*time.Millisecond), loc)
	default: // Monthly and anything unrecognized
		p.Start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		// Day zero of the next month is the last day of this one.
		p.End = time.Date(now.Year(), now.Month()+1, 0, 23, 59, 59, int(999*time.Millisecond), loc)
	}

	if !explicitStart.IsZero() {
		p.Start = explicitStart
	}
	if explicitEnd != nil && !explicitEnd.IsZero() {
		p.End = *explicitEnd
	}
	return p
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}
