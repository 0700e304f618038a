package roster

import (
	"fmt"
	"iter"
	"time"
)

// =============================================================================
// ROSTER PERIOD - Fixed-length scheduling window
// =============================================================================

const (
	// DefaultPeriodDays is the standard roster-period length.
	DefaultPeriodDays = 28

	// PeriodsPerYear is how many periods a planning year holds (13 * 28 = 364).
	PeriodsPerYear = 13
)

// Period is one contiguous roster window. Periods are value types derived from
// the calendar anchor, never persisted.
type Period struct {
	Code     string // human-readable, e.g. "RP11/2025"
	Number   int    // position within the year, 1..PeriodsPerYear
	Year     int
	Sequence int // absolute sequence across years; strictly increasing
	Start    Date
	End      Date
}

// Contains reports whether the day falls inside [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days returns every day in the period, in order.
func (p Period) Days() []Date {
	var days []Date
	for cur := p.Start; cur.BeforeOrEqual(p.End); cur = cur.AddDays(1) {
		days = append(days, cur)
	}
	return days
}

// Length returns the inclusive day count of the period.
func (p Period) Length() int {
	return DaysBetween(p.Start, p.End) + 1
}

// DaysRemaining returns how many whole days of the period are still ahead of
// now, inclusive of today. Zero once the period has ended.
func (p Period) DaysRemaining(now time.Time) int {
	today := DateOf(now)
	if today.After(p.End) {
		return 0
	}
	if today.Before(p.Start) {
		return p.Length()
	}
	return DaysBetween(today, p.End) + 1
}

func (p Period) String() string {
	return fmt.Sprintf("%s [%s, %s]", p.Code, p.Start, p.End)
}

// =============================================================================
// CALENDAR - Anchor-based period arithmetic
// =============================================================================

// Calendar derives every roster period from a single reference period. The
// anchor is supplied by configuration once at startup; all arithmetic is pure
// integer division on day offsets, total over any date.
type Calendar struct {
	anchorStart Date
	anchorSeq   int // absolute sequence of the anchor period
	length      int
}

// NewCalendar builds a calendar anchored at the given reference period.
// anchorNumber is the period's position within anchorYear (1..PeriodsPerYear),
// anchorStart its first day.
func NewCalendar(anchorNumber, anchorYear int, anchorStart Date, lengthDays int) (*Calendar, error) {
	if lengthDays <= 0 {
		return nil, fmt.Errorf("roster: period length must be positive, got %d", lengthDays)
	}
	if anchorNumber < 1 || anchorNumber > PeriodsPerYear {
		return nil, fmt.Errorf("roster: anchor period number must be 1..%d, got %d", PeriodsPerYear, anchorNumber)
	}
	if anchorStart.IsZero() {
		return nil, fmt.Errorf("roster: anchor start date required")
	}
	return &Calendar{
		anchorStart: anchorStart,
		anchorSeq:   anchorYear*PeriodsPerYear + anchorNumber - 1,
		length:      lengthDays,
	}, nil
}

// PeriodLength returns the configured period length in days.
func (c *Calendar) PeriodLength() int { return c.length }

// PeriodContaining maps any date to its enclosing period. Total function: far
// past and far future dates resolve the same way, via floor division of the
// day offset from the anchor.
func (c *Calendar) PeriodContaining(d Date) Period {
	offset := DaysBetween(c.anchorStart, d)
	return c.periodAt(c.anchorSeq + floorDiv(offset, c.length))
}

// Next returns the period immediately following p.
func (c *Calendar) Next(p Period) Period {
	return c.periodAt(p.Sequence + 1)
}

// Previous returns the period immediately preceding p.
func (c *Calendar) Previous(p Period) Period {
	return c.periodAt(p.Sequence - 1)
}

// FuturePeriods yields count consecutive periods starting at from. The
// sequence is a pure function of its inputs and may be ranged over any number
// of times.
func (c *Calendar) FuturePeriods(from Period, count int) iter.Seq[Period] {
	return func(yield func(Period) bool) {
		for i := 0; i < count; i++ {
			if !yield(c.periodAt(from.Sequence + i)) {
				return
			}
		}
	}
}

func (c *Calendar) periodAt(seq int) Period {
	year := floorDiv(seq, PeriodsPerYear)
	number := seq - year*PeriodsPerYear + 1
	start := c.anchorStart.AddDays((seq - c.anchorSeq) * c.length)
	end := start.AddDays(c.length - 1)
	return Period{
		Code:     fmt.Sprintf("RP%d/%d", number, year),
		Number:   number,
		Year:     year,
		Sequence: seq,
		Start:    start,
		End:      end,
	}
}

// =============================================================================
// COUNTDOWN - Wall-clock time until the next period starts
// =============================================================================

// Countdown is the remaining wall-clock time before a period rolls over.
type Countdown struct {
	Days    int
	Hours   int
	Minutes int
	Seconds int
}

// CountdownToNext returns the time from now until the start of the period
// following p. Clamped to zero at the instant of rollover; never negative.
func (c *Calendar) CountdownToNext(p Period, now time.Time) Countdown {
	next := c.Next(p).Start.Time()
	remaining := next.Sub(now.UTC())
	if remaining < 0 {
		remaining = 0
	}
	secs := int(remaining / time.Second)
	return Countdown{
		Days:    secs / 86400,
		Hours:   secs % 86400 / 3600,
		Minutes: secs % 3600 / 60,
		Seconds: secs % 60,
	}
}

// floorDiv rounds toward negative infinity so dates before the anchor land in
// the correct earlier period.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
