// Package billing implements the invoice projection and lifecycle engine.
//
// Everything here is pure: invoices are a deterministic function of a card,
// its recorded transactions, an explicit "today" and a projection horizon.
// Nothing is persisted and nothing reads the ambient clock, so the engine is
// safe to call concurrently and trivial to test.
package billing

import (
	"fmt"
	"time"

	"financeia/internal/core"
)

// CycleKey identifies a billing cycle by the calendar month its statement
// closes in, formatted YYYY-MM. Keys compare and sort lexicographically in
// chronological order.
type CycleKey string

const cycleKeyLayout = "2006-01"

// ParseCycleKey validates a YYYY-MM string and returns it as a CycleKey.
func ParseCycleKey(s string) (CycleKey, error) {
	t, err := time.Parse(cycleKeyLayout, s)
	if err != nil {
		return "", core.Validationf("invalid cycle key %q: want YYYY-MM", s)
	}
	// time.Parse accepts e.g. "2024-1"; require the canonical form.
	if t.Format(cycleKeyLayout) != s {
		return "", core.Validationf("invalid cycle key %q: want YYYY-MM", s)
	}
	return CycleKey(s), nil
}

// KeyFor returns the cycle key for the given year and month.
func KeyFor(year int, month time.Month) CycleKey {
	return CycleKey(core.NewDate(year, int(month), 1).Format(cycleKeyLayout))
}

func (k CycleKey) yearMonth() (int, time.Month, error) {
	t, err := time.Parse(cycleKeyLayout, string(k))
	if err != nil {
		return 0, 0, core.Validationf("invalid cycle key %q: want YYYY-MM", string(k))
	}
	return t.Year(), t.Month(), nil
}

// Next returns the following cycle, rolling over year boundaries.
func (k CycleKey) Next() CycleKey {
	y, m, err := k.yearMonth()
	if err != nil {
		return k
	}
	d := core.NewDate(y, int(m), 1).AddDate(0, 1, 0)
	return KeyFor(d.Year(), d.Month())
}

// Prev returns the preceding cycle, rolling over year boundaries.
func (k CycleKey) Prev() CycleKey {
	y, m, err := k.yearMonth()
	if err != nil {
		return k
	}
	d := core.NewDate(y, int(m), 1).AddDate(0, -1, 0)
	return KeyFor(d.Year(), d.Month())
}

// Before reports whether k is chronologically before other.
func (k CycleKey) Before(other CycleKey) bool {
	return string(k) < string(other)
}

// lastDayOfMonth returns the number of days in the given month.
func lastDayOfMonth(year int, month time.Month) int {
	return core.NewDate(year, int(month)+1, 0).Day()
}

// clampDay clamps a day-of-month to the length of the given month, so a
// closing day of 31 lands on Feb 29 in a leap year and Feb 28 otherwise.
func clampDay(day, year int, month time.Month) int {
	if last := lastDayOfMonth(year, month); day > last {
		return last
	}
	return day
}

// ClosingDate returns the day the cycle's transaction window ends.
func ClosingDate(card core.CreditCard, key CycleKey) (time.Time, error) {
	y, m, err := key.yearMonth()
	if err != nil {
		return time.Time{}, err
	}
	return core.NewDate(y, int(m), clampDay(card.ClosingDay, y, m)), nil
}

// CycleWindow returns the inclusive date range of transactions belonging to
// the cycle: the day after the previous closing through this cycle's closing.
func CycleWindow(card core.CreditCard, key CycleKey) (start, end time.Time, err error) {
	end, err = ClosingDate(card, key)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	prevClosing, err := ClosingDate(card, key.Prev())
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return prevClosing.AddDate(0, 0, 1), end, nil
}

// DueDate returns the day the cycle's invoice becomes payable. The due day
// lands in the closing month itself when it comes at or after the closing
// day, and wraps into the following month otherwise.
func DueDate(card core.CreditCard, key CycleKey) (time.Time, error) {
	y, m, err := key.yearMonth()
	if err != nil {
		return time.Time{}, err
	}
	if card.DueDay < card.ClosingDay {
		next := core.NewDate(y, int(m), 1).AddDate(0, 1, 0)
		y, m = next.Year(), next.Month()
	}
	return core.NewDate(y, int(m), clampDay(card.DueDay, y, m)), nil
}

// CycleOf returns the cycle a transaction on the given date belongs to:
// the current month while the date is on or before the month's closing day,
// the next month's cycle after that.
func CycleOf(card core.CreditCard, date time.Time) CycleKey {
	d := core.DateOnly(date)
	y, m := d.Year(), d.Month()
	if d.Day() <= clampDay(card.ClosingDay, y, m) {
		return KeyFor(y, m)
	}
	next := core.NewDate(y, int(m), 1).AddDate(0, 1, 0)
	return KeyFor(next.Year(), next.Month())
}

var monthNames = map[string][12]string{
	"pt-BR": {
		"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
		"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
	},
	"en-US": {
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	},
}

// CycleLabel renders a human-readable month/year label for the cycle, e.g.
// "Janeiro 2024". Unknown locales fall back to en-US.
func CycleLabel(key CycleKey, locale string) (string, error) {
	y, m, err := key.yearMonth()
	if err != nil {
		return "", err
	}
	names, ok := monthNames[locale]
	if !ok {
		names = monthNames["en-US"]
	}
	return fmt.Sprintf("%s %d", names[int(m)-1], y), nil
}
