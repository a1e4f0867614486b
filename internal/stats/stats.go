// Package stats implements the spending statistics pipeline: grouping
// expenses into daily and monthly sums and deriving the top spending days,
// the month-over-month change and the naive next-month prediction.
//
// Every function here is a pure computation over its inputs. The same
// results can be produced by pushing the grouping down to the database
// (the SQLite store does exactly that); these reductions are the
// in-process equivalent used by the memory store and the tests.
package stats

import (
	"encoding/json"
	"sort"

	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
)

// DayTotal is the spend summed over one calendar day.
type DayTotal struct {
	Date  core.Date  `json:"date"`
	Total core.Money `json:"total"`
}

// MonthTotal is the spend summed over one calendar month.
type MonthTotal struct {
	Year  int        `json:"year"`
	Month int        `json:"month"`
	Total core.Money `json:"total"`
}

// Change is the month-over-month comparison of the two most recent months.
// Available is false when fewer than two distinct months of history exist;
// in that case ChangePercent carries no meaning and must not be shown as a
// number. A previous month of exactly zero with current spending yields a
// defined ChangePercent of 0 rather than a division error.
type Change struct {
	Available     bool
	CurrentMonth  core.Money
	PreviousMonth core.Money
	ChangePercent float64
}

// MarshalJSON renders changePercent as null when the change is not
// available, so consumers can tell "no data" apart from an actual 0%.
func (c Change) MarshalJSON() ([]byte, error) {
	out := struct {
		Available     bool       `json:"available"`
		CurrentMonth  core.Money `json:"currentMonth"`
		PreviousMonth core.Money `json:"previousMonth"`
		ChangePercent *float64   `json:"changePercent"`
	}{
		Available:     c.Available,
		CurrentMonth:  c.CurrentMonth,
		PreviousMonth: c.PreviousMonth,
	}
	if c.Available {
		pct := c.ChangePercent
		out.ChangePercent = &pct
	}
	return json.Marshal(out)
}

// DailyTotals groups expenses by calendar day and sums their amounts.
// The result is ordered by date ascending.
func DailyTotals(expenses []core.Expense) []DayTotal {
	sums := make(map[core.Date]int64)
	for _, e := range expenses {
		sums[core.DateOf(e.Date.Time)] += e.Amount.Cents
	}
	out := make([]DayTotal, 0, len(sums))
	for d, cents := range sums {
		out = append(out, DayTotal{Date: d, Total: core.Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date.Time)
	})
	return out
}

// MonthlyTotals groups expenses by (year, month) and sums their amounts.
// The result is ordered most recent month first, which is the shape the
// change and prediction computations consume.
func MonthlyTotals(expenses []core.Expense) []MonthTotal {
	type ym struct{ year, month int }
	sums := make(map[ym]int64)
	for _, e := range expenses {
		y, m := e.Date.YearMonth()
		sums[ym{y, m}] += e.Amount.Cents
	}
	out := make([]MonthTotal, 0, len(sums))
	for k, cents := range sums {
		out = append(out, MonthTotal{Year: k.year, Month: k.month, Total: core.Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Month > out[j].Month
	})
	return out
}

// TopDays ranks daily totals by total descending and returns at most n.
// Equal totals tie-break on date descending, most recent day first, so the
// ranking is deterministic regardless of input order. Days with a zero or
// negative total never appear.
func TopDays(daily []DayTotal, n int) []DayTotal {
	ranked := make([]DayTotal, 0, len(daily))
	for _, d := range daily {
		if d.Total.Cents > 0 {
			ranked = append(ranked, d)
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Total.Cents != ranked[j].Total.Cents {
			return ranked[i].Total.Cents > ranked[j].Total.Cents
		}
		return ranked[i].Date.After(ranked[j].Date.Time)
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// ChangeFromMonthly derives the month-over-month change from monthly totals
// ordered most recent first. Fewer than two months yields Available=false,
// never a fabricated percentage.
func ChangeFromMonthly(monthly []MonthTotal) Change {
	if len(monthly) < 2 {
		return Change{}
	}
	cur, prev := monthly[0].Total, monthly[1].Total
	c := Change{
		Available:     true,
		CurrentMonth:  cur,
		PreviousMonth: prev,
	}
	if prev.Cents == 0 {
		// Defined fallback: growth from a zero month reports 0%, not an
		// error and not infinity.
		return c
	}
	pct := cur.Decimal().
		Sub(prev.Decimal()).
		Div(prev.Decimal()).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	c.ChangePercent = pct.InexactFloat64()
	return c
}

// PredictFromMonthly is the naive next-month forecast: the arithmetic mean
// of up to the three most recent monthly totals (ordered most recent
// first), rounded half-up to the cent. No history predicts zero.
func PredictFromMonthly(monthly []MonthTotal) core.Money {
	if len(monthly) == 0 {
		return core.Money{}
	}
	if len(monthly) > 3 {
		monthly = monthly[:3]
	}
	var sum int64
	for _, m := range monthly {
		sum += m.Total.Cents
	}
	mean := decimal.NewFromInt(sum).
		Div(decimal.NewFromInt(int64(len(monthly)))).
		Round(0)
	return core.Money{Cents: mean.IntPart()}
}

// TopSpendingDays computes the top-n spending days straight from expense rows.
func TopSpendingDays(expenses []core.Expense, n int) []DayTotal {
	return TopDays(DailyTotals(expenses), n)
}

// MonthlyChange computes the month-over-month change straight from expense rows.
func MonthlyChange(expenses []core.Expense) Change {
	return ChangeFromMonthly(MonthlyTotals(expenses))
}

// PredictNextMonth computes the next-month prediction straight from expense rows.
func PredictNextMonth(expenses []core.Expense) core.Money {
	return PredictFromMonthly(MonthlyTotals(expenses))
}
