package core

import (
	"strings"
	"time"
)

type (
	// Date carries day-granularity calendar dates. The time-of-day part is
	// always normalized to midnight UTC so dates compare and group cleanly.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Expense struct {
		ID          int64  `json:"id"`
		UserID      int64  `json:"user_id"`
		Category    string `json:"category"`
		Amount      Money  `json:"amount"`
		Date        Date   `json:"date"`
		Description string `json:"description"`
	}

	User struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}

	Category struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
)

const dateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// DateOf truncates an arbitrary timestamp to its calendar day in UTC.
func DateOf(t time.Time) Date {
	u := t.UTC()
	return NewDate(u.Year(), int(u.Month()), u.Day())
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// YearMonth returns the (year, month) pair used for monthly grouping.
func (d Date) YearMonth() (int, int) {
	return d.Year(), int(d.Month())
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Validate checks all expense constraints and reports every violation at
// once as a ValidationErrors value, never just the first one found.
func (e Expense) Validate() error {
	var errs ValidationErrors
	if e.UserID <= 0 {
		errs = errs.Add("user_id", "user reference is required")
	}
	if strings.TrimSpace(e.Category) == "" {
		errs = errs.Add("category", "category cannot be empty")
	}
	if e.Amount.Cents <= 0 {
		errs = errs.Add("amount", "amount must be positive")
	}
	if e.Date.IsZero() {
		errs = errs.Add("date", "date is required")
	}
	if len(e.Description) > 200 {
		errs = errs.Add("description", "description too long (max 200 characters)")
	}
	return errs.OrNil()
}
