package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func validExpense() Expense {
	return Expense{
		UserID:      1,
		Category:    "Food",
		Amount:      Money{Cents: 1500},
		Date:        NewDate(2024, 1, 5),
		Description: "groceries",
	}
}

func TestExpenseValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Expense)
		fields  []string
		wantErr bool
	}{
		{
			name:   "valid expense",
			mutate: func(e *Expense) {},
		},
		{
			name:   "empty description is allowed",
			mutate: func(e *Expense) { e.Description = "" },
		},
		{
			name:    "missing user",
			mutate:  func(e *Expense) { e.UserID = 0 },
			fields:  []string{"user_id"},
			wantErr: true,
		},
		{
			name:    "blank category",
			mutate:  func(e *Expense) { e.Category = "   " },
			fields:  []string{"category"},
			wantErr: true,
		},
		{
			name:    "non-positive amount",
			mutate:  func(e *Expense) { e.Amount = Money{Cents: 0} },
			fields:  []string{"amount"},
			wantErr: true,
		},
		{
			name:    "zero date",
			mutate:  func(e *Expense) { e.Date = Date{} },
			fields:  []string{"date"},
			wantErr: true,
		},
		{
			name: "all violations reported together",
			mutate: func(e *Expense) {
				e.UserID = 0
				e.Category = ""
				e.Amount = Money{Cents: -5}
			},
			fields:  []string{"user_id", "category", "amount"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validExpense()
			tt.mutate(&e)
			err := e.Validate()
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}
			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %T", err)
			}
			if len(verrs) != len(tt.fields) {
				t.Fatalf("expected %d violations, got %d: %v", len(tt.fields), len(verrs), verrs)
			}
			for i, f := range tt.fields {
				if verrs[i].Field != f {
					t.Errorf("violation %d: expected field %q, got %q", i, f, verrs[i].Field)
				}
			}
		})
	}
}

func TestDateDayGranularity(t *testing.T) {
	d := DateOf(time.Date(2024, 3, 15, 23, 59, 1, 0, time.UTC))
	if d.String() != "2024-03-15" {
		t.Fatalf("expected 2024-03-15, got %s", d)
	}
	if h := d.Hour(); h != 0 {
		t.Fatalf("expected midnight, got hour %d", h)
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2024, 1, 6)
	b, err := json.Marshal(d)
	if err != nil || string(b) != `"2024-01-06"` {
		t.Fatalf("marshal: %s err=%v", b, err)
	}
	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d.Time) {
		t.Fatalf("round trip mismatch: %v != %v", back, d)
	}
	if err := json.Unmarshal([]byte(`"06/01/2024"`), &back); err == nil {
		t.Fatal("expected error for non ISO date")
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2024-02-29 ")
	if err != nil {
		t.Fatalf("leap day should parse: %v", err)
	}
	if y, m := d.YearMonth(); y != 2024 || m != 2 {
		t.Fatalf("unexpected year month: %d %d", y, m)
	}
	if _, err := ParseDate("2024-13-01"); err == nil {
		t.Fatal("expected error for month 13")
	}
}
