package core

import (
	"encoding/json"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	b, err := json.Marshal(Money{Cents: 8050})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "80.50" {
		t.Fatalf("expected 80.50, got %s", b)
	}

	var m Money
	if err := json.Unmarshal([]byte(`12.34`), &m); err != nil || m.Cents != 1234 {
		t.Fatalf("number unmarshal: cents=%d err=%v", m.Cents, err)
	}
	if err := json.Unmarshal([]byte(`"5.5"`), &m); err != nil || m.Cents != 550 {
		t.Fatalf("string unmarshal: cents=%d err=%v", m.Cents, err)
	}
}

func TestMoneyString(t *testing.T) {
	if got := (Money{Cents: 100}).String(); got != "1.00" {
		t.Fatalf("expected 1.00, got %s", got)
	}
	if got := (Money{Cents: 7}).String(); got != "0.07" {
		t.Fatalf("expected 0.07, got %s", got)
	}
}
