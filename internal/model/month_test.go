package model

import (
	"testing"
	"time"
)

func TestMonthNormalization(t *testing.T) {
	// Any instant inside a month maps to the same key.
	a := MonthOf(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	b := MonthOf(time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC))
	c := MonthOf(time.Date(2026, 3, 15, 12, 0, 0, 0, time.FixedZone("EST", -5*3600)))

	if a != b {
		t.Errorf("months for same calendar month differ: %v vs %v", a, b)
	}
	if a != c {
		t.Errorf("timezone instant did not normalize: %v vs %v", a, c)
	}
	if !a.Equal(b) {
		t.Error("Equal returned false for identical months")
	}
}

func TestParseMonth(t *testing.T) {
	tests := []struct {
		input   string
		want    Month
		wantErr bool
	}{
		{input: "2026-01", want: NewMonth(2026, time.January)},
		{input: "2025-12", want: NewMonth(2025, time.December)},
		{input: "2026-13", wantErr: true},
		{input: "January 2026", wantErr: true},
		{input: "2026-01-15", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMonth(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseMonth(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMonth(%q) unexpected error: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseMonth(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestMonthArithmetic(t *testing.T) {
	jan := NewMonth(2026, time.January)

	if got := jan.Next(); !got.Equal(NewMonth(2026, time.February)) {
		t.Errorf("Next() = %v", got)
	}
	if got := jan.AddMonths(-1); !got.Equal(NewMonth(2025, time.December)) {
		t.Errorf("AddMonths(-1) = %v, want 2025-12", got)
	}
	if got := jan.AddMonths(12); !got.Equal(NewMonth(2027, time.January)) {
		t.Errorf("AddMonths(12) = %v, want 2027-01", got)
	}
	if got := NewMonth(2026, time.December).Next(); !got.Equal(NewMonth(2027, time.January)) {
		t.Errorf("December.Next() = %v, want 2027-01", got)
	}
}

func TestMonthContains(t *testing.T) {
	feb := NewMonth(2026, time.February)

	tests := []struct {
		name string
		date time.Time
		want bool
	}{
		{"first instant", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), true},
		{"mid month", time.Date(2026, 2, 14, 18, 30, 0, 0, time.UTC), true},
		{"last instant", time.Date(2026, 2, 28, 23, 59, 59, 999999999, time.UTC), true},
		{"first instant of next month", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), false},
		{"previous month", time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := feb.Contains(tt.date); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func TestMonthEnd(t *testing.T) {
	feb := NewMonth(2026, time.February)
	want := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if got := feb.End(); !got.Equal(want) {
		t.Errorf("End() = %v, want %v", got, want)
	}
}

func TestMonthOrdering(t *testing.T) {
	jan := NewMonth(2026, time.January)
	feb := NewMonth(2026, time.February)

	if !jan.Before(feb) {
		t.Error("jan.Before(feb) = false")
	}
	if !feb.After(jan) {
		t.Error("feb.After(jan) = false")
	}
	if jan.After(jan) || jan.Before(jan) {
		t.Error("a month compared against itself is neither before nor after")
	}
}

func TestMonthString(t *testing.T) {
	if got := NewMonth(2026, time.September).String(); got != "2026-09" {
		t.Errorf("String() = %q, want %q", got, "2026-09")
	}
}

func TestMonthIsZero(t *testing.T) {
	var zero Month
	if !zero.IsZero() {
		t.Error("zero value IsZero() = false")
	}
	if NewMonth(2026, time.January).IsZero() {
		t.Error("constructed month IsZero() = true")
	}
}
