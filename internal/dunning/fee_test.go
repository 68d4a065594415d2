package dunning

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestResolveFeePrecedence(t *testing.T) {
	tests := []struct {
		name      string
		level     Level
		override  string // empty = none
		csvFee    string // empty = none
		expected  string
	}{
		{"level 1 ignores override and csv", Reminder, "25.00", "10.00", "0"},
		{"level 1 ignores statutory default", Reminder, "", "", "0"},
		{"override wins", FirstNotice, "7.50", "10.00", "7.5"},
		{"csv fee when no override", FirstNotice, "", "10.00", "10"},
		{"statutory default last", FirstNotice, "", "", "5"},
		{"statutory default level 3", SecondNotice, "", "", "10"},
		{"zero override is still an override", SecondNotice, "0", "10.00", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book := NewBook()
			if tt.override != "" {
				if err := book.SetFeeOverride("4711", dec(tt.override)); err != nil {
					t.Fatalf("SetFeeOverride() error = %v", err)
				}
			}

			csvFee := decimal.Zero
			hasCSV := tt.csvFee != ""
			if hasCSV {
				csvFee = dec(tt.csvFee)
			}

			got := book.ResolveFee("4711", tt.level, csvFee, hasCSV)
			if got.String() != tt.expected {
				t.Errorf("ResolveFee() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestSetFeeOverrideRange(t *testing.T) {
	tests := []struct {
		name    string
		fee     string
		wantErr bool
	}{
		{"zero", "0", false},
		{"typical", "10.00", false},
		{"upper bound", "999.99", false},
		{"negative", "-0.01", true},
		{"above bound", "1000.00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book := NewBook()
			err := book.SetFeeOverride("4711", dec(tt.fee))
			if tt.wantErr && err == nil {
				t.Errorf("SetFeeOverride(%s) expected error", tt.fee)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("SetFeeOverride(%s) error = %v", tt.fee, err)
			}
		})
	}
}

func TestClearFeeOverride(t *testing.T) {
	book := NewBook()
	if err := book.SetFeeOverride("4711", dec("7.50")); err != nil {
		t.Fatalf("SetFeeOverride() error = %v", err)
	}
	book.ClearFeeOverride("4711")

	got := book.ResolveFee("4711", FirstNotice, decimal.Zero, false)
	if got.String() != "5" {
		t.Errorf("ResolveFee after clear = %s, want statutory 5", got)
	}
}

func TestBookLevels(t *testing.T) {
	book := NewBook()

	if got := book.Level("unknown"); got != Reminder {
		t.Errorf("default level = %d, want Reminder", got)
	}

	if err := book.SetLevel("4711", SecondNotice); err != nil {
		t.Fatalf("SetLevel() error = %v", err)
	}
	if got := book.Level("4711"); got != SecondNotice {
		t.Errorf("Level() = %d, want SecondNotice", got)
	}

	if err := book.SetLevel("4711", Level(7)); err == nil {
		t.Error("SetLevel(7) expected error")
	}
}
