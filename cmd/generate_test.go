package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"mahnwesen/internal/dunning"
)

func writeLevels(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mahnstufen.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoadBook(t *testing.T) {
	path := writeLevels(t, "4711;M2;10,00\n4712;E\n4713;M3\n")

	book, err := loadBook(path)
	if err != nil {
		t.Fatalf("loadBook() error = %v", err)
	}

	if got := book.Level("4711"); got != dunning.FirstNotice {
		t.Errorf("4711 level = %d, want FirstNotice", got)
	}
	if got := book.Level("4712"); got != dunning.Reminder {
		t.Errorf("4712 level = %d, want Reminder", got)
	}
	if got := book.Level("4713"); got != dunning.SecondNotice {
		t.Errorf("4713 level = %d, want SecondNotice", got)
	}

	fee, ok := book.FeeOverride("4711")
	if !ok {
		t.Fatal("expected fee override for 4711")
	}
	if fee.String() != "10" {
		t.Errorf("4711 fee override = %s, want 10", fee)
	}
	if _, ok := book.FeeOverride("4712"); ok {
		t.Error("unexpected fee override for 4712")
	}

	got := book.ResolveFee("4711", dunning.FirstNotice, decimal.NewFromInt(99), true)
	if got.String() != "10" {
		t.Errorf("ResolveFee() = %s, want the override to win", got)
	}
}

func TestLoadBookEmptyPath(t *testing.T) {
	book, err := loadBook("")
	if err != nil {
		t.Fatalf("loadBook(\"\") error = %v", err)
	}
	if got := book.Level("anyone"); got != dunning.Reminder {
		t.Errorf("empty book level = %d, want Reminder default", got)
	}
}

func TestLoadBookErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown level code", "4711;M9\n"},
		{"missing level field", "4711\n"},
		{"bad fee", "4711;M2;zehn\n"},
		{"negative fee", "4711;M2;-5,00\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadBook(writeLevels(t, tt.content)); err == nil {
				t.Error("loadBook() expected error")
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		if _, err := loadBook(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
			t.Error("loadBook() expected error for missing file")
		}
	})
}
