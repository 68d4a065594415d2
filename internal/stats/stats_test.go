package stats

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"mahnwesen/internal/dunning"
	"mahnwesen/internal/ledger"
)

func testStore(t *testing.T) (*ledger.Store, *dunning.Book) {
	t.Helper()
	store := ledger.NewStore()

	store.Add(&ledger.Tenant{
		ID: "4711", Name1: "Max Mustermann", Portfolio: "Objekt A", Selected: true,
		Records: []*ledger.Record{
			{Period: "202401", CostType: "Kaltmiete", Debit: decimal.NewFromInt(500), Enabled: true},
		},
	})
	store.Add(&ledger.Tenant{
		ID: "4712", Name1: "Erika Müller", Portfolio: "Objekt A", Selected: true,
		Records: []*ledger.Record{
			{Period: "202401", CostType: "Guthaben", Credit: decimal.NewFromInt(120), Enabled: true},
		},
	})
	store.Add(&ledger.Tenant{
		ID: "4713", Name1: "Peter Schmidt", Portfolio: "Objekt B", Selected: true,
		Records: []*ledger.Record{
			{Period: "202401", CostType: "Kaltmiete", Debit: decimal.NewFromInt(250), Enabled: true},
			{Period: "202402", CostType: "Kaltmiete", Debit: decimal.NewFromInt(250), Enabled: true},
		},
	})

	book := dunning.NewBook()
	if err := book.SetLevel("4711", dunning.FirstNotice); err != nil {
		t.Fatalf("SetLevel() error = %v", err)
	}
	return store, book
}

func TestAggregate(t *testing.T) {
	store, book := testStore(t)
	stats := Aggregate(store, book)

	if len(stats) != 2 {
		t.Fatalf("got %d portfolios, want 2", len(stats))
	}

	a := stats[0]
	if a.Portfolio != "Objekt A" {
		t.Fatalf("portfolios not sorted, first = %q", a.Portfolio)
	}
	if a.Tenants != 2 || a.InArrears != 1 {
		t.Errorf("Objekt A tenants/inArrears = %d/%d, want 2/1", a.Tenants, a.InArrears)
	}
	if a.TotalArrears.String() != "500" {
		t.Errorf("Objekt A arrears = %s, want 500", a.TotalArrears)
	}
	if a.TotalCredit.String() != "120" {
		t.Errorf("Objekt A credit = %s, want 120", a.TotalCredit)
	}
	if a.LevelCounts[dunning.FirstNotice] != 1 {
		t.Errorf("Objekt A first notices = %d, want 1", a.LevelCounts[dunning.FirstNotice])
	}
	// Tenants without an assignment default to the reminder level.
	if a.LevelCounts[dunning.Reminder] != 1 {
		t.Errorf("Objekt A reminders = %d, want 1", a.LevelCounts[dunning.Reminder])
	}

	b := stats[1]
	if b.Portfolio != "Objekt B" || b.TotalArrears.String() != "500" {
		t.Errorf("Objekt B = %+v, want arrears 500", b)
	}
}

func TestWriteWorkbook(t *testing.T) {
	store, book := testStore(t)
	path := filepath.Join(t.TempDir(), "statistik.xlsx")

	if err := WriteWorkbook(path, Aggregate(store, book)); err != nil {
		t.Fatalf("WriteWorkbook() error = %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer f.Close()

	tests := []struct {
		cell     string
		expected string
	}{
		{"A1", "Objekt"},
		{"D1", "Rückstand gesamt"},
		{"A2", "Objekt A"},
		{"B2", "2"},
		{"C2", "1"},
		{"D2", "500"},
		{"E2", "120"},
		{"A3", "Objekt B"},
		{"D3", "500"},
	}
	for _, tt := range tests {
		got, err := f.GetCellValue("Sheet1", tt.cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s) error = %v", tt.cell, err)
		}
		if got != tt.expected {
			t.Errorf("cell %s = %q, want %q", tt.cell, got, tt.expected)
		}
	}
}
