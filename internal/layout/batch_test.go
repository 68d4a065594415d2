package layout

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"mahnwesen/internal/dunning"
	"mahnwesen/internal/ledger"
)

func secondTenant() *ledger.Tenant {
	return &ledger.Tenant{
		ID:         "4712",
		Name1:      "Erika Müller",
		Salutation: "Sehr geehrte Frau Müller,",
		Street:     "Nebenstr. 2",
		PostalCode: "70174",
		City:       "Stuttgart",
		Portfolio:  "Objekt A",
		Selected:   true,
		Records: []*ledger.Record{
			{Period: "202403", CostType: "Kaltmiete", Debit: decimal.NewFromInt(300), Enabled: true},
		},
	}
}

func TestGenerateAll(t *testing.T) {
	asm, store, book := testAssembler()
	store.Add(testTenant())
	store.Add(secondTenant())
	if err := book.SetLevel("4711", dunning.FirstNotice); err != nil {
		t.Fatalf("SetLevel() error = %v", err)
	}
	if err := book.SetFeeOverride("4711", decimal.RequireFromString("7.50")); err != nil {
		t.Fatalf("SetFeeOverride() error = %v", err)
	}

	runner := NewRunner(asm, store)
	runner.pacing = 0
	outDir := t.TempDir()

	result := runner.GenerateAll(context.Background(), outDir)
	if result.Successful != 2 || result.Failed != 0 {
		t.Fatalf("tally = %d/%d, want 2/0 (errors: %v)", result.Successful, result.Failed, result.Errors)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("wrote %d files, want 2", len(entries))
	}
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(outDir, e.Name()))
		if err != nil {
			t.Fatalf("ReadFile(%s) error = %v", e.Name(), err)
		}
		assertPDF(t, data)
	}

	// The first tenant's fee override must not bleed into the second
	// tenant's session entry.
	mc1, ok := runner.Session("4711")
	if !ok {
		t.Fatal("no session entry for 4711")
	}
	if mc1.Fee.String() != "7.5" {
		t.Errorf("4711 fee = %s, want override 7.5", mc1.Fee)
	}
	mc2, ok := runner.Session("4712")
	if !ok {
		t.Fatal("no session entry for 4712")
	}
	if !mc2.Fee.IsZero() {
		t.Errorf("4712 fee = %s, want 0 at reminder level", mc2.Fee)
	}
	if mc2.Arrears.String() != "300" {
		t.Errorf("4712 arrears = %s, want 300", mc2.Arrears)
	}
}

func TestGenerateAllSessionReset(t *testing.T) {
	asm, store, _ := testAssembler()
	store.Add(testTenant())

	runner := NewRunner(asm, store)
	runner.pacing = 0
	runner.GenerateAll(context.Background(), t.TempDir())
	if _, ok := runner.Session("4711"); !ok {
		t.Fatal("expected session entry after first run")
	}

	// Deselect the tenant; a new run must not carry the old entry over.
	store.Tenant("4711").Selected = false
	runner.GenerateAll(context.Background(), t.TempDir())
	if _, ok := runner.Session("4711"); ok {
		t.Error("stale session entry survived into the next run")
	}
}

func TestGenerateAllPartialFailure(t *testing.T) {
	asm, store, _ := testAssembler()
	store.Add(testTenant())
	store.Add(secondTenant())

	runner := NewRunner(asm, store)
	runner.pacing = 0

	// A file in place of the output directory makes every write fail.
	outDir := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(outDir, []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	result := runner.GenerateAll(context.Background(), outDir)
	if result.Successful != 0 || result.Failed != 2 {
		t.Fatalf("tally = %d/%d, want 0/2", result.Successful, result.Failed)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("recorded %d errors, want 2", len(result.Errors))
	}
	for _, be := range result.Errors {
		if be.Err == nil {
			t.Errorf("tenant %s: nil error recorded", be.TenantID)
		}
	}
}

func TestGenerateAllCancellation(t *testing.T) {
	asm, store, _ := testAssembler()
	store.Add(testTenant())
	store.Add(secondTenant())

	runner := NewRunner(asm, store)
	runner.pacing = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The first document is still rendered; the pacing wait before the
	// second observes the cancellation and the remainder is marked failed.
	result := runner.GenerateAll(ctx, t.TempDir())
	if result.Successful != 1 {
		t.Errorf("Successful = %d, want 1", result.Successful)
	}
	if result.Failed != 1 {
		t.Errorf("Failed = %d, want 1", result.Failed)
	}
	if len(result.Errors) != 1 || result.Errors[0].TenantID != "4712" {
		t.Fatalf("Errors = %v, want one entry for 4712", result.Errors)
	}
}
