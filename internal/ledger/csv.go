package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Expected column layout of the rent-ledger export. The export repeats the
// tenant master data on every record row.
const (
	colTenantID = iota
	colName1
	colName2
	colSalutation
	colStreet
	colPostal
	colCity
	colEmail
	colIBAN
	colBIC
	colAccountHolder
	colBankName
	colPortfolio
	colPeriod
	colCostType
	colDebit
	colCredit
	columnCount
)

// feeCostType marks ledger rows that carry a pre-computed dunning fee
// instead of a regular position. Matching is case-insensitive substring.
const feeCostType = "mahngeb"

// IngestFile reads a semicolon-separated ledger export from disk.
func IngestFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger export: %w", err)
	}
	defer f.Close()
	return Ingest(f)
}

// Ingest parses a ledger export and builds the tenant store. One Tenant is
// created per unique tenant id; fee rows are extracted into the per-tenant
// CSV fee instead of the record list. Rows with a malformed amount abort
// the ingest — a silently dropped position would understate arrears.
func Ingest(r io.Reader) (*Store, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1

	store := NewStore()
	line := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read ledger export: %w", err)
		}
		line++

		// Header row or stray short row
		if line == 1 && strings.EqualFold(strings.TrimSpace(row[colTenantID]), "mieter-id") {
			continue
		}
		if len(row) < columnCount {
			return nil, fmt.Errorf("line %d: expected %d columns, got %d", line, columnCount, len(row))
		}

		id := strings.TrimSpace(row[colTenantID])
		if id == "" {
			return nil, fmt.Errorf("line %d: empty tenant id", line)
		}

		t := store.tenants[id]
		if t == nil {
			t = &Tenant{
				ID:            id,
				Name1:         strings.TrimSpace(row[colName1]),
				Name2:         strings.TrimSpace(row[colName2]),
				Salutation:    strings.TrimSpace(row[colSalutation]),
				Street:        strings.TrimSpace(row[colStreet]),
				PostalCode:    strings.TrimSpace(row[colPostal]),
				City:          strings.TrimSpace(row[colCity]),
				Email:         strings.TrimSpace(row[colEmail]),
				IBAN:          strings.TrimSpace(row[colIBAN]),
				BIC:           strings.TrimSpace(row[colBIC]),
				AccountHolder: strings.TrimSpace(row[colAccountHolder]),
				BankName:      strings.TrimSpace(row[colBankName]),
				Portfolio:     strings.TrimSpace(row[colPortfolio]),
				Selected:      true,
			}
			store.tenants[id] = t
		}

		debit, err := ParseAmount(row[colDebit])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		credit, err := ParseAmount(row[colCredit])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		costType := strings.TrimSpace(row[colCostType])
		if strings.Contains(strings.ToLower(costType), feeCostType) {
			t.csvFee = debit
			t.hasCSVFee = true
			continue
		}

		t.Records = append(t.Records, &Record{
			Period:   strings.TrimSpace(row[colPeriod]),
			CostType: costType,
			Debit:    debit,
			Credit:   credit,
			Enabled:  true,
		})
	}

	if len(store.tenants) == 0 {
		return nil, fmt.Errorf("ledger export contains no tenants")
	}
	return store, nil
}
