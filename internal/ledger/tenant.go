package ledger

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// PostAddress is an optional delivery address that overrides the tenant's
// home address on the letter, e.g. for tenants who have already moved out.
type PostAddress struct {
	Street     string
	PostalCode string
	City       string
}

// Tenant aggregates all ledger records of one renter together with the
// contact and banking data needed to compose a dunning letter.
type Tenant struct {
	ID         string
	Name1      string
	Name2      string
	Salutation string
	Street     string
	PostalCode string
	City       string
	Email      string

	IBAN          string
	BIC           string
	AccountHolder string
	BankName      string

	Portfolio string
	Records   []*Record
	Selected  bool

	postAddress *PostAddress
	csvFee      decimal.Decimal
	hasCSVFee   bool
}

// DisplayName joins the tenant's name lines for filenames and placeholders.
func (t *Tenant) DisplayName() string {
	if t.Name2 == "" {
		return t.Name1
	}
	return strings.TrimSpace(t.Name1 + " " + t.Name2)
}

// SetPostAddress overrides the delivery address for this tenant.
func (t *Tenant) SetPostAddress(a PostAddress) {
	t.postAddress = &a
}

// Store holds all tenants built from one ledger ingest. It is rebuilt from
// scratch on every data reset.
type Store struct {
	tenants map[string]*Tenant
}

// NewStore returns an empty tenant store.
func NewStore() *Store {
	return &Store{tenants: make(map[string]*Tenant)}
}

// Add inserts or replaces a tenant. Ingest is the usual entry point; Add
// exists for manually maintained tenants.
func (s *Store) Add(t *Tenant) {
	s.tenants[t.ID] = t
}

// Tenant returns the tenant with the given id, or nil.
func (s *Store) Tenant(id string) *Tenant {
	return s.tenants[id]
}

// Tenants returns all tenants sorted by id.
func (s *Store) Tenants() []*Tenant {
	out := make([]*Tenant, 0, len(s.tenants))
	for _, t := range s.tenants {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Selected returns all tenants currently marked for generation, sorted by id.
func (s *Store) Selected() []*Tenant {
	var out []*Tenant
	for _, t := range s.Tenants() {
		if t.Selected {
			out = append(out, t)
		}
	}
	return out
}

// TenantTotal returns the signed sum of credit minus debit over the
// tenant's enabled records. Negative totals are arrears.
func (s *Store) TenantTotal(t *Tenant) decimal.Decimal {
	total := decimal.Zero
	for _, r := range t.Records {
		if r.Enabled {
			total = total.Add(r.Difference())
		}
	}
	return total
}

// CSVFee returns the dunning fee extracted from dedicated fee rows of the
// ledger export, if any.
func (s *Store) CSVFee(id string) (decimal.Decimal, bool) {
	t := s.tenants[id]
	if t == nil || !t.hasCSVFee {
		return decimal.Zero, false
	}
	return t.csvFee, true
}

// PostAddress returns the delivery address override for a tenant, or nil.
func (s *Store) PostAddress(id string) *PostAddress {
	t := s.tenants[id]
	if t == nil {
		return nil
	}
	return t.postAddress
}
