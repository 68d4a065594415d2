package layout

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"mahnwesen/internal/config"
	"mahnwesen/internal/dunning"
	"mahnwesen/internal/ledger"
	"mahnwesen/internal/logger"
)

// ---------------------------------------------------------------------------
// Document assembler
// ---------------------------------------------------------------------------

// BankData is the payment account printed on the letter, resolved per
// generation from the tenant's fields with the sender profile as fallback.
// It is never persisted.
type BankData struct {
	AccountHolder string `validate:"required"`
	IBAN          string `validate:"required,iban"`
	BIC           string
	BankName      string
}

// MailContext is the transient per-letter record handed to the mail
// composition helper so it does not recompute the totals.
type MailContext struct {
	Bank      BankData
	Arrears   decimal.Decimal
	Fee       decimal.Decimal
	AmountDue decimal.Decimal
	Purpose   string
}

// Letter is one finished dunning letter.
type Letter struct {
	TenantID string
	Filename string
	Pages    int
	Data     []byte
	Mail     MailContext
}

// renderContext carries everything a section needs. Sections communicate
// exclusively through it; the table's totals travel as explicit values,
// never through shared globals.
type renderContext struct {
	ctx  context.Context
	doc  *document
	log  zerolog.Logger

	tenant      *ledger.Tenant
	level       dunning.Level
	levelCfg    dunning.Config
	postAddress *ledger.PostAddress

	profile        config.Profile
	property       string
	logoURL        string
	partnerLogoURL string
	cache          *AssetCache

	now      time.Time
	deadline time.Time
	bank     BankData
	purpose  string

	resolveFee func() decimal.Decimal
	table      TableResult
}

// step pairs a primary section renderer with its guaranteed fallback. The
// fallback is an ordinary renderer selected at construction, not an ad hoc
// nil check at the call site.
type step struct {
	name     string
	primary  func(*renderContext) error
	fallback func(*renderContext) error
}

// Assembler produces dunning letters. It owns no mutable state across
// calls except the asset cache it was handed.
type Assembler struct {
	profile        config.Profile
	property       string
	logoURL        string
	partnerLogoURL string

	store *ledger.Store
	book  *dunning.Book
	cache *AssetCache
	log   zerolog.Logger

	// now is injectable so tests get deterministic dates and filenames.
	now func() time.Time

	preTable  []step
	postTable []step
}

var bankValidate = validator.New()

// NewAssembler wires the section pipeline in its fixed order.
func NewAssembler(cfg *config.Config, store *ledger.Store, book *dunning.Book, cache *AssetCache) *Assembler {
	return &Assembler{
		profile:        cfg.Profile,
		property:       cfg.Property,
		logoURL:        cfg.LogoURL,
		partnerLogoURL: cfg.PartnerLogo,
		store:          store,
		book:           book,
		cache:          cache,
		log:            logger.WithComponent("layout"),
		now:            time.Now,
		preTable: []step{
			{"logo", renderLogo, noop},
			{"company-header", renderCompanyHeader, noop},
			{"address", renderAddress, fallbackAddress},
			{"subject", renderSubject, fallbackSubject},
			{"intro", renderIntro, fallbackIntro},
		},
		postTable: []step{
			{"trailing", renderTrailing, fallbackTrailing},
			{"banking", renderBanking, fallbackBanking},
			{"closing", renderClosing, fallbackClosing},
		},
	}
}

// Assemble renders one tenant's dunning letter at the given level. Section
// failures degrade to fallback content; a failed ledger table or an
// invalid tenant degrades to a one-page error notice. The returned error
// is reserved for unrecoverable output corruption.
func (a *Assembler) Assemble(ctx context.Context, t *ledger.Tenant, level dunning.Level) (*Letter, error) {
	if t == nil || t.ID == "" {
		return a.errorNotice(ctx, t, fmt.Errorf("tenant has no id"))
	}
	if len(t.Records) == 0 {
		return a.errorNotice(ctx, t, fmt.Errorf("tenant %s has no ledger records", t.ID))
	}
	if !level.Valid() {
		level = dunning.Reminder
	}

	rc := a.newRenderContext(ctx, t, level)
	rc.doc = newDocument()

	for _, st := range a.preTable {
		a.runStep(rc, st)
	}

	res, err := layoutTable(rc)
	if err != nil {
		a.log.Error().Err(err).Str("tenant", t.ID).Msg("ledger table failed, emitting error notice")
		return a.errorNotice(ctx, t, err)
	}
	rc.table = res

	for _, st := range a.postTable {
		a.runStep(rc, st)
	}

	a.runStep(rc, step{"footer", stampFooter, noop})

	return a.finish(rc)
}

func (a *Assembler) newRenderContext(ctx context.Context, t *ledger.Tenant, level dunning.Level) *renderContext {
	now := a.now()
	csvFee, hasCSVFee := a.store.CSVFee(t.ID)
	return &renderContext{
		ctx:            ctx,
		log:            a.log,
		tenant:         t,
		level:          level,
		levelCfg:       dunning.LevelConfig(level),
		postAddress:    a.store.PostAddress(t.ID),
		profile:        a.profile,
		property:       a.property,
		logoURL:        a.logoURL,
		partnerLogoURL: a.partnerLogoURL,
		cache:          a.cache,
		now:            now,
		deadline:       dunning.Deadline(level, now, a.profile.Province),
		bank:           resolveBankData(t, a.profile),
		purpose:        fmt.Sprintf("Mietrückstand Mieternummer %s", t.ID),
		resolveFee: func() decimal.Decimal {
			return a.book.ResolveFee(t.ID, level, csvFee, hasCSVFee)
		},
	}
}

// runStep executes one pipeline step. A primary failure, including a
// panic, is logged and answered with the fallback renderer; the pipeline
// never aborts mid-document because of a single section.
func (a *Assembler) runStep(rc *renderContext, st step) {
	if err := safeRender(st.primary, rc); err != nil {
		a.log.Warn().Err(err).
			Str("tenant", rc.tenant.ID).
			Str("section", st.name).
			Msg("section failed, using fallback")
		if err := safeRender(st.fallback, rc); err != nil {
			a.log.Error().Err(err).
				Str("tenant", rc.tenant.ID).
				Str("section", st.name).
				Msg("fallback renderer failed as well")
		}
	}
}

func safeRender(fn func(*renderContext) error, rc *renderContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("section panicked: %v", r)
		}
	}()
	return fn(rc)
}

// finish closes the PDF and builds the Letter with its deterministic
// filename and the mail context.
func (a *Assembler) finish(rc *renderContext) (*Letter, error) {
	pages := rc.doc.pdf.PageCount()

	var buf bytes.Buffer
	if err := rc.doc.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to produce document: %w", err)
	}

	var feeOverride *decimal.Decimal
	if rc.level >= dunning.FirstNotice {
		if fee, ok := a.book.FeeOverride(rc.tenant.ID); ok {
			feeOverride = &fee
		}
	}

	return &Letter{
		TenantID: rc.tenant.ID,
		Filename: buildFilename(a.property, rc.tenant.DisplayName(), rc.levelCfg.Name, rc.now, rc.tenant.ID, feeOverride),
		Pages:    pages,
		Data:     buf.Bytes(),
		Mail: MailContext{
			Bank:      rc.bank,
			Arrears:   rc.table.Arrears,
			Fee:       rc.table.Fee,
			AmountDue: rc.table.AmountDue,
			Purpose:   rc.purpose,
		},
	}, nil
}

// errorNotice emits a minimal one-page document naming the tenant and the
// failure, so a batch never produces an empty or corrupt file.
func (a *Assembler) errorNotice(ctx context.Context, t *ledger.Tenant, cause error) (*Letter, error) {
	id := "unbekannt"
	name := "Unbekannt"
	if t != nil {
		if t.ID != "" {
			id = t.ID
		}
		if n := t.DisplayName(); n != "" {
			name = n
		}
	}

	doc := newDocument()
	pdf := doc.pdf

	doc.setY(subjectY)
	pdf.SetFont(baseFont, "B", 13)
	pdf.SetTextColor(178, 0, 0)
	doc.text("Dokument konnte nicht vollständig erstellt werden", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont(baseFont, "", baseFontSize)
	doc.advance(4)
	doc.text("Mieternummer: "+id, lineHeight)
	doc.text("Mieter: "+name, lineHeight)
	doc.advance(2)
	doc.wrapped("Grund: "+cause.Error(), lineHeight)
	doc.advance(4)
	doc.wrapped("Bitte prüfen Sie die Stammdaten und Buchungen dieses Mieters "+
		"und erzeugen Sie das Schreiben erneut.", lineHeight)

	rc := &renderContext{
		ctx:     ctx,
		doc:     doc,
		profile: a.profile,
		cache:   a.cache,
		logoURL: a.logoURL, partnerLogoURL: a.partnerLogoURL,
	}
	_ = stampFooter(rc)

	pages := pdf.PageCount()
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to produce error notice: %w", err)
	}

	return &Letter{
		TenantID: id,
		Filename: buildFilename(a.property, name, "Fehler", a.now(), id, nil),
		Pages:    pages,
		Data:     buf.Bytes(),
	}, nil
}

// resolveBankData prefers the tenant's banking fields and falls back to
// the sender profile when they are absent or invalid.
func resolveBankData(t *ledger.Tenant, p config.Profile) BankData {
	bd := BankData{
		AccountHolder: t.AccountHolder,
		IBAN:          t.IBAN,
		BIC:           t.BIC,
		BankName:      t.BankName,
	}
	if err := bankValidate.Struct(bd); err == nil {
		return bd
	}
	return BankData{
		AccountHolder: p.Name,
		IBAN:          p.IBAN,
		BIC:           p.BIC,
		BankName:      p.Bank,
	}
}
