package layout

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"mahnwesen/internal/ledger"
	"mahnwesen/internal/logger"
)

// ---------------------------------------------------------------------------
// Batch generation
// ---------------------------------------------------------------------------

// documentPacing is the delay between two documents of a batch. Letters
// are emitted strictly one after another; emitting output streams
// concurrently risks throttling on the receiving side, so ordering is
// favored over throughput.
const documentPacing = 150 * time.Millisecond

// BatchError records one failed tenant of a batch run.
type BatchError struct {
	TenantID string
	Err      error
}

// BatchResult is the tally of one batch run. A failing tenant never aborts
// the run; it is counted here and the batch continues.
type BatchResult struct {
	Successful int
	Failed     int
	Errors     []BatchError
}

// Runner generates letters for many tenants sequentially and keeps the
// per-batch session record the mail helper reads. The session is explicit
// state on the runner, reset per run; values are overwritten per document
// and never leak into the next one.
type Runner struct {
	asm     *Assembler
	store   *ledger.Store
	log     zerolog.Logger
	session map[string]MailContext
	pacing  time.Duration
}

// NewRunner returns a batch runner over the given assembler.
func NewRunner(asm *Assembler, store *ledger.Store) *Runner {
	return &Runner{
		asm:     asm,
		store:   store,
		log:     logger.WithComponent("batch"),
		session: make(map[string]MailContext),
		pacing:  documentPacing,
	}
}

// Session returns the mail context recorded for a tenant in the current
// run, if its letter was generated.
func (r *Runner) Session(tenantID string) (MailContext, bool) {
	mc, ok := r.session[tenantID]
	return mc, ok
}

// GenerateAll renders one letter per selected tenant into outDir,
// sequentially and fully awaiting each document before starting the next.
// Every attempt yields a file or a recorded error; the tally is always
// returned, even when ctx is cancelled between documents.
func (r *Runner) GenerateAll(ctx context.Context, outDir string) BatchResult {
	runID := uuid.NewString()
	r.session = make(map[string]MailContext)
	tenants := r.store.Selected()

	log := r.log.With().Str("run", runID).Logger()
	log.Info().Int("tenants", len(tenants)).Msg("starting batch generation")

	var result BatchResult
	for i, t := range tenants {
		if i > 0 {
			// Pacing between documents, not before the first.
			select {
			case <-time.After(r.pacing):
			case <-ctx.Done():
				log.Warn().Msg("batch interrupted between documents")
				result.Failed += len(tenants) - i
				for _, rest := range tenants[i:] {
					result.Errors = append(result.Errors, BatchError{rest.ID, ctx.Err()})
				}
				return result
			}
		}

		if err := r.generateOne(ctx, t, outDir); err != nil {
			log.Error().Err(err).Str("tenant", t.ID).Msg("letter generation failed")
			result.Failed++
			result.Errors = append(result.Errors, BatchError{t.ID, err})
			continue
		}
		result.Successful++
	}

	log.Info().
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Msg("batch generation finished")
	return result
}

func (r *Runner) generateOne(ctx context.Context, t *ledger.Tenant, outDir string) error {
	level := r.asm.book.Level(t.ID)
	letter, err := r.asm.Assemble(ctx, t, level)
	if err != nil {
		return err
	}

	path := filepath.Join(outDir, letter.Filename)
	if err := os.WriteFile(path, letter.Data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", letter.Filename, err)
	}

	r.session[t.ID] = letter.Mail
	r.log.Debug().
		Str("tenant", t.ID).
		Str("file", letter.Filename).
		Int("pages", letter.Pages).
		Msg("letter written")
	return nil
}
