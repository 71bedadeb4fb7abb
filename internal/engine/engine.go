// Package engine orchestrates a normalization run: it walks the content
// root, skips files whose fingerprint matches the ledger, repairs the
// frontmatter of the ones that changed, and persists the updated ledger.
// Files are processed one at a time; a failure on one file never stops the
// rest of the batch.
package engine

import (
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/frontmatter"
	"github.com/starford/raido/internal/ledger"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/normalize"
	"github.com/starford/raido/internal/storage"
)

// Engine runs the normalization pipeline over a content root.
type Engine struct {
	store      storage.Provider
	norm       *normalize.Normalizer
	ledgerPath string
	marker     string
	synthesize bool
	logger     *slog.Logger
}

// New assembles an Engine. marker delimits frontmatter blocks; synthesize
// controls whether documents without a block get a fresh one.
func New(store storage.Provider, norm *normalize.Normalizer, ledgerPath, marker string, synthesize bool, logger *slog.Logger) *Engine {
	return &Engine{
		store:      store,
		norm:       norm,
		ledgerPath: ledgerPath,
		marker:     marker,
		synthesize: synthesize,
		logger:     logger,
	}
}

// Run executes one full pass. The ledger is loaded once, mutated only in
// memory, and saved once at the end; stale entries for files that vanished
// from disk are kept (pruning on a partial scan would lose fingerprints).
func (e *Engine) Run() (*models.Report, error) {
	known, err := ledger.Load(e.ledgerPath, e.logger)
	if err != nil {
		return nil, err
	}

	metas, err := e.store.List("")
	if err != nil {
		return nil, err
	}

	// Updated ledger starts as a copy of the loaded one: no pruning.
	updated := make(map[string]string, len(known)+len(metas))
	for p, cs := range known {
		updated[p] = cs
	}

	report := &models.Report{}
	for _, meta := range metas {
		abs := filepath.Join(e.store.Root(), meta.Path)

		if meta.Err != nil {
			// Old fingerprint kept: the file is retried next run.
			e.logger.Warn("fingerprint failed, file skipped for this run",
				slog.String("path", abs),
				slog.String("error", meta.Err.Error()))
			report.Failed++
			continue
		}

		if known[abs] == meta.Checksum {
			report.Skipped++
			continue
		}
		e.processFile(abs, meta, updated, report)
	}

	if err := ledger.Save(e.ledgerPath, updated); err != nil {
		e.logger.Error("ledger save failed, files will be reprocessed next run",
			slog.String("error", err.Error()))
	}

	report.FinishedAt = time.Now().UTC()
	e.logger.Info("run complete",
		slog.Int("processed", report.Processed),
		slog.Int("skipped", report.Skipped),
		slog.Int("failed", report.Failed),
		slog.Int("rewritten", len(report.Rewritten)))
	return report, nil
}

// processFile takes one document through split → parse → normalize →
// serialize → rewrite. On failure the old fingerprint is kept so the file is
// retried next run; on success (modified or not) the current fingerprint is
// recorded.
func (e *Engine) processFile(abs string, meta models.FileMeta, updated map[string]string, report *models.Report) {
	data, err := e.store.Read(meta.Path)
	if err != nil {
		e.logger.Warn("read failed", slog.String("path", abs), slog.String("error", err.Error()))
		report.Failed++
		return
	}

	block, body, hasFM := frontmatter.Split(string(data), e.marker)

	var m *frontmatter.Mapping
	if hasFM {
		m, err = frontmatter.Parse(block)
		if err != nil {
			// Ledger not advanced: the file is retried next run.
			e.logger.Warn("frontmatter parse failed",
				slog.String("path", abs),
				slog.String("error", err.Error()))
			report.Failed++
			return
		}
	} else {
		if !e.synthesize {
			e.logger.Info("skipped: no frontmatter", slog.String("path", abs))
			updated[abs] = meta.Checksum
			report.Skipped++
			return
		}
		m = frontmatter.NewMapping()
		body = string(data)
	}

	changed, notes := e.norm.Apply(m, abs)
	if !changed {
		updated[abs] = meta.Checksum
		report.Processed++
		return
	}

	blockOut, err := frontmatter.Serialize(m)
	if err != nil {
		e.logger.Warn("serialize failed", slog.String("path", abs), slog.String("error", err.Error()))
		report.Failed++
		return
	}
	content := frontmatter.Join(blockOut, body, e.marker)

	if err := e.store.Write(meta.Path, []byte(content)); err != nil {
		e.logger.Warn("write failed", slog.String("path", abs), slog.String("error", err.Error()))
		report.Failed++
		return
	}

	updated[abs] = checksum.Sum([]byte(content))
	report.Processed++
	report.Rewritten = append(report.Rewritten, abs)
	e.logger.Info("rewritten",
		slog.String("path", abs),
		slog.String("changes", strings.Join(notes, "; ")))
}
