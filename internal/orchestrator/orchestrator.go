// Package orchestrator drives a file through the translation pipeline:
// segmentation into units persisted in bounded batches, then sequential
// rate-limited machine translation with translation-memory fallback. Each
// file's run executes as an independent background task; per-file locks
// keep concurrent invocations from double-processing the same file.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/valpere/transflow/internal"
	"github.com/valpere/transflow/internal/metrics"
	"github.com/valpere/transflow/internal/placeholder"
	"github.com/valpere/transflow/internal/progress"
	"github.com/valpere/transflow/internal/retriever"
	"github.com/valpere/transflow/internal/segmenter"
	"github.com/valpere/transflow/internal/store"
	"github.com/valpere/transflow/internal/translator"
)

var (
	// ErrFileBusy is returned when a parse or translate run is already in
	// flight for the file id.
	ErrFileBusy = errors.New("file is being processed")
	// ErrInvalidState is returned when the file's processing status does
	// not allow the requested operation.
	ErrInvalidState = errors.New("invalid processing status")
)

// FailurePlaceholder is the visible target written to a unit when machine
// translation failed and no usable TM fallback existed.
const FailurePlaceholder = "[translation failed]"

// Validator checks a backend's output; a non-nil error makes the pipeline
// treat the result as a failed translation call.
type Validator interface {
	Check(target, targetLang string) error
}

// Store is the persistence surface the pipeline needs. *store.Store
// implements it.
type Store interface {
	GetFile(ctx context.Context, id string) (*internal.File, error)
	TransitionFile(ctx context.Context, id string, from []internal.ProcessingStatus, to internal.ProcessingStatus, errMsg string) error
	DeleteUnits(ctx context.Context, fileID string) error
	InsertUnits(ctx context.Context, units []internal.TranslationUnit) error
	ListUnits(ctx context.Context, fileID string) ([]internal.TranslationUnit, error)
	GetUnit(ctx context.Context, id string) (*internal.TranslationUnit, error)
	SetUnitTarget(ctx context.Context, id, target string, origin internal.Origin, status internal.UnitStatus) error
	SetUnitTargetIfUnreviewed(ctx context.Context, id, target string, origin internal.Origin, status internal.UnitStatus) (bool, error)
	UpsertMemory(ctx context.Context, e *internal.TMEntry) error
}

type Config struct {
	// BatchSize bounds how many units are held in memory and written per
	// store round-trip during parsing.
	BatchSize int
	// Interval is the minimum spacing between Translator calls.
	Interval time.Duration
	// ContextMatches caps how many TM targets are passed to the backend
	// as context.
	ContextMatches int
}

func (c *Config) applyDefaults() {
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.Interval <= 0 {
		c.Interval = 500 * time.Millisecond
	}
	if c.ContextMatches <= 0 {
		c.ContextMatches = 3
	}
}

type Orchestrator struct {
	store   Store
	svc     translator.Service
	retr    *retriever.Retriever
	pub     progress.Publisher
	val     Validator // optional
	limiter *rate.Limiter
	cfg     Config
	log     *slog.Logger

	mu      sync.Mutex
	running map[string]struct{}
}

func New(st Store, svc translator.Service, retr *retriever.Retriever, pub progress.Publisher, cfg Config, log *slog.Logger) *Orchestrator {
	cfg.applyDefaults()
	if pub == nil {
		pub = progress.Nop{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		store:   st,
		svc:     svc,
		retr:    retr,
		pub:     pub,
		limiter: rate.NewLimiter(rate.Every(cfg.Interval), 1),
		cfg:     cfg,
		log:     log.With("component", "orchestrator"),
		running: make(map[string]struct{}),
	}
}

// SetValidator installs an optional output-language check applied to every
// backend result.
func (o *Orchestrator) SetValidator(v Validator) {
	o.val = v
}

// StartParse begins a parse run in the background and returns once the file
// has transitioned to parsing. The caller gets ErrFileBusy or
// ErrInvalidState synchronously when the run cannot start.
func (o *Orchestrator) StartParse(ctx context.Context, fileID string) error {
	f, err := o.beginParse(ctx, fileID)
	if err != nil {
		return err
	}
	go func() {
		defer o.unlock(fileID)
		o.runParse(context.Background(), f)
	}()
	return nil
}

// Parse runs the full parse stage synchronously.
func (o *Orchestrator) Parse(ctx context.Context, fileID string) error {
	f, err := o.beginParse(ctx, fileID)
	if err != nil {
		return err
	}
	defer o.unlock(fileID)
	return o.runParse(ctx, f)
}

// StartTranslate begins a translate run in the background and returns once
// the file has transitioned to translating.
func (o *Orchestrator) StartTranslate(ctx context.Context, fileID string) error {
	f, err := o.beginTranslate(ctx, fileID)
	if err != nil {
		return err
	}
	go func() {
		defer o.unlock(fileID)
		o.runTranslate(context.Background(), f)
	}()
	return nil
}

// Translate runs the full translate stage synchronously.
func (o *Orchestrator) Translate(ctx context.Context, fileID string) error {
	f, err := o.beginTranslate(ctx, fileID)
	if err != nil {
		return err
	}
	defer o.unlock(fileID)
	return o.runTranslate(ctx, f)
}

// ConfirmUnit records a human-reviewed translation: the unit is promoted to
// reviewed and the pair is appended to the translation memory (deduplicated
// on source, target and language pair).
func (o *Orchestrator) ConfirmUnit(ctx context.Context, unitID, target string) error {
	if target == "" {
		return fmt.Errorf("reviewed unit requires a non-empty target: %w", ErrInvalidState)
	}

	u, err := o.store.GetUnit(ctx, unitID)
	if err != nil {
		return err
	}
	f, err := o.store.GetFile(ctx, u.FileID)
	if err != nil {
		return err
	}

	if err := o.store.SetUnitTarget(ctx, unitID, target, internal.OriginHT, internal.UnitReviewed); err != nil {
		return fmt.Errorf("failed to update unit: %w", err)
	}

	entry := &internal.TMEntry{
		ID:         uuid.New().String(),
		Source:     u.Source,
		Target:     target,
		Status:     internal.UnitReviewed,
		Origin:     internal.OriginHT,
		SourceLang: f.SourceLang,
		TargetLang: f.TargetLang,
		ResourceID: f.ProjectID,
	}
	if err := o.store.UpsertMemory(ctx, entry); err != nil {
		return fmt.Errorf("failed to record TM entry: %w", err)
	}
	return nil
}

// --- locking and preconditions ---

func (o *Orchestrator) lock(fileID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, busy := o.running[fileID]; busy {
		return false
	}
	o.running[fileID] = struct{}{}
	return true
}

func (o *Orchestrator) unlock(fileID string) {
	o.mu.Lock()
	delete(o.running, fileID)
	o.mu.Unlock()
}

func (o *Orchestrator) beginParse(ctx context.Context, fileID string) (*internal.File, error) {
	if !o.lock(fileID) {
		return nil, fmt.Errorf("parse %s: %w", fileID, ErrFileBusy)
	}

	f, err := o.store.GetFile(ctx, fileID)
	if err != nil {
		o.unlock(fileID)
		return nil, err
	}
	if f.Type != internal.FileWork {
		o.unlock(fileID)
		return nil, fmt.Errorf("file %s is reference material: %w", fileID, ErrInvalidState)
	}
	if !f.ProcessingStatus.CanParse() {
		o.unlock(fileID)
		if f.ProcessingStatus.InFlight() {
			return nil, fmt.Errorf("file %s is %s: %w", fileID, f.ProcessingStatus, ErrFileBusy)
		}
		return nil, fmt.Errorf("cannot parse file %s in status %s: %w", fileID, f.ProcessingStatus, ErrInvalidState)
	}

	if err := o.store.TransitionFile(ctx, fileID,
		[]internal.ProcessingStatus{internal.StatusUploaded, internal.StatusParsed, internal.StatusReady, internal.StatusError},
		internal.StatusParsing, ""); err != nil {
		o.unlock(fileID)
		if errors.Is(err, store.ErrConflict) {
			return nil, fmt.Errorf("parse %s: %w", fileID, ErrFileBusy)
		}
		return nil, err
	}
	return f, nil
}

func (o *Orchestrator) beginTranslate(ctx context.Context, fileID string) (*internal.File, error) {
	if !o.lock(fileID) {
		return nil, fmt.Errorf("translate %s: %w", fileID, ErrFileBusy)
	}

	f, err := o.store.GetFile(ctx, fileID)
	if err != nil {
		o.unlock(fileID)
		return nil, err
	}
	if !f.ProcessingStatus.CanTranslate() {
		o.unlock(fileID)
		if f.ProcessingStatus.InFlight() {
			return nil, fmt.Errorf("file %s is %s: %w", fileID, f.ProcessingStatus, ErrFileBusy)
		}
		return nil, fmt.Errorf("cannot translate file %s in status %s: %w", fileID, f.ProcessingStatus, ErrInvalidState)
	}

	if err := o.store.TransitionFile(ctx, fileID,
		[]internal.ProcessingStatus{internal.StatusParsed, internal.StatusReady, internal.StatusError},
		internal.StatusTranslating, ""); err != nil {
		o.unlock(fileID)
		if errors.Is(err, store.ErrConflict) {
			return nil, fmt.Errorf("translate %s: %w", fileID, ErrFileBusy)
		}
		return nil, err
	}
	return f, nil
}

// --- parse stage ---

// runParse segments the file content and persists the units in batches.
// Only unit ids accumulate between batches, so peak memory does not depend
// on document size beyond the segment list itself.
func (o *Orchestrator) runParse(ctx context.Context, f *internal.File) error {
	log := o.log.With("file_id", f.ID)
	log.Info("parse started")

	// Re-parsing replaces any unit set from an earlier run.
	if err := o.store.DeleteUnits(ctx, f.ID); err != nil {
		return o.failFile(ctx, f, internal.StatusParsing, fmt.Errorf("failed to clear previous units: %w", err))
	}

	segments := segmenter.Segment(f.Content)
	total := len(segments)

	batch := make([]internal.TranslationUnit, 0, o.cfg.BatchSize)
	persisted := 0
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := o.insertBatch(ctx, batch); err != nil {
			return err
		}
		persisted += len(batch)
		batch = batch[:0]
		metrics.BatchesPersisted.Inc()
		o.pub.Publish(internal.ProgressEvent{
			FileID:    f.ID,
			ProjectID: f.ProjectID,
			Stage:     internal.StatusParsing,
			Processed: persisted,
			Total:     total,
		})
		return nil
	}

	for i, source := range segments {
		batch = append(batch, internal.TranslationUnit{
			ID:       uuid.New().String(),
			FileID:   f.ID,
			Position: i,
			Source:   source,
			Status:   internal.UnitDraft,
		})
		if len(batch) == o.cfg.BatchSize {
			if err := flush(); err != nil {
				return o.failParse(ctx, f, err)
			}
		}
	}
	if err := flush(); err != nil {
		return o.failParse(ctx, f, err)
	}

	if err := o.store.TransitionFile(ctx, f.ID,
		[]internal.ProcessingStatus{internal.StatusParsing}, internal.StatusParsed, ""); err != nil {
		return o.failParse(ctx, f, fmt.Errorf("failed to mark file parsed: %w", err))
	}

	metrics.FilesCompleted.WithLabelValues("parse", "ok").Inc()
	o.pub.Publish(internal.ProgressEvent{
		FileID:    f.ID,
		ProjectID: f.ProjectID,
		Stage:     internal.StatusParsed,
		Processed: total,
		Total:     total,
		Message:   fmt.Sprintf("segmented into %d units", total),
	})
	log.Info("parse finished", "segments", total)
	return nil
}

// insertBatch writes one batch, retrying once on failure.
func (o *Orchestrator) insertBatch(ctx context.Context, batch []internal.TranslationUnit) error {
	err := o.store.InsertUnits(ctx, batch)
	if err == nil {
		return nil
	}
	o.log.Warn("batch insert failed, retrying", "error", err)
	if err = o.store.InsertUnits(ctx, batch); err != nil {
		return fmt.Errorf("failed to persist unit batch: %w", err)
	}
	return nil
}

// failParse removes the partial unit set and records the failure.
func (o *Orchestrator) failParse(ctx context.Context, f *internal.File, cause error) error {
	if err := o.store.DeleteUnits(ctx, f.ID); err != nil {
		o.log.Error("failed to clean up partial units", "file_id", f.ID, "error", err)
	}
	return o.failFile(ctx, f, internal.StatusParsing, cause)
}

// --- translate stage ---

func (o *Orchestrator) runTranslate(ctx context.Context, f *internal.File) error {
	log := o.log.With("file_id", f.ID)
	log.Info("translate started")

	units, err := o.store.ListUnits(ctx, f.ID)
	if err != nil {
		return o.failFile(ctx, f, internal.StatusTranslating, fmt.Errorf("failed to list units: %w", err))
	}

	total := len(units)
	for i, u := range units {
		// Human-touched units are never overwritten by a re-run. The status
		// is re-read because a reviewer may confirm a unit while this run is
		// waiting on the backend.
		cur, err := o.store.GetUnit(ctx, u.ID)
		if err != nil {
			return o.failFile(ctx, f, internal.StatusTranslating, fmt.Errorf("failed to load unit %s: %w", u.ID, err))
		}
		if cur.Status == internal.UnitReviewed || cur.Status == internal.UnitEdited {
			o.publishTranslating(f, i+1, total)
			continue
		}

		// Staggered scheduling: bound the outbound call rate.
		if err := o.limiter.Wait(ctx); err != nil {
			return o.failFile(ctx, f, internal.StatusTranslating, fmt.Errorf("rate limiter interrupted: %w", err))
		}

		start := time.Now()
		target, origin, outcome := o.translateUnit(ctx, f, cur)
		metrics.UnitDuration.Observe(time.Since(start).Seconds())
		metrics.UnitsProcessed.WithLabelValues(outcome).Inc()

		status := cur.Status
		if status == "" || status == internal.UnitDraft {
			switch origin {
			case internal.OriginExact:
				status = internal.UnitExact
			case internal.OriginFuzzy:
				status = internal.UnitFuzzy
			default:
				status = internal.UnitMT
			}
		}

		// Conditional write: a confirmation racing with the backend call
		// above must win over the machine result.
		written, err := o.store.SetUnitTargetIfUnreviewed(ctx, u.ID, target, origin, status)
		if err != nil {
			return o.failFile(ctx, f, internal.StatusTranslating, fmt.Errorf("failed to persist unit %s: %w", u.ID, err))
		}
		if !written {
			log.Debug("unit confirmed during run, keeping reviewed target", "unit_id", u.ID)
		}
		o.publishTranslating(f, i+1, total)
	}

	if err := o.store.TransitionFile(ctx, f.ID,
		[]internal.ProcessingStatus{internal.StatusTranslating}, internal.StatusReady, ""); err != nil {
		return o.failFile(ctx, f, internal.StatusTranslating, fmt.Errorf("failed to mark file ready: %w", err))
	}

	metrics.FilesCompleted.WithLabelValues("translate", "ok").Inc()
	o.pub.Publish(internal.ProgressEvent{
		FileID:    f.ID,
		ProjectID: f.ProjectID,
		Stage:     internal.StatusReady,
		Processed: total,
		Total:     total,
		Message:   "translation complete",
	})
	log.Info("translate finished", "units", total)
	return nil
}

// translateUnit produces the target text for one unit. A failed backend
// call falls back to the best TM match at or above the threshold, then to
// a visible failure placeholder; it never aborts the file run.
func (o *Orchestrator) translateUnit(ctx context.Context, f *internal.File, u *internal.TranslationUnit) (target string, origin internal.Origin, outcome string) {
	res, err := o.retr.Retrieve(ctx, u.Source, f.SourceLang, f.TargetLang, retriever.Options{ResourceID: f.ProjectID})
	if err != nil {
		// Retrieval trouble degrades to plain MT rather than failing the unit.
		o.log.Warn("retrieval failed", "unit_id", u.ID, "error", err)
		res = &retriever.Result{}
	}

	// An identical TM entry needs no backend call. The whole match list is
	// scanned: ranking puts recency above similarity, so an exact entry can
	// sit below a fresher fuzzy sibling.
	for _, m := range res.TMMatches {
		if m.Similarity >= 1.0 {
			return m.Entry.Target, internal.OriginExact, metrics.OutcomeExact
		}
	}

	req := translator.Request{
		SourceLang: f.SourceLang,
		TargetLang: f.TargetLang,
	}
	for i, m := range res.TMMatches {
		if i == o.cfg.ContextMatches {
			break
		}
		req.Context = append(req.Context, m.Entry.Target)
	}
	for _, g := range res.GlossaryHits {
		req.Glossary = append(req.Glossary, translator.TermPair{Source: g.Source, Target: g.Target})
	}

	protected, captured := placeholder.Protect(u.Source)
	req.Text = protected

	result, err := o.svc.Translate(ctx, req)
	if err == nil {
		translated := placeholder.Restore(result.Text, captured)
		if o.val != nil {
			if verr := o.val.Check(translated, f.TargetLang); verr != nil {
				err = fmt.Errorf("output rejected: %w", verr)
			}
		}
		if err == nil {
			return translated, internal.OriginMT, metrics.OutcomeMT
		}
	}

	o.log.Warn("translation call failed", "unit_id", u.ID, "error", err)

	if len(res.TMMatches) > 0 && res.TMMatches[0].Similarity >= o.retr.Threshold() {
		return res.TMMatches[0].Entry.Target, internal.OriginFuzzy, metrics.OutcomeFallback
	}
	return FailurePlaceholder, internal.OriginMT, metrics.OutcomeFailed
}

func (o *Orchestrator) publishTranslating(f *internal.File, processed, total int) {
	o.pub.Publish(internal.ProgressEvent{
		FileID:    f.ID,
		ProjectID: f.ProjectID,
		Stage:     internal.StatusTranslating,
		Processed: processed,
		Total:     total,
	})
}

// failFile records a file-level failure: status error, message preserved,
// final progress event emitted.
func (o *Orchestrator) failFile(ctx context.Context, f *internal.File, from internal.ProcessingStatus, cause error) error {
	o.log.Error("pipeline run failed", "file_id", f.ID, "error", cause)
	metrics.FilesCompleted.WithLabelValues(stageName(from), "error").Inc()

	if err := o.store.TransitionFile(ctx, f.ID,
		[]internal.ProcessingStatus{from}, internal.StatusError, cause.Error()); err != nil {
		o.log.Error("failed to record error status", "file_id", f.ID, "error", err)
	}

	o.pub.Publish(internal.ProgressEvent{
		FileID:    f.ID,
		ProjectID: f.ProjectID,
		Stage:     internal.StatusError,
		Message:   cause.Error(),
	})
	return cause
}

func stageName(s internal.ProcessingStatus) string {
	if s == internal.StatusParsing {
		return "parse"
	}
	return "translate"
}
