// Package store persists files, translation units, translation memory and
// glossary terms in SQLite. It is the single source of truth for pipeline
// state: file status transitions are guarded with conditional updates so two
// orchestrator instances cannot both claim the same file.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"

	"github.com/valpere/transflow/internal"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a conditional status transition matched
	// no row, i.e. the file is not in any of the expected states.
	ErrConflict = errors.New("status conflict")
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS files (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		name TEXT NOT NULL,
		content TEXT NOT NULL,
		type TEXT NOT NULL DEFAULT 'work',
		source_lang TEXT NOT NULL DEFAULT '',
		target_lang TEXT NOT NULL DEFAULT '',
		processing_status TEXT NOT NULL DEFAULT 'uploaded',
		error_message TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS translation_units (
		id TEXT PRIMARY KEY,
		file_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		source TEXT NOT NULL,
		target TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'draft',
		origin TEXT NOT NULL DEFAULT '',
		comment TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (file_id) REFERENCES files(id)
	);

	CREATE TABLE IF NOT EXISTS translation_memory (
		id TEXT PRIMARY KEY,
		source_text TEXT NOT NULL,
		target_text TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'reviewed',
		origin TEXT NOT NULL DEFAULT 'ht',
		source_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		resource_id TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(source_text, target_text, source_lang, target_lang)
	);

	CREATE TABLE IF NOT EXISTS glossary (
		id TEXT PRIMARY KEY,
		source_term TEXT NOT NULL,
		target_term TEXT NOT NULL,
		source_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		resource_id TEXT NOT NULL DEFAULT '',
		domain TEXT NOT NULL DEFAULT '',
		UNIQUE(source_lang, target_lang, source_term)
	);

	CREATE INDEX IF NOT EXISTS idx_units_file ON translation_units(file_id, position);
	CREATE INDEX IF NOT EXISTS idx_memory_langs ON translation_memory(source_lang, target_lang);
	CREATE INDEX IF NOT EXISTS idx_glossary_langs ON glossary(source_lang, target_lang);
	CREATE INDEX IF NOT EXISTS idx_files_project ON files(project_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// --- files ---

func (s *Store) CreateFile(ctx context.Context, f *internal.File) error {
	now := time.Now().UTC()
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now
	}
	f.UpdatedAt = now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO files (id, project_id, name, content, type, source_lang, target_lang, processing_status, error_message, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.ProjectID, f.Name, f.Content, string(f.Type), f.SourceLang, f.TargetLang,
		string(f.ProcessingStatus), f.ErrorMessage, f.CreatedAt, f.UpdatedAt)
	return err
}

func (s *Store) GetFile(ctx context.Context, id string) (*internal.File, error) {
	var f internal.File
	err := s.db.QueryRowContext(ctx,
		`SELECT id, project_id, name, content, type, source_lang, target_lang, processing_status, error_message, created_at, updated_at
		 FROM files WHERE id = ?`, id).Scan(
		&f.ID, &f.ProjectID, &f.Name, &f.Content, &f.Type, &f.SourceLang, &f.TargetLang,
		&f.ProcessingStatus, &f.ErrorMessage, &f.CreatedAt, &f.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("file %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *Store) ListFiles(ctx context.Context, projectID string) ([]internal.File, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, name, content, type, source_lang, target_lang, processing_status, error_message, created_at, updated_at
		 FROM files WHERE project_id = ? ORDER BY created_at`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []internal.File
	for rows.Next() {
		var f internal.File
		if err := rows.Scan(&f.ID, &f.ProjectID, &f.Name, &f.Content, &f.Type, &f.SourceLang, &f.TargetLang,
			&f.ProcessingStatus, &f.ErrorMessage, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// TransitionFile moves a file from one of the expected states to the target
// state. The update is conditional on the current status, which makes the
// state machine safe against concurrent orchestrator runs: the loser of a
// race observes ErrConflict.
func (s *Store) TransitionFile(ctx context.Context, id string, from []internal.ProcessingStatus, to internal.ProcessingStatus, errMsg string) error {
	if len(from) == 0 {
		return fmt.Errorf("transition to %s: no source states given", to)
	}

	placeholders := strings.Repeat("?,", len(from))
	placeholders = placeholders[:len(placeholders)-1]

	args := []interface{}{string(to), errMsg, time.Now().UTC(), id}
	for _, st := range from {
		args = append(args, string(st))
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE files SET processing_status = ?, error_message = ?, updated_at = ?
		 WHERE id = ? AND processing_status IN (`+placeholders+`)`, args...)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := s.GetFile(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("file %s is not in %v: %w", id, from, ErrConflict)
	}
	return nil
}

// DeleteFile removes a file and all translation units it owns.
func (s *Store) DeleteFile(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM translation_units WHERE file_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// --- translation units ---

// InsertUnits persists one batch of units in a single transaction. Either
// the whole batch is written or none of it is.
func (s *Store) InsertUnits(ctx context.Context, units []internal.TranslationUnit) error {
	if len(units) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO translation_units (id, file_id, position, source, target, status, origin, comment, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, u := range units {
		if _, err := stmt.ExecContext(ctx, u.ID, u.FileID, u.Position, u.Source, u.Target,
			string(u.Status), string(u.Origin), u.Comment, now, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListUnits returns all units of a file in segmentation order.
func (s *Store) ListUnits(ctx context.Context, fileID string) ([]internal.TranslationUnit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, file_id, position, source, target, status, origin, comment, created_at, updated_at
		 FROM translation_units WHERE file_id = ? ORDER BY position`, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []internal.TranslationUnit
	for rows.Next() {
		var u internal.TranslationUnit
		if err := rows.Scan(&u.ID, &u.FileID, &u.Position, &u.Source, &u.Target,
			&u.Status, &u.Origin, &u.Comment, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

func (s *Store) GetUnit(ctx context.Context, id string) (*internal.TranslationUnit, error) {
	var u internal.TranslationUnit
	err := s.db.QueryRowContext(ctx,
		`SELECT id, file_id, position, source, target, status, origin, comment, created_at, updated_at
		 FROM translation_units WHERE id = ?`, id).Scan(
		&u.ID, &u.FileID, &u.Position, &u.Source, &u.Target, &u.Status, &u.Origin, &u.Comment,
		&u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("unit %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SetUnitTarget updates a unit's target text, origin and status.
func (s *Store) SetUnitTarget(ctx context.Context, id, target string, origin internal.Origin, status internal.UnitStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE translation_units SET target = ?, origin = ?, status = ?, updated_at = ? WHERE id = ?`,
		target, string(origin), string(status), time.Now().UTC(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("unit %s: %w", id, ErrNotFound)
	}
	return nil
}

// SetUnitTargetIfUnreviewed updates a unit's target text, origin and status
// unless a reviewer has touched the unit in the meantime. It reports whether
// the update was applied; a reviewed or edited unit is left as-is. Same
// compare-and-swap discipline as TransitionFile, at unit granularity.
func (s *Store) SetUnitTargetIfUnreviewed(ctx context.Context, id, target string, origin internal.Origin, status internal.UnitStatus) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE translation_units SET target = ?, origin = ?, status = ?, updated_at = ?
		 WHERE id = ? AND status NOT IN (?, ?)`,
		target, string(origin), string(status), time.Now().UTC(), id,
		string(internal.UnitReviewed), string(internal.UnitEdited))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	// Zero rows is either a protected unit or a missing one.
	if _, err := s.GetUnit(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

// DeleteUnits removes every unit belonging to a file. Used on re-parse and
// to clean up after a failed batch so no partial unit set is left behind.
func (s *Store) DeleteUnits(ctx context.Context, fileID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM translation_units WHERE file_id = ?`, fileID)
	return err
}

func (s *Store) CountUnits(ctx context.Context, fileID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM translation_units WHERE file_id = ?`, fileID).Scan(&n)
	return n, err
}

// --- translation memory ---

// UpsertMemory inserts a TM entry, or refreshes status/updated_at when an
// entry with the same source, target and language pair already exists.
// The source text is NFC-normalized and trimmed so lookups are stable.
func (s *Store) UpsertMemory(ctx context.Context, e *internal.TMEntry) error {
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO translation_memory (id, source_text, target_text, status, origin, source_lang, target_lang, resource_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(source_text, target_text, source_lang, target_lang)
		 DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at`,
		e.ID, normalizeText(e.Source), e.Target, string(e.Status), string(e.Origin),
		e.SourceLang, e.TargetLang, e.ResourceID, e.CreatedAt, e.UpdatedAt)
	return err
}

// FindMemory returns TM candidates for a language pair. With reviewedOnly
// set only reviewed entries are returned; resourceID narrows the scope when
// non-empty. Ranking is the retriever's job, not the store's.
func (s *Store) FindMemory(ctx context.Context, sourceLang, targetLang, resourceID string, reviewedOnly bool) ([]internal.TMEntry, error) {
	query := `SELECT id, source_text, target_text, status, origin, source_lang, target_lang, resource_id, created_at, updated_at
	          FROM translation_memory WHERE source_lang = ? AND target_lang = ?`
	args := []interface{}{sourceLang, targetLang}

	if reviewedOnly {
		query += ` AND status = ?`
		args = append(args, string(internal.UnitReviewed))
	}
	if resourceID != "" {
		query += ` AND resource_id = ?`
		args = append(args, resourceID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []internal.TMEntry
	for rows.Next() {
		var e internal.TMEntry
		if err := rows.Scan(&e.ID, &e.Source, &e.Target, &e.Status, &e.Origin,
			&e.SourceLang, &e.TargetLang, &e.ResourceID, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListMemory returns all TM entries ordered by most recently updated.
func (s *Store) ListMemory(ctx context.Context) ([]internal.TMEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_text, target_text, status, origin, source_lang, target_lang, resource_id, created_at, updated_at
		 FROM translation_memory ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []internal.TMEntry
	for rows.Next() {
		var e internal.TMEntry
		if err := rows.Scan(&e.ID, &e.Source, &e.Target, &e.Status, &e.Origin,
			&e.SourceLang, &e.TargetLang, &e.ResourceID, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteMemory permanently removes a TM entry by ID.
func (s *Store) DeleteMemory(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM translation_memory WHERE id = ?`, id)
	return err
}

// ClearMemory removes all TM entries and returns the number deleted.
func (s *Store) ClearMemory(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM translation_memory`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// --- glossary ---

// AddGlossaryTerm inserts or replaces a glossary term for a language pair.
func (s *Store) AddGlossaryTerm(ctx context.Context, t *internal.GlossaryTerm) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO glossary (id, source_term, target_term, source_lang, target_lang, resource_id, domain)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(source_lang, target_lang, source_term)
		 DO UPDATE SET target_term = excluded.target_term, resource_id = excluded.resource_id, domain = excluded.domain`,
		t.ID, t.Source, t.Target, t.SourceLang, t.TargetLang, t.ResourceID, t.Domain)
	return err
}

// GetGlossaryTerms returns all terms for a language pair, optionally scoped
// by resource id.
func (s *Store) GetGlossaryTerms(ctx context.Context, sourceLang, targetLang, resourceID string) ([]internal.GlossaryTerm, error) {
	query := `SELECT id, source_term, target_term, source_lang, target_lang, resource_id, domain
	          FROM glossary WHERE source_lang = ? AND target_lang = ?`
	args := []interface{}{sourceLang, targetLang}
	if resourceID != "" {
		query += ` AND resource_id = ?`
		args = append(args, resourceID)
	}
	query += ` ORDER BY source_term`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var terms []internal.GlossaryTerm
	for rows.Next() {
		var t internal.GlossaryTerm
		if err := rows.Scan(&t.ID, &t.Source, &t.Target, &t.SourceLang, &t.TargetLang, &t.ResourceID, &t.Domain); err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

// ListGlossaryTerms returns glossary entries, optionally filtered by
// language pair (pass empty strings to return everything).
func (s *Store) ListGlossaryTerms(ctx context.Context, sourceLang, targetLang string) ([]internal.GlossaryTerm, error) {
	query := `SELECT id, source_term, target_term, source_lang, target_lang, resource_id, domain FROM glossary`
	var args []interface{}

	switch {
	case sourceLang != "" && targetLang != "":
		query += ` WHERE source_lang = ? AND target_lang = ?`
		args = append(args, sourceLang, targetLang)
	case sourceLang != "":
		query += ` WHERE source_lang = ?`
		args = append(args, sourceLang)
	case targetLang != "":
		query += ` WHERE target_lang = ?`
		args = append(args, targetLang)
	}
	query += ` ORDER BY source_lang, target_lang, source_term`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var terms []internal.GlossaryTerm
	for rows.Next() {
		var t internal.GlossaryTerm
		if err := rows.Scan(&t.ID, &t.Source, &t.Target, &t.SourceLang, &t.TargetLang, &t.ResourceID, &t.Domain); err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

// DeleteGlossaryTerm removes a glossary entry by ID.
func (s *Store) DeleteGlossaryTerm(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM glossary WHERE id = ?`, id)
	return err
}

// normalizeText trims whitespace and applies Unicode NFC normalization so
// TM dedup keys compare consistently.
func normalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}
