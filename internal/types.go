// Package internal holds the domain types shared across the translation
// pipeline: files, translation units, translation memory entries, glossary
// terms, and the progress events emitted while a file is processed.
package internal

import "time"

// ProcessingStatus is the file-level pipeline state.
type ProcessingStatus string

const (
	StatusUploaded    ProcessingStatus = "uploaded"
	StatusParsing     ProcessingStatus = "parsing"
	StatusParsed      ProcessingStatus = "parsed"
	StatusTranslating ProcessingStatus = "translating"
	StatusReady       ProcessingStatus = "ready"
	StatusError       ProcessingStatus = "error"
)

// Valid reports whether s is a known processing status.
func (s ProcessingStatus) Valid() bool {
	switch s {
	case StatusUploaded, StatusParsing, StatusParsed, StatusTranslating, StatusReady, StatusError:
		return true
	}
	return false
}

// InFlight reports whether a pipeline run currently owns the file.
// A file in an in-flight state rejects new parse/translate invocations.
func (s ProcessingStatus) InFlight() bool {
	return s == StatusParsing || s == StatusTranslating
}

// CanParse reports whether a parse run may start from this state.
// Re-parsing is allowed once a previous run has finished, successfully or not.
func (s ProcessingStatus) CanParse() bool {
	switch s {
	case StatusUploaded, StatusParsed, StatusReady, StatusError:
		return true
	}
	return false
}

// CanTranslate reports whether a translate run may start from this state.
// The file must have been segmented; a finished run may be repeated.
func (s ProcessingStatus) CanTranslate() bool {
	switch s {
	case StatusParsed, StatusReady, StatusError:
		return true
	}
	return false
}

// UnitStatus is the review state of a single translation unit.
type UnitStatus string

const (
	UnitDraft    UnitStatus = "draft"
	UnitMT       UnitStatus = "mt"
	UnitFuzzy    UnitStatus = "fuzzy"
	UnitExact    UnitStatus = "100"
	UnitEdited   UnitStatus = "edited"
	UnitReviewed UnitStatus = "reviewed"
	UnitRejected UnitStatus = "rejected"
)

// Valid reports whether s is a known unit status.
func (s UnitStatus) Valid() bool {
	switch s {
	case UnitDraft, UnitMT, UnitFuzzy, UnitExact, UnitEdited, UnitReviewed, UnitRejected:
		return true
	}
	return false
}

// RequiresTarget reports whether a unit in this status must carry a
// non-empty target text.
func (s UnitStatus) RequiresTarget() bool {
	switch s {
	case UnitReviewed, UnitEdited, UnitExact:
		return true
	}
	return false
}

// Origin records where a unit's target text came from.
type Origin string

const (
	OriginMT    Origin = "mt"    // machine translated
	OriginFuzzy Origin = "fuzzy" // filled from a similar TM entry
	OriginExact Origin = "100"   // filled from an identical TM entry
	OriginHT    Origin = "ht"    // human translated
)

// Valid reports whether o is a known origin.
func (o Origin) Valid() bool {
	switch o {
	case OriginMT, OriginFuzzy, OriginExact, OriginHT:
		return true
	}
	return false
}

// FileType distinguishes documents that are segmented and translated from
// reference material that is stored as-is.
type FileType string

const (
	FileWork      FileType = "work"
	FileReference FileType = "reference"
)

// File is an uploaded document owned by a project. Content is the extracted
// plain text; ProcessingStatus tracks the pipeline state machine.
type File struct {
	ID               string           `json:"id"`
	ProjectID        string           `json:"project_id"`
	Name             string           `json:"name"`
	Content          string           `json:"content"`
	Type             FileType         `json:"type"`
	SourceLang       string           `json:"source_lang"`
	TargetLang       string           `json:"target_lang"`
	ProcessingStatus ProcessingStatus `json:"processing_status"`
	ErrorMessage     string           `json:"error_message,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// TranslationUnit is one sentence-level segment of a work file.
// Position preserves segmentation order within the file.
type TranslationUnit struct {
	ID        string     `json:"id"`
	FileID    string     `json:"file_id"`
	Position  int        `json:"position"`
	Source    string     `json:"source"`
	Target    string     `json:"target,omitempty"`
	Status    UnitStatus `json:"status"`
	Origin    Origin     `json:"origin,omitempty"`
	Comment   string     `json:"comment,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TMEntry is a confirmed source→target pair in the translation memory,
// scoped by language pair and optional resource id.
type TMEntry struct {
	ID         string     `json:"id"`
	Source     string     `json:"source"`
	Target     string     `json:"target"`
	Status     UnitStatus `json:"status"`
	Origin     Origin     `json:"origin"`
	SourceLang string     `json:"source_lang"`
	TargetLang string     `json:"target_lang"`
	ResourceID string     `json:"resource_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// GlossaryTerm is a curated exact source→target term pair.
type GlossaryTerm struct {
	ID         string `json:"id"`
	Source     string `json:"source"`
	Target     string `json:"target"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
	ResourceID string `json:"resource_id,omitempty"`
	Domain     string `json:"domain,omitempty"`
}

// ProgressEvent reports pipeline progress for one file. Events are transient:
// they are delivered to currently registered subscribers and never stored.
type ProgressEvent struct {
	FileID    string           `json:"file_id"`
	ProjectID string           `json:"project_id"`
	Stage     ProcessingStatus `json:"stage"`
	Processed int              `json:"processed"`
	Total     int              `json:"total"`
	Message   string           `json:"message,omitempty"`
}
