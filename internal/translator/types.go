// Package translator defines the machine-translation backend contract and
// the backends shipped with the pipeline. Backends are interchangeable; the
// orchestrator only sees the Service interface.
package translator

import (
	"context"
	"time"
)

// TermPair is a glossary term handed to backends that can honor terminology.
type TermPair struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Request carries one segment to translate. Context holds target texts of
// similar TM entries for backends that can use surrounding context; Glossary
// holds matched terms. Backends that support neither ignore them.
type Request struct {
	Text       string     `json:"text"`
	SourceLang string     `json:"source_lang"`
	TargetLang string     `json:"target_lang"`
	Context    []string   `json:"context,omitempty"`
	Glossary   []TermPair `json:"glossary,omitempty"`
}

// Result is a backend's answer for one segment.
type Result struct {
	Text         string        `json:"text"`
	Alternatives []string      `json:"alternatives,omitempty"`
	Confidence   float64       `json:"confidence"`
	Latency      time.Duration `json:"latency"`
}

// Service is a machine-translation backend. Translate failures (timeouts,
// quota, service errors) are recoverable per segment; callers decide the
// fallback.
type Service interface {
	Name() string
	Translate(ctx context.Context, req Request) (*Result, error)
}
