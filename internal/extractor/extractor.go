// Package extractor turns uploaded documents into plain text for
// segmentation. Plain text passes through, Markdown is rendered and
// stripped, and PDF is extracted with an external tool plus a fallback
// tool when the primary fails. Extraction results are cached by content
// hash so re-ingesting the same document is free.
package extractor

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	cacheSize = 128
	cacheTTL  = 30 * time.Minute
)

// Command is an external extraction tool invocation. The input file path is
// appended to Args; the tool must write plain text to stdout.
type Command struct {
	Name string
	Args []string
}

type Extractor struct {
	cache *expirable.LRU[string, string]

	// pdfPrimary and pdfFallback extract PDF text; the fallback runs only
	// when the primary fails.
	pdfPrimary  Command
	pdfFallback Command
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithPDFCommands overrides the external PDF extraction tools.
func WithPDFCommands(primary, fallback Command) Option {
	return func(e *Extractor) {
		e.pdfPrimary = primary
		e.pdfFallback = fallback
	}
}

func New(opts ...Option) *Extractor {
	e := &Extractor{
		cache:       expirable.NewLRU[string, string](cacheSize, nil, cacheTTL),
		pdfPrimary:  Command{Name: "pdftotext", Args: []string{"-layout", "-enc", "UTF-8"}},
		pdfFallback: Command{Name: "pdftotext", Args: []string{"-raw", "-enc", "UTF-8"}},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract converts raw document bytes to plain text based on the file name
// extension. The extractor's error message is preserved verbatim by callers
// that record extraction failures on the file.
func (e *Extractor) Extract(ctx context.Context, name string, data []byte) (string, error) {
	key := cacheKey(data)
	if text, ok := e.cache.Get(key); ok {
		return text, nil
	}

	var (
		text string
		err  error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case "", ".txt":
		text = string(data)
	case ".md", ".markdown":
		text = markdownToPlainText(data)
	case ".pdf":
		text, err = e.extractPDF(ctx, data)
	default:
		return "", fmt.Errorf("unsupported file type: %s", filepath.Ext(name))
	}
	if err != nil {
		return "", err
	}

	e.cache.Add(key, text)
	return text, nil
}

// extractPDF writes the document to a temp file and runs the primary
// extraction tool, then the fallback tool if the primary fails. When both
// fail the combined error is returned.
func (e *Extractor) extractPDF(ctx context.Context, data []byte) (string, error) {
	tmp, err := os.CreateTemp("", "transflow-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	tmp.Close()

	text, primaryErr := runExtraction(ctx, e.pdfPrimary, tmp.Name())
	if primaryErr == nil {
		return text, nil
	}

	text, fallbackErr := runExtraction(ctx, e.pdfFallback, tmp.Name())
	if fallbackErr == nil {
		return text, nil
	}

	return "", fmt.Errorf("pdf extraction failed: %v (fallback: %v)", primaryErr, fallbackErr)
}

func runExtraction(ctx context.Context, cmd Command, path string) (string, error) {
	args := append(append([]string{}, cmd.Args...), path, "-")
	out, err := exec.CommandContext(ctx, cmd.Name, args...).Output()
	if err != nil {
		return "", fmt.Errorf("%s: %w", cmd.Name, err)
	}
	if strings.TrimSpace(string(out)) == "" {
		return "", fmt.Errorf("%s produced no text", cmd.Name)
	}
	return string(out), nil
}

func cacheKey(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
