// Package retriever finds translation-memory matches and glossary hits for
// a source segment. TM candidates are scored with the similarity engine and
// ranked; glossary terms are a binary inclusion filter, not a fuzzy match.
package retriever

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/valpere/transflow/internal"
	"github.com/valpere/transflow/internal/similarity"
	"github.com/valpere/transflow/internal/store"
)

const (
	// DefaultThreshold is the minimum similarity for a fuzzy TM match.
	DefaultThreshold = 0.7
	// DefaultMaxMatches caps the number of matches returned per segment.
	DefaultMaxMatches = 5

	// maxFuzzyRunes guards against O(n²) edit-distance cost on huge
	// segments; longer sources are not fuzzy-matched.
	maxFuzzyRunes = 1000
)

// Match is a TM entry together with its similarity to the queried source.
type Match struct {
	Entry      internal.TMEntry
	Similarity float64
}

// Result is what Retrieve returns for one segment.
type Result struct {
	TMMatches    []Match
	GlossaryHits []internal.GlossaryTerm
}

// Options narrow or widen a retrieval.
type Options struct {
	// ResourceID scopes TM and glossary lookups when non-empty.
	ResourceID string
	// IncludeUnreviewed also considers TM entries that are not reviewed.
	// By default only reviewed entries are candidates.
	IncludeUnreviewed bool
}

type Retriever struct {
	store      *store.Store
	threshold  float64
	maxMatches int
}

func New(st *store.Store, threshold float64) *Retriever {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Retriever{store: st, threshold: threshold, maxMatches: DefaultMaxMatches}
}

// Threshold returns the configured fuzzy-match threshold.
func (r *Retriever) Threshold() float64 {
	return r.threshold
}

// Retrieve scores TM candidates for the language pair against source and
// returns matches at or above the threshold, ranked, plus glossary terms
// occurring in source.
//
// Ranking order: reviewed entries first, then human-translated origin, then
// most recently updated, then similarity.
func (r *Retriever) Retrieve(ctx context.Context, source, sourceLang, targetLang string, opts Options) (*Result, error) {
	res := &Result{}

	matches, err := r.tmMatches(ctx, source, sourceLang, targetLang, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query translation memory: %w", err)
	}
	res.TMMatches = matches

	hits, err := r.glossaryHits(ctx, source, sourceLang, targetLang, opts.ResourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query glossary: %w", err)
	}
	res.GlossaryHits = hits

	return res, nil
}

func (r *Retriever) tmMatches(ctx context.Context, source, sourceLang, targetLang string, opts Options) ([]Match, error) {
	if len([]rune(source)) > maxFuzzyRunes {
		return nil, nil
	}

	candidates, err := r.store.FindMemory(ctx, sourceLang, targetLang, opts.ResourceID, !opts.IncludeUnreviewed)
	if err != nil {
		return nil, err
	}

	normalized := similarity.Normalize(source)
	srcLen := len([]rune(normalized))

	var matches []Match
	for _, e := range candidates {
		// Length pre-filter: skip the edit distance when the size gap
		// alone puts the candidate below the threshold.
		candLen := len([]rune(similarity.Normalize(e.Source)))
		maxLen, diff := srcLen, srcLen-candLen
		if candLen > maxLen {
			maxLen = candLen
		}
		if diff < 0 {
			diff = -diff
		}
		if maxLen > 0 && 1.0-float64(diff)/float64(maxLen) < r.threshold {
			continue
		}

		score := similarity.Score(source, e.Source)
		if score >= r.threshold {
			matches = append(matches, Match{Entry: e, Similarity: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if sa, sb := statusRank(a.Entry.Status), statusRank(b.Entry.Status); sa != sb {
			return sa < sb
		}
		if oa, ob := originRank(a.Entry.Origin), originRank(b.Entry.Origin); oa != ob {
			return oa < ob
		}
		if !a.Entry.UpdatedAt.Equal(b.Entry.UpdatedAt) {
			return a.Entry.UpdatedAt.After(b.Entry.UpdatedAt)
		}
		return a.Similarity > b.Similarity
	})

	if len(matches) > r.maxMatches {
		matches = matches[:r.maxMatches]
	}
	return matches, nil
}

// glossaryHits returns terms whose normalized source is a whitespace token
// of, or a substring of, the normalized segment source.
func (r *Retriever) glossaryHits(ctx context.Context, source, sourceLang, targetLang, resourceID string) ([]internal.GlossaryTerm, error) {
	terms, err := r.store.GetGlossaryTerms(ctx, sourceLang, targetLang, resourceID)
	if err != nil {
		return nil, err
	}

	normalized := similarity.Normalize(source)
	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(normalized) {
		tokens[tok] = struct{}{}
	}

	var hits []internal.GlossaryTerm
	for _, t := range terms {
		term := similarity.Normalize(t.Source)
		if term == "" {
			continue
		}
		if _, ok := tokens[term]; ok {
			hits = append(hits, t)
			continue
		}
		if strings.Contains(normalized, term) {
			hits = append(hits, t)
		}
	}
	return hits, nil
}

func statusRank(s internal.UnitStatus) int {
	if s == internal.UnitReviewed {
		return 0
	}
	return 1
}

func originRank(o internal.Origin) int {
	switch o {
	case internal.OriginHT:
		return 0
	case internal.OriginExact:
		return 1
	case internal.OriginFuzzy:
		return 2
	default:
		return 3
	}
}
