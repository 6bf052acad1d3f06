// Package duplicates finds likely-duplicate flashcards using layered string
// comparison strategies.
package duplicates

import (
	"sort"

	"github.com/vytor/wordflash/internal/models"
)

// Detector is stateless apart from its configuration and may be shared
// between goroutines.
type Detector struct {
	cfg Config
}

// NewDetector validates cfg and returns a Detector.
func NewDetector(cfg Config) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Detector{cfg: cfg}, nil
}

func (d *Detector) Config() Config {
	return d.cfg
}

// FindDuplicates returns the best match of card against each candidate,
// ordered by descending similarity. The card itself is never reported.
func (d *Detector) FindDuplicates(card models.Card, candidates []models.Card) []models.DuplicateMatch {
	src := newFingerprint(card)
	pool := make([]fingerprint, 0, len(candidates))
	for _, c := range candidates {
		if d.comparable(card, c) {
			pool = append(pool, newFingerprint(c))
		}
	}
	return d.findAgainst(src, pool)
}

// FindAllDuplicates runs FindDuplicates for every card against the whole
// collection. Cards without duplicates are omitted from the result.
func (d *Detector) FindAllDuplicates(cards []models.Card) map[string][]models.DuplicateMatch {
	prints := make([]fingerprint, len(cards))
	for i, c := range cards {
		prints[i] = newFingerprint(c)
	}

	out := make(map[string][]models.DuplicateMatch)
	pool := make([]fingerprint, 0, len(cards))
	for _, src := range prints {
		pool = pool[:0]
		for _, fp := range prints {
			if d.comparable(src.card, fp.card) {
				pool = append(pool, fp)
			}
		}
		if matches := d.findAgainst(src, pool); len(matches) > 0 {
			out[src.card.ID] = matches
		}
	}
	return out
}

func (d *Detector) comparable(card, candidate models.Card) bool {
	if candidate.ID == card.ID {
		return false
	}
	if d.cfg.SameLanguageOnly && candidate.Language != card.Language {
		return false
	}
	return true
}

func (d *Detector) findAgainst(src fingerprint, pool []fingerprint) []models.DuplicateMatch {
	var matches []models.DuplicateMatch
	for _, fp := range pool {
		if m := d.bestMatch(src, fp); m != nil {
			matches = append(matches, *m)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].SimilarityScore > matches[j].SimilarityScore
	})
	return matches
}

// bestMatch evaluates the enabled strategies in priority order and keeps the
// highest score. Exact matches end evaluation; fuzzy matching only runs when
// nothing else matched. Earlier strategies win ties.
func (d *Detector) bestMatch(a, b fingerprint) *models.DuplicateMatch {
	if d.cfg.CheckExactMatch {
		if m := exactMatch(a, b); m != nil {
			return m
		}
	}

	var best *models.DuplicateMatch
	consider := func(m *models.DuplicateMatch) {
		if m != nil && (best == nil || m.SimilarityScore > best.SimilarityScore) {
			best = m
		}
	}
	if d.cfg.CheckCaseInsensitive {
		consider(caseInsensitiveMatch(a, b))
	}
	if d.cfg.CheckNormalizedWhitespace {
		consider(normalizedWhitespaceMatch(a, b))
	}
	if d.cfg.CheckSameFrontDifferentBack {
		consider(sameFrontDifferentBack(a, b))
	}
	if d.cfg.CheckSameBackDifferentFront {
		consider(sameBackDifferentFront(a, b))
	}

	if best == nil && d.cfg.CheckFuzzyMatch {
		best = fuzzyMatch(a, b, d.cfg.FuzzyThreshold)
	}
	return best
}
