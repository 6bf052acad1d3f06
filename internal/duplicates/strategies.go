package duplicates

import (
	"fmt"

	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/textsim"
)

// Scores assigned by each strategy. Fuzzy matches carry their computed similarity.
const (
	ScoreExactMatch             = 1.0
	ScoreCaseInsensitive        = 0.98
	ScoreNormalizedWhitespace   = 0.95
	ScoreSameFrontDifferentBack = 0.90
	ScoreSameBackDifferentFront = 0.85
)

// fingerprint holds the comparison forms of a card, computed once per card.
type fingerprint struct {
	card       models.Card
	lowerFront string
	lowerBack  string
	normFront  string
	normBack   string
}

func newFingerprint(c models.Card) fingerprint {
	return fingerprint{
		card:       c,
		lowerFront: textsim.Lower(c.FrontText),
		lowerBack:  textsim.Lower(c.BackText),
		normFront:  textsim.Normalize(c.FrontText),
		normBack:   textsim.Normalize(c.BackText),
	}
}

// Each strategy returns nil when the pair does not match.

func exactMatch(a, b fingerprint) *models.DuplicateMatch {
	if a.card.FrontText != b.card.FrontText || a.card.BackText != b.card.BackText {
		return nil
	}
	return &models.DuplicateMatch{
		DuplicateCard:   b.card,
		SimilarityScore: ScoreExactMatch,
		Strategy:        models.StrategyExactMatch,
		Reason:          "Identical front and back text",
	}
}

func caseInsensitiveMatch(a, b fingerprint) *models.DuplicateMatch {
	if a.lowerFront != b.lowerFront || a.lowerBack != b.lowerBack {
		return nil
	}
	if a.card.FrontText == b.card.FrontText && a.card.BackText == b.card.BackText {
		return nil
	}
	return &models.DuplicateMatch{
		DuplicateCard:   b.card,
		SimilarityScore: ScoreCaseInsensitive,
		Strategy:        models.StrategyCaseInsensitive,
		Reason:          "Same text with different capitalization",
	}
}

func normalizedWhitespaceMatch(a, b fingerprint) *models.DuplicateMatch {
	if a.normFront != b.normFront || a.normBack != b.normBack {
		return nil
	}
	if a.lowerFront == b.lowerFront && a.lowerBack == b.lowerBack {
		return nil
	}
	return &models.DuplicateMatch{
		DuplicateCard:   b.card,
		SimilarityScore: ScoreNormalizedWhitespace,
		Strategy:        models.StrategyNormalizedWhitespace,
		Reason:          "Same text with different spacing",
	}
}

func sameFrontDifferentBack(a, b fingerprint) *models.DuplicateMatch {
	if a.normFront != b.normFront || a.normBack == b.normBack {
		return nil
	}
	return &models.DuplicateMatch{
		DuplicateCard:   b.card,
		SimilarityScore: ScoreSameFrontDifferentBack,
		Strategy:        models.StrategySameFrontDifferentBack,
		Reason:          fmt.Sprintf("Same front %q with a different translation %q", b.card.FrontText, b.card.BackText),
	}
}

func sameBackDifferentFront(a, b fingerprint) *models.DuplicateMatch {
	if a.normBack != b.normBack || a.normFront == b.normFront {
		return nil
	}
	return &models.DuplicateMatch{
		DuplicateCard:   b.card,
		SimilarityScore: ScoreSameBackDifferentFront,
		Strategy:        models.StrategySameBackDifferentFront,
		Reason:          fmt.Sprintf("Possible synonym: %q also translates to %q", b.card.FrontText, b.card.BackText),
	}
}

func fuzzyMatch(a, b fingerprint, threshold float64) *models.DuplicateMatch {
	frontSim := textsim.Similarity(a.normFront, b.normFront)
	if frontSim < threshold {
		return nil
	}
	backSim := textsim.Similarity(a.normBack, b.normBack)
	if backSim < threshold {
		return nil
	}
	score := (frontSim + backSim) / 2
	return &models.DuplicateMatch{
		DuplicateCard:   b.card,
		SimilarityScore: score,
		Strategy:        models.StrategyFuzzyMatch,
		Reason:          fmt.Sprintf("Similar text (front %.0f%%, back %.0f%%)", frontSim*100, backSim*100),
	}
}
