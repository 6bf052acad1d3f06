package models

import "time"

// MatchStrategy names the rule that flagged a duplicate.
type MatchStrategy string

const (
	StrategyExactMatch             MatchStrategy = "exactMatch"
	StrategyCaseInsensitive        MatchStrategy = "caseInsensitive"
	StrategyNormalizedWhitespace   MatchStrategy = "normalizedWhitespace"
	StrategyFuzzyMatch             MatchStrategy = "fuzzyMatch"
	StrategySameFrontDifferentBack MatchStrategy = "sameFrontDifferentBack"
	StrategySameBackDifferentFront MatchStrategy = "sameBackDifferentFront"
)

type DuplicateMatch struct {
	DuplicateCard   Card          `json:"duplicate_card"`
	SimilarityScore float64       `json:"similarity_score"`
	Strategy        MatchStrategy `json:"strategy"`
	Reason          string        `json:"reason"`
}

// DuplicateReport is the result of a full-collection duplicate scan.
type DuplicateReport struct {
	Preset      string                      `json:"preset"`
	CardCount   int                         `json:"card_count"`
	Matches     map[string][]DuplicateMatch `json:"matches"`
	GeneratedAt time.Time                   `json:"generated_at"`
}
