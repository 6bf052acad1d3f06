package duplicates

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	PresetStandard = "standard"
	PresetStrict   = "strict"
	PresetLoose    = "loose"
)

// Config selects which strategies run and how strict fuzzy matching is.
type Config struct {
	FuzzyThreshold              float64 `json:"fuzzy_threshold" validate:"gte=0,lte=1"`
	CheckExactMatch             bool    `json:"check_exact_match"`
	CheckCaseInsensitive        bool    `json:"check_case_insensitive"`
	CheckNormalizedWhitespace   bool    `json:"check_normalized_whitespace"`
	CheckFuzzyMatch             bool    `json:"check_fuzzy_match"`
	CheckSameFrontDifferentBack bool    `json:"check_same_front_different_back"`
	CheckSameBackDifferentFront bool    `json:"check_same_back_different_front"`
	SameLanguageOnly            bool    `json:"same_language_only"`
}

// StandardConfig returns the default configuration.
func StandardConfig() Config {
	return Config{
		FuzzyThreshold:              0.85,
		CheckExactMatch:             true,
		CheckCaseInsensitive:        true,
		CheckNormalizedWhitespace:   true,
		CheckFuzzyMatch:             true,
		CheckSameFrontDifferentBack: true,
		CheckSameBackDifferentFront: false,
		SameLanguageOnly:            true,
	}
}

// StrictConfig lowers the fuzzy threshold and also flags synonym pairs.
func StrictConfig() Config {
	cfg := StandardConfig()
	cfg.FuzzyThreshold = 0.75
	cfg.CheckSameBackDifferentFront = true
	return cfg
}

// LooseConfig only reports exact, case and whitespace variants.
func LooseConfig() Config {
	cfg := StandardConfig()
	cfg.CheckFuzzyMatch = false
	cfg.CheckSameFrontDifferentBack = false
	cfg.CheckSameBackDifferentFront = false
	return cfg
}

// PresetByName resolves a preset name. An empty name means standard.
func PresetByName(name string) (Config, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PresetStandard:
		return StandardConfig(), nil
	case PresetStrict:
		return StrictConfig(), nil
	case PresetLoose:
		return LooseConfig(), nil
	default:
		return Config{}, fmt.Errorf("unknown duplicate detection preset %q", name)
	}
}

var validate = validator.New()

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid duplicate detection config: %w", err)
	}
	return nil
}
