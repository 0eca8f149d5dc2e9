package opra

import (
	"regexp"
	"strings"
)

// Source validation thresholds. A score above ValidScoreThreshold is a
// usable ordinance; above HighScoreThreshold it is high confidence.
const (
	ValidScoreThreshold = 50
	HighScoreThreshold  = 80
)

// Content length bounds used when scoring a source.
const (
	MinSourceLength  = 1000
	LongSourceLength = 2000
)

var (
	rentControlRE     = regexp.MustCompile(`(?i)rent (control|stabilization|regulation)`)
	legalStructureRE  = regexp.MustCompile(`(?i)(?:section|article|chapter|§)\s*\d+`)
	suspiciousMarkers = []struct{ marker, issue string }{
		{"search results", "Contains search results text"},
		{"no results found", `Contains "no results found"`},
		{"cookie policy", "Contains website navigation/policy text"},
		{"page not found", `Contains "page not found"`},
		{"404", "Contains 404 marker"},
	}
)

// SourceValidation is the outcome of scoring text as a rent control ordinance.
type SourceValidation struct {
	Valid      bool       `json:"isValid"`
	Confidence Confidence `json:"confidence"`
	Score      int        `json:"score"`
	Issues     []string   `json:"issues"`
}

// ValidateSource scores text for how likely it is a rent control ordinance.
func ValidateSource(text string) SourceValidation {
	lower := strings.ToLower(text)
	var issues []string

	hasRentControl := rentControlRE.MatchString(text)
	if !hasRentControl {
		issues = append(issues, "No rent control keywords found")
	}
	hasStructure := legalStructureRE.MatchString(text)
	if !hasStructure {
		issues = append(issues, "No legal document structure found")
	}
	for _, s := range suspiciousMarkers {
		if strings.Contains(lower, s.marker) {
			issues = append(issues, s.issue)
		}
	}
	if len(text) < MinSourceLength {
		issues = append(issues, "Content too short (< 1000 chars)")
	}

	score := 0
	if hasRentControl {
		score += 40
	}
	if hasStructure {
		score += 30
	}
	if len(text) > LongSourceLength {
		score += 20
	}
	if len(issues) == 0 {
		score += 10
	}

	return SourceValidation{
		Valid:      score > ValidScoreThreshold,
		Confidence: ConfidenceForScore(score),
		Score:      score,
		Issues:     issues,
	}
}

// ConfidenceForScore maps a validation score to a confidence tier.
func ConfidenceForScore(score int) Confidence {
	switch {
	case score > HighScoreThreshold:
		return ConfidenceHigh
	case score > ValidScoreThreshold:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// LooksLikeSearchStub reports whether text is a search-engine results page
// rather than a document.
func LooksLikeSearchStub(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "search results") || strings.Contains(lower, "no results found")
}
