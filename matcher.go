package opra

import (
	"fmt"
	"regexp"
	"strings"
)

// municipalityAliases maps common abbreviations and misspellings to the
// official municipality name.
var municipalityAliases = map[string]string{
	"mt laurel":   "Mount Laurel",
	"mt holly":    "Mount Holly",
	"n brunswick": "North Brunswick",
	"s brunswick": "South Brunswick",
	"e brunswick": "East Brunswick",
	"w windsor":   "West Windsor",
	"e windsor":   "East Windsor",
	"summitt":     "Summit",
	"morristwon":  "Morristown",
}

// MunicipalityTypes are the forms of municipal government in New Jersey.
var MunicipalityTypes = []string{"City", "Township", "Borough", "Town", "Village"}

// wrongStates are neighbouring states whose same-named towns commonly
// pollute search results.
var wrongStates = []string{"delaware", "pennsylvania", "new york", "connecticut", "maryland"}

var (
	njRE         = regexp.MustCompile(`\bnj\b`)
	whitespaceRE = regexp.MustCompile(`\s+`)
)

// NormalizeMunicipalityName resolves known aliases and trims whitespace.
func NormalizeMunicipalityName(name string) string {
	name = strings.TrimSpace(whitespaceRE.ReplaceAllString(name, " "))
	if official, ok := municipalityAliases[strings.ToLower(name)]; ok {
		return official
	}
	return name
}

// Slugify lowercases name and joins its words with hyphens.
func Slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

// MunicipalityMatch is the outcome of checking text against a jurisdiction.
type MunicipalityMatch struct {
	IsMatch    bool     `json:"isMatch"`
	Confidence int      `json:"confidence"`
	Score      int      `json:"score"`
	Issues     []string `json:"issues"`
}

// MatchMunicipality checks whether text pertains to the named New Jersey
// municipality. County is optional.
func MatchMunicipality(text, name, county string) MunicipalityMatch {
	lower := strings.ToLower(text)
	target := strings.ToLower(NormalizeMunicipalityName(name))
	var issues []string
	score := 0

	if target != "" && strings.Contains(lower, target) {
		score += 30
	} else {
		issues = append(issues, "Municipality name not found in content")
		score -= 50
	}

	hasNJ := strings.Contains(lower, "new jersey") || njRE.MatchString(lower)
	if hasNJ {
		score += 20
	} else {
		issues = append(issues, "No New Jersey reference found")
		score -= 30
	}

	if county = strings.TrimSpace(county); county != "" {
		if strings.Contains(lower, strings.ToLower(county)+" county") {
			score += 25
		} else {
			issues = append(issues, fmt.Sprintf("County %q not found", county))
			score -= 10
		}
	}

	if !strings.Contains(lower, "new jersey") {
		for _, state := range wrongStates {
			if strings.Contains(lower, state) {
				issues = append(issues, fmt.Sprintf("Content appears to be for %s, not New Jersey", state))
				score -= 100
				return newMunicipalityMatch(score, issues)
			}
		}
	}

	if target != "" {
		for _, typ := range MunicipalityTypes {
			t := strings.ToLower(typ)
			if strings.Contains(lower, target+" "+t) || strings.Contains(lower, t+" of "+target) {
				score += 15
				break
			}
		}
	}

	return newMunicipalityMatch(score, issues)
}

func newMunicipalityMatch(score int, issues []string) MunicipalityMatch {
	return MunicipalityMatch{
		IsMatch:    score > 0,
		Confidence: max(0, min(100, score)),
		Score:      score,
		Issues:     issues,
	}
}

// ScoreURL rates how authoritative url is as a source for the named
// municipality's code.
func ScoreURL(url, name string) int {
	lower := strings.ToLower(url)
	slug := Slugify(NormalizeMunicipalityName(name))
	score := 0

	if slug != "" && strings.Contains(lower, slug) {
		score += 30
	}

	switch {
	case strings.Contains(lower, "ecode360.com"):
		score += 40
		if slug != "" && strings.Contains(lower, "/nj/"+slug) {
			score += 30
		}
	case strings.Contains(lower, "municode.com"):
		score += 40
	case strings.Contains(lower, "generalcode.com"):
		score += 35
	}

	if strings.Contains(lower, ".gov") {
		score += 25
		if slug != "" && strings.Contains(lower, slug+".nj.us") {
			score += 40
		}
	}

	if strings.Contains(lower, "/nj/") || strings.Contains(lower, "newjersey") {
		score += 15
	}

	for _, seg := range []string{"/ny/", "/pa/", "/de/", "/ct/"} {
		if strings.Contains(lower, seg) {
			score -= 50
			break
		}
	}

	if strings.HasSuffix(strings.SplitN(lower, "?", 2)[0], ".pdf") {
		score += 10
	}

	return score
}

// codePublishers host codified municipal ordinances.
var codePublishers = []string{"ecode360.com", "municode.com", "generalcode.com", "codepublishing.com"}

// IsLikelyOrdinanceURL reports whether url plausibly hosts ordinance text.
func IsLikelyOrdinanceURL(url string) bool {
	if IsCodePublisherURL(url) {
		return true
	}
	lower := strings.ToLower(url)
	if strings.Contains(lower, ".gov") &&
		(strings.Contains(lower, "ordinance") || strings.Contains(lower, "code") || strings.Contains(lower, "chapter")) {
		return true
	}
	if strings.Contains(lower, ".pdf") &&
		(strings.Contains(lower, "ordinance") || strings.Contains(lower, "rent")) {
		return true
	}
	return false
}

// IsCodePublisherURL reports whether url belongs to a municipal code publisher.
func IsCodePublisherURL(url string) bool {
	lower := strings.ToLower(url)
	for _, p := range codePublishers {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// BuildSearchQueries returns search reformulations for a municipality's rent
// control ordinance, most general first.
func BuildSearchQueries(name, county string) []string {
	name = NormalizeMunicipalityName(name)
	county = strings.TrimSpace(county)

	queries := []string{
		fmt.Sprintf(`"%s" New Jersey rent control ordinance full text`, name),
	}
	if county != "" {
		queries = append(queries,
			fmt.Sprintf(`"%s" "%s County" NJ municipal code chapter rent control stabilization`, name, county))
	}
	for _, typ := range MunicipalityTypes {
		queries = append(queries,
			fmt.Sprintf(`"%s %s" "New Jersey" rent control ordinance municipal code`, name, typ))
	}
	queries = append(queries,
		fmt.Sprintf(`site:ecode360.com "%s" NJ rent control`, name),
		fmt.Sprintf(`site:municode.com "%s" New Jersey rent control`, name),
		fmt.Sprintf(`"%s" site:nj.us rent control ordinance`, name),
		fmt.Sprintf(`"%s" "New Jersey" rent control ordinance filetype:pdf`, name),
	)
	return queries
}
