package discover

import (
	"regexp"
	"sort"
	"strings"

	"github.com/fwojciec/opra"
)

// candidate is a search hit scored for how likely it holds the ordinance.
type candidate struct {
	opra.WebResult
	score int
}

var sectionSignRE = regexp.MustCompile(`§\s*\d+`)

// contentScore rates a search hit's title and snippet.
func contentScore(r opra.WebResult) int {
	title := strings.ToLower(r.Title)
	content := strings.ToLower(r.Content)
	score := 0

	if strings.Contains(title, "rent control") {
		score += 10
	}
	if strings.Contains(title, "chapter") || strings.Contains(title, "article") {
		score += 5
	}
	if strings.Contains(title, "ordinance") {
		score += 3
	}

	if strings.Contains(content, "rent control") {
		score += 30
	}
	if strings.Contains(content, "section") && strings.Contains(content, "shall") {
		score += 20
	}
	if sectionSignRE.MatchString(content) {
		score += 5
	}
	if strings.Contains(content, "definitions") {
		score += 3
	}
	if len(content) > 500 {
		score += 10
	}
	if opra.LooksLikeSearchStub(content) {
		score -= 50
	}
	return score
}

// rank scores results by URL authority, content heuristics and
// municipality match, best first. Ties keep search order.
func rank(results []opra.WebResult, name, county string) []candidate {
	out := make([]candidate, 0, len(results))
	for _, r := range results {
		m := opra.MatchMunicipality(matchText(r.Title, r.Content, r.URL), name, county)
		out = append(out, candidate{
			WebResult: r,
			score:     opra.ScoreURL(r.URL, name) + contentScore(r) + m.Score,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].score > out[j].score
	})
	return out
}

// matchText joins the fields checked against the target municipality.
func matchText(title, content, url string) string {
	return title + "\n" + url + "\n" + content
}

// dedupe drops repeated URLs, keeping the first occurrence.
func dedupe(results []opra.WebResult) []opra.WebResult {
	seen := make(map[string]bool, len(results))
	out := results[:0:0]
	for _, r := range results {
		key := strings.TrimRight(strings.ToLower(r.URL), "/")
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

var (
	codeRE  = regexp.MustCompile(`(?i)(?:chapter|article|§)\s*([\d-]+)`)
	titleRE = regexp.MustCompile(`(?i)(?:chapter|article|§)\s*[\d-]+[:\s]+([^.\n]+)`)
	siteRE  = regexp.MustCompile(`\s*[|-]\s.*$`)
)

// ordinanceCode returns the chapter or section reference, e.g. "§ 155".
func ordinanceCode(content string) string {
	m := codeRE.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	return "§ " + m[1]
}

// ordinanceTitle picks a title from the ordinance heading, then the page
// title, then a generic one.
func ordinanceTitle(pageTitle, content, municipality string) string {
	if m := titleRE.FindStringSubmatch(content); m != nil {
		if t := strings.TrimSpace(m[1]); t != "" && len(t) <= 120 {
			return t
		}
	}
	if t := strings.TrimSpace(siteRE.ReplaceAllString(pageTitle, "")); t != "" {
		return t
	}
	return municipality + " Rent Control Ordinance"
}
