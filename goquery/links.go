package goquery

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/opra"
)

var _ opra.LinkFinder = (*LinkFinder)(nil)

// LinkFinder ranks anchors on a municipal page by how likely they lead to
// the rent control ordinance.
type LinkFinder struct{}

// NewLinkFinder creates a new LinkFinder.
func NewLinkFinder() *LinkFinder {
	return &LinkFinder{}
}

// Anchor text bonuses on top of opra.ScoreURL.
const (
	rentTextBonus    = 30
	chapterTextBonus = 10
)

var (
	rentText    = regexp.MustCompile(`(?i)rent\s+(control|leveling|stabilization)|rent\s+board`)
	chapterText = regexp.MustCompile(`(?i)\b(chapter|ordinance|code)\b`)
)

// FindOrdinanceLinks extracts anchors from html, resolves them against
// baseURL and scores them. Unlike page crawling, links to other hosts are
// kept because municipal sites usually link out to their code publisher.
func (f *LinkFinder) FindOrdinanceLinks(html, baseURL, municipality string) ([]opra.Link, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, opra.Errorf(opra.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, opra.Errorf(opra.EINVALID, "failed to parse HTML: %v", err)
	}

	seen := make(map[string]int)
	var links []opra.Link

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if href == "" || isNonHTTPLink(href) {
			return
		}

		resolved := resolveURL(base, href)
		if resolved == "" {
			return
		}

		text := strings.Join(strings.Fields(sel.Text()), " ")
		score := scoreLink(resolved, text, municipality)
		if score <= 0 {
			return
		}

		link := opra.Link{URL: resolved, Text: text, Score: score}
		if idx, ok := seen[resolved]; ok {
			if score > links[idx].Score {
				links[idx] = link
			}
			return
		}
		seen[resolved] = len(links)
		links = append(links, link)
	})

	sort.SliceStable(links, func(i, j int) bool {
		return links[i].Score > links[j].Score
	})
	return links, nil
}

func scoreLink(link, text, municipality string) int {
	if !opra.IsLikelyOrdinanceURL(link) && !rentText.MatchString(text) {
		return 0
	}
	score := opra.ScoreURL(link, municipality)
	if rentText.MatchString(text) {
		score += rentTextBonus
	}
	if chapterText.MatchString(text) {
		score += chapterTextBonus
	}
	return score
}

// resolveURL resolves href against base with the fragment stripped.
// Returns empty string for unparseable or self-referential links.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}

	result := resolved.String()
	baseNoFragment := *base
	baseNoFragment.Fragment = ""
	if result == baseNoFragment.String() {
		return ""
	}
	return result
}

func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
