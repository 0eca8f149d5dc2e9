package opra

import "context"

// Page is a candidate ordinance page reduced to text.
type Page struct {
	URL     string
	Title   string
	Content string
}

// PageLoader retrieves a URL and returns its readable text.
// Implementations hide HTTP vs browser selection, PDF handling, retry logic,
// boilerplate removal and conversion.
type PageLoader interface {
	Load(ctx context.Context, url string) (*Page, error)
}

// Link is an anchor found on a page, ranked for how likely it leads to
// ordinance text.
type Link struct {
	URL   string
	Text  string
	Score int
}

// LinkFinder picks ordinance-looking links out of an HTML page.
type LinkFinder interface {
	// FindOrdinanceLinks returns links ordered by descending score. Links
	// scoring zero or below are dropped.
	FindOrdinanceLinks(html, baseURL, municipality string) ([]Link, error)
}
