// Package discover locates a municipality's rent control ordinance on the
// web using a chain of increasingly expensive strategies, and stores what
// it finds.
package discover

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/fwojciec/opra"
	"golang.org/x/sync/errgroup"
)

// Defaults for the agent strategy.
const (
	DefaultMaxCandidates = 5
	DefaultConcurrency   = 3
	DefaultSearchResults = 5
)

var _ opra.Discoverer = (*Discoverer)(nil)

// Discoverer runs the fast, agent and answer strategies in order and stops
// at the first result of at least medium confidence.
type Discoverer struct {
	Searcher opra.WebSearcher
	Answers  opra.AnswerEngine   // optional
	Judge    opra.OrdinanceJudge // optional
	Pages    opra.PageLoader     // optional

	// Links and HTML let the agent follow one hop from a municipal page
	// to the code publisher. Both are optional.
	Links opra.LinkFinder
	HTML  opra.Fetcher

	// NewURLSet returns the set shared by the strategies of one run.
	// Defaults to an exact-match set.
	NewURLSet func() opra.URLSet

	MaxCandidates int
	Concurrency   int
	Logger        *slog.Logger
}

// run is the state of one Discover call.
type run struct {
	name   string
	county string
	seen   opra.URLSet
	pages  map[string]*opra.Page
}

type strategy struct {
	name opra.Strategy
	fn   func(ctx context.Context, r *run) *opra.DiscoveryResult
}

// Discover implements opra.Discoverer.
func (d *Discoverer) Discover(ctx context.Context, name, county string) (*opra.DiscoveryResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, opra.Errorf(opra.EINVALID, "municipality name required")
	}

	r := &run{
		name:   name,
		county: strings.TrimSpace(county),
		seen:   d.newURLSet(),
		pages:  make(map[string]*opra.Page),
	}
	overall := &opra.DiscoveryResult{Reasoning: []string{}}

	for _, s := range d.strategies() {
		if err := ctx.Err(); err != nil {
			return overall, err
		}

		res := s.fn(ctx, r)
		res.Strategy = s.name
		for _, reason := range res.Reasoning {
			overall.Reasoning = append(overall.Reasoning, fmt.Sprintf("[%s] %s", s.name, reason))
		}
		overall.Citations = append(overall.Citations, res.Citations...)

		d.logger().Info("discovery strategy",
			"strategy", s.name,
			"municipality", name,
			"success", res.Success,
			"confidence", res.Confidence,
			"url", res.URL,
		)

		if res.Acceptable() {
			res.Reasoning = overall.Reasoning
			return res, nil
		}
	}

	return overall, opra.Errorf(opra.ENOTFOUND, "no rent control ordinance found")
}

func (d *Discoverer) strategies() []strategy {
	return []strategy{
		{opra.StrategyFast, d.fast},
		{opra.StrategyAgent, d.agent},
		{opra.StrategyAnswer, d.answer},
	}
}

// fast takes the top hit of the first query.
func (d *Discoverer) fast(ctx context.Context, r *run) *opra.DiscoveryResult {
	res := &opra.DiscoveryResult{}
	query := opra.BuildSearchQueries(r.name, r.county)[0]

	results := d.search(ctx, query)
	if len(results) == 0 {
		res.Reasonf("no search results for %q", query)
		return res
	}

	top := rank(results, r.name, r.county)[0]

	title, content := top.Title, top.Content
	if opra.IsLikelyOrdinanceURL(top.URL) {
		title, content = d.expand(ctx, res, r, top.URL, title, content)
	}

	return d.accept(res, r, top.URL, title, content)
}

// agent runs every query reformulation, merges the hits and examines the
// best few candidates, asking the judge about borderline ones.
func (d *Discoverer) agent(ctx context.Context, r *run) *opra.DiscoveryResult {
	res := &opra.DiscoveryResult{}
	queries := opra.BuildSearchQueries(r.name, r.county)

	perQuery := make([][]opra.WebResult, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency())
	for i, q := range queries {
		g.Go(func() error {
			perQuery[i] = d.search(gctx, q)
			return nil
		})
	}
	_ = g.Wait()

	var merged []opra.WebResult
	for _, rs := range perQuery {
		merged = append(merged, rs...)
	}
	merged = dedupe(merged)
	if len(merged) == 0 {
		res.Reasonf("no results across %d queries", len(queries))
		return res
	}
	res.Reasonf("%d unique results across %d queries", len(merged), len(queries))

	examined := 0
	for _, c := range rank(merged, r.name, r.county) {
		if examined >= d.maxCandidates() || ctx.Err() != nil {
			break
		}
		if !r.seen.Add(c.URL) {
			continue
		}
		examined++

		title, content := c.Title, c.Content
		if d.Pages != nil && opra.IsLikelyOrdinanceURL(c.URL) {
			title, content = d.expand(ctx, res, r, c.URL, title, content)
		}

		m := opra.MatchMunicipality(matchText(title, content, c.URL), r.name, r.county)
		if !m.IsMatch {
			res.Reasonf("%s rejected: %s", c.URL, strings.Join(m.Issues, "; "))
			continue
		}

		v := opra.ValidateSource(content)
		if v.Valid {
			return success(res, c.URL, ordinanceTitle(title, content, r.name), content, v.Confidence)
		}
		if opra.LooksLikeSearchStub(content) {
			res.Reasonf("%s rejected: search results page", c.URL)
			continue
		}
		if u, t, text, ok := d.follow(ctx, res, r, c.URL); ok {
			fv := opra.ValidateSource(text)
			return success(res, u, ordinanceTitle(t, text, r.name), text, fv.Confidence)
		}
		if d.Judge == nil {
			res.Reasonf("%s failed validation: %s", c.URL, strings.Join(v.Issues, "; "))
			continue
		}

		verdict, err := d.Judge.JudgeOrdinance(ctx, content, c.URL, r.name, r.county)
		if err != nil {
			res.Reasonf("%s judge error: %v", c.URL, err)
			continue
		}
		if verdict.Valid {
			res.Reasonf("%s accepted by judge", c.URL)
			return success(res, c.URL, ordinanceTitle(title, content, r.name), content, judged(v.Confidence))
		}
		res.Reasonf("%s rejected by judge: %s", c.URL, truncate(verdict.Reasoning, 200))
	}

	res.Reasonf("no valid ordinance among %d candidates", examined)
	return res
}

// answer asks the answer engine and judges its synthesized content,
// falling back to the most authoritative citation.
func (d *Discoverer) answer(ctx context.Context, r *run) *opra.DiscoveryResult {
	res := &opra.DiscoveryResult{}
	if d.Answers == nil {
		res.Reasonf("answer engine not configured")
		return res
	}

	ans, err := d.Answers.Ask(ctx, answerQuestion(r.name, r.county))
	if err != nil {
		d.logger().Warn("answer engine failed", "municipality", r.name, "err", err)
		res.Reasonf("answer engine failed: %v", err)
		return res
	}
	res.Citations = ans.Citations
	res.Reasonf("answer engine returned %d citations", len(ans.Citations))

	cited := authoritativeCitations(ans.Citations, r.name)

	if ok, conf := d.judge(ctx, res, ans.Content, "", r); ok {
		u, title := "", r.name+" Rent Control Ordinance"
		if len(cited) > 0 {
			u, title = cited[0].URL, cited[0].Title
		} else if len(ans.Citations) > 0 {
			u, title = ans.Citations[0].URL, ans.Citations[0].Title
		}
		out := success(res, u, ordinanceTitle(title, ans.Content, r.name), ans.Content, conf)
		out.Citations = ans.Citations
		return out
	}

	if d.Pages == nil || len(cited) == 0 {
		res.Reasonf("no authoritative citation to fetch")
		return res
	}

	best := cited[0]
	if r.seen.Seen(best.URL) {
		res.Reasonf("%s already examined", best.URL)
		return res
	}
	r.seen.Add(best.URL)

	page, err := d.load(ctx, r, best.URL)
	if err != nil {
		res.Reasonf("fetching %s failed: %v", best.URL, err)
		return res
	}
	if ok, conf := d.judge(ctx, res, page.Content, best.URL, r); ok {
		title := page.Title
		if title == "" {
			title = best.Title
		}
		out := success(res, best.URL, ordinanceTitle(title, page.Content, r.name), page.Content, conf)
		out.Citations = ans.Citations
		return out
	}
	return res
}

// judge validates content with the ordinance judge, or heuristically when
// no judge is configured.
func (d *Discoverer) judge(ctx context.Context, res *opra.DiscoveryResult, content, sourceURL string, r *run) (bool, opra.Confidence) {
	v := opra.ValidateSource(content)
	if d.Judge == nil {
		if !v.Valid {
			res.Reasonf("content failed validation: %s", strings.Join(v.Issues, "; "))
		}
		return v.Valid, v.Confidence
	}
	if strings.TrimSpace(content) == "" {
		res.Reasonf("empty content")
		return false, opra.ConfidenceLow
	}

	verdict, err := d.Judge.JudgeOrdinance(ctx, content, sourceURL, r.name, r.county)
	if err != nil {
		res.Reasonf("judge error: %v", err)
		return false, opra.ConfidenceLow
	}
	if !verdict.Valid {
		res.Reasonf("judge rejected content: %s", truncate(verdict.Reasoning, 200))
		return false, opra.ConfidenceLow
	}
	return true, judged(v.Confidence)
}

// expand replaces a search snippet with the full page when the page is
// longer. Failures keep the snippet.
func (d *Discoverer) expand(ctx context.Context, res *opra.DiscoveryResult, r *run, u, title, content string) (string, string) {
	if d.Pages == nil {
		return title, content
	}
	page, err := d.load(ctx, r, u)
	if err != nil {
		res.Reasonf("fetching %s failed: %v", u, err)
		return title, content
	}
	if len(page.Content) <= len(content) {
		return title, content
	}
	if page.Title != "" {
		title = page.Title
	}
	return title, page.Content
}

// follow loads the best ordinance link on a page that is not itself the
// ordinance, and reports whether it validates.
func (d *Discoverer) follow(ctx context.Context, res *opra.DiscoveryResult, r *run, pageURL string) (string, string, string, bool) {
	if d.Links == nil || d.HTML == nil || d.Pages == nil {
		return "", "", "", false
	}
	html, err := d.HTML.Fetch(ctx, pageURL)
	if err != nil {
		d.logger().Warn("link fetch failed", "url", pageURL, "err", err)
		return "", "", "", false
	}
	links, err := d.Links.FindOrdinanceLinks(html, pageURL, r.name)
	if err != nil || len(links) == 0 {
		return "", "", "", false
	}
	link := links[0]
	if !r.seen.Add(link.URL) {
		return "", "", "", false
	}
	res.Reasonf("following %s from %s", link.URL, pageURL)

	page, err := d.load(ctx, r, link.URL)
	if err != nil {
		res.Reasonf("%s load failed: %v", link.URL, err)
		return "", "", "", false
	}
	if !opra.MatchMunicipality(matchText(page.Title, page.Content, link.URL), r.name, r.county).IsMatch {
		return "", "", "", false
	}
	if !opra.ValidateSource(page.Content).Valid {
		return "", "", "", false
	}
	title := page.Title
	if title == "" {
		title = link.Text
	}
	return link.URL, title, page.Content, true
}

// load fetches a page once per run. Later strategies reuse the result.
func (d *Discoverer) load(ctx context.Context, r *run, u string) (*opra.Page, error) {
	if page, ok := r.pages[u]; ok {
		return page, nil
	}
	page, err := d.Pages.Load(ctx, u)
	if err != nil {
		return nil, err
	}
	r.pages[u] = page
	return page, nil
}

// accept validates content found by the fast strategy. A page about another
// municipality is marked seen; one that merely fails validation is left for
// the agent to judge.
func (d *Discoverer) accept(res *opra.DiscoveryResult, r *run, u, title, content string) *opra.DiscoveryResult {
	m := opra.MatchMunicipality(matchText(title, content, u), r.name, r.county)
	if !m.IsMatch {
		r.seen.Add(u)
		res.Reasonf("%s rejected: %s", u, strings.Join(m.Issues, "; "))
		return res
	}
	v := opra.ValidateSource(content)
	if !v.Valid {
		res.Reasonf("%s failed validation (score %d): %s", u, v.Score, strings.Join(v.Issues, "; "))
		res.Confidence = v.Confidence
		return res
	}
	return success(res, u, ordinanceTitle(title, content, r.name), content, v.Confidence)
}

// search runs one query. Backend errors are logged and yield no results.
func (d *Discoverer) search(ctx context.Context, query string) []opra.WebResult {
	results, err := d.Searcher.Search(ctx, query, opra.SearchQueryOptions{MaxResults: DefaultSearchResults})
	if err != nil {
		d.logger().Warn("search failed", "query", query, "err", err)
		return nil
	}
	return results
}

func (d *Discoverer) newURLSet() opra.URLSet {
	if d.NewURLSet != nil {
		return d.NewURLSet()
	}
	return &urlSet{seen: make(map[string]struct{})}
}

func (d *Discoverer) maxCandidates() int {
	if d.MaxCandidates > 0 {
		return d.MaxCandidates
	}
	return DefaultMaxCandidates
}

func (d *Discoverer) concurrency() int {
	if d.Concurrency > 0 {
		return d.Concurrency
	}
	return DefaultConcurrency
}

func (d *Discoverer) logger() *slog.Logger {
	return loggerOrDiscard(d.Logger)
}

func success(res *opra.DiscoveryResult, u, title, content string, conf opra.Confidence) *opra.DiscoveryResult {
	res.Success = true
	res.URL = u
	res.Title = title
	res.Content = content
	res.Confidence = conf
	res.Reasonf("found ordinance with %s confidence at %s", conf, u)
	return res
}

// judged raises heuristic confidence to medium for judge-approved content.
func judged(c opra.Confidence) opra.Confidence {
	if c.AtLeast(opra.ConfidenceMedium) {
		return c
	}
	return opra.ConfidenceMedium
}

func answerQuestion(name, county string) string {
	where := name + ", New Jersey"
	if county != "" {
		where = fmt.Sprintf("%s, %s County, New Jersey", name, county)
	}
	return fmt.Sprintf("Find the rent control or rent leveling ordinance for %s. "+
		"Provide the full ordinance text including chapter and section numbers, "+
		"and cite the municipal code source (for example ecode360 or the municipality's website).", where)
}

// authoritativeCitations returns ordinance-like citations, best first.
func authoritativeCitations(cs []opra.Citation, name string) []opra.Citation {
	var out []opra.Citation
	for _, c := range cs {
		if c.URL != "" && opra.IsLikelyOrdinanceURL(c.URL) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return opra.ScoreURL(out[i].URL, name) > opra.ScoreURL(out[j].URL, name)
	})
	return out
}

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

// urlSet is an exact-match opra.URLSet.
type urlSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func (s *urlSet) Add(u string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[u]; ok {
		return false
	}
	s.seen[u] = struct{}{}
	return true
}

func (s *urlSet) Seen(u string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[u]
	return ok
}
