package discover

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/fwojciec/opra"
)

// CustodianTitle is the title given to scraped custodian records.
const CustodianTitle = "Municipal Clerk / OPRA Custodian"

var _ opra.CustodianFinder = (*CustodianFinder)(nil)

// CustodianFinder scrapes clerk contact details from search snippets.
type CustodianFinder struct {
	Searcher opra.WebSearcher
	Logger   *slog.Logger
}

// FindCustodian implements opra.CustodianFinder. Results are best effort:
// nil is returned when no email or phone number turns up.
func (f *CustodianFinder) FindCustodian(ctx context.Context, m *opra.Municipality) (*opra.Custodian, error) {
	query := m.Name + " New Jersey municipal clerk contact OPRA custodian email phone"
	results, err := f.Searcher.Search(ctx, query, opra.SearchQueryOptions{MaxResults: 3})
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	for _, r := range results {
		b.WriteString(r.Title)
		b.WriteByte('\n')
		b.WriteString(r.Content)
		b.WriteByte('\n')
	}

	c := ExtractCustodian(b.String())
	if c == nil {
		loggerOrDiscard(f.Logger).Debug("no custodian contact found", "municipality", m.Name)
		return nil, nil
	}
	c.MunicipalityID = m.ID
	return c, nil
}

var (
	emailRE = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phoneRE = regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	nameRE  = regexp.MustCompile(`(?:[Cc]lerk|[Cc]ustodian)[:\s]+([A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+)*)`)
)

// nameStopwords are capitalized words that follow "Clerk" without being a
// person's name.
var nameStopwords = map[string]bool{
	"Office":      true,
	"Contact":     true,
	"Department":  true,
	"Email":       true,
	"Phone":       true,
	"Of":          true,
	"The":         true,
	"Municipal":   true,
	"Township":    true,
	"Borough":     true,
	"City":        true,
	"Records":     true,
	"Information": true,
}

// ExtractCustodian pulls a clerk's contact details out of free text.
// Returns nil when the text carries neither an email nor a phone number.
func ExtractCustodian(text string) *opra.Custodian {
	email := emailRE.FindString(text)
	phone := strings.TrimSpace(phoneRE.FindString(text))
	if email == "" && phone == "" {
		return nil
	}

	return &opra.Custodian{
		Name:   custodianName(text),
		Title:  CustodianTitle,
		Email:  email,
		Phone:  phone,
		Active: true,
	}
}

func custodianName(text string) string {
	for _, m := range nameRE.FindAllStringSubmatch(text, -1) {
		words := strings.Fields(m[1])
		var kept []string
		for _, w := range words {
			if nameStopwords[w] {
				break
			}
			kept = append(kept, w)
		}
		if len(kept) >= 2 {
			return strings.Join(kept, " ")
		}
	}
	return opra.DefaultCustodianName
}
