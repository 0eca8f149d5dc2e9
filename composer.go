package opra

import (
	"fmt"
	"strings"
	"time"
)

// RequestDateLayout formats the date at the top of a request letter.
const RequestDateLayout = "January 2, 2006"

// requestClosing is the legal boilerplate ending every request.
const requestClosing = `**Time Period**: Please provide records from the past three (3) years, or since the effective date of the current rent control ordinance, whichever is shorter.

**Format Preference**: Electronic copies via email are preferred when available. For records that exist only in paper format, please advise of the cost for copies.

**Fee Waiver Request**: As this request is in the public interest and will contribute to public understanding of governmental operations, I request a waiver of any fees associated with this request. If fees cannot be waived, please inform me of the cost before processing this request if it exceeds $25.

If any portion of this request is denied, please provide the specific legal basis for each denial, as required by N.J.S.A. 47:1A-5(g).

I understand that a response is required within seven (7) business days pursuant to N.J.S.A. 47:1A-5(i). If you need clarification on any aspect of this request, please contact me promptly.

Thank you for your assistance with this request.

Sincerely,

[Requestor Name]
[Contact Information]`

// closingMarker is where additional provisions are inserted.
const closingMarker = "**Time Period**"

// RequestData is everything needed to compose a request letter.
type RequestData struct {
	// Date printed in the header. It is the only time-dependent input.
	Date time.Time

	Municipality *Municipality
	Ordinance    *Ordinance
	Custodian    *Custodian // optional

	SelectedCategories []string
	RecordsSummary     RecordsSummary
}

// Compose assembles the full request text. Output depends only on data, so
// identical inputs produce identical bytes.
func Compose(t *Taxonomy, data RequestData) string {
	return RenderSections(BuildSections(t, data))
}

// ComposeCustomized composes a request and lists provisions as additional
// numbered records ahead of the closing.
func ComposeCustomized(t *Taxonomy, data RequestData, provisions []string) string {
	text := Compose(t, data)
	if len(provisions) == 0 {
		return text
	}

	var b strings.Builder
	b.WriteString("\n\n**Additional Records Based on Specific Ordinance Provisions**:\n\n")
	for i, p := range provisions {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s", i+1, p)
	}
	b.WriteString("\n\n")

	i := strings.Index(text, closingMarker)
	if i < 0 {
		return text + b.String()
	}
	return text[:i] + b.String() + text[i:]
}

// BuildSections returns the editable sections of a request: a header, one
// section per known selected category in selection order, and a footer.
// Unknown category IDs are skipped.
func BuildSections(t *Taxonomy, data RequestData) []RequestSection {
	sections := []RequestSection{{
		ID:      "header",
		Kind:    SectionHeader,
		Title:   "Header",
		Content: composeHeader(data) + composeIntroduction(data),
	}}

	for _, id := range data.SelectedCategories {
		c, ok := t.Find(id)
		if !ok {
			continue
		}
		sections = append(sections, RequestSection{
			ID:         "category-" + c.ID,
			Kind:       SectionCategory,
			Title:      c.Name,
			Content:    composeBullets(c, data.RecordsSummary[c.ID]),
			CategoryID: c.ID,
		})
	}

	return append(sections, RequestSection{
		ID:      "footer",
		Kind:    SectionFooter,
		Title:   "Closing",
		Content: requestClosing,
	})
}

// RenderSections renders sections into request text. Category and custom
// sections are numbered in order.
func RenderSections(sections []RequestSection) string {
	var b strings.Builder
	n := 1
	for _, s := range sections {
		switch s.Kind {
		case SectionCategory, SectionCustom:
			fmt.Fprintf(&b, "%d. **%s**\n\n", n, s.Title)
			b.WriteString(s.Content)
			if !strings.HasSuffix(s.Content, "\n") {
				b.WriteString("\n")
			}
			b.WriteString("\n")
			n++
		default:
			b.WriteString(s.Content)
		}
	}
	return b.String()
}

func composeHeader(data RequestData) string {
	name, title := DefaultCustodianName, DefaultCustodianTitle
	var address, email string
	if c := data.Custodian; c != nil {
		if c.Name != "" {
			name = c.Name
		}
		if c.Title != "" {
			title = c.Title
		}
		address, email = c.Address, c.Email
	}

	municipality := ""
	if data.Municipality != nil {
		municipality = data.Municipality.Name
	}
	if address == "" {
		address = municipality + ", NJ"
	}
	via := "Via Email"
	if email != "" {
		via += ": " + email
	}

	return fmt.Sprintf("%s\n\n%s\n%s\n%s Municipality\n%s\n\n%s\n\nRe: OPRA Request - Rent Control Ordinance Records\n\nDear %s:\n\n",
		data.Date.Format(RequestDateLayout), name, title, municipality, address, via, name)
}

func composeIntroduction(data RequestData) string {
	municipality, ref := "", ""
	if data.Municipality != nil {
		municipality = data.Municipality.Name
	}
	if data.Ordinance != nil && data.Ordinance.Code != "" {
		ref = " (" + data.Ordinance.Code + ")"
	}
	return fmt.Sprintf("Pursuant to the Open Public Records Act (OPRA), N.J.S.A. 47:1A-1 et seq., I hereby request access to inspect and/or obtain copies of the following government records relating to %s's Rent Control Ordinance%s:\n\n",
		municipality, ref)
}

func composeBullets(c Category, records []string) string {
	var b strings.Builder
	if len(records) == 0 {
		fmt.Fprintf(&b, "   • All records related to %s\n", strings.ToLower(c.Description))
		return b.String()
	}
	for _, r := range records {
		fmt.Fprintf(&b, "   • %s\n", r)
	}
	return b.String()
}
