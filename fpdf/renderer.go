// Package fpdf renders request letters as Letter-size PDFs.
package fpdf

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/fwojciec/opra"
	"github.com/go-pdf/fpdf"
)

var _ opra.Renderer = (*Renderer)(nil)

// LegalNotice is printed after the request body.
const LegalNotice = "This request is made pursuant to the Open Public Records Act (OPRA), N.J.S.A. 47:1A-1 et seq. A response is required within seven (7) business days pursuant to N.J.S.A. 47:1A-5(i)."

// Page geometry in points.
const (
	marginX      = 60.0
	marginTop    = 80.0
	marginBottom = 80.0
	lineHeight   = 16.0
)

var (
	categoryLineRE = regexp.MustCompile(`^(\d+)\.\s+\*\*(.+?)\*\*\s*$`)
	boldRE         = regexp.MustCompile(`\*\*(.+?)\*\*`)
)

// Renderer renders requests with fpdf core fonts.
type Renderer struct {
	compress bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithCompression toggles stream compression. Enabled by default.
func WithCompression(on bool) Option {
	return func(r *Renderer) {
		r.compress = on
	}
}

// NewRenderer creates a new Renderer.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{compress: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render writes req as a PDF to w. Output is deterministic for a given
// request because document dates come from the request timestamps.
func (r *Renderer) Render(w io.Writer, req *opra.Request, m *opra.Municipality) error {
	if req == nil || m == nil {
		return opra.Errorf(opra.EINVALID, "request and municipality required")
	}
	if strings.TrimSpace(req.Text) == "" {
		return opra.Errorf(opra.EINVALID, "request text is empty")
	}

	pdf := fpdf.New("P", "pt", "Letter", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	dated := req.CreatedAt
	if dated.IsZero() {
		dated = time.Unix(0, 0).UTC()
	}
	dateLine := dated.Format("January 2, 2006")

	pdf.SetCompression(r.compress)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(dated)
	pdf.SetModificationDate(dated)
	pdf.SetTitle("OPRA Request - "+m.Name, true)
	pdf.SetSubject("Rent Control Ordinance Records Request", true)
	pdf.SetKeywords("OPRA, rent control, municipal records", true)
	pdf.SetCreator("opra", true)
	pdf.SetMargins(marginX, marginTop, marginX)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.AliasNbPages("")

	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() == 1 {
			return
		}
		pdf.SetY(30)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.SetTextColor(148, 163, 184)
		pdf.CellFormat(0, 12, tr(fmt.Sprintf("OPRA Request - %s - Page %d of {nb}", m.Name, pdf.PageNo())), "", 0, "C", false, 0, "")
		pdf.SetY(marginTop)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-50)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.SetTextColor(148, 163, 184)
		pdf.CellFormat(0, 12, tr("Generated on "+dateLine), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 12, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(30, 41, 59)
	pdf.CellFormat(0, 24, "OPEN PUBLIC RECORDS ACT REQUEST", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(51, 65, 85)
	pdf.CellFormat(0, 20, tr(m.Name+", New Jersey"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, lineHeight, tr(dateLine), "", 1, "L", false, 0, "")
	if req.Number != "" {
		pdf.CellFormat(0, lineHeight, tr("Request No. "+req.Number), "", 1, "L", false, 0, "")
	}

	y := pdf.GetY() + 10
	pdf.SetDrawColor(226, 232, 240)
	pdf.SetLineWidth(1)
	pdf.Line(marginX, y, 612-marginX, y)
	pdf.Ln(20)

	writeBody(pdf, tr, req.Text)

	pdf.Ln(lineHeight)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(51, 65, 85)
	pdf.CellFormat(0, 20, "Legal Notice", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(100, 116, 139)
	pdf.MultiCell(0, 12, tr(LegalNotice), "", "L", false)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("rendering request PDF: %w", err)
	}
	return nil
}

func writeBody(pdf *fpdf.Fpdf, tr func(string) string, text string) {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			pdf.Ln(lineHeight / 2)
		case categoryLineRE.MatchString(trimmed):
			m := categoryLineRE.FindStringSubmatch(trimmed)
			pdf.Ln(6)
			pdf.SetFont("Helvetica", "BU", 13)
			pdf.SetTextColor(15, 23, 42)
			pdf.MultiCell(0, lineHeight, tr(m[1]+". "+m[2]), "", "L", false)
			pdf.Ln(2)
		case strings.HasPrefix(trimmed, "•"):
			pdf.SetFont("Helvetica", "", 11)
			pdf.SetTextColor(51, 65, 85)
			pdf.SetX(marginX + 20)
			pdf.MultiCell(0, lineHeight, tr(boldRE.ReplaceAllString(trimmed, "$1")), "", "L", false)
		default:
			pdf.SetFont("Helvetica", "", 11)
			pdf.SetTextColor(71, 85, 105)
			pdf.MultiCell(0, lineHeight, tr(boldRE.ReplaceAllString(trimmed, "$1")), "", "L", false)
		}
	}
}
