// Package htmltomarkdown turns extracted ordinance HTML into plain
// Markdown-flavoured text whose section headings start at the beginning
// of a line, which is what the chunker keys on.
package htmltomarkdown

import (
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/opra"
)

var _ opra.Converter = (*Converter)(nil)

var (
	headingRE    = regexp.MustCompile(`(?m)^#{1,6}[ \t]+`)
	escapeRE     = regexp.MustCompile(`\\([\\.\-#*_\[\]()+!>|~` + "`" + `])`)
	blankLinesRE = regexp.MustCompile(`\n{3,}`)
)

// Converter wraps html-to-markdown.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter. Tables are kept because fee and
// rent increase schedules are published as tables.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert transforms HTML into text. Heading markers and Markdown escapes
// are removed so "## § 155-1. Definitions" becomes "§ 155-1. Definitions".
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", opra.Errorf(opra.EINVALID, "empty HTML input")
	}

	md, err := c.conv.ConvertString(html)
	if err != nil {
		return "", err
	}

	return Clean(md), nil
}

// Clean normalizes converted Markdown for chunking.
func Clean(md string) string {
	md = strings.ReplaceAll(md, "\r\n", "\n")
	md = strings.ReplaceAll(md, " ", " ")
	md = headingRE.ReplaceAllString(md, "")
	md = escapeRE.ReplaceAllString(md, "$1")
	md = blankLinesRE.ReplaceAllString(md, "\n\n")
	return strings.TrimSpace(md)
}
