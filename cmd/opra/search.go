package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/opra"
)

// excerptLength caps the section text printed per result.
const excerptLength = 160

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	results, err := opra.SearchSimilar(deps.Ctx, deps.Retriever, c.Query, c.OrdinanceID, c.Limit)
	if err != nil {
		return printError(deps, err)
	}

	if len(results) == 0 {
		fmt.Fprintln(deps.Stdout, "No matching sections. Run 'opra process' on the ordinance first.")
		return nil
	}

	for _, r := range results {
		heading := r.SectionTitle
		if r.SectionNumber != "" {
			heading = strings.TrimSpace("§ " + r.SectionNumber + " " + r.SectionTitle)
		}
		if heading == "" {
			heading = r.ChunkID
		}
		fmt.Fprintf(deps.Stdout, "%.2f  %s  %s\n", r.Similarity, r.OrdinanceID, heading)
		fmt.Fprintf(deps.Stdout, "      %s\n", excerpt(r.Content, excerptLength))
	}
	return nil
}

// excerpt flattens text onto one line and cuts it to n runes.
func excerpt(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
