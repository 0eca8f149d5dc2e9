package main

import (
	"fmt"
	"os"

	"github.com/fwojciec/opra"
)

// Run executes the compose command. Without --save the request is only
// previewed.
func (c *ComposeCmd) Run(deps *Dependencies) error {
	req := opra.ComposeRequest{
		OrdinanceID:          c.OrdinanceID,
		SelectedCategories:   c.Category,
		IncludeAllCategories: c.All,
		IncludeProvisions:    c.Provisions,
	}

	var out *opra.ComposedRequest
	var err error
	if c.Save {
		out, err = deps.Drafter.Generate(deps.Ctx, req)
	} else {
		out, err = deps.Drafter.Preview(deps.Ctx, req)
	}
	if err != nil {
		return printError(deps, err)
	}

	fmt.Fprintln(deps.Stdout, out.Text)

	if c.Output != "" {
		if len(out.PDF) == 0 {
			err := opra.Errorf(opra.EUNAVAILABLE, "PDF rendering not configured")
			return printError(deps, err)
		}
		if err := os.WriteFile(c.Output, out.PDF, 0o644); err != nil {
			return printError(deps, err)
		}
		fmt.Fprintf(deps.Stderr, "Wrote %s\n", c.Output)
	}

	if out.Request != nil {
		fmt.Fprintf(deps.Stderr, "Saved draft %s (%s)\n", out.Request.Number, out.Request.ID)
	}
	return nil
}
