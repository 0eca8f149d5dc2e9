package main

import (
	"fmt"

	"github.com/fwojciec/opra"
)

// Run executes the discover command.
func (c *DiscoverCmd) Run(deps *Dependencies) error {
	out, err := deps.Discovery.DiscoverAndStore(deps.Ctx, opra.DiscoverRequest{
		MunicipalityName: c.Name,
		County:           c.County,
		MunicipalityID:   c.MunicipalityID,
	})
	if out != nil && out.Result != nil && err != nil {
		for _, reason := range out.Result.Reasoning {
			fmt.Fprintf(deps.Stderr, "  %s\n", reason)
		}
	}
	if err != nil {
		return printError(deps, err)
	}

	o := out.Ordinance
	fmt.Fprintf(deps.Stdout, "Found %s for %s (%s strategy, %s confidence)\n",
		o.Title, out.Municipality.Name, out.Result.Strategy, o.Confidence)
	fmt.Fprintf(deps.Stdout, "  Ordinance ID: %s\n", o.ID)
	fmt.Fprintf(deps.Stdout, "  Source:       %s\n", o.SourceURL)
	if o.Code != "" {
		fmt.Fprintf(deps.Stdout, "  Code:         %s\n", o.Code)
	}
	if cu := out.Custodian; cu != nil {
		fmt.Fprintf(deps.Stdout, "  Custodian:    %s", cu.Name)
		if cu.Email != "" {
			fmt.Fprintf(deps.Stdout, " <%s>", cu.Email)
		}
		if cu.Phone != "" {
			fmt.Fprintf(deps.Stdout, " %s", cu.Phone)
		}
		fmt.Fprintln(deps.Stdout)
	}
	fmt.Fprintf(deps.Stdout, "Next: opra process %s\n", o.ID)
	return nil
}
