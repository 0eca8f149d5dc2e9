package main

import (
	"fmt"
)

// Run executes the process command.
func (c *ProcessCmd) Run(deps *Dependencies) error {
	res, err := deps.Processor.Process(deps.Ctx, c.OrdinanceID)
	if err != nil {
		return printError(deps, err)
	}

	if res.AlreadyProcessed {
		fmt.Fprintf(deps.Stdout, "Ordinance %s already processed (%d chunks)\n", res.OrdinanceID, res.ChunksCreated)
		return nil
	}
	fmt.Fprintf(deps.Stdout, "Processed ordinance %s: %d chunks", res.OrdinanceID, res.ChunksCreated)
	if res.Tokens > 0 {
		fmt.Fprintf(deps.Stdout, ", %d tokens", res.Tokens)
	}
	fmt.Fprintln(deps.Stdout)
	return nil
}
