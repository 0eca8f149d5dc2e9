package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/opra"
)

// Run executes the requests list command.
func (c *RequestsListCmd) Run(deps *Dependencies) error {
	filter := opra.RequestFilter{Limit: c.Limit}
	if c.Municipality != "" {
		filter.MunicipalityID = &c.Municipality
	}
	if c.Status != "" {
		status := opra.RequestStatus(strings.ToUpper(c.Status))
		if !status.Valid() {
			return printError(deps, opra.Errorf(opra.EINVALID, "invalid request status %q", c.Status))
		}
		filter.Status = &status
	}

	requests, err := deps.Requests.FindRequests(deps.Ctx, filter)
	if err != nil {
		return printError(deps, err)
	}

	if len(requests) == 0 {
		fmt.Fprintln(deps.Stdout, "No requests found. Use 'opra compose --save' to create one.")
		return nil
	}

	for _, r := range requests {
		fmt.Fprintf(deps.Stdout, "%s  %s  %-12s  %s\n", r.ID, r.Number, r.Status.Label(), r.UpdatedAt.Format("2006-01-02"))
	}
	return nil
}

// Run executes the requests show command.
func (c *RequestsShowCmd) Run(deps *Dependencies) error {
	r, err := deps.Requests.FindRequestByID(deps.Ctx, c.ID)
	if err != nil {
		return printError(deps, err)
	}

	fmt.Fprintf(deps.Stdout, "Request %s (%s)\n", r.Number, r.ID)
	fmt.Fprintf(deps.Stdout, "  Status:     %s\n", r.Status.Label())
	fmt.Fprintf(deps.Stdout, "  Ordinance:  %s\n", r.OrdinanceID)
	fmt.Fprintf(deps.Stdout, "  Categories: %s\n", strings.Join(r.Categories, ", "))
	if r.PDFURL != "" {
		fmt.Fprintf(deps.Stdout, "  PDF:        %s\n", r.PDFURL)
	}
	fmt.Fprintf(deps.Stdout, "\n%s\n", r.Text)
	return nil
}

// Run executes the requests delete command.
func (c *RequestsDeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return opra.Errorf(opra.EINVALID, "use --force to confirm deletion")
	}

	if err := deps.Requests.DeleteRequest(deps.Ctx, c.ID); err != nil {
		return printError(deps, err)
	}

	fmt.Fprintf(deps.Stdout, "Deleted request %s\n", c.ID)
	return nil
}

// Run executes the requests status command.
func (c *RequestsStatusCmd) Run(deps *Dependencies) error {
	status := opra.RequestStatus(strings.ToUpper(c.Status))
	if !status.Valid() {
		return printError(deps, opra.Errorf(opra.EINVALID, "invalid request status %q", c.Status))
	}

	r, err := deps.Requests.UpdateRequest(deps.Ctx, c.ID, opra.RequestUpdate{Status: &status})
	if err != nil {
		return printError(deps, err)
	}

	fmt.Fprintf(deps.Stdout, "Request %s is now %s\n", r.Number, r.Status.Label())
	return nil
}

// Run executes the requests finalize command.
func (c *RequestsFinalizeCmd) Run(deps *Dependencies) error {
	r, err := deps.Drafter.Finalize(deps.Ctx, c.ID)
	if err != nil {
		return printError(deps, err)
	}

	fmt.Fprintf(deps.Stdout, "Finalized request %s\n", r.Number)
	fmt.Fprintf(deps.Stdout, "  PDF: %s\n", r.PDFURL)
	return nil
}
