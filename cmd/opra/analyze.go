package main

import (
	"fmt"
	"strings"
)

// Run executes the analyze command.
func (c *AnalyzeCmd) Run(deps *Dependencies) error {
	res, err := deps.Analyzer.AnalyzeOrdinance(deps.Ctx, c.OrdinanceID)
	if err != nil {
		return printError(deps, err)
	}

	a := res.Analysis
	fmt.Fprintf(deps.Stdout, "Analyzed %d sections\n", a.TotalSections)
	fmt.Fprintf(deps.Stdout, "  Rent control board:    %s\n", yesNo(a.HasRentControlBoard))
	fmt.Fprintf(deps.Stdout, "  Complaint process:     %s\n", yesNo(a.HasComplaintProcess))
	fmt.Fprintf(deps.Stdout, "  Enforcement mechanism: %s\n", yesNo(a.HasEnforcementMechanism))
	if len(a.FailedSections) > 0 {
		fmt.Fprintf(deps.Stdout, "  Unclassified sections: %s\n", strings.Join(a.FailedSections, ", "))
	}

	fmt.Fprintf(deps.Stdout, "\nRelevant categories (%d):\n", len(res.RelevantCategories))
	for _, id := range res.RelevantCategories {
		fmt.Fprintf(deps.Stdout, "  %s\n", categoryName(deps, id))
	}

	if !c.Records {
		return nil
	}
	summary, err := deps.Analyzer.GenerateRecordsSummary(deps.Ctx, c.OrdinanceID, res.RelevantCategories)
	if err != nil {
		return printError(deps, err)
	}
	for _, id := range res.RelevantCategories {
		fmt.Fprintf(deps.Stdout, "\n%s\n", categoryName(deps, id))
		for _, record := range summary[id] {
			fmt.Fprintf(deps.Stdout, "  - %s\n", record)
		}
	}
	return nil
}

func categoryName(deps *Dependencies, id string) string {
	if deps.Taxonomy != nil {
		if cat, ok := deps.Taxonomy.Find(id); ok {
			return cat.Name
		}
	}
	return id
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
