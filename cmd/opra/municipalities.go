package main

import (
	"context"
	"fmt"

	"github.com/fwojciec/opra"
)

// Run executes the municipalities list command.
func (c *MunicipalitiesListCmd) Run(deps *Dependencies) error {
	filter := opra.MunicipalityFilter{
		SortBy:    opra.MunicipalitySort(c.Sort),
		Ascending: !c.Desc,
		Limit:     c.Limit,
	}
	if c.Search != "" {
		filter.Search = &c.Search
	}
	if c.County != "" {
		filter.County = &c.County
	}
	if c.Status != "" {
		status := opra.OrdinanceStatus(c.Status)
		switch status {
		case opra.StatusHasOrdinance, opra.StatusNoOrdinance, opra.StatusNotScraped:
		default:
			return printError(deps, opra.Errorf(opra.EINVALID, "invalid ordinance status %q", c.Status))
		}
		filter.Status = &status
	}

	ms, err := deps.Municipalities.FindMunicipalities(deps.Ctx, filter)
	if err != nil {
		return printError(deps, err)
	}

	if len(ms) == 0 {
		fmt.Fprintln(deps.Stdout, "No municipalities found. Use 'opra discover' to add one.")
		return nil
	}

	for _, m := range ms {
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  %s  %d\n", m.ID, m.Name, m.County, m.Status, m.OrdinanceCount)
	}
	return nil
}

// Run executes the municipalities reset command.
func (c *MunicipalitiesResetCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm reset\n")
		return opra.Errorf(opra.EINVALID, "use --force to confirm reset")
	}

	res, err := deps.Municipalities.ResetMunicipality(deps.Ctx, c.ID)
	if err != nil {
		return printError(deps, err)
	}

	fmt.Fprintf(deps.Stdout, "Reset municipality %s: %d ordinances, %d chunks, %d custodians deleted\n",
		c.ID, res.OrdinancesDeleted, res.ChunksDeleted, res.CustodiansDeleted)
	return nil
}

// VectorReset removes chunks held in a separate vector store before the
// relational reset, which only sees its own chunks table.
type VectorReset struct {
	opra.MunicipalityService
	Ordinances opra.OrdinanceService
	Chunks     opra.ChunkService
}

// ResetMunicipality deletes the vector chunks first, then resets the municipality.
func (s *VectorReset) ResetMunicipality(ctx context.Context, id string) (*opra.ResetResult, error) {
	ordinances, err := s.Ordinances.FindOrdinances(ctx, opra.OrdinanceFilter{MunicipalityID: &id})
	if err != nil {
		return nil, err
	}

	deleted := 0
	for _, o := range ordinances {
		n, err := s.Chunks.CountChunks(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		if err := s.Chunks.DeleteChunksByOrdinance(ctx, o.ID); err != nil {
			return nil, err
		}
		deleted += n
	}

	res, err := s.MunicipalityService.ResetMunicipality(ctx, id)
	if err != nil {
		return nil, err
	}
	res.ChunksDeleted += deleted
	return res, nil
}
