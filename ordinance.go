package opra

import (
	"context"
	"time"
)

// Confidence is a heuristic tier describing how likely a text is a genuine
// ordinance for the target jurisdiction.
type Confidence string

// Confidence tiers, lowest to highest.
const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Rank orders confidence tiers; unknown values rank below low.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	}
	return 0
}

// AtLeast reports whether c is the same tier as other or higher.
func (c Confidence) AtLeast(other Confidence) bool {
	return c.Rank() >= other.Rank()
}

// Ordinance is a municipality's codified rent control law.
type Ordinance struct {
	ID             string     `json:"id"`
	MunicipalityID string     `json:"municipalityId"`
	Title          string     `json:"title"`
	Code           string     `json:"code,omitempty"`
	FullText       string     `json:"fullText"`
	SourceURL      string     `json:"sourceUrl"`
	EffectiveDate  *time.Time `json:"effectiveDate,omitempty"`
	Confidence     Confidence `json:"confidence"`
	ContentHash    string     `json:"contentHash"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// Validate returns an error if the ordinance contains invalid fields.
func (o *Ordinance) Validate() error {
	if o.MunicipalityID == "" {
		return Errorf(EINVALID, "ordinance municipality ID required")
	}
	if o.Title == "" {
		return Errorf(EINVALID, "ordinance title required")
	}
	if o.FullText == "" {
		return Errorf(EINVALID, "ordinance text required")
	}
	return nil
}

// OrdinanceService represents a service for managing ordinances.
type OrdinanceService interface {
	// CreateOrdinance creates a new ordinance.
	CreateOrdinance(ctx context.Context, o *Ordinance) error

	// FindOrdinanceByID retrieves an ordinance by ID.
	// Returns ENOTFOUND if ordinance does not exist.
	FindOrdinanceByID(ctx context.Context, id string) (*Ordinance, error)

	// FindOrdinances retrieves ordinances matching the filter.
	FindOrdinances(ctx context.Context, filter OrdinanceFilter) ([]*Ordinance, error)

	// DeleteOrdinance permanently removes an ordinance and all associated chunks.
	// Returns ENOTFOUND if ordinance does not exist.
	DeleteOrdinance(ctx context.Context, id string) error
}

// OrdinanceFilter represents a filter for FindOrdinances.
type OrdinanceFilter struct {
	ID             *string `json:"id"`
	MunicipalityID *string `json:"municipalityId"`
	ContentHash    *string `json:"contentHash"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
