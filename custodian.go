package opra

import "context"

// Default custodian identity used when no custodian record is known.
const (
	DefaultCustodianName  = "Municipal Clerk"
	DefaultCustodianTitle = "OPRA Custodian"
)

// Custodian is the official designated to receive records requests for a
// municipality. Records are scraped on a best-effort basis and are not
// authoritative.
type Custodian struct {
	ID             string `json:"id"`
	MunicipalityID string `json:"municipalityId"`
	Name           string `json:"name"`
	Title          string `json:"title"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Address        string `json:"address,omitempty"`
	Active         bool   `json:"active"`
}

// Validate returns an error if the custodian contains invalid fields.
func (c *Custodian) Validate() error {
	if c.MunicipalityID == "" {
		return Errorf(EINVALID, "custodian municipality ID required")
	}
	if c.Name == "" {
		return Errorf(EINVALID, "custodian name required")
	}
	return nil
}

// CustodianService represents a service for managing custodians.
type CustodianService interface {
	// CreateCustodian creates a new custodian.
	CreateCustodian(ctx context.Context, c *Custodian) error

	// FindCustodianByID retrieves a custodian by ID.
	// Returns ENOTFOUND if custodian does not exist.
	FindCustodianByID(ctx context.Context, id string) (*Custodian, error)

	// FindCustodians retrieves custodians matching the filter.
	FindCustodians(ctx context.Context, filter CustodianFilter) ([]*Custodian, error)
}

// CustodianFilter represents a filter for FindCustodians.
type CustodianFilter struct {
	MunicipalityID *string `json:"municipalityId"`
	Active         *bool   `json:"active"`

	Limit int `json:"limit"`
}

// CustodianFinder looks up custodian contact details for a municipality.
type CustodianFinder interface {
	// FindCustodian returns the best-effort contact record, or nil when
	// nothing usable was found.
	FindCustodian(ctx context.Context, m *Municipality) (*Custodian, error)
}
