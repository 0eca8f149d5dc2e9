package opra

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// RequestStatus is the lifecycle state of a records request.
type RequestStatus string

// RequestStatus values.
const (
	RequestDraft        RequestStatus = "DRAFT"
	RequestReady        RequestStatus = "READY"
	RequestSubmitted    RequestStatus = "SUBMITTED"
	RequestAcknowledged RequestStatus = "ACKNOWLEDGED"
	RequestFulfilled    RequestStatus = "FULFILLED"
	RequestDenied       RequestStatus = "DENIED"
	RequestAppealed     RequestStatus = "APPEALED"
)

// requestTransitions lists the states reachable from each state.
var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestDraft:        {RequestReady},
	RequestReady:        {RequestSubmitted},
	RequestSubmitted:    {RequestAcknowledged, RequestFulfilled, RequestDenied, RequestAppealed},
	RequestAcknowledged: {RequestFulfilled, RequestDenied},
	RequestDenied:       {RequestAppealed},
}

// Valid reports whether s is a known status.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestDraft, RequestReady, RequestSubmitted, RequestAcknowledged,
		RequestFulfilled, RequestDenied, RequestAppealed:
		return true
	}
	return false
}

// Label returns the human-readable status name.
func (s RequestStatus) Label() string {
	switch s {
	case RequestDraft:
		return "Draft"
	case RequestReady:
		return "Ready"
	case RequestSubmitted:
		return "Sent"
	case RequestAcknowledged:
		return "Acknowledged"
	case RequestFulfilled:
		return "Fulfilled"
	case RequestDenied:
		return "Denied"
	case RequestAppealed:
		return "Appealed"
	}
	return string(s)
}

// CanTransition reports whether a request may move from s to next.
func (s RequestStatus) CanTransition(next RequestStatus) bool {
	for _, to := range requestTransitions[s] {
		if to == next {
			return true
		}
	}
	return false
}

// SectionKind discriminates RequestSection variants.
type SectionKind string

// SectionKind values.
const (
	SectionHeader   SectionKind = "header"
	SectionCategory SectionKind = "category"
	SectionCustom   SectionKind = "custom"
	SectionFooter   SectionKind = "footer"
)

// RequestSection is one editable block of a drafted request.
// CategoryID is set for, and only for, category sections.
type RequestSection struct {
	ID         string      `json:"id" validate:"required"`
	Kind       SectionKind `json:"kind" validate:"required,oneof=header category custom footer"`
	Title      string      `json:"title"`
	Content    string      `json:"content"`
	CategoryID string      `json:"categoryId,omitempty"`
}

// Validate returns an error if the section is malformed.
func (s *RequestSection) Validate() error {
	if s.ID == "" {
		return Errorf(EINVALID, "section ID required")
	}
	switch s.Kind {
	case SectionCategory:
		if s.CategoryID == "" {
			return Errorf(EINVALID, "section %q: category ID required", s.ID)
		}
	case SectionHeader, SectionCustom, SectionFooter:
		if s.CategoryID != "" {
			return Errorf(EINVALID, "section %q: only category sections carry a category ID", s.ID)
		}
	default:
		return Errorf(EINVALID, "section %q: unknown kind %q", s.ID, s.Kind)
	}
	return nil
}

// Request is a drafted or submitted OPRA records request.
type Request struct {
	ID             string           `json:"id"`
	MunicipalityID string           `json:"municipalityId"`
	OrdinanceID    string           `json:"ordinanceId"`
	CustodianID    string           `json:"custodianId,omitempty"`
	Number         string           `json:"requestNumber"`
	Status         RequestStatus    `json:"status"`
	Categories     []string         `json:"categories"`
	Sections       []RequestSection `json:"sections,omitempty"`
	Text           string           `json:"requestText"`
	PDFURL         string           `json:"pdfUrl,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// Validate returns an error if the request contains invalid fields.
func (r *Request) Validate() error {
	if r.MunicipalityID == "" {
		return Errorf(EINVALID, "request municipality ID required")
	}
	if r.OrdinanceID == "" {
		return Errorf(EINVALID, "request ordinance ID required")
	}
	if r.Status != "" && !r.Status.Valid() {
		return Errorf(EINVALID, "invalid request status %q", r.Status)
	}
	for i := range r.Sections {
		if err := r.Sections[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// RequestUpdate represents fields that can be updated on a request.
// Content fields may only change while the request is a draft.
type RequestUpdate struct {
	Categories *[]string         `json:"categories"`
	Sections   *[]RequestSection `json:"sections"`
	Text       *string           `json:"requestText"`
	Status     *RequestStatus    `json:"status"`
	PDFURL     *string           `json:"pdfUrl"`
}

// Apply applies upd to r, enforcing the lifecycle rules.
// Returns ECONFLICT when content is edited outside DRAFT, when the status
// change is not a valid transition, or when a request becomes READY without
// a PDF in the same update.
func (r *Request) Apply(upd RequestUpdate) error {
	editsContent := upd.Categories != nil || upd.Sections != nil || upd.Text != nil
	if editsContent && r.Status != RequestDraft {
		return Errorf(ECONFLICT, "can only update draft requests")
	}
	if upd.Status != nil && *upd.Status != r.Status {
		if !upd.Status.Valid() {
			return Errorf(EINVALID, "invalid request status %q", *upd.Status)
		}
		if !r.Status.CanTransition(*upd.Status) {
			return Errorf(ECONFLICT, "cannot move request from %s to %s", r.Status, *upd.Status)
		}
		if *upd.Status == RequestReady && (upd.PDFURL == nil || *upd.PDFURL == "") {
			return Errorf(ECONFLICT, "request must be finalized with a PDF to become ready")
		}
	}

	if upd.Categories != nil {
		r.Categories = append([]string(nil), (*upd.Categories)...)
	}
	if upd.Sections != nil {
		r.Sections = append([]RequestSection(nil), (*upd.Sections)...)
	}
	if upd.Text != nil {
		r.Text = *upd.Text
	}
	if upd.PDFURL != nil {
		r.PDFURL = *upd.PDFURL
	}
	if upd.Status != nil {
		r.Status = *upd.Status
	}
	return r.Validate()
}

// Deletable reports whether the request may still be deleted.
func (r *Request) Deletable() bool {
	return r.Status == RequestDraft
}

// RequestService represents a service for managing records requests.
type RequestService interface {
	// CreateRequest creates a new request in DRAFT status.
	// A request number is generated when none is set.
	CreateRequest(ctx context.Context, r *Request) error

	// FindRequestByID retrieves a request by ID.
	// Returns ENOTFOUND if request does not exist.
	FindRequestByID(ctx context.Context, id string) (*Request, error)

	// FindRequests retrieves requests matching the filter.
	FindRequests(ctx context.Context, filter RequestFilter) ([]*Request, error)

	// UpdateRequest updates an existing request.
	// Returns ENOTFOUND if request does not exist and ECONFLICT if the update
	// violates the request lifecycle.
	UpdateRequest(ctx context.Context, id string, upd RequestUpdate) (*Request, error)

	// DeleteRequest permanently removes a draft request.
	// Returns ENOTFOUND if request does not exist and ECONFLICT if it is no
	// longer a draft.
	DeleteRequest(ctx context.Context, id string) error
}

// RequestFilter represents a filter for FindRequests.
type RequestFilter struct {
	ID             *string        `json:"id"`
	MunicipalityID *string        `json:"municipalityId"`
	OrdinanceID    *string        `json:"ordinanceId"`
	Status         *RequestStatus `json:"status"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// FormatRequestNumber formats a request number as OPRA-YYYY-MMDD-XXXX.
func FormatRequestNumber(t time.Time, serial int) string {
	return fmt.Sprintf("OPRA-%04d-%02d%02d-%04d", t.Year(), int(t.Month()), t.Day(), serial%10000)
}

// NewRequestNumber returns a request number for t with a random serial.
func NewRequestNumber(t time.Time) string {
	return FormatRequestNumber(t, rand.IntN(10000))
}

// ComposeRequest selects the ordinance and categories for a request letter.
// When SelectedCategories is empty, or IncludeAllCategories is set, the
// categories come from analyzing the ordinance.
type ComposeRequest struct {
	OrdinanceID          string   `json:"ordinanceId" validate:"required"`
	SelectedCategories   []string `json:"selectedCategories,omitempty" validate:"omitempty,dive,required"`
	IncludeAllCategories bool     `json:"includeAllCategories"`

	// IncludeProvisions lists the ordinance's key provisions as additional
	// records ahead of the closing.
	IncludeProvisions bool `json:"includeProvisions"`
}

// ComposedRequest is a composed letter with everything used to build it.
type ComposedRequest struct {
	Request        *Request         `json:"request,omitempty"`
	Text           string           `json:"requestText"`
	Sections       []RequestSection `json:"sections"`
	Categories     []string         `json:"categories"`
	RecordsSummary RecordsSummary   `json:"recordsSummary"`
	Municipality   *Municipality    `json:"municipality"`
	Custodian      *Custodian       `json:"custodian,omitempty"`

	// PDF is a rendered preview, set by Preview only.
	PDF []byte `json:"pdfBase64,omitempty"`
}

// DraftRequest saves a letter edited by hand.
type DraftRequest struct {
	OrdinanceID        string           `json:"ordinanceId" validate:"required"`
	MunicipalityID     string           `json:"municipalityId" validate:"required"`
	CustodianID        string           `json:"custodianId,omitempty"`
	Sections           []RequestSection `json:"sections" validate:"dive"`
	SelectedCategories []string         `json:"selectedCategories"`
	RequestText        string           `json:"requestText"`
}

// RequestDrafter composes, saves and finalizes records requests.
type RequestDrafter interface {
	// Preview composes a letter without saving it.
	Preview(ctx context.Context, req ComposeRequest) (*ComposedRequest, error)

	// Generate composes a letter and saves it as a DRAFT request.
	Generate(ctx context.Context, req ComposeRequest) (*ComposedRequest, error)

	// SaveDraft stores an edited letter as a new DRAFT request. When
	// RequestText is empty the text is rendered from the sections.
	SaveDraft(ctx context.Context, req DraftRequest) (*Request, error)

	// Finalize renders the request PDF, stores it and moves the request
	// from DRAFT to READY. Returns ECONFLICT for non-draft requests.
	Finalize(ctx context.Context, id string) (*Request, error)
}
