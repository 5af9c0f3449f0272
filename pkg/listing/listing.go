// Package listing defines the marketplace data-transfer types returned by the
// Homi browse endpoints and the paginated envelope that wraps them.
package listing

import "time"

// Resource paths of the browse endpoints.
const (
	ResourceProfessionals = "/professionals"
	ResourceJobs          = "/jobs"
)

// Job statuses.
const (
	JobStatusOpen   = "open"
	JobStatusClosed = "closed"
)

// Item is implemented by every listing type that can be paged through.
type Item interface {
	ItemID() string
}

// Professional is a provider profile as shown on the professionals browse page.
type Professional struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Headline      string   `json:"headline,omitempty"`
	Category      string   `json:"category"`
	Subcategories []string `json:"subcategories,omitempty"`
	City          string   `json:"city"`
	HourlyRate    float64  `json:"hourlyRate"`
	Rating        float64  `json:"rating"`
	ReviewCount   int      `json:"reviewCount"`
	Available     bool     `json:"available"`
	Verified      bool     `json:"verified"`
}

// ItemID implements Item.
func (p Professional) ItemID() string { return p.ID }

// IsAvailable reports whether the professional accepts new work.
func (p Professional) IsAvailable() bool { return p.Available }

// Job is a client job posting as shown on the jobs browse page.
type Job struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Category      string    `json:"category"`
	Subcategories []string  `json:"subcategories,omitempty"`
	City          string    `json:"city"`
	BudgetMin     float64   `json:"budgetMin"`
	BudgetMax     float64   `json:"budgetMax"`
	ProposalCount int       `json:"proposalCount"`
	Status        string    `json:"status"`
	PostedAt      time.Time `json:"postedAt"`
}

// ItemID implements Item.
func (j Job) ItemID() string { return j.ID }

// IsOpen reports whether the job still accepts proposals.
func (j Job) IsOpen() bool { return j.Status == JobStatusOpen }

// PageInfo is the optional pagination metadata of a list response.
// Either field may be missing from the server response.
type PageInfo struct {
	HasMore *bool `json:"hasMore,omitempty"`
	Total   *int  `json:"total,omitempty"`
}

// Page is the JSON envelope of a list response.
type Page[T any] struct {
	Data       []T       `json:"data"`
	Pagination *PageInfo `json:"pagination,omitempty"`
}

// HasMore resolves the "more results" flag. Server metadata wins; without it
// a full page is taken to mean another page exists.
func (p Page[T]) HasMore(limit int) bool {
	if p.Pagination != nil && p.Pagination.HasMore != nil {
		return *p.Pagination.HasMore
	}
	return limit > 0 && len(p.Data) == limit
}

// Total returns the server-reported total and whether it was present.
func (p Page[T]) Total() (int, bool) {
	if p.Pagination == nil || p.Pagination.Total == nil {
		return 0, false
	}
	return *p.Pagination.Total, true
}
