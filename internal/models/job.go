// internal/models/job.go
package models

// Job is a posting with its structured requirements, as produced by the
// job-description parsing step upstream of scoring.
type Job struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	MustRequirements []string `json:"mustRequirements"`
	NiceRequirements []string `json:"niceRequirements"`
	ExpectedYears    *float64 `json:"expectedYears,omitempty"`
	ExpectedRole     string   `json:"expectedRole,omitempty"`
	Status           string   `json:"status"` // "open", "closed"
	CreatedAt        string   `json:"createdAt"`
	UpdatedAt        string   `json:"updatedAt"`
}
