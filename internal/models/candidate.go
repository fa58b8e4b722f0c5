// internal/models/candidate.go
package models

// Candidate is the stored extraction result for one resume. Skills and
// highlights come out of the extraction pipeline verbatim; ExperienceYears
// values are nil when the resume mentions a skill without a duration.
type Candidate struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	Email           string              `json:"email,omitempty"`
	Skills          []string            `json:"skills"`
	Roles           []string            `json:"roles"`
	ExperienceYears map[string]*float64 `json:"experienceYears"`
	Highlights      []string            `json:"highlights"`
	ResumeKey       string              `json:"resumeKey,omitempty"`
	ExtractedAt     string              `json:"extractedAt"`
	UpdatedAt       string              `json:"updatedAt"`
}
