// internal/workers/screening/calculate-fit-score/models.go
package calculatefitscore

import "screening-workers/internal/models"

type Input struct {
	CandidateID string `json:"candidateId"`
	JobID       string `json:"jobId"`

	// Inline payloads skip the store lookups; pipeline steps that already
	// carry the extraction pass it through directly.
	Candidate *models.Candidate `json:"candidate,omitempty"`
	Job       *models.Job       `json:"job,omitempty"`

	// ConfigVersion pins a specific config version; 0 means active.
	ConfigVersion int `json:"configVersion,omitempty"`
}

type Output struct {
	CandidateID   string   `json:"candidateId"`
	JobID         string   `json:"jobId"`
	TotalFit      int      `json:"totalFit"`
	MustScore     float64  `json:"mustScore"`
	NiceScore     float64  `json:"niceScore"`
	YearScore     float64  `json:"yearScore"`
	RoleScore     float64  `json:"roleScore"`
	MustGaps      []string `json:"mustGaps"`
	ConfigVersion int      `json:"configVersion"`
	ScoredAt      string   `json:"scoredAt"`
}
