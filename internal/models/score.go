// internal/models/score.go
package models

// ScoreRecord is the persisted fit result for one candidate/job pair.
// ConfigVersion pins the scoring config used so the number stays
// explainable after later config publishes.
type ScoreRecord struct {
	ID            string   `json:"id"`
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

// ScoreDocument is the search-index projection of a ScoreRecord, flattened
// for shortlist queries.
type ScoreDocument struct {
	CandidateID   string   `json:"candidate_id"`
	CandidateName string   `json:"candidate_name,omitempty"`
	JobID         string   `json:"job_id"`
	JobTitle      string   `json:"job_title,omitempty"`
	TotalFit      int      `json:"total_fit"`
	MustGaps      []string `json:"must_gaps"`
	ConfigVersion int      `json:"config_version"`
	ScoredAt      string   `json:"scored_at"`
}
