// internal/workers/screening/rescore-candidates/models.go
package rescorecandidates

type Input struct {
	JobID string `json:"jobId"`

	// ConfigVersion pins a specific config version for the whole batch;
	// 0 means the active config at batch start.
	ConfigVersion int `json:"configVersion,omitempty"`
}

type Output struct {
	BatchID       string   `json:"batchId"`
	JobID         string   `json:"jobId"`
	ConfigVersion int      `json:"configVersion"`
	Rescored      int      `json:"rescored"`
	Failed        int      `json:"failed"`
	FailedIDs     []string `json:"failedIds,omitempty"`
	CompletedAt   string   `json:"completedAt"`
}
