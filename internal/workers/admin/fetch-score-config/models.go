// internal/workers/admin/fetch-score-config/models.go
package fetchscoreconfig

type Input struct {
	// Version selects a historical config; 0 means the active one.
	Version int `json:"version,omitempty"`
}

type Output struct {
	Version        int                           `json:"version"`
	Weights        WeightsOutput                 `json:"weights"`
	MustCapEnabled bool                          `json:"mustCapEnabled"`
	MustCapValue   int                           `json:"mustCapValue"`
	NiceTopN       int                           `json:"niceTopN"`
	RoleDistance   map[string]map[string]float64 `json:"roleDistance"`
	CreatedAt      string                        `json:"createdAt"`
}

type WeightsOutput struct {
	Must float64 `json:"must"`
	Nice float64 `json:"nice"`
	Year float64 `json:"year"`
	Role float64 `json:"role"`
}
