// internal/workers/admin/publish-score-config/models.go
package publishscoreconfig

type Input struct {
	Weights        WeightsInput                  `json:"weights"`
	MustCapEnabled bool                          `json:"mustCapEnabled"`
	MustCapValue   int                           `json:"mustCapValue"`
	NiceTopN       int                           `json:"niceTopN"`
	RoleDistance   map[string]map[string]float64 `json:"roleDistance,omitempty"` // omitted = shipped defaults
}

type WeightsInput struct {
	Must float64 `json:"must"`
	Nice float64 `json:"nice"`
	Year float64 `json:"year"`
	Role float64 `json:"role"`
}

type Output struct {
	Version     int    `json:"version"`
	PublishedAt string `json:"publishedAt"`
}
