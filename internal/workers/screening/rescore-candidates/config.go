// internal/workers/screening/rescore-candidates/config.go
package rescorecandidates

import "time"

type Config struct {
	Timeout      time.Duration
	BatchSize    int
	IndexEnabled bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      5 * time.Minute,
		BatchSize:    100,
		IndexEnabled: true,
	}
}
