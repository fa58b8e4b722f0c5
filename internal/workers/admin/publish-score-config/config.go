// internal/workers/admin/publish-score-config/config.go
package publishscoreconfig

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 15 * time.Second,
	}
}
