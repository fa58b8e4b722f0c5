// internal/workers/admin/fetch-score-config/config.go
package fetchscoreconfig

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
