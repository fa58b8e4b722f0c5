// internal/workers/screening/calculate-fit-score/config.go
package calculatefitscore

import "time"

type Config struct {
	Timeout      time.Duration
	IndexEnabled bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      30 * time.Second,
		IndexEnabled: true,
	}
}
