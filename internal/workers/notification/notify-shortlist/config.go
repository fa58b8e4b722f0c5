// internal/workers/notification/notify-shortlist/config.go
package notifyshortlist

import "time"

type Config struct {
	EmailEnabled bool
	SMSEnabled   bool
	FromEmail    string
	AWSRegion    string
	MinFit       int
	Limit        int
	Timeout      time.Duration
}

func LoadConfig() *Config {
	return &Config{
		MinFit:  70,
		Limit:   20,
		Timeout: 30 * time.Second,
	}
}
