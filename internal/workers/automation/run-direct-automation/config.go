// internal/workers/automation/run-direct-automation/config.go
package rundirectautomation

import (
	"time"

	"chat-automation/internal/common/config"
)

const defaultTimeout = 30 * time.Second

type Config struct {
	Timeout time.Duration
}

// LoadConfig builds the handler config from the worker's section in
// configs/config.yaml.
func LoadConfig(wcfg config.WorkerConfig) *Config {
	timeout := config.GetDuration(wcfg.Timeout)
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Config{Timeout: timeout}
}
