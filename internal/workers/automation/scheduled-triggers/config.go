package scheduledtriggers

import (
	"fmt"
	"time"

	"wecelebrate-notifier/internal/common/config"
)

// ConfigKey is this worker's entry under workers in config.yaml.
const ConfigKey = "scheduled-triggers"

type Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	MaxJobsActive int           `mapstructure:"max_jobs_active"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxBatchSize  int           `mapstructure:"max_batch_size"` // recipients per job
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 2,
		Timeout:       5 * time.Minute,
		MaxBatchSize:  500,
	}
}

// FromAppConfig overlays the workers.scheduled-triggers section onto the defaults.
func FromAppConfig(appCfg *config.Config) *Config {
	cfg := DefaultConfig()
	if appCfg == nil {
		return cfg
	}
	if w, ok := appCfg.Workers[ConfigKey]; ok {
		cfg.Enabled = w.Enabled
		if w.MaxJobsActive > 0 {
			cfg.MaxJobsActive = w.MaxJobsActive
		}
		if w.Timeout > 0 {
			cfg.Timeout = config.GetDuration(w.Timeout)
		}
	}
	return cfg
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.MaxBatchSize <= 0 {
		return fmt.Errorf("max_batch_size must be positive")
	}
	return nil
}
