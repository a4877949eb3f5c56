package resilience

import (
	"time"

	"github.com/riskibarqy/team-events/internal/platform/logging"
)

type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      15 * time.Second,
		HalfOpenMaxReq:   2,
	}
}

func NormalizeCircuitBreakerConfig(cfg CircuitBreakerConfig) CircuitBreakerConfig {
	defaults := DefaultCircuitBreakerConfig()
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaults.OpenTimeout
	}
	if cfg.HalfOpenMaxReq < 1 {
		cfg.HalfOpenMaxReq = defaults.HalfOpenMaxReq
	}
	return cfg
}

// NewFromConfig builds the breaker guarding one notification or auth
// dependency. It returns nil when the breaker is disabled; a nil breaker
// passes every call through. State changes are logged under the dependency
// name.
func NewFromConfig(dependency string, cfg CircuitBreakerConfig, logger *logging.Logger) *CircuitBreaker {
	if !cfg.Enabled {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	cfg = NormalizeCircuitBreakerConfig(cfg)
	b := NewCircuitBreaker(cfg.FailureThreshold, cfg.OpenTimeout, cfg.HalfOpenMaxReq)
	b.onStateChange = func(from, to CircuitState) {
		if to == CircuitStateOpen {
			logger.Warn("circuit opened", "dependency", dependency, "from", from, "open_timeout", cfg.OpenTimeout)
			return
		}
		logger.Info("circuit state changed", "dependency", dependency, "from", from, "to", to)
	}
	return b
}
