package resilience

import "time"

// FromRetryConfig adapts flat config values (attempt counts and backoff
// milliseconds from the retrieval section) to a RetryConfig. Zero or
// negative values keep the stock defaults; JitterFraction accepts zero so
// jitter can be switched off explicitly.
func FromRetryConfig(maxAttempts, initialBackoffMs, maxBackoffMs int, multiplier, jitterFraction float64) RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.MaxAttempts = orInt(maxAttempts, cfg.MaxAttempts)
	cfg.InitialBackoff = orMillis(initialBackoffMs, cfg.InitialBackoff)
	cfg.MaxBackoff = orMillis(maxBackoffMs, cfg.MaxBackoff)
	if multiplier > 0 {
		cfg.Multiplier = multiplier
	}
	if jitterFraction >= 0 {
		cfg.JitterFraction = jitterFraction
	}
	return cfg
}

// FromCircuitConfig adapts flat config values to a CircuitBreakerConfig,
// keeping the stock defaults for zeroes.
func FromCircuitConfig(failureThreshold, resetTimeoutSecs int) CircuitBreakerConfig {
	cfg := DefaultCircuitBreakerConfig()
	cfg.FailureThreshold = orInt(failureThreshold, cfg.FailureThreshold)
	if resetTimeoutSecs > 0 {
		cfg.ResetTimeout = time.Duration(resetTimeoutSecs) * time.Second
	}
	return cfg
}

func orInt(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

func orMillis(ms int, fallback time.Duration) time.Duration {
	if ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}
