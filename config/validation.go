package config

import (
	"fmt"
	"net/url"
)

// validateConfig validates the loaded configuration values
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}

	if err := validateFeedConfig(&config.Feed); err != nil {
		return fmt.Errorf("feed config validation failed: %w", err)
	}

	if err := validateMediaProxyConfig(&config.MediaProxy); err != nil {
		return fmt.Errorf("media proxy config validation failed: %w", err)
	}

	if err := validateJournalConfig(&config.Journal); err != nil {
		return fmt.Errorf("journal config validation failed: %w", err)
	}

	if config.OTel.SampleRatio < 0 || config.OTel.SampleRatio > 1 {
		return fmt.Errorf("otel config validation failed: sample ratio must be within [0,1], got %v", config.OTel.SampleRatio)
	}

	return nil
}

func validateServerConfig(config *ServerConfig) error {
	if config.Port < 1 || config.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", config.Port)
	}

	if config.ReadTimeout <= 0 || config.WriteTimeout <= 0 || config.IdleTimeout <= 0 {
		return fmt.Errorf("timeout values must be positive")
	}

	return nil
}

func validateFeedConfig(config *FeedConfig) error {
	if config.Timeout <= 0 {
		return fmt.Errorf("feed timeout must be positive, got %v", config.Timeout)
	}

	if config.SlowTimeout < config.Timeout {
		return fmt.Errorf("slow timeout %v must not be shorter than timeout %v", config.SlowTimeout, config.Timeout)
	}

	if config.Origin != "" {
		u, err := url.Parse(config.Origin)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("feed origin must be an absolute http(s) URL, got %q", config.Origin)
		}
	}

	return nil
}

func validateMediaProxyConfig(config *MediaProxyConfig) error {
	if config.Timeout <= 0 {
		return fmt.Errorf("media proxy timeout must be positive, got %v", config.Timeout)
	}

	if config.HostRPS <= 0 || config.HostBurst < 1 {
		return fmt.Errorf("media proxy host rate must be positive, got rps=%v burst=%d", config.HostRPS, config.HostBurst)
	}

	return nil
}

func validateJournalConfig(config *JournalConfig) error {
	if config.ProbeTTL <= 0 || config.FetchTimeout <= 0 {
		return fmt.Errorf("journal durations must be positive")
	}

	if config.ProbeCacheSize < 1 || config.Concurrency < 1 {
		return fmt.Errorf("journal cache size and concurrency must be at least 1")
	}

	return nil
}
