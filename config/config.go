package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	Server     ServerConfig     `json:"server"`
	Feed       FeedConfig       `json:"feed"`
	MediaProxy MediaProxyConfig `json:"media_proxy"`
	Journal    JournalConfig    `json:"journal"`
	GitHub     GitHubConfig     `json:"github"`
	Logging    LoggingConfig    `json:"logging"`
	OTel       OTelConfig       `json:"otel"`
}

type ServerConfig struct {
	Port            int           `json:"port" env:"SERVER_PORT" default:"1200"`
	ReadTimeout     time.Duration `json:"read_timeout" env:"SERVER_READ_TIMEOUT" default:"75s"`
	WriteTimeout    time.Duration `json:"write_timeout" env:"SERVER_WRITE_TIMEOUT" default:"75s"`
	IdleTimeout     time.Duration `json:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" default:"120s"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
	AllowOrigins    string        `json:"allow_origins" env:"SERVER_ALLOW_ORIGINS" default:"*"`
}

// FeedConfig controls calls to collaborator JSON Feed routes.
type FeedConfig struct {
	// Origin of the collaborator routes. Defaults to this server on loopback.
	Origin      string        `json:"origin" env:"FEED_ORIGIN"`
	Timeout     time.Duration `json:"timeout" env:"FEED_TIMEOUT" default:"15s"`
	SlowTimeout time.Duration `json:"slow_timeout" env:"FEED_SLOW_TIMEOUT" default:"60s"`
	SlowTabKey  string        `json:"slow_tab_key" env:"FEED_SLOW_TAB" default:"journal-tech"`

	// PublicOrigin is where browsers reach this service. When set, item
	// images are rewritten to go through the media proxy.
	PublicOrigin string `json:"public_origin" env:"PUBLIC_ORIGIN"`
}

type MediaProxyConfig struct {
	Timeout    time.Duration `json:"timeout" env:"MEDIA_PROXY_TIMEOUT" default:"10s"`
	UserAgent  string        `json:"user_agent" env:"MEDIA_PROXY_USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"`
	DNSServers string        `json:"dns_servers" env:"MEDIA_PROXY_DNS_SERVERS"`
	HostRPS    float64       `json:"host_rps" env:"MEDIA_PROXY_HOST_RPS" default:"5"`
	HostBurst  int           `json:"host_burst" env:"MEDIA_PROXY_HOST_BURST" default:"10"`
}

type JournalConfig struct {
	ProbeTTL       time.Duration `json:"probe_ttl" env:"JOURNAL_PROBE_TTL" default:"6h"`
	ProbeCacheSize int           `json:"probe_cache_size" env:"JOURNAL_PROBE_CACHE_SIZE" default:"256"`
	FetchTimeout   time.Duration `json:"fetch_timeout" env:"JOURNAL_FETCH_TIMEOUT" default:"10s"`
	Concurrency    int           `json:"concurrency" env:"JOURNAL_CONCURRENCY" default:"8"`
}

type GitHubConfig struct {
	AccessToken     string `json:"-" env:"GITHUB_ACCESS_TOKEN"`
	AccessTokenFile string `json:"-" env:"GITHUB_ACCESS_TOKEN_FILE"`
}

type LoggingConfig struct {
	Level string `json:"level" env:"LOG_LEVEL" default:"info"`
}

type OTelConfig struct {
	Enabled        bool    `json:"enabled" env:"OTEL_ENABLED" default:"false"`
	Endpoint       string  `json:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"http://localhost:4318"`
	ServiceName    string  `json:"service_name" env:"OTEL_SERVICE_NAME" default:"rebang"`
	ServiceVersion string  `json:"service_version" env:"SERVICE_VERSION" default:"0.0.0"`
	Environment    string  `json:"environment" env:"DEPLOYMENT_ENV" default:"development"`
	SampleRatio    float64 `json:"sample_ratio" env:"OTEL_TRACE_SAMPLE_RATIO" default:"0.1"`
}

// NewConfig creates a new configuration by loading from environment variables
// with fallback to default values
func NewConfig() (*Config, error) {
	config := &Config{}

	if err := loadFromEnvironment(config); err != nil {
		return nil, err
	}

	if config.Feed.Origin == "" {
		config.Feed.Origin = fmt.Sprintf("http://127.0.0.1:%d", config.Server.Port)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	// Docker secrets support
	if config.GitHub.AccessTokenFile != "" {
		content, err := os.ReadFile(config.GitHub.AccessTokenFile)
		if err == nil {
			config.GitHub.AccessToken = strings.TrimSpace(string(content))
		}
	}

	config.Feed.Origin = strings.TrimRight(config.Feed.Origin, "/")
	config.Feed.PublicOrigin = strings.TrimRight(config.Feed.PublicOrigin, "/")

	return config, nil
}

// HasGitHubToken reports whether token-gated menu nodes may be revealed.
func (c *Config) HasGitHubToken() bool {
	return c.GitHub.AccessToken != ""
}

// DNSServerList splits the comma separated resolver list.
func (c MediaProxyConfig) DNSServerList() []string {
	var servers []string
	for _, s := range strings.Split(c.DNSServers, ",") {
		if s = strings.TrimSpace(s); s != "" {
			servers = append(servers, s)
		}
	}
	return servers
}
