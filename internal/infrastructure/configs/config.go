package configs

import (
	"fmt"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/storelink/relay/internal/infrastructure/env"
)

type Config struct {
	HTTP        HTTPConfig        `koanf:"http"`
	Backend     BackendConfig     `koanf:"backend"`
	Heartbeat   HeartbeatConfig   `koanf:"heartbeat"`
	RateLimiter RateLimiterConfig `koanf:"rateLimiter"`
	AMQP        AMQPConfig        `koanf:"amqp"`
	LogBuffer   LogBufferConfig   `koanf:"log_buffer"`
}

type HTTPConfig struct {
	Host         string        `koanf:"host"`
	Port         uint16        `koanf:"port"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

type BackendConfig struct {
	BaseURL      string        `koanf:"base_url"`
	Token        string        `koanf:"token"`
	MessagesPath string        `koanf:"messages_path"` // "rooms" or "legacy"
	Timeout      time.Duration `koanf:"timeout"`
}

type HeartbeatConfig struct {
	Interval time.Duration `koanf:"interval"`
}

type RateLimiterConfig struct {
	MaxRatePerSecond int           `koanf:"maxRatePerSecond"`
	MaxBurst         int           `koanf:"maxBurst"`
	CacheTTL         time.Duration `koanf:"cacheTTL"`
	SourceHeaderKey  string        `koanf:"sourceHeaderKey"`
}

type AMQPConfig struct {
	URI string `koanf:"uri"`
}

type LogBufferConfig struct {
	Capacity int `koanf:"capacity"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Load from YAML file if one was located; env and defaults cover the rest
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	applyDefaults(k)
	applyEnvOverrides(k)

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(k *koanf.Koanf) {
	// HTTP defaults
	setDefault(k, "http.host", "0.0.0.0")
	setDefault(k, "http.port", 8080)
	setDefault(k, "http.read_timeout", 10*time.Second)
	setDefault(k, "http.write_timeout", 30*time.Second)

	// Backend defaults
	setDefault(k, "backend.base_url", "http://localhost:3000/api")
	setDefault(k, "backend.token", "")
	setDefault(k, "backend.messages_path", "rooms")
	setDefault(k, "backend.timeout", 10*time.Second)

	// Heartbeat defaults
	setDefault(k, "heartbeat.interval", 25*time.Second)

	// Rate limiter defaults
	setDefault(k, "rateLimiter.maxRatePerSecond", 10)
	setDefault(k, "rateLimiter.maxBurst", 20)
	setDefault(k, "rateLimiter.cacheTTL", 5*time.Minute)
	setDefault(k, "rateLimiter.sourceHeaderKey", "X-Forwarded-For")

	// Log buffer defaults
	setDefault(k, "log_buffer.capacity", 512)
}

func applyEnvOverrides(k *koanf.Koanf) {
	// HTTP config from env
	if host := env.GetString("HTTP_HOST", ""); host != "" {
		k.Set("http.host", host)
	}
	if port := env.GetInt("HTTP_PORT", 0); port > 0 {
		k.Set("http.port", port)
	}
	if readTimeout := env.GetInt("HTTP_READ_TIMEOUT_SECONDS", 0); readTimeout > 0 {
		k.Set("http.read_timeout", time.Duration(readTimeout)*time.Second)
	}
	if writeTimeout := env.GetInt("HTTP_WRITE_TIMEOUT_SECONDS", 0); writeTimeout > 0 {
		k.Set("http.write_timeout", time.Duration(writeTimeout)*time.Second)
	}

	// Backend config from env
	if baseURL := env.GetString("BACKEND_BASE_URL", ""); baseURL != "" {
		k.Set("backend.base_url", baseURL)
	}
	if token := env.GetString("BACKEND_TOKEN", ""); token != "" {
		k.Set("backend.token", token)
	}
	if messagesPath := env.GetString("BACKEND_MESSAGES_PATH", ""); messagesPath != "" {
		k.Set("backend.messages_path", messagesPath)
	}
	if timeout := env.GetInt("BACKEND_TIMEOUT_SECONDS", 0); timeout > 0 {
		k.Set("backend.timeout", time.Duration(timeout)*time.Second)
	}

	// Heartbeat config from env
	if interval := env.GetInt("HEARTBEAT_INTERVAL_SECONDS", 0); interval > 0 {
		k.Set("heartbeat.interval", time.Duration(interval)*time.Second)
	}

	// Rate limiter config from env
	if maxRate := env.GetInt("RATE_LIMIT_MAX_RATE_PER_SECOND", 0); maxRate > 0 {
		k.Set("rateLimiter.maxRatePerSecond", maxRate)
	}
	if maxBurst := env.GetInt("RATE_LIMIT_MAX_BURST", 0); maxBurst > 0 {
		k.Set("rateLimiter.maxBurst", maxBurst)
	}
	if cacheTTL := env.GetInt("RATE_LIMIT_CACHE_TTL_MINUTES", 0); cacheTTL > 0 {
		k.Set("rateLimiter.cacheTTL", time.Duration(cacheTTL)*time.Minute)
	}
	if sourceKey := env.GetString("RATE_LIMIT_SOURCE_HEADER_KEY", ""); sourceKey != "" {
		k.Set("rateLimiter.sourceHeaderKey", sourceKey)
	}

	// AMQP config from env
	if uri := env.GetString("AMQP_URI", ""); uri != "" {
		k.Set("amqp.uri", uri)
	}

	// Log buffer config from env
	if capacity := env.GetInt("LOG_BUFFER_CAPACITY", 0); capacity > 0 {
		k.Set("log_buffer.capacity", capacity)
	}
}

// setDefault only sets the value if the key doesn't already exist
func setDefault(k *koanf.Koanf, key string, value interface{}) {
	if !k.Exists(key) {
		k.Set(key, value)
	}
}
