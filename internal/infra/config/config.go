package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App       AppSettings       `mapstructure:"app"`
	API       APISettings       `mapstructure:"api"`
	Poll      PollSettings      `mapstructure:"poll"`
	Device    DeviceSettings    `mapstructure:"device"`
	Cache     CacheSettings     `mapstructure:"cache"`
	Telemetry TelemetrySettings `mapstructure:"telemetry"`
	Stub      StubSettings      `mapstructure:"stub"`
}

type AppSettings struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

// APISettings configures the dashboard backend the client talks to.
type APISettings struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// PollSettings configures the notification polling cadence.
type PollSettings struct {
	Interval time.Duration `mapstructure:"interval"`
}

// DeviceSettings configures where the persisted device identifier lives.
type DeviceSettings struct {
	IDPath string `mapstructure:"id_path"`
}

// CacheSettings configures the cached-server-data collaborator. When Redis
// is disabled an in-process cache is used instead.
type CacheSettings struct {
	RedisEnabled bool          `mapstructure:"redis_enabled"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	DB           int           `mapstructure:"db"`
	Password     string        `mapstructure:"password"`
	TLSEnabled   bool          `mapstructure:"tls_enabled"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
	TTL          time.Duration `mapstructure:"ttl"`
}

type TelemetrySettings struct {
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// StubSettings configures the local development backend.
type StubSettings struct {
	Addr       string        `mapstructure:"addr"`
	JWTSecret  string        `mapstructure:"jwt_secret"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
	Seed       bool          `mapstructure:"seed"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("RISKDASH")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"api.base_url",
		"api.timeout",
		"poll.interval",
		"device.id_path",
		"cache.redis_enabled",
		"cache.host",
		"cache.port",
		"cache.db",
		"cache.password",
		"cache.tls_enabled",
		"cache.key_prefix",
		"cache.ttl",
		"telemetry.metrics_addr",
		"stub.addr",
		"stub.jwt_secret",
		"stub.session_ttl",
		"stub.seed",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "riskdash-client")
	v.SetDefault("app.env", "development")

	v.SetDefault("api.base_url", "http://localhost:3000/api/v1")
	v.SetDefault("api.timeout", "15s")

	v.SetDefault("poll.interval", "10s")

	v.SetDefault("device.id_path", "")

	v.SetDefault("cache.redis_enabled", false)
	v.SetDefault("cache.host", "localhost")
	v.SetDefault("cache.port", 6379)
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.tls_enabled", false)
	v.SetDefault("cache.key_prefix", "riskdash:data")
	v.SetDefault("cache.ttl", "5m")

	v.SetDefault("telemetry.metrics_addr", "")

	v.SetDefault("stub.addr", "localhost:3000")
	v.SetDefault("stub.jwt_secret", "dev-only-secret")
	v.SetDefault("stub.session_ttl", "24h")
	v.SetDefault("stub.seed", true)
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "RISKDASH_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
