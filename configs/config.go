package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App struct {
		Name     string `koanf:"name"`
		HTTPAddr string `koanf:"http_addr"`
		LogLevel string `koanf:"log_level"`
		LogFile  string `koanf:"log_file"`
	} `koanf:"app"`

	HTTP struct {
		ReadTimeout  time.Duration `koanf:"read_timeout"`
		WriteTimeout time.Duration `koanf:"write_timeout"`
		IdleTimeout  time.Duration `koanf:"idle_timeout"`
	} `koanf:"http"`

	Postgres struct {
		DSN          string `koanf:"dsn"`
		MaxOpenConns int    `koanf:"max_open_conns"`
		MaxIdleConns int    `koanf:"max_idle_conns"`
	} `koanf:"postgres"`

	Redis struct {
		Addr     string `koanf:"addr"`
		Password string `koanf:"password"`
	} `koanf:"redis"`

	Kafka struct {
		Brokers       []string `koanf:"brokers"`
		NotifyTopic   string   `koanf:"notify_topic"`
		ConsumerGroup string   `koanf:"consumer_group"`
	} `koanf:"kafka"`

	Resolver struct {
		Cutoff float64 `koanf:"cutoff"`
	} `koanf:"resolver"`

	Session struct {
		TTL        time.Duration `koanf:"ttl"`
		MaxHistory int           `koanf:"max_history"`
	} `koanf:"session"`

	WhatsApp struct {
		BaseURL       string `koanf:"base_url"`
		EncryptionKey string `koanf:"encryption_key"`
	} `koanf:"whatsapp"`
}

// Load reads <pathDir>/base.yaml, overlays an optional per-environment yaml
// and finally VENTIA_-prefixed environment variables (nested keys with __,
// e.g. VENTIA_POSTGRES__DSN).
func Load(pathDir, envName string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(fmt.Sprintf("%s/base.yaml", pathDir)), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load base: %w", err)
	}

	// Optional: allow missing for local runs.
	_ = k.Load(file.Provider(fmt.Sprintf("%s/%s.yaml", pathDir, envName)), yaml.Parser())

	if err := k.Load(env.Provider("VENTIA_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "VENTIA_")
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.App.HTTPAddr == "" {
		return fmt.Errorf("app.http_addr required")
	}
	if c.Postgres.DSN == "" {
		return fmt.Errorf("postgres.dsn required")
	}
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers required")
	}
	if c.Kafka.NotifyTopic == "" {
		return fmt.Errorf("kafka.notify_topic required")
	}
	return nil
}
