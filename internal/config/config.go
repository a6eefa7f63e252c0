package config

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverMemory = "memory"

	// MaxChunkLimit — лимит длины сообщения Discord
	MaxChunkLimit = 2000
)

type AppConfig struct {
	Env         string          `yaml:"env" env:"ENV" env-default:"prod"`
	Discord     DiscordConfig   `yaml:"discord"`
	Translate   TranslateConfig `yaml:"translate"`
	Replies     RepliesConfig   `yaml:"replies"`
	ChunkLimit  int             `yaml:"chunk_limit" env:"CHUNK_LIMIT" env-default:"1900"`
	MetricsAddr string          `yaml:"metrics_addr" env:"METRICS_ADDR"`
}

type DiscordConfig struct {
	Token string `yaml:"token" env:"DISCORD_TOKEN" env-required:"true"`
}

type TranslateConfig struct {
	GasURL       string `yaml:"gas_url" env:"TRANSLATE_GAS_URL" env-required:"true"`
	FromLanguage string `yaml:"from_language" env:"TRANSLATE_FROM_LANGUAGE" env-default:"auto"`
	ToLanguage   string `yaml:"to_language" env:"TRANSLATE_TO_LANGUAGE" env-default:"ja"`
	// RequestsPerSecond ограничивает частоту запросов к endpoint'у, 0 — без ограничений
	RequestsPerSecond float64       `yaml:"requests_per_second" env:"TRANSLATE_RPS" env-default:"0"`
	Timeout           time.Duration `yaml:"timeout" env:"TRANSLATE_TIMEOUT" env-default:"0s"`
}

type RepliesConfig struct {
	Driver        string `yaml:"driver" env:"REPLIES_DRIVER" env-default:"file"`
	Path          string `yaml:"path" env:"REPLIES_MESSAGE_PATH" env-default:"data/replies.json"`
	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"REDIS_DB" env-default:"0"`
	KeyPrefix     string `yaml:"key_prefix" env:"REPLIES_KEY_PREFIX" env-default:"replies:"`
}

// Load читает конфиг из файла (если путь задан) и переменных окружения
func Load() (*AppConfig, error) {
	cfg, err := LoadPath(fetchConfigPath())
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфига: %w", err)
	}
	return cfg, nil
}

// LoadPath reads the YAML file at path with environment overrides applied
// on top. An empty path reads the environment only.
func LoadPath(path string) (*AppConfig, error) {
	var cfg AppConfig

	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) Validate() error {
	var errs []error

	if c.Discord.Token == "" {
		errs = append(errs, errors.New("discord.token is required"))
	}

	if c.Translate.GasURL == "" {
		errs = append(errs, errors.New("translate.gas_url is required"))
	} else if u, err := url.Parse(c.Translate.GasURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("translate.gas_url must be an http(s) URL: %q", c.Translate.GasURL))
	}
	if c.Translate.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("translate.requests_per_second must not be negative"))
	}
	if c.Translate.Timeout < 0 {
		errs = append(errs, errors.New("translate.timeout must not be negative"))
	}

	switch c.Replies.Driver {
	case DriverFile:
		if c.Replies.Path == "" {
			errs = append(errs, errors.New("replies.path is required for the file driver"))
		}
	case DriverRedis:
		if c.Replies.RedisAddr == "" {
			errs = append(errs, errors.New("replies.redis_addr is required for the redis driver"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("replies.driver %q is not one of file, redis, memory", c.Replies.Driver))
	}

	if c.ChunkLimit <= 0 || c.ChunkLimit > MaxChunkLimit {
		errs = append(errs, fmt.Errorf("chunk_limit must be between 1 and %d", MaxChunkLimit))
	}

	return errors.Join(errs...)
}

// fetchConfigPath fetches config path from command line flag or environment variable.
// Priority: flag > env > default.
// Default value is empty string.
func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}
	return res
}
