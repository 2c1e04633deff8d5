// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DownloadConfig struct {
	Dir            string   `yaml:"dir"`
	YtdlpPath      string   `yaml:"ytdlp_path"`
	FfmpegPath     string   `yaml:"ffmpeg_path"`
	CookiesFile    string   `yaml:"cookies_file"`
	Cookies        string   `yaml:"cookies"` // inline content, written once if the file is absent
	MaxFileSize    string   `yaml:"max_filesize"`
	RetentionHours int      `yaml:"retention_hours"`
	Workers        int      `yaml:"workers"`       // 0 = one goroutine per job, uncapped
	RemuxDomains   []string `yaml:"remux_domains"` // URL substrings that trigger the ffmpeg pass
}

type RedisConfig struct {
	URL      string        `yaml:"url"` // empty = in-memory status store
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"` // empty = audit logging disabled
}

type GeoConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Download DownloadConfig `yaml:"download"`
	Redis    RedisConfig    `yaml:"redis"`
	Database DatabaseConfig `yaml:"database"`
	Geo      GeoConfig      `yaml:"geo"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Download.Dir == "" {
		cfg.Download.Dir = "downloads"
	}
	if cfg.Download.YtdlpPath == "" {
		cfg.Download.YtdlpPath = "yt-dlp"
	}
	if cfg.Download.FfmpegPath == "" {
		cfg.Download.FfmpegPath = "ffmpeg"
	}
	if cfg.Download.CookiesFile == "" {
		cfg.Download.CookiesFile = "cookies.txt"
	}
	if cfg.Download.MaxFileSize == "" {
		cfg.Download.MaxFileSize = "500M"
	}
	if cfg.Download.RetentionHours <= 0 {
		cfg.Download.RetentionHours = 24
	}
	if cfg.Geo.BaseURL == "" {
		cfg.Geo.BaseURL = "https://ipapi.co"
	}
	if cfg.Geo.Timeout <= 0 {
		cfg.Geo.Timeout = 3 * time.Second
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)

	// Connection addresses may come from the environment (a .env file is
	// loaded by cmd/app when present).
	if cfg.Database.URL == "" {
		cfg.Database.URL = os.Getenv("DATABASE_URL")
	}
	if cfg.Redis.URL == "" {
		cfg.Redis.URL = os.Getenv("REDIS_URL")
	}
	if cfg.Download.Cookies == "" {
		cfg.Download.Cookies = os.Getenv("YTDLP_COOKIES")
	}

	// Minimal validation
	if cfg.Download.Workers < 0 {
		return nil, errors.New("download.workers must not be negative")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return 24 * time.Hour
	}
	return d
}
