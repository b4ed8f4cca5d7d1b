package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Port           int           `yaml:"port"`
		DataPath       string        `yaml:"data_path"`
		Debug          bool          `yaml:"debug"`
		JWTSecret      string        `yaml:"jwt_secret"`
		SessionTimeout time.Duration `yaml:"session_timeout"`
	} `yaml:"app"`

	Metadata struct {
		OMDb struct {
			APIKey string `yaml:"api_key"`
		} `yaml:"omdb"`
		TMDB struct {
			// TMDB v4 read access token, sent as a bearer header.
			AccessToken string `yaml:"access_token"`
		} `yaml:"tmdb"`
		Language     string        `yaml:"language"`
		DetailTTL    time.Duration `yaml:"detail_ttl"`
		ListCacheTTL time.Duration `yaml:"list_cache_ttl"`
	} `yaml:"metadata"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	loadFromEnv(cfg)
	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.App.Port = 8081
	cfg.App.DataPath = "./data"
	cfg.App.Debug = false
	cfg.App.SessionTimeout = 24 * time.Hour

	cfg.Metadata.Language = "en-US"
	cfg.Metadata.DetailTTL = time.Hour
	cfg.Metadata.ListCacheTTL = 30 * time.Minute

	cfg.Database.Path = "./data/medialog.db"
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("OMDB_API_KEY"); v != "" {
		cfg.Metadata.OMDb.APIKey = v
	}
	if v := os.Getenv("TMDB_ACCESS_TOKEN"); v != "" {
		cfg.Metadata.TMDB.AccessToken = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.App.JWTSecret = v
	}
}
