package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
		// PublicURL is used for locally served uploads when MinIO is not configured.
		PublicURL string `yaml:"public_url"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Mongo struct {
		URI      string `yaml:"uri"`
		Database string `yaml:"database"`
	} `yaml:"mongo"`
	MinIO struct {
		Endpoint        string `yaml:"endpoint"`
		AccessKeyID     string `yaml:"access_key_id"`
		SecretAccessKey string `yaml:"secret_access_key"`
		UseSSL          bool   `yaml:"use_ssl"`
		Region          string `yaml:"region"`
		Bucket          string `yaml:"bucket"`
		PublicURL       string `yaml:"public_url"`
	} `yaml:"minio"`
	RabbitMQ struct {
		URL string `yaml:"url"`
	} `yaml:"rabbitmq"`
	Auth struct {
		JWTSecret      string `yaml:"jwt_secret"`
		TokenTTL       string `yaml:"token_ttl"`
		DefaultPicture string `yaml:"default_picture"`
		MaxAttempts    int    `yaml:"max_attempts"`
		AttemptWindow  string `yaml:"attempt_window"`
	} `yaml:"auth"`
	Quiz struct {
		TTL          string `yaml:"ttl"`
		SessionSize  int    `yaml:"session_size"`
		RevealDelay  string `yaml:"reveal_delay"`
		SubmitDelay  string `yaml:"submit_delay"`
		StoreTimeout string `yaml:"store_timeout"`
	} `yaml:"quiz"`
	// Profiles selects the profile backend: memory, postgres or mongo.
	Profiles struct {
		Backend string `yaml:"backend"`
	} `yaml:"profiles"`
}

// Load reads YAML config from path. Environment variables override secrets and URLs.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	applyEnv(&cfg)
	return cfg, nil
}

// LoadDotEnv loads a .env file if present; a missing file is not an error.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return err
		}
	}
	return nil
}

func applyEnv(cfg *Config) {
	override(&cfg.Postgres.URL, "DATABASE_URL")
	override(&cfg.Redis.Addr, "REDIS_ADDR")
	override(&cfg.Mongo.URI, "MONGO_URI")
	override(&cfg.RabbitMQ.URL, "RABBITMQ_URL")
	override(&cfg.MinIO.AccessKeyID, "MINIO_ACCESS_KEY")
	override(&cfg.MinIO.SecretAccessKey, "MINIO_SECRET_KEY")
	override(&cfg.Auth.JWTSecret, "JWT_SECRET")
}

func override(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// ProfileBackend returns the configured backend, inferring it from the
// configured stores when unset.
func (c Config) ProfileBackend() string {
	switch {
	case c.Profiles.Backend != "":
		return c.Profiles.Backend
	case c.Mongo.URI != "":
		return "mongo"
	case c.Postgres.URL != "":
		return "postgres"
	}
	return "memory"
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
