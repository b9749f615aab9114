package main

import (
	"fmt"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/abhishek622/moviestream/pkg/logging"
	"github.com/abhishek622/moviestream/pkg/tracing"
	"github.com/abhishek622/moviestream/pkg/validation"
)

type config struct {
	API      apiConfig      `yaml:"api"`
	Supabase supabaseConfig `yaml:"supabase"`
	Session  sessionConfig  `yaml:"session"`
	Logging  logging.Config `yaml:"logging"`
	Jaeger   tracing.Config `yaml:"jaeger"`
	Metrics  metricsConfig  `yaml:"metrics"`
}

type apiConfig struct {
	Port            int           `yaml:"port" validate:"min=1,max=65535"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

type supabaseConfig struct {
	URL       string        `yaml:"url" validate:"required,url"`
	AnonKey   string        `yaml:"anonKey" validate:"required"`
	JWTSecret string        `yaml:"jwtSecret"`
	Timeout   time.Duration `yaml:"timeout" validate:"min=0"`
}

// sessionConfig keys the session cookie. Secret authenticates it and
// BlockKey (AES-256) encrypts it.
type sessionConfig struct {
	Secret   string `yaml:"secret" validate:"required,min=32"`
	BlockKey string `yaml:"blockKey" validate:"required,len=32"`
	Secure   bool   `yaml:"secure"`
	MaxAge   int    `yaml:"maxAgeDays" validate:"min=0"`
}

type metricsConfig struct {
	Prefix         string        `yaml:"prefix"`
	ReportInterval time.Duration `yaml:"reportInterval"`
}

// envOverrides maps environment variables onto config fields.
var envOverrides = map[string]func(*config, string){
	"SUPABASE_URL":        func(c *config, v string) { c.Supabase.URL = v },
	"SUPABASE_ANON_KEY":   func(c *config, v string) { c.Supabase.AnonKey = v },
	"SUPABASE_JWT_SECRET": func(c *config, v string) { c.Supabase.JWTSecret = v },
	"SESSION_SECRET":      func(c *config, v string) { c.Session.Secret = v },
	"SESSION_BLOCK_KEY":   func(c *config, v string) { c.Session.BlockKey = v },
}

func defaultConfig() config {
	return config{
		API:      apiConfig{Port: 8083, ShutdownTimeout: 10 * time.Second},
		Supabase: supabaseConfig{Timeout: 10 * time.Second},
		Session:  sessionConfig{MaxAge: 7},
		Logging:  logging.Config{Level: "info"},
		Metrics:  metricsConfig{Prefix: "moviestream", ReportInterval: time.Second},
	}
}

// loadConfig reads the YAML file at path, applies environment overrides and
// validates the result.
func loadConfig(fs afero.Fs, path string, getenv func(string) string) (*config, error) {
	cfg := defaultConfig()
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open configuration: %w", err)
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}
	for key, apply := range envOverrides {
		if v := getenv(key); v != "" {
			apply(&cfg, v)
		}
	}
	if err := validation.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
