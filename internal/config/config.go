// Package config loads daemon and client settings from YAML with BOOKS_*
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zegnus/graph-ql-end-to-end-android/internal/adapters/rpc"
	"github.com/zegnus/graph-ql-end-to-end-android/internal/catalog"
	"github.com/zegnus/graph-ql-end-to-end-android/internal/client"
)

const (
	DefaultClientTimeout  = 10 * time.Second
	DefaultRateLimitRPS   = 20
	DefaultRateLimitBurst = 40
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
	Client    ClientConfig    `yaml:"client"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Addr            string `yaml:"addr"`
	AllowNullOrigin bool   `yaml:"allowNullOrigin"`
}

type CatalogConfig struct {
	Kind  string   `yaml:"kind"`
	Path  string   `yaml:"path"`
	DSN   string   `yaml:"dsn"`
	Query string   `yaml:"query"`
	S3    S3Config `yaml:"s3"`
}

type S3Config struct {
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	Key             string `yaml:"key"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"accessKeyId"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	PathStyle       bool   `yaml:"pathStyle"`
}

type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled"`
	RPS     float64 `yaml:"rps"`
	Burst   int     `yaml:"burst"`
}

type ClientConfig struct {
	BaseURL string        `yaml:"baseURL"`
	Timeout time.Duration `yaml:"timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func Default() Config {
	return Config{
		Server:  ServerConfig{Addr: rpc.DefaultAddr},
		Catalog: CatalogConfig{Kind: catalog.SourceSeed},
		RateLimit: RateLimitConfig{
			Enabled: true,
			RPS:     DefaultRateLimitRPS,
			Burst:   DefaultRateLimitBurst,
		},
		Client: ClientConfig{BaseURL: client.DefaultBaseURL, Timeout: DefaultClientTimeout},
		Log:    LogConfig{Level: "info"},
	}
}

// LoadFromPath merges the first readable file among configPath (or
// configs/config.yaml when empty) over Default, then applies environment
// overrides. A missing file is not an error; a malformed one is.
func LoadFromPath(configPath string) (Config, error) {
	cfg := Default()

	candidates := []string{"configs/config.yaml"}
	if configPath != "" {
		candidates = []string{configPath}
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		var parsed Config
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		Merge(&cfg, parsed)
		break
	}

	ApplyEnvOverrides(&cfg)
	return cfg, nil
}

// Merge copies every non-zero field of src into dst. Booleans that default
// to true are only switched off through the environment.
func Merge(dst *Config, src Config) {
	if src.Server.Addr != "" {
		dst.Server.Addr = src.Server.Addr
	}
	if src.Server.AllowNullOrigin {
		dst.Server.AllowNullOrigin = true
	}

	if src.Catalog.Kind != "" {
		dst.Catalog.Kind = src.Catalog.Kind
	}
	if src.Catalog.Path != "" {
		dst.Catalog.Path = src.Catalog.Path
	}
	if src.Catalog.DSN != "" {
		dst.Catalog.DSN = src.Catalog.DSN
	}
	if src.Catalog.Query != "" {
		dst.Catalog.Query = src.Catalog.Query
	}
	mergeS3(&dst.Catalog.S3, src.Catalog.S3)

	if src.RateLimit.RPS > 0 {
		dst.RateLimit.RPS = src.RateLimit.RPS
	}
	if src.RateLimit.Burst > 0 {
		dst.RateLimit.Burst = src.RateLimit.Burst
	}

	if src.Client.BaseURL != "" {
		dst.Client.BaseURL = src.Client.BaseURL
	}
	if src.Client.Timeout > 0 {
		dst.Client.Timeout = src.Client.Timeout
	}
	if src.Log.Level != "" {
		dst.Log.Level = src.Log.Level
	}
}

func mergeS3(dst *S3Config, src S3Config) {
	if src.Region != "" {
		dst.Region = src.Region
	}
	if src.Bucket != "" {
		dst.Bucket = src.Bucket
	}
	if src.Key != "" {
		dst.Key = src.Key
	}
	if src.Endpoint != "" {
		dst.Endpoint = src.Endpoint
	}
	if src.AccessKeyID != "" {
		dst.AccessKeyID = src.AccessKeyID
	}
	if src.SecretAccessKey != "" {
		dst.SecretAccessKey = src.SecretAccessKey
	}
	if src.PathStyle {
		dst.PathStyle = true
	}
}

// Source converts the catalog section into a catalog.Source.
func (c CatalogConfig) Source() catalog.Source {
	return catalog.Source{
		Kind:  c.Kind,
		Path:  c.Path,
		DSN:   c.DSN,
		Query: c.Query,
		S3: catalog.S3Config{
			Region:          c.S3.Region,
			Bucket:          c.S3.Bucket,
			Key:             c.S3.Key,
			Endpoint:        c.S3.Endpoint,
			AccessKeyID:     c.S3.AccessKeyID,
			SecretAccessKey: c.S3.SecretAccessKey,
			PathStyle:       c.S3.PathStyle,
		},
	}
}
