package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"dqx0.com/go/exchange/httpx"
	"dqx0.com/go/exchange/internal/obs"
	"gopkg.in/yaml.v3"
)

// Config is the httpx-serve configuration file.
type Config struct {
	Addr              string        `yaml:"addr"`
	LogLevel          string        `yaml:"log_level"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	MaxHeaderBytes    int           `yaml:"max_header_bytes"`
	// Protocol is the HTTP version responses are sent with.
	Protocol string `yaml:"protocol"`
}

func DefaultConfig() *Config {
	return &Config{
		Addr:              ":8080",
		LogLevel:          "info",
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		MaxHeaderBytes:    8 << 10,
		Protocol:          httpx.HTTP11,
	}
}

// LoadConfig reads path. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}
	defer f.Close()
	return ReadConfig(f)
}

// ReadConfig parses configuration on top of the defaults.
func ReadConfig(r io.Reader) (*Config, error) {
	c := DefaultConfig()
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	if err := d.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if _, ok := obs.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if err := httpx.NewResponse().SetProtocol(c.Protocol); err != nil {
		return fmt.Errorf("invalid protocol: %w", err)
	}
	if c.MaxHeaderBytes < 0 {
		return fmt.Errorf("invalid max_header_bytes %d", c.MaxHeaderBytes)
	}
	return nil
}
