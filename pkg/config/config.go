// Package config holds the settings shared by the txcapture commands.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/willibrandon/txcapture/pkg/archive"
	"github.com/willibrandon/txcapture/pkg/capture"
	"github.com/willibrandon/txcapture/pkg/logging"
	"github.com/willibrandon/txcapture/pkg/rpcoracle"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "TXCAPTURE_"

// Config is loaded from YAML and overridden by the environment and flags
type Config struct {
	BaseDir     string `yaml:"base_dir"`
	RPCEndpoint string `yaml:"rpc_endpoint"`
	Commitment  string `yaml:"commitment"`
	LogLevel    string `yaml:"log_level"`
	LogJSON     bool   `yaml:"log_json"`
	Compression string `yaml:"compression"`

	// DemoteReserved reports builtin program and sysvar ids read-only in
	// transaction.json
	DemoteReserved bool `yaml:"demote_reserved"`
}

func Default() *Config {
	return &Config{
		BaseDir:     capture.DefaultBaseDir,
		RPCEndpoint: "http://127.0.0.1:8899",
		Commitment:  "confirmed",
		LogLevel:    "info",
		Compression: archive.DefaultCompression.String(),
	}
}

// Load reads the YAML file at path on top of the defaults. An empty path
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv applies TXCAPTURE_* overrides
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvPrefix + "BASE_DIR"); v != "" {
		c.BaseDir = v
	}
	if v := os.Getenv(EnvPrefix + "RPC"); v != "" {
		c.RPCEndpoint = v
	}
	if v := os.Getenv(EnvPrefix + "COMMITMENT"); v != "" {
		c.Commitment = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_JSON"); v != "" {
		c.LogJSON = truthy(v)
	}
	if v := os.Getenv(EnvPrefix + "COMPRESSION"); v != "" {
		c.Compression = v
	}
	if v := os.Getenv(EnvPrefix + "DEMOTE_RESERVED"); v != "" {
		c.DemoteReserved = truthy(v)
	}
}

func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.BaseDir) == "" {
		errs = append(errs, errors.New("base_dir must not be empty"))
	}
	if _, err := rpcoracle.ParseCommitment(c.Commitment); err != nil {
		errs = append(errs, err)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if _, err := archive.ParseCompression(c.Compression); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func truthy(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "1" || v == "true" || v == "yes"
}
