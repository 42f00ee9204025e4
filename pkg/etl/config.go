package etl

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"
)

// Config is the job's external configuration. Credentials stay inside this
// struct and are handed to the S3 client directly; they are never exported
// into the process environment.
type Config struct {
	AWS struct {
		AccessKeyID     string `toml:"access_key_id" yaml:"access_key_id"`
		SecretAccessKey string `toml:"secret_access_key" yaml:"secret_access_key"`
		Region          string `toml:"region" yaml:"region"`
	} `toml:"aws" yaml:"aws"`
	S3 struct {
		InputPath  string `toml:"input_path" yaml:"input_path"`
		OutputPath string `toml:"output_path" yaml:"output_path"`
	} `toml:"s3" yaml:"s3"`
}

// LoadConfig reads a .toml or .yaml/.yml config file and validates it.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch filepath.Ext(path) {
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	default:
		return cfg, fmt.Errorf("config: unsupported format %q", filepath.Ext(path))
	}
	if err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.S3.InputPath == "" {
		return fmt.Errorf("config: missing key s3.input_path")
	}
	if c.S3.OutputPath == "" {
		return fmt.Errorf("config: missing key s3.output_path")
	}
	if (c.AWS.AccessKeyID == "") != (c.AWS.SecretAccessKey == "") {
		return fmt.Errorf("config: aws.access_key_id and aws.secret_access_key must be set together")
	}
	if c.AWS.Region == "" {
		c.AWS.Region = "us-east-1"
	}
	return nil
}
