package etl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigTOML(t *testing.T) {
	path := writeConfig(t, "dl.toml", `
[aws]
access_key_id = "AKIA"
secret_access_key = "secret"

[s3]
input_path = "s3://in/data/"
output_path = "s3://out/lake/"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.AWS.AccessKeyID != "AKIA" || cfg.S3.InputPath != "s3://in/data/" {
		t.Fatalf("bad config: %+v", cfg)
	}
	if cfg.AWS.Region != "us-east-1" {
		t.Fatalf("region default missing, got %q", cfg.AWS.Region)
	}
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeConfig(t, "dl.yaml", `
aws:
  region: eu-west-1
s3:
  input_path: /data/in
  output_path: /data/out
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.S3.OutputPath != "/data/out" || cfg.AWS.Region != "eu-west-1" {
		t.Fatalf("bad config: %+v", cfg)
	}
}

func TestLoadConfigMissingKey(t *testing.T) {
	path := writeConfig(t, "dl.toml", `
[s3]
input_path = "/data/in"
`)
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "s3.output_path") {
		t.Fatalf("err = %v, want missing s3.output_path", err)
	}
}

func TestLoadConfigLoneCredential(t *testing.T) {
	path := writeConfig(t, "dl.toml", `
[aws]
access_key_id = "AKIA"

[s3]
input_path = "/in"
output_path = "/out"
`)
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for key without secret")
	}
}

func TestLoadConfigUnknownFormat(t *testing.T) {
	path := writeConfig(t, "dl.cfg", "x=1\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected unsupported format error")
	}
}
