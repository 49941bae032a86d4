package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultsWithNoFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Run.BufferMode)
	assert.Equal(t, 2048, cfg.Limits.MaxLineLength)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blockfold.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
run:
  bufferMode: tempfile
limits:
  maxLineLength: 4096
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "tempfile", cfg.Run.BufferMode)
	assert.Equal(t, 4096, cfg.Limits.MaxLineLength)
	assert.Equal(t, "info", cfg.Logging.Level, "unset fields keep their default")
}

func TestValidateConfig_RejectsInvalidBufferMode(t *testing.T) {
	cfg := &Config{Run: RunConfig{BufferMode: "disk"}, Limits: LimitsConfig{MaxLineLength: 2048}}
	assert.Error(t, ValidateConfig(cfg))
}

func TestValidateConfig_RequiresRegionAndKeyWhenBucketSet(t *testing.T) {
	cfg := &Config{
		Run:    RunConfig{BufferMode: "memory"},
		Limits: LimitsConfig{MaxLineLength: 2048},
		S3:     S3Config{Bucket: "my-bucket"},
	}
	assert.Error(t, ValidateConfig(cfg))

	cfg.S3.Region = "us-east-1"
	assert.Error(t, ValidateConfig(cfg), "still missing key")

	cfg.S3.Key = "lists/ads.txt"
	assert.NoError(t, ValidateConfig(cfg))
}

func TestSanitizeConfigForLogging_RedactsCredentials(t *testing.T) {
	cfg := &Config{S3: S3Config{Bucket: "b", AccessKeyID: "AKIA...", SecretKey: "shh"}}
	out := SanitizeConfigForLogging(cfg)
	s3 := out["s3"].(map[string]interface{})
	assert.Equal(t, "[CONFIGURED]", s3["credentials"])
	assert.NotContains(t, s3, "accessKeyId")
}
