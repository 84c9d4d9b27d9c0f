package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the data directory at a temp dir so no real config.yaml
// is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SKINCARE_DATA_DIR", dir)
	return dir
}

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, filepath.Join(dir, "diary.db"), cfg.DBPath)
	assert.Equal(t, filepath.Join(dir, "products.json"), cfg.CatalogPath)
	assert.Equal(t, "en", cfg.Lang)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 8, cfg.Recommend.Limit)
	assert.Equal(t, 2, cfg.Recommend.Quotas["serum"])
	assert.Equal(t, "unknown", cfg.Profile.SkinType)
	assert.Equal(t, 5000, cfg.Profile.MonthlyBudget)
	assert.Equal(t, 3, cfg.Profile.AMMinutes)
	assert.Equal(t, 10, cfg.Profile.PMMinutes)
}

func TestLoad_DataDirConfigFile(t *testing.T) {
	dir := isolate(t)
	writeYAML(t, dir, "lang: ja\nprofile:\n  skin_type: dry\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "ja", cfg.Lang)
	assert.Equal(t, "dry", cfg.Profile.SkinType)
}

func TestLoad_ExplicitFile(t *testing.T) {
	isolate(t)
	path := writeYAML(t, t.TempDir(), `
db_path: /tmp/custom.db
log:
  level: debug
  format: json
server:
  addr: "127.0.0.1:9090"
  read_timeout: 5s
recommend:
  limit: 4
  quotas:
    serum: 1
fetch:
  timeout: 10s
profile:
  concerns: [dryness, redness]
  fragrance: fragrance_free
  am_minutes: 2
  allergies: [lanolin]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/custom.db", cfg.DBPath)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 4, cfg.Recommend.Limit)
	assert.Equal(t, 1, cfg.Recommend.Quotas["serum"])
	assert.Equal(t, 10*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, []string{"dryness", "redness"}, cfg.Profile.Concerns)
	assert.Equal(t, "fragrance_free", cfg.Profile.Fragrance)
	assert.Equal(t, 2, cfg.Profile.AMMinutes)
	assert.Equal(t, []string{"lanolin"}, cfg.Profile.Allergies)
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	path := writeYAML(t, t.TempDir(), "lang: en\nlog:\n  level: warn\n")
	t.Setenv("SKINCARE_LANG", "ja")
	t.Setenv("SKINCARE_LOG_LEVEL", "debug")
	t.Setenv("SKINCARE_PROFILE_PM_MINUTES", "15")
	t.Setenv("SKINCARE_SERVER_ADDR", ":9999")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ja", cfg.Lang)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 15, cfg.Profile.PMMinutes)
	assert.Equal(t, ":9999", cfg.Server.Addr)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "unsupported lang", yaml: "lang: fr\n"},
		{name: "unsupported fallback", yaml: "fallback_lang: de\n"},
		{name: "bad log format", yaml: "log:\n  format: xml\n"},
		{name: "zero limit", yaml: "recommend:\n  limit: 0\n"},
		{name: "negative quota", yaml: "recommend:\n  quotas:\n    serum: -1\n"},
		{name: "zero fetch timeout", yaml: "fetch:\n  timeout: 0s\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			path := writeYAML(t, t.TempDir(), tt.yaml)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_CustomLabelsAllowAnyLang(t *testing.T) {
	isolate(t)
	path := writeYAML(t, t.TempDir(), "lang: fr\nlabels_path: /etc/skincare/labels.yaml\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "fr", cfg.Lang)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)
	assert.NoError(t, validateConfig(cfg))
	assert.Equal(t, filepath.Join(cfg.DataDir, "diary.db"), cfg.DBPath)
}
