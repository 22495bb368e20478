package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := NewLoader().WithDotEnv(false).WithLookupEnv(noEnv).Load("")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "en-US", cfg.Speech.Lang)
	assert.False(t, cfg.Speech.Continuous)
	assert.False(t, cfg.Speech.InterimResults)
	assert.Equal(t, 1, cfg.Speech.MaxAlternatives)
	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeFile(t, "voicecmd.yaml", `
lang: de-DE
max_alternatives: 3
interim_results: true
normalize: true
catalog: commands.cue
addr: ":9000"
log_level: debug
`)

	cfg, err := NewLoader().WithDotEnv(false).WithLookupEnv(noEnv).Load(path)
	require.NoError(t, err)

	assert.Equal(t, "de-DE", cfg.Speech.Lang)
	assert.Equal(t, 3, cfg.Speech.MaxAlternatives)
	assert.True(t, cfg.Speech.InterimResults)
	assert.False(t, cfg.Speech.Continuous)
	assert.True(t, cfg.Normalize)
	assert.Equal(t, "commands.cue", cfg.Catalog)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_EmptyFileKeepsDefaults(t *testing.T) {
	path := writeFile(t, "empty.yaml", "")

	cfg, err := NewLoader().WithDotEnv(false).WithLookupEnv(noEnv).Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	path := writeFile(t, "bad.yaml", "language: fr-FR\n")

	_, err := NewLoader().WithDotEnv(false).WithLookupEnv(noEnv).Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "language")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := NewLoader().WithDotEnv(false).WithLookupEnv(noEnv).Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "reading config")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "voicecmd.yaml", "lang: de-DE\naddr: \":9000\"\n")

	cfg, err := NewLoader().WithDotEnv(false).WithLookupEnv(envMap(map[string]string{
		"VOICECMD_LANG":             "fr-FR",
		"VOICECMD_CONTINUOUS":       "true",
		"VOICECMD_MAX_ALTERNATIVES": "2",
		"VOICECMD_NORMALIZE":        "1",
		"VOICECMD_LOG_FILE":         "/tmp/voicecmd.log",
	})).Load(path)
	require.NoError(t, err)

	assert.Equal(t, "fr-FR", cfg.Speech.Lang)
	assert.True(t, cfg.Speech.Continuous)
	assert.Equal(t, 2, cfg.Speech.MaxAlternatives)
	assert.True(t, cfg.Normalize)
	assert.Equal(t, "/tmp/voicecmd.log", cfg.LogFile)
	assert.Equal(t, ":9000", cfg.Addr)
}

func TestLoad_InvalidEnv(t *testing.T) {
	tests := map[string]string{
		"VOICECMD_CONTINUOUS":       "maybe",
		"VOICECMD_MAX_ALTERNATIVES": "many",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			_, err := NewLoader().WithDotEnv(false).WithLookupEnv(envMap(map[string]string{key: value})).Load("")
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	path := writeFile(t, ".env", "VOICECMD_ADDR=0.0.0.0:7000\n")
	t.Cleanup(func() { _ = os.Unsetenv("VOICECMD_ADDR") })

	cfg, err := NewLoader().WithDotEnv(true, path).Load("")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:7000", cfg.Addr)
}

func TestLoad_MissingDotEnvIgnored(t *testing.T) {
	_, err := NewLoader().WithDotEnv(true, filepath.Join(t.TempDir(), ".env")).WithLookupEnv(noEnv).Load("")
	assert.NoError(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	bad := Default()
	bad.Speech.MaxAlternatives = 0
	assert.ErrorContains(t, bad.Validate(), "max_alternatives")

	bad = Default()
	bad.Speech.Lang = " "
	assert.ErrorContains(t, bad.Validate(), "lang")

	bad = Default()
	bad.LogLevel = "trace"
	assert.ErrorContains(t, bad.Validate(), "log_level")
}
