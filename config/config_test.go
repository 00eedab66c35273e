package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fitzgen/kosmograd/config"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	require.Equal(t, 10, cfg.Greeting.Count)
	require.Equal(t, "Jeena", cfg.Greeting.Name)
	require.Equal(t, "goodbye", cfg.Guest.Export)
	require.Empty(t, cfg.Guest.Path, "no guest is wired by default")
	require.False(t, cfg.Debug)
}

func TestLoad_explicit_file(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"greeting:\n  count: 1\nguest:\n  path: goodbye.wasm\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, 1, cfg.Greeting.Count)
	require.Equal(t, "Jeena", cfg.Greeting.Name,
		"fields absent from the file keep their defaults")
	require.Equal(t, "goodbye.wasm", cfg.Guest.Path)
	require.Equal(t, "goodbye", cfg.Guest.Export)
}

func TestLoad_guest_env(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"guest:\n  path: goodbye.wasm\n  env:\n    - LANG=en\n    - MOOD=wistful\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"LANG=en", "MOOD=wistful"}, cfg.Guest.Env)
}

func TestLoad_explicit_file_missing(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err, "an explicitly named config file must exist")
}

func TestLoad_unknown_keys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("farewells: 3\n"), 0o644))

	_, err := config.Load(path)
	require.Error(t, err, "unknown keys are rejected")
}

func TestLoad_env_overrides_file(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"greeting:\n  count: 3\n  name: Ada\n"), 0o644))

	t.Setenv("KOSMOGRAD_COUNT", "7")
	t.Setenv("KOSMOGRAD_NAME", "Grace")
	t.Setenv("KOSMOGRAD_GUEST", "env.wasm")
	t.Setenv("KOSMOGRAD_DEBUG", "true")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, 7, cfg.Greeting.Count)
	require.Equal(t, "Grace", cfg.Greeting.Name)
	require.Equal(t, "env.wasm", cfg.Guest.Path)
	require.True(t, cfg.Debug)
}

func TestLoad_env_bad_values_ignored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("greeting:\n  count: 3\n"), 0o644))

	t.Setenv("KOSMOGRAD_COUNT", "many")
	t.Setenv("KOSMOGRAD_DEBUG", "perhaps")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, 3, cfg.Greeting.Count,
		"unparsable environment values fall through to the file layer")
	require.False(t, cfg.Debug)
}
