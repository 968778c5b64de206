package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tscale/internal/leapsec"
	"github.com/roach88/tscale/internal/store"
	"github.com/roach88/tscale/internal/utc"
)

func load(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	vcfg := Bind(flags)
	// keep a stray tscale.yaml in the package dir out of the tests
	args = append([]string{"--config-path", t.TempDir()}, args...)
	require.NoError(t, flags.Parse(args))
	return Load(vcfg)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(t)
	require.NoError(t, err)

	assert.Equal(t, "tscale.db", cfg.DB)
	assert.Equal(t, TableBuiltin, cfg.Table)
	assert.Equal(t, "text", cfg.Format)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, cfg.LogFile)
	assert.Equal(t, "pool.ntp.org", cfg.NTPServer)
}

func TestLoad_Flags(t *testing.T) {
	cfg, err := load(t, "--format", "json", "-v", "--table", "store", "--db", "x.db")
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Format)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, TableStore, cfg.Table)
	assert.Equal(t, "x.db", cfg.DB)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("TSCALE_NTP_SERVER", "time.example.org")
	t.Setenv("TSCALE_VERBOSE", "true")

	cfg, err := load(t)
	require.NoError(t, err)
	assert.Equal(t, "time.example.org", cfg.NTPServer)
	assert.True(t, cfg.Verbose)

	// flags win over the environment
	cfg, err = load(t, "--ntp-server", "flag.example.org")
	require.NoError(t, err)
	assert.Equal(t, "flag.example.org", cfg.NTPServer)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tscale.yaml"), []byte("format: json\nlog-file: /tmp/tscale.log\n"), 0o600))

	cfg, err := load(t, "--config-path", dir)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "/tmp/tscale.log", cfg.LogFile)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("unknown key in config file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "tscale.yaml"), []byte("colour: blue\n"), 0o600))
		_, err := load(t, "--config-path", dir)
		assert.ErrorContains(t, err, "unable to parse config")
	})

	t.Run("malformed config file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "tscale.yaml"), []byte("format: [json\n"), 0o600))
		_, err := load(t, "--config-path", dir)
		assert.ErrorContains(t, err, "unable to read config file")
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := load(t, "--format", "xml")
		assert.ErrorContains(t, err, "invalid format")
	})

	t.Run("store without database", func(t *testing.T) {
		_, err := load(t, "--table", "store", "--db", "")
		assert.Error(t, err)
	})
}

func TestRules(t *testing.T) {
	ctx := context.Background()

	t.Run("builtin", func(t *testing.T) {
		table, source, err := (&Config{Table: TableBuiltin}).Rules(ctx)
		require.NoError(t, err)
		assert.Same(t, leapsec.Default(), table)
		assert.Equal(t, "builtin", source)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "table.yaml")
		f, err := os.Create(path)
		require.NoError(t, err)
		require.NoError(t, leapsec.Default().WriteYAML(f))
		require.NoError(t, f.Close())

		table, source, err := (&Config{Table: path}).Rules(ctx)
		require.NoError(t, err)
		assert.Equal(t, leapsec.Default().Digest(), table.Digest())
		assert.Equal(t, path, source)
	})

	t.Run("store", func(t *testing.T) {
		db := filepath.Join(t.TempDir(), "tscale.db")
		cfg := &Config{Table: TableStore, DB: db}

		_, _, err := cfg.Rules(ctx)
		assert.Error(t, err, "empty store")

		st, err := store.Open(db)
		require.NoError(t, err)
		at, err := utc.Of(57754, 0, leapsec.Default())
		require.NoError(t, err)
		rev, err := st.SaveTable(ctx, leapsec.Default(), "builtin", at)
		require.NoError(t, err)
		require.NoError(t, st.Close())

		table, source, err := cfg.Rules(ctx)
		require.NoError(t, err)
		assert.Equal(t, 27, table.Len())
		assert.Equal(t, "store:"+rev.ID, source)
	})
}
