// Package config resolves tscale settings from flags, environment and an
// optional tscale.yaml file, in that order of precedence.
package config

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/roach88/tscale/internal/leapsec"
	"github.com/roach88/tscale/internal/store"
)

const (
	// DBFlag is the name of the setting for the table store database path
	DBFlag = "db"
	// TableFlag selects the leap-second table: builtin, store, or a file path
	TableFlag = "table"
	// FormatFlag is the name of the output format setting
	FormatFlag = "format"
	// VerboseFlag enables debug logging
	VerboseFlag = "verbose"
	// LogFileFlag sends logs to a rotating file instead of stderr
	LogFileFlag = "log-file"
	// NTPServerFlag is the server queried by `now --ntp`
	NTPServerFlag = "ntp-server"
	// ConfigPathFlag is the name of the setting for the config file directory
	ConfigPathFlag = "config-path"
)

// Table sources other than a file path.
const (
	TableBuiltin = "builtin"
	TableStore   = "store"
)

// EnvPrefix is prepended to environment variable names, e.g. TSCALE_TABLE.
const EnvPrefix = "tscale"

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Config is the resolved configuration.
type Config struct {
	DB         string `mapstructure:"db"`
	Table      string `mapstructure:"table"`
	Format     string `mapstructure:"format"`
	Verbose    bool   `mapstructure:"verbose"`
	LogFile    string `mapstructure:"log-file"`
	NTPServer  string `mapstructure:"ntp-server"`
	ConfigPath string `mapstructure:"config-path"`
}

// Bind registers the global flags on flags and returns a viper instance
// bound to them and to TSCALE_* environment variables.
func Bind(flags *pflag.FlagSet) *viper.Viper {
	vcfg := viper.New()
	// env values are typed from the defaults, so every key needs one
	vcfg.SetTypeByDefaultValue(true)

	vcfg.SetDefault(DBFlag, "tscale.db")
	flags.String(DBFlag, "tscale.db", "SQLite database holding imported tables")

	vcfg.SetDefault(TableFlag, TableBuiltin)
	flags.String(TableFlag, TableBuiltin, "leap-second table: builtin, store, or a .yaml/.cue/.list file")

	vcfg.SetDefault(FormatFlag, "text")
	flags.String(FormatFlag, "text", "output format (json|text)")

	vcfg.SetDefault(VerboseFlag, false)
	flags.BoolP(VerboseFlag, "v", false, "verbose output")

	vcfg.SetDefault(LogFileFlag, "")
	flags.String(LogFileFlag, "", "write logs to this file, rotated by size")

	vcfg.SetDefault(NTPServerFlag, "pool.ntp.org")
	flags.String(NTPServerFlag, "pool.ntp.org", "NTP server queried by now --ntp")

	vcfg.SetDefault(ConfigPathFlag, ".")
	flags.String(ConfigPathFlag, ".", "directory searched for tscale.yaml")

	for _, name := range []string{DBFlag, TableFlag, FormatFlag, VerboseFlag, LogFileFlag, NTPServerFlag, ConfigPathFlag} {
		// this should never happen, flags are constant
		if err := vcfg.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}

	vcfg.SetEnvPrefix(EnvPrefix)
	vcfg.AutomaticEnv()
	// hard to set env vars with hyphens, bash doesn't like it
	vcfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	return vcfg
}

// Load reads the config file, if any, and decodes the merged settings.
// A missing tscale.yaml is not an error; unknown keys in one are.
func Load(vcfg *viper.Viper) (*Config, error) {
	vcfg.SetConfigName("tscale")
	vcfg.SetConfigType("yaml")
	vcfg.AddConfigPath(vcfg.GetString(ConfigPathFlag))

	if err := vcfg.ReadInConfig(); err != nil {
		// config file not found is harmless
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
	}

	cfg := new(Config)
	if err := vcfg.UnmarshalExact(cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that flags cannot constrain.
func (c *Config) Validate() error {
	if !slices.Contains(ValidFormats, c.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", c.Format, ValidFormats)
	}
	if c.Table == "" {
		return errors.New("table source must not be empty")
	}
	if c.Table == TableStore && c.DB == "" {
		return errors.New("table source \"store\" needs a database path")
	}
	return nil
}

// Rules resolves the configured table source. The returned label names
// where the table came from.
func (c *Config) Rules(ctx context.Context) (*leapsec.Table, string, error) {
	switch c.Table {
	case TableBuiltin:
		return leapsec.Default(), TableBuiltin, nil
	case TableStore:
		st, err := store.Open(c.DB)
		if err != nil {
			return nil, "", err
		}
		defer st.Close()
		table, rev, err := st.LatestTable(ctx)
		if err != nil {
			return nil, "", fmt.Errorf("latest stored table in %s: %w", c.DB, err)
		}
		return table, "store:" + rev.ID, nil
	default:
		table, err := leapsec.LoadFile(c.Table)
		if err != nil {
			return nil, "", err
		}
		return table, c.Table, nil
	}
}
