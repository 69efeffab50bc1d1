package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/recon/internal/matching"
)

// FileName is the config file at the root of a recon repo.
const FileName = "recon.yaml"

// EnvPrefix prefixes environment overrides, e.g. RECON_GST_RATE.
const EnvPrefix = "RECON"

// Config represents the top-level recon.yaml configuration.
type Config struct {
	Owner    OwnerConfig    `yaml:"owner" mapstructure:"owner"`
	GST      GSTConfig      `yaml:"gst" mapstructure:"gst"`
	Matching MatchingConfig `yaml:"matching" mapstructure:"matching"`
	Accounts []Account      `yaml:"accounts,omitempty" mapstructure:"accounts"`
	Storage  StorageConfig  `yaml:"storage" mapstructure:"storage"`
	RunLog   RunLogConfig   `yaml:"runlog" mapstructure:"runlog"`
}

// OwnerConfig identifies whose accounts are being reconciled.
type OwnerConfig struct {
	Name string `yaml:"name" mapstructure:"name"`
}

// GSTConfig holds the tax rate as a decimal string, e.g. "0.10".
type GSTConfig struct {
	Rate string `yaml:"rate" mapstructure:"rate"`
}

// MatchingConfig tunes internal transfer detection.
type MatchingConfig struct {
	DateWindowDays int    `yaml:"date_window_days" mapstructure:"date_window_days"` // 0 = any date
	AmbiguousRows  string `yaml:"ambiguous_rows" mapstructure:"ambiguous_rows"`     // "allow" or "exclude"
}

// Account is an owned bank account and its statement file.
type Account struct {
	Bank    string `yaml:"bank" mapstructure:"bank"`
	Account string `yaml:"account" mapstructure:"account"`
	Preset  string `yaml:"preset,omitempty" mapstructure:"preset"`
	File    string `yaml:"file,omitempty" mapstructure:"file"`
}

// StorageConfig locates the session database and results files.
type StorageConfig struct {
	DBPath     string `yaml:"db_path" mapstructure:"db_path"`
	ResultsDir string `yaml:"results_dir" mapstructure:"results_dir"`
}

// RunLogConfig locates the run log.
type RunLogConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

var defaults = map[string]any{
	"owner.name":                "",
	"gst.rate":                  "0.10",
	"matching.date_window_days": 0,
	"matching.ambiguous_rows":   string(matching.AllowAmbiguous),
	"storage.db_path":           "sessions.db",
	"storage.results_dir":       "results",
	"runlog.path":               "logs/run-log.csv",
}

// Load reads a recon.yaml file from disk. Any key can be overridden from the
// environment: gst.rate is RECON_GST_RATE.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new repo.
func Default(owner string) *Config {
	return &Config{
		Owner: OwnerConfig{Name: owner},
		GST:   GSTConfig{Rate: "0.10"},
		Matching: MatchingConfig{
			DateWindowDays: 0,
			AmbiguousRows:  string(matching.AllowAmbiguous),
		},
		Storage: StorageConfig{
			DBPath:     "sessions.db",
			ResultsDir: "results",
		},
		RunLog: RunLogConfig{Path: "logs/run-log.csv"},
	}
}

// Rate returns the GST rate.
func (c *Config) Rate() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(c.GST.Rate))
	if err != nil {
		return decimal.Zero, fmt.Errorf("gst.rate %q: %w", c.GST.Rate, err)
	}
	return rate, nil
}

// MatchingOptions converts the matching section into engine options.
func (c *Config) MatchingOptions() (matching.Options, error) {
	policy, err := matching.ParseAmbiguousPolicy(c.Matching.AmbiguousRows)
	if err != nil {
		return matching.Options{}, fmt.Errorf("matching.ambiguous_rows: %w", err)
	}
	return matching.Options{DateWindow: c.Matching.DateWindowDays, AmbiguousRows: policy}, nil
}

// Validate reports every problem in the config.
func (c *Config) Validate() error {
	var errs []error
	rate, err := c.Rate()
	switch {
	case err != nil:
		errs = append(errs, err)
	case !rate.IsPositive():
		errs = append(errs, fmt.Errorf("gst.rate must be positive, got %s", c.GST.Rate))
	}
	if _, err := c.MatchingOptions(); err != nil {
		errs = append(errs, err)
	}
	if c.Matching.DateWindowDays < 0 {
		errs = append(errs, fmt.Errorf("matching.date_window_days must not be negative, got %d", c.Matching.DateWindowDays))
	}
	for i, a := range c.Accounts {
		if strings.TrimSpace(a.Bank) == "" {
			errs = append(errs, fmt.Errorf("accounts[%d]: bank is required", i))
		}
		if strings.TrimSpace(a.Account) == "" {
			errs = append(errs, fmt.Errorf("accounts[%d]: account is required", i))
		}
	}
	return errors.Join(errs...)
}

// Resolve returns p relative to root unless it is already absolute.
func Resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
