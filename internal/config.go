package internal

import (
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Enrichment modes.
const (
	EnrichModeHeuristic = "heuristic"
	EnrichModeNone      = "none"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Vault  VaultConfig       `yaml:"vault"`
	Enrich EnrichConfig      `yaml:"enrich"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	return c.Enrich.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// VaultConfig holds the path to the Markdown vault directory.
type VaultConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// EnrichConfig selects the enrichment delegate used when processing notes.
//
// Mode controls which delegate runs:
//   - "heuristic" (default): local scoring based on note structure.
//   - "none": enrichment is skipped entirely; notes never auto-advance.
type EnrichConfig struct {
	Mode string `yaml:"mode"`
}

// Validate validates the enrichment configuration.
func (c *EnrichConfig) Validate() error {
	// Normalise empty mode to "heuristic".
	if c.Mode == "" {
		c.Mode = EnrichModeHeuristic
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(EnrichModeHeuristic, EnrichModeNone)),
	)
}

// Enabled returns true when an enrichment delegate should run.
func (c *EnrichConfig) Enabled() bool {
	return c.Mode != EnrichModeNone
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		Vault: VaultConfig{
			Path: "./vault",
		},
		Enrich: EnrichConfig{
			Mode: EnrichModeHeuristic,
		},
	}
}
