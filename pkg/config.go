package dupfind

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-ini/ini"
	"github.com/kelseyhightower/envconfig"
)

// Config represents the dupfind configuration
type Config struct {
	configPath string
	ini        *ini.File
}

// HashConfig represents hash algorithm configuration
type HashConfig struct {
	Default string // Default hash algorithm
}

// PerformanceConfig represents performance-related configuration
type PerformanceConfig struct {
	HashBuffer string // Read buffer per hashed file, human size ("64K")
}

// OutputConfig represents console output configuration
type OutputConfig struct {
	Color string // auto, always, never
}

// VerboseConfig represents verbosity configuration
type VerboseConfig struct {
	Level int    // Default verbose level (0=quiet, 1=basic, 2=detailed, 3=trace)
	Debug string // Default debug flags (comma-separated)
}

// AllConfig represents all configuration options
type AllConfig struct {
	Hash        *HashConfig
	Performance *PerformanceConfig
	Output      *OutputConfig
	Verbose     *VerboseConfig
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/dupfind/config
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "dupfind", "config")
}

// LoadConfig loads configuration from configPath. A missing file, or an empty
// path, yields the defaults; nothing is written to disk.
func LoadConfig(configPath string) (*Config, error) {
	cfg := &Config{
		configPath: configPath,
	}

	if configPath != "" {
		iniFile, err := ini.Load(configPath)
		if err == nil {
			cfg.ini = iniFile
			return cfg, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	cfg.ini = ini.Empty()
	if err := cfg.setDefaults(); err != nil {
		return nil, fmt.Errorf("failed to set default config: %w", err)
	}

	return cfg, nil
}

// setDefaults sets default configuration values
func (c *Config) setDefaults() error {
	defaults := []struct {
		section string
		key     string
		value   string
	}{
		{"filehash", "default", DefaultHashAlgorithm},
		{"performance", "hash_buffer", DefaultHashBuffer},
		{"output", "color", DefaultColorMode},
		{"verbose", "level", "0"},
		{"verbose", "debug", ""},
	}

	for _, d := range defaults {
		section, err := c.ini.NewSection(d.section)
		if err != nil {
			return fmt.Errorf("failed to create %s section: %w", d.section, err)
		}
		if _, err := section.NewKey(d.key, d.value); err != nil {
			return fmt.Errorf("failed to set default %s.%s: %w", d.section, d.key, err)
		}
	}

	return nil
}

// GetHashConfig returns the hash configuration
func (c *Config) GetHashConfig() *HashConfig {
	hashConfig := &HashConfig{
		Default: DefaultHashAlgorithm,
	}

	if c.ini.HasSection("filehash") {
		section := c.ini.Section("filehash")
		if section.HasKey("default") {
			hashConfig.Default = section.Key("default").String()
		}
	}

	return hashConfig
}

// GetPerformanceConfig returns the performance configuration
func (c *Config) GetPerformanceConfig() *PerformanceConfig {
	performanceConfig := &PerformanceConfig{
		HashBuffer: DefaultHashBuffer,
	}

	if c.ini.HasSection("performance") {
		section := c.ini.Section("performance")
		if section.HasKey("hash_buffer") {
			if bufferSize := section.Key("hash_buffer").String(); bufferSize != "" {
				performanceConfig.HashBuffer = bufferSize
			}
		}
	}

	return performanceConfig
}

// GetOutputConfig returns the output configuration
func (c *Config) GetOutputConfig() *OutputConfig {
	outputConfig := &OutputConfig{
		Color: DefaultColorMode,
	}

	if c.ini.HasSection("output") {
		section := c.ini.Section("output")
		if section.HasKey("color") {
			outputConfig.Color = section.Key("color").String()
		}
	}

	return outputConfig
}

// GetVerboseConfig returns the verbose configuration
func (c *Config) GetVerboseConfig() *VerboseConfig {
	verboseConfig := &VerboseConfig{}

	if c.ini.HasSection("verbose") {
		section := c.ini.Section("verbose")
		if section.HasKey("level") {
			if level, err := section.Key("level").Int(); err == nil {
				verboseConfig.Level = level
			}
		}
		if section.HasKey("debug") {
			verboseConfig.Debug = section.Key("debug").String()
		}
	}

	return verboseConfig
}

// GetAllConfig returns all configuration options
func (c *Config) GetAllConfig() *AllConfig {
	return &AllConfig{
		Hash:        c.GetHashConfig(),
		Performance: c.GetPerformanceConfig(),
		Output:      c.GetOutputConfig(),
		Verbose:     c.GetVerboseConfig(),
	}
}

// ApplyOverrides applies command-line overrides to the configuration
// Accepts strings like "algorithm:blake3", "hash_buffer:1M", "color:never", "debug:scan"
func (c *Config) ApplyOverrides(overrides []string) error {
	for _, override := range overrides {
		parts := strings.SplitN(override, ":", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid override format '%s', expected 'key:value'", override)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch key {
		case "algorithm", "default":
			c.ini.Section("filehash").Key("default").SetValue(value)
		case "hash_buffer":
			c.ini.Section("performance").Key("hash_buffer").SetValue(value)
		case "color":
			c.ini.Section("output").Key("color").SetValue(value)
		case "level":
			c.ini.Section("verbose").Key("level").SetValue(value)
		case "debug":
			c.ini.Section("verbose").Key("debug").SetValue(value)
		default:
			return fmt.Errorf("unsupported override key '%s' (supported: algorithm, hash_buffer, color, level, debug)", key)
		}
	}

	return nil
}

// Validate checks every merged value
func (c *Config) Validate() error {
	all := c.GetAllConfig()

	if err := ValidateHashAlgorithm(all.Hash.Default); err != nil {
		return err
	}

	if err := ValidateHashBuffer(all.Performance.HashBuffer); err != nil {
		return err
	}
	if err := ValidateColorMode(all.Output.Color); err != nil {
		return err
	}
	return ValidateVerboseLevel(all.Verbose.Level)
}

// ValidateHashAlgorithm validates that a hash algorithm is supported
func ValidateHashAlgorithm(algorithm string) error {
	if _, ok := HashTypeFromName(algorithm); !ok {
		return fmt.Errorf("%w: %s (supported: sha256, sha512_256, blake3)", ErrUnsupportedAlgorithm, algorithm)
	}
	return nil
}

// ValidateHashBuffer validates a human-readable hash buffer size
func ValidateHashBuffer(size string) error {
	if _, err := ParseHumanSize(size); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBufferSize, err)
	}
	return nil
}

// ValidateColorMode validates that a color mode is supported
func ValidateColorMode(mode string) error {
	switch strings.ToLower(mode) {
	case "auto", "always", "never":
		return nil
	default:
		return fmt.Errorf("%w: %s (supported: auto, always, never)", ErrInvalidColorMode, mode)
	}
}

// ValidateVerboseLevel validates that a verbose level is valid
func ValidateVerboseLevel(level int) error {
	if level < 0 || level > 3 {
		return fmt.Errorf("%w: %d (supported: 0-3)", ErrInvalidVerboseLevel, level)
	}
	return nil
}

// EnvOverrides holds the DUPFIND_* environment variables
type EnvOverrides struct {
	Config     string `envconfig:"CONFIG"`
	Algorithm  string `envconfig:"ALGORITHM"`
	HashBuffer string `envconfig:"HASH_BUFFER"`
	Color      string `envconfig:"COLOR"`
}

// LoadEnvOverrides reads the DUPFIND_* environment variables
func LoadEnvOverrides() (*EnvOverrides, error) {
	var env EnvOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return &env, nil
}

// Overrides converts the set variables into ApplyOverrides form
func (e *EnvOverrides) Overrides() []string {
	var overrides []string
	add := func(key, value string) {
		if value != "" {
			overrides = append(overrides, key+":"+value)
		}
	}

	add("algorithm", e.Algorithm)
	add("hash_buffer", e.HashBuffer)
	add("color", e.Color)

	return overrides
}
