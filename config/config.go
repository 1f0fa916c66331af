package config

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// ByteOrder selects how integer and addressing values are decoded
type ByteOrder string

const (
	BigEndian    ByteOrder = "big"
	LittleEndian ByteOrder = "little"
)

// Binary returns the encoding/binary order. An empty order is little-endian.
func (o ByteOrder) Binary() binary.ByteOrder {
	if o == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// UnmarshalYAML accepts big/little and the be/le abbreviations.
func (o *ByteOrder) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseByteOrder(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*o = parsed
	return nil
}

// ParseByteOrder parses a byte order name
func ParseByteOrder(s string) (ByteOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "big", "be", "bigendian", "big-endian":
		return BigEndian, nil
	case "little", "le", "littleendian", "little-endian":
		return LittleEndian, nil
	}
	return "", fmt.Errorf("unknown byte order %q", s)
}

// Enforcement selects what happens when an array exceeds max_array_count
type Enforcement string

const (
	EnforceWarn Enforcement = "warn"
	EnforceFail Enforcement = "fail"
)

// UnmarshalYAML rejects anything but warn/fail.
func (e *Enforcement) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	switch Enforcement(strings.ToLower(s)) {
	case EnforceWarn:
		*e = EnforceWarn
	case EnforceFail:
		*e = EnforceFail
	default:
		return fmt.Errorf("line %d: unknown enforce_max_count %q (want warn or fail)", node.Line, s)
	}
	return nil
}

// Config represents the layout toolkit configuration
type Config struct {
	ByteOrder       ByteOrder   `yaml:"byte_order"`
	MaxArrayCount   int         `yaml:"max_array_count"`
	EnforceMaxCount Enforcement `yaml:"enforce_max_count"`
	Logging         Logging     `yaml:"logging"`
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		ByteOrder:       LittleEndian,
		MaxArrayCount:   0,
		EnforceMaxCount: EnforceWarn,
		Logging: Logging{
			Level: "info",
		},
	}
}

// Validate checks value ranges not covered by the YAML decoders
func (c *Config) Validate() error {
	if c.MaxArrayCount < 0 {
		return fmt.Errorf("max_array_count must be >= 0, got %d", c.MaxArrayCount)
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}

// Parse decodes YAML on top of DefaultConfig, so omitted keys keep their defaults
func Parse(data []byte) (*Config, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

// LoadConfig loads configuration from the specified path
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Build creates a production zap logger at the configured level
func (l Logging) Build() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}
