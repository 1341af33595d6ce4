package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"unicode"

	"github.com/iwvelando/fantasy-f1-optimiser/pkg/constants"
	"github.com/spf13/viper"
)

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Address     string `yaml:"address" mapstructure:"address"`
	MaxBodySize string `yaml:"maxBodySize" mapstructure:"maxBodySize"`

	bodySizeBytes int64
}

// LoadServerConfig layers an optional server configuration file over base.
// If the file does not exist, base is returned normalized.
func LoadServerConfig(path string, base ServerConfig) (ServerConfig, error) {
	cfg := base
	if strings.TrimSpace(path) == "" {
		return cfg, cfg.Normalize()
	}

	v := viper.New()
	v.SetDefault("address", base.Address)
	v.SetDefault("maxBodySize", base.MaxBodySize)
	v.SetConfigType("yaml")
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound) {
			return cfg, cfg.Normalize()
		}
		return ServerConfig{}, fmt.Errorf("failed to read server config: %w", err)
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return ServerConfig{}, fmt.Errorf("failed to parse server config: %w", err)
	}
	if err := cfg.Normalize(); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}

// Normalize applies the default address and resolves MaxBodySize.
func (s *ServerConfig) Normalize() error {
	if s.Address == "" {
		s.Address = constants.DefaultServerAddress
	}

	sizeStr := strings.TrimSpace(s.MaxBodySize)
	if sizeStr == "" {
		s.bodySizeBytes = constants.DefaultMaxUploadSizeBytes
		s.MaxBodySize = fmt.Sprintf("%d", constants.DefaultMaxUploadSizeBytes)
		return nil
	}

	bytes, err := ParseSize(sizeStr)
	if err != nil {
		return fmt.Errorf("server maxBodySize: %w", err)
	}
	if bytes <= 0 {
		bytes = constants.DefaultMaxUploadSizeBytes
	}
	s.bodySizeBytes = bytes
	return nil
}

// BodySizeBytes returns the request body limit in bytes.
func (s ServerConfig) BodySizeBytes() int64 {
	if s.bodySizeBytes <= 0 {
		return constants.DefaultMaxUploadSizeBytes
	}
	return s.bodySizeBytes
}

// ParseSize converts a human-friendly byte string (e.g., "256K", "10M") into bytes.
func ParseSize(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return constants.DefaultMaxUploadSizeBytes, nil
	}

	upper := strings.ToUpper(trimmed)
	idx := len(upper)
	for idx > 0 && !unicode.IsDigit(rune(upper[idx-1])) {
		idx--
	}
	if idx == 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}
	numPart := strings.TrimSpace(upper[:idx])
	unitPart := strings.TrimSpace(upper[idx:])

	n, err := strconv.ParseInt(numPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}

	var multiplier int64
	switch unitPart {
	case "", "B":
		multiplier = 1
	case "K", "KB":
		multiplier = 1024
	case "M", "MB":
		multiplier = 1024 * 1024
	default:
		return 0, fmt.Errorf("unsupported size unit %q", unitPart)
	}

	result := n * multiplier
	if result < 0 {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return result, nil
}
