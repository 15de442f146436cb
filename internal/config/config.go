// Package config owns the on-disk configuration file and the process-wide
// numeric settings derived from it.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/axon-ml/axon/internal/tensor"
)

// Recognized tags for the enumerated keys.
const (
	ChannelsFirst = "channels_first"
	ChannelsLast  = "channels_last"
)

// Defaults written when no configuration file exists.
const (
	DefaultBackend         = "cpu"
	DefaultFloatx          = "float32"
	DefaultEpsilon         = 1e-7
	DefaultImageDataFormat = ChannelsLast
)

// EnvBackend overrides the file's backend key when set.
const EnvBackend = "AXON_BACKEND"

// EnvHome overrides the directory holding the configuration file.
const EnvHome = "AXON_HOME"

const fileName = "axon.json"

// Config mirrors the JSON configuration file. Exactly these four keys are
// recognized; anything else in the file is an error.
type Config struct {
	ImageDataFormat string  `json:"image_data_format"`
	Epsilon         float64 `json:"epsilon"`
	Floatx          string  `json:"floatx"`
	Backend         string  `json:"backend"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ImageDataFormat: DefaultImageDataFormat,
		Epsilon:         DefaultEpsilon,
		Floatx:          DefaultFloatx,
		Backend:         DefaultBackend,
	}
}

// Path resolves the configuration file location: $AXON_HOME/axon.json when
// the variable is set, ~/.axon/axon.json otherwise.
func Path() (string, error) {
	if home := os.Getenv(EnvHome); home != "" {
		return filepath.Join(home, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolving home directory: %w", err)
	}
	return filepath.Join(home, ".axon", fileName), nil
}

// Load reads the configuration file. A missing file is not an error: the
// defaults are written to disk and returned, so the first run materializes an
// editable file. The AXON_BACKEND environment variable, when set, overrides
// the backend key.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		if werr := Save(cfg, path); werr != nil {
			return Config{}, werr
		}
	case err != nil:
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	if env := os.Getenv(EnvBackend); env != "" {
		cfg.Backend = env
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration as indented JSON, creating the directory if
// needed.
func Save(cfg Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: creating %s: %w", filepath.Dir(path), err)
	}
	data, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return fmt.Errorf("config: encoding: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: writing %s: %w", path, err)
	}
	return nil
}

// Validate checks every key against its allowed tags.
func (c Config) Validate() error {
	if c.ImageDataFormat != ChannelsFirst && c.ImageDataFormat != ChannelsLast {
		return fmt.Errorf("image_data_format %q: must be %q or %q",
			c.ImageDataFormat, ChannelsFirst, ChannelsLast)
	}
	if c.Epsilon <= 0 {
		return fmt.Errorf("epsilon %v: must be positive", c.Epsilon)
	}
	if _, err := FloatxType(c.Floatx); err != nil {
		return err
	}
	if c.Backend == "" {
		return fmt.Errorf("backend: must not be empty")
	}
	return nil
}

// FloatxType maps a floatx tag to its tensor data type.
func FloatxType(floatx string) (tensor.DataType, error) {
	switch floatx {
	case "float16":
		return tensor.Float16, nil
	case "float32":
		return tensor.Float32, nil
	case "float64":
		return tensor.Float64, nil
	default:
		return 0, fmt.Errorf("floatx %q: must be \"float16\", \"float32\" or \"float64\"", floatx)
	}
}
