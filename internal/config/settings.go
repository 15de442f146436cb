package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/axon-ml/axon/internal/tensor"
)

// settings is the process-wide view of the configuration: loaded lazily on
// first access, then adjustable through the setters.
var settings = struct {
	mu   sync.RWMutex
	once sync.Once
	cfg  Config
}{}

func ensureLoaded() {
	settings.once.Do(func() {
		cfg, err := Load()
		if err != nil {
			// A broken file falls back to the defaults; surfacing it here
			// would turn every accessor into an error return.
			cfg = Default()
			if env := os.Getenv(EnvBackend); env != "" {
				cfg.Backend = env
			}
		}
		settings.mu.Lock()
		settings.cfg = cfg
		settings.mu.Unlock()
	})
}

// Current returns a copy of the active configuration.
func Current() Config {
	ensureLoaded()
	settings.mu.RLock()
	defer settings.mu.RUnlock()
	return settings.cfg
}

// Epsilon returns the fuzz constant used in numeric expressions.
func Epsilon() float64 {
	return Current().Epsilon
}

// SetEpsilon replaces the fuzz constant.
func SetEpsilon(eps float64) error {
	if eps <= 0 {
		return fmt.Errorf("config: epsilon %v: must be positive", eps)
	}
	ensureLoaded()
	settings.mu.Lock()
	defer settings.mu.Unlock()
	settings.cfg.Epsilon = eps
	return nil
}

// Floatx returns the default float precision tag.
func Floatx() string {
	return Current().Floatx
}

// SetFloatx replaces the default float precision.
func SetFloatx(floatx string) error {
	if _, err := FloatxType(floatx); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	ensureLoaded()
	settings.mu.Lock()
	defer settings.mu.Unlock()
	settings.cfg.Floatx = floatx
	return nil
}

// FloatxDataType returns the tensor data type for the active floatx tag.
func FloatxDataType() tensor.DataType {
	dt, err := FloatxType(Floatx())
	if err != nil {
		return tensor.Float32
	}
	return dt
}

// ImageDataFormat returns the active image layout tag.
func ImageDataFormat() string {
	return Current().ImageDataFormat
}

// SetImageDataFormat replaces the image layout tag.
func SetImageDataFormat(format string) error {
	if format != ChannelsFirst && format != ChannelsLast {
		return fmt.Errorf("config: image_data_format %q: must be %q or %q",
			format, ChannelsFirst, ChannelsLast)
	}
	ensureLoaded()
	settings.mu.Lock()
	defer settings.mu.Unlock()
	settings.cfg.ImageDataFormat = format
	return nil
}

// BackendName returns the configured engine tag, after any AXON_BACKEND
// override.
func BackendName() string {
	return Current().Backend
}
