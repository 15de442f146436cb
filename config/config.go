// Copyright 2026 Axon ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package config exposes the global framework settings: floatx (the default
// float dtype), epsilon (the fuzz factor), the image data format and the
// default engine name.
//
// Settings load from $AXON_HOME/axon.json, falling back to ~/.axon/axon.json.
// A missing file is created with defaults on first load. The AXON_BACKEND
// environment variable overrides the configured engine name.
package config

import (
	"github.com/axon-ml/axon/internal/config"
	"github.com/axon-ml/axon/tensor"
)

// Config is the on-disk settings file.
type Config = config.Config

// Image data format tags.
const (
	ChannelsFirst = config.ChannelsFirst
	ChannelsLast  = config.ChannelsLast
)

// Defaults written when no settings file exists.
const (
	DefaultBackend         = config.DefaultBackend
	DefaultFloatx          = config.DefaultFloatx
	DefaultEpsilon         = config.DefaultEpsilon
	DefaultImageDataFormat = config.DefaultImageDataFormat
)

// Environment variables honored by the loader.
const (
	EnvBackend = config.EnvBackend
	EnvHome    = config.EnvHome
)

// Default returns the built-in settings.
func Default() Config { return config.Default() }

// Path returns the resolved settings file location.
func Path() (string, error) { return config.Path() }

// Load reads the settings file, creating it with defaults when missing.
func Load() (Config, error) { return config.Load() }

// Save writes cfg to the settings file location.
func Save(cfg Config) error {
	path, err := config.Path()
	if err != nil {
		return err
	}
	return config.Save(cfg, path)
}

// Current returns the active settings, loading them on first use.
func Current() Config { return config.Current() }

// Epsilon returns the fuzz factor used in numeric expressions.
func Epsilon() float64 { return config.Epsilon() }

// SetEpsilon changes the fuzz factor for this process.
func SetEpsilon(eps float64) error { return config.SetEpsilon(eps) }

// Floatx returns the default float dtype tag, such as "float32".
func Floatx() string { return config.Floatx() }

// SetFloatx changes the default float dtype tag for this process.
func SetFloatx(tag string) error { return config.SetFloatx(tag) }

// FloatxDataType returns the default float dtype as a tensor.DataType.
func FloatxDataType() tensor.DataType { return config.FloatxDataType() }

// ImageDataFormat returns "channels_first" or "channels_last".
func ImageDataFormat() string { return config.ImageDataFormat() }

// SetImageDataFormat changes the image data format for this process.
func SetImageDataFormat(format string) error { return config.SetImageDataFormat(format) }

// BackendName returns the configured engine name.
func BackendName() string { return config.BackendName() }

// FloatxType resolves a floatx tag to its DataType.
func FloatxType(tag string) (tensor.DataType, error) { return config.FloatxType(tag) }
