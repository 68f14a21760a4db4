/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package config

import (
	"dirpx.dev/cvm/apis"
)

const (
	// DefaultMaxUnwrap represents the default for MaxUnwrap.
	// A value of 8 should be sufficient for all practical purposes.
	DefaultMaxUnwrap = 8
	// DefaultFatalAnomalies represents the default for FatalAnomalies.
	// When true, anomalies panic after being logged, like a debug assertion.
	DefaultFatalAnomalies = true
	// DefaultSectionReloadPolicy represents the default for SectionReloadPolicy.
	DefaultSectionReloadPolicy = apis.ReloadMixed
	// DefaultUpdateInPlace represents the default for UpdateInPlace.
	DefaultUpdateInPlace = false
)

// NewConfig constructs an apis.Config from the given options.
func NewConfig(opts ...Option) apis.Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	// Ensure MaxUnwrap is valid.
	if cfg.MaxUnwrap <= 0 {
		cfg.MaxUnwrap = DefaultMaxUnwrap
	}
	if !validPolicy(cfg.SectionReloadPolicy) {
		cfg.SectionReloadPolicy = DefaultSectionReloadPolicy
	}
	return cfg
}

// DefaultConfig is the default configuration used when none is provided.
func DefaultConfig() apis.Config {
	return apis.Config{
		MaxUnwrap:           DefaultMaxUnwrap,
		FatalAnomalies:      DefaultFatalAnomalies,
		SectionReloadPolicy: DefaultSectionReloadPolicy,
		UpdateInPlace:       DefaultUpdateInPlace,
	}
}

// Option is a functional option that mutates an apis.Config during construction.
type Option func(*apis.Config)

// WithMaxUnwrap sets the MaxUnwrap option.
// A non-positive value resets to the default.
func WithMaxUnwrap(max int) Option {
	return func(c *apis.Config) {
		if max <= 0 {
			c.MaxUnwrap = DefaultMaxUnwrap
			return
		}
		c.MaxUnwrap = max
	}
}

// WithFatalAnomalies sets the FatalAnomalies option.
func WithFatalAnomalies(fatal bool) Option {
	return func(c *apis.Config) {
		c.FatalAnomalies = fatal
	}
}

// WithSectionReloadPolicy sets the SectionReloadPolicy option.
// Unknown policies are ignored.
func WithSectionReloadPolicy(policy string) Option {
	return func(c *apis.Config) {
		if validPolicy(policy) {
			c.SectionReloadPolicy = policy
		}
	}
}

// WithUpdateInPlace sets the UpdateInPlace option.
func WithUpdateInPlace(inPlace bool) Option {
	return func(c *apis.Config) {
		c.UpdateInPlace = inPlace
	}
}

// WithDefaultBundle sets the DefaultBundle option.
func WithDefaultBundle(bundle string) Option {
	return func(c *apis.Config) {
		c.DefaultBundle = bundle
	}
}

func validPolicy(p string) bool {
	switch p {
	case apis.ReloadMixed, apis.ReloadAlways, apis.ReloadNever:
		return true
	}
	return false
}
