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
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"dirpx.dev/cvm/apis"
)

// DefaultEnvPrefix is the environment prefix Load uses when none is given.
const DefaultEnvPrefix = "CVM_"

// Load builds an apis.Config from two layers on top of DefaultConfig
// (highest precedence last):
//
//  1. The YAML file at path, skipped when path is empty.
//  2. Environment variables starting with prefix, where "__" maps to "."
//     and the remainder is lower-cased (CVM_MAX_UNWRAP -> max_unwrap).
//
// The merged result is validated before it is returned.
func Load(path, prefix string) (apis.Config, error) {
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	log := zap.S()

	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			log.Errorw("config yaml load failed", "file", path, "err", err)
			return apis.Config{}, fmt.Errorf("cvm(config): load %s: %w", path, err)
		}
		log.Debugw("config yaml loaded", "file", path)
	}

	if err := k.Load(env.Provider(prefix, ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, prefix), "__", "."))
	}), nil); err != nil {
		log.Errorw("config env overlay failed", "err", err)
		return apis.Config{}, fmt.Errorf("cvm(config): env overlay: %w", err)
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", &cfg); err != nil {
		log.Errorw("config unmarshal failed", "err", err)
		return apis.Config{}, fmt.Errorf("cvm(config): unmarshal: %w", err)
	}

	if err := Validate(cfg); err != nil {
		log.Errorw("config validation failed", "err", err)
		return apis.Config{}, err
	}

	log.Debugw("config loaded",
		"max_unwrap", cfg.MaxUnwrap,
		"fatal_anomalies", cfg.FatalAnomalies,
		"section_reload_policy", cfg.SectionReloadPolicy,
	)
	return cfg, nil
}
