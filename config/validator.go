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

	"github.com/go-playground/validator/v10"

	"dirpx.dev/cvm/apis"
)

var v = validator.New()

// Validate checks cfg against the struct tags on apis.Config.
func Validate(cfg apis.Config) error {
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("cvm(config): invalid config: %w", err)
	}
	return nil
}
