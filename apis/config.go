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

package apis

// Section reload policies for Config.SectionReloadPolicy.
const (
	// ReloadMixed escalates to a full reload when section inserts, deletes or
	// updates share a batch with item changes.
	ReloadMixed = "mixed"
	// ReloadAlways escalates on any section insert, delete or update.
	ReloadAlways = "always"
	// ReloadNever always trusts incremental updates.
	ReloadNever = "never"
)

// Config carries read-only knobs for mapping resolution and dispatch.
// It is passed by value and should be treated as immutable by implementations.
type Config struct {
	// MaxUnwrap limits how many pointer or interface layers are stripped
	// from a model before matching. Deeper values resolve to "no model".
	MaxUnwrap int `koanf:"max_unwrap" validate:"min=1,max=64"`

	// FatalAnomalies makes the default anomaly sink panic after logging.
	FatalAnomalies bool `koanf:"fatal_anomalies"`

	// SectionReloadPolicy is one of ReloadMixed, ReloadAlways, ReloadNever.
	SectionReloadPolicy string `koanf:"section_reload_policy" validate:"oneof=mixed always never"`

	// UpdateInPlace re-runs the mapping update handler on live views for
	// updated items instead of asking the widget to reload them.
	UpdateInPlace bool `koanf:"update_in_place"`

	// DefaultBundle is used for resource lookups when a mapping names none.
	DefaultBundle string `koanf:"default_bundle"`
}
