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

package mapping

import (
	"reflect"

	"dirpx.dev/cvm/apis"
	"dirpx.dev/cvm/config"
	uref "dirpx.dev/cvm/utils/reflect"
)

// NewTable constructs an apis.Registry that normalizes model types according
// to cfg. Only MaxUnwrap is used here.
func NewTable(cfg apis.Config) apis.Registry {
	if cfg.MaxUnwrap <= 0 {
		cfg.MaxUnwrap = config.DefaultMaxUnwrap
	}
	return &table{cfg: cfg, byModel: make(map[reflect.Type][]*apis.Mapping)}
}

// table keeps mappings in registration order plus an index by base model
// type, so lookups pre-filter in O(1) before the linear condition scan.
// It is not safe for concurrent use; the owning widget thread is the only caller.
type table struct {
	// cfg is the configuration used for type normalization.
	cfg apis.Config
	// entries holds every mapping in registration order.
	entries []*apis.Mapping
	// byModel maps base model type to its mappings, in registration order.
	byModel map[reflect.Type][]*apis.Mapping
}

// Add normalizes m's declared model type and appends m.
func (r *table) Add(m *apis.Mapping) error {
	// Validate inputs early.
	if m == nil || m.ViewType == nil {
		return ErrNilViewType
	}
	declared := m.DeclaredModelType
	if declared == nil {
		declared = m.ModelType
	}
	if declared == nil {
		return ErrNilModelType
	}
	if m.ReuseIdentifier == "" {
		return ErrEmptyIdentifier
	}

	base, err := uref.Normalize(declared, r.cfg.MaxUnwrap)
	if err != nil {
		return err
	}
	m.DeclaredModelType = declared
	m.ModelType = base

	r.entries = append(r.entries, m)
	r.byModel[base] = append(r.byModel[base], m)
	return nil
}

// Remove deletes every mapping for (viewType, kind) and rebuilds the index.
func (r *table) Remove(viewType reflect.Type, kind apis.ViewKind) []*apis.Mapping {
	var removed []*apis.Mapping
	kept := r.entries[:0]
	for _, m := range r.entries {
		if m.ViewType == viewType && m.Kind == kind {
			removed = append(removed, m)
			continue
		}
		kept = append(kept, m)
	}
	// Clear the tail so removed mappings can be collected.
	for i := len(kept); i < len(r.entries); i++ {
		r.entries[i] = nil
	}
	r.entries = kept

	if len(removed) > 0 {
		r.reindex()
	}
	return removed
}

// Lookup returns the mappings whose base model type is modelType.
func (r *table) Lookup(modelType reflect.Type) []*apis.Mapping {
	if modelType == nil {
		return nil
	}
	ms := r.byModel[modelType]
	out := make([]*apis.Mapping, len(ms))
	copy(out, ms)
	return out
}

// Entries returns a snapshot in registration order.
func (r *table) Entries() []*apis.Mapping {
	out := make([]*apis.Mapping, len(r.entries))
	copy(out, r.entries)
	return out
}

// Count returns the number of registered mappings.
func (r *table) Count() int {
	return len(r.entries)
}

// Reset clears all registered mappings.
func (r *table) Reset() {
	r.entries = nil
	r.byModel = make(map[reflect.Type][]*apis.Mapping)
}

func (r *table) reindex() {
	r.byModel = make(map[reflect.Type][]*apis.Mapping, len(r.byModel))
	for _, m := range r.entries {
		r.byModel[m.ModelType] = append(r.byModel[m.ModelType], m)
	}
}
