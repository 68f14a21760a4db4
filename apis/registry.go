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

import "reflect"

// Condition decides whether a mapping applies to a model at a position.
// A nil Condition always applies.
type Condition func(pos Position, model any) bool

// UpdateFunc transfers model data onto a freshly dequeued view. model is
// already adapted to the mapping's DeclaredModelType.
type UpdateFunc func(view, model any, pos Position)

// Mapping is one registered (model type, view type, kind) association.
//
// A Mapping is built during registration, may be adjusted by registration
// options, and is immutable once appended to a Registry.
type Mapping struct {
	// Kind is the view kind this mapping serves.
	Kind ViewKind
	// ModelType is the base model type used for matching (pointer layers stripped).
	ModelType reflect.Type
	// DeclaredModelType is the model type as written by the caller.
	DeclaredModelType reflect.Type
	// ViewType is the dynamic type of the views this mapping dequeues.
	ViewType reflect.Type
	// ReuseIdentifier is the key registered with the widget.
	ReuseIdentifier string
	// ResourceName names a resource backing ViewType; empty means probe by identifier.
	ResourceName string
	// Bundle scopes resource lookups.
	Bundle string
	// CodeOnly skips resource probing entirely.
	CodeOnly bool
	// Condition filters the mapping per position and model.
	Condition Condition
	// Update configures a dequeued view with its model.
	Update UpdateFunc
	// New constructs a view for code-only registrations.
	New func() any
}

// Accepts evaluates the mapping's condition; a nil condition accepts everything.
func (m *Mapping) Accepts(pos Position, model any) bool {
	if m.Condition == nil {
		return true
	}
	return m.Condition(pos, model)
}

// Registry is the ordered mapping table owned by a view factory.
// Implementations must preserve registration order in every result.
type Registry interface {
	// Add appends m. It fails on a nil mapping or missing types.
	Add(m *Mapping) error
	// Remove deletes every mapping for (viewType, kind) and returns them.
	Remove(viewType reflect.Type, kind ViewKind) []*Mapping
	// Lookup returns the mappings whose base model type is modelType.
	Lookup(modelType reflect.Type) []*Mapping
	// Entries returns a snapshot of all mappings in registration order.
	Entries() []*Mapping
	// Count returns the number of mappings.
	Count() int
	// Reset removes every mapping.
	Reset()
}
