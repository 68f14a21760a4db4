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
	"errors"
	"reflect"
	"strings"

	"dirpx.dev/cvm/apis"
)

var (
	// ErrNilViewType is returned when a mapping has no view type.
	ErrNilViewType = errors.New("cvm(mapping): nil view type provided")
	// ErrNilModelType is returned when a mapping has no model type.
	ErrNilModelType = errors.New("cvm(mapping): nil model type provided")
	// ErrEmptyIdentifier is returned when an option cleared the reuse identifier.
	ErrEmptyIdentifier = errors.New("cvm(mapping): empty reuse identifier")
)

// Option adjusts a mapping during registration, before it is appended.
type Option func(*apis.Mapping)

// New builds a mapping of kind from viewType to modelType. The reuse
// identifier defaults to DefaultIdentifier(viewType). Options run in order.
func New(kind apis.ViewKind, viewType, modelType reflect.Type, update apis.UpdateFunc, opts ...Option) (*apis.Mapping, error) {
	if viewType == nil {
		return nil, ErrNilViewType
	}
	if modelType == nil {
		return nil, ErrNilModelType
	}
	m := &apis.Mapping{
		Kind:              kind,
		DeclaredModelType: modelType,
		ViewType:          viewType,
		ReuseIdentifier:   DefaultIdentifier(viewType),
		Update:            update,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	if m.ReuseIdentifier == "" {
		return nil, ErrEmptyIdentifier
	}
	return m, nil
}

// DefaultIdentifier derives a reuse identifier from a view type: its bare
// name without pointer stars, package or type parameters.
func DefaultIdentifier(t reflect.Type) string {
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name := t.Name()
	if name == "" {
		return t.String()
	}
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	return name
}

// WithCondition sets the mapping's condition. A nil condition always applies.
func WithCondition(c apis.Condition) Option {
	return func(m *apis.Mapping) {
		m.Condition = c
	}
}

// WithReuseIdentifier overrides the reuse identifier.
func WithReuseIdentifier(id string) Option {
	return func(m *apis.Mapping) {
		m.ReuseIdentifier = id
	}
}

// WithResource names the resource backing the view type explicitly.
func WithResource(name string) Option {
	return func(m *apis.Mapping) {
		m.ResourceName = name
		m.CodeOnly = false
	}
}

// WithBundle scopes resource lookups to bundle.
func WithBundle(bundle string) Option {
	return func(m *apis.Mapping) {
		m.Bundle = bundle
	}
}

// CodeOnly skips resource probing; views are built with the constructor.
func CodeOnly() Option {
	return func(m *apis.Mapping) {
		m.ResourceName = ""
		m.CodeOnly = true
	}
}

// WithConstructor sets the constructor used for code-only views.
func WithConstructor(fn func() any) Option {
	return func(m *apis.Mapping) {
		m.New = fn
	}
}

// InSection is a condition matching positions in section.
func InSection(section int) apis.Condition {
	return func(pos apis.Position, _ any) bool {
		return pos.Section == section
	}
}

// All combines conditions; it matches when every non-nil condition matches.
func All(conds ...apis.Condition) apis.Condition {
	return func(pos apis.Position, model any) bool {
		for _, c := range conds {
			if c != nil && !c(pos, model) {
				return false
			}
		}
		return true
	}
}
