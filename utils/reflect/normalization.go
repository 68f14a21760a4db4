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

package reflect

import (
	"errors"
	"reflect"
)

// DefaultMaxUnwrap is used when a non-positive depth is passed.
const DefaultMaxUnwrap = 8

var (
	// ErrReflectNilType is returned when a nil reflect.Type is provided.
	ErrReflectNilType = errors.New("reflect: nil reflect.Type provided")
	// ErrReflectTooDeep indicates that more pointer layers were found than
	// the configured depth allows.
	ErrReflectTooDeep = errors.New("reflect: pointer nesting exceeds max unwrap depth")
	// ErrReflectInterface indicates that the base type is an interface type,
	// which can never be the dynamic type of a model.
	ErrReflectInterface = errors.New("reflect: interface types cannot be matched exactly")
)

// Normalize strips pointer layers from t and returns the base type models
// are matched against. *T, **T and ***T all normalize to T.
//
// If maxUnwrap <= 0, DefaultMaxUnwrap is used.
func Normalize(t reflect.Type, maxUnwrap int) (reflect.Type, error) {
	if t == nil {
		return nil, ErrReflectNilType
	}
	if maxUnwrap <= 0 {
		maxUnwrap = DefaultMaxUnwrap
	}

	for i := 0; t.Kind() == reflect.Pointer; i++ {
		if i >= maxUnwrap {
			return nil, ErrReflectTooDeep
		}
		t = t.Elem()
	}

	if t.Kind() == reflect.Interface {
		return nil, ErrReflectInterface
	}
	return t, nil
}

// Unwrap strips interface and pointer layers from v and returns the innermost
// value. It reports false when v is nil, when any layer is nil, or when more
// than maxUnwrap layers are present. Values reached through a pointer stay
// addressable, so Adapt can hand the original pointer back to callers.
//
// If maxUnwrap <= 0, DefaultMaxUnwrap is used.
func Unwrap(v any, maxUnwrap int) (reflect.Value, bool) {
	if maxUnwrap <= 0 {
		maxUnwrap = DefaultMaxUnwrap
	}

	rv := reflect.ValueOf(v)
	for depth := 0; ; {
		if !rv.IsValid() {
			return reflect.Value{}, false
		}
		switch rv.Kind() {
		case reflect.Pointer:
			if rv.IsNil() || depth >= maxUnwrap {
				return reflect.Value{}, false
			}
			depth++
			rv = rv.Elem()
		case reflect.Interface:
			if rv.IsNil() {
				return reflect.Value{}, false
			}
			rv = rv.Elem()
		default:
			return rv, true
		}
	}
}

// Adapt converts an unwrapped value to the declared type t by re-adding
// pointer layers. When v is addressable the first layer is v's own address,
// so a model stored as *T is handed back as the same pointer.
func Adapt(v reflect.Value, t reflect.Type) (reflect.Value, bool) {
	if !v.IsValid() || t == nil {
		return reflect.Value{}, false
	}
	if v.Type() == t {
		return v, true
	}

	switch t.Kind() {
	case reflect.Pointer:
		inner, ok := Adapt(v, t.Elem())
		if !ok {
			return reflect.Value{}, false
		}
		if inner.CanAddr() && inner.Addr().Type() == t {
			return inner.Addr(), true
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(inner)
		return p, true

	case reflect.Interface:
		if v.Type().Implements(t) {
			out := reflect.New(t).Elem()
			out.Set(v)
			return out, true
		}
	}
	return reflect.Value{}, false
}

// TypeOf returns the reflect.Type of T, including interface and pointer types.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Convert unwraps model and adapts it to t in one step. It reports false
// when model is empty or its base type cannot be adapted to t.
func Convert(model any, t reflect.Type, maxUnwrap int) (any, bool) {
	rv, ok := Unwrap(model, maxUnwrap)
	if !ok {
		return nil, false
	}
	out, ok := Adapt(rv, t)
	if !ok || !out.CanInterface() {
		return nil, false
	}
	return out.Interface(), true
}
