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

package reaction

import (
	"errors"
	"fmt"
	"reflect"

	"dirpx.dev/cvm/apis"
	"dirpx.dev/cvm/config"
	uref "dirpx.dev/cvm/utils/reflect"
)

var (
	// ErrNilReaction is returned for a nil reaction or a nil closure.
	ErrNilReaction = errors.New("cvm(reaction): nil reaction or closure")
	// ErrShapeMismatch is returned when a reaction's shape cannot serve its signature.
	ErrShapeMismatch = errors.New("cvm(reaction): reaction shape does not fit signature")
)

// Registry is the ordered, append-only collection of reactions owned by one
// dispatcher. It is not safe for concurrent use.
type Registry struct {
	maxUnwrap int
	entries   []Reaction
	bySig     map[apis.Signature]int
	listeners []func(Reaction)
}

// NewRegistry returns an empty registry unwrapping models up to maxUnwrap
// pointer layers. A non-positive value uses the default.
func NewRegistry(maxUnwrap int) *Registry {
	if maxUnwrap <= 0 {
		maxUnwrap = config.DefaultMaxUnwrap
	}
	return &Registry{maxUnwrap: maxUnwrap, bySig: make(map[apis.Signature]int)}
}

// OnChange adds a listener called after every successful Register.
func (r *Registry) OnChange(fn func(Reaction)) {
	if fn != nil {
		r.listeners = append(r.listeners, fn)
	}
}

// Register validates and appends rx, then notifies listeners. Model keys
// are normalized to their base type.
func (r *Registry) Register(rx Reaction) error {
	if isNil(rx) {
		return ErrNilReaction
	}
	if err := checkShape(rx); err != nil {
		return err
	}
	if mp, ok := rx.(*ModelPosition); ok {
		base, err := uref.Normalize(mp.ModelType, r.maxUnwrap)
		if err != nil {
			return fmt.Errorf("cvm(reaction): %s: %w", rx.Signature(), err)
		}
		mp.ModelType = base
	}
	r.entries = append(r.entries, rx)
	r.bySig[rx.Signature()]++
	for _, fn := range r.listeners {
		fn(rx)
	}
	return nil
}

// Find returns the first reaction, in registration order, for sig and kind
// whose key is satisfied: a view key by the exact dynamic type of view, a
// model key by the exact base type of the unwrapped model.
func (r *Registry) Find(sig apis.Signature, kind apis.ViewKind, view, model any) (Reaction, bool) {
	if r.bySig[sig] == 0 {
		return nil, false
	}
	var viewType, modelType reflect.Type
	if view != nil {
		viewType = reflect.TypeOf(view)
	}
	if rv, ok := uref.Unwrap(model, r.maxUnwrap); ok {
		modelType = rv.Type()
	}
	for _, rx := range r.entries {
		if rx.Signature() != sig || rx.Kind() != kind {
			continue
		}
		switch {
		case rx.ViewKey() != nil:
			if viewType == nil || rx.ViewKey() != viewType {
				continue
			}
		case rx.ModelKey() != nil:
			if modelType == nil || rx.ModelKey() != modelType {
				continue
			}
		}
		return rx, true
	}
	return nil, false
}

// Invoke calls rx with args. ok is false when rx is nil.
func Invoke(rx Reaction, args Args) (result any, ok bool) {
	if isNil(rx) {
		return nil, false
	}
	return rx.Invoke(args), true
}

// Has reports whether any reaction answers sig.
func (r *Registry) Has(sig apis.Signature) bool { return r.bySig[sig] > 0 }

// Signatures returns the signatures with at least one reaction, in the
// order of apis.Signatures.
func (r *Registry) Signatures() []apis.Signature {
	var out []apis.Signature
	for _, s := range apis.Signatures() {
		if r.bySig[s] > 0 {
			out = append(out, s)
		}
	}
	return out
}

// Count returns the number of registered reactions.
func (r *Registry) Count() int { return len(r.entries) }

// Entries returns a snapshot in registration order.
func (r *Registry) Entries() []Reaction {
	return append([]Reaction(nil), r.entries...)
}

func checkShape(rx Reaction) error {
	sig := rx.Signature()
	mismatch := func() error { return fmt.Errorf("%w: %s", ErrShapeMismatch, sig) }
	switch v := rx.(type) {
	case *ViewModelPosition:
		if v.Fn == nil {
			return ErrNilReaction
		}
		if v.ViewType == nil || sig.ModelKeyed() || sig.Unkeyed() {
			return mismatch()
		}
	case *ViewModelPositionExtra:
		if v.Fn == nil {
			return ErrNilReaction
		}
		if v.ViewType == nil || sig.ModelKeyed() || sig.Unkeyed() {
			return mismatch()
		}
	case *ModelPosition:
		if v.Fn == nil {
			return ErrNilReaction
		}
		if v.ModelType == nil || sig.Unkeyed() {
			return mismatch()
		}
	case *NoArgument:
		if v.Fn == nil {
			return ErrNilReaction
		}
		if !isContentSig(sig) && sig != apis.IndexTitles {
			return mismatch()
		}
	case *Section:
		if v.Fn == nil {
			return ErrNilReaction
		}
		if !sig.SectionKeyed() {
			return mismatch()
		}
	case *IndexTitle:
		if v.Fn == nil {
			return ErrNilReaction
		}
		if sig != apis.PositionForIndexTitle {
			return mismatch()
		}
	default:
		return fmt.Errorf("%w: unknown shape %T", ErrShapeMismatch, rx)
	}
	return nil
}

func isContentSig(s apis.Signature) bool {
	return s == apis.WillUpdateContent || s == apis.DidUpdateContent
}

func isNil(rx Reaction) bool {
	if rx == nil {
		return true
	}
	v := reflect.ValueOf(rx)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
