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

package resolver

import (
	"dirpx.dev/cvm/apis"
	"dirpx.dev/cvm/config"
	uref "dirpx.dev/cvm/utils/reflect"
)

// New constructs an apis.Resolver over reg that filters candidates and then
// tries the given strategies in order to pick one. Nil strategies are ignored.
func New(cfg apis.Config, reg apis.Registry, strategies ...apis.Strategy) apis.Resolver {
	if cfg.MaxUnwrap <= 0 {
		cfg.MaxUnwrap = config.DefaultMaxUnwrap
	}
	// Filter out nils to avoid nil-interface panics on call sites.
	out := make([]apis.Strategy, 0, len(strategies))
	for _, s := range strategies {
		if s != nil {
			out = append(out, s)
		}
	}
	return chain{cfg: cfg, reg: reg, strats: out}
}

// chain is an immutable, order-preserving resolver over a set of strategies.
type chain struct {
	cfg    apis.Config
	reg    apis.Registry
	strats []apis.Strategy
}

// Candidates unwraps model and filters the registry by kind, exact base
// model type and condition, preserving registration order.
func (r chain) Candidates(kind apis.ViewKind, model any, pos apis.Position) []*apis.Mapping {
	cs, _ := r.candidates(kind, model, pos)
	return cs
}

// Resolve runs strategies in order until one handles the candidates.
// Strategies see the unwrapped model, like conditions do.
func (r chain) Resolve(kind apis.ViewKind, model any, pos apis.Position) (*apis.Mapping, bool) {
	cs, unwrapped := r.candidates(kind, model, pos)
	if len(cs) == 0 {
		return nil, false
	}
	for _, s := range r.strats {
		if m, ok := s.TrySelect(cs, unwrapped, pos); ok {
			return m, true
		}
	}
	return nil, false
}

func (r chain) candidates(kind apis.ViewKind, model any, pos apis.Position) ([]*apis.Mapping, any) {
	if r.reg == nil {
		return nil, nil
	}
	rv, ok := uref.Unwrap(model, r.cfg.MaxUnwrap)
	if !ok {
		return nil, nil
	}
	var unwrapped any
	if rv.CanInterface() {
		unwrapped = rv.Interface()
	}

	var out []*apis.Mapping
	for _, m := range r.reg.Lookup(rv.Type()) {
		if m.Kind != kind {
			continue
		}
		if !m.Accepts(pos, unwrapped) {
			continue
		}
		out = append(out, m)
	}
	return out, unwrapped
}
