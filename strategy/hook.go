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

package strategy

import (
	"dirpx.dev/cvm/apis"
)

// HookFunc lets a host pick one mapping when several candidates survive
// filtering. model is the unwrapped model. Returning nil defers to the
// next strategy.
type HookFunc func(candidates []*apis.Mapping, model any, pos apis.Position) *apis.Mapping

// NewHookStrategy creates an apis.Strategy backed by a host hook.
// It only runs when more than one candidate remains, and a hook result that
// is not one of the candidates is ignored.
func NewHookStrategy(fn HookFunc) apis.Strategy {
	if fn == nil {
		return nil
	}
	return &hookStrategy{fn: fn}
}

// hookStrategy consults a host-provided selection hook.
type hookStrategy struct {
	fn HookFunc
}

// Ensure hookStrategy implements apis.Strategy.
var _ apis.Strategy = (*hookStrategy)(nil)

// TrySelect asks the hook to choose among candidates.
func (s *hookStrategy) TrySelect(candidates []*apis.Mapping, model any, pos apis.Position) (*apis.Mapping, bool) {
	if len(candidates) < 2 {
		return nil, false
	}
	picked := s.fn(candidates, model, pos)
	if picked == nil {
		return nil, false
	}
	for _, c := range candidates {
		if c == picked {
			return picked, true
		}
	}
	return nil, false
}
