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

// NewFirstStrategy creates an apis.Strategy that picks the first candidate.
// Candidates arrive in registration order, so the first registered wins.
func NewFirstStrategy() apis.Strategy {
	return firstStrategy{}
}

// firstStrategy is the universal fallback: it handles any non-empty list.
type firstStrategy struct{}

// Ensure firstStrategy implements apis.Strategy.
var _ apis.Strategy = firstStrategy{}

// TrySelect returns candidates[0].
func (firstStrategy) TrySelect(candidates []*apis.Mapping, _ any, _ apis.Position) (*apis.Mapping, bool) {
	if len(candidates) == 0 {
		return nil, false
	}
	return candidates[0], true
}
