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

// Resolver turns a runtime model and position into mappings.
// Typical chain: candidate filtering, then Strategy selection.
type Resolver interface {
	// Candidates returns, in registration order, the mappings of kind whose
	// model type is the unwrapped dynamic type of model and whose condition
	// accepts (pos, model). A nil or empty model yields no candidates.
	Candidates(kind ViewKind, model any, pos Position) []*Mapping

	// Resolve picks a single mapping from Candidates, or reports false.
	Resolve(kind ViewKind, model any, pos Position) (*Mapping, bool)
}
