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

// Builder composes a Registry and a Resolver from a Config.
// Implementations may migrate entries from a previous registry, or ignore it.
type Builder interface {
	// BuildRegistry constructs a Registry for cfg. May migrate entries from prev.
	BuildRegistry(cfg Config, prev Registry) Registry
	// BuildResolver constructs a Resolver over reg. hook, when non-nil, is
	// consulted before the default first-registered selection.
	BuildResolver(cfg Config, reg Registry, hook Strategy) Resolver
}
