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

package builder

import (
	"dirpx.dev/cvm/apis"
	"dirpx.dev/cvm/mapping"
	"dirpx.dev/cvm/resolver"
	"dirpx.dev/cvm/strategy"
)

// New creates and returns a new instance of an apis.Builder.
func New() apis.Builder {
	return &builder{}
}

// builder is an empty struct to be used as a receiver for builder methods.
type builder struct{}

// BuildRegistry builds and returns a new apis.Registry for cfg. If a
// previous registry is provided, its mappings are copied over in order.
func (b *builder) BuildRegistry(cfg apis.Config, prev apis.Registry) apis.Registry {
	nreg := mapping.NewTable(cfg)
	if prev != nil {
		for _, m := range prev.Entries() {
			_ = nreg.Add(m)
		}
	}
	return nreg
}

// BuildResolver builds the default resolver: the host hook first (when
// given), then first-registered selection.
func (b *builder) BuildResolver(cfg apis.Config, reg apis.Registry, hook apis.Strategy) apis.Resolver {
	return resolver.New(cfg, reg, hook, strategy.NewFirstStrategy())
}
