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

// Resource is an external view definition (the Go stand-in for a nib or
// storyboard scene). Views instantiates the resource's root views.
type Resource interface {
	// Name returns the resource name the probe found.
	Name() string
	// Views instantiates and returns the resource's top-level views.
	Views() []any
}

// ResourceProbe answers "does a view definition exist for this name" and
// loads it. Implementations are supplied by the host.
type ResourceProbe interface {
	// Exists reports whether a resource called name exists in bundle.
	Exists(name, bundle string) bool
	// Load returns the resource called name from bundle.
	Load(name, bundle string) (Resource, error)
}
