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

// Namer lets a model supply its own description for diagnostics.
//
// When a model implements Namer, anomaly reports use EntityName instead of
// the reflected "pkg.Type" name. EntityName describes the kind of entity,
// not the instance, and must be cheap and free of I/O.
type Namer interface {
	// EntityName returns the canonical, type-level name for this entity.
	EntityName() string
}

// ReuseIdentifiable is implemented by views that carry the identifier they
// were created under. The view factory compares it with the identifier used
// at registration to detect resource misconfiguration.
type ReuseIdentifiable interface {
	ReuseIdentifier() string
}
