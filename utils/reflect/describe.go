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
	"path"
	"reflect"
	"strings"
	"sync"

	"dirpx.dev/cvm/apis"
)

// typeNameCache caches described type names by reflect.Type.
var typeNameCache sync.Map // key: reflect.Type, val: string

// Describe returns a short human-readable description of v for diagnostics.
// Models implementing apis.Namer describe themselves; everything else is
// described by its unwrapped type as "pkg.Type".
func Describe(v any) string {
	if v == nil {
		return "<nil>"
	}
	if n, ok := v.(apis.Namer); ok {
		return n.EntityName()
	}
	if rv, ok := Unwrap(v, DefaultMaxUnwrap); ok {
		if rv.CanInterface() {
			if n, ok := rv.Interface().(apis.Namer); ok {
				return n.EntityName()
			}
		}
		return DescribeType(rv.Type())
	}
	return "<nil " + DescribeType(reflect.TypeOf(v)) + ">"
}

// DescribeType renders t as "pkg.Type", stripping generic instantiation
// parameters. Builtin and unnamed types use reflect's own spelling.
func DescribeType(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if v, ok := typeNameCache.Load(t); ok {
		return v.(string)
	}

	var name string
	switch {
	case t.Kind() == reflect.Pointer:
		name = "*" + DescribeType(t.Elem())
	case t.Name() == "":
		name = t.String()
	case t.PkgPath() == "":
		name = t.Name()
	default:
		name = path.Base(t.PkgPath()) + "." + stripTypeParams(t.Name())
	}

	typeNameCache.Store(t, name)
	return name
}

// stripTypeParams removes generic type instantiation suffix: "T[int,string]" -> "T".
func stripTypeParams(s string) string {
	if i := strings.IndexByte(s, '['); i >= 0 {
		return s[:i]
	}
	return s
}
