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

// Package anomaly defines the developer-facing diagnostics the dispatch layer
// reports and the sinks that receive them.
//
// Anomalies never cross the widget boundary as errors or panics on their
// own. Every one is funneled through a single Sink; whether a report is
// fatal is a property of the sink, not of the anomaly.
package anomaly

import (
	"fmt"
	"strings"

	"dirpx.dev/cvm/apis"
)

// Kind classifies an anomaly.
type Kind int

const (
	// NilModel means storage had no model where a cell had to be created.
	NilModel Kind = iota + 1
	// NilSupplementaryModel is NilModel for supplementary views.
	NilSupplementaryModel
	// NoMappingFound means no cell mapping matched the model.
	NoMappingFound
	// NoSupplementaryMappingFound means no supplementary mapping matched.
	NoSupplementaryMappingFound
	// ReuseIdentifierMismatch means a dequeued view reports an identifier
	// other than the one it was registered under.
	ReuseIdentifierMismatch
	// ResourceTypeMismatch means a resource's root view has the wrong type.
	ResourceTypeMismatch
	// EmptyResource means a resource has no root views.
	EmptyResource
	// EventRegisteredForUnmappedType means a view-keyed reaction targets a
	// view type with no mapping; it can never fire.
	EventRegisteredForUnmappedType
	// EventRegisteredWithViewTypeForModelSignature means a model-keyed
	// signature was registered with a view type as its argument.
	EventRegisteredWithViewTypeForModelSignature
	// UnusedEventDetected means a reaction is registered but its view type
	// is no longer mapped.
	UnusedEventDetected
	// DequeueFailed means the widget could not produce a view.
	DequeueFailed
)

var kindNames = map[Kind]string{
	NilModel:                                     "nil_model",
	NilSupplementaryModel:                        "nil_supplementary_model",
	NoMappingFound:                               "no_mapping_found",
	NoSupplementaryMappingFound:                  "no_supplementary_mapping_found",
	ReuseIdentifierMismatch:                      "reuse_identifier_mismatch",
	ResourceTypeMismatch:                         "resource_type_mismatch",
	EmptyResource:                                "empty_resource",
	EventRegisteredForUnmappedType:               "event_registered_for_unmapped_type",
	EventRegisteredWithViewTypeForModelSignature: "event_registered_with_view_type_for_model_signature",
	UnusedEventDetected:                          "unused_event_detected",
	DequeueFailed:                                "dequeue_failed",
}

// String returns the snake_case name of k, used as a metric label.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Kinds lists every defined kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kindNames))
	for k := NilModel; k <= DequeueFailed; k++ {
		out = append(out, k)
	}
	return out
}

// Anomaly is one reported diagnostic. Fields that do not apply to the kind
// are left zero.
type Anomaly struct {
	Kind Kind
	// Position is where the problem was observed, when there is one.
	Position apis.Position
	HasPos   bool
	// ViewKind is the view kind involved.
	ViewKind apis.ViewKind
	// Model describes the model involved.
	Model string
	// ViewType describes the view type involved.
	ViewType string
	// Signature is the reaction signature involved.
	Signature apis.Signature
	// Expected and Actual carry the two sides of a mismatch.
	Expected string
	Actual   string
	// Resource names the resource involved.
	Resource string
	// Err is an underlying error, if any.
	Err error
}

// Error implements error.
func (a Anomaly) Error() string {
	var b strings.Builder
	b.WriteString("cvm: ")
	b.WriteString(a.Kind.String())
	add := func(k, v string) {
		if v == "" {
			return
		}
		b.WriteString(" ")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(v)
	}
	if a.HasPos {
		add("position", a.Position.String())
	}
	add("kind", a.ViewKind.String())
	add("model", a.Model)
	add("view", a.ViewType)
	add("signature", string(a.Signature))
	add("expected", a.Expected)
	add("actual", a.Actual)
	add("resource", a.Resource)
	if a.Err != nil {
		add("err", a.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (a Anomaly) Unwrap() error { return a.Err }

// Is matches another Anomaly by kind, so errors.Is(err, Anomaly{Kind: k}) works.
func (a Anomaly) Is(target error) bool {
	t, ok := target.(Anomaly)
	return ok && t.Kind == a.Kind
}

// At returns a copy of a located at pos.
func (a Anomaly) At(pos apis.Position) Anomaly {
	a.Position = pos
	a.HasPos = true
	return a
}
