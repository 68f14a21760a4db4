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

// Package cvm maps the models of a sectioned collection to the views that
// display them, and routes the widget's callbacks to closures written
// against concrete view and model types.
//
// A host registers one mapping per (view kind, view type, model type):
//
//	cvm.Register(m, func(c *PostCell, p Post, pos apis.Position) {
//		c.Title = p.Title
//	})
//	cvm.RegisterHeader(m, func(h *TitleHeader, s string, _ apis.Position) {
//		h.Text = s
//	})
//
// and reacts to events with the same types:
//
//	cvm.WhenSelected(m, func(c *PostCell, p Post, pos apis.Position) { ... })
//	cvm.SizeForItem(m, func(p Post, _ apis.Position) apis.Size { ... })
//
// # Resolution
//
// When the widget asks for the view at a position, the model stored there
// is unwrapped (pointer levels up to Config.MaxUnwrap, nil at any level
// means "no model") and its base type is matched exactly against the
// mappings of the requested view kind. Mappings with a condition only
// apply when the condition holds for the position and unwrapped model.
// Among several candidates the host hook, if any, picks first; otherwise
// the first registered mapping wins.
//
// # Events
//
// Reactions are keyed by the live view's dynamic type, except size
// callbacks which fire before a view exists and are keyed by model type.
// A callback without a matching reaction falls back to the secondary
// delegate passed with dispatch.WithDelegate and then to a neutral
// default. Registering a reaction re-attaches the manager to the widget
// so cached capability answers are dropped.
//
// # Diagnostics
//
// Misconfiguration is reported as anomaly.Anomaly values to the sink in
// use. By default they are logged; with Config.FatalAnomalies they also
// panic. The sink never sees an anomaly for a callback that is simply
// unhandled.
//
// # Structural updates
//
// Storage changes are applied as one atomic batch each. A change that
// arrives while a batch is in flight is queued until the widget reports
// completion. See package updater for the reload policy.
//
// All operations must run on the goroutine that owns the widget.
package cvm
