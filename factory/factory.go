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

// Package factory turns resolved mappings into live views.
//
// A Factory owns the mapping table and the resolver over it. It registers
// view definitions with the widget, dequeues and configures views on
// demand, and degrades every resolution failure to an anomaly report.
package factory

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"dirpx.dev/cvm/anomaly"
	"dirpx.dev/cvm/apis"
	"dirpx.dev/cvm/builder"
	"dirpx.dev/cvm/config"
	"dirpx.dev/cvm/mapping"
	uref "dirpx.dev/cvm/utils/reflect"
)

// ResolveObserver is told about every view the factory produced.
type ResolveObserver interface {
	ViewResolved(kind apis.ViewKind, m *apis.Mapping)
}

// Option configures a Factory.
type Option func(*Factory)

// WithConfig sets the configuration.
func WithConfig(cfg apis.Config) Option {
	return func(f *Factory) { f.cfg = cfg }
}

// WithProbe sets the resource probe used to bootstrap registrations.
func WithProbe(p apis.ResourceProbe) Option {
	return func(f *Factory) { f.probe = p }
}

// WithSink sets the anomaly sink.
func WithSink(s anomaly.Sink) Option {
	return func(f *Factory) {
		if s != nil {
			f.sink = s
		}
	}
}

// WithLogger sets the debug logger.
func WithLogger(log *zap.Logger) Option {
	return func(f *Factory) {
		if log != nil {
			f.log = log
		}
	}
}

// WithHook installs a tie-break strategy consulted before first-registered.
func WithHook(s apis.Strategy) Option {
	return func(f *Factory) { f.hook = s }
}

// WithObserver sets the resolve observer.
func WithObserver(o ResolveObserver) Option {
	return func(f *Factory) { f.observer = o }
}

// WithBuilder replaces the registry and resolver builder.
func WithBuilder(b apis.Builder) Option {
	return func(f *Factory) {
		if b != nil {
			f.builder = b
		}
	}
}

// Factory is the view factory of one dispatcher. It is not safe for
// concurrent use.
type Factory struct {
	cfg      apis.Config
	widget   apis.Widget
	probe    apis.ResourceProbe
	sink     anomaly.Sink
	log      *zap.Logger
	hook     apis.Strategy
	observer ResolveObserver
	builder  apis.Builder

	reg apis.Registry
	res apis.Resolver
}

// New builds a Factory registering views with w.
func New(w apis.Widget, opts ...Option) *Factory {
	f := &Factory{
		cfg:     config.DefaultConfig(),
		widget:  w,
		sink:    anomaly.Discard,
		log:     zap.NewNop(),
		builder: builder.New(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	f.reg = f.builder.BuildRegistry(f.cfg, nil)
	f.res = f.builder.BuildResolver(f.cfg, f.reg, f.hook)
	return f
}

// Reconfigure rebuilds the table and resolver for cfg, keeping mappings in
// registration order. Mappings whose declared model type cfg rejects (for
// example a pointer chain deeper than cfg.MaxUnwrap) are dropped, logged and
// returned.
func (f *Factory) Reconfigure(cfg apis.Config) []*apis.Mapping {
	prev := f.reg
	f.cfg = cfg
	f.reg = f.builder.BuildRegistry(cfg, prev)
	f.res = f.builder.BuildResolver(cfg, f.reg, f.hook)
	if prev == nil {
		return nil
	}

	kept := make(map[*apis.Mapping]bool, f.reg.Count())
	for _, m := range f.reg.Entries() {
		kept[m] = true
	}
	var dropped []*apis.Mapping
	for _, m := range prev.Entries() {
		if kept[m] {
			continue
		}
		dropped = append(dropped, m)
		f.log.Warn("mapping dropped on reconfigure",
			zap.Stringer("view_kind", m.Kind),
			zap.String("view_type", uref.DescribeType(m.ViewType)),
			zap.String("model_type", uref.DescribeType(m.DeclaredModelType)),
			zap.Int("max_unwrap", cfg.MaxUnwrap),
		)
	}
	f.release(dropped)
	return dropped
}

// Register bootstraps m's view definition and appends m.
//
// Unless m is code-only, the resource probe is asked for a resource named
// m.ResourceName, or after the view type's default identifier. A resource
// that is empty or whose root view has the wrong type is reported and the
// registration falls back to the code-only constructor.
func (f *Factory) Register(m *apis.Mapping) error {
	if m == nil {
		return mapping.ErrNilViewType
	}
	def, err := f.definition(m)
	if err != nil {
		return err
	}
	if err := f.reg.Add(m); err != nil {
		return err
	}
	if f.widget != nil {
		f.widget.Register(m.ReuseIdentifier, m.Kind, def)
	}
	f.log.Debug("mapping registered",
		zap.Stringer("kind", m.Kind),
		zap.String("model", uref.DescribeType(m.ModelType)),
		zap.String("view", uref.DescribeType(m.ViewType)),
		zap.String("identifier", m.ReuseIdentifier),
		zap.Bool("resource", def.Resource != nil))
	return nil
}

func (f *Factory) definition(m *apis.Mapping) (apis.Definition, error) {
	def := apis.Definition{Type: m.ViewType, New: m.New}
	if m.CodeOnly || f.probe == nil || m.ViewType == nil {
		return def, nil
	}
	bundle := m.Bundle
	if bundle == "" {
		bundle = f.cfg.DefaultBundle
	}
	name := m.ResourceName
	if name == "" {
		name = mapping.DefaultIdentifier(m.ViewType)
		if !f.probe.Exists(name, bundle) {
			return def, nil
		}
	}
	res, err := f.probe.Load(name, bundle)
	if err != nil {
		return def, fmt.Errorf("cvm(factory): load resource %q: %w", name, err)
	}
	if res == nil {
		return def, fmt.Errorf("cvm(factory): load resource %q: nil resource", name)
	}

	views := res.Views()
	if len(views) == 0 {
		f.sink.Report(anomaly.Anomaly{
			Kind:     anomaly.EmptyResource,
			ViewKind: m.Kind,
			ViewType: uref.DescribeType(m.ViewType),
			Resource: name,
		})
		return def, nil
	}
	if got := reflect.TypeOf(views[0]); got != m.ViewType {
		f.sink.Report(anomaly.Anomaly{
			Kind:     anomaly.ResourceTypeMismatch,
			ViewKind: m.Kind,
			ViewType: uref.DescribeType(m.ViewType),
			Expected: uref.DescribeType(m.ViewType),
			Actual:   uref.DescribeType(got),
			Resource: name,
		})
		return def, nil
	}
	m.ResourceName = name
	def.Resource = res
	return def, nil
}

// Unregister removes every mapping for (viewType, kind). Widget
// registrations are cleared for identifiers no remaining mapping of that
// kind still uses. Mappings of other kinds are untouched.
func (f *Factory) Unregister(viewType reflect.Type, kind apis.ViewKind) int {
	removed := f.reg.Remove(viewType, kind)
	f.release(removed)
	return len(removed)
}

// release clears the widget registration of every identifier in removed
// that no remaining mapping of the same kind still uses.
func (f *Factory) release(removed []*apis.Mapping) {
	if len(removed) == 0 || f.widget == nil {
		return
	}
	type key struct {
		id   string
		kind apis.ViewKind
	}
	inUse := make(map[key]bool)
	for _, m := range f.reg.Entries() {
		inUse[key{m.ReuseIdentifier, m.Kind}] = true
	}
	for _, m := range removed {
		k := key{m.ReuseIdentifier, m.Kind}
		if inUse[k] {
			continue
		}
		inUse[k] = true
		f.widget.Unregister(k.id, k.kind)
	}
}

// ResolvedView resolves, dequeues and configures the view for model at pos.
//
// When nothing matches, NoMappingFound (or NoSupplementaryMappingFound) is
// reported and returned as the error; the caller substitutes an empty view.
func (f *Factory) ResolvedView(kind apis.ViewKind, model any, pos apis.Position) (any, *apis.Mapping, error) {
	m, ok := f.res.Resolve(kind, model, pos)
	if !ok {
		k := anomaly.NoMappingFound
		if !kind.IsCell() {
			k = anomaly.NoSupplementaryMappingFound
		}
		a := anomaly.Anomaly{Kind: k, ViewKind: kind, Model: uref.Describe(model)}.At(pos)
		f.sink.Report(a)
		return nil, nil, a
	}

	view, err := f.widget.Dequeue(m.ReuseIdentifier, kind, pos)
	if err != nil || view == nil {
		a := anomaly.Anomaly{
			Kind:     anomaly.DequeueFailed,
			ViewKind: kind,
			Model:    uref.Describe(model),
			ViewType: uref.DescribeType(m.ViewType),
			Expected: m.ReuseIdentifier,
			Err:      err,
		}.At(pos)
		f.sink.Report(a)
		return nil, m, a
	}

	if ri, ok := view.(apis.ReuseIdentifiable); ok && ri.ReuseIdentifier() != m.ReuseIdentifier {
		f.sink.Report(anomaly.Anomaly{
			Kind:     anomaly.ReuseIdentifierMismatch,
			ViewKind: kind,
			ViewType: uref.DescribeType(m.ViewType),
			Expected: m.ReuseIdentifier,
			Actual:   ri.ReuseIdentifier(),
		}.At(pos))
	}

	f.update(m, view, model, pos)
	if f.observer != nil {
		f.observer.ViewResolved(kind, m)
	}
	return view, m, nil
}

// UpdateExistingView re-resolves the mapping for model at pos and, when
// the widget has a live view of that mapping's type there, re-runs only
// its update handler. It reports whether a view was updated.
func (f *Factory) UpdateExistingView(kind apis.ViewKind, pos apis.Position, model any) bool {
	if f.widget == nil {
		return false
	}
	m, ok := f.res.Resolve(kind, model, pos)
	if !ok {
		return false
	}
	view, live := f.widget.VisibleView(kind, pos)
	if !live || view == nil || reflect.TypeOf(view) != m.ViewType {
		return false
	}
	f.update(m, view, model, pos)
	return true
}

func (f *Factory) update(m *apis.Mapping, view, model any, pos apis.Position) {
	if m.Update == nil {
		return
	}
	adapted, ok := uref.Convert(model, m.DeclaredModelType, f.cfg.MaxUnwrap)
	if !ok {
		return
	}
	m.Update(view, adapted, pos)
}

// Resolve returns the mapping that would serve model at pos, without
// touching the widget.
func (f *Factory) Resolve(kind apis.ViewKind, model any, pos apis.Position) (*apis.Mapping, bool) {
	return f.res.Resolve(kind, model, pos)
}

// Candidates returns every mapping that matches model at pos, in
// registration order.
func (f *Factory) Candidates(kind apis.ViewKind, model any, pos apis.Position) []*apis.Mapping {
	return f.res.Candidates(kind, model, pos)
}

// HasMapping reports whether a mapping for (viewType, kind) exists.
func (f *Factory) HasMapping(viewType reflect.Type, kind apis.ViewKind) bool {
	for _, m := range f.reg.Entries() {
		if m.ViewType == viewType && m.Kind == kind {
			return true
		}
	}
	return false
}

// MappingsForViewType returns every mapping whose view type is viewType.
func (f *Factory) MappingsForViewType(viewType reflect.Type) []*apis.Mapping {
	var out []*apis.Mapping
	for _, m := range f.reg.Entries() {
		if m.ViewType == viewType {
			out = append(out, m)
		}
	}
	return out
}

// IsViewType reports whether t, or its base type, is the view type of any
// mapping.
func (f *Factory) IsViewType(t reflect.Type) bool {
	if t == nil {
		return false
	}
	base := t
	for base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	for _, m := range f.reg.Entries() {
		vt := m.ViewType
		for vt.Kind() == reflect.Pointer {
			vt = vt.Elem()
		}
		if vt == base {
			return true
		}
	}
	return false
}

// Mappings returns a snapshot of the mapping table in registration order.
func (f *Factory) Mappings() []*apis.Mapping { return f.reg.Entries() }

// Config returns the active configuration.
func (f *Factory) Config() apis.Config { return f.cfg }
