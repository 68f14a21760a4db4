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

// Package dispatch implements the callback surface a collection widget
// needs, by composing the view factory, the event reaction registry and
// the batch updater over a backing store.
//
// A Manager is owned by the host explicitly. It answers data source and
// delegate callbacks itself, and falls back to an optional secondary
// delegate for anything neither a mapping nor a reaction resolves.
package dispatch

import (
	"reflect"

	"go.uber.org/zap"

	"dirpx.dev/cvm/anomaly"
	"dirpx.dev/cvm/apis"
	"dirpx.dev/cvm/config"
	"dirpx.dev/cvm/factory"
	"dirpx.dev/cvm/reaction"
	"dirpx.dev/cvm/updater"
	uref "dirpx.dev/cvm/utils/reflect"
)

// Option configures a Manager.
type Option func(*options)

type options struct {
	cfg      apis.Config
	sink     anomaly.Sink
	log      *zap.Logger
	delegate any
	hook     apis.Strategy
	probe    apis.ResourceProbe
	resolved factory.ResolveObserver
	batches  []updater.Observer
}

// WithConfig sets the configuration.
func WithConfig(cfg apis.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithSink replaces the default anomaly sink.
func WithSink(s anomaly.Sink) Option {
	return func(o *options) { o.sink = s }
}

// WithLogger sets the logger. The default is a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithDelegate sets the secondary delegate. It may implement any of the
// single-method interfaces in apis, and is checked on every call.
func WithDelegate(d any) Option {
	return func(o *options) { o.delegate = d }
}

// WithHook installs the tie-break strategy consulted before first-registered.
func WithHook(s apis.Strategy) Option {
	return func(o *options) { o.hook = s }
}

// WithProbe sets the resource probe.
func WithProbe(p apis.ResourceProbe) Option {
	return func(o *options) { o.probe = p }
}

// WithResolveObserver observes every resolved view.
func WithResolveObserver(r factory.ResolveObserver) Option {
	return func(o *options) { o.resolved = r }
}

// WithBatchObserver observes every applied batch.
func WithBatchObserver(b updater.Observer) Option {
	return func(o *options) {
		if b != nil {
			o.batches = append(o.batches, b)
		}
	}
}

// Manager is the dispatch façade for one widget and one store. All methods
// must be called on the thread that owns the widget.
type Manager struct {
	cfg      apis.Config
	widget   apis.Widget
	store    apis.Storage
	sink     anomaly.Sink
	log      *zap.Logger
	delegate any

	factory   *factory.Factory
	reactions *reaction.Registry
	updater   *updater.Updater

	started bool
	stopped bool
}

var (
	_ apis.IndexedDataSource = (*Manager)(nil)
	_ apis.Delegate          = (*Manager)(nil)
	_ apis.StorageObserver   = (*Manager)(nil)
)

// New composes a Manager over w and store. Call Start to attach it.
//
// Without WithSink, anomalies are logged, and also panic when the
// configuration has FatalAnomalies set.
func New(w apis.Widget, store apis.Storage, opts ...Option) *Manager {
	o := options{cfg: config.DefaultConfig(), log: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.sink == nil {
		o.sink = anomaly.NewLogSink(o.log)
		if o.cfg.FatalAnomalies {
			o.sink = anomaly.NewFatalSink(o.sink)
		}
	}

	m := &Manager{
		cfg:      o.cfg,
		widget:   w,
		store:    store,
		sink:     o.sink,
		log:      o.log.Named("dispatch"),
		delegate: o.delegate,
	}
	m.factory = factory.New(w,
		factory.WithConfig(o.cfg),
		factory.WithProbe(o.probe),
		factory.WithSink(o.sink),
		factory.WithLogger(m.log),
		factory.WithHook(o.hook),
		factory.WithObserver(o.resolved),
	)
	m.reactions = reaction.NewRegistry(o.cfg.MaxUnwrap)
	m.reactions.OnChange(func(reaction.Reaction) { m.reattach() })

	uopts := []updater.Option{
		updater.WithPolicy(o.cfg.SectionReloadPolicy),
		updater.WithHooks(m.willUpdateContent, m.didUpdateContent),
		updater.WithLogger(m.log),
	}
	if o.cfg.UpdateInPlace {
		uopts = append(uopts, updater.WithInPlace(m.updateInPlace))
	}
	for _, b := range o.batches {
		uopts = append(uopts, updater.WithObserver(b))
	}
	m.updater = updater.New(w, uopts...)
	return m
}

// Start attaches the manager to the widget as data source and delegate and
// subscribes to store changes.
func (m *Manager) Start() {
	if m.stopped || m.started {
		return
	}
	m.started = true
	if m.store != nil {
		m.store.SetObserver(m)
	}
	if m.widget != nil {
		m.widget.Attach(m, m)
	}
	m.log.Debug("manager started")
}

// Stop detaches from the widget and the store. Every later call is a no-op
// and callbacks answer neutral defaults.
func (m *Manager) Stop() {
	if m.stopped {
		return
	}
	m.stopped = true
	m.updater.Stop()
	if m.store != nil {
		m.store.SetObserver(nil)
	}
	if m.started && m.widget != nil {
		m.widget.Attach(nil, nil)
	}
	m.log.Debug("manager stopped")
}

// Stopped reports whether Stop was called.
func (m *Manager) Stopped() bool { return m.stopped }

func (m *Manager) alive() bool {
	return !m.stopped && m.widget != nil && m.store != nil
}

// reattach makes the widget drop cached RespondsTo answers.
func (m *Manager) reattach() {
	if !m.started || m.stopped || m.widget == nil {
		return
	}
	m.widget.Attach(nil, nil)
	m.widget.Attach(m, m)
}

// Register appends a mapping through the view factory.
func (m *Manager) Register(mp *apis.Mapping) error {
	if m.stopped {
		return nil
	}
	return m.factory.Register(mp)
}

// Unregister removes the mappings for (viewType, kind) and audits the
// reactions that may have lost their view. It returns how many mappings
// were removed.
func (m *Manager) Unregister(viewType reflect.Type, kind apis.ViewKind) int {
	if m.stopped {
		return 0
	}
	n := m.factory.Unregister(viewType, kind)
	if n > 0 {
		m.Audit()
	}
	return n
}

// AddReaction checks rx against the mapping table, reports anomalies for
// reactions that can never fire as intended, and appends it. Appending
// re-attaches the manager to the widget.
func (m *Manager) AddReaction(rx reaction.Reaction) error {
	if m.stopped {
		return nil
	}
	if rx != nil {
		m.checkReaction(rx)
	}
	return m.reactions.Register(rx)
}

func (m *Manager) checkReaction(rx reaction.Reaction) {
	if vt := rx.ViewKey(); vt != nil && !m.factory.HasMapping(vt, rx.Kind()) {
		m.sink.Report(anomaly.Anomaly{
			Kind:      anomaly.EventRegisteredForUnmappedType,
			ViewKind:  rx.Kind(),
			ViewType:  uref.DescribeType(vt),
			Signature: rx.Signature(),
		})
	}
	if mt := rx.ModelKey(); mt != nil && rx.Signature().ModelKeyed() && m.factory.IsViewType(mt) {
		m.sink.Report(anomaly.Anomaly{
			Kind:      anomaly.EventRegisteredWithViewTypeForModelSignature,
			ViewKind:  rx.Kind(),
			ViewType:  uref.DescribeType(mt),
			Signature: rx.Signature(),
		})
	}
}

// Audit reports UnusedEventDetected for every view-keyed reaction whose
// view type has no mapping of its kind, and returns the reports.
func (m *Manager) Audit() []anomaly.Anomaly {
	var out []anomaly.Anomaly
	for _, rx := range m.reactions.Entries() {
		vt := rx.ViewKey()
		if vt == nil || m.factory.HasMapping(vt, rx.Kind()) {
			continue
		}
		a := anomaly.Anomaly{
			Kind:      anomaly.UnusedEventDetected,
			ViewKind:  rx.Kind(),
			ViewType:  uref.DescribeType(vt),
			Signature: rx.Signature(),
		}
		m.sink.Report(a)
		out = append(out, a)
	}
	return out
}

// StorageDidChange implements apis.StorageObserver by applying c to the
// widget as one batch.
func (m *Manager) StorageDidChange(c apis.Change) {
	if !m.alive() {
		return
	}
	m.updater.Apply(c)
}

// ResetUpdates abandons an in-flight batch whose completion will never run.
func (m *Manager) ResetUpdates() { m.updater.Reset() }

func (m *Manager) updateInPlace(pos apis.Position) bool {
	model, ok := m.itemModel(pos)
	if !ok {
		return false
	}
	return m.factory.UpdateExistingView(apis.Cell, pos, model)
}

func (m *Manager) willUpdateContent(c apis.Change) {
	if rx, ok := m.reactions.Find(apis.WillUpdateContent, apis.Cell, nil, nil); ok {
		reaction.Invoke(rx, reaction.Args{Extra: c})
	}
	if d, ok := m.delegate.(apis.ContentUpdateObserver); ok {
		d.WillUpdateContent(c)
	}
}

func (m *Manager) didUpdateContent(c apis.Change) {
	if rx, ok := m.reactions.Find(apis.DidUpdateContent, apis.Cell, nil, nil); ok {
		reaction.Invoke(rx, reaction.Args{Extra: c})
	}
	if d, ok := m.delegate.(apis.ContentUpdateObserver); ok {
		d.DidUpdateContent(c)
	}
}

// Item returns the model at pos, or false when there is none.
func (m *Manager) Item(pos apis.Position) (any, bool) {
	if !m.alive() {
		return nil, false
	}
	return m.itemModel(pos)
}

// SupplementaryModel returns the supplementary model of kind for pos.Section.
func (m *Manager) SupplementaryModel(kind string, pos apis.Position) (any, bool) {
	if !m.alive() {
		return nil, false
	}
	return m.supplementaryModel(kind, pos)
}

// ItemForVisibleView returns the model displayed by a live cell view. The
// widget must implement apis.ViewLocator.
func (m *Manager) ItemForVisibleView(view any) (any, bool) {
	if !m.alive() || view == nil {
		return nil, false
	}
	loc, ok := m.widget.(apis.ViewLocator)
	if !ok {
		return nil, false
	}
	kind, pos, ok := loc.PositionOf(view)
	if !ok {
		return nil, false
	}
	if sk, sup := kind.SupplementaryKind(); sup {
		return m.supplementaryModel(sk, pos)
	}
	return m.itemModel(pos)
}

// Mappings returns a snapshot of the mapping table.
func (m *Manager) Mappings() []*apis.Mapping { return m.factory.Mappings() }

// Reactions returns a snapshot of the registered reactions.
func (m *Manager) Reactions() []reaction.Reaction { return m.reactions.Entries() }

// Factory exposes the view factory.
func (m *Manager) Factory() *factory.Factory { return m.factory }

// Config returns the active configuration.
func (m *Manager) Config() apis.Config { return m.cfg }

// Sink returns the anomaly sink in use.
func (m *Manager) Sink() anomaly.Sink { return m.sink }

func (m *Manager) itemModel(pos apis.Position) (any, bool) {
	v, ok := m.store.Item(pos)
	if !ok {
		return nil, false
	}
	if _, ok := uref.Unwrap(v, m.cfg.MaxUnwrap); !ok {
		return nil, false
	}
	return v, true
}

func (m *Manager) supplementaryModel(kind string, pos apis.Position) (any, bool) {
	v, ok := m.store.SupplementaryModel(kind, pos)
	if !ok {
		return nil, false
	}
	if _, ok := uref.Unwrap(v, m.cfg.MaxUnwrap); !ok {
		return nil, false
	}
	return v, true
}
