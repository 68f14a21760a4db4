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

// Package updater applies storage changes to a widget as atomic batches.
//
// At most one batch is in flight at a time. Changes that arrive while a
// batch is pending are queued and submitted, one batch each, from the
// completion callback of the previous one.
package updater

import (
	"go.uber.org/zap"

	"dirpx.dev/cvm/apis"
	"dirpx.dev/cvm/config"
)

// Observer is told about every batch once its completion has run.
type Observer interface {
	BatchApplied(change apis.Change, reloaded bool)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(change apis.Change, reloaded bool)

// BatchApplied calls f.
func (f ObserverFunc) BatchApplied(change apis.Change, reloaded bool) { f(change, reloaded) }

// InPlaceFunc updates the live view at pos in place. It reports false when
// no live view could be updated, in which case the item is reloaded.
type InPlaceFunc func(pos apis.Position) bool

// Option configures an Updater.
type Option func(*Updater)

// WithPolicy sets the section reload policy. Unknown policies are ignored.
func WithPolicy(policy string) Option {
	return func(u *Updater) {
		switch policy {
		case apis.ReloadMixed, apis.ReloadAlways, apis.ReloadNever:
			u.policy = policy
		}
	}
}

// WithInPlace makes updated items go through fn instead of a widget reload.
func WithInPlace(fn InPlaceFunc) Option {
	return func(u *Updater) { u.inPlace = fn }
}

// WithObserver adds a batch observer.
func WithObserver(o Observer) Option {
	return func(u *Updater) {
		if o != nil {
			u.observers = append(u.observers, o)
		}
	}
}

// WithHooks sets functions run right before a batch is submitted and right
// after it completed (and any reload ran).
func WithHooks(will, did func(apis.Change)) Option {
	return func(u *Updater) {
		u.will = will
		u.did = did
	}
}

// WithLogger sets the debug logger.
func WithLogger(log *zap.Logger) Option {
	return func(u *Updater) {
		if log != nil {
			u.log = log
		}
	}
}

// Updater serializes change application for one widget. It is not safe for
// concurrent use.
type Updater struct {
	widget    apis.Widget
	policy    string
	inPlace   InPlaceFunc
	observers []Observer
	will, did func(apis.Change)
	log       *zap.Logger

	inFlight bool
	queue    []apis.Change
	// gen invalidates completions of batches abandoned by Reset.
	gen     uint64
	stopped bool
}

// New returns an Updater driving w.
func New(w apis.Widget, opts ...Option) *Updater {
	u := &Updater{
		widget: w,
		policy: config.DefaultSectionReloadPolicy,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(u)
		}
	}
	return u
}

// Apply submits c as one batch, or queues it while another batch is in
// flight. Empty changes are ignored.
func (u *Updater) Apply(c apis.Change) {
	if u.stopped || u.widget == nil || c.IsEmpty() {
		return
	}
	if u.inFlight {
		u.queue = append(u.queue, c)
		u.log.Debug("batch queued", zap.Int("pending", len(u.queue)))
		return
	}
	u.submit(c)
}

// NeedsReload reports whether c must be followed by a full reload under
// the configured policy.
func (u *Updater) NeedsReload(c apis.Change) bool {
	switch u.policy {
	case apis.ReloadNever:
		return false
	case apis.ReloadAlways:
		return c.HasSectionChanges()
	default:
		return c.HasSectionChanges() && c.HasItemChanges()
	}
}

func (u *Updater) submit(c apis.Change) {
	u.inFlight = true
	gen := u.gen
	reload := u.NeedsReload(c)
	if u.will != nil {
		u.will(c)
	}
	u.widget.PerformBatchUpdates(func(b apis.BatchUpdater) {
		u.edit(b, c)
	}, func(bool) {
		if gen != u.gen {
			return
		}
		u.complete(c, reload)
	})
}

func (u *Updater) edit(b apis.BatchUpdater, c apis.Change) {
	if len(c.DeletedSections) > 0 {
		b.DeleteSections(c.DeletedSections...)
	}
	if len(c.InsertedSections) > 0 {
		b.InsertSections(c.InsertedSections...)
	}
	if len(c.UpdatedSections) > 0 {
		b.ReloadSections(c.UpdatedSections...)
	}
	for _, mv := range c.MovedSections {
		b.MoveSection(mv.From, mv.To)
	}

	if len(c.DeletedItems) > 0 {
		b.DeleteItems(c.DeletedItems...)
	}
	if len(c.InsertedItems) > 0 {
		b.InsertItems(c.InsertedItems...)
	}
	if len(c.UpdatedItems) > 0 {
		reload := c.UpdatedItems
		if u.inPlace != nil {
			reload = nil
			for _, pos := range c.UpdatedItems {
				if !u.inPlace(pos) {
					reload = append(reload, pos)
				}
			}
		}
		if len(reload) > 0 {
			b.ReloadItems(reload...)
		}
	}
	for _, mv := range c.MovedItems {
		b.MoveItem(mv.From, mv.To)
	}
}

func (u *Updater) complete(c apis.Change, reload bool) {
	u.inFlight = false
	if u.stopped {
		return
	}
	if reload {
		u.widget.ReloadData()
	}
	u.log.Debug("batch applied", zap.Bool("reloaded", reload))
	if u.did != nil {
		u.did(c)
	}
	for _, o := range u.observers {
		o.BatchApplied(c, reload)
	}
	if len(u.queue) > 0 && !u.inFlight {
		next := u.queue[0]
		u.queue = u.queue[1:]
		u.submit(next)
	}
}

// InFlight reports whether a batch awaits its completion.
func (u *Updater) InFlight() bool { return u.inFlight }

// Pending returns the number of queued changes.
func (u *Updater) Pending() int { return len(u.queue) }

// Reset abandons the in-flight batch and drops queued changes. Use it when
// the widget was torn down or reloaded without calling completion.
func (u *Updater) Reset() {
	u.gen++
	u.inFlight = false
	u.queue = nil
}

// Stop resets the updater and turns every later Apply into a no-op.
func (u *Updater) Stop() {
	u.Reset()
	u.stopped = true
}
