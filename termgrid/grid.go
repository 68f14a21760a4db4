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

// Package termgrid is a terminal collection widget. It implements
// apis.Widget with a reuse pool and a list of visible views, and renders
// itself as a Bubble Tea model.
package termgrid

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"dirpx.dev/cvm/apis"
)

var (
	// ErrNotRegistered is returned by Dequeue for an unknown identifier.
	ErrNotRegistered = errors.New("cvm(termgrid): no view registered for identifier")
	// ErrNoView is returned by Dequeue when a definition builds nothing.
	ErrNoView = errors.New("cvm(termgrid): definition produced no view")
)

// Renderer is implemented by views that draw themselves.
type Renderer interface {
	Render(width int) string
}

// Batch is the record of one PerformBatchUpdates call, one op per edit.
type Batch struct {
	Ops []string
}

type regKey struct {
	id   string
	kind apis.ViewKind
}

type slot struct {
	kind apis.ViewKind
	pos  apis.Position
}

type visible struct {
	slot
	id   string
	view any
}

// Option configures a Grid.
type Option func(*Grid)

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(g *Grid) {
		if log != nil {
			g.log = log
		}
	}
}

// WithWidth sets the render width.
func WithWidth(w int) Option {
	return func(g *Grid) { g.width = w }
}

// WithManualCompletion holds batch completions until Complete is called.
func WithManualCompletion() Option {
	return func(g *Grid) { g.manual = true }
}

// Grid is a vertically scrolling list of sections. It is not safe for
// concurrent use; Bubble Tea calls Update and View from one goroutine.
type Grid struct {
	log    *zap.Logger
	width  int
	manual bool

	defs    map[regKey]apis.Definition
	pool    map[regKey][]any
	dequeue map[slot]string
	shown   []visible

	source   apis.DataSource
	delegate apis.Delegate
	caps     map[apis.Signature]bool

	counts   []int
	batching bool
	batches  []Batch
	pending  []func(bool)
	reloads  int
	attaches int
	overlaps int
	moves    int

	cursor   int
	selected map[apis.Position]bool
}

var (
	_ apis.Widget      = (*Grid)(nil)
	_ apis.ViewLocator = (*Grid)(nil)
)

// New returns an empty Grid.
func New(opts ...Option) *Grid {
	g := &Grid{
		log:      zap.NewNop(),
		width:    40,
		defs:     make(map[regKey]apis.Definition),
		pool:     make(map[regKey][]any),
		dequeue:  make(map[slot]string),
		caps:     make(map[apis.Signature]bool),
		selected: make(map[apis.Position]bool),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Register implements apis.Widget.
func (g *Grid) Register(id string, kind apis.ViewKind, def apis.Definition) {
	k := regKey{id, kind}
	g.defs[k] = def
	delete(g.pool, k)
}

// Unregister implements apis.Widget.
func (g *Grid) Unregister(id string, kind apis.ViewKind) {
	k := regKey{id, kind}
	delete(g.defs, k)
	delete(g.pool, k)
}

// Registered reports whether (id, kind) has a definition.
func (g *Grid) Registered(id string, kind apis.ViewKind) bool {
	_, ok := g.defs[regKey{id, kind}]
	return ok
}

// Dequeue implements apis.Widget. Views come from the reuse pool first.
func (g *Grid) Dequeue(id string, kind apis.ViewKind, pos apis.Position) (any, error) {
	k := regKey{id, kind}
	def, ok := g.defs[k]
	if !ok {
		return nil, fmt.Errorf("%w: %q (%s)", ErrNotRegistered, id, kind)
	}
	var view any
	if free := g.pool[k]; len(free) > 0 {
		view = free[len(free)-1]
		g.pool[k] = free[:len(free)-1]
	} else {
		view = def.Instantiate()
	}
	if view == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoView, id)
	}
	g.dequeue[slot{kind, pos}] = id
	return view, nil
}

// VisibleView implements apis.Widget.
func (g *Grid) VisibleView(kind apis.ViewKind, pos apis.Position) (any, bool) {
	for _, v := range g.shown {
		if v.kind == kind && v.pos == pos {
			return v.view, true
		}
	}
	return nil, false
}

// PositionOf implements apis.ViewLocator.
func (g *Grid) PositionOf(view any) (apis.ViewKind, apis.Position, bool) {
	for _, v := range g.shown {
		if sameView(v.view, view) {
			return v.kind, v.pos, true
		}
	}
	return apis.ViewKind{}, apis.Position{}, false
}

// NumberOfSections implements apis.Widget. It reports the widget's own
// snapshot, refreshed on reload and after each batch.
func (g *Grid) NumberOfSections() int { return len(g.counts) }

// NumberOfItems implements apis.Widget.
func (g *Grid) NumberOfItems(section int) int {
	if section < 0 || section >= len(g.counts) {
		return 0
	}
	return g.counts[section]
}

// Attach implements apis.Widget and drops every cached RespondsTo answer.
func (g *Grid) Attach(source apis.DataSource, delegate apis.Delegate) {
	g.source = source
	g.delegate = delegate
	g.caps = make(map[apis.Signature]bool)
	g.attaches++
}

// Attaches returns how many times Attach was called.
func (g *Grid) Attaches() int { return g.attaches }

// responds asks the delegate once per signature until the next Attach.
func (g *Grid) responds(sig apis.Signature) bool {
	if g.delegate == nil {
		return false
	}
	if ok, cached := g.caps[sig]; cached {
		return ok
	}
	ok := g.delegate.RespondsTo(sig)
	g.caps[sig] = ok
	return ok
}

// ReloadData implements apis.Widget.
func (g *Grid) ReloadData() {
	g.reloads++
	g.layout()
}

// Reloads returns how many times ReloadData was called.
func (g *Grid) Reloads() int { return g.reloads }

// PerformBatchUpdates implements apis.Widget. Overlapping batches are
// counted and logged.
func (g *Grid) PerformBatchUpdates(updates func(apis.BatchUpdater), completion func(bool)) {
	if g.batching || len(g.pending) > 0 {
		g.overlaps++
		g.log.Warn("batch submitted while another is in flight")
	}
	g.batching = true
	rec := &recorder{}
	if updates != nil {
		updates(rec)
	}
	g.batching = false
	g.batches = append(g.batches, Batch{Ops: rec.ops})
	g.layout()

	if completion == nil {
		return
	}
	if g.manual {
		g.pending = append(g.pending, completion)
		return
	}
	completion(true)
}

// Complete runs the oldest held completion. It reports false when none
// is pending.
func (g *Grid) Complete() bool {
	if len(g.pending) == 0 {
		return false
	}
	c := g.pending[0]
	g.pending = g.pending[1:]
	c(true)
	return true
}

// Teardown drops held completions without running them, like a widget
// that went away mid-batch.
func (g *Grid) Teardown() {
	g.pending = nil
}

// Batches returns the record of every batch.
func (g *Grid) Batches() []Batch { return append([]Batch(nil), g.batches...) }

// Overlaps returns how many batches were submitted while one was in flight.
func (g *Grid) Overlaps() int { return g.overlaps }

// layout re-queries the data source and rebuilds the visible views. Views
// leaving the screen go back to the reuse pool.
func (g *Grid) layout() {
	for _, v := range g.shown {
		g.endDisplay(v)
		k := regKey{v.id, v.kind}
		if _, ok := g.defs[k]; ok {
			g.pool[k] = append(g.pool[k], v.view)
		}
	}
	g.shown = nil
	g.counts = nil
	clear(g.dequeue)
	if g.source == nil {
		return
	}

	n := g.source.NumberOfSections()
	g.counts = make([]int, n)
	for s := 0; s < n; s++ {
		g.counts[s] = g.source.NumberOfItems(s)
		if g.wantsSupplementary(apis.ReferenceSizeForHeader, s) {
			g.showSupplementary(apis.HeaderKind, s)
		}
		for i := 0; i < g.counts[s]; i++ {
			pos := apis.At(s, i)
			view := g.source.CellForItem(pos)
			g.show(apis.Cell, pos, view)
			if g.responds(apis.WillDisplayCell) {
				g.delegate.WillDisplayCell(view, pos)
			}
		}
		if g.wantsSupplementary(apis.ReferenceSizeForFooter, s) {
			g.showSupplementary(apis.FooterKind, s)
		}
	}
	g.clampCursor()
}

// wantsSupplementary mirrors flow layouts: a header or footer is only
// requested when its reference size is not zero.
func (g *Grid) wantsSupplementary(sig apis.Signature, section int) bool {
	if !g.responds(sig) {
		return false
	}
	var size apis.Size
	if sig == apis.ReferenceSizeForHeader {
		size = g.delegate.ReferenceSizeForHeader(section)
	} else {
		size = g.delegate.ReferenceSizeForFooter(section)
	}
	return !size.IsZero()
}

func (g *Grid) showSupplementary(kind string, section int) {
	pos := apis.SectionAt(section)
	view := g.source.SupplementaryView(kind, pos)
	g.show(apis.Supplementary(kind), pos, view)
	if g.responds(apis.WillDisplaySupplementary) {
		g.delegate.WillDisplaySupplementary(view, kind, pos)
	}
}

func (g *Grid) show(kind apis.ViewKind, pos apis.Position, view any) {
	s := slot{kind, pos}
	g.shown = append(g.shown, visible{slot: s, id: g.dequeue[s], view: view})
}

func (g *Grid) endDisplay(v visible) {
	if v.kind.IsCell() {
		if g.responds(apis.DidEndDisplayingCell) {
			g.delegate.DidEndDisplayingCell(v.view, v.pos)
		}
		return
	}
	if sk, _ := v.kind.SupplementaryKind(); g.responds(apis.DidEndDisplayingSupplementary) {
		g.delegate.DidEndDisplayingSupplementary(v.view, sk, v.pos)
	}
}

// sameView compares views by identity for pointers and by value otherwise.
func sameView(a, b any) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}

// recorder captures batch edits as text.
type recorder struct {
	ops []string
}

func (r *recorder) add(name string, args ...any) {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, name)
	for _, a := range args {
		parts = append(parts, fmt.Sprint(a))
	}
	r.ops = append(r.ops, strings.Join(parts, " "))
}

func (r *recorder) InsertSections(s ...int)         { r.add("insert-sections", s) }
func (r *recorder) DeleteSections(s ...int)         { r.add("delete-sections", s) }
func (r *recorder) ReloadSections(s ...int)         { r.add("reload-sections", s) }
func (r *recorder) MoveSection(from, to int)        { r.add("move-section", from, to) }
func (r *recorder) InsertItems(p ...apis.Position)  { r.add("insert-items", p) }
func (r *recorder) DeleteItems(p ...apis.Position)  { r.add("delete-items", p) }
func (r *recorder) ReloadItems(p ...apis.Position)  { r.add("reload-items", p) }
func (r *recorder) MoveItem(from, to apis.Position) { r.add("move-item", from, to) }
