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

package dispatch_test

import (
	"reflect"
	"testing"

	"dirpx.dev/cvm/anomaly"
	"dirpx.dev/cvm/apis"
	"dirpx.dev/cvm/config"
	"dirpx.dev/cvm/dispatch"
	"dirpx.dev/cvm/mapping"
	"dirpx.dev/cvm/reaction"
	"dirpx.dev/cvm/storage"
	"dirpx.dev/cvm/termgrid"
)

type Post struct{ Title string }

type PostCell struct{ Title string }

func (c *PostCell) Render(int) string { return c.Title }

type TitleHeader struct{ Text string }

var (
	postType   = reflect.TypeOf(Post{})
	cellType   = reflect.TypeOf(&PostCell{})
	headerType = reflect.TypeOf(&TitleHeader{})
)

type fixture struct {
	grid  *termgrid.Grid
	store *storage.Memory
	rec   *anomaly.Recorder
	m     *dispatch.Manager
}

func newFixture(t *testing.T, opts ...dispatch.Option) *fixture {
	t.Helper()
	f := &fixture{
		grid:  termgrid.New(),
		store: storage.NewMemory(),
		rec:   &anomaly.Recorder{},
	}
	opts = append([]dispatch.Option{dispatch.WithSink(f.rec)}, opts...)
	f.m = dispatch.New(f.grid, f.store, opts...)
	f.m.Start()
	return f
}

func (f *fixture) registerCell(t *testing.T, opts ...mapping.Option) {
	t.Helper()
	mp, err := mapping.New(apis.Cell, cellType, postType, func(v, m any, _ apis.Position) {
		v.(*PostCell).Title = m.(Post).Title
	}, opts...)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.m.Register(mp); err != nil {
		t.Fatal(err)
	}
}

func (f *fixture) registerHeader(t *testing.T, kind apis.ViewKind) {
	t.Helper()
	mp, err := mapping.New(kind, headerType, reflect.TypeOf(""), func(v, m any, _ apis.Position) {
		v.(*TitleHeader).Text = m.(string)
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := f.m.Register(mp); err != nil {
		t.Fatal(err)
	}
}

func TestCellForItem_ResolvesAndConfigures(t *testing.T) {
	f := newFixture(t)
	f.registerCell(t)
	_ = f.store.AddItems(0, Post{Title: "hello"})

	var configured int
	err := f.m.AddReaction(&reaction.ViewModelPosition{
		Sig: apis.ConfigureCell, On: apis.Cell, ViewType: cellType,
		Fn: func(v, m any, _ apis.Position) any { configured++; return nil },
	})
	if err != nil {
		t.Fatal(err)
	}

	view := f.m.CellForItem(apis.At(0, 0))
	cell, ok := view.(*PostCell)
	if !ok || cell.Title != "hello" {
		t.Fatalf("CellForItem = %#v", view)
	}
	if configured != 1 {
		t.Fatalf("configure reaction ran %d times", configured)
	}
}

func TestCellForItem_MissingMappingIsSafe(t *testing.T) {
	f := newFixture(t)
	_ = f.store.AddItems(0, 42)
	before := f.rec.Count(anomaly.NoMappingFound)

	view := f.m.CellForItem(apis.At(0, 0))
	if view == nil {
		t.Fatal("CellForItem returned nil")
	}
	if _, ok := view.(*dispatch.EmptyView); !ok {
		t.Fatalf("got %T, want *dispatch.EmptyView", view)
	}
	if f.rec.Count(anomaly.NoMappingFound)-before != 1 {
		t.Fatalf("recorded %v", f.rec.All())
	}
}

func TestCellForItem_NilModel(t *testing.T) {
	f := newFixture(t)
	f.registerCell(t)
	var missing *Post
	_ = f.store.AddItems(0, missing)
	before := f.rec.Count(anomaly.NilModel)

	if _, ok := f.m.CellForItem(apis.At(0, 0)).(*dispatch.EmptyView); !ok {
		t.Fatal("nil model must give an empty view")
	}
	if _, ok := f.m.SupplementaryView(apis.HeaderKind, apis.SectionAt(0)).(*dispatch.EmptyView); !ok {
		t.Fatal("missing header model must give an empty view")
	}
	if f.rec.Count(anomaly.NilModel)-before != 1 || f.rec.Count(anomaly.NilSupplementaryModel) != 1 {
		t.Fatalf("recorded %v", f.rec.All())
	}
}

func TestSupplementaryView(t *testing.T) {
	f := newFixture(t)
	f.registerHeader(t, apis.Header())
	_ = f.store.AddItems(0, Post{})
	f.store.SetHeaders("Inbox")

	view := f.m.SupplementaryView(apis.HeaderKind, apis.SectionAt(0))
	if h, ok := view.(*TitleHeader); !ok || h.Text != "Inbox" {
		t.Fatalf("SupplementaryView = %#v", view)
	}
	if _, ok := f.m.SupplementaryView(apis.FooterKind, apis.SectionAt(0)).(*dispatch.EmptyView); !ok {
		t.Fatal("footer without a model must be empty")
	}
}

func TestUnregister_KindIsolation(t *testing.T) {
	f := newFixture(t)
	f.registerHeader(t, apis.Header())
	f.registerHeader(t, apis.Footer())
	f.store.SetHeaders("h")
	f.store.SetFooters("f")

	if n := f.m.Unregister(headerType, apis.Header()); n != 1 {
		t.Fatalf("Unregister removed %d", n)
	}
	if _, ok := f.m.SupplementaryView(apis.FooterKind, apis.SectionAt(0)).(*TitleHeader); !ok {
		t.Fatal("footer mapping was removed with the header")
	}
	if _, ok := f.m.SupplementaryView(apis.HeaderKind, apis.SectionAt(0)).(*dispatch.EmptyView); !ok {
		t.Fatal("header mapping survived")
	}
	if f.rec.Count(anomaly.NoSupplementaryMappingFound) != 1 {
		t.Fatalf("recorded %v", f.rec.All())
	}
}

func TestDidSelect_RoundTrip(t *testing.T) {
	f := newFixture(t)
	f.registerCell(t)
	_ = f.store.AddItems(0, Post{Title: "a"}, Post{Title: "b"})
	f.grid.ReloadData()

	type call struct {
		view  any
		model any
		pos   apis.Position
	}
	var calls []call
	err := f.m.AddReaction(&reaction.ViewModelPosition{
		Sig: apis.DidSelectItem, On: apis.Cell, ViewType: cellType, ModelType: postType,
		Fn: func(v, m any, p apis.Position) any {
			calls = append(calls, call{v, m, p})
			return nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	pos := apis.At(0, 1)
	f.m.DidSelectItem(pos)
	if len(calls) != 1 {
		t.Fatalf("reaction ran %d times, want 1", len(calls))
	}
	live, _ := f.grid.VisibleView(apis.Cell, pos)
	if calls[0].view != live || calls[0].model != (Post{Title: "b"}) || calls[0].pos != pos {
		t.Fatalf("reaction got %+v", calls[0])
	}
}

func TestRespondsTo_ReattachesOnRegistration(t *testing.T) {
	f := newFixture(t)
	f.registerCell(t)
	before := f.grid.Attaches()

	if f.m.RespondsTo(apis.ShouldSelectItem) {
		t.Fatal("responds before any reaction")
	}
	_ = f.m.AddReaction(&reaction.ViewModelPosition{
		Sig: apis.ShouldSelectItem, On: apis.Cell, ViewType: cellType,
		Fn: func(any, any, apis.Position) any { return false },
	})
	if !f.m.RespondsTo(apis.ShouldSelectItem) {
		t.Fatal("no answer after registering a reaction")
	}
	if f.grid.Attaches() <= before {
		t.Fatal("widget was not re-attached after registration")
	}
}

type parent struct {
	selected  []apis.Position
	size      apis.Size
	canMove   bool
	willCount int
	didCount  int
}

func (p *parent) DidSelectItem(pos apis.Position) { p.selected = append(p.selected, pos) }

func (p *parent) SizeForItem(apis.Position) apis.Size { return p.size }

func (p *parent) CanMoveItem(apis.Position) bool { return p.canMove }

func (p *parent) WillUpdateContent(apis.Change) { p.willCount++ }

func (p *parent) DidUpdateContent(apis.Change) { p.didCount++ }

func (p *parent) ReferenceSizeForFooter(int) apis.Size { return apis.Size{Height: 3} }

func (p *parent) ShouldHighlightItem(apis.Position) bool { return false }

func TestFallbackDelegate(t *testing.T) {
	p := &parent{size: apis.Size{Width: 5, Height: 6}, canMove: true}
	f := newFixture(t, dispatch.WithDelegate(p))
	f.registerCell(t)
	_ = f.store.AddItems(0, Post{Title: "a"})

	if !f.m.RespondsTo(apis.SizeForItem) || f.m.RespondsTo(apis.ShouldSelectItem) {
		t.Fatal("capabilities do not follow the delegate")
	}
	if got := f.m.SizeForItem(apis.At(0, 0)); got != p.size {
		t.Fatalf("SizeForItem = %v, want delegate answer", got)
	}
	if !f.m.CanMoveItem(apis.At(0, 0)) {
		t.Fatal("CanMoveItem ignored the delegate")
	}
	if f.m.ShouldHighlightItem(apis.At(0, 0)) {
		t.Fatal("ShouldHighlightItem ignored the delegate")
	}
	if got := f.m.ReferenceSizeForFooter(0); got.Height != 3 {
		t.Fatalf("footer size = %v", got)
	}

	// neutral defaults
	if !f.m.ShouldSelectItem(apis.At(0, 0)) || !f.m.ShouldDeselectItem(apis.At(0, 0)) || !f.m.CanFocusItem(apis.At(0, 0)) {
		t.Fatal("boolean defaults must be true")
	}
	if got := f.m.ReferenceSizeForHeader(0); !got.IsZero() {
		t.Fatalf("header size = %v, want zero", got)
	}

	// reaction wins over the delegate for values
	_ = f.m.AddReaction(&reaction.ModelPosition{
		Sig: apis.SizeForItem, On: apis.Cell, ModelType: postType,
		Fn: func(any, apis.Position) any { return apis.Size{Width: 1, Height: 1} },
	})
	if got := f.m.SizeForItem(apis.At(0, 0)); got != (apis.Size{Width: 1, Height: 1}) {
		t.Fatalf("SizeForItem = %v, want reaction answer", got)
	}

	// a wrong result type falls through to the delegate
	_ = f.m.AddReaction(&reaction.ViewModelPosition{
		Sig: apis.CanMoveItem, On: apis.Cell, ViewType: cellType,
		Fn: func(any, any, apis.Position) any { return "nope" },
	})
	if !f.m.CanMoveItem(apis.At(0, 0)) {
		t.Fatal("non-bool result must fall back")
	}

	// void callbacks run the reaction and still forward
	var reacted int
	_ = f.m.AddReaction(&reaction.ViewModelPosition{
		Sig: apis.DidSelectItem, On: apis.Cell, ViewType: cellType,
		Fn: func(any, any, apis.Position) any { reacted++; return nil },
	})
	f.grid.ReloadData()
	f.m.DidSelectItem(apis.At(0, 0))
	if reacted != 1 || len(p.selected) != 1 {
		t.Fatalf("reacted=%d forwarded=%d", reacted, len(p.selected))
	}
}

func TestHeaderSizeReaction(t *testing.T) {
	f := newFixture(t)
	f.registerHeader(t, apis.Header())
	f.store.SetHeaders("Inbox")
	_ = f.m.AddReaction(&reaction.ModelPosition{
		Sig: apis.ReferenceSizeForHeader, On: apis.Header(), ModelType: reflect.TypeOf(""),
		Fn: func(m any, _ apis.Position) any { return apis.Size{Height: float64(len(m.(string)))} },
	})
	if got := f.m.ReferenceSizeForHeader(0); got.Height != 5 {
		t.Fatalf("header size = %v, want 5", got)
	}
	if got := f.m.ReferenceSizeForHeader(3); !got.IsZero() {
		t.Fatalf("missing section = %v", got)
	}
}

func TestEventRegistrationAnomalies(t *testing.T) {
	f := newFixture(t)
	f.registerCell(t)

	_ = f.m.AddReaction(&reaction.ViewModelPosition{
		Sig: apis.DidSelectItem, On: apis.Cell, ViewType: headerType,
		Fn: func(any, any, apis.Position) any { return nil },
	})
	if f.rec.Count(anomaly.EventRegisteredForUnmappedType) != 1 {
		t.Fatalf("recorded %v", f.rec.All())
	}

	_ = f.m.AddReaction(&reaction.ModelPosition{
		Sig: apis.SizeForItem, On: apis.Cell, ModelType: cellType,
		Fn: func(any, apis.Position) any { return apis.Size{} },
	})
	if f.rec.Count(anomaly.EventRegisteredWithViewTypeForModelSignature) != 1 {
		t.Fatalf("recorded %v", f.rec.All())
	}
}

func TestAudit_AfterUnregister(t *testing.T) {
	f := newFixture(t)
	f.registerCell(t)
	_ = f.m.AddReaction(&reaction.ViewModelPosition{
		Sig: apis.DidSelectItem, On: apis.Cell, ViewType: cellType,
		Fn: func(any, any, apis.Position) any { return nil },
	})
	if got := f.m.Audit(); len(got) != 0 {
		t.Fatalf("Audit = %v, want nothing", got)
	}
	f.m.Unregister(cellType, apis.Cell)
	if f.rec.Count(anomaly.UnusedEventDetected) != 1 {
		t.Fatalf("recorded %v", f.rec.All())
	}
}

func TestStructuralUpdates(t *testing.T) {
	p := &parent{}
	f := newFixture(t, dispatch.WithDelegate(p))
	f.registerCell(t)
	_ = f.store.AddItems(0, Post{Title: "1"}, Post{Title: "2"})
	_ = f.store.AddItems(1, Post{Title: "3"}, Post{Title: "4"})
	f.grid.ReloadData()
	reloads := f.grid.Reloads()
	batches := len(f.grid.Batches())

	if err := f.store.MoveSection(0, 1); err != nil {
		t.Fatal(err)
	}
	got := f.grid.Batches()[batches:]
	if len(got) != 1 || len(got[0].Ops) != 1 || got[0].Ops[0] != "move-section 0 1" {
		t.Fatalf("batches = %+v, want one move-section", got)
	}
	if f.grid.Reloads() != reloads {
		t.Fatal("section move must not reload")
	}
	v, _ := f.grid.VisibleView(apis.Cell, apis.At(0, 0))
	if v.(*PostCell).Title != "3" {
		t.Fatalf("section 0 now shows %q", v.(*PostCell).Title)
	}
	if p.willCount == 0 || p.willCount != p.didCount {
		t.Fatalf("content hooks will=%d did=%d", p.willCount, p.didCount)
	}
}

func TestStructuralUpdates_MixedReloadsOnce(t *testing.T) {
	f := newFixture(t)
	f.registerCell(t)
	_ = f.store.AddItems(1, Post{})
	reloads := f.grid.Reloads()

	f.m.StorageDidChange(apis.Change{
		InsertedItems:   []apis.Position{apis.At(0, 0)},
		DeletedSections: []int{1},
	})
	if got := f.grid.Reloads() - reloads; got != 1 {
		t.Fatalf("reloads = %d, want exactly 1", got)
	}
}

func TestUpdateInPlace(t *testing.T) {
	cfg := config.NewConfig(config.WithUpdateInPlace(true))
	f := newFixture(t, dispatch.WithConfig(cfg))
	f.registerCell(t)
	_ = f.store.AddItems(0, Post{Title: "old"})
	f.grid.ReloadData()
	live, _ := f.grid.VisibleView(apis.Cell, apis.At(0, 0))

	_ = f.store.ReplaceItem(apis.At(0, 0), Post{Title: "new"})
	if live.(*PostCell).Title != "new" {
		t.Fatalf("live cell = %q, want updated in place", live.(*PostCell).Title)
	}
	last := f.grid.Batches()[len(f.grid.Batches())-1]
	if len(last.Ops) != 0 {
		t.Fatalf("in-place update still reloaded: %v", last.Ops)
	}
}

func TestItemForVisibleView(t *testing.T) {
	f := newFixture(t)
	f.registerCell(t)
	_ = f.store.AddItems(0, Post{Title: "x"})
	f.grid.ReloadData()

	v, _ := f.grid.VisibleView(apis.Cell, apis.At(0, 0))
	got, ok := f.m.ItemForVisibleView(v)
	if !ok || got != (Post{Title: "x"}) {
		t.Fatalf("ItemForVisibleView = %v,%v", got, ok)
	}
	if _, ok := f.m.ItemForVisibleView(&PostCell{}); ok {
		t.Fatal("unknown view must not resolve")
	}
}

func TestStop(t *testing.T) {
	f := newFixture(t)
	f.registerCell(t)
	_ = f.store.AddItems(0, Post{})
	f.m.Stop()

	if f.m.NumberOfSections() != 0 || f.m.RespondsTo(apis.DidSelectItem) {
		t.Fatal("stopped manager still answers")
	}
	if _, ok := f.m.CellForItem(apis.At(0, 0)).(*dispatch.EmptyView); !ok {
		t.Fatal("stopped manager must return an empty view")
	}
	batches := len(f.grid.Batches())
	_ = f.store.AddItems(0, Post{})
	if len(f.grid.Batches()) != batches {
		t.Fatal("stopped manager still applies changes")
	}
	if len(f.rec.All()) != 0 {
		t.Fatalf("stopped manager reported %v", f.rec.All())
	}
}

func TestDefaultSinkIsFatal(t *testing.T) {
	m := dispatch.New(termgrid.New(), storage.NewMemory())
	m.Start()
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("default sink must panic on NilModel")
		}
	}()
	m.CellForItem(apis.At(0, 0))
}
