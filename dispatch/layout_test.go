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

	"dirpx.dev/cvm/apis"
	"dirpx.dev/cvm/dispatch"
	"dirpx.dev/cvm/reaction"
)

type layoutParent struct {
	moves   []apis.ItemMove
	actions []string
}

func (p *layoutParent) InsetForSection(section int) apis.Insets {
	return apis.Insets{Top: float64(section + 1)}
}

func (p *layoutParent) MinimumLineSpacing(int) float64 { return 2 }

func (p *layoutParent) IndexTitles() []string { return []string{"parent"} }

func (p *layoutParent) PerformAction(action string, _ apis.Position, _ any) {
	p.actions = append(p.actions, action)
}

func (p *layoutParent) MoveItem(from, to apis.Position) {
	p.moves = append(p.moves, apis.ItemMove{From: from, To: to})
}

func TestSectionLayout_DefaultsDelegateAndReaction(t *testing.T) {
	f := newFixture(t)
	if got := f.m.InsetForSection(0); got != (apis.Insets{}) {
		t.Fatalf("default inset = %v", got)
	}
	if f.m.MinimumLineSpacing(0) != 0 || f.m.MinimumInteritemSpacing(0) != 0 {
		t.Fatal("default spacing must be zero")
	}
	if f.m.RespondsTo(apis.InsetForSection) {
		t.Fatal("responds to inset with no provider")
	}

	p := &layoutParent{}
	f = newFixture(t, dispatch.WithDelegate(p))
	if !f.m.RespondsTo(apis.InsetForSection) || !f.m.RespondsTo(apis.MinimumLineSpacing) || f.m.RespondsTo(apis.MinimumInteritemSpacing) {
		t.Fatal("capabilities do not follow the delegate")
	}
	if got := f.m.InsetForSection(1); got.Top != 2 {
		t.Fatalf("delegate inset = %v", got)
	}

	var sections []int
	err := f.m.AddReaction(&reaction.Section{
		Sig: apis.MinimumLineSpacing,
		Fn: func(section int) any {
			sections = append(sections, section)
			return float64(section * 10)
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := f.m.MinimumLineSpacing(3); got != 30 {
		t.Fatalf("reaction spacing = %v", got)
	}
	if !reflect.DeepEqual(sections, []int{3}) {
		t.Fatalf("reaction saw sections %v", sections)
	}

	// a wrong result type falls through to the delegate
	_ = f.m.AddReaction(&reaction.Section{
		Sig: apis.InsetForSection,
		Fn:  func(int) any { return 1.5 },
	})
	if got := f.m.InsetForSection(0); got.Top != 1 {
		t.Fatalf("inset = %v, want delegate answer", got)
	}
}

func TestIndexTitles(t *testing.T) {
	f := newFixture(t)
	if f.m.IndexTitles() != nil {
		t.Fatal("default titles must be nil")
	}
	if got := f.m.PositionForIndexTitle("B", 1); got != apis.At(0, 0) {
		t.Fatalf("default position = %v", got)
	}

	f = newFixture(t, dispatch.WithDelegate(&layoutParent{}))
	if got := f.m.IndexTitles(); !reflect.DeepEqual(got, []string{"parent"}) {
		t.Fatalf("delegate titles = %v", got)
	}
	_ = f.m.AddReaction(&reaction.NoArgument{
		Sig: apis.IndexTitles, On: apis.Cell,
		Fn: func() any { return []string{"A", "B"} },
	})
	_ = f.m.AddReaction(&reaction.IndexTitle{
		Sig: apis.PositionForIndexTitle,
		Fn: func(title string, index int) any {
			if title != "B" {
				return nil
			}
			return apis.At(index, 0)
		},
	})
	if got := f.m.IndexTitles(); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Fatalf("titles = %v", got)
	}
	if got := f.m.PositionForIndexTitle("B", 1); got != apis.At(1, 0) {
		t.Fatalf("position = %v", got)
	}
	if got := f.m.PositionForIndexTitle("Z", 4); got != apis.At(0, 0) {
		t.Fatalf("unanswered title = %v, want first item", got)
	}
}

func TestMenuCallbacks(t *testing.T) {
	p := &layoutParent{}
	f := newFixture(t, dispatch.WithDelegate(p))
	f.registerCell(t)
	_ = f.store.AddItems(0, Post{Title: "a"})
	f.grid.ReloadData()
	pos := apis.At(0, 0)

	if f.m.ShouldShowMenu(pos) || f.m.CanPerformAction("copy", pos, nil) {
		t.Fatal("menu defaults must be false")
	}

	_ = f.m.AddReaction(&reaction.ViewModelPosition{
		Sig: apis.ShouldShowMenu, On: apis.Cell, ViewType: cellType,
		Fn: func(any, any, apis.Position) any { return true },
	})
	var seen apis.MenuAction
	_ = f.m.AddReaction(&reaction.ViewModelPositionExtra{
		Sig: apis.CanPerformAction, On: apis.Cell, ViewType: cellType,
		Fn: func(_, _ any, _ apis.Position, extra any) any {
			seen = extra.(apis.MenuAction)
			return seen.Action == "copy"
		},
	})
	var performed []any
	_ = f.m.AddReaction(&reaction.ViewModelPositionExtra{
		Sig: apis.PerformAction, On: apis.Cell, ViewType: cellType,
		Fn: func(_, m any, _ apis.Position, extra any) any {
			performed = append(performed, m, extra)
			return nil
		},
	})

	if !f.m.ShouldShowMenu(pos) {
		t.Fatal("ShouldShowMenu ignored the reaction")
	}
	if !f.m.CanPerformAction("copy", pos, "button") || f.m.CanPerformAction("paste", pos, nil) {
		t.Fatal("CanPerformAction ignored the reaction")
	}
	if seen.Action != "paste" || seen.Sender != nil {
		t.Fatalf("last action seen = %+v", seen)
	}

	f.m.PerformAction("copy", pos, "button")
	want := []any{Post{Title: "a"}, apis.MenuAction{Action: "copy", Sender: "button"}}
	if !reflect.DeepEqual(performed, want) {
		t.Fatalf("reaction got %v", performed)
	}
	if !reflect.DeepEqual(p.actions, []string{"copy"}) {
		t.Fatalf("delegate got %v", p.actions)
	}
}

func TestMoveItem_CommitsToStoreWithoutBatch(t *testing.T) {
	f := newFixture(t)
	f.registerCell(t)
	_ = f.store.AddItems(0, Post{Title: "a"}, Post{Title: "b"})
	_ = f.store.AddItems(1, Post{Title: "c"})
	f.grid.ReloadData()
	batches := len(f.grid.Batches())
	reloads := f.grid.Reloads()

	if !f.m.RespondsTo(apis.MoveItem) {
		t.Fatal("a relocating store must make moves answerable")
	}
	var model, dest any
	_ = f.m.AddReaction(&reaction.ViewModelPositionExtra{
		Sig: apis.MoveItem, On: apis.Cell, ViewType: cellType,
		Fn: func(_, m any, _ apis.Position, extra any) any {
			model, dest = m, extra
			return nil
		},
	})

	f.m.MoveItem(apis.At(0, 0), apis.At(1, 1))
	if model != (Post{Title: "a"}) || dest != apis.At(1, 1) {
		t.Fatalf("reaction got model=%v dest=%v", model, dest)
	}
	if got := f.store.Items(1); !reflect.DeepEqual(got, []any{Post{Title: "c"}, Post{Title: "a"}}) {
		t.Fatalf("section 1 = %v", got)
	}
	if len(f.grid.Batches()) != batches || f.grid.Reloads() != reloads {
		t.Fatal("a committed move must not be applied back to the widget")
	}

	// an invalid destination leaves the store untouched
	f.m.MoveItem(apis.At(0, 0), apis.At(5, 0))
	if got := f.store.Items(0); !reflect.DeepEqual(got, []any{Post{Title: "b"}}) {
		t.Fatalf("section 0 = %v", got)
	}
}

func TestMoveItem_DelegateOwnsCommit(t *testing.T) {
	p := &layoutParent{}
	f := newFixture(t, dispatch.WithDelegate(p))
	_ = f.store.AddItems(0, 1, 2)

	f.m.MoveItem(apis.At(0, 0), apis.At(0, 1))
	if len(p.moves) != 1 || p.moves[0] != (apis.ItemMove{From: apis.At(0, 0), To: apis.At(0, 1)}) {
		t.Fatalf("delegate moves = %v", p.moves)
	}
	if got := f.store.Items(0); !reflect.DeepEqual(got, []any{1, 2}) {
		t.Fatalf("store changed to %v", got)
	}

	f.m.Stop()
	f.m.MoveItem(apis.At(0, 0), apis.At(0, 1))
	if len(p.moves) != 1 {
		t.Fatal("stopped manager still forwards moves")
	}
}
