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

package updater_test

import (
	"fmt"
	"strings"
	"testing"

	"dirpx.dev/cvm/apis"
	"dirpx.dev/cvm/updater"
)

// batchWidget records batch edits as strings and lets tests decide when a
// batch completes.
type batchWidget struct {
	log      []string
	reloads  int
	batches  int
	pending  []func(bool)
	deferred bool
}

func (w *batchWidget) InsertSections(s ...int)         { w.rec("insert-sections", s) }
func (w *batchWidget) DeleteSections(s ...int)         { w.rec("delete-sections", s) }
func (w *batchWidget) ReloadSections(s ...int)         { w.rec("reload-sections", s) }
func (w *batchWidget) MoveSection(from, to int)        { w.rec("move-section", from, to) }
func (w *batchWidget) InsertItems(p ...apis.Position)  { w.rec("insert-items", p) }
func (w *batchWidget) DeleteItems(p ...apis.Position)  { w.rec("delete-items", p) }
func (w *batchWidget) ReloadItems(p ...apis.Position)  { w.rec("reload-items", p) }
func (w *batchWidget) MoveItem(from, to apis.Position) { w.rec("move-item", from, to) }

func (w *batchWidget) rec(name string, args ...any) {
	w.log = append(w.log, strings.TrimSpace(fmt.Sprintln(append([]any{name}, args...)...)))
}

func (w *batchWidget) Register(string, apis.ViewKind, apis.Definition) {}

func (w *batchWidget) Unregister(string, apis.ViewKind) {}

func (w *batchWidget) Dequeue(string, apis.ViewKind, apis.Position) (any, error) { return nil, nil }

func (w *batchWidget) VisibleView(apis.ViewKind, apis.Position) (any, bool) { return nil, false }

func (w *batchWidget) NumberOfSections() int { return 0 }

func (w *batchWidget) NumberOfItems(int) int { return 0 }

func (w *batchWidget) Attach(apis.DataSource, apis.Delegate) {}

func (w *batchWidget) ReloadData() { w.reloads++ }

func (w *batchWidget) PerformBatchUpdates(updates func(apis.BatchUpdater), completion func(bool)) {
	w.batches++
	updates(w)
	if w.deferred {
		w.pending = append(w.pending, completion)
		return
	}
	completion(true)
}

// finish runs the oldest pending completion.
func (w *batchWidget) finish() {
	c := w.pending[0]
	w.pending = w.pending[1:]
	c(true)
}

func TestApply_MixedEscalatesToReload(t *testing.T) {
	w := &batchWidget{}
	var reloadedFlags []bool
	u := updater.New(w, updater.WithObserver(updater.ObserverFunc(func(_ apis.Change, r bool) {
		reloadedFlags = append(reloadedFlags, r)
	})))

	u.Apply(apis.Change{
		DeletedSections: []int{1},
		InsertedItems:   []apis.Position{apis.At(0, 0)},
	})
	if w.reloads != 1 {
		t.Fatalf("reloads = %d, want exactly 1", w.reloads)
	}
	if w.batches != 1 {
		t.Fatalf("batches = %d, want 1", w.batches)
	}
	if len(reloadedFlags) != 1 || !reloadedFlags[0] {
		t.Fatalf("observer saw %v", reloadedFlags)
	}
}

func TestApply_Policies(t *testing.T) {
	sectionOnly := apis.Change{InsertedSections: []int{0}}
	mixed := apis.Change{UpdatedSections: []int{0}, DeletedItems: []apis.Position{apis.At(1, 0)}}
	moveOnly := apis.Change{MovedSections: []apis.SectionMove{{From: 0, To: 1}}, MovedItems: []apis.ItemMove{{From: apis.At(0, 0), To: apis.At(0, 1)}}}

	cases := []struct {
		policy string
		change apis.Change
		want   bool
	}{
		{apis.ReloadMixed, sectionOnly, false},
		{apis.ReloadMixed, mixed, true},
		{apis.ReloadMixed, moveOnly, false},
		{apis.ReloadAlways, sectionOnly, true},
		{apis.ReloadAlways, moveOnly, false},
		{apis.ReloadNever, mixed, false},
	}
	for _, tc := range cases {
		u := updater.New(&batchWidget{}, updater.WithPolicy(tc.policy))
		if got := u.NeedsReload(tc.change); got != tc.want {
			t.Errorf("%s %+v: NeedsReload = %v, want %v", tc.policy, tc.change, got, tc.want)
		}
	}
}

func TestApply_MoveSectionSingleCall(t *testing.T) {
	w := &batchWidget{}
	u := updater.New(w)
	u.Apply(apis.Change{MovedSections: []apis.SectionMove{{From: 0, To: 1}}})
	if len(w.log) != 1 || w.log[0] != "move-section 0 1" {
		t.Fatalf("edits = %v, want one move-section", w.log)
	}
	if w.reloads != 0 {
		t.Fatalf("reloads = %d, want 0", w.reloads)
	}
}

func TestApply_InFlightGating(t *testing.T) {
	w := &batchWidget{deferred: true}
	u := updater.New(w)

	u.Apply(apis.Change{InsertedItems: []apis.Position{apis.At(0, 0)}})
	u.Apply(apis.Change{DeletedItems: []apis.Position{apis.At(0, 1)}})
	u.Apply(apis.Change{})
	if w.batches != 1 || !u.InFlight() || u.Pending() != 1 {
		t.Fatalf("batches=%d inFlight=%v pending=%d", w.batches, u.InFlight(), u.Pending())
	}

	w.finish()
	if w.batches != 2 || u.Pending() != 0 || !u.InFlight() {
		t.Fatalf("queued batch not submitted from completion: batches=%d", w.batches)
	}
	w.finish()
	if u.InFlight() {
		t.Fatal("still in flight after last completion")
	}
	want := []string{"insert-items [[0, 0]]", "delete-items [[0, 1]]"}
	if fmt.Sprint(w.log) != fmt.Sprint(want) {
		t.Fatalf("edits = %v, want %v", w.log, want)
	}
}

func TestReset_IgnoresStaleCompletion(t *testing.T) {
	w := &batchWidget{deferred: true}
	var applied int
	u := updater.New(w, updater.WithObserver(updater.ObserverFunc(func(apis.Change, bool) { applied++ })))

	u.Apply(apis.Change{InsertedItems: []apis.Position{apis.At(0, 0)}})
	u.Apply(apis.Change{InsertedItems: []apis.Position{apis.At(0, 1)}})
	u.Reset()
	if u.InFlight() || u.Pending() != 0 {
		t.Fatal("Reset left state behind")
	}
	w.finish() // stale
	if applied != 0 {
		t.Fatal("stale completion was processed")
	}

	u.Apply(apis.Change{InsertedItems: []apis.Position{apis.At(0, 2)}})
	w.finish()
	if applied != 1 {
		t.Fatalf("applied = %d, want 1", applied)
	}

	u.Stop()
	u.Apply(apis.Change{InsertedItems: []apis.Position{apis.At(0, 3)}})
	if w.batches != 2 {
		t.Fatalf("batches = %d after Stop, want 2", w.batches)
	}
	if u.InFlight() || u.Pending() != 0 {
		t.Fatalf("Apply after Stop queued work: inFlight=%v pending=%d", u.InFlight(), u.Pending())
	}
}

func TestApply_InPlaceAndHooks(t *testing.T) {
	w := &batchWidget{}
	var order []string
	inPlace := func(pos apis.Position) bool { return pos.Item == 0 }
	u := updater.New(w,
		updater.WithInPlace(inPlace),
		updater.WithHooks(
			func(apis.Change) { order = append(order, "will") },
			func(apis.Change) { order = append(order, "did") },
		))

	u.Apply(apis.Change{UpdatedItems: []apis.Position{apis.At(0, 0), apis.At(0, 1)}})
	if len(w.log) != 1 || w.log[0] != "reload-items [[0, 1]]" {
		t.Fatalf("edits = %v, want only the item without a live view reloaded", w.log)
	}
	if fmt.Sprint(order) != "[will did]" {
		t.Fatalf("hooks ran %v", order)
	}
}
