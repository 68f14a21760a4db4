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

package storage_test

import (
	"errors"
	"reflect"
	"testing"

	"dirpx.dev/cvm/apis"
	"dirpx.dev/cvm/storage"
)

type changeLog []apis.Change

func (l *changeLog) StorageDidChange(c apis.Change) { *l = append(*l, c) }

func seeded(t *testing.T) (*storage.Memory, *changeLog) {
	t.Helper()
	m := storage.NewMemory()
	if err := m.AddItems(0, 1, 2); err != nil {
		t.Fatal(err)
	}
	if err := m.AddItems(1, 3, 4); err != nil {
		t.Fatal(err)
	}
	log := &changeLog{}
	m.SetObserver(log)
	return m, log
}

func TestMoveSection(t *testing.T) {
	m, log := seeded(t)
	if err := m.MoveSection(0, 1); err != nil {
		t.Fatalf("MoveSection: %v", err)
	}
	if got := m.Items(0); !reflect.DeepEqual(got, []any{3, 4}) {
		t.Fatalf("section 0 = %v, want [3 4]", got)
	}
	if got := m.Items(1); !reflect.DeepEqual(got, []any{1, 2}) {
		t.Fatalf("section 1 = %v, want [1 2]", got)
	}
	want := changeLog{{MovedSections: []apis.SectionMove{{From: 0, To: 1}}}}
	if !reflect.DeepEqual(*log, want) {
		t.Fatalf("changes = %+v, want %+v", *log, want)
	}
}

func TestAddItems_CreatesSections(t *testing.T) {
	m := storage.NewMemory()
	log := &changeLog{}
	m.SetObserver(log)
	if err := m.AddItems(1, "a"); err != nil {
		t.Fatal(err)
	}
	if m.NumberOfSections() != 2 || m.NumberOfItems(1) != 1 || m.NumberOfItems(0) != 0 {
		t.Fatalf("layout = %+v", m.Sections())
	}
	if len(*log) != 1 {
		t.Fatalf("got %d changes, want 1", len(*log))
	}
	c := (*log)[0]
	if !reflect.DeepEqual(c.InsertedSections, []int{0, 1}) || !reflect.DeepEqual(c.InsertedItems, []apis.Position{apis.At(1, 0)}) {
		t.Fatalf("change = %+v", c)
	}
}

func TestItemMutations(t *testing.T) {
	m, log := seeded(t)

	if err := m.InsertItem(apis.At(0, 1), 9); err != nil {
		t.Fatal(err)
	}
	if err := m.ReplaceItem(apis.At(0, 0), 8); err != nil {
		t.Fatal(err)
	}
	if err := m.MoveItem(apis.At(0, 2), apis.At(1, 0)); err != nil {
		t.Fatal(err)
	}
	if err := m.RemoveItem(apis.At(1, 2)); err != nil {
		t.Fatal(err)
	}
	if got := m.Items(0); !reflect.DeepEqual(got, []any{8, 9}) {
		t.Fatalf("section 0 = %v", got)
	}
	if got := m.Items(1); !reflect.DeepEqual(got, []any{2, 3}) {
		t.Fatalf("section 1 = %v", got)
	}
	want := changeLog{
		{InsertedItems: []apis.Position{apis.At(0, 1)}},
		{UpdatedItems: []apis.Position{apis.At(0, 0)}},
		{MovedItems: []apis.ItemMove{{From: apis.At(0, 2), To: apis.At(1, 0)}}},
		{DeletedItems: []apis.Position{apis.At(1, 2)}},
	}
	if !reflect.DeepEqual(*log, want) {
		t.Fatalf("changes = %+v", *log)
	}
}

func TestMoveItem_WithinSection(t *testing.T) {
	m, _ := seeded(t)
	if err := m.MoveItem(apis.At(0, 0), apis.At(0, 1)); err != nil {
		t.Fatal(err)
	}
	if got := m.Items(0); !reflect.DeepEqual(got, []any{2, 1}) {
		t.Fatalf("section 0 = %v", got)
	}
	if err := m.MoveItem(apis.At(0, 0), apis.At(0, 2)); !errors.Is(err, storage.ErrIndexOutOfRange) {
		t.Fatalf("move past end: %v", err)
	}
}

func TestRelocateItem_DoesNotNotify(t *testing.T) {
	m, log := seeded(t)
	var _ apis.ItemRelocator = m
	if err := m.RelocateItem(apis.At(0, 1), apis.At(1, 2)); err != nil {
		t.Fatal(err)
	}
	if got := m.Items(1); !reflect.DeepEqual(got, []any{3, 4, 2}) {
		t.Fatalf("section 1 = %v", got)
	}
	if err := m.RelocateItem(apis.At(0, 1), apis.At(0, 0)); !errors.Is(err, storage.ErrIndexOutOfRange) {
		t.Fatalf("relocate missing item: %v", err)
	}
	if len(*log) != 0 {
		t.Fatalf("relocation emitted %v", *log)
	}
}

func TestOutOfRange(t *testing.T) {
	m, log := seeded(t)
	errs := []error{
		m.InsertItem(apis.At(5, 0), 1),
		m.InsertItem(apis.At(0, 3), 1),
		m.RemoveItem(apis.At(0, 2)),
		m.ReplaceItem(apis.At(-1, 0), 1),
		m.MoveItem(apis.At(0, 0), apis.At(3, 0)),
		m.InsertSection(3),
		m.DeleteSections(0, 2),
		m.MoveSection(0, 2),
		m.SetSupplementary(apis.HeaderKind, 2, "h"),
		m.AddItems(-1, 1),
	}
	for i, err := range errs {
		if !errors.Is(err, storage.ErrIndexOutOfRange) {
			t.Errorf("case %d: err = %v", i, err)
		}
	}
	if len(*log) != 0 {
		t.Fatalf("failed mutations emitted %v", *log)
	}
}

func TestSections(t *testing.T) {
	m, log := seeded(t)

	if err := m.InsertSection(1, "x"); err != nil {
		t.Fatal(err)
	}
	if err := m.DeleteSections(0, 0, 2); err != nil {
		t.Fatal(err)
	}
	if m.NumberOfSections() != 1 || !reflect.DeepEqual(m.Items(0), []any{"x"}) {
		t.Fatalf("sections = %+v", m.Sections())
	}
	if err := m.SetItems(2, []any{"y"}); err != nil {
		t.Fatal(err)
	}
	if err := m.SetSection(0, storage.Section{Items: []any{"z"}, Supplementary: map[string]any{"badge": 1}}); err != nil {
		t.Fatal(err)
	}
	want := changeLog{
		{InsertedSections: []int{1}},
		{DeletedSections: []int{0, 2}},
		{InsertedSections: []int{1, 2}},
		{UpdatedSections: []int{0}},
	}
	if !reflect.DeepEqual(*log, want) {
		t.Fatalf("changes = %+v", *log)
	}
	if v, ok := m.SupplementaryModel("badge", apis.SectionAt(0)); !ok || v != 1 {
		t.Fatalf("badge = %v,%v", v, ok)
	}

	m.RemoveAll()
	if m.NumberOfSections() != 0 {
		t.Fatal("RemoveAll left sections")
	}
	if last := (*log)[len(*log)-1]; !reflect.DeepEqual(last.DeletedSections, []int{0, 1, 2}) {
		t.Fatalf("RemoveAll change = %+v", last)
	}
}

func TestSupplementaryModels(t *testing.T) {
	m := storage.NewMemory()
	_ = m.AddItems(0, 1)
	log := &changeLog{}
	m.SetObserver(log)

	m.SetHeaders("h0", "h1")
	m.SetFooters("f0")
	if v, ok := m.SupplementaryModel(apis.HeaderKind, apis.SectionAt(1)); !ok || v != "h1" {
		t.Fatalf("header 1 = %v,%v", v, ok)
	}
	if v, ok := m.SupplementaryModel(apis.FooterKind, apis.At(0, 3)); !ok || v != "f0" {
		t.Fatalf("footer 0 = %v,%v", v, ok)
	}
	if _, ok := m.SupplementaryModel(apis.FooterKind, apis.SectionAt(1)); ok {
		t.Fatal("footer 1 must be absent")
	}
	if err := m.SetSupplementary(apis.HeaderKind, 0, nil); err != nil {
		t.Fatal(err)
	}
	if _, ok := m.SupplementaryModel(apis.HeaderKind, apis.SectionAt(0)); ok {
		t.Fatal("nil model must remove the header")
	}
	want := changeLog{
		{InsertedSections: []int{1}, UpdatedSections: []int{0}},
		{UpdatedSections: []int{0}},
		{UpdatedSections: []int{0}},
	}
	if !reflect.DeepEqual(*log, want) {
		t.Fatalf("changes = %+v", *log)
	}
}

func TestItem_NilAndMissing(t *testing.T) {
	m := storage.NewMemory()
	_ = m.AddItems(0, nil, 5)
	if _, ok := m.Item(apis.At(0, 0)); ok {
		t.Fatal("nil item must report absent")
	}
	if v, ok := m.Item(apis.At(0, 1)); !ok || v != 5 {
		t.Fatalf("Item = %v,%v", v, ok)
	}
	if _, ok := m.Item(apis.At(3, 0)); ok {
		t.Fatal("missing section must report absent")
	}
}
