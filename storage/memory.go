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

// Package storage provides an in-memory backing store for the dispatch
// layer.
package storage

import (
	"errors"
	"fmt"

	"dirpx.dev/cvm/apis"
)

// ErrIndexOutOfRange is returned by mutations addressing a missing section
// or item.
var ErrIndexOutOfRange = errors.New("cvm(storage): index out of range")

// Section is one section of a Memory store.
type Section struct {
	// Items are the item models in display order.
	Items []any
	// Supplementary holds supplementary models by kind.
	Supplementary map[string]any
}

func (s *Section) clone() *Section {
	out := &Section{Items: append([]any(nil), s.Items...)}
	if len(s.Supplementary) > 0 {
		out.Supplementary = make(map[string]any, len(s.Supplementary))
		for k, v := range s.Supplementary {
			out.Supplementary[k] = v
		}
	}
	return out
}

// Memory is an ordered list of sections held in memory. Every mutation
// emits exactly one apis.Change to the observer. It is not safe for
// concurrent use.
type Memory struct {
	sections []*Section
	observer apis.StorageObserver
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{}
}

var _ apis.Storage = (*Memory)(nil)

// SetObserver implements apis.Storage.
func (m *Memory) SetObserver(o apis.StorageObserver) { m.observer = o }

// NumberOfSections implements apis.Storage.
func (m *Memory) NumberOfSections() int { return len(m.sections) }

// NumberOfItems implements apis.Storage. Missing sections have no items.
func (m *Memory) NumberOfItems(section int) int {
	if section < 0 || section >= len(m.sections) {
		return 0
	}
	return len(m.sections[section].Items)
}

// Item implements apis.Storage.
func (m *Memory) Item(pos apis.Position) (any, bool) {
	if !m.hasItem(pos) {
		return nil, false
	}
	v := m.sections[pos.Section].Items[pos.Item]
	return v, v != nil
}

// SupplementaryModel implements apis.Storage.
func (m *Memory) SupplementaryModel(kind string, pos apis.Position) (any, bool) {
	if pos.Section < 0 || pos.Section >= len(m.sections) {
		return nil, false
	}
	v, ok := m.sections[pos.Section].Supplementary[kind]
	return v, ok && v != nil
}

// Items returns a copy of the items of section.
func (m *Memory) Items(section int) []any {
	if section < 0 || section >= len(m.sections) {
		return nil
	}
	return append([]any(nil), m.sections[section].Items...)
}

// Sections returns a deep copy of every section.
func (m *Memory) Sections() []Section {
	out := make([]Section, len(m.sections))
	for i, s := range m.sections {
		out[i] = *s.clone()
	}
	return out
}

// AddItems appends items to section, creating it and any missing sections
// before it.
func (m *Memory) AddItems(section int, items ...any) error {
	if section < 0 {
		return outOfRange("section", section)
	}
	var c apis.Change
	c.InsertedSections = m.grow(section + 1)
	s := m.sections[section]
	for _, it := range items {
		c.InsertedItems = append(c.InsertedItems, apis.At(section, len(s.Items)))
		s.Items = append(s.Items, it)
	}
	m.emit(c)
	return nil
}

// InsertItem inserts item at pos. pos.Item may equal the item count.
func (m *Memory) InsertItem(pos apis.Position, item any) error {
	if pos.Section < 0 || pos.Section >= len(m.sections) {
		return outOfRange("section", pos.Section)
	}
	s := m.sections[pos.Section]
	if pos.Item < 0 || pos.Item > len(s.Items) {
		return outOfRange("item", pos.Item)
	}
	s.Items = append(s.Items, nil)
	copy(s.Items[pos.Item+1:], s.Items[pos.Item:])
	s.Items[pos.Item] = item
	m.emit(apis.Change{InsertedItems: []apis.Position{pos}})
	return nil
}

// RemoveItem removes the item at pos.
func (m *Memory) RemoveItem(pos apis.Position) error {
	if !m.hasItem(pos) {
		return outOfRange("position", pos)
	}
	s := m.sections[pos.Section]
	s.Items = append(s.Items[:pos.Item], s.Items[pos.Item+1:]...)
	m.emit(apis.Change{DeletedItems: []apis.Position{pos}})
	return nil
}

// ReplaceItem swaps the model at pos for item.
func (m *Memory) ReplaceItem(pos apis.Position, item any) error {
	if !m.hasItem(pos) {
		return outOfRange("position", pos)
	}
	m.sections[pos.Section].Items[pos.Item] = item
	m.emit(apis.Change{UpdatedItems: []apis.Position{pos}})
	return nil
}

// MoveItem moves the item at from so that it ends up at to.
func (m *Memory) MoveItem(from, to apis.Position) error {
	if err := m.move(from, to); err != nil {
		return err
	}
	m.emit(apis.Change{MovedItems: []apis.ItemMove{{From: from, To: to}}})
	return nil
}

// RelocateItem moves an item like MoveItem without notifying the observer.
// It commits reorders the widget has already performed on screen.
func (m *Memory) RelocateItem(from, to apis.Position) error {
	return m.move(from, to)
}

func (m *Memory) move(from, to apis.Position) error {
	if !m.hasItem(from) {
		return outOfRange("position", from)
	}
	if to.Section < 0 || to.Section >= len(m.sections) {
		return outOfRange("section", to.Section)
	}
	limit := len(m.sections[to.Section].Items)
	if to.Section == from.Section {
		limit--
	}
	if to.Item < 0 || to.Item > limit {
		return outOfRange("item", to.Item)
	}
	src := m.sections[from.Section]
	item := src.Items[from.Item]
	src.Items = append(src.Items[:from.Item], src.Items[from.Item+1:]...)
	dst := m.sections[to.Section]
	dst.Items = append(dst.Items, nil)
	copy(dst.Items[to.Item+1:], dst.Items[to.Item:])
	dst.Items[to.Item] = item
	return nil
}

// InsertSection inserts a new section holding items at index.
func (m *Memory) InsertSection(index int, items ...any) error {
	if index < 0 || index > len(m.sections) {
		return outOfRange("section", index)
	}
	s := &Section{Items: append([]any(nil), items...)}
	m.sections = append(m.sections, nil)
	copy(m.sections[index+1:], m.sections[index:])
	m.sections[index] = s
	m.emit(apis.Change{InsertedSections: []int{index}})
	return nil
}

// DeleteSections removes the sections at indexes, which refer to the state
// before the call. Duplicates are ignored.
func (m *Memory) DeleteSections(indexes ...int) error {
	drop := make(map[int]bool, len(indexes))
	var deleted []int
	for _, i := range indexes {
		if i < 0 || i >= len(m.sections) {
			return outOfRange("section", i)
		}
		if !drop[i] {
			drop[i] = true
			deleted = append(deleted, i)
		}
	}
	if len(deleted) == 0 {
		return nil
	}
	kept := m.sections[:0:0]
	for i, s := range m.sections {
		if !drop[i] {
			kept = append(kept, s)
		}
	}
	m.sections = kept
	m.emit(apis.Change{DeletedSections: deleted})
	return nil
}

// MoveSection moves the section at from so that it ends up at to.
func (m *Memory) MoveSection(from, to int) error {
	n := len(m.sections)
	if from < 0 || from >= n {
		return outOfRange("section", from)
	}
	if to < 0 || to >= n {
		return outOfRange("section", to)
	}
	s := m.sections[from]
	m.sections = append(m.sections[:from], m.sections[from+1:]...)
	m.sections = append(m.sections, nil)
	copy(m.sections[to+1:], m.sections[to:])
	m.sections[to] = s
	m.emit(apis.Change{MovedSections: []apis.SectionMove{{From: from, To: to}}})
	return nil
}

// SetItems replaces every item of section, creating missing sections.
func (m *Memory) SetItems(section int, items []any) error {
	if section < 0 {
		return outOfRange("section", section)
	}
	c := m.updateOrInsert(section)
	m.sections[section].Items = append([]any(nil), items...)
	m.emit(c)
	return nil
}

// SetSection replaces the section at index, creating missing sections.
func (m *Memory) SetSection(index int, s Section) error {
	if index < 0 {
		return outOfRange("section", index)
	}
	c := m.updateOrInsert(index)
	m.sections[index] = s.clone()
	m.emit(c)
	return nil
}

// SetSupplementary sets the model of kind for an existing section. A nil
// model removes it.
func (m *Memory) SetSupplementary(kind string, section int, model any) error {
	if section < 0 || section >= len(m.sections) {
		return outOfRange("section", section)
	}
	m.setSupplementary(kind, section, model)
	m.emit(apis.Change{UpdatedSections: []int{section}})
	return nil
}

// SetHeaders sets one header model per section, starting at section 0 and
// creating sections as needed.
func (m *Memory) SetHeaders(models ...any) {
	m.setSupplementaries(apis.HeaderKind, models)
}

// SetFooters is SetHeaders for footers.
func (m *Memory) SetFooters(models ...any) {
	m.setSupplementaries(apis.FooterKind, models)
}

func (m *Memory) setSupplementaries(kind string, models []any) {
	if len(models) == 0 {
		return
	}
	existing := len(m.sections)
	c := apis.Change{InsertedSections: m.grow(len(models))}
	for i, v := range models {
		m.setSupplementary(kind, i, v)
		if i < existing {
			c.UpdatedSections = append(c.UpdatedSections, i)
		}
	}
	m.emit(c)
}

// RemoveAll deletes every section.
func (m *Memory) RemoveAll() {
	if len(m.sections) == 0 {
		return
	}
	deleted := make([]int, len(m.sections))
	for i := range deleted {
		deleted[i] = i
	}
	m.sections = nil
	m.emit(apis.Change{DeletedSections: deleted})
}

func (m *Memory) setSupplementary(kind string, section int, model any) {
	s := m.sections[section]
	if model == nil {
		delete(s.Supplementary, kind)
		return
	}
	if s.Supplementary == nil {
		s.Supplementary = make(map[string]any)
	}
	s.Supplementary[kind] = model
}

// grow appends empty sections until there are n and returns the new indexes.
func (m *Memory) grow(n int) []int {
	var added []int
	for len(m.sections) < n {
		added = append(added, len(m.sections))
		m.sections = append(m.sections, &Section{})
	}
	return added
}

func (m *Memory) updateOrInsert(section int) apis.Change {
	if section < len(m.sections) {
		return apis.Change{UpdatedSections: []int{section}}
	}
	return apis.Change{InsertedSections: m.grow(section + 1)}
}

func (m *Memory) hasItem(pos apis.Position) bool {
	return pos.Section >= 0 && pos.Section < len(m.sections) &&
		pos.Item >= 0 && pos.Item < len(m.sections[pos.Section].Items)
}

func (m *Memory) emit(c apis.Change) {
	if m.observer != nil && !c.IsEmpty() {
		m.observer.StorageDidChange(c)
	}
}

func outOfRange(what string, v any) error {
	return fmt.Errorf("%w: %s %v", ErrIndexOutOfRange, what, v)
}
