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

package dispatch

import (
	"go.uber.org/zap"

	"dirpx.dev/cvm/anomaly"
	"dirpx.dev/cvm/apis"
	"dirpx.dev/cvm/reaction"
)

// EmptyView is the safe default returned when no view could be created.
type EmptyView struct {
	Kind     apis.ViewKind
	Position apis.Position
}

// NumberOfSections implements apis.DataSource.
func (m *Manager) NumberOfSections() int {
	if !m.alive() {
		return 0
	}
	return m.store.NumberOfSections()
}

// NumberOfItems implements apis.DataSource.
func (m *Manager) NumberOfItems(section int) int {
	if !m.alive() {
		return 0
	}
	return m.store.NumberOfItems(section)
}

// CellForItem implements apis.DataSource. It never returns nil: a missing
// model or mapping is reported and answered with an EmptyView.
func (m *Manager) CellForItem(pos apis.Position) any {
	if !m.alive() {
		return &EmptyView{Kind: apis.Cell, Position: pos}
	}
	model, ok := m.itemModel(pos)
	if !ok {
		m.sink.Report(anomaly.Anomaly{Kind: anomaly.NilModel, ViewKind: apis.Cell}.At(pos))
		return &EmptyView{Kind: apis.Cell, Position: pos}
	}
	view, _, err := m.factory.ResolvedView(apis.Cell, model, pos)
	if err != nil {
		return &EmptyView{Kind: apis.Cell, Position: pos}
	}
	if rx, ok := m.reactions.Find(apis.ConfigureCell, apis.Cell, view, model); ok {
		reaction.Invoke(rx, reaction.Args{View: view, Model: model, Pos: pos})
	}
	return view
}

// SupplementaryView implements apis.DataSource for headers, footers and
// any other supplementary kind.
func (m *Manager) SupplementaryView(kind string, pos apis.Position) any {
	vk := apis.Supplementary(kind)
	if !m.alive() {
		return &EmptyView{Kind: vk, Position: pos}
	}
	model, ok := m.supplementaryModel(kind, pos)
	if !ok {
		m.sink.Report(anomaly.Anomaly{Kind: anomaly.NilSupplementaryModel, ViewKind: vk}.At(pos))
		return &EmptyView{Kind: vk, Position: pos}
	}
	view, _, err := m.factory.ResolvedView(vk, model, pos)
	if err != nil {
		return &EmptyView{Kind: vk, Position: pos}
	}
	if rx, ok := m.reactions.Find(apis.ConfigureSupplementary, vk, view, model); ok {
		reaction.Invoke(rx, reaction.Args{View: view, Model: model, Pos: pos, Extra: kind})
	}
	return view
}

// MoveItem commits a reorder the widget already shows. The reaction for the
// item at from runs first, with to as its extra argument. A secondary
// delegate implementing apis.ItemMover then owns the commit; otherwise a
// store implementing apis.ItemRelocator moves the item without emitting a
// change, so no batch is applied for it.
func (m *Manager) MoveItem(from, to apis.Position) {
	if !m.alive() {
		return
	}
	m.cellReactionExtra(apis.MoveItem, from, nil, true, to)
	if d, ok := m.delegate.(apis.ItemMover); ok {
		d.MoveItem(from, to)
		return
	}
	r, ok := m.store.(apis.ItemRelocator)
	if !ok {
		m.log.Debug("store cannot relocate items, move not committed",
			zap.Stringer("from", from), zap.Stringer("to", to))
		return
	}
	if err := r.RelocateItem(from, to); err != nil {
		m.log.Warn("move not committed", zap.Stringer("from", from), zap.Stringer("to", to), zap.Error(err))
	}
}

// IndexTitles answers the section index titles, or nil when nothing
// provides them.
func (m *Manager) IndexTitles() []string {
	res, ok := m.unkeyedReaction(apis.IndexTitles, reaction.Args{})
	if titles, isTitles := res.([]string); ok && isTitles {
		return titles
	}
	if d, ok := m.delegate.(apis.IndexTitler); ok && !m.stopped {
		return d.IndexTitles()
	}
	return nil
}

// PositionForIndexTitle maps the index title at index to the position the
// widget should scroll to. It defaults to the first item.
func (m *Manager) PositionForIndexTitle(title string, index int) apis.Position {
	res, ok := m.unkeyedReaction(apis.PositionForIndexTitle, reaction.Args{Index: index, Extra: title})
	if pos, isPos := res.(apis.Position); ok && isPos {
		return pos
	}
	if d, ok := m.delegate.(apis.IndexTitleLocator); ok && !m.stopped {
		return d.PositionForIndexTitle(title, index)
	}
	return apis.At(0, 0)
}
