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
	"dirpx.dev/cvm/apis"
	"dirpx.dev/cvm/reaction"
)

// RespondsTo implements the capability query: true when a reaction answers
// sig or the secondary delegate implements the matching callback.
func (m *Manager) RespondsTo(sig apis.Signature) bool {
	if m.stopped {
		return false
	}
	if m.reactions.Has(sig) {
		return true
	}
	if _, ok := m.store.(apis.ItemRelocator); ok && sig == apis.MoveItem {
		return true
	}
	return delegateResponds(m.delegate, sig)
}

func delegateResponds(d any, sig apis.Signature) bool {
	if d == nil {
		return false
	}
	var ok bool
	switch sig {
	case apis.DidSelectItem:
		_, ok = d.(apis.ItemSelector)
	case apis.DidDeselectItem:
		_, ok = d.(apis.ItemDeselector)
	case apis.ShouldSelectItem:
		_, ok = d.(apis.SelectionFilter)
	case apis.ShouldDeselectItem:
		_, ok = d.(apis.DeselectionFilter)
	case apis.ShouldHighlightItem:
		_, ok = d.(apis.HighlightFilter)
	case apis.DidHighlightItem:
		_, ok = d.(apis.ItemHighlighter)
	case apis.DidUnhighlightItem:
		_, ok = d.(apis.ItemUnhighlighter)
	case apis.WillDisplayCell:
		_, ok = d.(apis.CellDisplayer)
	case apis.DidEndDisplayingCell:
		_, ok = d.(apis.CellEndDisplayer)
	case apis.WillDisplaySupplementary:
		_, ok = d.(apis.SupplementaryDisplayer)
	case apis.DidEndDisplayingSupplementary:
		_, ok = d.(apis.SupplementaryEndDisplayer)
	case apis.SizeForItem:
		_, ok = d.(apis.ItemSizer)
	case apis.ReferenceSizeForHeader:
		_, ok = d.(apis.HeaderSizer)
	case apis.ReferenceSizeForFooter:
		_, ok = d.(apis.FooterSizer)
	case apis.CanMoveItem:
		_, ok = d.(apis.MoveFilter)
	case apis.CanFocusItem:
		_, ok = d.(apis.FocusFilter)
	case apis.MoveItem:
		_, ok = d.(apis.ItemMover)
	case apis.ShouldShowMenu:
		_, ok = d.(apis.MenuPresenter)
	case apis.CanPerformAction:
		_, ok = d.(apis.ActionFilter)
	case apis.PerformAction:
		_, ok = d.(apis.ActionPerformer)
	case apis.InsetForSection:
		_, ok = d.(apis.SectionInsetter)
	case apis.MinimumLineSpacing:
		_, ok = d.(apis.LineSpacer)
	case apis.MinimumInteritemSpacing:
		_, ok = d.(apis.InteritemSpacer)
	case apis.IndexTitles:
		_, ok = d.(apis.IndexTitler)
	case apis.PositionForIndexTitle:
		_, ok = d.(apis.IndexTitleLocator)
	case apis.WillUpdateContent, apis.DidUpdateContent:
		_, ok = d.(apis.ContentUpdateObserver)
	}
	return ok
}

// cellReaction runs the reaction for sig at pos, with the live cell when
// withView is set. A missing model skips the reaction.
func (m *Manager) cellReaction(sig apis.Signature, pos apis.Position, view any, withView bool) (any, bool) {
	return m.cellReactionExtra(sig, pos, view, withView, nil)
}

func (m *Manager) cellReactionExtra(sig apis.Signature, pos apis.Position, view any, withView bool, extra any) (any, bool) {
	if !m.alive() || !m.reactions.Has(sig) {
		return nil, false
	}
	model, ok := m.itemModel(pos)
	if !ok {
		return nil, false
	}
	if withView && view == nil {
		view, _ = m.widget.VisibleView(apis.Cell, pos)
	}
	rx, ok := m.reactions.Find(sig, apis.Cell, view, model)
	if !ok {
		return nil, false
	}
	return reaction.Invoke(rx, reaction.Args{View: view, Model: model, Pos: pos, Extra: extra})
}

// unkeyedReaction runs the first reaction for sig. Unkeyed reactions do not
// need the store, so they answer as long as the manager is not stopped.
func (m *Manager) unkeyedReaction(sig apis.Signature, args reaction.Args) (any, bool) {
	if m.stopped || !m.reactions.Has(sig) {
		return nil, false
	}
	rx, ok := m.reactions.Find(sig, apis.Cell, nil, nil)
	if !ok {
		return nil, false
	}
	return reaction.Invoke(rx, args)
}

func (m *Manager) sectionFloat(sig apis.Signature, section int) (float64, bool) {
	res, ok := m.unkeyedReaction(sig, reaction.Args{Pos: apis.SectionAt(section)})
	if !ok {
		return 0, false
	}
	f, ok := res.(float64)
	return f, ok
}

func (m *Manager) supplementaryReaction(sig apis.Signature, kind string, pos apis.Position, view any) (any, bool) {
	if !m.alive() || !m.reactions.Has(sig) {
		return nil, false
	}
	model, ok := m.supplementaryModel(kind, pos)
	if !ok {
		return nil, false
	}
	rx, ok := m.reactions.Find(sig, apis.Supplementary(kind), view, model)
	if !ok {
		return nil, false
	}
	return reaction.Invoke(rx, reaction.Args{View: view, Model: model, Pos: pos, Extra: kind})
}

func (m *Manager) cellBool(sig apis.Signature, pos apis.Position) (bool, bool) {
	res, ok := m.cellReaction(sig, pos, nil, true)
	if !ok {
		return false, false
	}
	b, ok := res.(bool)
	return b, ok
}

// DidSelectItem runs the did-select reaction and forwards to the delegate.
func (m *Manager) DidSelectItem(pos apis.Position) {
	m.cellReaction(apis.DidSelectItem, pos, nil, true)
	if d, ok := m.delegate.(apis.ItemSelector); ok && !m.stopped {
		d.DidSelectItem(pos)
	}
}

// DidDeselectItem runs the did-deselect reaction and forwards to the delegate.
func (m *Manager) DidDeselectItem(pos apis.Position) {
	m.cellReaction(apis.DidDeselectItem, pos, nil, true)
	if d, ok := m.delegate.(apis.ItemDeselector); ok && !m.stopped {
		d.DidDeselectItem(pos)
	}
}

// ShouldSelectItem defaults to true.
func (m *Manager) ShouldSelectItem(pos apis.Position) bool {
	if b, ok := m.cellBool(apis.ShouldSelectItem, pos); ok {
		return b
	}
	if d, ok := m.delegate.(apis.SelectionFilter); ok && !m.stopped {
		return d.ShouldSelectItem(pos)
	}
	return true
}

// ShouldDeselectItem defaults to true.
func (m *Manager) ShouldDeselectItem(pos apis.Position) bool {
	if b, ok := m.cellBool(apis.ShouldDeselectItem, pos); ok {
		return b
	}
	if d, ok := m.delegate.(apis.DeselectionFilter); ok && !m.stopped {
		return d.ShouldDeselectItem(pos)
	}
	return true
}

// ShouldHighlightItem defaults to true.
func (m *Manager) ShouldHighlightItem(pos apis.Position) bool {
	if b, ok := m.cellBool(apis.ShouldHighlightItem, pos); ok {
		return b
	}
	if d, ok := m.delegate.(apis.HighlightFilter); ok && !m.stopped {
		return d.ShouldHighlightItem(pos)
	}
	return true
}

// DidHighlightItem runs the reaction and forwards to the delegate.
func (m *Manager) DidHighlightItem(pos apis.Position) {
	m.cellReaction(apis.DidHighlightItem, pos, nil, true)
	if d, ok := m.delegate.(apis.ItemHighlighter); ok && !m.stopped {
		d.DidHighlightItem(pos)
	}
}

// DidUnhighlightItem runs the reaction and forwards to the delegate.
func (m *Manager) DidUnhighlightItem(pos apis.Position) {
	m.cellReaction(apis.DidUnhighlightItem, pos, nil, true)
	if d, ok := m.delegate.(apis.ItemUnhighlighter); ok && !m.stopped {
		d.DidUnhighlightItem(pos)
	}
}

// WillDisplayCell runs the reaction for view and forwards to the delegate.
func (m *Manager) WillDisplayCell(view any, pos apis.Position) {
	m.cellReaction(apis.WillDisplayCell, pos, view, false)
	if d, ok := m.delegate.(apis.CellDisplayer); ok && !m.stopped {
		d.WillDisplayCell(view, pos)
	}
}

// DidEndDisplayingCell runs the reaction for view and forwards to the delegate.
func (m *Manager) DidEndDisplayingCell(view any, pos apis.Position) {
	m.cellReaction(apis.DidEndDisplayingCell, pos, view, false)
	if d, ok := m.delegate.(apis.CellEndDisplayer); ok && !m.stopped {
		d.DidEndDisplayingCell(view, pos)
	}
}

// WillDisplaySupplementary runs the reaction for view and forwards to the delegate.
func (m *Manager) WillDisplaySupplementary(view any, kind string, pos apis.Position) {
	m.supplementaryReaction(apis.WillDisplaySupplementary, kind, pos, view)
	if d, ok := m.delegate.(apis.SupplementaryDisplayer); ok && !m.stopped {
		d.WillDisplaySupplementary(view, kind, pos)
	}
}

// DidEndDisplayingSupplementary runs the reaction for view and forwards to the delegate.
func (m *Manager) DidEndDisplayingSupplementary(view any, kind string, pos apis.Position) {
	m.supplementaryReaction(apis.DidEndDisplayingSupplementary, kind, pos, view)
	if d, ok := m.delegate.(apis.SupplementaryEndDisplayer); ok && !m.stopped {
		d.DidEndDisplayingSupplementary(view, kind, pos)
	}
}

// SizeForItem asks the model-keyed reaction, then the delegate, and
// defaults to a zero size.
func (m *Manager) SizeForItem(pos apis.Position) apis.Size {
	if res, ok := m.cellReaction(apis.SizeForItem, pos, nil, false); ok {
		if s, ok := res.(apis.Size); ok {
			return s
		}
	}
	if d, ok := m.delegate.(apis.ItemSizer); ok && !m.stopped {
		return d.SizeForItem(pos)
	}
	return apis.Size{}
}

// ReferenceSizeForHeader is SizeForItem for the header of section.
func (m *Manager) ReferenceSizeForHeader(section int) apis.Size {
	res, ok := m.supplementaryReaction(apis.ReferenceSizeForHeader, apis.HeaderKind, apis.SectionAt(section), nil)
	if s, isSize := res.(apis.Size); ok && isSize {
		return s
	}
	if d, ok := m.delegate.(apis.HeaderSizer); ok && !m.stopped {
		return d.ReferenceSizeForHeader(section)
	}
	return apis.Size{}
}

// ReferenceSizeForFooter is SizeForItem for the footer of section.
func (m *Manager) ReferenceSizeForFooter(section int) apis.Size {
	res, ok := m.supplementaryReaction(apis.ReferenceSizeForFooter, apis.FooterKind, apis.SectionAt(section), nil)
	if s, isSize := res.(apis.Size); ok && isSize {
		return s
	}
	if d, ok := m.delegate.(apis.FooterSizer); ok && !m.stopped {
		return d.ReferenceSizeForFooter(section)
	}
	return apis.Size{}
}

// CanMoveItem defaults to false.
func (m *Manager) CanMoveItem(pos apis.Position) bool {
	if b, ok := m.cellBool(apis.CanMoveItem, pos); ok {
		return b
	}
	if d, ok := m.delegate.(apis.MoveFilter); ok && !m.stopped {
		return d.CanMoveItem(pos)
	}
	return false
}

// CanFocusItem defaults to true.
func (m *Manager) CanFocusItem(pos apis.Position) bool {
	if b, ok := m.cellBool(apis.CanFocusItem, pos); ok {
		return b
	}
	if d, ok := m.delegate.(apis.FocusFilter); ok && !m.stopped {
		return d.CanFocusItem(pos)
	}
	return true
}

// ShouldShowMenu defaults to false.
func (m *Manager) ShouldShowMenu(pos apis.Position) bool {
	if b, ok := m.cellBool(apis.ShouldShowMenu, pos); ok {
		return b
	}
	if d, ok := m.delegate.(apis.MenuPresenter); ok && !m.stopped {
		return d.ShouldShowMenu(pos)
	}
	return false
}

// CanPerformAction asks the cell reaction with an apis.MenuAction as its
// extra argument, then the delegate. It defaults to false.
func (m *Manager) CanPerformAction(action string, pos apis.Position, sender any) bool {
	res, ok := m.cellReactionExtra(apis.CanPerformAction, pos, nil, true, apis.MenuAction{Action: action, Sender: sender})
	if b, isBool := res.(bool); ok && isBool {
		return b
	}
	if d, ok := m.delegate.(apis.ActionFilter); ok && !m.stopped {
		return d.CanPerformAction(action, pos, sender)
	}
	return false
}

// PerformAction runs the reaction and forwards to the delegate.
func (m *Manager) PerformAction(action string, pos apis.Position, sender any) {
	m.cellReactionExtra(apis.PerformAction, pos, nil, true, apis.MenuAction{Action: action, Sender: sender})
	if d, ok := m.delegate.(apis.ActionPerformer); ok && !m.stopped {
		d.PerformAction(action, pos, sender)
	}
}

// InsetForSection defaults to zero insets.
func (m *Manager) InsetForSection(section int) apis.Insets {
	res, ok := m.unkeyedReaction(apis.InsetForSection, reaction.Args{Pos: apis.SectionAt(section)})
	if in, isInsets := res.(apis.Insets); ok && isInsets {
		return in
	}
	if d, ok := m.delegate.(apis.SectionInsetter); ok && !m.stopped {
		return d.InsetForSection(section)
	}
	return apis.Insets{}
}

// MinimumLineSpacing defaults to zero.
func (m *Manager) MinimumLineSpacing(section int) float64 {
	if f, ok := m.sectionFloat(apis.MinimumLineSpacing, section); ok {
		return f
	}
	if d, ok := m.delegate.(apis.LineSpacer); ok && !m.stopped {
		return d.MinimumLineSpacing(section)
	}
	return 0
}

// MinimumInteritemSpacing defaults to zero.
func (m *Manager) MinimumInteritemSpacing(section int) float64 {
	if f, ok := m.sectionFloat(apis.MinimumInteritemSpacing, section); ok {
		return f
	}
	if d, ok := m.delegate.(apis.InteritemSpacer); ok && !m.stopped {
		return d.MinimumInteritemSpacing(section)
	}
	return 0
}
