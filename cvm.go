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

package cvm

import (
	"dirpx.dev/cvm/apis"
	"dirpx.dev/cvm/dispatch"
	"dirpx.dev/cvm/mapping"
	"dirpx.dev/cvm/reaction"
	uref "dirpx.dev/cvm/utils/reflect"
)

// Manager is the dispatch façade the typed helpers operate on.
type Manager = dispatch.Manager

// Option configures a Manager.
type Option = dispatch.Option

// New composes a Manager for w over store and attaches it to w.
func New(w apis.Widget, store apis.Storage, opts ...Option) *Manager {
	m := dispatch.New(w, store, opts...)
	m.Start()
	return m
}

// Register maps cells of view type V to models of type M. update runs on
// every dequeued view before it is handed to the widget.
func Register[V, M any](m *Manager, update func(V, M, apis.Position), opts ...mapping.Option) error {
	return register(m, apis.Cell, update, opts...)
}

// RegisterHeader maps section headers of view type V to models of type M.
func RegisterHeader[V, M any](m *Manager, update func(V, M, apis.Position), opts ...mapping.Option) error {
	return register(m, apis.Header(), update, opts...)
}

// RegisterFooter maps section footers of view type V to models of type M.
func RegisterFooter[V, M any](m *Manager, update func(V, M, apis.Position), opts ...mapping.Option) error {
	return register(m, apis.Footer(), update, opts...)
}

// RegisterSupplementary maps supplementary views of kind.
func RegisterSupplementary[V, M any](m *Manager, kind string, update func(V, M, apis.Position), opts ...mapping.Option) error {
	return register(m, apis.Supplementary(kind), update, opts...)
}

func register[V, M any](m *Manager, kind apis.ViewKind, update func(V, M, apis.Position), opts ...mapping.Option) error {
	var fn apis.UpdateFunc
	if update != nil {
		fn = func(view, model any, pos apis.Position) {
			v, ok := view.(V)
			if !ok {
				return
			}
			if mm, ok := model.(M); ok {
				update(v, mm, pos)
			}
		}
	}
	mp, err := mapping.New(kind, uref.TypeOf[V](), uref.TypeOf[M](), fn, opts...)
	if err != nil {
		return err
	}
	return m.Register(mp)
}

// Unregister removes every mapping of kind whose view type is V and
// returns how many were removed.
func Unregister[V any](m *Manager, kind apis.ViewKind) int {
	return m.Unregister(uref.TypeOf[V](), kind)
}

// ConfigureCell runs fn after the mapping update of every V cell.
func ConfigureCell[V, M any](m *Manager, fn func(V, M, apis.Position)) error {
	return viewReaction(m, apis.ConfigureCell, apis.Cell, void(fn))
}

// ConfigureSupplementary runs fn after the mapping update of every V
// supplementary view of kind.
func ConfigureSupplementary[V, M any](m *Manager, kind string, fn func(V, M, apis.Position)) error {
	return viewReaction(m, apis.ConfigureSupplementary, apis.Supplementary(kind), void(fn))
}

// WhenSelected reacts to the selection of V cells.
func WhenSelected[V, M any](m *Manager, fn func(V, M, apis.Position)) error {
	return viewReaction(m, apis.DidSelectItem, apis.Cell, void(fn))
}

// WhenDeselected reacts to the deselection of V cells.
func WhenDeselected[V, M any](m *Manager, fn func(V, M, apis.Position)) error {
	return viewReaction(m, apis.DidDeselectItem, apis.Cell, void(fn))
}

// ShouldSelect decides whether V cells may be selected.
func ShouldSelect[V, M any](m *Manager, fn func(V, M, apis.Position) bool) error {
	return viewReaction(m, apis.ShouldSelectItem, apis.Cell, boxed(fn))
}

// ShouldDeselect decides whether V cells may be deselected.
func ShouldDeselect[V, M any](m *Manager, fn func(V, M, apis.Position) bool) error {
	return viewReaction(m, apis.ShouldDeselectItem, apis.Cell, boxed(fn))
}

// ShouldHighlight decides whether V cells may be highlighted.
func ShouldHighlight[V, M any](m *Manager, fn func(V, M, apis.Position) bool) error {
	return viewReaction(m, apis.ShouldHighlightItem, apis.Cell, boxed(fn))
}

// DidHighlight reacts to the highlight of V cells.
func DidHighlight[V, M any](m *Manager, fn func(V, M, apis.Position)) error {
	return viewReaction(m, apis.DidHighlightItem, apis.Cell, void(fn))
}

// DidUnhighlight reacts to V cells losing their highlight.
func DidUnhighlight[V, M any](m *Manager, fn func(V, M, apis.Position)) error {
	return viewReaction(m, apis.DidUnhighlightItem, apis.Cell, void(fn))
}

// WillDisplay runs before a V cell becomes visible.
func WillDisplay[V, M any](m *Manager, fn func(V, M, apis.Position)) error {
	return viewReaction(m, apis.WillDisplayCell, apis.Cell, void(fn))
}

// DidEndDisplaying runs after a V cell left the screen.
func DidEndDisplaying[V, M any](m *Manager, fn func(V, M, apis.Position)) error {
	return viewReaction(m, apis.DidEndDisplayingCell, apis.Cell, void(fn))
}

// WillDisplaySupplementary runs before a V supplementary view of kind
// becomes visible. fn receives the element kind.
func WillDisplaySupplementary[V, M any](m *Manager, kind string, fn func(V, M, string, apis.Position)) error {
	return extraReaction(m, apis.WillDisplaySupplementary, apis.Supplementary(kind), voidExtra(fn))
}

// DidEndDisplayingSupplementary runs after a V supplementary view of kind
// left the screen.
func DidEndDisplayingSupplementary[V, M any](m *Manager, kind string, fn func(V, M, string, apis.Position)) error {
	return extraReaction(m, apis.DidEndDisplayingSupplementary, apis.Supplementary(kind), voidExtra(fn))
}

// CanMove decides whether V cells may be reordered.
func CanMove[V, M any](m *Manager, fn func(V, M, apis.Position) bool) error {
	return viewReaction(m, apis.CanMoveItem, apis.Cell, boxed(fn))
}

// CanFocus decides whether V cells may take focus.
func CanFocus[V, M any](m *Manager, fn func(V, M, apis.Position) bool) error {
	return viewReaction(m, apis.CanFocusItem, apis.Cell, boxed(fn))
}

// WhenMoved reacts to a V cell being dragged from one position to another,
// before the new order is committed.
func WhenMoved[V, M any](m *Manager, fn func(v V, model M, from, to apis.Position)) error {
	var wrapped func(V, M, apis.Position, apis.Position)
	if fn != nil {
		wrapped = func(v V, model M, to, from apis.Position) { fn(v, model, from, to) }
	}
	return extraReaction(m, apis.MoveItem, apis.Cell, voidExtra(wrapped))
}

// ShouldShowMenu decides whether V cells offer an action menu.
func ShouldShowMenu[V, M any](m *Manager, fn func(V, M, apis.Position) bool) error {
	return viewReaction(m, apis.ShouldShowMenu, apis.Cell, boxed(fn))
}

// CanPerformAction decides which menu actions V cells allow.
func CanPerformAction[V, M any](m *Manager, fn func(V, M, apis.MenuAction, apis.Position) bool) error {
	var wrapped func(V, M, apis.MenuAction, apis.Position) any
	if fn != nil {
		wrapped = func(v V, model M, a apis.MenuAction, pos apis.Position) any { return fn(v, model, a, pos) }
	}
	return extraReaction(m, apis.CanPerformAction, apis.Cell, wrapped)
}

// PerformAction runs a menu action on a V cell.
func PerformAction[V, M any](m *Manager, fn func(V, M, apis.MenuAction, apis.Position)) error {
	return extraReaction(m, apis.PerformAction, apis.Cell, voidExtra(fn))
}

// InsetForSection sets the margins around the cells of each section.
func InsetForSection(m *Manager, fn func(section int) apis.Insets) error {
	return sectionReaction(m, apis.InsetForSection, fn)
}

// MinimumLineSpacing sets the gap between rows of each section.
func MinimumLineSpacing(m *Manager, fn func(section int) float64) error {
	return sectionReaction(m, apis.MinimumLineSpacing, fn)
}

// MinimumInteritemSpacing sets the gap between items on one row.
func MinimumInteritemSpacing(m *Manager, fn func(section int) float64) error {
	return sectionReaction(m, apis.MinimumInteritemSpacing, fn)
}

// IndexTitles provides the titles of the section index.
func IndexTitles(m *Manager, fn func() []string) error {
	rx := &reaction.NoArgument{Sig: apis.IndexTitles, On: apis.Cell}
	if fn != nil {
		rx.Fn = func() any { return fn() }
	}
	return m.AddReaction(rx)
}

// PositionForIndexTitle maps an index title to the position to jump to.
func PositionForIndexTitle(m *Manager, fn func(title string, index int) apis.Position) error {
	rx := &reaction.IndexTitle{Sig: apis.PositionForIndexTitle}
	if fn != nil {
		rx.Fn = func(title string, index int) any { return fn(title, index) }
	}
	return m.AddReaction(rx)
}

// SizeForItem sizes cells showing M models. It is keyed by model type
// because the widget asks before any view exists.
func SizeForItem[M any](m *Manager, fn func(M, apis.Position) apis.Size) error {
	return modelReaction(m, apis.SizeForItem, apis.Cell, fn)
}

// ReferenceSizeForHeader sizes headers whose model is an M.
func ReferenceSizeForHeader[M any](m *Manager, fn func(M, int) apis.Size) error {
	return modelReaction(m, apis.ReferenceSizeForHeader, apis.Header(), func(model M, pos apis.Position) apis.Size {
		return fn(model, pos.Section)
	})
}

// ReferenceSizeForFooter sizes footers whose model is an M.
func ReferenceSizeForFooter[M any](m *Manager, fn func(M, int) apis.Size) error {
	return modelReaction(m, apis.ReferenceSizeForFooter, apis.Footer(), func(model M, pos apis.Position) apis.Size {
		return fn(model, pos.Section)
	})
}

// WillUpdateContent runs before every structural batch is submitted.
func WillUpdateContent(m *Manager, fn func()) error {
	return contentReaction(m, apis.WillUpdateContent, fn)
}

// DidUpdateContent runs after every structural batch completed.
func DidUpdateContent(m *Manager, fn func()) error {
	return contentReaction(m, apis.DidUpdateContent, fn)
}

// ItemAt returns the model at pos as an M. Optional wrappers are
// unwrapped first.
func ItemAt[M any](m *Manager, pos apis.Position) (M, bool) {
	v, ok := m.Item(pos)
	if !ok {
		var zero M
		return zero, false
	}
	return as[M](v, m.Config().MaxUnwrap)
}

// SupplementaryModel returns the supplementary model of kind for
// pos.Section as an M.
func SupplementaryModel[M any](m *Manager, kind string, pos apis.Position) (M, bool) {
	v, ok := m.SupplementaryModel(kind, pos)
	if !ok {
		var zero M
		return zero, false
	}
	return as[M](v, m.Config().MaxUnwrap)
}

// ItemForVisibleView returns the model shown by a live view as an M.
func ItemForVisibleView[M any](m *Manager, view any) (M, bool) {
	v, ok := m.ItemForVisibleView(view)
	if !ok {
		var zero M
		return zero, false
	}
	return as[M](v, m.Config().MaxUnwrap)
}

func void[V, M any](fn func(V, M, apis.Position)) func(V, M, apis.Position) any {
	if fn == nil {
		return nil
	}
	return func(v V, model M, pos apis.Position) any {
		fn(v, model, pos)
		return nil
	}
}

func boxed[V, M any](fn func(V, M, apis.Position) bool) func(V, M, apis.Position) any {
	if fn == nil {
		return nil
	}
	return func(v V, model M, pos apis.Position) any {
		return fn(v, model, pos)
	}
}

func viewReaction[V, M any](m *Manager, sig apis.Signature, kind apis.ViewKind, fn func(V, M, apis.Position) any) error {
	rx := &reaction.ViewModelPosition{
		Sig:       sig,
		On:        kind,
		ViewType:  uref.TypeOf[V](),
		ModelType: uref.TypeOf[M](),
	}
	if fn != nil {
		depth := m.Config().MaxUnwrap
		rx.Fn = func(view, model any, pos apis.Position) any {
			v, mm, ok := cast[V, M](view, model, depth)
			if !ok {
				return nil
			}
			return fn(v, mm, pos)
		}
	}
	return m.AddReaction(rx)
}

func voidExtra[V, M, X any](fn func(V, M, X, apis.Position)) func(V, M, X, apis.Position) any {
	if fn == nil {
		return nil
	}
	return func(v V, model M, x X, pos apis.Position) any {
		fn(v, model, x, pos)
		return nil
	}
}

// extraReaction registers a view keyed reaction whose extra argument is an
// X. Calls with an extra of another type are skipped.
func extraReaction[V, M, X any](m *Manager, sig apis.Signature, kind apis.ViewKind, fn func(V, M, X, apis.Position) any) error {
	rx := &reaction.ViewModelPositionExtra{
		Sig:       sig,
		On:        kind,
		ViewType:  uref.TypeOf[V](),
		ModelType: uref.TypeOf[M](),
	}
	if fn != nil {
		depth := m.Config().MaxUnwrap
		rx.Fn = func(view, model any, pos apis.Position, extra any) any {
			v, mm, ok := cast[V, M](view, model, depth)
			if !ok {
				return nil
			}
			x, ok := extra.(X)
			if !ok {
				return nil
			}
			return fn(v, mm, x, pos)
		}
	}
	return m.AddReaction(rx)
}

func sectionReaction[R any](m *Manager, sig apis.Signature, fn func(int) R) error {
	rx := &reaction.Section{Sig: sig}
	if fn != nil {
		rx.Fn = func(section int) any { return fn(section) }
	}
	return m.AddReaction(rx)
}

func modelReaction[M, R any](m *Manager, sig apis.Signature, kind apis.ViewKind, fn func(M, apis.Position) R) error {
	rx := &reaction.ModelPosition{
		Sig:       sig,
		On:        kind,
		ModelType: uref.TypeOf[M](),
	}
	if fn != nil {
		depth := m.Config().MaxUnwrap
		rx.Fn = func(model any, pos apis.Position) any {
			mm, ok := as[M](model, depth)
			if !ok {
				return nil
			}
			return fn(mm, pos)
		}
	}
	return m.AddReaction(rx)
}

func contentReaction(m *Manager, sig apis.Signature, fn func()) error {
	rx := &reaction.NoArgument{Sig: sig, On: apis.Cell}
	if fn != nil {
		rx.Fn = func() any {
			fn()
			return nil
		}
	}
	return m.AddReaction(rx)
}

func cast[V, M any](view, model any, maxUnwrap int) (V, M, bool) {
	v, ok := view.(V)
	if !ok {
		var zero M
		return v, zero, false
	}
	mm, ok := as[M](model, maxUnwrap)
	return v, mm, ok
}

func as[M any](model any, maxUnwrap int) (M, bool) {
	var zero M
	out, ok := uref.Convert(model, uref.TypeOf[M](), maxUnwrap)
	if !ok {
		return zero, false
	}
	mm, ok := out.(M)
	if !ok {
		return zero, false
	}
	return mm, true
}
