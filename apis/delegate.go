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

package apis

// The single-method interfaces below make up the delegate half of the widget
// callback surface. A secondary delegate may implement any subset of them;
// the dispatch layer checks for each one on every call.

type ItemSelector interface {
	DidSelectItem(pos Position)
}

type ItemDeselector interface {
	DidDeselectItem(pos Position)
}

type SelectionFilter interface {
	ShouldSelectItem(pos Position) bool
}

type DeselectionFilter interface {
	ShouldDeselectItem(pos Position) bool
}

type HighlightFilter interface {
	ShouldHighlightItem(pos Position) bool
}

type ItemHighlighter interface {
	DidHighlightItem(pos Position)
}

type ItemUnhighlighter interface {
	DidUnhighlightItem(pos Position)
}

type CellDisplayer interface {
	WillDisplayCell(view any, pos Position)
}

type CellEndDisplayer interface {
	DidEndDisplayingCell(view any, pos Position)
}

type SupplementaryDisplayer interface {
	WillDisplaySupplementary(view any, kind string, pos Position)
}

type SupplementaryEndDisplayer interface {
	DidEndDisplayingSupplementary(view any, kind string, pos Position)
}

type ItemSizer interface {
	SizeForItem(pos Position) Size
}

type HeaderSizer interface {
	ReferenceSizeForHeader(section int) Size
}

type FooterSizer interface {
	ReferenceSizeForFooter(section int) Size
}

type MoveFilter interface {
	CanMoveItem(pos Position) bool
}

type FocusFilter interface {
	CanFocusItem(pos Position) bool
}

// ItemMover commits an interactive reorder. When the secondary delegate
// implements it, the delegate owns the commit and the store is left alone.
type ItemMover interface {
	MoveItem(from, to Position)
}

type MenuPresenter interface {
	ShouldShowMenu(pos Position) bool
}

type ActionFilter interface {
	CanPerformAction(action string, pos Position, sender any) bool
}

type ActionPerformer interface {
	PerformAction(action string, pos Position, sender any)
}

type SectionInsetter interface {
	InsetForSection(section int) Insets
}

type LineSpacer interface {
	MinimumLineSpacing(section int) float64
}

type InteritemSpacer interface {
	MinimumInteritemSpacing(section int) float64
}

type IndexTitler interface {
	IndexTitles() []string
}

type IndexTitleLocator interface {
	PositionForIndexTitle(title string, index int) Position
}

// ContentUpdateObserver is told before and after a storage change is
// applied to the widget.
type ContentUpdateObserver interface {
	WillUpdateContent(change Change)
	DidUpdateContent(change Change)
}

// Delegate is the full delegate surface the dispatch layer implements.
// RespondsTo is the capability query widgets may cache until the next Attach.
type Delegate interface {
	RespondsTo(sig Signature) bool

	ItemSelector
	ItemDeselector
	SelectionFilter
	DeselectionFilter
	HighlightFilter
	ItemHighlighter
	ItemUnhighlighter
	CellDisplayer
	CellEndDisplayer
	SupplementaryDisplayer
	SupplementaryEndDisplayer
	ItemSizer
	HeaderSizer
	FooterSizer
	MoveFilter
	FocusFilter
	MenuPresenter
	ActionFilter
	ActionPerformer
	SectionInsetter
	LineSpacer
	InteritemSpacer
}
