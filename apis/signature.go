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

// Signature names the widget callback an event reaction answers.
type Signature string

const (
	// ConfigureCell runs after a cell was dequeued and updated.
	ConfigureCell Signature = "configure-cell"
	// ConfigureSupplementary runs after a supplementary view was dequeued and updated.
	ConfigureSupplementary Signature = "configure-supplementary"

	DidSelectItem      Signature = "did-select-item"
	DidDeselectItem    Signature = "did-deselect-item"
	ShouldSelectItem   Signature = "should-select-item"
	ShouldDeselectItem Signature = "should-deselect-item"

	ShouldHighlightItem Signature = "should-highlight-item"
	DidHighlightItem    Signature = "did-highlight-item"
	DidUnhighlightItem  Signature = "did-unhighlight-item"

	WillDisplayCell               Signature = "will-display-cell"
	DidEndDisplayingCell          Signature = "did-end-displaying-cell"
	WillDisplaySupplementary      Signature = "will-display-supplementary"
	DidEndDisplayingSupplementary Signature = "did-end-displaying-supplementary"

	// SizeForItem, ReferenceSizeForHeader and ReferenceSizeForFooter fire
	// before any view exists and are keyed by model type.
	SizeForItem            Signature = "size-for-item"
	ReferenceSizeForHeader Signature = "reference-size-for-header"
	ReferenceSizeForFooter Signature = "reference-size-for-footer"

	CanMoveItem  Signature = "can-move-item"
	CanFocusItem Signature = "can-focus-item"
	// MoveItem commits an interactive reorder; the extra argument is the
	// destination position.
	MoveItem Signature = "move-item"

	// Menu callbacks; the extra argument of the action signatures is a MenuAction.
	ShouldShowMenu   Signature = "should-show-menu"
	CanPerformAction Signature = "can-perform-action"
	PerformAction    Signature = "perform-action"

	// Section layout queries carry only a section index.
	InsetForSection         Signature = "inset-for-section"
	MinimumLineSpacing      Signature = "minimum-line-spacing"
	MinimumInteritemSpacing Signature = "minimum-interitem-spacing"

	// IndexTitles and PositionForIndexTitle drive a section index.
	IndexTitles           Signature = "index-titles"
	PositionForIndexTitle Signature = "position-for-index-title"

	WillUpdateContent Signature = "will-update-content"
	DidUpdateContent  Signature = "did-update-content"
)

// ModelKeyed reports whether reactions for s are looked up by model type
// because no view exists yet when the widget asks.
func (s Signature) ModelKeyed() bool {
	switch s {
	case SizeForItem, ReferenceSizeForHeader, ReferenceSizeForFooter:
		return true
	}
	return false
}

// Unkeyed reports whether reactions for s answer for the whole collection,
// without a view or a model to match against.
func (s Signature) Unkeyed() bool {
	switch s {
	case WillUpdateContent, DidUpdateContent,
		InsetForSection, MinimumLineSpacing, MinimumInteritemSpacing,
		IndexTitles, PositionForIndexTitle:
		return true
	}
	return false
}

// SectionKeyed reports whether s is a section layout query.
func (s Signature) SectionKeyed() bool {
	switch s {
	case InsetForSection, MinimumLineSpacing, MinimumInteritemSpacing:
		return true
	}
	return false
}

// Signatures lists every signature the dispatch layer answers, in a stable order.
func Signatures() []Signature {
	return []Signature{
		ConfigureCell, ConfigureSupplementary,
		DidSelectItem, DidDeselectItem, ShouldSelectItem, ShouldDeselectItem,
		ShouldHighlightItem, DidHighlightItem, DidUnhighlightItem,
		WillDisplayCell, DidEndDisplayingCell, WillDisplaySupplementary, DidEndDisplayingSupplementary,
		SizeForItem, ReferenceSizeForHeader, ReferenceSizeForFooter,
		CanMoveItem, CanFocusItem, MoveItem,
		ShouldShowMenu, CanPerformAction, PerformAction,
		InsetForSection, MinimumLineSpacing, MinimumInteritemSpacing,
		IndexTitles, PositionForIndexTitle,
		WillUpdateContent, DidUpdateContent,
	}
}
