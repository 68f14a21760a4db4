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

// Storage is the backing data store the dispatch layer reads models from.
type Storage interface {
	NumberOfSections() int
	NumberOfItems(section int) int
	// Item returns the model at pos, or (nil, false) when there is none.
	Item(pos Position) (any, bool)
	// SupplementaryModel returns the model of kind for pos.Section.
	SupplementaryModel(kind string, pos Position) (any, bool)
	// SetObserver installs the receiver of structural change notifications.
	// A nil observer stops notifications.
	SetObserver(o StorageObserver)
}

// ItemRelocator is implemented by stores that can move an item without
// notifying their observer, for reorders the widget already displays.
type ItemRelocator interface {
	RelocateItem(from, to Position) error
}

// StorageObserver receives one Change per discrete storage mutation.
type StorageObserver interface {
	StorageDidChange(change Change)
}

// SectionMove moves a whole section.
type SectionMove struct {
	From, To int
}

// ItemMove moves one item.
type ItemMove struct {
	From, To Position
}

// Change describes one structural edit of a Storage.
//
// Deleted and updated indexes refer to the state before the change; inserted
// indexes refer to the state after it.
type Change struct {
	InsertedSections []int
	DeletedSections  []int
	UpdatedSections  []int
	MovedSections    []SectionMove

	InsertedItems []Position
	DeletedItems  []Position
	UpdatedItems  []Position
	MovedItems    []ItemMove
}

// IsEmpty reports whether the change carries no edits.
func (c Change) IsEmpty() bool {
	return !c.HasSectionChanges() && len(c.MovedSections) == 0 && !c.HasItemChanges()
}

// HasSectionChanges reports section inserts, deletes or updates.
// Section moves are not included.
func (c Change) HasSectionChanges() bool {
	return len(c.InsertedSections) > 0 || len(c.DeletedSections) > 0 || len(c.UpdatedSections) > 0
}

// HasItemChanges reports any item-level edit.
func (c Change) HasItemChanges() bool {
	return len(c.InsertedItems) > 0 || len(c.DeletedItems) > 0 ||
		len(c.UpdatedItems) > 0 || len(c.MovedItems) > 0
}
