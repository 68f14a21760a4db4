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

import "reflect"

// Definition tells a widget how to build views for a reuse identifier:
// either from a Resource or from a plain constructor.
type Definition struct {
	// Type is the view type the definition produces.
	Type reflect.Type
	// New constructs a view in code. Used when Resource is nil.
	New func() any
	// Resource backs resource-defined views.
	Resource Resource
}

// Instantiate builds one view from the definition, or nil if it cannot.
func (d Definition) Instantiate() any {
	if d.Resource != nil {
		if views := d.Resource.Views(); len(views) > 0 {
			return views[0]
		}
		return nil
	}
	if d.New != nil {
		return d.New()
	}
	if d.Type != nil {
		return newOfType(d.Type)
	}
	return nil
}

// newOfType allocates a zero view of t; pointer types get a fresh element.
func newOfType(t reflect.Type) any {
	if t.Kind() == reflect.Pointer {
		return reflect.New(t.Elem()).Interface()
	}
	return reflect.New(t).Elem().Interface()
}

// BatchUpdater receives the structural edits of one batch.
// Deletions and reloads are indexed against the state before the batch,
// insertions against the state after it.
type BatchUpdater interface {
	InsertSections(sections ...int)
	DeleteSections(sections ...int)
	ReloadSections(sections ...int)
	MoveSection(from, to int)

	InsertItems(positions ...Position)
	DeleteItems(positions ...Position)
	ReloadItems(positions ...Position)
	MoveItem(from, to Position)
}

// Widget is the reusable-view collection widget the dispatch layer drives.
// All methods are called on the thread that owns the widget.
type Widget interface {
	// Register installs def under (id, kind).
	Register(id string, kind ViewKind, def Definition)
	// Unregister clears the registration under (id, kind).
	Unregister(id string, kind ViewKind)
	// Dequeue returns a reusable view registered under (id, kind) for pos.
	Dequeue(id string, kind ViewKind, pos Position) (any, error)
	// VisibleView returns the live view at pos, if one is on screen.
	VisibleView(kind ViewKind, pos Position) (any, bool)

	NumberOfSections() int
	NumberOfItems(section int) int

	// PerformBatchUpdates applies updates atomically and then calls completion.
	// A torn-down widget may never call completion.
	PerformBatchUpdates(updates func(BatchUpdater), completion func(finished bool))
	// ReloadData discards incremental state and re-queries the data source.
	ReloadData()

	// Attach installs the data source and delegate. Attaching, even the same
	// values again, must drop any cached RespondsTo answers.
	Attach(source DataSource, delegate Delegate)
}

// DataSource is the creation half of the widget callback surface.
type DataSource interface {
	NumberOfSections() int
	NumberOfItems(section int) int
	CellForItem(pos Position) any
	SupplementaryView(kind string, pos Position) any
}

// IndexedDataSource is a DataSource that also commits reorders and
// answers section index queries. Widgets check for it with a type assertion.
type IndexedDataSource interface {
	DataSource
	ItemMover
	IndexTitler
	IndexTitleLocator
}

// ViewLocator is implemented by widgets that can map a live view back to
// where it is displayed.
type ViewLocator interface {
	PositionOf(view any) (ViewKind, Position, bool)
}
