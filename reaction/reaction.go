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

// Package reaction holds event reactions: closures answering one widget
// callback for one view kind, keyed by a view type or a model type.
//
// Reactions come in a closed set of shapes, one struct per argument list.
// Every shape implements Reaction so the registry can store and invoke them
// uniformly.
package reaction

import (
	"reflect"

	"dirpx.dev/cvm/apis"
)

// Args carries every argument a reaction may need. Each shape reads only
// the fields it declares. Index is the position of a title in the section
// index and Extra holds callback-specific values such as the destination of
// a move, a MenuAction or an index title.
type Args struct {
	View  any
	Model any
	Pos   apis.Position
	Index int
	Extra any
}

// Reaction is one registered event reaction.
type Reaction interface {
	// Signature is the callback the reaction answers.
	Signature() apis.Signature
	// Kind scopes the reaction to cells or one supplementary kind.
	Kind() apis.ViewKind
	// ViewKey is the view type the reaction matches, or nil.
	ViewKey() reflect.Type
	// ModelKey is the model type the reaction matches, or nil.
	ModelKey() reflect.Type
	// Invoke calls the closure with the arguments of its shape.
	Invoke(args Args) any
}

// ViewModelPosition reacts with (view, model, position). It is keyed by the
// view's dynamic type. ModelType records the closure's declared model
// argument and is informational only.
type ViewModelPosition struct {
	Sig       apis.Signature
	On        apis.ViewKind
	ViewType  reflect.Type
	ModelType reflect.Type
	Fn        func(view, model any, pos apis.Position) any
}

// Signature returns the callback the reaction answers.
func (r *ViewModelPosition) Signature() apis.Signature {
	return r.Sig
}

// Kind returns the view kind the reaction is scoped to.
func (r *ViewModelPosition) Kind() apis.ViewKind {
	return r.On
}

// ViewKey returns the view type the reaction is keyed by.
func (r *ViewModelPosition) ViewKey() reflect.Type {
	return r.ViewType
}

// ModelKey returns nil; the model type does not take part in lookup.
func (r *ViewModelPosition) ModelKey() reflect.Type {
	return nil
}

// Invoke calls Fn with the view, model and position of a.
func (r *ViewModelPosition) Invoke(a Args) any {
	return r.Fn(a.View, a.Model, a.Pos)
}

// ModelPosition reacts with (model, position) and is keyed by the model's
// base type. It serves callbacks that fire before a view exists.
type ModelPosition struct {
	Sig       apis.Signature
	On        apis.ViewKind
	ModelType reflect.Type
	Fn        func(model any, pos apis.Position) any
}

// Signature returns the callback the reaction answers.
func (r *ModelPosition) Signature() apis.Signature {
	return r.Sig
}

// Kind returns the view kind the reaction is scoped to.
func (r *ModelPosition) Kind() apis.ViewKind {
	return r.On
}

// ViewKey returns nil; model keyed reactions never see a view.
func (r *ModelPosition) ViewKey() reflect.Type {
	return nil
}

// ModelKey returns the base model type, normalized at registration.
func (r *ModelPosition) ModelKey() reflect.Type {
	return r.ModelType
}

// Invoke calls Fn with the model and position of a.
func (r *ModelPosition) Invoke(a Args) any {
	return r.Fn(a.Model, a.Pos)
}

// ViewModelPositionExtra is ViewModelPosition plus one callback-specific
// argument, such as the element kind of a supplementary display event or
// the destination of a move.
type ViewModelPositionExtra struct {
	Sig       apis.Signature
	On        apis.ViewKind
	ViewType  reflect.Type
	ModelType reflect.Type
	Fn        func(view, model any, pos apis.Position, extra any) any
}

// Signature returns the callback the reaction answers.
func (r *ViewModelPositionExtra) Signature() apis.Signature {
	return r.Sig
}

// Kind returns the view kind the reaction is scoped to.
func (r *ViewModelPositionExtra) Kind() apis.ViewKind {
	return r.On
}

// ViewKey returns the view type the reaction is keyed by.
func (r *ViewModelPositionExtra) ViewKey() reflect.Type {
	return r.ViewType
}

// ModelKey returns nil; the model type does not take part in lookup.
func (r *ViewModelPositionExtra) ModelKey() reflect.Type {
	return nil
}

// Invoke calls Fn with the view, model, position and extra value of a.
func (r *ViewModelPositionExtra) Invoke(a Args) any {
	return r.Fn(a.View, a.Model, a.Pos, a.Extra)
}

// NoArgument reacts with no arguments. It matches on signature and kind only.
type NoArgument struct {
	Sig apis.Signature
	On  apis.ViewKind
	Fn  func() any
}

// Signature returns the callback the reaction answers.
func (r *NoArgument) Signature() apis.Signature {
	return r.Sig
}

// Kind returns the view kind the reaction is scoped to.
func (r *NoArgument) Kind() apis.ViewKind {
	return r.On
}

// ViewKey returns nil.
func (r *NoArgument) ViewKey() reflect.Type {
	return nil
}

// ModelKey returns nil.
func (r *NoArgument) ModelKey() reflect.Type {
	return nil
}

// Invoke calls Fn and ignores a.
func (r *NoArgument) Invoke(Args) any {
	return r.Fn()
}

// Section reacts with a section index. It answers layout queries asked per
// section and is always scoped to cells.
type Section struct {
	Sig apis.Signature
	Fn  func(section int) any
}

// Signature returns the callback the reaction answers.
func (r *Section) Signature() apis.Signature {
	return r.Sig
}

// Kind returns apis.Cell.
func (r *Section) Kind() apis.ViewKind {
	return apis.Cell
}

// ViewKey returns nil.
func (r *Section) ViewKey() reflect.Type {
	return nil
}

// ModelKey returns nil.
func (r *Section) ModelKey() reflect.Type {
	return nil
}

// Invoke calls Fn with the section of a.Pos.
func (r *Section) Invoke(a Args) any {
	return r.Fn(a.Pos.Section)
}

// IndexTitle reacts with a section index title and its position in the
// index. It answers PositionForIndexTitle and is always scoped to cells.
type IndexTitle struct {
	Sig apis.Signature
	Fn  func(title string, index int) any
}

// Signature returns the callback the reaction answers.
func (r *IndexTitle) Signature() apis.Signature {
	return r.Sig
}

// Kind returns apis.Cell.
func (r *IndexTitle) Kind() apis.ViewKind {
	return apis.Cell
}

// ViewKey returns nil.
func (r *IndexTitle) ViewKey() reflect.Type {
	return nil
}

// ModelKey returns nil.
func (r *IndexTitle) ModelKey() reflect.Type {
	return nil
}

// Invoke calls Fn with the title held in a.Extra and a.Index. A non-string
// extra is passed as the empty title.
func (r *IndexTitle) Invoke(a Args) any {
	title, _ := a.Extra.(string)
	return r.Fn(title, a.Index)
}
