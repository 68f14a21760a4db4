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

import "strconv"

// Position addresses an item inside a sectioned collection.
// Supplementary views use Section and leave Item at zero.
type Position struct {
	// Section is the zero-based section index.
	Section int
	// Item is the zero-based item index inside Section.
	Item int
}

// At is a shorthand for Position{Section: section, Item: item}.
func At(section, item int) Position {
	return Position{Section: section, Item: item}
}

// SectionAt returns the position used for supplementary views of section.
func SectionAt(section int) Position {
	return Position{Section: section}
}

// String renders the position as "[section, item]".
func (p Position) String() string {
	return "[" + strconv.Itoa(p.Section) + ", " + strconv.Itoa(p.Item) + "]"
}

const (
	// HeaderKind is the supplementary kind used for section headers.
	HeaderKind = "header"
	// FooterKind is the supplementary kind used for section footers.
	FooterKind = "footer"
)

// ViewKind tells a cell apart from a supplementary view of a given kind.
// The zero value is Cell. ViewKind is comparable and safe to use as a map key.
type ViewKind struct {
	supplementary bool
	kind          string
}

// Cell is the view kind of regular collection items.
var Cell = ViewKind{}

// Supplementary returns the view kind for supplementary views of kind.
// Supplementary("") is still distinct from Cell.
func Supplementary(kind string) ViewKind {
	return ViewKind{supplementary: true, kind: kind}
}

// Header returns Supplementary(HeaderKind).
func Header() ViewKind { return Supplementary(HeaderKind) }

// Footer returns Supplementary(FooterKind).
func Footer() ViewKind { return Supplementary(FooterKind) }

// IsCell reports whether k is Cell.
func (k ViewKind) IsCell() bool { return !k.supplementary }

// SupplementaryKind returns the supplementary kind string, or ("", false) for Cell.
func (k ViewKind) SupplementaryKind() (string, bool) {
	if !k.supplementary {
		return "", false
	}
	return k.kind, true
}

// String renders "cell" or "supplementary(<kind>)".
func (k ViewKind) String() string {
	if !k.supplementary {
		return "cell"
	}
	return "supplementary(" + k.kind + ")"
}

// Size is a width/height pair returned by size reactions.
type Size struct {
	Width  float64
	Height float64
}

// IsZero reports whether both dimensions are zero.
func (s Size) IsZero() bool { return s.Width == 0 && s.Height == 0 }

// Insets are the margins around the cells of one section.
type Insets struct {
	Top, Left, Bottom, Right float64
}

// MenuAction is the extra argument of menu action callbacks. Action names
// the command; Sender is whatever triggered it and may be nil.
type MenuAction struct {
	Action string
	Sender any
}
