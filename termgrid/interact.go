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

package termgrid

import (
	"dirpx.dev/cvm/apis"
)

// Move reorders the cell at from to to, the way a drag would. The delegate
// must allow moving from and the data source must implement apis.ItemMover
// to commit the new order. The grid then re-queries the data source and
// keeps the cursor on the moved cell.
func (g *Grid) Move(from, to apis.Position) bool {
	if from == to || !g.hasCell(from) || !g.fits(from, to) {
		return false
	}
	if !g.responds(apis.CanMoveItem) || !g.delegate.CanMoveItem(from) {
		return false
	}
	mover, ok := g.source.(apis.ItemMover)
	if !ok {
		return false
	}
	mover.MoveItem(from, to)
	g.moves++
	g.layout()
	g.focusOn(to)
	return true
}

// Moves returns how many moves were committed.
func (g *Grid) Moves() int { return g.moves }

// shift moves the cell under the cursor one slot up or down, crossing
// into the neighbouring section at the edges.
func (g *Grid) shift(delta int) bool {
	from, ok := g.Cursor()
	if !ok {
		return false
	}
	to := from
	switch {
	case delta < 0 && from.Item > 0:
		to.Item--
	case delta < 0 && from.Section > 0:
		to = apis.At(from.Section-1, g.counts[from.Section-1])
	case delta > 0 && from.Item < g.counts[from.Section]-1:
		to.Item++
	case delta > 0 && from.Section < len(g.counts)-1:
		to = apis.At(from.Section+1, 0)
	default:
		return false
	}
	return g.Move(from, to)
}

func (g *Grid) hasCell(pos apis.Position) bool {
	return pos.Section >= 0 && pos.Section < len(g.counts) &&
		pos.Item >= 0 && pos.Item < g.counts[pos.Section]
}

// fits reports whether to is a valid destination once from is taken out.
func (g *Grid) fits(from, to apis.Position) bool {
	if to.Section < 0 || to.Section >= len(g.counts) {
		return false
	}
	limit := g.counts[to.Section]
	if to.Section == from.Section {
		limit--
	}
	return to.Item >= 0 && to.Item <= limit
}

// IndexTitles returns the section index of the data source, or nil.
func (g *Grid) IndexTitles() []string {
	if t, ok := g.source.(apis.IndexTitler); ok {
		return t.IndexTitles()
	}
	return nil
}

// JumpToIndexTitle moves the cursor to the position the data source maps
// the index title at i to.
func (g *Grid) JumpToIndexTitle(i int) bool {
	titles := g.IndexTitles()
	if i < 0 || i >= len(titles) {
		return false
	}
	loc, ok := g.source.(apis.IndexTitleLocator)
	if !ok {
		return false
	}
	return g.focusOn(loc.PositionForIndexTitle(titles[i], i))
}

// Perform runs a menu action on the cell at pos. The menu must be shown for
// pos and the action allowed before the delegate is told to perform it.
func (g *Grid) Perform(pos apis.Position, action string, sender any) bool {
	if !g.hasCell(pos) {
		return false
	}
	if !g.responds(apis.ShouldShowMenu) || !g.delegate.ShouldShowMenu(pos) {
		return false
	}
	if !g.responds(apis.CanPerformAction) || !g.delegate.CanPerformAction(action, pos, sender) {
		return false
	}
	if g.responds(apis.PerformAction) {
		g.delegate.PerformAction(action, pos, sender)
	}
	return true
}

// MenuActions filters actions down to the ones the menu for pos offers.
func (g *Grid) MenuActions(pos apis.Position, actions ...string) []string {
	if !g.hasCell(pos) || !g.responds(apis.ShouldShowMenu) || !g.delegate.ShouldShowMenu(pos) {
		return nil
	}
	if !g.responds(apis.CanPerformAction) {
		return nil
	}
	var out []string
	for _, a := range actions {
		if g.delegate.CanPerformAction(a, pos, g) {
			out = append(out, a)
		}
	}
	return out
}

// focusOn moves the cursor to the cell at pos, firing highlight callbacks.
func (g *Grid) focusOn(pos apis.Position) bool {
	for i, c := range g.cells() {
		if c == pos {
			if i == g.cursor {
				return true
			}
			g.moveCursor(i - g.cursor)
			cur, _ := g.Cursor()
			return cur == pos
		}
	}
	return false
}
