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
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"dirpx.dev/cvm/apis"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	footerStyle   = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("244"))
	cellStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Init implements tea.Model by laying out the attached data source.
func (g *Grid) Init() tea.Cmd {
	g.layout()
	return nil
}

// Update implements tea.Model. Arrow keys and j/k move the highlight,
// shift with an arrow (or J/K) moves the highlighted item, enter and space
// toggle selection, c runs the copy menu action, 1 to 9 jump through the
// section index and q quits.
func (g *Grid) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		g.width = msg.Width
	case tea.KeyPressMsg:
		switch msg.String() {
		case "up", "k":
			g.moveCursor(-1)
		case "down", "j":
			g.moveCursor(1)
		case "shift+up", "K":
			g.shift(-1)
		case "shift+down", "J":
			g.shift(1)
		case "enter", " ", "space":
			if pos, ok := g.Cursor(); ok {
				g.Toggle(pos)
			}
		case "c":
			if pos, ok := g.Cursor(); ok {
				g.Perform(pos, "copy", g)
			}
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			g.JumpToIndexTitle(int(msg.String()[0] - '1'))
		case "q", "ctrl+c":
			return g, tea.Quit
		}
	}
	return g, nil
}

// View implements tea.Model. Section insets and line spacing are drawn as
// blank lines, and the left inset as padding.
func (g *Grid) View() string {
	var b strings.Builder
	cur, hasCur := g.Cursor()
	for _, v := range g.shown {
		line := render(v.view, g.width)
		switch {
		case v.kind == apis.Header():
			line = headerStyle.Render(line)
		case v.kind == apis.Footer():
			line = footerStyle.Render(line)
		case !v.kind.IsCell():
			line = cellStyle.Render(line)
		default:
			in := g.insets(v.pos.Section)
			if v.pos.Item == 0 {
				blank(&b, in.Top)
			} else {
				blank(&b, g.lineSpacing(v.pos.Section))
			}
			prefix := "  "
			style := cellStyle
			if g.selected[v.pos] {
				prefix = "✓ "
				style = selectedStyle
			}
			if hasCur && v.pos == cur {
				prefix = "→ "
				style = cursorStyle
			}
			if h := g.itemHeight(v.pos); h > 1 {
				style = style.Height(h)
			}
			if in.Left >= 1 {
				style = style.PaddingLeft(int(in.Left))
			}
			line = style.Render(prefix + line)
			if v.pos.Item == g.NumberOfItems(v.pos.Section)-1 {
				line += strings.Repeat("\n", lines(in.Bottom))
			}
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func render(view any, width int) string {
	if r, ok := view.(Renderer); ok {
		return r.Render(width)
	}
	if s, ok := view.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", view)
}

func (g *Grid) itemHeight(pos apis.Position) int {
	if !g.responds(apis.SizeForItem) {
		return 0
	}
	return int(g.delegate.SizeForItem(pos).Height)
}

func (g *Grid) insets(section int) apis.Insets {
	if !g.responds(apis.InsetForSection) {
		return apis.Insets{}
	}
	return g.delegate.InsetForSection(section)
}

func (g *Grid) lineSpacing(section int) float64 {
	if !g.responds(apis.MinimumLineSpacing) {
		return 0
	}
	return g.delegate.MinimumLineSpacing(section)
}

// lines converts a layout length to whole terminal rows.
func lines(v float64) int {
	if v < 1 {
		return 0
	}
	return int(v)
}

func blank(b *strings.Builder, v float64) {
	b.WriteString(strings.Repeat("\n", lines(v)))
}

// cells lists the positions of every visible cell in display order.
func (g *Grid) cells() []apis.Position {
	var out []apis.Position
	for _, v := range g.shown {
		if v.kind.IsCell() {
			out = append(out, v.pos)
		}
	}
	return out
}

// Cursor returns the highlighted cell, if any.
func (g *Grid) Cursor() (apis.Position, bool) {
	cells := g.cells()
	if g.cursor < 0 || g.cursor >= len(cells) {
		return apis.Position{}, false
	}
	return cells[g.cursor], true
}

func (g *Grid) clampCursor() {
	n := len(g.cells())
	switch {
	case n == 0:
		g.cursor = 0
	case g.cursor >= n:
		g.cursor = n - 1
	case g.cursor < 0:
		g.cursor = 0
	}
	for pos := range g.selected {
		if pos.Section >= len(g.counts) || pos.Item >= g.counts[pos.Section] {
			delete(g.selected, pos)
		}
	}
}

func (g *Grid) moveCursor(delta int) {
	cells := g.cells()
	if len(cells) == 0 {
		return
	}
	next := g.cursor + delta
	if next < 0 || next >= len(cells) {
		return
	}
	to := cells[next]
	if g.responds(apis.ShouldHighlightItem) && !g.delegate.ShouldHighlightItem(to) {
		return
	}
	if g.cursor >= 0 && g.cursor < len(cells) && g.responds(apis.DidUnhighlightItem) {
		g.delegate.DidUnhighlightItem(cells[g.cursor])
	}
	g.cursor = next
	if g.responds(apis.DidHighlightItem) {
		g.delegate.DidHighlightItem(to)
	}
}

// Toggle selects pos, or deselects it when already selected, asking the
// delegate's filters first. It reports whether the state changed.
func (g *Grid) Toggle(pos apis.Position) bool {
	if g.selected[pos] {
		return g.Deselect(pos)
	}
	return g.Select(pos)
}

// Select selects the cell at pos.
func (g *Grid) Select(pos apis.Position) bool {
	if g.responds(apis.ShouldSelectItem) && !g.delegate.ShouldSelectItem(pos) {
		return false
	}
	g.selected[pos] = true
	if g.responds(apis.DidSelectItem) {
		g.delegate.DidSelectItem(pos)
	}
	return true
}

// Deselect deselects the cell at pos.
func (g *Grid) Deselect(pos apis.Position) bool {
	if !g.selected[pos] {
		return false
	}
	if g.responds(apis.ShouldDeselectItem) && !g.delegate.ShouldDeselectItem(pos) {
		return false
	}
	delete(g.selected, pos)
	if g.responds(apis.DidDeselectItem) {
		g.delegate.DidDeselectItem(pos)
	}
	return true
}

// IsSelected reports whether pos is selected.
func (g *Grid) IsSelected(pos apis.Position) bool { return g.selected[pos] }
