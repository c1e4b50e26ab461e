// Copyright (c) 2026 SSHHub Team
// SSHHub - SSH connection hub
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// alignFooter returns a single line with right aligned to the end of width
// columns and left at the start. At least one space separates them.
func alignFooter(left, right string, width int) string {
	spaces := width - lipgloss.Width(left) - lipgloss.Width(right)
	if spaces < 1 {
		spaces = 1
	}
	return left + strings.Repeat(" ", spaces) + right
}

// footer renders the bottom status line.
func (m *mainModel) footer(left, right string) string {
	width := m.width - 4
	if width < 40 {
		width = 76
	}
	return footerStyle.Render(alignFooter(left, right, width))
}
