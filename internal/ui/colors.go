package ui

import "github.com/charmbracelet/lipgloss"

// Palette holds the styles used across views.
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

func NewPalette(title, ok, err, warn, help string) Palette {
	return Palette{
		title: NewBold(title).MarginBottom(1),
		ok:    NewStyle(ok),
		err:   NewStyle(err),
		warn:  NewStyle(warn),
		help:  NewStyle(help).MarginTop(1),
	}
}

func NewStyle(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

func NewBold(color string) lipgloss.Style {
	return NewStyle(color).Bold(true)
}

func NewEm(color string) lipgloss.Style {
	return NewStyle(color).Italic(true)
}
