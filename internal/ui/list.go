package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/vdx/internal/models"
)

type feedItem struct {
	item models.Item
}

func (f feedItem) FilterValue() string {
	return f.item.Title
}

func (f feedItem) Title() string {
	return f.item.Title
}

func (f feedItem) Description() string {
	if f.item.Kind == models.KindDocument {
		if f.item.SizeLabel == "" {
			return f.item.Extension
		}
		return fmt.Sprintf("%s, %s", f.item.Extension, f.item.SizeLabel)
	}

	if f.item.Channel == "" {
		return f.item.Source
	}

	return f.item.Channel
}

func toListItems(items []models.Item) []list.Item {
	wrapped := make([]list.Item, len(items))
	for i, item := range items {
		wrapped[i] = feedItem{item: item}
	}
	return wrapped
}

func newItemList(title string, width, height int) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = title
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	return l
}
