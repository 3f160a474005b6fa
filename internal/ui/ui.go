package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/vdx/internal/models"
	"github.com/desertthunder/vdx/internal/resolver"
	"github.com/desertthunder/vdx/internal/tasks"
)

// ViewState identifies the active screen.
type ViewState int

const (
	VideoFeedView ViewState = iota
	DocFeedView
	DetailView
)

// Browser is the slice of paging behavior the interface needs from a feed
// controller.
type Browser interface {
	FetchFirst(ctx context.Context) error
	FetchMore(ctx context.Context) error
	Refresh(ctx context.Context) error
	Items() []models.Item
	HasMore() bool
	Reason() string
}

type feedLoadedMsg struct {
	view ViewState
	err  error
}

type moreLoadedMsg struct {
	view ViewState
	err  error
}

type streamResolvedMsg struct {
	stream *models.StreamInfo
	err    error
}

type progressUpdateMsg tasks.ProgressUpdate

type refreshDoneMsg struct {
	results []tasks.RefreshResult
}

// Model is the root bubbletea model.
type Model struct {
	ctx    context.Context
	view   ViewState
	keys   keyMap
	help   help.Model
	logger *log.Logger

	videos   Browser
	docs     Browser
	engine   *tasks.FeedEngine
	resolver *resolver.Resolver

	videoList list.Model
	docList   list.Model

	selected  models.Item
	stream    *models.StreamInfo
	resolving bool
	viewErr   error

	status       string
	refreshing   bool
	loadingMore  bool
	progressChan chan tasks.ProgressUpdate
	refreshDone  chan []tasks.RefreshResult

	width  int
	height int
}

// New builds the feed browser over the given pagers. The resolver and engine
// may be nil, which disables stream resolution and bulk refresh respectively.
func New(ctx context.Context, videos, docs Browser, engine *tasks.FeedEngine, res *resolver.Resolver, logger *log.Logger) *Model {
	return &Model{
		ctx:       ctx,
		view:      VideoFeedView,
		keys:      newKeyMap(),
		help:      help.New(),
		logger:    logger,
		videos:    videos,
		docs:      docs,
		engine:    engine,
		resolver:  res,
		videoList: newItemList("Videos", 0, 0),
		docList:   newItemList("Documents", 0, 0),
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchFirst(VideoFeedView), m.fetchFirst(DocFeedView))
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.videoList.SetSize(msg.Width, msg.Height-4)
		m.docList.SetSize(msg.Width, msg.Height-4)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case feedLoadedMsg:
		return m.handleFeedLoaded(msg)
	case moreLoadedMsg:
		m.loadingMore = false
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		m.syncList(msg.view)
		return m, nil
	case streamResolvedMsg:
		m.resolving = false
		m.stream = msg.stream
		m.viewErr = msg.err
		return m, nil
	case progressUpdateMsg:
		m.status = msg.Message
		return m, m.waitForProgress()
	case refreshDoneMsg:
		return m.handleRefreshDone(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) {
		return m, tea.Quit
	}

	switch m.view {
	case DetailView:
		if key.Matches(msg, m.keys.back) {
			m.stream = nil
			m.viewErr = nil
			if m.selected.Kind == models.KindDocument {
				m.view = DocFeedView
			} else {
				m.view = VideoFeedView
			}
		}
		return m, nil
	case VideoFeedView, DocFeedView:
		return m.handleFeedKey(msg)
	}
	return m, nil
}

func (m *Model) handleFeedKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.tab):
		if m.view == VideoFeedView {
			m.view = DocFeedView
		} else {
			m.view = VideoFeedView
		}
		return m, nil
	case key.Matches(msg, m.keys.more):
		return m, m.fetchMore(m.view)
	case key.Matches(msg, m.keys.refresh):
		return m, m.startRefresh()
	case key.Matches(msg, m.keys.enter):
		return m.openSelected()
	}

	var cmd tea.Cmd
	if m.view == VideoFeedView {
		m.videoList, cmd = m.videoList.Update(msg)
	} else {
		m.docList, cmd = m.docList.Update(msg)
	}

	// Reaching the end of the list pulls the next page in.
	if key.Matches(msg, m.keys.down) && m.atListEnd() {
		return m, tea.Batch(cmd, m.fetchMore(m.view))
	}
	return m, cmd
}

func (m *Model) atListEnd() bool {
	l := m.activeList()
	return len(l.Items()) > 0 && l.Index() == len(l.Items())-1
}

func (m *Model) openSelected() (tea.Model, tea.Cmd) {
	item, ok := m.activeList().SelectedItem().(feedItem)
	if !ok {
		return m, nil
	}

	m.selected = item.item
	m.view = DetailView
	m.stream = nil
	m.viewErr = nil

	if m.selected.Kind == models.KindVideo && m.resolver != nil {
		m.resolving = true
		return m, m.resolveSelected(m.selected.URL)
	}
	return m, nil
}

func (m *Model) handleFeedLoaded(msg feedLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.status = msg.err.Error()
		return m, nil
	}
	m.syncList(msg.view)
	if reason := m.browserFor(msg.view).Reason(); reason != "" {
		m.status = reason
	}
	return m, nil
}

func (m *Model) handleRefreshDone(msg refreshDoneMsg) (tea.Model, tea.Cmd) {
	m.refreshing = false
	m.syncList(VideoFeedView)
	m.syncList(DocFeedView)

	failed := 0
	for _, result := range msg.results {
		if result.Error != nil {
			failed++
			m.logger.Warn("feed refresh failed", "feed", result.Name, "error", result.Error)
		}
	}
	if failed > 0 {
		m.status = fmt.Sprintf("refresh finished, %d feed(s) failed", failed)
	} else {
		m.status = "feeds refreshed"
	}
	return m, nil
}

func (m *Model) browserFor(view ViewState) Browser {
	if view == DocFeedView {
		return m.docs
	}
	return m.videos
}

func (m *Model) activeList() *list.Model {
	if m.view == DocFeedView {
		return &m.docList
	}
	return &m.videoList
}

func (m *Model) syncList(view ViewState) {
	items := toListItems(m.browserFor(view).Items())
	if view == DocFeedView {
		m.docList.SetItems(items)
	} else {
		m.videoList.SetItems(items)
	}
}

func (m *Model) fetchFirst(view ViewState) tea.Cmd {
	browser := m.browserFor(view)
	return func() tea.Msg {
		return feedLoadedMsg{view: view, err: browser.FetchFirst(m.ctx)}
	}
}

func (m *Model) fetchMore(view ViewState) tea.Cmd {
	browser := m.browserFor(view)
	if m.loadingMore || !browser.HasMore() {
		return nil
	}
	m.loadingMore = true
	return func() tea.Msg {
		return moreLoadedMsg{view: view, err: browser.FetchMore(m.ctx)}
	}
}

func (m *Model) resolveSelected(url string) tea.Cmd {
	return func() tea.Msg {
		stream, err := m.resolver.Resolve(m.ctx, url)
		return streamResolvedMsg{stream: stream, err: err}
	}
}

func (m *Model) startRefresh() tea.Cmd {
	if m.engine == nil || m.refreshing {
		return nil
	}
	m.refreshing = true
	m.status = "refreshing feeds"
	m.progressChan = make(chan tasks.ProgressUpdate, 8)
	m.refreshDone = make(chan []tasks.RefreshResult, 1)

	feeds := map[string]tasks.Feed{
		"videos":    m.videos,
		"documents": m.docs,
	}
	progress := m.progressChan
	done := m.refreshDone
	go func() {
		done <- m.engine.RefreshAll(m.ctx, progress, feeds)
		close(progress)
	}()
	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress := m.progressChan
	done := m.refreshDone
	return func() tea.Msg {
		update, ok := <-progress
		if !ok {
			return refreshDoneMsg{results: <-done}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) View() string {
	switch m.view {
	case DetailView:
		return m.renderDetail()
	default:
		return m.renderFeed()
	}
}

func (m *Model) renderFeed() string {
	var b strings.Builder
	b.WriteString(m.activeList().View())
	b.WriteString("\n")
	if m.refreshing {
		b.WriteString(styles.warn.Render(m.status))
	} else if m.status != "" {
		b.WriteString(styles.help.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(styles.help.Render(m.help.ShortHelpView(m.keys.ShortHelp())))
	return b.String()
}

func (m *Model) renderDetail() string {
	var b strings.Builder
	b.WriteString(styles.title.Render(m.selected.Title))
	b.WriteString("\n\n")

	if m.selected.Kind == models.KindDocument {
		b.WriteString(fmt.Sprintf("Type: %s\n", m.selected.Extension))
		if m.selected.SizeLabel != "" {
			b.WriteString(fmt.Sprintf("Size: %s\n", m.selected.SizeLabel))
		}
	} else if m.selected.Channel != "" {
		b.WriteString(fmt.Sprintf("Channel: %s\n", m.selected.Channel))
	}
	b.WriteString(fmt.Sprintf("Source: %s\n", m.selected.Source))
	b.WriteString(fmt.Sprintf("URL: %s\n", m.selected.URL))

	switch {
	case m.resolving:
		b.WriteString("\n" + styles.warn.Render("Resolving stream..."))
	case m.viewErr != nil:
		b.WriteString("\n" + styles.err.Render(m.viewErr.Error()))
	case m.stream != nil:
		b.WriteString("\n" + styles.ok.Render("Stream resolved"))
		b.WriteString(fmt.Sprintf("\n  %s (%dp", m.stream.MIMEType, m.stream.Height))
		if m.stream.IsHLS {
			b.WriteString(", HLS")
		}
		b.WriteString(")\n  ")
		b.WriteString(m.stream.URL)
	}

	b.WriteString("\n\n" + styles.help.Render("esc: back • q: quit"))
	return b.String()
}
