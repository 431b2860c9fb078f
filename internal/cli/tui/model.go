// Package tui is the terminal shell around the viewing pipeline. It renders
// document status, tabs, thumbnails progress and search state, and feeds
// key input back into the active session. Pipeline events arrive as
// bubbletea messages through the Relay presenter.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bnema/folio/internal/viewer"
	"github.com/bnema/folio/internal/viewer/event"
)

// Terminal cells approximate the pixel viewport handed to sessions.
const (
	cellWidthPx  = 8
	cellHeightPx = 16
)

// Relay forwards pipeline events into the bubbletea program as messages.
type Relay struct {
	program *tea.Program
}

// NewRelay wraps a program.
func NewRelay(program *tea.Program) *Relay {
	return &Relay{program: program}
}

// Apply implements viewer.Presenter.
func (r *Relay) Apply(e event.Event) {
	r.program.Send(e)
}

// searchFired triggers the debounced search submission; stale sequence
// numbers are ignored.
type searchFired struct {
	seq int
}

type searchDone struct {
	err error
}

// tabInfo is the per-tab display state accumulated from events.
type tabInfo struct {
	title      string
	page       int
	pageCount  int
	zoom       float64
	rotation   int
	matchPos   int
	matchTotal int
	thumbsDone int
	thumbGen   uint64
	renderW    int
	renderH    int
}

// Model is the bubbletea model for the viewer shell.
type Model struct {
	ctx            context.Context
	registry       *viewer.Registry
	searchDebounce time.Duration

	tabs  []string
	infos map[string]tabInfo

	width  int
	height int

	searching bool
	searchSeq int
	input     textinput.Model

	status string
	err    error
}

// NewModel returns a shell driving the given registry.
func NewModel(ctx context.Context, registry *viewer.Registry, searchDebounce time.Duration) Model {
	input := textinput.New()
	input.Placeholder = "search"
	input.Prompt = "/"
	input.CharLimit = 256

	return Model{
		ctx:            ctx,
		registry:       registry,
		searchDebounce: searchDebounce,
		infos:          make(map[string]tabInfo),
		input:          input,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if s := m.registry.Active(); s != nil {
			s.Resize(float64(msg.Width*cellWidthPx), float64(msg.Height*cellHeightPx))
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)

	case searchFired:
		if !m.searching || msg.seq != m.searchSeq {
			return m, nil
		}
		return m, m.runSearch(m.input.Value())

	case searchDone:
		m.err = msg.err
		return m, nil

	case event.Event:
		return m.applyEvent(msg), nil
	}

	if m.searching {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.String() {
		case "esc":
			m.searching = false
			m.input.Blur()
			return m, nil
		case "enter":
			m.searching = false
			m.input.Blur()
			return m, m.runSearch(m.input.Value())
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			m.searchSeq++
			seq := m.searchSeq
			return m, tea.Batch(cmd, tea.Tick(m.searchDebounce, func(time.Time) tea.Msg {
				return searchFired{seq: seq}
			}))
		}
	}

	s := m.registry.Active()
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "/":
		m.searching = true
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink
	}

	if s == nil {
		return m, nil
	}

	switch msg.String() {
	case "+", "=":
		s.ZoomIn()
	case "-":
		s.ZoomOut()
	case "f":
		s.FitToPage()
	case "w":
		s.FitToWidth()
	case "r":
		s.Rotate(90)
	case "R":
		s.Rotate(-90)
	case "n", "right", "pgdown":
		s.ScrollPage(1)
	case "p", "left", "pgup":
		s.ScrollPage(-1)
	case "g", "home":
		if err := s.DisplayPage(0); err != nil {
			m.err = err
		}
	case "G", "end":
		if err := s.DisplayPage(s.PageCount() - 1); err != nil {
			m.err = err
		}
	case "N":
		s.NextMatch()
	case "P":
		s.PrevMatch()
	case "]", "tab":
		m.cycleTab(1)
	case "[", "shift+tab":
		m.cycleTab(-1)
	}
	return m, nil
}

func (m *Model) cycleTab(delta int) {
	sessions := m.registry.Sessions()
	if len(sessions) < 2 {
		return
	}
	active := m.registry.Active()
	for i, s := range sessions {
		if s == active {
			next := ((i+delta)%len(sessions) + len(sessions)) % len(sessions)
			if switched, err := m.registry.Activate(next); err == nil {
				switched.Resize(float64(m.width*cellWidthPx), float64(m.height*cellHeightPx))
			}
			return
		}
	}
}

func (m Model) runSearch(query string) tea.Cmd {
	s := m.registry.Active()
	if s == nil {
		return nil
	}
	return func() tea.Msg {
		return searchDone{err: s.Search(m.ctx, query)}
	}
}

func (m Model) applyEvent(e event.Event) Model {
	info := m.infos[e.Session()]

	switch ev := e.(type) {
	case event.TabOpened:
		m.tabs = append(m.tabs, ev.Session())
		info.title = ev.Title
	case event.TabClosed:
		for i, id := range m.tabs {
			if id == ev.Session() {
				m.tabs = append(m.tabs[:i], m.tabs[i+1:]...)
				break
			}
		}
		delete(m.infos, ev.Session())
		return m
	case event.PageChanged:
		info.page = ev.Page
		info.pageCount = ev.PageCount
	case event.PageRendered:
		info.renderW = ev.Bitmap.Width
		info.renderH = ev.Bitmap.Height
	case event.ZoomChanged:
		info.zoom = ev.Factor
	case event.RotationChanged:
		info.rotation = int(ev.Rotation)
	case event.MatchesUpdated:
		info.matchPos = ev.Current
		info.matchTotal = ev.Total
	case event.ThumbnailReady:
		// A new generation supersedes the previous pass's progress.
		if ev.Generation != info.thumbGen {
			info.thumbGen = ev.Generation
			info.thumbsDone = 0
		}
		info.thumbsDone++
	case event.Notification:
		m.status = ev.Message
	case event.OpenRequested:
		for _, path := range ev.Paths {
			if _, err := m.registry.Open(m.ctx, path); err != nil {
				m.err = err
			}
		}
		return m
	}

	m.infos[e.Session()] = info
	return m
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.tabBar())
	b.WriteString("\n\n")

	active := m.registry.Active()
	if active == nil {
		b.WriteString(dimStyle.Render("no document open"))
		b.WriteString("\n")
	} else {
		b.WriteString(m.documentPane(active))
	}

	b.WriteString("\n")
	if m.searching {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("q quit · n/p pages · +/- zoom · w/f fit · r rotate · / search · N/P matches · ]/[ tabs"))
	return b.String()
}

func (m Model) tabBar() string {
	if len(m.tabs) == 0 {
		return titleStyle.Render(" folio ")
	}

	active := ""
	if s := m.registry.Active(); s != nil {
		active = s.ID()
	}

	parts := make([]string, 0, len(m.tabs))
	for _, id := range m.tabs {
		title := m.infos[id].title
		if id == active {
			parts = append(parts, activeTabStyle.Render(" "+title+" "))
		} else {
			parts = append(parts, tabStyle.Render(" "+title+" "))
		}
	}
	return strings.Join(parts, " ")
}

func (m Model) documentPane(s *viewer.Session) string {
	info := m.infos[s.ID()]

	var b strings.Builder
	fmt.Fprintf(&b, "page %d/%d", info.page+1, info.pageCount)
	if info.zoom > 0 {
		fmt.Fprintf(&b, "  ·  zoom %.0f%%", info.zoom*100)
	}
	if info.rotation != 0 {
		fmt.Fprintf(&b, "  ·  rotated %d°", info.rotation)
	}
	if info.renderW > 0 {
		fmt.Fprintf(&b, "  ·  %dx%d px", info.renderW, info.renderH)
	}
	b.WriteString("\n")

	if info.matchTotal > 0 {
		fmt.Fprintf(&b, "match %d of %d\n", info.matchPos, info.matchTotal)
	}
	if info.thumbsDone > 0 && info.thumbsDone < info.pageCount {
		fmt.Fprintf(&b, "thumbnails %d/%d\n", info.thumbsDone, info.pageCount)
	}
	return b.String()
}
