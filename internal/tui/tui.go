// Package tui is the interactive dashboard: a resource menu, filterable list tables,
// record detail with order items, product and category analytics, and create/edit
// forms, all backed by the generated shop clients.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mikelcalvo/admin-cli/internal/logging"
	"github.com/mikelcalvo/admin-cli/internal/requester"
	"github.com/mikelcalvo/admin-cli/internal/shop"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#333333")).
			Padding(0, 1)

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)

	anonymousStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF9500")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Width(20)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(1, 2)

	notificationSuccess = lipgloss.NewStyle().
				Background(lipgloss.Color("#04B575")).
				Foreground(lipgloss.Color("#FFF")).
				Padding(0, 1).
				Bold(true)

	notificationError = lipgloss.NewStyle().
				Background(lipgloss.Color("#FF4444")).
				Foreground(lipgloss.Color("#FFF")).
				Padding(0, 1).
				Bold(true)

	breadcrumbStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

// View represents different screens
type View int

const (
	ViewMenu View = iota
	ViewList
	ViewFilter
	ViewDetail
	ViewAnalytics
	ViewForm
)

// MenuItem for the resource menu
type MenuItem struct {
	kind shop.Kind
}

func (i MenuItem) Title() string { return i.kind.Title }
func (i MenuItem) Description() string {
	if i.kind.HasAnalytics {
		return fmt.Sprintf("List, filter and edit %s, with sales analytics", strings.ToLower(i.kind.Title))
	}
	return fmt.Sprintf("List, filter and edit %s", strings.ToLower(i.kind.Title))
}
func (i MenuItem) FilterValue() string { return i.kind.Title }

// Config carries what the dashboard shows besides the data itself.
type Config struct {
	Brand  string
	User   string
	Logger *slog.Logger
}

// Model is the main TUI model
type Model struct {
	client *shop.Client
	ctx    context.Context
	logger *slog.Logger
	brand  string
	user   string

	view     View
	prevView View
	width    int
	height   int

	menu    list.Model
	kind    shop.Kind
	filters map[requester.Endpoint]requester.Filters

	table       table.Model
	rows        []shop.Row
	detail      shop.Row
	items       []shop.Row
	analytics   any
	analyticsID string
	form        form

	listQ      Query
	detailQ    Query
	itemsQ     Query
	analyticsQ Query
	saveQ      Query

	spinner          spinner.Model
	viewport         viewport.Model
	message          string
	notification     string
	notificationType string
	showNotification bool
}

// Messages
type listLoadedMsg struct {
	seq  uint64
	rows []shop.Row
	err  error
}

type detailLoadedMsg struct {
	seq uint64
	row shop.Row
	err error
}

type itemsLoadedMsg struct {
	seq  uint64
	rows []shop.Row
	err  error
}

type analyticsLoadedMsg struct {
	seq  uint64
	data any
	err  error
}

type savedMsg struct {
	seq     uint64
	row     shop.Row
	created bool
	err     error
}

type clearNotificationMsg struct{}

// New creates the dashboard model.
func New(client *shop.Client, cfg Config) Model {
	if cfg.Brand == "" {
		cfg.Brand = "Shop Admin"
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}

	kinds := shop.Kinds()
	items := make([]list.Item, len(kinds))
	for i, k := range kinds {
		items[i] = MenuItem{kind: k}
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = selectedStyle
	delegate.Styles.SelectedDesc = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))

	menu := list.New(items, delegate, 0, 0)
	menu.Title = cfg.Brand
	menu.SetShowStatusBar(false)
	menu.SetFilteringEnabled(false)
	menu.Styles.Title = titleStyle

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))

	return Model{
		client:   client,
		ctx:      context.Background(),
		logger:   cfg.Logger,
		brand:    cfg.Brand,
		user:     cfg.User,
		view:     ViewMenu,
		menu:     menu,
		filters:  make(map[requester.Endpoint]requester.Filters),
		table:    newTable(),
		spinner:  s,
		viewport: viewport.New(0, 0),
	}
}

// WithContext returns a copy of m whose requests use ctx.
func (m Model) WithContext(ctx context.Context) Model {
	m.ctx = ctx
	return m
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		// Forms take every key, "q" included.
		if m.view == ViewForm || m.view == ViewFilter {
			cmd := m.updateForm(msg)
			return m, cmd
		}
		m.message = ""
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case listLoadedMsg:
		if !m.listQ.Finish(msg.seq, msg.err) {
			return m, nil
		}
		if msg.err != nil {
			m.logger.Warn("list failed", logging.Endpoint(string(m.kind.Endpoint)), logging.Error(msg.err))
			return m, nil
		}
		m.setRows(msg.rows)
		return m, nil

	case detailLoadedMsg:
		if !m.detailQ.Finish(msg.seq, msg.err) {
			return m, nil
		}
		if msg.err == nil {
			m.detail = msg.row
		}
		m.refreshDetail()
		return m, nil

	case itemsLoadedMsg:
		if !m.itemsQ.Finish(msg.seq, msg.err) {
			return m, nil
		}
		if msg.err == nil {
			m.items = msg.rows
		}
		m.refreshDetail()
		return m, nil

	case analyticsLoadedMsg:
		if !m.analyticsQ.Finish(msg.seq, msg.err) {
			return m, nil
		}
		if msg.err == nil {
			m.analytics = msg.data
		}
		m.refreshAnalytics()
		return m, nil

	case savedMsg:
		return m.handleSaved(msg)

	case clearNotificationMsg:
		m.showNotification = false
		m.notification = ""
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		switch {
		case m.view == ViewDetail && (m.detailQ.Loading() || m.itemsQ.Loading()):
			m.refreshDetail()
		case m.view == ViewAnalytics && m.analyticsQ.Loading():
			m.refreshAnalytics()
		}
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.view {
	case ViewMenu:
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "enter":
			if item, ok := m.menu.SelectedItem().(MenuItem); ok {
				cmd = m.openList(item.kind)
				return m, cmd
			}
			return m, nil
		}
		m.menu, cmd = m.menu.Update(msg)
		return m, cmd

	case ViewList:
		switch msg.String() {
		case "q", "esc":
			m.view = ViewMenu
			m.listQ.Reset()
			return m, nil
		case "enter":
			if row, ok := m.selectedRow(); ok {
				cmd = m.openDetail(row.ID())
				return m, cmd
			}
			return m, nil
		case "r":
			cmd = m.loadList()
			return m, cmd
		case "f", "/":
			m.openFilterForm()
			return m, nil
		case "c":
			delete(m.filters, m.kind.Endpoint)
			cmd = m.loadList()
			return m, cmd
		case "n":
			m.openForm(formCreate, nil)
			return m, nil
		case "e":
			if row, ok := m.selectedRow(); ok {
				m.openForm(formEdit, row)
			}
			return m, nil
		case "a":
			if row, ok := m.selectedRow(); ok && m.kind.HasAnalytics {
				cmd = m.openAnalytics(row.ID())
				return m, cmd
			}
			return m, nil
		}
		m.table, cmd = m.table.Update(msg)
		return m, cmd

	case ViewDetail:
		switch msg.String() {
		case "q", "esc":
			m.view = ViewList
			m.detailQ.Reset()
			m.itemsQ.Reset()
			return m, nil
		case "r":
			cmd = m.openDetail(m.detail.ID())
			return m, cmd
		case "e":
			if m.detail != nil {
				m.openForm(formEdit, m.detail)
			}
			return m, nil
		case "a":
			if m.kind.HasAnalytics && m.detail != nil {
				cmd = m.openAnalytics(m.detail.ID())
				return m, cmd
			}
			return m, nil
		}
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case ViewAnalytics:
		switch msg.String() {
		case "q", "esc":
			m.view = m.prevView
			m.analyticsQ.Reset()
			if m.view == ViewDetail {
				m.refreshDetail()
			}
			return m, nil
		}
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) resize() {
	h := m.height - 8
	w := m.width - 4
	if h < 3 {
		h = 3
	}
	if w < 10 {
		w = 10
	}

	m.menu.SetSize(w, h)
	m.table.SetWidth(w)
	m.table.SetHeight(h - 2)
	m.viewport.Width = w
	m.viewport.Height = h

	switch m.view {
	case ViewDetail:
		m.refreshDetail()
	case ViewAnalytics:
		m.refreshAnalytics()
	}
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content string

	switch m.view {
	case ViewMenu:
		content = m.menu.View()
	case ViewList:
		content = m.renderList()
	case ViewDetail:
		content = m.renderDetail()
	case ViewAnalytics:
		content = m.renderAnalytics()
	case ViewForm, ViewFilter:
		content = m.renderForm()
	}

	var b strings.Builder

	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")

	b.WriteString(m.renderBreadcrumbs())
	b.WriteString("\n")

	if m.showNotification {
		if m.notificationType == "success" {
			b.WriteString(notificationSuccess.Render("✓ " + m.notification))
		} else {
			b.WriteString(notificationError.Render("✗ " + m.notification))
		}
		b.WriteString("\n")
	}

	b.WriteString(content)

	if m.message != "" {
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render("Error: " + m.message))
	}

	b.WriteString("\n\n")
	b.WriteString(m.renderHelp())

	return b.String()
}

func (m Model) renderStatusBar() string {
	user := anonymousStyle.Render("● not logged in")
	if m.user != "" {
		user = userStyle.Render("● " + m.user)
	}

	status := fmt.Sprintf(" %s | %s | %s ", m.brand, user, m.client.BaseURL())
	return statusBarStyle.Render(status)
}

func (m Model) breadcrumbs() []string {
	crumbs := []string{"Menu"}
	if m.view == ViewMenu {
		return crumbs
	}
	crumbs = append(crumbs, m.kind.Title)

	switch m.view {
	case ViewFilter:
		crumbs = append(crumbs, "Filter")
	case ViewForm:
		if m.form.mode == formCreate {
			crumbs = append(crumbs, "New "+m.kind.Singular)
		} else {
			crumbs = append(crumbs, "#"+m.form.id, "Edit")
		}
	case ViewDetail:
		crumbs = append(crumbs, "#"+m.detail.ID())
	case ViewAnalytics:
		crumbs = append(crumbs, "#"+m.analyticsID, "Analytics")
	}
	return crumbs
}

func (m Model) renderBreadcrumbs() string {
	return breadcrumbStyle.Render("  " + strings.Join(m.breadcrumbs(), " > "))
}

func (m Model) renderHelp() string {
	var help string
	switch m.view {
	case ViewMenu:
		help = "↑/↓: navigate • enter: select • q: quit"
	case ViewList:
		help = "↑/↓: navigate • enter: detail • f: filter • c: clear filters • n: new • e: edit • r: refresh • esc: back"
		if m.kind.HasAnalytics {
			help = "↑/↓: navigate • enter: detail • a: analytics • f: filter • c: clear filters • n: new • e: edit • r: refresh • esc: back"
		}
	case ViewDetail:
		help = "↑/↓: scroll • e: edit • r: refresh • esc: back"
		if m.kind.HasAnalytics {
			help = "↑/↓: scroll • a: analytics • e: edit • r: refresh • esc: back"
		}
	case ViewAnalytics:
		help = "↑/↓/pgup/pgdn: scroll • esc: back"
	case ViewForm, ViewFilter:
		help = "tab: next field • enter: submit • esc: cancel"
	}
	return helpStyle.Render(help)
}

func (m *Model) notify(text, kind string) tea.Cmd {
	m.notification = text
	m.notificationType = kind
	m.showNotification = true
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return clearNotificationMsg{}
	})
}

// Run starts the dashboard and blocks until the user quits.
func Run(ctx context.Context, client *shop.Client, cfg Config) error {
	p := tea.NewProgram(New(client, cfg).WithContext(ctx), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
