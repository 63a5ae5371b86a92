package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"

	"github.com/mikelcalvo/admin-cli/internal/requester"
	"github.com/mikelcalvo/admin-cli/internal/shop"
)

func newTable() table.Model {
	t := table.New(table.WithFocused(true))
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#7D56F4")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color("#7D56F4"))
	t.SetStyles(s)
	return t
}

func (m *Model) resource() *requester.Resource {
	r, _ := m.client.Resource(m.kind.Endpoint)
	return r
}

// openList switches to the list of kind and loads it with the filters last used
// for it.
func (m *Model) openList(kind shop.Kind) tea.Cmd {
	m.kind = kind
	m.view = ViewList
	m.rows = nil
	m.detail = nil

	m.setColumns()
	return m.loadList()
}

// setColumns gives the table the columns of the current kind. Rows are cleared
// first so no row is ever rendered against a narrower set of columns.
func (m *Model) setColumns() {
	cols := make([]table.Column, len(m.kind.Columns))
	for i, c := range m.kind.Columns {
		cols[i] = table.Column{Title: c.Title, Width: c.Width}
	}
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
}

func (m *Model) loadList() tea.Cmd {
	seq := m.listQ.Start()
	res := m.resource()
	filters := m.filters[m.kind.Endpoint]
	ctx := m.ctx

	return func() tea.Msg {
		resp, err := res.List(ctx, filters)
		if err != nil {
			return listLoadedMsg{seq: seq, err: err}
		}
		var rows []shop.Row
		err = shop.Decode(resp, &rows)
		return listLoadedMsg{seq: seq, rows: rows, err: err}
	}
}

func (m *Model) setRows(rows []shop.Row) {
	if len(m.table.Columns()) != len(m.kind.Columns) {
		m.setColumns()
	}
	m.rows = rows
	trows := make([]table.Row, len(rows))
	for i, r := range rows {
		cells := make(table.Row, len(m.kind.Columns))
		for j, c := range m.kind.Columns {
			cells[j] = shop.FormatCell(c.Key, r[c.Key])
		}
		trows[i] = cells
	}
	m.table.SetRows(trows)
	if c := m.table.Cursor(); c < 0 || c >= len(rows) {
		m.table.SetCursor(0)
	}
}

func (m Model) selectedRow() (shop.Row, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.rows) {
		return nil, false
	}
	return m.rows[i], true
}

func (m Model) renderList() string {
	var b strings.Builder

	title := " " + m.kind.Title + " "
	if q := requester.EncodeFilters(m.filters[m.kind.Endpoint]); q != "" {
		title += "(" + q + ") "
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	switch m.listQ.Status {
	case QueryLoading:
		b.WriteString(fmt.Sprintf("  %s Loading...", m.spinner.View()))
		return b.String()
	case QueryError:
		b.WriteString(errorStyle.Render("  " + m.listQ.Err.Error()))
		return b.String()
	}

	if len(m.rows) == 0 {
		b.WriteString(helpStyle.Render("  No records"))
		return b.String()
	}

	b.WriteString(m.table.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(fmt.Sprintf("  %d records", len(m.rows))))
	return b.String()
}

// openDetail loads one record; orders also load their line items.
func (m *Model) openDetail(id string) tea.Cmd {
	m.view = ViewDetail
	m.detail = shop.Row{"id": id}
	m.items = nil

	seq := m.detailQ.Start()
	res := m.resource()
	ctx := m.ctx
	cmds := []tea.Cmd{func() tea.Msg {
		resp, err := res.Get(ctx, id)
		if err != nil {
			return detailLoadedMsg{seq: seq, err: err}
		}
		var row shop.Row
		err = shop.Decode(resp, &row)
		return detailLoadedMsg{seq: seq, row: row, err: err}
	}}

	if m.kind.Endpoint == shop.Orders {
		itemsSeq := m.itemsQ.Start()
		items := m.client.OrderItems
		cmds = append(cmds, func() tea.Msg {
			resp, err := items.List(ctx, requester.Filters{"order": id})
			if err != nil {
				return itemsLoadedMsg{seq: itemsSeq, err: err}
			}
			var rows []shop.Row
			err = shop.Decode(resp, &rows)
			return itemsLoadedMsg{seq: itemsSeq, rows: rows, err: err}
		})
	} else {
		m.itemsQ.Reset()
	}

	m.refreshDetail()
	return tea.Batch(cmds...)
}

func (m *Model) refreshDetail() {
	m.viewport.SetContent(m.detailContent())
}

func (m Model) detailContent() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf(" %s #%s ", m.kind.Singular, m.detail.ID())))
	b.WriteString("\n\n")

	switch m.detailQ.Status {
	case QueryLoading:
		b.WriteString(fmt.Sprintf("  %s Loading...", m.spinner.View()))
		return b.String()
	case QueryError:
		b.WriteString(errorStyle.Render("  " + m.detailQ.Err.Error()))
		return b.String()
	}

	for _, key := range m.kind.DetailKeys(m.detail) {
		b.WriteString("  ")
		b.WriteString(labelStyle.Render(shop.KeyLabel(key)))
		b.WriteString(shop.FormatCell(key, m.detail[key]))
		b.WriteString("\n")
	}

	if m.kind.Endpoint == shop.Orders {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render(" Items "))
		b.WriteString("\n\n")
		switch m.itemsQ.Status {
		case QueryLoading:
			b.WriteString(fmt.Sprintf("  %s Loading items...", m.spinner.View()))
		case QueryError:
			b.WriteString(errorStyle.Render("  " + m.itemsQ.Err.Error()))
		default:
			b.WriteString(renderItems(m.items))
		}
	}

	return b.String()
}

func renderItems(items []shop.Row) string {
	if len(items) == 0 {
		return helpStyle.Render("  No items")
	}

	kind, _ := shop.KindFor(shop.OrderItems)
	t := ltable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")))

	var headers []string
	for _, c := range kind.Columns {
		if c.Key == "order" {
			continue
		}
		headers = append(headers, c.Title)
	}
	t.Headers(headers...)

	for _, item := range items {
		var cells []string
		for _, c := range kind.Columns {
			if c.Key == "order" {
				continue
			}
			cells = append(cells, shop.FormatCell(c.Key, item[c.Key]))
		}
		t.Row(cells...)
	}
	return t.String()
}

func (m Model) renderDetail() string {
	return m.viewport.View()
}

// openAnalytics loads the analytics of record id, for products and categories.
func (m *Model) openAnalytics(id string) tea.Cmd {
	m.prevView = m.view
	m.view = ViewAnalytics
	m.analyticsID = id
	m.analytics = nil

	seq := m.analyticsQ.Start()
	res := m.resource()
	ctx := m.ctx
	endpoint := m.kind.Endpoint

	m.refreshAnalytics()
	return func() tea.Msg {
		resp, err := res.Analytics(ctx, id)
		if err != nil {
			return analyticsLoadedMsg{seq: seq, err: err}
		}
		switch endpoint {
		case shop.Categories:
			var a shop.CategoryAnalytics
			err = shop.Decode(resp, &a)
			return analyticsLoadedMsg{seq: seq, data: a, err: err}
		default:
			var a shop.ProductAnalytics
			err = shop.Decode(resp, &a)
			return analyticsLoadedMsg{seq: seq, data: a, err: err}
		}
	}
}

func (m *Model) refreshAnalytics() {
	m.viewport.SetContent(m.analyticsContent())
	m.viewport.GotoTop()
}

func (m Model) analyticsContent() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf(" %s #%s analytics ", m.kind.Singular, m.analyticsID)))
	b.WriteString("\n\n")

	switch m.analyticsQ.Status {
	case QueryLoading:
		b.WriteString(fmt.Sprintf("  %s Loading analytics...", m.spinner.View()))
		return b.String()
	case QueryError:
		b.WriteString(errorStyle.Render("  " + m.analyticsQ.Err.Error()))
		return b.String()
	}

	switch a := m.analytics.(type) {
	case shop.ProductAnalytics:
		b.WriteString(renderProductAnalytics(a))
	case shop.CategoryAnalytics:
		b.WriteString(renderCategoryAnalytics(a))
	default:
		b.WriteString(helpStyle.Render("  No data available"))
	}
	return b.String()
}

func metric(label, value string) string {
	return "  " + labelStyle.Render(label) + successStyle.Render(value) + "\n"
}

func renderProductAnalytics(a shop.ProductAnalytics) string {
	var b strings.Builder

	unit := ""
	if a.UnitSymbol != "" {
		unit = " " + a.UnitSymbol
	}
	b.WriteString(metric("Total sold", shop.Number(a.TotalSold)+unit))
	b.WriteString(metric("Total revenue", "$"+shop.Number(a.TotalRevenue)))
	b.WriteString(metric("Customers", shop.Number(a.TotalCustomers)))
	b.WriteString(metric("Avg order qty", shop.Number(a.AvgOrderQuantity)))
	b.WriteString(metric("Min order qty", shop.Number(a.MinOrderQuantity)))
	b.WriteString(metric("Max order qty", shop.Number(a.MaxOrderQuantity)))

	b.WriteString("\n")
	b.WriteString(titleStyle.Render(" Top customers "))
	b.WriteString("\n")
	if len(a.TopCustomers) == 0 {
		b.WriteString(helpStyle.Render("  No purchases yet") + "\n")
	} else {
		t := newTextTable("Customer", "Quantity", "Spent (USD)", "Last purchase")
		for _, c := range a.TopCustomers {
			t.Row(c.FullName(), shop.Number(c.TotalQuantity), shop.Number(c.TotalSpent), shop.FormatDateTime(c.LastPurchaseTime()))
		}
		b.WriteString(t.String() + "\n")
	}

	b.WriteString("\n")
	b.WriteString(titleStyle.Render(" Latest purchases "))
	b.WriteString("\n")
	if len(a.LatestPurchases) == 0 {
		b.WriteString(helpStyle.Render("  No purchases yet") + "\n")
	} else {
		t := newTextTable("Customer", "Quantity", "Date")
		for _, p := range a.LatestPurchases {
			t.Row(p.FullName(), shop.Number(p.Quantity), shop.FormatDateTime(p.Datetime))
		}
		b.WriteString(t.String() + "\n")
	}

	return b.String()
}

func renderCategoryAnalytics(a shop.CategoryAnalytics) string {
	var b strings.Builder

	b.WriteString(metric("Products", shop.Number(a.TotalProducts)))
	b.WriteString(metric("Total sold", shop.Number(a.TotalSold)))
	b.WriteString(metric("Total revenue", "$"+shop.Number(a.TotalRevenue)))
	b.WriteString(metric("Customers", shop.Number(a.TotalCustomers)))

	b.WriteString("\n")
	b.WriteString(titleStyle.Render(" Top customers "))
	b.WriteString("\n")
	if len(a.TopCustomers) == 0 {
		b.WriteString(helpStyle.Render("  No purchases yet") + "\n")
	} else {
		t := newTextTable("Customer", "Quantity", "Revenue (USD)", "Last purchase")
		for _, c := range a.TopCustomers {
			t.Row(c.FullName(), shop.Number(c.TotalQuantity), shop.Number(c.TotalRevenue), shop.FormatDateTime(c.LastPurchaseTime()))
		}
		b.WriteString(t.String() + "\n")
	}

	b.WriteString("\n")
	b.WriteString(titleStyle.Render(" Top products "))
	b.WriteString("\n")
	if len(a.TopProducts) == 0 {
		b.WriteString(helpStyle.Render("  No sales yet") + "\n")
	} else {
		t := newTextTable("Product", "Units sold", "Revenue (USD)", "Last purchase")
		for _, p := range a.TopProducts {
			t.Row(p.Name, shop.Number(p.TotalUnitsSold), shop.Number(p.TotalRevenue), shop.FormatDateTime(p.LastPurchased))
		}
		b.WriteString(t.String() + "\n")
	}

	return b.String()
}

func newTextTable(headers ...string) *ltable.Table {
	return ltable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))).
		Headers(headers...)
}

func (m Model) renderAnalytics() string {
	var b strings.Builder
	b.WriteString(m.viewport.View())
	if m.viewport.TotalLineCount() > m.viewport.VisibleLineCount() {
		b.WriteString("\n")
		b.WriteString(helpStyle.Render(fmt.Sprintf("  ↑↓ scroll • %.0f%% ", m.viewport.ScrollPercent()*100)))
	}
	return b.String()
}
