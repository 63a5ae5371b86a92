package tui

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mikelcalvo/admin-cli/internal/shop"
)

type formMode int

const (
	formFilter formMode = iota
	formCreate
	formEdit
)

type form struct {
	mode     formMode
	fields   []shop.Field
	inputs   []textinput.Model
	initial  []string
	focus    int
	id       string
	returnTo View
}

func newForm(mode formMode, fields []shop.Field, values map[string]string) form {
	f := form{
		mode:    mode,
		fields:  fields,
		inputs:  make([]textinput.Model, len(fields)),
		initial: make([]string, len(fields)),
	}
	for i, field := range fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 200
		ti.Width = 40
		if len(field.Choices) > 0 {
			ti.Placeholder = choiceHint(field.Choices)
		}
		ti.SetValue(values[field.Key])
		f.initial[i] = ti.Value()
		f.inputs[i] = ti
	}
	if len(f.inputs) > 0 {
		f.inputs[0].Focus()
	}
	return f
}

func choiceHint(choices []shop.Choice) string {
	parts := make([]string, len(choices))
	for i, c := range choices {
		parts[i] = c.Value + " " + c.Label
	}
	return strings.Join(parts, ", ")
}

// values returns every field keyed by name.
func (f form) values() map[string]string {
	out := make(map[string]string, len(f.fields))
	for i, field := range f.fields {
		out[field.Key] = f.inputs[i].Value()
	}
	return out
}

// changed returns only the fields edited since the form opened.
func (f form) changed() map[string]string {
	out := make(map[string]string)
	for i, field := range f.fields {
		if v := f.inputs[i].Value(); v != f.initial[i] {
			out[field.Key] = v
		}
	}
	return out
}

func (m *Model) openFilterForm() {
	values := make(map[string]string)
	for k, v := range m.filters[m.kind.Endpoint] {
		values[k] = fmt.Sprint(v)
	}
	m.form = newForm(formFilter, m.kind.Filters, values)
	m.form.returnTo = m.view
	m.view = ViewFilter
}

// openForm opens the create form, or the edit form prefilled from row.
func (m *Model) openForm(mode formMode, row shop.Row) {
	values := make(map[string]string)
	for _, field := range m.kind.Fields {
		if v, ok := row[field.Key]; ok {
			values[field.Key] = rawValue(v)
		}
	}
	m.form = newForm(mode, m.kind.Fields, values)
	m.form.returnTo = m.view
	if mode == formEdit {
		m.form.id = row.ID()
	}
	m.saveQ.Reset()
	m.view = ViewForm
}

// rawValue renders a JSON value the way the user would type it back.
func rawValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	}
	return fmt.Sprint(v)
}

// updateForm handles form input updates
func (m *Model) updateForm(msg tea.KeyMsg) tea.Cmd {
	if m.saveQ.Loading() {
		return nil
	}

	switch msg.String() {
	case "tab", "down":
		m.form.focus++
		if m.form.focus >= len(m.form.inputs) {
			m.form.focus = 0
		}
		return m.updateFocus()

	case "shift+tab", "up":
		m.form.focus--
		if m.form.focus < 0 {
			m.form.focus = len(m.form.inputs) - 1
		}
		return m.updateFocus()

	case "enter":
		m.message = ""
		return m.submitForm()

	case "esc":
		m.message = ""
		m.view = m.form.returnTo
		if m.view == ViewDetail {
			m.refreshDetail()
		}
		return nil
	}

	if m.form.focus < len(m.form.inputs) {
		var cmd tea.Cmd
		m.form.inputs[m.form.focus], cmd = m.form.inputs[m.form.focus].Update(msg)
		return cmd
	}
	return nil
}

// updateFocus updates which input has focus
func (m *Model) updateFocus() tea.Cmd {
	var cmd tea.Cmd
	for i := range m.form.inputs {
		if i == m.form.focus {
			cmd = m.form.inputs[i].Focus()
		} else {
			m.form.inputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) submitForm() tea.Cmd {
	res := m.resource()
	ctx := m.ctx

	switch m.form.mode {
	case formFilter:
		filters, err := m.kind.FilterSet(m.form.values())
		if err != nil {
			m.message = err.Error()
			return nil
		}
		m.filters[m.kind.Endpoint] = filters
		m.view = ViewList
		m.table.SetCursor(0)
		return m.loadList()

	case formCreate:
		body, err := m.kind.Payload(m.form.values(), false)
		if err != nil {
			m.message = err.Error()
			return nil
		}
		seq := m.saveQ.Start()
		return func() tea.Msg {
			resp, err := res.Create(ctx, body)
			if err != nil {
				return savedMsg{seq: seq, created: true, err: err}
			}
			var row shop.Row
			err = shop.Decode(resp, &row)
			return savedMsg{seq: seq, row: row, created: true, err: err}
		}

	case formEdit:
		changed := m.form.changed()
		if len(changed) == 0 {
			m.message = "Nothing to update"
			return nil
		}
		body, err := m.kind.Payload(changed, true)
		if err != nil {
			m.message = err.Error()
			return nil
		}
		if len(body) == 0 {
			m.message = "Nothing to update"
			return nil
		}
		seq := m.saveQ.Start()
		id := m.form.id
		return func() tea.Msg {
			resp, err := res.Update(ctx, id, body)
			if err != nil {
				return savedMsg{seq: seq, err: err}
			}
			var row shop.Row
			err = shop.Decode(resp, &row)
			return savedMsg{seq: seq, row: row, err: err}
		}
	}
	return nil
}

func (m Model) handleSaved(msg savedMsg) (tea.Model, tea.Cmd) {
	if !m.saveQ.Finish(msg.seq, msg.err) {
		return m, nil
	}
	if msg.err != nil {
		m.message = msg.err.Error()
		return m, nil
	}

	id := msg.row.ID()
	if id == "" {
		id = m.form.id
	}
	verb := "Updated"
	if msg.created {
		verb = "Created"
	}
	notify := m.notify(fmt.Sprintf("%s %s #%s", verb, m.kind.Singular, id), "success")

	var cmd tea.Cmd
	if m.form.returnTo == ViewDetail && id != "" {
		cmd = m.openDetail(id)
	} else {
		m.view = ViewList
		cmd = m.loadList()
	}
	return m, tea.Batch(cmd, notify)
}

func (m Model) renderForm() string {
	var title string
	switch m.form.mode {
	case formFilter:
		title = fmt.Sprintf(" Filter %s ", m.kind.Title)
	case formCreate:
		title = fmt.Sprintf(" New %s ", m.kind.Singular)
	case formEdit:
		title = fmt.Sprintf(" Edit %s #%s ", m.kind.Singular, m.form.id)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	for i, field := range m.form.fields {
		label := field.Label
		if i == m.form.focus {
			b.WriteString(selectedStyle.Render("> " + label))
		} else {
			b.WriteString("  " + label)
		}
		b.WriteString("\n  ")
		b.WriteString(m.form.inputs[i].View())
		b.WriteString("\n\n")
	}

	if m.saveQ.Loading() {
		b.WriteString(fmt.Sprintf("%s Saving...", m.spinner.View()))
	} else if m.form.mode == formFilter {
		b.WriteString(helpStyle.Render("Empty fields are not applied."))
	}

	return boxStyle.Render(b.String())
}
