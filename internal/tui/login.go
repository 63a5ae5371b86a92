package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// LoginStep is the current screen of the login wizard
type LoginStep int

const (
	LoginForm LoginStep = iota
	LoginValidating
	LoginSuccess
	LoginError
)

const (
	inputURL = iota
	inputUsername
	inputPassword
)

var (
	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	loginBoxStyle = boxStyle.Width(60)
)

// LoginFunc exchanges credentials for tokens against baseURL and stores them.
type LoginFunc func(ctx context.Context, baseURL, username, password string) error

// LoginConfig prefills the wizard.
type LoginConfig struct {
	Brand    string
	BaseURL  string
	Username string
	Login    LoginFunc
}

// LoginModel asks for the API URL and credentials before the dashboard opens.
type LoginModel struct {
	ctx     context.Context
	brand   string
	login   LoginFunc
	step    LoginStep
	inputs  []textinput.Model
	focus   int
	width   int
	height  int
	message string
	err     error
	spinner spinner.Model
	user    string
	done    bool
}

type loginResultMsg struct {
	user string
	err  error
}

func NewLogin(cfg LoginConfig) LoginModel {
	inputs := make([]textinput.Model, 3)

	inputs[inputURL] = textinput.New()
	inputs[inputURL].Placeholder = "http://localhost:8000/api/v1"
	inputs[inputURL].CharLimit = 256
	inputs[inputURL].Width = 50
	inputs[inputURL].SetValue(cfg.BaseURL)

	inputs[inputUsername] = textinput.New()
	inputs[inputUsername].Placeholder = "username"
	inputs[inputUsername].CharLimit = 150
	inputs[inputUsername].Width = 50
	inputs[inputUsername].SetValue(cfg.Username)

	inputs[inputPassword] = textinput.New()
	inputs[inputPassword].Placeholder = "password"
	inputs[inputPassword].CharLimit = 128
	inputs[inputPassword].Width = 50
	inputs[inputPassword].EchoMode = textinput.EchoPassword

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))

	brand := cfg.Brand
	if brand == "" {
		brand = "Shop Admin"
	}

	m := LoginModel{
		ctx:     context.Background(),
		brand:   brand,
		login:   cfg.Login,
		step:    LoginForm,
		inputs:  inputs,
		spinner: s,
	}
	// Start on the first empty field.
	for i := range m.inputs {
		if m.inputs[i].Value() == "" {
			m.focus = i
			break
		}
	}
	m.inputs[m.focus].Focus()
	return m
}

// WithContext sets the context the login request runs under.
func (m LoginModel) WithContext(ctx context.Context) LoginModel {
	m.ctx = ctx
	return m
}

// Done reports whether the user logged in and chose to continue.
func (m LoginModel) Done() bool {
	return m.done
}

func (m LoginModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textinput.Blink)
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			if m.step == LoginValidating {
				return m, nil
			}
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "tab", "down":
			if m.step == LoginForm {
				m.focus = (m.focus + 1) % len(m.inputs)
				return m, m.updateInputFocus()
			}

		case "shift+tab", "up":
			if m.step == LoginForm {
				m.focus = (m.focus + len(m.inputs) - 1) % len(m.inputs)
				return m, m.updateInputFocus()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loginResultMsg:
		if msg.err != nil {
			m.step = LoginError
			m.err = msg.err
			return m, nil
		}
		m.step = LoginSuccess
		m.user = msg.user
		return m, nil
	}

	if m.step == LoginForm {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m LoginModel) handleEnter() (tea.Model, tea.Cmd) {
	switch m.step {
	case LoginForm:
		labels := []string{"API URL", "Username", "Password"}
		for i := range m.inputs {
			if strings.TrimSpace(m.inputs[i].Value()) == "" {
				m.focus = i
				m.message = labels[i] + " is required"
				return m, m.updateInputFocus()
			}
		}

		m.message = ""
		m.step = LoginValidating
		return m, tea.Batch(m.spinner.Tick, m.submit())

	case LoginSuccess:
		m.done = true
		return m, tea.Quit

	case LoginError:
		m.step = LoginForm
		m.err = nil
		m.inputs[inputPassword].SetValue("")
		m.focus = inputPassword
		return m, m.updateInputFocus()
	}
	return m, nil
}

func (m *LoginModel) updateInputFocus() tea.Cmd {
	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		if i == m.focus {
			cmds[i] = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return tea.Batch(cmds...)
}

func (m LoginModel) submit() tea.Cmd {
	ctx := m.ctx
	login := m.login
	baseURL := strings.TrimRight(strings.TrimSpace(m.inputs[inputURL].Value()), "/")
	username := strings.TrimSpace(m.inputs[inputUsername].Value())
	password := m.inputs[inputPassword].Value()

	return func() tea.Msg {
		if login == nil {
			return loginResultMsg{err: errors.New("login is not available")}
		}
		if err := login(ctx, baseURL, username, password); err != nil {
			return loginResultMsg{err: err}
		}
		return loginResultMsg{user: username}
	}
}

func (m LoginModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	switch m.step {
	case LoginValidating:
		return m.renderValidating()
	case LoginSuccess:
		return m.renderSuccess()
	case LoginError:
		return m.renderError()
	}
	return m.renderForm()
}

func (m LoginModel) renderForm() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(fmt.Sprintf("  %s: log in  ", m.brand)))
	sb.WriteString("\n\n")

	fields := []struct{ label, hint string }{
		{"API URL", "Root of the admin API, ending in /api/v1"},
		{"Username", ""},
		{"Password", ""},
	}
	for i, f := range fields {
		if i == m.focus {
			sb.WriteString(selectedStyle.Render("> " + f.label))
		} else {
			sb.WriteString("  " + f.label)
		}
		sb.WriteString("\n  ")
		sb.WriteString(m.inputs[i].View())
		sb.WriteString("\n")
		if f.hint != "" {
			sb.WriteString("  " + hintStyle.Render(f.hint) + "\n")
		}
		sb.WriteString("\n")
	}

	if m.message != "" {
		sb.WriteString(errorStyle.Render(m.message))
		sb.WriteString("\n\n")
	}
	sb.WriteString(helpStyle.Render("[Tab] Next field    [Enter] Log in    [Esc] Cancel"))

	return loginBoxStyle.Render(sb.String())
}

func (m LoginModel) renderValidating() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("  Logging in  "))
	sb.WriteString("\n\n")
	sb.WriteString(m.spinner.View())
	sb.WriteString(" Requesting a token...")
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("URL: %s\n", m.inputs[inputURL].Value()))
	sb.WriteString(fmt.Sprintf("User: %s\n", m.inputs[inputUsername].Value()))

	return loginBoxStyle.Render(sb.String())
}

func (m LoginModel) renderSuccess() string {
	var sb strings.Builder

	sb.WriteString(successStyle.Render("  Logged in  "))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Connected as: %s\n", userStyle.Render(m.user)))
	sb.WriteString(fmt.Sprintf("API: %s\n\n", m.inputs[inputURL].Value()))
	sb.WriteString(helpStyle.Render("[Enter] Open dashboard    [Esc] Quit"))

	return loginBoxStyle.Render(sb.String())
}

func (m LoginModel) renderError() string {
	var sb strings.Builder

	sb.WriteString(errorStyle.Render("  Login failed  "))
	sb.WriteString("\n\n")
	if m.err != nil {
		sb.WriteString(fmt.Sprintf("Error: %s\n\n", m.err.Error()))
	}
	sb.WriteString("Please check:\n")
	sb.WriteString("  * URL is correct and reachable\n")
	sb.WriteString("  * Username and password are valid\n\n")
	sb.WriteString(helpStyle.Render("[Enter] Try again    [Esc] Cancel"))

	return loginBoxStyle.Render(sb.String())
}

// RunLogin runs the login wizard and reports whether the user logged in.
func RunLogin(ctx context.Context, cfg LoginConfig) (bool, error) {
	p := tea.NewProgram(NewLogin(cfg).WithContext(ctx), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(LoginModel)
	return ok && m.Done(), nil
}
