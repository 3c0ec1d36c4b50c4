// Package tui is the interactive terminal front end: a URL field, a verdict
// pane and an "add to personal list" action.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/maltedev/boycott-detector/internal/detector"
	"github.com/maltedev/boycott-detector/internal/models"
)

// Checker is the part of detector.Session the shell drives.
type Checker interface {
	Check(ctx context.Context, url string) (*detector.Result, error)
	AddToPersonal(record *models.ProductRecord) (bool, error)
}

type checkDoneMsg struct {
	result *detector.Result
	err    error
}

type addDoneMsg struct {
	name  string
	added bool
	err   error
}

type Model struct {
	checker Checker
	timeout time.Duration
	styles  Styles

	input   textinput.Model
	spinner spinner.Model

	checking bool
	last     *detector.Result
	output   string
	failed   bool
	notice   string
	width    int
}

// New builds the shell model. timeout bounds a single check; zero means no bound.
func New(checker Checker, timeout time.Duration) Model {
	ti := textinput.New()
	ti.Placeholder = "https://www.amazon.com/dp/..."
	ti.Prompt = "URL: "
	ti.CharLimit = 2048
	ti.Width = 72
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		checker: checker,
		timeout: timeout,
		styles:  DefaultStyles(),
		input:   ti,
		spinner: sp,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > 10 {
			m.input.Width = msg.Width - 10
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.startCheck()
		case tea.KeyCtrlA:
			return m.startAdd()
		}

	case checkDoneMsg:
		m.checking = false
		if msg.err != nil {
			m.last = nil
			m.failed = true
			m.output = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.last = msg.result
		m.failed = false
		m.output = msg.result.Text()
		return m, nil

	case addDoneMsg:
		switch {
		case msg.err != nil:
			m.notice = fmt.Sprintf("Could not save the personal boycott list: %v", msg.err)
		case msg.added:
			m.notice = fmt.Sprintf("%s was added to your personal boycott list.", msg.name)
		default:
			m.notice = fmt.Sprintf("%s is already in your personal boycott list.", msg.name)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.checking {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// startCheck is a no-op while a check is running.
func (m Model) startCheck() (tea.Model, tea.Cmd) {
	if m.checking {
		return m, nil
	}

	url := strings.TrimSpace(m.input.Value())
	if url == "" {
		m.notice = "Enter an Amazon product URL first."
		return m, nil
	}

	m.checking = true
	m.last = nil
	m.output = ""
	m.failed = false
	m.notice = ""

	return m, tea.Batch(m.spinner.Tick, m.runCheck(url))
}

func (m Model) startAdd() (tea.Model, tea.Cmd) {
	if !m.canAdd() {
		return m, nil
	}
	return m, m.runAdd(m.last.Record)
}

// canAdd is true only when the last check produced a boycotted verdict.
func (m Model) canAdd() bool {
	return !m.checking && m.last != nil && m.last.Verdict.IsBoycotted
}

func (m Model) runCheck(url string) tea.Cmd {
	checker, timeout := m.checker, m.timeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		res, err := checker.Check(ctx, url)
		return checkDoneMsg{result: res, err: err}
	}
}

func (m Model) runAdd(record *models.ProductRecord) tea.Cmd {
	checker := m.checker
	return func() tea.Msg {
		added, err := checker.AddToPersonal(record)
		return addDoneMsg{name: record.Manufacturer, added: added, err: err}
	}
}

func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Header.Render("Amazon Boycott Detector"))
	sb.WriteString("\n\n")
	sb.WriteString(m.input.View())
	sb.WriteString("\n\n")

	switch {
	case m.checking:
		sb.WriteString(m.spinner.View())
		sb.WriteString(" Checking product, this can take a while...")
		sb.WriteString("\n")
	case m.failed:
		sb.WriteString(m.styles.Error.Render(m.output))
		sb.WriteString("\n")
	case m.last != nil:
		box := m.styles.Clear
		if m.last.Verdict.IsBoycotted {
			box = m.styles.Boycotted
		}
		if m.width > 4 {
			box = box.Width(m.width - 4)
		}
		sb.WriteString(box.Render(m.output))
		sb.WriteString("\n")
	}

	if m.notice != "" {
		sb.WriteString("\n")
		sb.WriteString(m.styles.Notice.Render(m.notice))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(m.styles.Help.Render(m.helpLine()))

	return lipgloss.NewStyle().Padding(1, 2).Render(sb.String())
}

func (m Model) helpLine() string {
	parts := []string{"enter: check"}
	if m.canAdd() {
		parts = append(parts, "ctrl+a: add to personal boycott list")
	}
	parts = append(parts, "esc: quit")
	return strings.Join(parts, " • ")
}
