package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yndnr/metacall-deploy-go/internal/core/domain"
)

var (
	menuLabelStyle  = lipgloss.NewStyle().Bold(true)
	menuCursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	menuDoneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

// menuModel is an arrow-key list. Up/down (or k/j) move the cursor,
// Enter picks, a digit picks that option directly, Esc and Ctrl+C abort.
type menuModel struct {
	label   string
	options []string
	cursor  int
	chosen  int
	aborted bool
}

func newMenu(label string, options []string) menuModel {
	return menuModel{label: label, options: options, chosen: -1}
}

func (m menuModel) Init() tea.Cmd {
	return nil
}

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch k.Type {
	case tea.KeyUp, tea.KeyShiftTab:
		m.cursor = max(m.cursor-1, 0)
	case tea.KeyDown, tea.KeyTab:
		m.cursor = min(m.cursor+1, len(m.options)-1)
	case tea.KeyEnter:
		m.chosen = m.cursor
		return m, tea.Quit
	case tea.KeyEsc, tea.KeyCtrlC:
		m.aborted = true
		return m, tea.Quit
	case tea.KeyRunes:
		switch s := string(k.Runes); s {
		case "k":
			m.cursor = max(m.cursor-1, 0)
		case "j":
			m.cursor = min(m.cursor+1, len(m.options)-1)
		default:
			if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= len(m.options) {
				m.cursor, m.chosen = n-1, n-1
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m menuModel) View() string {
	var b strings.Builder
	if m.chosen >= 0 {
		fmt.Fprintf(&b, "%s %s\n", menuLabelStyle.Render(m.label+":"), menuDoneStyle.Render(m.options[m.chosen]))
		return b.String()
	}
	if m.aborted {
		return ""
	}

	b.WriteString(menuLabelStyle.Render(m.label))
	b.WriteString("\n")
	for i, opt := range m.options {
		if i == m.cursor {
			b.WriteString(menuCursorStyle.Render("> " + opt))
		} else {
			b.WriteString("  " + opt)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// runMenu shows the menu on in/out and returns the chosen index.
func runMenu(ctx context.Context, in io.Reader, out io.Writer, label string, options []string) (int, error) {
	p := tea.NewProgram(newMenu(label, options),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)

	final, err := p.Run()
	if ctx.Err() != nil {
		return -1, domain.ErrCancelled.WithCause(ctx.Err())
	}
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			return -1, domain.ErrCancelled.WithCause(err)
		}
		return -1, fmt.Errorf("login method menu: %w", err)
	}

	m, ok := final.(menuModel)
	if !ok || m.aborted || m.chosen < 0 {
		return -1, domain.ErrCancelled.WithDetails("no login method chosen")
	}
	return m.chosen, nil
}
