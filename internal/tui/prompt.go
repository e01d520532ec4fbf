package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gosuda/taskflow/internal/view"
)

// ErrPromptCancelled is returned by Prompt when the user presses esc or ctrl+c.
var ErrPromptCancelled = errors.New("tui: prompt cancelled")

// Field is one line of a Prompt.
type Field struct {
	Label    string
	Value    string // initial value
	Secret   bool
	Optional bool
}

// Prompt asks for the given fields inline (no alt screen) and returns their
// trimmed values in order. Secret fields are not echoed.
func Prompt(ctx context.Context, title string, fields []Field) ([]string, error) {
	m := newPromptModel(title, fields)
	p := tea.NewProgram(m, tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return nil, fmt.Errorf("tui.Prompt: %w", err)
	}
	if m.cancelled {
		return nil, ErrPromptCancelled
	}
	return m.values(), nil
}

type promptModel struct {
	title     string
	fields    []Field
	inputs    []textinput.Model
	focus     int
	missing   string
	theme     view.Theme
	cancelled bool
	done      bool
}

func newPromptModel(title string, fields []Field) *promptModel {
	m := &promptModel{title: title, fields: fields, theme: view.DefaultTheme()}
	for _, f := range fields {
		in := view.NewInput(f.Label, 255)
		in.Prompt = f.Label + ": "
		in.Placeholder = ""
		in.SetValue(f.Value)
		if f.Secret {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		m.inputs = append(m.inputs, in)
	}
	m.setFocus(m.firstEmpty())
	return m
}

func (m *promptModel) firstEmpty() int {
	for i, in := range m.inputs {
		if strings.TrimSpace(in.Value()) == "" {
			return i
		}
	}
	return 0
}

func (m *promptModel) setFocus(i int) {
	m.focus = i
	for j := range m.inputs {
		if j == i {
			m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
}

func (m *promptModel) values() []string {
	out := make([]string, len(m.inputs))
	for i, in := range m.inputs {
		v := in.Value()
		if !m.fields[i].Secret {
			v = strings.TrimSpace(v)
		}
		out[i] = v
	}
	return out
}

func (m *promptModel) Init() tea.Cmd { return nil }

func (m *promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch k.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.cancelled = true
		return m, tea.Quit
	case tea.KeyShiftTab, tea.KeyUp:
		m.setFocus((m.focus + len(m.inputs) - 1) % len(m.inputs))
		return m, nil
	case tea.KeyTab, tea.KeyDown:
		m.setFocus((m.focus + 1) % len(m.inputs))
		return m, nil
	case tea.KeyEnter:
		if m.focus < len(m.inputs)-1 {
			m.setFocus(m.focus + 1)
			return m, nil
		}
		for i, f := range m.fields {
			if !f.Optional && strings.TrimSpace(m.inputs[i].Value()) == "" {
				m.missing = f.Label + " is required"
				m.setFocus(i)
				return m, nil
			}
		}
		m.done = true
		return m, tea.Quit
	}

	m.missing = ""
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(k)
	return m, cmd
}

func (m *promptModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(m.theme.Title.Render(m.title) + "\n")
	for _, in := range m.inputs {
		sb.WriteString(in.View() + "\n")
	}
	if m.missing != "" {
		sb.WriteString(m.theme.Error.Render(m.missing) + "\n")
	}
	sb.WriteString(m.theme.Help.Render("enter next/submit · tab switch · esc cancel") + "\n")
	return sb.String()
}
