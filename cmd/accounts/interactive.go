package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/accounts-coder/accounts"
	"github.com/wippyai/accounts-coder/layout"
	"github.com/wippyai/accounts-coder/value"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	fieldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateSelectAccount modelState = iota
	stateShowLayout
	stateInputHex
	stateShowResult
)

type interactiveModel struct {
	err      error
	coder    *accounts.Coder
	filename string
	result   string
	names    []string
	input    textinput.Model
	selected int
	state    modelState
}

type decodedMsg struct {
	err    error
	result string
}

func newInteractiveModel(filename string, coder *accounts.Coder) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "hex bytes, discriminator included"
	ti.Prompt = "data: "
	ti.Width = 64
	ti.CharLimit = 0

	return &interactiveModel{
		coder:    coder,
		filename: filename,
		names:    coder.Names(),
		input:    ti,
		state:    stateSelectAccount,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateInputHex {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectAccount && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectAccount && m.selected < len(m.names)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectAccount:
				if len(m.names) > 0 {
					m.state = stateShowLayout
				}
				return m, nil

			case stateShowLayout:
				m.input.SetValue("")
				m.state = stateInputHex
				return m, m.input.Focus()

			case stateInputHex:
				m.input.Blur()
				return m, m.decode(m.input.Value())

			case stateShowResult:
				m.state = stateShowLayout
				m.result = ""
				m.err = nil
				return m, nil
			}

		case "esc":
			switch m.state {
			case stateShowLayout:
				m.state = stateSelectAccount
			case stateInputHex:
				m.input.Blur()
				m.state = stateShowLayout
			case stateShowResult:
				m.state = stateShowLayout
				m.result = ""
				m.err = nil
			}
			return m, nil
		}

	case decodedMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
		return m, nil
	}

	if m.state == stateInputHex {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *interactiveModel) decode(text string) tea.Cmd {
	name := m.names[m.selected]
	coder := m.coder
	return func() tea.Msg {
		data, err := parseHex(text)
		if err != nil {
			return decodedMsg{err: err}
		}
		v, err := coder.Decode(name, data)
		if err != nil {
			return decodedMsg{err: err}
		}
		out, err := json.MarshalIndent(value.ToNative(v), "", "  ")
		if err != nil {
			return decodedMsg{err: err}
		}
		return decodedMsg{result: string(out)}
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Account Coder"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	if len(m.names) == 0 {
		b.WriteString("Schema declares no accounts.\n\n")
		b.WriteString(helpStyle.Render("q quit"))
		return b.String()
	}

	name := m.names[m.selected]
	switch m.state {
	case stateSelectAccount:
		b.WriteString("Select an account:\n\n")
		for i, n := range m.names {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + n))
			} else {
				b.WriteString("  " + n)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter layout • q quit"))

	case stateShowLayout:
		b.WriteString(m.layoutView(name))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter decode • esc back • q quit"))

	case stateInputHex:
		fmt.Fprintf(&b, "Decode %s\n\n", fieldStyle.Render(name))
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter decode • esc back"))

	case stateShowResult:
		fmt.Fprintf(&b, "Decoded %s:\n\n", fieldStyle.Render(name))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func (m *interactiveModel) layoutView(name string) string {
	l, err := m.coder.Layout(name)
	if err != nil {
		return errorStyle.Render(err.Error()) + "\n"
	}
	d, _ := m.coder.Discriminator(name)
	size, _ := m.coder.Size(name)

	var b strings.Builder
	fmt.Fprintf(&b, "%s  discriminator %s (%s)\n", fieldStyle.Render(name), typeStyle.Render(d.String()), d.Base58())
	if l.Fixed {
		fmt.Fprintf(&b, "size %d bytes\n\n", size)
	} else {
		fmt.Fprintf(&b, "size >= %d bytes\n\n", size)
	}
	for _, f := range l.Fields() {
		b.WriteString("  ")
		b.WriteString(formatOffset(f))
		b.WriteString(fieldStyle.Render(f.Name))
		b.WriteString(": ")
		b.WriteString(typeStyle.Render(f.Rule.String()))
		b.WriteString("\n")
	}
	return b.String()
}

// formatOffset shows the field's offset in the full buffer.
func formatOffset(f layout.Field) string {
	if f.Offset < 0 {
		return "    ?  "
	}
	return fmt.Sprintf("%5d  ", accounts.DiscriminatorSize+f.Offset)
}

func runInteractive(filename string, coder *accounts.Coder) error {
	p := tea.NewProgram(newInteractiveModel(filename, coder), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
