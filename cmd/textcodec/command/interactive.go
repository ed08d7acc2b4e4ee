package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/textcodec"
	"github.com/wippyai/textcodec/codec"
	"github.com/wippyai/textcodec/script"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	modeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

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

type convertMode int

const (
	modeEncode convertMode = iota
	modeDecode
)

func (m convertMode) String() string {
	if m == modeDecode {
		return "hex → text"
	}
	return "text → UTF-8"
}

type interactiveModel struct {
	ctx    context.Context
	bridge textcodec.Bridge
	name   string
	input  textinput.Model
	mode   convertMode
	result string
	err    error
	// seq orders conversions so a slow reply never overwrites a newer one.
	seq int
}

type convertedMsg struct {
	err    error
	result string
	seq    int
}

func newInteractiveModel(ctx context.Context, b textcodec.Bridge, name string) *interactiveModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Width = 60
	ti.Focus()

	m := &interactiveModel{ctx: ctx, bridge: b, name: name, input: ti}
	m.setMode(modeEncode)
	return m
}

func (m *interactiveModel) setMode(mode convertMode) {
	m.mode = mode
	m.result, m.err = "", nil
	m.input.SetValue("")
	if mode == modeDecode {
		m.input.Placeholder = "E2 82 AC"
	} else {
		m.input.Placeholder = "type some text"
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			m.setMode(1 - m.mode)
			return m, nil
		}

	case convertedMsg:
		if msg.seq == m.seq {
			m.result, m.err = msg.result, msg.err
		}
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		return m, tea.Batch(cmd, m.convert())
	}
	return m, cmd
}

// convert returns a command that runs the current input through the bridge.
func (m *interactiveModel) convert() tea.Cmd {
	m.seq++
	seq, mode, value := m.seq, m.mode, m.input.Value()
	ctx, b := m.ctx, m.bridge

	return func() tea.Msg {
		if value == "" {
			return convertedMsg{seq: seq}
		}
		if mode == modeEncode {
			out, err := script.NewTextEncoder(b).Encode(ctx, codec.FromString(value))
			if err != nil {
				return convertedMsg{seq: seq, err: err}
			}
			return convertedMsg{seq: seq, result: fmt.Sprintf("% X  (%d bytes)", out, len(out))}
		}

		raw, err := parseHex(value)
		if err != nil {
			return convertedMsg{seq: seq, err: err}
		}
		units, err := script.NewTextDecoder(b).Decode(ctx, raw, script.DecodeOptions{})
		if err != nil {
			return convertedMsg{seq: seq, err: err}
		}
		return convertedMsg{seq: seq, result: fmt.Sprintf("%q  (%d code units)", codec.ToString(units), len(units))}
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("textcodec"))
	b.WriteString(" ")
	b.WriteString(m.name)
	b.WriteString("\n\n")

	for _, mode := range []convertMode{modeEncode, modeDecode} {
		if mode == m.mode {
			b.WriteString(selectedStyle.Render(" " + mode.String() + " "))
		} else {
			b.WriteString(modeStyle.Render(" " + mode.String() + " "))
		}
		b.WriteString(" ")
	}
	b.WriteString("\n\n")

	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	} else {
		b.WriteString(resultStyle.Render(m.result))
	}
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("tab switch mode • esc quit"))

	return b.String()
}

func runInteractive(ctx context.Context, b textcodec.Bridge, name string) error {
	p := tea.NewProgram(newInteractiveModel(ctx, b, name), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
