package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/contract-repl/abi"
	"github.com/wippyai/contract-repl/engine"
	"github.com/wippyai/contract-repl/errors"
	"github.com/wippyai/contract-repl/repl"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
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

type interactiveModel struct {
	ctx      context.Context
	err      error
	loop     *repl.Loop
	contract string
	source   string
	result   string
	funcs    []*abi.Function
	inputs   []textinput.Model
	selected int
	focusIdx int
	state    modelState
	fatal    bool
}

type modelState int

const (
	stateSelectFunc modelState = iota
	stateInputArgs
	stateCalling
	stateShowResult
)

type callResultMsg struct {
	err    error
	result string
}

func newInteractiveModel(ctx context.Context, s *session, loop *repl.Loop) *interactiveModel {
	return &interactiveModel{
		ctx:      ctx,
		loop:     loop,
		contract: s.artifact.Name,
		source:   s.source,
		funcs:    s.registry.Functions(),
		state:    stateSelectFunc,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.fatal {
			return m, tea.Quit
		}

		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateInputArgs {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectFunc && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectFunc && m.selected < len(m.funcs)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectFunc:
				if len(m.funcs) == 0 {
					return m, nil
				}
				m.prepareInputs()
				if len(m.inputs) == 0 {
					m.state = stateCalling
					return m, m.callFunction
				}
				m.state = stateInputArgs

			case stateInputArgs:
				m.state = stateCalling
				return m, m.callFunction

			case stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.err = nil
			}

		case "tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectFunc
				m.inputs = nil
			case stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.err = nil
			}
		}

	case callResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.fatal = msg.err != nil && !errors.IsRecoverable(msg.err)
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *interactiveModel) prepareInputs() {
	f := m.funcs[m.selected]
	m.inputs = make([]textinput.Model, len(f.Inputs))
	for i, p := range f.Inputs {
		ti := textinput.New()
		ti.Placeholder = p.Type
		ti.Prompt = paramName(p, i) + ": "
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *interactiveModel) callFunction() tea.Msg {
	f := m.funcs[m.selected]
	args := make([]string, len(m.inputs))
	for i, input := range m.inputs {
		args[i] = strings.TrimSpace(input.Value())
	}

	result, err := m.loop.Call(m.ctx, f.Signature(), args)
	if err != nil {
		return callResultMsg{err: err}
	}
	return callResultMsg{result: result}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Contract REPL"))
	b.WriteString(" ")
	b.WriteString(m.contract)
	b.WriteString(" ")
	b.WriteString(helpStyle.Render(m.source))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectFunc:
		if len(m.funcs) == 0 {
			b.WriteString("The contract has no callable functions.\n\n")
			b.WriteString(helpStyle.Render("q quit"))
			break
		}
		b.WriteString("Select a function to call:\n\n")
		for i, f := range m.funcs {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + m.formatFunc(f)))
			} else {
				b.WriteString("  " + m.formatFunc(f))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter call • q quit"))

	case stateInputArgs:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Calling %s\n\n", funcStyle.Render(f.Signature())))
		for i, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString(" ")
			b.WriteString(typeStyle.Render(f.Inputs[i].Type))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter call • esc back"))

	case stateCalling:
		b.WriteString(fmt.Sprintf("Calling %s...\n", funcStyle.Render(m.funcs[m.selected].Signature())))

	case stateShowResult:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", funcStyle.Render(f.Signature())))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		if m.fatal {
			b.WriteString(helpStyle.Render("engine stopped • any key quits"))
		} else {
			b.WriteString(helpStyle.Render("enter continue • q quit"))
		}
	}

	return b.String()
}

func (m *interactiveModel) formatFunc(f *abi.Function) string {
	var params []string
	for i, p := range f.Inputs {
		params = append(params, paramName(p, i)+": "+typeStyle.Render(p.Type))
	}
	result := ""
	if outs := f.OutputTypes(); len(outs) > 0 {
		result = " -> " + typeStyle.Render(strings.Join(outs, ", "))
	}
	return funcStyle.Render(f.Name) + "(" + strings.Join(params, ", ") + ")" + result
}

func paramName(p abi.Param, i int) string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("arg%d", i)
}

// runInteractive drives the engine from a TUI. The engine is terminated on
// every exit path.
func runInteractive(ctx context.Context, s *session, proc *engine.Process) error {
	loop := repl.New(proc, s.registry, nil)
	defer func() { _ = loop.Close() }()

	p := tea.NewProgram(newInteractiveModel(ctx, s, loop), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	if m, ok := final.(*interactiveModel); ok && m.fatal {
		return m.err
	}
	return nil
}
