// Package testing provides test utilities for TUI components.
package testing

import (
	tea "github.com/charmbracelet/bubbletea"
)

// TestRenderer captures the output of a Bubble Tea component without requiring a real terminal.
type TestRenderer struct {
	// Ignore drops messages before they reach the component, such as
	// animation ticks that would otherwise reschedule themselves.
	Ignore func(tea.Msg) bool

	// Output contains the last rendered view
	Output string

	// Commands contains all commands returned by Update calls
	Commands []tea.Cmd

	// Messages contains all messages sent to the component
	Messages []tea.Msg

	// UpdateCount tracks how many times Update was called
	UpdateCount int
}

// NewTestRenderer creates a new test renderer.
func NewTestRenderer() *TestRenderer {
	return &TestRenderer{
		Commands: make([]tea.Cmd, 0),
		Messages: make([]tea.Msg, 0),
	}
}

// Render renders a component and captures its output.
func (r *TestRenderer) Render(model tea.Model) string {
	r.Output = model.View()
	return r.Output
}

// Init runs the component's Init and captures its command.
func (r *TestRenderer) Init(model tea.Model) tea.Model {
	if cmd := model.Init(); cmd != nil {
		r.Commands = append(r.Commands, cmd)
	}
	r.Output = model.View()
	return model
}

// Update sends a message to the component and captures the result.
func (r *TestRenderer) Update(model tea.Model, msg tea.Msg) (tea.Model, tea.Cmd) {
	r.Messages = append(r.Messages, msg)
	r.UpdateCount++

	newModel, cmd := model.Update(msg)
	if cmd != nil {
		r.Commands = append(r.Commands, cmd)
	}

	// Update the rendered output
	r.Output = newModel.View()

	return newModel, cmd
}

// ProcessCommands executes the pending commands, feeds their messages back
// into the component and returns the updated component. Batched commands
// are expanded. Commands produced while processing are left pending.
func (r *TestRenderer) ProcessCommands(model tea.Model) tea.Model {
	pending := r.Commands
	r.Commands = nil

	for _, cmd := range pending {
		for _, msg := range Exec(cmd) {
			if r.Ignore != nil && r.Ignore(msg) {
				continue
			}
			model, _ = r.Update(model, msg)
		}
	}

	return model
}

// StripANSI removes ANSI escape codes from the output for content-only testing.
func (r *TestRenderer) StripANSI() string {
	return StripANSI(r.Output)
}
