// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Field indexes for the settings form.
const (
	FieldFee = iota
	FieldCapital
	FieldCooldown
	FieldMinSpread
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Fee per leg (%)",
	"Capital invested ($)",
	"Cooldown (seconds)",
	"Min spread (%)",
}

// SettingsComponent renders the editable parameter form.
type SettingsComponent struct {
	inputs  [fieldCount]textinput.Model
	focused int
	errMsg  string
}

// NewSettingsComponent creates the settings form.
func NewSettingsComponent() *SettingsComponent {
	s := &SettingsComponent{}
	for i := range s.inputs {
		in := textinput.New()
		in.CharLimit = 12
		in.Width = 12
		in.Prompt = "> "
		s.inputs[i] = in
	}
	s.inputs[FieldFee].Placeholder = "0.15"
	s.inputs[FieldCapital].Placeholder = "100"
	s.inputs[FieldCooldown].Placeholder = "30"
	s.inputs[FieldMinSpread].Placeholder = "0.4"
	return s
}

// SetValues fills the form from the current parameter values.
func (s *SettingsComponent) SetValues(fee, capital, cooldownSeconds, minSpread string) {
	s.inputs[FieldFee].SetValue(fee)
	s.inputs[FieldCapital].SetValue(capital)
	s.inputs[FieldCooldown].SetValue(cooldownSeconds)
	s.inputs[FieldMinSpread].SetValue(minSpread)
	s.errMsg = ""
}

// Values returns the raw form values in field order.
func (s *SettingsComponent) Values() (fee, capital, cooldownSeconds, minSpread string) {
	return s.inputs[FieldFee].Value(),
		s.inputs[FieldCapital].Value(),
		s.inputs[FieldCooldown].Value(),
		s.inputs[FieldMinSpread].Value()
}

// Focus gives input focus to the first field.
func (s *SettingsComponent) Focus() tea.Cmd {
	s.focused = 0
	return s.focusCurrent()
}

// Blur removes focus from all fields.
func (s *SettingsComponent) Blur() {
	for i := range s.inputs {
		s.inputs[i].Blur()
	}
}

// Next moves focus to the next field, wrapping around.
func (s *SettingsComponent) Next() tea.Cmd {
	s.focused = (s.focused + 1) % fieldCount
	return s.focusCurrent()
}

func (s *SettingsComponent) focusCurrent() tea.Cmd {
	var cmd tea.Cmd
	for i := range s.inputs {
		if i == s.focused {
			cmd = s.inputs[i].Focus()
		} else {
			s.inputs[i].Blur()
		}
	}
	return cmd
}

// SetError displays a validation error under the form.
func (s *SettingsComponent) SetError(msg string) {
	s.errMsg = msg
}

// Update forwards messages to the focused input.
func (s *SettingsComponent) Update(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, 0, fieldCount)
	for i := range s.inputs {
		var cmd tea.Cmd
		s.inputs[i], cmd = s.inputs[i].Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// View renders the settings form.
func (s *SettingsComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	focusStyle := lipgloss.NewStyle().Bold(true)

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("SETTINGS"))
	sb.WriteString("\n\n")

	for i := range s.inputs {
		label := fmt.Sprintf("  %-22s", fieldLabels[i])
		if i == s.focused {
			sb.WriteString(focusStyle.Render(label))
		} else {
			sb.WriteString(dimStyle.Render(label))
		}
		sb.WriteString(s.inputs[i].View())
		sb.WriteString("\n")
	}

	if s.errMsg != "" {
		sb.WriteString("\n")
		sb.WriteString(errStyle.Render("  " + s.errMsg))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("  tab: next field • enter: apply • esc: cancel"))

	return sb.String()
}
