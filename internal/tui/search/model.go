// Package search содержит поле поиска по списку треков
package search

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	blurredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	boxStyle     = lipgloss.NewStyle().MarginLeft(2)
)

// SubmittedMsg отправляется при применении поиска клавишей Enter
type SubmittedMsg struct {
	Term string
}

// Model представляет модель поля поиска
type Model struct {
	input textinput.Model
}

// NewModel создает поле поиска
func NewModel() *Model {
	input := textinput.New()
	input.Placeholder = "Поиск по названию или имени файла"
	input.Prompt = "🔎 "
	input.CharLimit = 100
	input.Width = 50
	input.PromptStyle = blurredStyle
	input.TextStyle = blurredStyle

	return &Model{input: input}
}

// Focus переводит фокус в поле поиска
func (m *Model) Focus() tea.Cmd {
	m.input.PromptStyle = focusedStyle
	m.input.TextStyle = focusedStyle
	return m.input.Focus()
}

// Blur убирает фокус из поля поиска
func (m *Model) Blur() {
	m.input.PromptStyle = blurredStyle
	m.input.TextStyle = blurredStyle
	m.input.Blur()
}

// Focused сообщает, находится ли фокус в поле поиска
func (m *Model) Focused() bool {
	return m.input.Focused()
}

// Value возвращает введенную строку
func (m *Model) Value() string {
	return m.input.Value()
}

// SetValue задает строку поиска
func (m *Model) SetValue(value string) {
	m.input.SetValue(value)
}

// Update обрабатывает ввод. Enter применяет поиск, esc выходит из поля.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	if !m.input.Focused() {
		return m, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			term := m.input.Value()
			m.Blur()
			return m, func() tea.Msg {
				return SubmittedMsg{Term: term}
			}
		case "esc":
			m.Blur()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View отображает поле поиска
func (m *Model) View() string {
	return boxStyle.Render(m.input.View())
}
