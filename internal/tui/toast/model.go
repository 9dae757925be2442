// Package toast отображает всплывающие уведомления в правом верхнем углу
package toast

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/hazadus/go-playlist/internal/notify"
)

var (
	baseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 2).
			MarginBottom(1)

	levelColors = map[notify.Level]lipgloss.Color{
		notify.Error:   lipgloss.Color("#f44336"),
		notify.Success: lipgloss.Color("#4CAF50"),
		notify.Info:    lipgloss.Color("#2196F3"),
	}
)

// DismissMsg скрывает уведомление по истечении времени показа
type DismissMsg struct {
	ID uuid.UUID
}

// Model представляет стек уведомлений
type Model struct {
	stack *notify.Stack
	width int
}

// NewModel создает пустой стек уведомлений
func NewModel() *Model {
	return &Model{stack: notify.NewStack(), width: 80}
}

// Push добавляет уведомление и возвращает команду его скрытия
func (m *Model) Push(level notify.Level, message string) tea.Cmd {
	n := m.stack.Push(level, message)
	return tea.Tick(notify.DismissAfter, func(_ time.Time) tea.Msg {
		return DismissMsg{ID: n.ID}
	})
}

// SetWidth задает ширину экрана для выравнивания
func (m *Model) SetWidth(width int) {
	m.width = width
}

// Active возвращает отображаемые уведомления
func (m *Model) Active() []notify.Notification {
	return m.stack.Active()
}

// Update обрабатывает сообщения скрытия
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	if msg, ok := msg.(DismissMsg); ok {
		m.stack.Dismiss(msg.ID)
		m.stack.Prune()
	}
	return m, nil
}

// View отображает уведомления стопкой, новые снизу
func (m *Model) View() string {
	items := m.stack.Active()
	if len(items) == 0 {
		return ""
	}

	boxes := make([]string, len(items))
	for i, n := range items {
		box := baseStyle.Background(levelColors[n.Level]).Render(n.Message)
		boxes[i] = lipgloss.PlaceHorizontal(m.width, lipgloss.Right, box)
	}
	return lipgloss.JoinVertical(lipgloss.Right, boxes...)
}
