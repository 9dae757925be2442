// Package player содержит панель текущего трека для TUI
package player

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-playlist/internal/utils"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#2196F3"))

	statusStyle = lipgloss.NewStyle().
			Bold(true)

	trackInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	barStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#666666")).
			Padding(0, 1).
			MarginLeft(2)
)

const volumeCells = 10

// Model представляет панель текущего трека
type Model struct {
	title       string
	playing     bool
	position    time.Duration
	total       time.Duration
	volume      float64
	progressBar progress.Model
}

// NewModel создает панель
func NewModel() *Model {
	// Создаем прогресс-бар
	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 40

	return &Model{
		volume:      1,
		progressBar: prog,
	}
}

// SetNowPlaying задает название текущего трека
func (m *Model) SetNowPlaying(title string) {
	m.title = title
}

// SetPlaying задает состояние воспроизведения
func (m *Model) SetPlaying(playing bool) {
	m.playing = playing
}

// SetProgress задает позицию и длительность
func (m *Model) SetProgress(position, total time.Duration) {
	m.position = position
	m.total = total
}

// SetVolume задает громкость для отображения
func (m *Model) SetVolume(level float64) {
	m.volume = level
}

// SetWidth подстраивает ширину прогресс-бара
func (m *Model) SetWidth(width int) {
	m.progressBar.Width = max(10, min(60, width-30))
}

// Playing сообщает, идет ли воспроизведение
func (m *Model) Playing() bool {
	return m.playing
}

// Title возвращает название текущего трека
func (m *Model) Title() string {
	return m.title
}

// Percent возвращает долю проигранного
func (m *Model) Percent() float64 {
	if m.total <= 0 {
		return 0
	}
	return min(1, float64(m.position)/float64(m.total))
}

// View отображает панель
func (m *Model) View() string {
	title := m.title
	if title == "" {
		title = "Трек не выбран"
	}

	statusText := statusStyle.Render(fmt.Sprintf("%s %s", statusIcon(m.playing), formatStatus(m.playing)))

	timeText := fmt.Sprintf("%s / %s",
		utils.FormatDuration(m.position),
		utils.FormatDuration(m.total))

	line := lipgloss.JoinHorizontal(lipgloss.Center,
		statusText, "  ",
		titleStyle.Render(title), "  ",
		m.progressBar.ViewAs(m.Percent()), " ",
		trackInfoStyle.Render(timeText), "  ",
		trackInfoStyle.Render("🔊 "+volumeBar(m.volume)),
	)
	return barStyle.Render(line)
}

// Вспомогательные функции

func formatStatus(isPlaying bool) string {
	if isPlaying {
		return "Воспроизведение"
	}
	return "Пауза"
}

func statusIcon(isPlaying bool) string {
	if isPlaying {
		return "▶"
	}
	return "⏸"
}

func volumeBar(level float64) string {
	filled := int(level*volumeCells + 0.5)
	filled = max(0, min(volumeCells, filled))
	return strings.Repeat("█", filled) + strings.Repeat("░", volumeCells-filled) +
		fmt.Sprintf(" %d%%", int(level*100+0.5))
}
