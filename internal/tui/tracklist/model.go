// Package tracklist содержит модель списка треков для TUI
package tracklist

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-playlist/internal/playlist"
	"github.com/hazadus/go-playlist/internal/utils"
)

// EmptyText отображается, когда в списке нет строк
const EmptyText = "🔍 Аудиофайлы не найдены"

const (
	titleWidth    = 12
	filenameWidth = 44
)

var (
	titleStyle        = lipgloss.NewStyle().MarginLeft(2)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	playingStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	emptyStyle        = lipgloss.NewStyle().Margin(1, 0, 1, 4).Foreground(lipgloss.Color("241"))
	paginationStyle   = list.DefaultStyles().PaginationStyle.PaddingLeft(4)
	helpStyle         = list.DefaultStyles().HelpStyle.PaddingLeft(4).PaddingBottom(1)
)

// rowItem реализует интерфейс list.Item для строки списка
type rowItem struct {
	row playlist.Row
}

func (i rowItem) FilterValue() string {
	return i.row.Title + " " + i.row.Filename
}

// rowDelegate реализует отображение строк списка
type rowDelegate struct {
	highlight *int
}

func (d rowDelegate) Height() int                             { return 1 }
func (d rowDelegate) Spacing() int                            { return 0 }
func (d rowDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d rowDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(rowItem)
	if !ok {
		return
	}

	// Форматируем строку в виде таблицы: ID | Название | Имя файла | Длительность
	marker := "  "
	if i.row.Index == *d.highlight {
		marker = playingStyle.Render("♪ ")
	}
	str := fmt.Sprintf("%s%-4d %s %s %s",
		marker,
		i.row.ID,
		utils.PadRight(i.row.Title, titleWidth),
		utils.PadRight(i.row.Filename, filenameWidth),
		i.row.Duration)

	if index == m.Index() {
		fmt.Fprint(w, selectedItemStyle.Render("> "+str))
		return
	}
	fmt.Fprint(w, itemStyle.Render(str))
}

// Model представляет модель списка треков
type Model struct {
	list      list.Model
	highlight *int
	empty     bool
	loaded    bool
}

// NewModel создает пустую модель списка треков
func NewModel() *Model {
	highlight := playlist.NoCurrent

	l := list.New(nil, rowDelegate{highlight: &highlight}, 80, 20)
	l.Title = "Аудиофайлы"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	l.Styles.Title = titleStyle
	l.Styles.PaginationStyle = paginationStyle
	l.Styles.HelpStyle = helpStyle

	return &Model{
		list:      l,
		highlight: &highlight,
	}
}

// SetRows заменяет строки списка
func (m *Model) SetRows(rows []playlist.Row) {
	items := make([]list.Item, len(rows))
	for i, row := range rows {
		items[i] = rowItem{row: row}
	}
	m.list.SetItems(items)
	m.list.ResetSelected()
	m.empty = len(rows) == 0
	m.loaded = true
}

// SetEmpty показывает заглушку пустого списка
func (m *Model) SetEmpty() {
	m.SetRows(nil)
}

// SetHighlight подсвечивает трек с индексом index полного списка
// и переводит на него курсор, если он отображается
func (m *Model) SetHighlight(index int) {
	*m.highlight = index
	if index == playlist.NoCurrent {
		return
	}
	for i, item := range m.list.Items() {
		if row, ok := item.(rowItem); ok && row.row.Index == index {
			m.list.Select(i)
			return
		}
	}
}

// Highlight возвращает подсвеченный индекс
func (m *Model) Highlight() int {
	return *m.highlight
}

// SelectedRow возвращает номер строки под курсором или -1
func (m *Model) SelectedRow() int {
	if m.empty || len(m.list.Items()) == 0 {
		return -1
	}
	return m.list.Index()
}

// Len возвращает число строк
func (m *Model) Len() int {
	return len(m.list.Items())
}

// Empty сообщает, показывается ли заглушка
func (m *Model) Empty() bool {
	return m.empty
}

// SetSize задает размер списка
func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

// Update обрабатывает навигацию по списку
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View отображает модель
func (m *Model) View() string {
	if !m.loaded {
		return emptyStyle.Render("Загрузка списка...")
	}
	if m.empty {
		return emptyStyle.Render(EmptyText)
	}
	return m.list.View()
}
