// Package tui содержит компоненты для текстового пользовательского интерфейса
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hazadus/go-playlist/internal/tui/app"
)

// App представляет основное TUI приложение
type App struct {
	options app.Options
}

// NewApp создает новый экземпляр TUI приложения
func NewApp(options app.Options) *App {
	return &App{options: options}
}

// Run запускает TUI приложение и блокируется до выхода
func (tuiApp *App) Run() error {
	// Создаем модель для Bubble Tea
	model := app.NewMainModel(tuiApp.options)

	// Создаем программу Bubble Tea
	p := tea.NewProgram(model, tea.WithAltScreen())

	// Запускаем программу
	_, err := p.Run()

	// Отменяем фоновые загрузки после завершения программы
	model.Close()

	return err
}
