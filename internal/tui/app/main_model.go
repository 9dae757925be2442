// Package app содержит основную логику TUI приложения
package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/hazadus/go-playlist/internal/download"
	"github.com/hazadus/go-playlist/internal/notify"
	"github.com/hazadus/go-playlist/internal/player"
	"github.com/hazadus/go-playlist/internal/playlist"
	"github.com/hazadus/go-playlist/internal/track"
	tuiPlayer "github.com/hazadus/go-playlist/internal/tui/player"
	"github.com/hazadus/go-playlist/internal/tui/search"
	"github.com/hazadus/go-playlist/internal/tui/toast"
	"github.com/hazadus/go-playlist/internal/tui/tracklist"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#2196F3")).
			Padding(0, 2).
			MarginLeft(2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginLeft(4)

	quitTextStyle = lipgloss.NewStyle().Margin(1, 0, 2, 4)
)

// Высота всех элементов экрана, кроме списка
const chromeHeight = 10

// Downloads - сервис скачивания, которому модель назначает способ запуска передач
type Downloads interface {
	playlist.Downloader
	SetRunner(runner download.Runner)
}

// Options - зависимости главной модели
type Options struct {
	Source    track.Source
	Playback  playlist.Playback
	Events    <-chan player.Event
	Downloads Downloads
	Logger    *zap.Logger
	Volume    float64 // Начальная громкость от 0.0 до 1.0
}

// tracksLoadedMsg - результат фоновой загрузки списка
type tracksLoadedMsg struct {
	tracks []track.Track
	err    error
}

// playerEventMsg - событие плеера
type playerEventMsg struct {
	event player.Event
}

// downloadDoneMsg - завершение фоновой передачи файла
type downloadDoneMsg struct {
	fileName string
	result   *download.Result
	err      error
}

// MainModel представляет главную модель TUI. Она же служит поверхностью
// отображения и уведомлений для контроллера списка.
type MainModel struct {
	controller *playlist.Controller
	source     track.Source
	events     <-chan player.Event
	log        *zap.Logger
	volume     float64

	tracklistModel *tracklist.Model
	searchModel    *search.Model
	playerModel    *tuiPlayer.Model
	toastModel     *toast.Model

	ctx     context.Context
	cancel  context.CancelFunc
	pending []tea.Cmd // Команды, накопленные в вызовах контроллера

	width    int
	height   int
	quitting bool
}

// NewMainModel создает новую главную модель
func NewMainModel(opts Options) *MainModel {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	m := &MainModel{
		source:         opts.Source,
		events:         opts.Events,
		log:            log.Named("tui"),
		volume:         opts.Volume,
		tracklistModel: tracklist.NewModel(),
		searchModel:    search.NewModel(),
		playerModel:    tuiPlayer.NewModel(),
		toastModel:     toast.NewModel(),
		ctx:            ctx,
		cancel:         cancel,
	}

	var downloader playlist.Downloader
	if opts.Downloads != nil {
		opts.Downloads.SetRunner(m)
		downloader = opts.Downloads
	}

	m.controller = playlist.New(playlist.Deps{
		Source:     opts.Source,
		Playback:   opts.Playback,
		Display:    m,
		Notifier:   m,
		Downloader: downloader,
		Logger:     log,
	})
	return m
}

// Controller возвращает контроллер списка
func (m *MainModel) Controller() *playlist.Controller {
	return m.controller
}

// Init запускает загрузку списка и прослушивание событий плеера
func (m *MainModel) Init() tea.Cmd {
	_ = m.controller.SetVolume(m.volume)
	return tea.Batch(append(m.drain(), m.loadTracks(), m.listenForEvents())...)
}

// Update обрабатывает сообщения
func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	cmds := append(m.drain(), cmd)
	return m, tea.Batch(cmds...)
}

func (m *MainModel) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.tracklistModel.SetSize(msg.Width, max(5, msg.Height-chromeHeight))
		m.playerModel.SetWidth(msg.Width)
		m.toastModel.SetWidth(msg.Width)
		return nil

	case tracksLoadedMsg:
		m.controller.ApplyLoaded(msg.tracks, msg.err)
		return nil

	case playerEventMsg:
		m.controller.HandleEvent(msg.event)
		return m.listenForEvents()

	case downloadDoneMsg:
		if msg.err != nil {
			m.controller.DownloadFailed(msg.fileName, msg.err)
			return nil
		}
		m.controller.DownloadSaved(msg.result.FileName)
		return nil

	case toast.DismissMsg:
		m.toastModel.Update(msg)
		return nil

	case search.SubmittedMsg:
		m.controller.Search(msg.Term)
		return nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return nil
}

func (m *MainModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	// Пока фокус в поле поиска, клавиши уходят в него
	if m.searchModel.Focused() {
		var cmd tea.Cmd
		m.searchModel, cmd = m.searchModel.Update(msg)
		return cmd
	}

	switch msg.String() {
	case "q":
		return m.quit()
	case "/":
		return m.searchModel.Focus()
	case " ":
		m.controller.HandleKey(playlist.KeySpace, false)
	case "right":
		m.controller.HandleKey(playlist.KeyRight, false)
	case "left":
		m.controller.HandleKey(playlist.KeyLeft, false)
	case "enter":
		m.controller.Activate(m.tracklistModel.SelectedRow(), playlist.ActionPlay)
	case "d":
		m.controller.Activate(m.tracklistModel.SelectedRow(), playlist.ActionDownload)
	case "s":
		m.controller.Stop()
	case "p":
		m.controller.ResumeOrStartFirst()
	case "+", "=":
		m.controller.AdjustVolume(playlist.VolumeStep)
	case "-":
		m.controller.AdjustVolume(-playlist.VolumeStep)
	default:
		var cmd tea.Cmd
		m.tracklistModel, cmd = m.tracklistModel.Update(msg)
		return cmd
	}
	return nil
}

func (m *MainModel) quit() tea.Cmd {
	m.quitting = true
	m.cancel()
	return tea.Quit
}

// loadTracks загружает список в фоне
func (m *MainModel) loadTracks() tea.Cmd {
	ctx, source := m.ctx, m.source
	return func() tea.Msg {
		tracks, err := source.Load(ctx)
		return tracksLoadedMsg{tracks: tracks, err: err}
	}
}

// listenForEvents ждет следующее событие плеера
func (m *MainModel) listenForEvents() tea.Cmd {
	if m.events == nil {
		return nil
	}
	ctx, events := m.ctx, m.events
	return func() tea.Msg {
		select {
		case event := <-events:
			return playerEventMsg{event: event}
		case <-ctx.Done():
			return nil
		}
	}
}

// drain забирает накопленные команды
func (m *MainModel) drain() []tea.Cmd {
	cmds := m.pending
	m.pending = nil
	return cmds
}

// Run реализует download.Runner: передача выполняется командой Bubble Tea,
// результат возвращается сообщением в цикл событий
func (m *MainModel) Run(fileName string, job download.Job) {
	ctx := m.ctx
	m.pending = append(m.pending, func() tea.Msg {
		result, err := job(ctx)
		return downloadDoneMsg{fileName: fileName, result: result, err: err}
	})
}

// Реализация playlist.Display

// Render отображает строки списка
func (m *MainModel) Render(rows []playlist.Row) {
	m.tracklistModel.SetRows(rows)
}

// ShowEmpty показывает заглушку пустого списка
func (m *MainModel) ShowEmpty() {
	m.tracklistModel.SetEmpty()
}

// Highlight подсвечивает текущий трек
func (m *MainModel) Highlight(index int) {
	m.tracklistModel.SetHighlight(index)
}

// SetNowPlaying задает название текущего трека
func (m *MainModel) SetNowPlaying(title string) {
	m.playerModel.SetNowPlaying(title)
}

// SetPlaying задает состояние воспроизведения
func (m *MainModel) SetPlaying(playing bool) {
	m.playerModel.SetPlaying(playing)
}

// SetProgress задает позицию воспроизведения
func (m *MainModel) SetProgress(position, total time.Duration) {
	m.playerModel.SetProgress(position, total)
}

// SetVolume задает громкость для отображения
func (m *MainModel) SetVolume(level float64) {
	m.playerModel.SetVolume(level)
}

// Notify реализует playlist.Notifier
func (m *MainModel) Notify(level notify.Level, message string) {
	m.pending = append(m.pending, m.toastModel.Push(level, message))
}

// View отображает интерфейс
func (m *MainModel) View() string {
	if m.quitting {
		return quitTextStyle.Render("До свидания!")
	}

	help := helpStyle.Render("Пробел: пауза • ←/→: трек • Enter: играть • d: скачать • s: стоп • /: поиск • +/-: громкость • q: выход")
	if m.searchModel.Focused() {
		help = helpStyle.Render("Enter: найти • Esc: отмена")
	}

	sections := []string{}
	if toasts := m.toastModel.View(); toasts != "" {
		sections = append(sections, toasts)
	}
	sections = append(sections,
		headerStyle.Render("🎵 Аудиоплеер"),
		m.searchModel.View(),
		m.tracklistModel.View(),
		m.playerModel.View(),
		help,
	)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// Close освобождает ресурсы модели
func (m *MainModel) Close() {
	m.cancel()
}
