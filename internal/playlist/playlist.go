// Package playlist содержит контроллер списка воспроизведения: загрузку
// и отображение треков, управление воспроизведением, поиск и скачивание
package playlist

import (
	"time"

	"github.com/hazadus/go-playlist/internal/notify"
)

// Тексты уведомлений
const (
	MsgLoadFailed      = "Не удалось загрузить аудиофайлы, перезапустите приложение"
	MsgPlayFailed      = "Ошибка воспроизведения, проверьте путь к аудиофайлу"
	MsgResumeFailed    = "Ошибка воспроизведения"
	MsgDownloadStarted = "Скачивание: "
	MsgDownloadFailed  = "Ошибка скачивания, проверьте путь к файлу"
	MsgDownloadSaved   = "Сохранено: "
	MsgVolumeRejected  = "Громкость должна быть от 0.0 до 1.0"
)

// NoCurrent - значение Current, когда трек не выбран
const NoCurrent = -1

// VolumeStep - шаг изменения громкости с клавиатуры
const VolumeStep = 0.1

// Playback - примитив воспроизведения, которым управляет контроллер
type Playback interface {
	SetSource(path string)
	Play() error
	Pause()
	SetPosition(position time.Duration) error
	SetVolume(level float64) error
}

// Display - поверхность отображения списка и состояния плеера
type Display interface {
	Render(rows []Row)
	ShowEmpty()
	Highlight(index int) // Индекс в полном списке, NoCurrent снимает подсветку
	SetNowPlaying(title string)
	SetPlaying(playing bool)
	SetProgress(position, total time.Duration)
	SetVolume(level float64)
}

// Notifier показывает всплывающие уведомления
type Notifier interface {
	Notify(level notify.Level, message string)
}

// Downloader запускает сохранение ресурса под указанным именем
type Downloader interface {
	Download(path, filename string) error
}

// Row - строка отображаемого списка
type Row struct {
	Index    int // Индекс трека в полном списке
	ID       int
	Title    string
	Filename string
	Duration string
	Path     string
}

// Action - действие над строкой списка
type Action int

const (
	ActionPlay Action = iota
	ActionDownload
)

// Key - клавиша глобального управления
type Key int

const (
	KeySpace Key = iota
	KeyRight
	KeyLeft
)

// State - состояние плеера
type State struct {
	Current int // Индекс текущего трека в полном списке или NoCurrent
	Playing bool
	Volume  float64
	Filter  string // Нормализованная поисковая строка
}
