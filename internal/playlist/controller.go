package playlist

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/hazadus/go-playlist/internal/notify"
	"github.com/hazadus/go-playlist/internal/player"
	"github.com/hazadus/go-playlist/internal/track"
	"github.com/hazadus/go-playlist/internal/utils"
)

// playOrigin запоминает, какая операция запросила воспроизведение,
// чтобы асинхронная ошибка получила правильный текст
type playOrigin int

const (
	originNone playOrigin = iota
	originTrack
	originResume
)

// ErrNoDownloader возвращается, если скачивание не настроено
var ErrNoDownloader = errors.New("скачивание недоступно")

// Deps - зависимости контроллера
type Deps struct {
	Source     track.Source
	Playback   Playback
	Display    Display
	Notifier   Notifier
	Downloader Downloader
	Logger     *zap.Logger
}

// Controller владеет списком треков и состоянием плеера.
// Не потокобезопасен: все вызовы выполняются в цикле событий хоста.
type Controller struct {
	source     track.Source
	playback   Playback
	display    Display
	notifier   Notifier
	downloader Downloader
	log        *zap.Logger

	tracks    []track.Track
	byID      map[int]int
	rows      []int // Строка отображения -> индекс в tracks
	state     State
	highlight int
	loaded    bool
	origin    playOrigin
	hasSource bool
}

// New создает контроллер
func New(deps Deps) *Controller {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		source:     deps.Source,
		playback:   deps.Playback,
		display:    deps.Display,
		notifier:   deps.Notifier,
		downloader: deps.Downloader,
		log:        log.Named("playlist"),
		state:      State{Current: NoCurrent, Volume: 1},
		highlight:  NoCurrent,
	}
}

// State возвращает текущее состояние плеера
func (c *Controller) State() State {
	return c.state
}

// Tracks возвращает копию полного списка треков
func (c *Controller) Tracks() []track.Track {
	return append([]track.Track(nil), c.tracks...)
}

// Rows возвращает индексы треков в отображаемом порядке
func (c *Controller) Rows() []int {
	return append([]int(nil), c.rows...)
}

// Loaded сообщает, завершилась ли загрузка списка
func (c *Controller) Loaded() bool {
	return c.loaded
}

// Highlighted возвращает индекс подсвеченного трека или NoCurrent
func (c *Controller) Highlighted() int {
	return c.highlight
}

// IndexOf возвращает индекс трека с указанным ID или NoCurrent
func (c *Controller) IndexOf(id int) int {
	if index, ok := c.byID[id]; ok {
		return index
	}
	return NoCurrent
}

// LoadTracks загружает список из источника и применяет результат.
// Хосты с собственным циклом событий вызывают Source.Load в фоне
// и передают результат в ApplyLoaded.
func (c *Controller) LoadTracks(ctx context.Context) {
	if c.loaded {
		return
	}
	tracks, err := c.source.Load(ctx)
	c.ApplyLoaded(tracks, err)
}

// ApplyLoaded применяет результат загрузки. Учитывается только первый результат.
func (c *Controller) ApplyLoaded(tracks []track.Track, err error) {
	if c.loaded {
		c.log.Debug("повторный результат загрузки проигнорирован")
		return
	}
	c.loaded = true

	if err != nil {
		if errors.Is(err, context.Canceled) {
			c.log.Debug("загрузка списка отменена", zap.Error(err))
			return
		}
		c.log.Error("не удалось загрузить аудиофайлы", zap.Error(err))
		c.notify(notify.Error, MsgLoadFailed)
		c.display.ShowEmpty()
		return
	}

	c.tracks = append([]track.Track(nil), tracks...)
	c.byID = make(map[int]int, len(c.tracks))
	for i, t := range c.tracks {
		c.byID[t.ID] = i
	}
	c.log.Info("список загружен", zap.Int("count", len(c.tracks)))

	c.renderIndices(track.Filter(c.tracks, c.state.Filter))
}

// Render заменяет отображаемый список. Пустой список показывает
// заглушку "ничего не найдено".
func (c *Controller) Render(tracks []track.Track) {
	indices := make([]int, 0, len(tracks))
	for _, t := range tracks {
		index, ok := c.byID[t.ID]
		if !ok {
			c.log.Debug("трек не из списка пропущен", zap.Int("id", t.ID))
			continue
		}
		indices = append(indices, index)
	}
	c.renderIndices(indices)
}

func (c *Controller) renderIndices(indices []int) {
	c.rows = indices
	if len(indices) == 0 {
		c.display.ShowEmpty()
		return
	}

	rows := make([]Row, len(indices))
	for i, index := range indices {
		t := c.tracks[index]
		rows[i] = Row{
			Index:    index,
			ID:       t.ID,
			Title:    t.Title,
			Filename: t.Filename,
			Duration: t.Duration,
			Path:     t.Path,
		}
	}
	c.display.Render(rows)
	c.display.Highlight(c.highlight)
}

// Activate выполняет действие над отображаемой строкой row
func (c *Controller) Activate(row int, action Action) {
	if row < 0 || row >= len(c.rows) {
		return
	}
	index := c.rows[row]

	switch action {
	case ActionPlay:
		c.Play(index)
	case ActionDownload:
		t := c.tracks[index]
		c.Download(t.Path, t.Filename)
	}
}

// Play начинает воспроизведение трека index полного списка.
// Индекс вне диапазона игнорируется.
func (c *Controller) Play(index int) {
	if index < 0 || index >= len(c.tracks) {
		return
	}

	t := c.tracks[index]
	c.state.Current = index
	c.playback.SetSource(t.Path)
	c.hasSource = true
	c.display.SetNowPlaying(t.Title)
	c.display.SetProgress(0, labelDuration(t.Duration))

	c.origin = originTrack
	if err := c.playback.Play(); err != nil {
		c.playFailed(err)
	}

	c.setHighlight(index)
	c.log.Debug("запрошено воспроизведение", zap.Int("index", index), zap.String("path", t.Path))
}

// ResumeOrStartFirst возобновляет загруженный трек или запускает первый
func (c *Controller) ResumeOrStartFirst() {
	if c.hasSource {
		c.origin = originResume
		if err := c.playback.Play(); err != nil {
			c.playFailed(err)
		}
		return
	}
	if len(c.tracks) > 0 {
		c.Play(0)
	}
}

// Pause приостанавливает воспроизведение без сброса позиции
func (c *Controller) Pause() {
	c.playback.Pause()
}

// Stop останавливает воспроизведение и перематывает трек в начало
func (c *Controller) Stop() {
	c.playback.Pause()
	if err := c.playback.SetPosition(0); err != nil {
		c.log.Debug("перемотка в начало не удалась", zap.Error(err))
	}

	c.state.Playing = false
	c.display.SetPlaying(false)
	c.setHighlight(NoCurrent)
	if c.state.Current != NoCurrent {
		c.display.SetProgress(0, labelDuration(c.tracks[c.state.Current].Duration))
	}
}

// TogglePlay ставит на паузу или возобновляет воспроизведение
func (c *Controller) TogglePlay() {
	if c.state.Playing {
		c.Pause()
		return
	}
	c.ResumeOrStartFirst()
}

// SetVolume передает громкость примитиву воспроизведения.
// Если значение отклонено, сохраненная громкость не меняется.
func (c *Controller) SetVolume(level float64) error {
	if err := c.playback.SetVolume(level); err != nil {
		c.log.Warn("громкость отклонена", zap.Float64("level", level), zap.Error(err))
		c.notify(notify.Error, MsgVolumeRejected)
		return err
	}
	c.state.Volume = level
	c.display.SetVolume(level)
	return nil
}

// AdjustVolume меняет громкость на delta в пределах от 0.0 до 1.0
func (c *Controller) AdjustVolume(delta float64) {
	level := math.Round((c.state.Volume+delta)*100) / 100
	level = math.Max(0, math.Min(1, level))
	if level == c.state.Volume {
		return
	}
	_ = c.SetVolume(level)
}

// Search фильтрует список по подстроке в названии или имени файла
// без учета регистра. Пустая строка возвращает полный список.
func (c *Controller) Search(term string) {
	c.state.Filter = track.NormalizeTerm(term)
	if !c.loaded {
		return
	}
	c.renderIndices(track.Filter(c.tracks, c.state.Filter))
}

// Download запускает сохранение ресурса path под именем filename
func (c *Controller) Download(path, filename string) {
	if c.downloader == nil {
		c.DownloadFailed(filename, ErrNoDownloader)
		return
	}
	if err := c.downloader.Download(path, filename); err != nil {
		c.DownloadFailed(filename, err)
		return
	}
	c.log.Info("скачивание запущено", zap.String("path", path), zap.String("file", filename))
	c.notify(notify.Success, MsgDownloadStarted+filename)
}

// DownloadFailed сообщает об ошибке передачи файла
func (c *Controller) DownloadFailed(filename string, err error) {
	c.log.Error("ошибка скачивания", zap.String("file", filename), zap.Error(err))
	c.notify(notify.Error, MsgDownloadFailed)
}

// DownloadSaved сообщает о сохраненном файле
func (c *Controller) DownloadSaved(filename string) {
	c.notify(notify.Info, MsgDownloadSaved+filename)
}

// HandleEvent обрабатывает событие жизненного цикла воспроизведения
func (c *Controller) HandleEvent(ev player.Event) {
	if ev.Source != "" && !c.isCurrentSource(ev.Source) {
		c.log.Debug("событие другого источника", zap.String("source", ev.Source), zap.Stringer("kind", ev.Kind))
		return
	}

	switch ev.Kind {
	case player.EventStarted:
		c.origin = originNone
		c.setPlaying(true)
	case player.EventPaused:
		c.setPlaying(false)
	case player.EventEnded:
		// Следующий трек автоматически не запускается
		c.setPlaying(false)
		c.setHighlight(NoCurrent)
	case player.EventFailed:
		c.setPlaying(false)
		c.playFailed(ev.Err)
	case player.EventProgress:
		c.display.SetProgress(ev.Position, ev.Total)
	}
}

// HandleKey обрабатывает глобальную клавишу. Пока фокус в поле ввода,
// клавиши не обрабатываются. Возвращает true, если клавиша обработана.
func (c *Controller) HandleKey(key Key, inputFocused bool) bool {
	if inputFocused {
		return false
	}

	switch key {
	case KeySpace:
		c.TogglePlay()
	case KeyRight:
		if c.state.Current < len(c.tracks)-1 {
			c.Play(c.state.Current + 1)
		}
	case KeyLeft:
		if c.state.Current > 0 {
			c.Play(c.state.Current - 1)
		}
	default:
		return false
	}
	return true
}

func (c *Controller) playFailed(err error) {
	message := MsgPlayFailed
	if c.origin == originResume {
		message = MsgResumeFailed
	}
	c.origin = originNone

	fields := []zap.Field{zap.Error(err)}
	if c.state.Current != NoCurrent {
		fields = append(fields, zap.String("path", c.tracks[c.state.Current].Path))
	}
	c.log.Error("ошибка воспроизведения", fields...)
	c.notify(notify.Error, message)
}

func (c *Controller) setPlaying(playing bool) {
	c.state.Playing = playing
	c.display.SetPlaying(playing)
}

func (c *Controller) setHighlight(index int) {
	c.highlight = index
	c.display.Highlight(index)
}

func (c *Controller) isCurrentSource(source string) bool {
	if c.state.Current == NoCurrent {
		return false
	}
	return c.tracks[c.state.Current].Path == source
}

func (c *Controller) notify(level notify.Level, message string) {
	if c.notifier != nil {
		c.notifier.Notify(level, message)
	}
}

// labelDuration переводит метку длительности трека в time.Duration
func labelDuration(label string) time.Duration {
	d, err := utils.ParseDurationLabel(label)
	if err != nil {
		return 0
	}
	return d
}
