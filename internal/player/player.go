// Package player содержит компоненты для управления воспроизведением аудио
package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"go.uber.org/zap"
)

// Ошибки плеера
var (
	ErrNoSource    = errors.New("источник воспроизведения не задан")
	ErrClosed      = errors.New("плеер закрыт")
	ErrVolumeRange = errors.New("громкость должна быть в диапазоне от 0.0 до 1.0")
)

const (
	eventBufferSize  = 32
	progressInterval = time.Second
	resampleQuality  = 4

	// Места в буфере событий, которые прогресс не может занять
	lifecycleReserve = 8
)

// EventKind - тип события жизненного цикла воспроизведения
type EventKind int

const (
	EventStarted EventKind = iota
	EventPaused
	EventEnded
	EventFailed
	EventProgress
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventPaused:
		return "paused"
	case EventEnded:
		return "ended"
	case EventFailed:
		return "failed"
	case EventProgress:
		return "progress"
	default:
		return "unknown"
	}
}

// Event - событие воспроизведения
type Event struct {
	Kind     EventKind
	Source   string
	Position time.Duration // Для EventProgress
	Total    time.Duration
	Err      error // Для EventFailed
}

// Opener открывает поток данных по пути трека
type Opener interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// OpenerFunc адаптер функции к Opener
type OpenerFunc func(ctx context.Context, path string) (io.ReadCloser, error)

// Open вызывает f
func (f OpenerFunc) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	return f(ctx, path)
}

// Output - устройство вывода звука. Методы повторяют пакет speaker.
type Output interface {
	Init(rate beep.SampleRate, bufferSize int) error
	Play(s ...beep.Streamer)
	Clear()
	Lock()
	Unlock()
}

// Speaker выводит звук через beep/speaker
type Speaker struct{}

// Init инициализирует динамики
func (Speaker) Init(rate beep.SampleRate, bufferSize int) error {
	return speaker.Init(rate, bufferSize)
}

// Play подключает потоки к динамикам
func (Speaker) Play(s ...beep.Streamer) {
	speaker.Play(s...)
}

// Clear отключает все потоки
func (Speaker) Clear() {
	speaker.Clear()
}

// Lock блокирует поток вывода
func (Speaker) Lock() {
	speaker.Lock()
}

// Unlock снимает блокировку
func (Speaker) Unlock() {
	speaker.Unlock()
}

// Decoder декодирует поток в отсчеты
type Decoder func(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error)

// stream - загруженный и подключенный к динамикам трек
type stream struct {
	reader  io.ReadCloser
	decoder beep.StreamSeekCloser
	format  beep.Format
	ctrl    *beep.Ctrl
	volume  *effects.Volume
	ended   atomic.Bool
	cancel  context.CancelFunc
}

// Player управляет воспроизведением треков.
// Play асинхронный: загрузка идет в фоне, результат приходит событием
// EventStarted или EventFailed в канал Events.
type Player struct {
	opener Opener
	out    Output
	decode Decoder
	log    *zap.Logger
	events chan Event

	ctx    context.Context
	cancel context.CancelFunc

	// Поколение источника. Колбэки динамиков читают его без мьютекса,
	// события устаревших загрузок отбрасываются.
	generation atomic.Uint64

	// Порядок блокировок: mu, затем out.Lock
	mu          sync.Mutex
	source      string
	volume      float64
	current     *stream
	loading     bool
	closed      bool
	speakerRate beep.SampleRate
}

// Option настраивает плеер
type Option func(*Player)

// WithOutput заменяет устройство вывода
func WithOutput(out Output) Option {
	return func(p *Player) { p.out = out }
}

// WithDecoder заменяет декодер MP3
func WithDecoder(decode Decoder) Option {
	return func(p *Player) { p.decode = decode }
}

// NewPlayer создает новый экземпляр плеера. По умолчанию звук идет
// в динамики, источники декодируются как MP3.
func NewPlayer(opener Opener, log *zap.Logger, opts ...Option) *Player {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Player{
		opener: opener,
		out:    Speaker{},
		decode: mp3.Decode,
		log:    log.Named("player"),
		events: make(chan Event, eventBufferSize),
		ctx:    ctx,
		cancel: cancel,
		volume: 1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Events возвращает канал событий воспроизведения. Канал не закрывается,
// о закрытии плеера сообщает Done.
func (p *Player) Events() <-chan Event {
	return p.events
}

// Done закрывается после Close
func (p *Player) Done() <-chan struct{} {
	return p.ctx.Done()
}

// SetSource задает новый источник. Текущий трек выгружается,
// следующий Play начнет воспроизведение с начала.
func (p *Player) SetSource(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.generation.Add(1)
	p.dropStream()
	p.source = path
	p.loading = false
}

// Play начинает или возобновляет воспроизведение
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	if p.source == "" {
		return ErrNoSource
	}

	// Дослушанный трек начинается заново
	if p.current != nil && p.current.ended.Load() {
		p.generation.Add(1)
		p.dropStream()
	}

	if p.current != nil {
		p.out.Lock()
		p.current.ctrl.Paused = false
		p.out.Unlock()
		p.emit(Event{Kind: EventStarted, Source: p.source})
		return nil
	}

	if p.loading {
		return nil
	}

	p.loading = true
	go p.load(p.generation.Load(), p.source)
	return nil
}

// load открывает и декодирует источник, затем подключает его к динамикам
func (p *Player) load(gen uint64, source string) {
	log := p.log.With(zap.String("source", source))

	reader, err := p.opener.Open(p.ctx, source)
	if err != nil {
		p.loadFailed(gen, source, fmt.Errorf("ошибка открытия источника: %w", err))
		return
	}

	decoder, format, err := p.decode(reader)
	if err != nil {
		reader.Close()
		p.loadFailed(gen, source, fmt.Errorf("ошибка декодирования MP3: %w", err))
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || gen != p.generation.Load() {
		// Источник сменился, пока шла загрузка
		decoder.Close()
		reader.Close()
		return
	}
	p.loading = false

	// Инициализируем speaker (только один раз)
	if p.speakerRate == 0 {
		if err := p.out.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
			decoder.Close()
			reader.Close()
			p.emit(Event{Kind: EventFailed, Source: source, Err: fmt.Errorf("ошибка инициализации динамиков: %w", err)})
			return
		}
		p.speakerRate = format.SampleRate
	}

	var s beep.Streamer = decoder
	if format.SampleRate != p.speakerRate {
		s = beep.Resample(resampleQuality, format.SampleRate, p.speakerRate, decoder)
	}

	ctx, cancel := context.WithCancel(p.ctx)
	st := &stream{
		reader:  reader,
		decoder: decoder,
		format:  format,
		ctrl:    &beep.Ctrl{Streamer: s},
		cancel:  cancel,
	}
	st.volume = &effects.Volume{Streamer: st.ctrl, Base: 2}
	applyGain(st.volume, p.volume)
	p.current = st

	p.out.Play(beep.Seq(st.volume, beep.Callback(func() {
		// Вызывается под out.Lock, мьютекс плеера брать нельзя.
		// Миксер отключает закончившийся поток, повторно его не подключить.
		st.ended.Store(true)
		if gen == p.generation.Load() {
			p.emit(Event{Kind: EventEnded, Source: source})
		}
	})))

	go p.monitorProgress(ctx, gen, source, st)

	log.Debug("воспроизведение запущено",
		zap.Int("sample_rate", int(format.SampleRate)),
		zap.Duration("length", format.SampleRate.D(decoder.Len())))
	p.emit(Event{Kind: EventStarted, Source: source})
}

func (p *Player) loadFailed(gen uint64, source string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || gen != p.generation.Load() {
		return
	}
	p.loading = false
	p.log.Warn("не удалось загрузить источник", zap.String("source", source), zap.Error(err))
	p.emit(Event{Kind: EventFailed, Source: source, Err: err})
}

// Pause приостанавливает воспроизведение без сброса позиции.
// Пауза во время загрузки отменяет ее.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.loading {
		p.generation.Add(1)
		p.loading = false
		p.emit(Event{Kind: EventPaused, Source: p.source})
		return
	}
	if p.current == nil {
		return
	}

	p.out.Lock()
	p.current.ctrl.Paused = true
	p.out.Unlock()
	p.emit(Event{Kind: EventPaused, Source: p.source})
}

// SetPosition перематывает текущий трек. Если поток не поддерживает
// перемотку, трек выгружается и следующий Play загрузит его заново.
func (p *Player) SetPosition(position time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return nil
	}

	st := p.current
	p.out.Lock()
	if st.ended.Load() {
		// Поток уже отключен от динамиков, следующий Play загрузит трек заново
		p.out.Unlock()
		p.generation.Add(1)
		p.dropStream()
		return nil
	}
	err := st.decoder.Seek(st.format.SampleRate.N(position))
	p.out.Unlock()

	if err != nil {
		p.generation.Add(1)
		p.dropStream()
		return fmt.Errorf("ошибка перемотки: %w", err)
	}
	return nil
}

// SetVolume устанавливает громкость от 0.0 до 1.0
func (p *Player) SetVolume(level float64) error {
	if math.IsNaN(level) || level < 0 || level > 1 {
		return fmt.Errorf("%w: %v", ErrVolumeRange, level)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.volume = level
	if p.current != nil {
		p.out.Lock()
		applyGain(p.current.volume, level)
		p.out.Unlock()
	}
	return nil
}

// Volume возвращает установленную громкость
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Close закрывает плеер и освобождает ресурсы
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	p.generation.Add(1)
	p.dropStream()
	p.cancel()
	return nil
}

// dropStream отключает текущий трек от динамиков (вызывается под мьютексом)
func (p *Player) dropStream() {
	if p.current == nil {
		return
	}
	st := p.current
	p.current = nil

	st.cancel()
	p.out.Clear()
	st.decoder.Close()
	st.reader.Close()
}

// emit отправляет событие, не блокируя вызывающего. Прогресс не занимает
// последние lifecycleReserve мест буфера, чтобы не вытеснять смену состояния.
func (p *Player) emit(event Event) {
	if event.Kind == EventProgress && len(p.events) >= eventBufferSize-lifecycleReserve {
		p.log.Debug("прогресс отброшен", zap.String("source", event.Source))
		return
	}
	select {
	case p.events <- event:
	default:
		p.log.Warn("событие отброшено", zap.Stringer("kind", event.Kind), zap.String("source", event.Source))
	}
}

// monitorProgress раз в секунду сообщает позицию воспроизведения
func (p *Player) monitorProgress(ctx context.Context, gen uint64, source string, st *stream) {
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if gen != p.generation.Load() {
				return
			}

			p.out.Lock()
			position := st.format.SampleRate.D(st.decoder.Position())
			total := st.format.SampleRate.D(st.decoder.Len())
			paused := st.ctrl.Paused
			p.out.Unlock()

			if paused || st.ended.Load() {
				continue
			}
			p.emit(Event{Kind: EventProgress, Source: source, Position: position, Total: total})
		}
	}
}

// Gain переводит линейную громкость в параметры effects.Volume с основанием 2
func Gain(level float64) (volume float64, silent bool) {
	if level <= 0 {
		return 0, true
	}
	return math.Log2(level), false
}

func applyGain(v *effects.Volume, level float64) {
	v.Volume, v.Silent = Gain(level)
}
