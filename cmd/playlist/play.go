package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-playlist/internal/download"
	"github.com/hazadus/go-playlist/internal/notify"
	"github.com/hazadus/go-playlist/internal/player"
	"github.com/hazadus/go-playlist/internal/playlist"
	"github.com/hazadus/go-playlist/internal/utils"
)

// createPlayCommand создает команду play с привязкой к экземпляру приложения
func (app *Application) createPlayCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "play [trackid]",
		Short: "Play the playlist in the console",
		Long:  `Play tracks of the playlist starting from the given track ID or from the first track.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			trackID := 0
			if len(args) == 1 {
				id, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("неверный ID трека: %s", args[0])
				}
				trackID = id
			}
			return app.playByID(ctx, trackID)
		},
	}
}

// enableRawMode включает режим raw для терминала (без буферизации и echo)
func enableRawMode() {
	cmd := exec.Command("stty", "-echo", "-icanon")
	cmd.Stdin = os.Stdin
	_ = cmd.Run() // Без stty клавиши просто читаются построчно
}

// disableRawMode восстанавливает нормальный режим терминала
func disableRawMode() {
	cmd := exec.Command("stty", "echo", "icanon")
	cmd.Stdin = os.Stdin
	_ = cmd.Run()
}

// consoleKey - клавиша консольного плеера
type consoleKey int

const (
	keyNone consoleKey = iota
	keySpace
	keyRight
	keyLeft
	keyStop
	keyDownload
	keyVolumeUp
	keyVolumeDown
	keyQuit
)

// keyReader разбирает поток байт терминала на клавиши,
// включая escape-последовательности стрелок
type keyReader struct {
	r *bufio.Reader
}

func newKeyReader(r io.Reader) *keyReader {
	return &keyReader{r: bufio.NewReader(r)}
}

// Next читает следующую клавишу. Неизвестные байты возвращаются как keyNone.
func (kr *keyReader) Next() (consoleKey, error) {
	b, err := kr.r.ReadByte()
	if err != nil {
		return keyNone, err
	}

	switch b {
	case ' ', '\n', '\r':
		return keySpace, nil
	case 's':
		return keyStop, nil
	case 'd':
		return keyDownload, nil
	case '+', '=':
		return keyVolumeUp, nil
	case '-':
		return keyVolumeDown, nil
	case 'q':
		return keyQuit, nil
	case 0x1b:
		// ESC [ C - вправо, ESC [ D - влево
		if next, err := kr.r.ReadByte(); err != nil || next != '[' {
			return keyNone, err
		}
		arrow, err := kr.r.ReadByte()
		if err != nil {
			return keyNone, err
		}
		switch arrow {
		case 'C':
			return keyRight, nil
		case 'D':
			return keyLeft, nil
		}
	}
	return keyNone, nil
}

// consoleHost выводит состояние контроллера в консоль построчно
type consoleHost struct {
	out io.Writer
}

func newConsoleHost(out io.Writer) *consoleHost {
	return &consoleHost{out: out}
}

// Render ничего не делает: консольный плеер не показывает список
func (h *consoleHost) Render(_ []playlist.Row) {}

// ShowEmpty сообщает о пустом списке
func (h *consoleHost) ShowEmpty() {
	h.line("🔍 Аудиофайлы не найдены")
}

// Highlight ничего не делает
func (h *consoleHost) Highlight(_ int) {}

// SetNowPlaying печатает название текущего трека
func (h *consoleHost) SetNowPlaying(title string) {
	h.line("🎵 Сейчас играет: " + title)
}

// SetPlaying печатает состояние воспроизведения
func (h *consoleHost) SetPlaying(playing bool) {
	if playing {
		h.line("▶️  Воспроизведение")
	} else {
		h.line("⏸️  Пауза")
	}
}

// SetProgress перерисовывает строку прогресса
func (h *consoleHost) SetProgress(position, total time.Duration) {
	if total > 0 {
		percent := float64(position) / float64(total) * 100
		fmt.Fprintf(h.out, "\r⏱️  %.1f%% | %s / %s", percent,
			utils.FormatDuration(position), utils.FormatDuration(total))
		return
	}
	fmt.Fprintf(h.out, "\r⏱️  %s", utils.FormatDuration(position))
}

// SetVolume печатает громкость
func (h *consoleHost) SetVolume(level float64) {
	h.line(fmt.Sprintf("🔊 Громкость: %d%%", int(level*100+0.5)))
}

// Notify печатает уведомление с иконкой уровня
func (h *consoleHost) Notify(level notify.Level, message string) {
	icon := "ℹ️ "
	switch level {
	case notify.Success:
		icon = "✅"
	case notify.Error:
		icon = "❌"
	}
	h.line(icon + " " + message)
}

func (h *consoleHost) line(text string) {
	// Очищаем строку прогресса перед выводом
	fmt.Fprintf(h.out, "\r\033[K%s\n", text)
}

// downloadOutcome - результат фоновой передачи для цикла событий
type downloadOutcome struct {
	fileName string
	result   *download.Result
	err      error
}

// playByID проигрывает список в консоли начиная с трека trackID.
// trackID 0 запускает первый трек.
func (app *Application) playByID(ctx context.Context, trackID int) error {
	// Отмена останавливает фоновые горутины после выхода из цикла
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := player.NewPlayer(app.Resolver, app.Logger)
	defer p.Close()

	host := newConsoleHost(os.Stdout)

	// Передачи выполняются в фоне, а результат обрабатывается в цикле событий
	downloads := make(chan downloadOutcome, 1)
	app.Downloads.SetRunner(download.RunnerFunc(func(fileName string, job download.Job) {
		go func() {
			result, err := job(ctx)
			select {
			case downloads <- downloadOutcome{fileName: fileName, result: result, err: err}:
			case <-ctx.Done():
			}
		}()
	}))

	controller := playlist.New(playlist.Deps{
		Source:     app.Source,
		Playback:   p,
		Display:    host,
		Notifier:   host,
		Downloader: app.Downloads,
		Logger:     app.Logger,
	})

	fmt.Println("⏳ Загрузка списка...")
	controller.LoadTracks(ctx)
	if !controller.Loaded() || len(controller.Tracks()) == 0 {
		return fmt.Errorf("список треков пуст")
	}

	if err := controller.SetVolume(app.Config.Volume); err != nil {
		return err
	}

	if trackID == 0 {
		controller.ResumeOrStartFirst()
	} else {
		index := controller.IndexOf(trackID)
		if index == playlist.NoCurrent {
			return fmt.Errorf("трек с ID %d не найден", trackID)
		}
		controller.Play(index)
	}

	fmt.Printf("🎮 Управление:\n")
	fmt.Printf("   [Пробел] - пауза/воспроизведение\n")
	fmt.Printf("   [→/←] - следующий/предыдущий трек\n")
	fmt.Printf("   [s] - стоп, [d] - скачать, [+/-] - громкость\n")
	fmt.Printf("   [q] или [Ctrl+C] - выйти\n")
	fmt.Println()

	// Включаем raw режим для чтения одиночных клавиш
	enableRawMode()
	defer disableRawMode()

	keys := make(chan consoleKey)
	go readKeys(ctx, newKeyReader(os.Stdin), keys)

	// Главный цикл обработки событий
	for {
		select {
		case key, ok := <-keys:
			if !ok {
				// stdin закрыт, выйти можно только по Ctrl+C
				keys = nil
				continue
			}
			if !consoleKeyAction(controller, key) {
				controller.Stop()
				fmt.Println("\n⏹️  Воспроизведение остановлено")
				return nil
			}
		case ev := <-p.Events():
			controller.HandleEvent(ev)
			if ev.Kind == player.EventEnded {
				host.line("✅ Трек завершен, [→] - следующий")
			}
		case outcome := <-downloads:
			if outcome.err != nil {
				controller.DownloadFailed(outcome.fileName, outcome.err)
				continue
			}
			controller.DownloadSaved(outcome.result.Path)
		case <-ctx.Done():
			controller.Stop()
			fmt.Println("\n⏹️  Воспроизведение остановлено пользователем")
			return nil
		}
	}
}

// readKeys пересылает клавиши в канал до ошибки чтения или отмены ctx
func readKeys(ctx context.Context, kr *keyReader, keys chan<- consoleKey) {
	defer close(keys)
	for {
		key, err := kr.Next()
		if err != nil {
			return
		}
		if key == keyNone {
			continue
		}
		select {
		case keys <- key:
		case <-ctx.Done():
			return
		}
	}
}

// consoleKeyAction применяет клавишу к контроллеру.
// Возвращает false, если нужно выйти.
func consoleKeyAction(controller *playlist.Controller, key consoleKey) bool {
	switch key {
	case keySpace:
		controller.HandleKey(playlist.KeySpace, false)
	case keyRight:
		controller.HandleKey(playlist.KeyRight, false)
	case keyLeft:
		controller.HandleKey(playlist.KeyLeft, false)
	case keyStop:
		controller.Stop()
	case keyDownload:
		if current := controller.State().Current; current != playlist.NoCurrent {
			t := controller.Tracks()[current]
			controller.Download(t.Path, t.Filename)
		}
	case keyVolumeUp:
		controller.AdjustVolume(playlist.VolumeStep)
	case keyVolumeDown:
		controller.AdjustVolume(-playlist.VolumeStep)
	case keyQuit:
		return false
	}
	return true
}
