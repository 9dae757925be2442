package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ushis/m3u"
	"go.uber.org/zap"

	"github.com/hazadus/go-playlist/internal/config"
	"github.com/hazadus/go-playlist/internal/notify"
	"github.com/hazadus/go-playlist/internal/playlist"
	"github.com/hazadus/go-playlist/internal/track"
)

const testTrackCount = 12

// captureOutput перехватывает stdout и stderr во время выполнения функции
func captureOutput(t *testing.T, fn func()) string {
	// Сохраняем оригинальные stdout и stderr
	oldStdout := os.Stdout
	oldStderr := os.Stderr

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Ошибка создания pipe: %v", err)
	}

	os.Stdout = w
	os.Stderr = w

	fn()

	// Восстанавливаем оригинальные stdout и stderr
	os.Stdout = oldStdout
	os.Stderr = oldStderr

	w.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("Ошибка чтения результата: %v", err)
	}

	return buf.String()
}

// createTestApplication создает тестовое приложение с медиатекой в mediaRoot
func createTestApplication(t *testing.T, mediaRoot string) *Application {
	t.Helper()

	testConfig := &config.Config{
		MediaRoot:   mediaRoot,
		DownloadDir: filepath.Join(t.TempDir(), "downloads"),
		Volume:      1,
		TrackCount:  testTrackCount,
		LoadDelay:   0,
	}

	app := NewApplication(testConfig)
	if err := app.wire(zap.NewNop()); err != nil {
		t.Fatalf("Ошибка настройки приложения: %v", err)
	}
	return app
}

// writeMediaFile создает файл трека в медиатеке
func writeMediaFile(t *testing.T, mediaRoot string, tr track.Track, content string) {
	t.Helper()

	path := filepath.Join(mediaRoot, filepath.FromSlash(tr.Path))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Ошибка создания каталога: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Ошибка записи файла: %v", err)
	}
}

// TestCmdList проверяет, что команда `list` выводит все треки
func TestCmdList(t *testing.T) {
	app := createTestApplication(t, t.TempDir())
	listCmd := app.createListCommand(context.Background())

	output := captureOutput(t, func() {
		listCmd.SetArgs([]string{})
		if err := listCmd.Execute(); err != nil {
			t.Errorf("Ошибка выполнения команды list: %v", err)
		}
	})

	expectedStrings := []string{
		"📚 Найдено треков: 12",
		"Test 1",
		"Test 12",
		"2:30",
	}
	for _, expected := range expectedStrings {
		if !strings.Contains(output, expected) {
			t.Errorf("Вывод команды list не содержит ожидаемую строку '%s': %s", expected, output)
		}
	}
}

// TestCmdSearch проверяет поиск без учета регистра
func TestCmdSearch(t *testing.T) {
	app := createTestApplication(t, t.TempDir())
	searchCmd := app.createSearchCommand(context.Background())

	output := captureOutput(t, func() {
		searchCmd.SetArgs([]string{"  TEST 1 "})
		if err := searchCmd.Execute(); err != nil {
			t.Errorf("Ошибка выполнения команды search: %v", err)
		}
	})

	// Test 1, Test 10, Test 11, Test 12
	if !strings.Contains(output, "📚 Найдено треков: 4") {
		t.Errorf("Команда search нашла неверное число треков: %s", output)
	}
	if strings.Contains(output, "Test 2 ") {
		t.Errorf("Команда search вывела лишний трек: %s", output)
	}
}

// TestCmdSearchNoResults проверяет сообщение об отсутствии результатов
func TestCmdSearchNoResults(t *testing.T) {
	app := createTestApplication(t, t.TempDir())
	searchCmd := app.createSearchCommand(context.Background())

	output := captureOutput(t, func() {
		searchCmd.SetArgs([]string{"missing"})
		if err := searchCmd.Execute(); err != nil {
			t.Errorf("Ошибка выполнения команды search: %v", err)
		}
	})

	if !strings.Contains(output, "🔍 Аудиофайлы не найдены") {
		t.Errorf("Команда search не сообщила об отсутствии результатов: %s", output)
	}
}

// TestCmdDownload проверяет сохранение локального файла в каталог скачивания
func TestCmdDownload(t *testing.T) {
	mediaRoot := t.TempDir()
	app := createTestApplication(t, mediaRoot)

	target := track.Generate(2)[1]
	writeMediaFile(t, mediaRoot, target, "fake mp3 data")

	downloadCmd := app.createDownloadCommand(context.Background())

	output := captureOutput(t, func() {
		downloadCmd.SetArgs([]string{"2"})
		if err := downloadCmd.Execute(); err != nil {
			t.Errorf("Ошибка выполнения команды download: %v", err)
		}
	})

	if !strings.Contains(output, "✅ Сохранено") {
		t.Errorf("Команда download не отобразила ожидаемый вывод: %s", output)
	}

	saved, err := os.ReadFile(filepath.Join(app.Config.DownloadDir, target.Filename))
	if err != nil {
		t.Fatalf("Файл не сохранен: %v", err)
	}
	if string(saved) != "fake mp3 data" {
		t.Errorf("Неверное содержимое файла: %q", saved)
	}
}

// TestCmdDownloadErrors проверяет ошибки команды download
func TestCmdDownloadErrors(t *testing.T) {
	tests := []struct {
		name     string
		arg      string
		expected string
	}{
		{"неверный ID", "abc", "неверный ID трека"},
		{"неизвестный ID", "99", "трек с ID 99 не найден"},
		{"нет файла", "3", "ошибка скачивания"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			app := createTestApplication(t, t.TempDir())
			downloadCmd := app.createDownloadCommand(context.Background())

			var err error
			captureOutput(t, func() {
				downloadCmd.SetArgs([]string{test.arg})
				err = downloadCmd.Execute()
			})

			if err == nil {
				t.Fatal("Ожидалась ошибка команды download")
			}
			if !strings.Contains(err.Error(), test.expected) {
				t.Errorf("Неожиданная ошибка: %v, ожидалось '%s'", err, test.expected)
			}
		})
	}
}

// TestCmdExport проверяет запись плейлиста m3u в файл
func TestCmdExport(t *testing.T) {
	mediaRoot := t.TempDir()
	app := createTestApplication(t, mediaRoot)
	exportPath := filepath.Join(t.TempDir(), "playlist.m3u")

	exportCmd := app.createExportCommand(context.Background())

	output := captureOutput(t, func() {
		exportCmd.SetArgs([]string{exportPath})
		if err := exportCmd.Execute(); err != nil {
			t.Errorf("Ошибка выполнения команды export: %v", err)
		}
	})

	if !strings.Contains(output, "✅ Экспортировано треков: 12") {
		t.Errorf("Команда export не отобразила ожидаемый вывод: %s", output)
	}

	f, err := os.Open(exportPath)
	if err != nil {
		t.Fatalf("Ошибка открытия плейлиста: %v", err)
	}
	defer f.Close()

	plist, err := m3u.Parse(f)
	if err != nil {
		t.Fatalf("Ошибка разбора плейлиста: %v", err)
	}
	if len(plist) != testTrackCount {
		t.Fatalf("Ожидалось %d треков в плейлисте, получено %d", testTrackCount, len(plist))
	}

	first := track.Generate(1)[0]
	if plist[0].Title != "Test 1" {
		t.Errorf("Ожидалось название Test 1, получено: %s", plist[0].Title)
	}
	if plist[0].Time != 150 {
		t.Errorf("Ожидалась длительность 150, получено: %d", plist[0].Time)
	}
	expectedPath := filepath.Join(mediaRoot, "MP3", first.Filename)
	if plist[0].Path != expectedPath {
		t.Errorf("Ожидался путь %s, получено: %s", expectedPath, plist[0].Path)
	}
}

// TestExportHTTPRoot проверяет, что пути в плейлисте экранируются для http
func TestExportHTTPRoot(t *testing.T) {
	app := createTestApplication(t, "https://cdn.example.com/audio")

	var buf bytes.Buffer
	count, err := app.exportTracks(track.Generate(1), &buf)
	if err != nil {
		t.Fatalf("Ошибка экспорта: %v", err)
	}
	if count != 1 {
		t.Errorf("Ожидался 1 трек, получено %d", count)
	}
	if !strings.Contains(buf.String(), "https://cdn.example.com/audio/MP3/01%20Test%201") {
		t.Errorf("Плейлист не содержит экранированный адрес: %s", buf.String())
	}
}

// TestCmdProbeMissingFile проверяет ошибку для отсутствующего файла
func TestCmdProbeMissingFile(t *testing.T) {
	app := createTestApplication(t, t.TempDir())
	probeCmd := app.createProbeCommand(context.Background())

	var err error
	captureOutput(t, func() {
		probeCmd.SetArgs([]string{"MP3/missing.mp3"})
		err = probeCmd.Execute()
	})

	if err == nil {
		t.Error("Ожидалась ошибка для отсутствующего файла")
	}
}

// TestRootCommand проверяет состав подкоманд
func TestRootCommand(t *testing.T) {
	app := NewApplication(config.Default())
	rootCmd := app.createRootCommand(context.Background())

	for _, name := range []string{"tui", "list", "search", "play", "download", "export", "probe"} {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("Команда %s не зарегистрирована", name)
		}
	}

	if rootCmd.PersistentFlags().Lookup("verbose") == nil {
		t.Error("Флаг --verbose не зарегистрирован")
	}
}

func TestOwnsTerminal(t *testing.T) {
	app := NewApplication(config.Default())
	rootCmd := app.createRootCommand(context.Background())

	tests := map[string]bool{
		"tui":    true,
		"play":   true,
		"list":   false,
		"export": false,
	}
	for name, expected := range tests {
		cmd, _, _ := rootCmd.Find([]string{name})
		if result := ownsTerminal(cmd); result != expected {
			t.Errorf("ownsTerminal(%s) = %v; expected %v", name, result, expected)
		}
	}
	if !ownsTerminal(rootCmd) {
		t.Error("Корневая команда запускает TUI и должна владеть терминалом")
	}
}

func TestWireWithS3(t *testing.T) {
	cfg := config.Default()
	cfg.AwsBucketName = "test-bucket"
	cfg.AwsRegion = "us-east-1"
	cfg.AwsEndpoint = "http://localhost:9000"

	app := NewApplication(cfg)
	if err := app.wire(zap.NewNop()); err != nil {
		t.Fatalf("Ошибка настройки приложения: %v", err)
	}
	if app.Resolver.Store() == nil {
		t.Fatal("Хранилище S3 не подключено")
	}
	if app.Resolver.Store().Bucket() != "test-bucket" {
		t.Errorf("Ожидался бакет test-bucket, получено: %s", app.Resolver.Store().Bucket())
	}
}

func TestWireWithoutS3(t *testing.T) {
	app := createTestApplication(t, t.TempDir())
	if app.Resolver.Store() != nil {
		t.Error("Хранилище S3 не должно подключаться без настроек")
	}
}

func TestKeyReader(t *testing.T) {
	kr := newKeyReader(strings.NewReader(" \x1b[C\x1b[Dsd+-qx"))

	expected := []consoleKey{
		keySpace, keyRight, keyLeft, keyStop, keyDownload,
		keyVolumeUp, keyVolumeDown, keyQuit, keyNone,
	}
	for i, want := range expected {
		key, err := kr.Next()
		if err != nil {
			t.Fatalf("Клавиша %d: неожиданная ошибка %v", i, err)
		}
		if key != want {
			t.Errorf("Клавиша %d: ожидалось %d, получено %d", i, want, key)
		}
	}

	if _, err := kr.Next(); err != io.EOF {
		t.Errorf("Ожидался io.EOF в конце потока, получено: %v", err)
	}
}

func TestReadKeysStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Канал никто не читает, отправка возможна только до отмены
	keys := make(chan consoleKey)
	done := make(chan struct{})
	go func() {
		readKeys(ctx, newKeyReader(strings.NewReader("   ")), keys)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("readKeys не завершился после отмены контекста")
	}

	if _, ok := <-keys; ok {
		t.Error("Канал клавиш должен быть закрыт")
	}
}

func TestReadKeysForwardsUntilEOF(t *testing.T) {
	keys := make(chan consoleKey, 4)
	readKeys(context.Background(), newKeyReader(strings.NewReader("x q")), keys)

	var got []consoleKey
	for key := range keys {
		got = append(got, key)
	}
	if len(got) != 2 || got[0] != keySpace || got[1] != keyQuit {
		t.Errorf("Ожидались клавиши [пробел, q], получено %v", got)
	}
}

func TestConsoleHost(t *testing.T) {
	var buf bytes.Buffer
	host := newConsoleHost(&buf)

	host.Notify(notify.Error, "Ошибка воспроизведения")
	host.SetVolume(0.3)
	host.SetNowPlaying("Test 7")
	host.SetProgress(75*time.Second, 150*time.Second)

	output := buf.String()
	for _, expected := range []string{"❌ Ошибка воспроизведения", "🔊 Громкость: 30%", "🎵 Сейчас играет: Test 7", "50.0%", "1:15 / 2:30"} {
		if !strings.Contains(output, expected) {
			t.Errorf("Вывод не содержит '%s': %q", expected, output)
		}
	}
}

// fakePlayback фиксирует вызовы контроллера
type fakePlayback struct {
	sources []string
	volume  float64
}

func (f *fakePlayback) SetSource(path string) {
	f.sources = append(f.sources, path)
}

func (f *fakePlayback) Play() error {
	return nil
}

func (f *fakePlayback) Pause() {}

func (f *fakePlayback) SetPosition(time.Duration) error {
	return nil
}

func (f *fakePlayback) SetVolume(level float64) error {
	f.volume = level
	return nil
}

func TestConsoleKeyAction(t *testing.T) {
	playback := &fakePlayback{}
	host := newConsoleHost(io.Discard)
	controller := playlist.New(playlist.Deps{
		Playback: playback,
		Display:  host,
		Notifier: host,
	})
	controller.ApplyLoaded(track.Generate(3), nil)

	if !consoleKeyAction(controller, keyRight) {
		t.Fatal("Стрелка вправо не должна завершать плеер")
	}
	if controller.State().Current != 0 {
		t.Errorf("Ожидался текущий трек 0, получено: %d", controller.State().Current)
	}

	consoleKeyAction(controller, keyRight)
	consoleKeyAction(controller, keyLeft)
	if controller.State().Current != 0 {
		t.Errorf("Ожидался текущий трек 0 после возврата, получено: %d", controller.State().Current)
	}

	consoleKeyAction(controller, keyVolumeDown)
	if playback.volume != 0.9 {
		t.Errorf("Ожидалась громкость 0.9, получено: %v", playback.volume)
	}

	// Скачивание без сервиса не должно завершать плеер
	if !consoleKeyAction(controller, keyDownload) {
		t.Error("Клавиша d не должна завершать плеер")
	}

	if consoleKeyAction(controller, keyQuit) {
		t.Error("Клавиша q должна завершать плеер")
	}
}
