// Package download сохраняет аудиофайлы медиатеки в локальный каталог
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/hazadus/go-playlist/internal/media"
	"github.com/hazadus/go-playlist/internal/metadata"
)

const maxFileNameLength = 200

// ErrEmptyFileName возвращается, если из имени не осталось допустимых символов
var ErrEmptyFileName = errors.New("пустое имя файла")

var unsafeChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// Source - источник ресурсов для скачивания
type Source interface {
	Check(path string) (media.Location, error)
	OpenLocation(ctx context.Context, loc media.Location) (io.ReadCloser, error)
	Store() media.ObjectStore
}

// Result содержит результат скачивания
type Result struct {
	FileName string
	Path     string // Куда сохранен файл
	Location media.Location
	Bytes    int64
	Info     metadata.Info
}

// Job - отложенная передача файла
type Job func(ctx context.Context) (*Result, error)

// Runner запускает передачу. Реализация решает, где и когда она выполнится,
// и сама обрабатывает результат.
type Runner interface {
	Run(fileName string, job Job)
}

// RunnerFunc адаптер функции к Runner
type RunnerFunc func(fileName string, job Job)

// Run вызывает f
func (f RunnerFunc) Run(fileName string, job Job) {
	f(fileName, job)
}

// Service управляет скачиванием файлов
type Service struct {
	source     Source
	dir        string
	runner     Runner
	log        *zap.Logger
	onProgress func(fileName string, read int64)
}

// NewService создает сервис скачивания в каталог dir.
// По умолчанию передача выполняется в отдельной горутине.
func NewService(source Source, dir string, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		source: source,
		dir:    dir,
		log:    log.Named("download"),
	}
	s.runner = RunnerFunc(s.runInBackground)
	return s
}

// SetRunner заменяет способ запуска передачи
func (s *Service) SetRunner(runner Runner) {
	if runner != nil {
		s.runner = runner
	}
}

// OnProgress задает обработчик прогресса передачи
func (s *Service) OnProgress(fn func(fileName string, read int64)) {
	s.onProgress = fn
}

// Dir возвращает каталог скачивания
func (s *Service) Dir() string {
	return s.dir
}

// Download проверяет путь и запускает передачу. Ошибка означает,
// что передачу начать нельзя; ошибки самой передачи получает Runner.
func (s *Service) Download(path, fileName string) error {
	if _, err := s.source.Check(path); err != nil {
		return err
	}
	if _, err := targetName(path, fileName); err != nil {
		return err
	}

	s.runner.Run(fileName, func(ctx context.Context) (*Result, error) {
		return s.Save(ctx, path, fileName)
	})
	return nil
}

// Save сохраняет ресурс path в каталог скачивания под именем fileName.
// При ошибке частично записанный файл удаляется.
func (s *Service) Save(ctx context.Context, path, fileName string) (*Result, error) {
	loc, err := s.source.Check(path)
	if err != nil {
		return nil, err
	}

	name, err := targetName(path, fileName)
	if err != nil {
		return nil, err
	}

	// Создаем директорию если она не существует
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, fmt.Errorf("ошибка создания директории: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".*.part")
	if err != nil {
		return nil, fmt.Errorf("ошибка создания файла: %w", err)
	}
	tmpPath := tmp.Name()

	written, err := s.transfer(ctx, loc, name, tmp)
	if closeErr := tmp.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("ошибка записи файла: %w", closeErr)
	}
	if err != nil {
		os.Remove(tmpPath)
		return nil, err
	}

	target := filepath.Join(s.dir, name)
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка сохранения файла: %w", err)
	}

	result := &Result{
		FileName: name,
		Path:     target,
		Location: loc,
		Bytes:    written,
		Info:     s.probe(target),
	}

	s.log.Info("файл скачан",
		zap.String("file", target),
		zap.Stringer("source", loc),
		zap.String("size", FormatFileSize(written)),
		zap.String("title", result.Info.Title),
		zap.Duration("duration", result.Info.Duration))

	return result, nil
}

func (s *Service) transfer(ctx context.Context, loc media.Location, name string, file *os.File) (int64, error) {
	if loc.Kind == media.KindS3 {
		store := s.source.Store()
		if store == nil {
			return 0, media.ErrNoStore
		}
		// s3manager качает частями параллельно, поэтому нужен io.WriterAt
		return store.DownloadTo(ctx, loc.Bucket, loc.Key, file)
	}

	rc, err := s.source.OpenLocation(ctx, loc)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	reader := &ProgressReader{Reader: rc, Ctx: ctx}
	if s.onProgress != nil {
		reader.OnProgress = func(read int64) { s.onProgress(name, read) }
	}

	written, err := io.Copy(file, reader)
	if err != nil {
		return written, fmt.Errorf("ошибка скачивания: %w", err)
	}
	return written, nil
}

// probe читает метаданные сохраненного файла для журнала
func (s *Service) probe(target string) metadata.Info {
	file, err := os.Open(target)
	if err != nil {
		return metadata.FromName(target)
	}
	defer file.Close()

	info, err := metadata.Probe(file, target)
	if err != nil {
		s.log.Debug("не удалось прочитать метаданные", zap.String("file", target), zap.Error(err))
	}
	return info
}

func (s *Service) runInBackground(fileName string, job Job) {
	go func() {
		if _, err := job(context.Background()); err != nil {
			s.log.Error("ошибка скачивания", zap.String("file", fileName), zap.Error(err))
		}
	}()
}

// targetName выбирает имя файла: указанное или последний сегмент пути
func targetName(p, fileName string) (string, error) {
	name := sanitizeFileName(fileName)
	if name == "" {
		name = sanitizeFileName(path.Base(strings.ReplaceAll(p, "\\", "/")))
	}
	if name == "" || name == "." || name == ".." {
		return "", ErrEmptyFileName
	}
	return name, nil
}

// sanitizeFileName очищает имя файла от недопустимых символов
func sanitizeFileName(name string) string {
	name = unsafeChars.ReplaceAllString(name, "_")

	// Убираем лишние пробелы
	name = strings.TrimSpace(name)

	// Ограничиваем длину имени файла, не разрезая символы
	if len(name) > maxFileNameLength {
		cut := maxFileNameLength
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = name[:cut]
	}

	return name
}

// ProgressReader структура для отслеживания прогресса чтения
type ProgressReader struct {
	io.Reader
	Ctx        context.Context
	OnProgress func(int64)
	bytesRead  int64
}

func (pr *ProgressReader) Read(p []byte) (n int, err error) {
	if pr.Ctx != nil {
		if err := pr.Ctx.Err(); err != nil {
			return 0, err
		}
	}
	n, err = pr.Reader.Read(p)
	pr.bytesRead += int64(n)
	if pr.OnProgress != nil && n > 0 {
		pr.OnProgress(pr.bytesRead)
	}
	return n, err
}

// FormatFileSize форматирует размер файла в читаемом виде
func FormatFileSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
