// Package metadata извлекает теги и длительность из аудиопотоков
package metadata

import (
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/gopxl/beep/mp3"
)

// UnknownArtist подставляется, когда исполнителя нельзя определить
const UnknownArtist = "Unknown Artist"

// Info описывает аудиофайл
type Info struct {
	Artist   string
	Title    string
	Album    string
	Number   int // Номер трека, 0 если неизвестен
	Duration time.Duration
	Size     int64
	Tagged   bool // Значения взяты из тегов, а не из имени файла
}

// Probe читает теги из r и вычисляет длительность MP3.
// Если тегов нет, метаданные восстанавливаются из имени source.
// Ошибка возвращается только когда поток не удается декодировать.
func Probe(r io.ReadSeeker, source string) (Info, error) {
	info := Tags(r, source)

	size, err := r.Seek(0, io.SeekEnd)
	if err == nil {
		info.Size = size
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return info, fmt.Errorf("ошибка перемотки потока: %w", err)
	}

	duration, err := Duration(r)
	if err != nil {
		return info, err
	}
	info.Duration = duration
	return info, nil
}

// Tags извлекает теги, при их отсутствии разбирает имя файла
func Tags(r io.ReadSeeker, source string) Info {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return FromName(source)
	}

	m, err := tag.ReadFrom(r)
	if err != nil || (m.Title() == "" && m.Artist() == "") {
		return FromName(source)
	}

	number, _ := m.Track()
	return Info{
		Artist: m.Artist(),
		Title:  m.Title(),
		Album:  m.Album(),
		Number: number,
		Tagged: true,
	}
}

// Duration декодирует MP3 для вычисления длительности
func Duration(r io.Reader) (time.Duration, error) {
	rc, ok := r.(io.ReadCloser)
	if !ok {
		rc = io.NopCloser(r)
	}

	streamer, format, err := mp3.Decode(rc)
	if err != nil {
		return 0, fmt.Errorf("ошибка декодирования MP3: %w", err)
	}
	defer streamer.Close()

	return format.SampleRate.D(streamer.Len()), nil
}

// FromName восстанавливает метаданные из имени файла.
// Поддерживаются формы "NN Title", "Artist - Title" и их сочетание.
func FromName(source string) Info {
	name := path.Base(strings.ReplaceAll(source, "\\", "/"))
	name = strings.TrimSuffix(name, path.Ext(name))

	info := Info{Artist: UnknownArtist}

	// Ведущий номер трека: "07 Test 7"
	if head, rest, found := strings.Cut(name, " "); found {
		if number, err := strconv.Atoi(head); err == nil && number > 0 {
			info.Number = number
			name = rest
		}
	}

	parts := strings.Split(name, " - ")
	if len(parts) >= 2 {
		info.Artist = strings.TrimSpace(parts[0])
		info.Title = strings.TrimSpace(strings.Join(parts[1:], " - "))
		return info
	}

	info.Title = strings.TrimSpace(name)
	return info
}
