package track

import (
	"context"
	"fmt"
	"time"
)

// Source асинхронно поставляет список треков
type Source interface {
	Load(ctx context.Context) ([]Track, error)
}

// SourceFunc позволяет использовать функцию как Source
type SourceFunc func(ctx context.Context) ([]Track, error)

// Load реализует Source
func (f SourceFunc) Load(ctx context.Context) ([]Track, error) {
	return f(ctx)
}

// Synthetic генерирует тестовый список треков с искусственной задержкой,
// имитирующей запрос к серверу
type Synthetic struct {
	Count int
	Delay time.Duration
}

// NewSynthetic создает синтетический источник
func NewSynthetic(count int, delay time.Duration) *Synthetic {
	return &Synthetic{Count: count, Delay: delay}
}

// Load ждет Delay и возвращает Count треков. Отмена контекста прерывает загрузку.
func (s *Synthetic) Load(ctx context.Context) ([]Track, error) {
	if s.Delay > 0 {
		timer := time.NewTimer(s.Delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("загрузка списка прервана: %w", ctx.Err())
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("загрузка списка прервана: %w", err)
	}

	return Generate(s.Count), nil
}

// Generate создает count синтетических треков с ID от 1 до count
func Generate(count int) []Track {
	tracks := make([]Track, 0, count)
	for i := 1; i <= count; i++ {
		filename := fmt.Sprintf("%02d Test %d（2026 八年级）.mp3", i, i)
		tracks = append(tracks, Track{
			ID:       i,
			Title:    fmt.Sprintf("Test %d", i),
			Filename: filename,
			Path:     "MP3/" + filename,
			Duration: "2:30",
		})
	}
	return tracks
}
