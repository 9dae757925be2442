package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-playlist/internal/track"
	"github.com/hazadus/go-playlist/internal/utils"
)

// createListCommand создает команду list с привязкой к экземпляру приложения
func (app *Application) createListCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tracks of the playlist",
		Long:  `Load the playlist and display all tracks with their IDs.`,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			tracks, err := app.Source.Load(ctx)
			if err != nil {
				return fmt.Errorf("ошибка загрузки списка: %w", err)
			}
			printTracks(tracks, track.Filter(tracks, ""))
			return nil
		},
	}
}

// createSearchCommand создает команду search
func (app *Application) createSearchCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "search [term]",
		Short: "Search tracks by title or file name",
		Long:  `Display tracks whose title or file name contains the term, case-insensitive.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			tracks, err := app.Source.Load(ctx)
			if err != nil {
				return fmt.Errorf("ошибка загрузки списка: %w", err)
			}
			term := ""
			if len(args) == 1 {
				term = args[0]
			}
			printTracks(tracks, track.Filter(tracks, term))
			return nil
		},
	}
}

func printTracks(tracks []track.Track, indices []int) {
	if len(indices) == 0 {
		fmt.Println("🔍 Аудиофайлы не найдены")
		return
	}

	fmt.Printf("📚 Найдено треков: %d\n\n", len(indices))

	// Выводим заголовок таблицы
	fmt.Println(utils.PadRight("ID", 5) + utils.PadRight("Название", 22) +
		utils.PadRight("Файл", 46) + "Длительность")
	fmt.Println(strings.Repeat("-", 85))

	for _, index := range indices {
		t := tracks[index]
		fmt.Println(utils.PadRight(fmt.Sprint(t.ID), 5) +
			utils.PadRight(utils.TruncateString(t.Title, 20), 22) +
			utils.PadRight(utils.TruncateString(t.Filename, 44), 46) +
			t.Duration)
	}

	fmt.Println()
	fmt.Println("💡 Используйте 'playlist play [ID]' для воспроизведения трека")
}

// findTrack загружает список и ищет трек по ID
func (app *Application) findTrack(ctx context.Context, id int) (track.Track, error) {
	tracks, err := app.Source.Load(ctx)
	if err != nil {
		return track.Track{}, fmt.Errorf("ошибка загрузки списка: %w", err)
	}
	for _, t := range tracks {
		if t.ID == id {
			return t, nil
		}
	}
	return track.Track{}, fmt.Errorf("трек с ID %d не найден", id)
}
