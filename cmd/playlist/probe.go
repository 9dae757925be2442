package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-playlist/internal/download"
	"github.com/hazadus/go-playlist/internal/utils"
)

// createProbeCommand создает команду probe
func (app *Application) createProbeCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "probe [path]",
		Short: "Show tags and duration of an audio file",
		Long:  `Read ID3 tags and mp3 duration of a resource resolved against the media root.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			loc, err := app.Resolver.Locate(args[0])
			if err != nil {
				return err
			}

			info, err := app.Resolver.Probe(ctx, args[0])
			if err != nil {
				return fmt.Errorf("ошибка чтения метаданных: %w", err)
			}

			fmt.Printf("🎵 %s\n", loc)
			fmt.Printf("   Исполнитель: %s\n", info.Artist)
			fmt.Printf("   Название: %s\n", info.Title)
			if info.Album != "" {
				fmt.Printf("   Альбом: %s\n", info.Album)
			}
			if info.Number > 0 {
				fmt.Printf("   Номер: %d\n", info.Number)
			}
			fmt.Printf("   Продолжительность: %s\n", utils.FormatDuration(info.Duration))
			fmt.Printf("   Размер: %s\n", download.FormatFileSize(info.Size))
			if !info.Tagged {
				fmt.Println("   ℹ️  Теги не найдены, данные получены из имени файла")
			}
			return nil
		},
	}
}
