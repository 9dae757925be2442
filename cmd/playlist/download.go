package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-playlist/internal/download"
	"github.com/hazadus/go-playlist/internal/utils"
)

// createDownloadCommand создает команду download с привязкой к экземпляру приложения
func (app *Application) createDownloadCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "download [trackid]",
		Short: "Download a track by its ID",
		Long:  `Save the audio file of a playlist track into the download directory.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			trackID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("неверный ID трека: %s", args[0])
			}
			return app.downloadByID(ctx, trackID)
		},
	}
}

func (app *Application) downloadByID(ctx context.Context, trackID int) error {
	t, err := app.findTrack(ctx, trackID)
	if err != nil {
		return err
	}

	fmt.Printf("⬇️  Скачиваем: %s\n", t.Filename)

	app.Downloads.OnProgress(func(_ string, read int64) {
		fmt.Printf("\r📦 Получено: %s", download.FormatFileSize(read))
	})
	defer app.Downloads.OnProgress(nil)

	result, err := app.Downloads.Save(ctx, t.Path, t.Filename)
	if err != nil {
		fmt.Println()
		return fmt.Errorf("ошибка скачивания: %w", err)
	}

	fmt.Printf("\r✅ Сохранено: %s (%s)\n", result.Path, download.FormatFileSize(result.Bytes))
	if result.Info.Duration > 0 {
		fmt.Printf("   Продолжительность: %s\n", utils.FormatDuration(result.Info.Duration))
	}
	return nil
}
