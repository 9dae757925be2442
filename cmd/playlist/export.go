package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/ushis/m3u"
	"go.uber.org/zap"

	"github.com/hazadus/go-playlist/internal/track"
	"github.com/hazadus/go-playlist/internal/utils"
)

// createExportCommand создает команду export
func (app *Application) createExportCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Export the playlist as m3u",
		Long:  `Write the playlist with resolved track locations in m3u format to a file or stdout.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			tracks, err := app.Source.Load(ctx)
			if err != nil {
				return fmt.Errorf("ошибка загрузки списка: %w", err)
			}

			if len(args) == 0 || args[0] == "-" {
				_, err := app.exportTracks(tracks, os.Stdout)
				return err
			}

			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("ошибка создания файла плейлиста: %w", err)
			}
			defer f.Close()

			count, err := app.exportTracks(tracks, f)
			if err != nil {
				return err
			}
			fmt.Printf("✅ Экспортировано треков: %d в %s\n", count, args[0])
			return nil
		},
	}
}

// exportTracks записывает треки в формате m3u.
// Треки с неразрешимым путем пропускаются.
func (app *Application) exportTracks(tracks []track.Track, w io.Writer) (int, error) {
	plist := make(m3u.Playlist, 0, len(tracks))
	for _, t := range tracks {
		loc, err := app.Resolver.Locate(t.Path)
		if err != nil {
			app.Logger.Warn("трек пропущен при экспорте", zap.String("path", t.Path), zap.Error(err))
			continue
		}

		// Неверная метка длительности записывается как неизвестная
		seconds := int64(-1)
		if d, err := utils.ParseDurationLabel(t.Duration); err == nil {
			seconds = int64(d.Seconds())
		}

		plist = append(plist, m3u.Track{
			Title: t.Title,
			Path:  loc.String(),
			Time:  seconds,
		})
	}

	if _, err := plist.WriteTo(w); err != nil {
		return 0, fmt.Errorf("ошибка записи плейлиста: %w", err)
	}
	return len(plist), nil
}
