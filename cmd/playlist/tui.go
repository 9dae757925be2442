package main

import (
	"github.com/spf13/cobra"

	"github.com/hazadus/go-playlist/internal/player"
	"github.com/hazadus/go-playlist/internal/tui"
	"github.com/hazadus/go-playlist/internal/tui/app"
)

// createTUICommand создает команду tui с привязкой к экземпляру приложения
func (app *Application) createTUICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Launch TUI (Terminal User Interface)",
		Long:  `Launch interactive terminal user interface for searching, playing and downloading tracks.`,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.launchTUI()
		},
	}
}

func (app *Application) launchTUI() error {
	p := player.NewPlayer(app.Resolver, app.Logger)
	defer p.Close()

	tuiApp := tui.NewApp(appOptions(app, p))
	return tuiApp.Run()
}

// appOptions собирает зависимости главной модели TUI
func appOptions(application *Application, p *player.Player) app.Options {
	return app.Options{
		Source:    application.Source,
		Playback:  p,
		Events:    p.Events(),
		Downloads: application.Downloads,
		Logger:    application.Logger,
		Volume:    application.Config.Volume,
	}
}
