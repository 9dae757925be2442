package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-playlist/internal/logger"
)

// createRootCommand создает корневую команду с настроенными подкомандами.
// Без подкоманды запускается TUI.
func (app *Application) createRootCommand(ctx context.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "playlist",
		Short: "An audio playlist player for the terminal",
		Long:  `Browse, search, play and download tracks of an audio playlist from a local directory, HTTP server or S3 bucket.`,
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log, err := logger.New(logger.Config{
				Level:      app.Config.LogLevel,
				OutputPath: app.Config.LogFile,
				Console:    app.verbose && !ownsTerminal(cmd),
			})
			if err != nil {
				return err
			}
			return app.wire(log)
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.launchTUI()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "duplicate the log to stderr")

	// Добавляем команды, передавая в них экземпляр приложения и контекст
	rootCmd.AddCommand(app.createTUICommand())
	rootCmd.AddCommand(app.createListCommand(ctx))
	rootCmd.AddCommand(app.createSearchCommand(ctx))
	rootCmd.AddCommand(app.createPlayCommand(ctx))
	rootCmd.AddCommand(app.createDownloadCommand(ctx))
	rootCmd.AddCommand(app.createExportCommand(ctx))
	rootCmd.AddCommand(app.createProbeCommand(ctx))

	return rootCmd
}

// ownsTerminal сообщает, что команда сама рисует на экране
// и журнал в stderr ей помешает
func ownsTerminal(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "playlist", "tui", "play":
		return true
	}
	return false
}
