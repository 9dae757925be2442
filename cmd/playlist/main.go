package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hazadus/go-playlist/internal/config"
	"github.com/hazadus/go-playlist/internal/download"
	"github.com/hazadus/go-playlist/internal/media"
	"github.com/hazadus/go-playlist/internal/s3"
	"github.com/hazadus/go-playlist/internal/track"
)

const (
	defaultConfigPath = "~/.playlist"
)

// Application хранит зависимости, общие для всех команд
type Application struct {
	Config    *config.Config
	Logger    *zap.Logger
	Source    track.Source
	Resolver  *media.Resolver
	Downloads *download.Service

	verbose bool
}

// NewApplication создает приложение по конфигурации.
// Зависимости подключаются позже в wire, когда известен логгер.
func NewApplication(cfg *config.Config) *Application {
	return &Application{Config: cfg, Logger: zap.NewNop()}
}

// wire создает источник списка, резолвер медиатеки и сервис скачивания
func (app *Application) wire(log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	app.Logger = log

	var store media.ObjectStore
	if app.Config.AwsBucketName != "" || app.Config.AwsEndpoint != "" {
		client, err := s3.NewClient(&s3.Config{
			Region:     app.Config.AwsRegion,
			AccessKey:  app.Config.AwsAccessKey,
			SecretKey:  app.Config.AwsSecretKey,
			Endpoint:   app.Config.AwsEndpoint,
			BucketName: app.Config.AwsBucketName,
		})
		if err != nil {
			return fmt.Errorf("ошибка создания клиента S3: %w", err)
		}
		store = client
	}

	app.Resolver = media.NewResolver(app.Config.MediaRoot, store)
	app.Downloads = download.NewService(app.Resolver, app.Config.DownloadDir, log)
	app.Source = track.NewSynthetic(app.Config.TrackCount, app.Config.LoadDelay)

	log.Debug("приложение настроено",
		zap.String("media_root", app.Resolver.Root()),
		zap.String("download_dir", app.Downloads.Dir()),
		zap.Bool("s3", store != nil),
	)
	return nil
}

func main() {
	// Файл .env необязателен
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(defaultConfigPath)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	app := NewApplication(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := app.createRootCommand(ctx)
	err = rootCmd.Execute()
	_ = app.Logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
