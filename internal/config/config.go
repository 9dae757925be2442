// Package config содержит функции для загрузки конфигурации приложения
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Значения по умолчанию
const (
	DefaultDownloadDir = "~/Downloads"
	DefaultLogFile     = "~/.playlist.log"
	DefaultLogLevel    = "info"
	DefaultTrackCount  = 48
	DefaultLoadDelay   = 500 * time.Millisecond
	DefaultVolume      = 1.0
)

// Config структура для хранения конфигурации приложения
type Config struct {
	MediaRoot   string        `yaml:"media_root"`
	DownloadDir string        `yaml:"download_dir"`
	Volume      float64       `yaml:"volume"`
	TrackCount  int           `yaml:"track_count"`
	LoadDelay   time.Duration `yaml:"load_delay"`

	AwsBucketName string `yaml:"aws_bucket_name"`
	AwsAccessKey  string `yaml:"aws_access_key"`
	AwsSecretKey  string `yaml:"aws_secret_key"`
	AwsRegion     string `yaml:"aws_region"`
	AwsEndpoint   string `yaml:"aws_endpoint"`

	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

// Default возвращает конфигурацию со значениями по умолчанию
func Default() *Config {
	return &Config{
		MediaRoot:   ".",
		DownloadDir: DefaultDownloadDir,
		Volume:      DefaultVolume,
		TrackCount:  DefaultTrackCount,
		LoadDelay:   DefaultLoadDelay,
		LogLevel:    DefaultLogLevel,
		LogFile:     DefaultLogFile,
	}
}

// LoadConfig загружает конфигурацию приложения из указанного файла.
// Отсутствующий файл не является ошибкой: используются значения по умолчанию.
// Переменные окружения имеют приоритет над значениями из файла.
func LoadConfig(filePath string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := expandHome(filePath, home)

	config := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("ошибка разбора yaml конфигурации: %w", err)
		}
	case os.IsNotExist(err):
		// Файла нет - работаем на значениях по умолчанию
	default:
		return nil, err
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	config.applyDefaults()

	// Раскрываем тильду в путях
	config.DownloadDir = expandHome(config.DownloadDir, home)
	config.LogFile = expandHome(config.LogFile, home)
	config.MediaRoot = expandHome(config.MediaRoot, home)

	return config, nil
}

// applyEnv переопределяет значения из переменных окружения
func (c *Config) applyEnv() error {
	overrides := map[string]*string{
		"PLAYLIST_MEDIA_ROOT":   &c.MediaRoot,
		"PLAYLIST_DOWNLOAD_DIR": &c.DownloadDir,
		"PLAYLIST_LOG_LEVEL":    &c.LogLevel,
		"PLAYLIST_LOG_FILE":     &c.LogFile,
		"AWS_BUCKET_NAME":       &c.AwsBucketName,
		"AWS_ACCESS_KEY":        &c.AwsAccessKey,
		"AWS_SECRET_KEY":        &c.AwsSecretKey,
		"AWS_REGION":            &c.AwsRegion,
		"AWS_ENDPOINT":          &c.AwsEndpoint,
	}
	for name, field := range overrides {
		if value, ok := os.LookupEnv(name); ok {
			*field = value
		}
	}

	if value, ok := os.LookupEnv("PLAYLIST_VOLUME"); ok {
		volume, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("неверное значение PLAYLIST_VOLUME %q: %w", value, err)
		}
		c.Volume = volume
	}
	return nil
}

// applyDefaults устанавливает значения по умолчанию, если они не заданы
func (c *Config) applyDefaults() {
	if c.DownloadDir == "" {
		c.DownloadDir = DefaultDownloadDir
	}
	if c.MediaRoot == "" {
		c.MediaRoot = "."
	}
	if c.TrackCount <= 0 {
		c.TrackCount = DefaultTrackCount
	}
	if c.LoadDelay < 0 {
		c.LoadDelay = 0
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if math.IsNaN(c.Volume) || c.Volume < 0 || c.Volume > 1 {
		c.Volume = DefaultVolume
	}
}

func expandHome(path, home string) string {
	if strings.HasPrefix(path, "~") {
		return strings.Replace(path, "~", home, 1)
	}
	return path
}
