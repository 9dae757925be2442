// Package s3 предоставляет доступ к аудиофайлам в S3-совместимом хранилище
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// Scheme - префикс ссылок на объекты хранилища
const Scheme = "s3://"

// ErrInvalidURL возвращается для ссылки, из которой нельзя извлечь бакет и ключ
var ErrInvalidURL = errors.New("неверный формат ссылки S3")

// Config содержит настройки для S3
type Config struct {
	Region     string
	AccessKey  string
	SecretKey  string
	Endpoint   string
	BucketName string
}

// objectGetter - часть API S3, которая нужна клиенту
type objectGetter interface {
	GetObjectWithContext(ctx aws.Context, input *s3.GetObjectInput, opts ...request.Option) (*s3.GetObjectOutput, error)
}

// objectDownloader - часть s3manager.Downloader, которая нужна клиенту
type objectDownloader interface {
	DownloadWithContext(ctx aws.Context, w io.WriterAt, input *s3.GetObjectInput, opts ...func(*s3manager.Downloader)) (int64, error)
}

// Client обертка над S3 для чтения и скачивания объектов
type Client struct {
	getter     objectGetter
	downloader objectDownloader
	config     *Config
}

// NewClient создает клиент S3 по конфигурации
func NewClient(config *Config) (*Client, error) {
	awsConfig := &aws.Config{
		Region: aws.String(config.Region),
		Credentials: credentials.NewStaticCredentials(
			config.AccessKey,
			config.SecretKey,
			"",
		),
	}

	// Для S3-совместимых хранилищ (MinIO и т.п.) используем path-style адреса
	if config.Endpoint != "" {
		awsConfig.Endpoint = aws.String(config.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания AWS сессии: %w", err)
	}

	return &Client{
		getter:     s3.New(sess),
		downloader: s3manager.NewDownloader(sess),
		config:     config,
	}, nil
}

// Bucket возвращает бакет по умолчанию
func (c *Client) Bucket() string {
	return c.config.BucketName
}

// Open возвращает поток содержимого объекта
func (c *Client) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	out, err := c.getter.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucketOrDefault(bucket)),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения объекта %s: %w", key, err)
	}
	return out.Body, nil
}

// DownloadTo скачивает объект частями в w и возвращает число записанных байт
func (c *Client) DownloadTo(ctx context.Context, bucket, key string, w io.WriterAt) (int64, error) {
	n, err := c.downloader.DownloadWithContext(ctx, w, &s3.GetObjectInput{
		Bucket: aws.String(c.bucketOrDefault(bucket)),
		Key:    aws.String(key),
	})
	if err != nil {
		return n, fmt.Errorf("ошибка скачивания объекта %s: %w", key, err)
	}
	return n, nil
}

func (c *Client) bucketOrDefault(bucket string) string {
	if bucket != "" {
		return bucket
	}
	return c.config.BucketName
}

// ParseURL извлекает бакет и ключ из ссылки вида s3://bucket/key
func ParseURL(raw string) (bucket, key string, err error) {
	if !strings.HasPrefix(raw, Scheme) {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidURL, raw)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	bucket = parsed.Host
	key = strings.TrimPrefix(parsed.Path, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("%w: не указан бакет", ErrInvalidURL)
	}
	return bucket, key, nil
}
