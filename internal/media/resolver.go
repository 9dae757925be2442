// Package media сопоставляет пути треков с источниками данных:
// локальными файлами, HTTP-ресурсами и объектами S3
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hazadus/go-playlist/internal/metadata"
	"github.com/hazadus/go-playlist/internal/s3"
	"github.com/hazadus/go-playlist/internal/streaming"
)

// Ошибки разрешения путей
var (
	ErrEmptyPath   = errors.New("путь к аудиофайлу не указан")
	ErrUnsupported = errors.New("неподдерживаемый источник")
	ErrNoStore     = errors.New("хранилище S3 не настроено")
)

// Kind - тип источника
type Kind int

const (
	KindLocal Kind = iota
	KindHTTP
	KindS3
)

func (k Kind) String() string {
	switch k {
	case KindHTTP:
		return "http"
	case KindS3:
		return "s3"
	default:
		return "local"
	}
}

// Location - разрешенный адрес ресурса
type Location struct {
	Kind   Kind
	File   string // Путь в файловой системе для KindLocal
	URL    string // Адрес для KindHTTP
	Bucket string // Бакет и ключ для KindS3
	Key    string
}

func (l Location) String() string {
	switch l.Kind {
	case KindHTTP:
		return l.URL
	case KindS3:
		return s3.Scheme + l.Bucket + "/" + l.Key
	default:
		return l.File
	}
}

// ObjectStore - хранилище объектов, из которого читаются треки s3://
type ObjectStore interface {
	Open(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	DownloadTo(ctx context.Context, bucket, key string, w io.WriterAt) (int64, error)
	Bucket() string
}

// Resolver разрешает пути треков относительно корня медиатеки
type Resolver struct {
	root  string
	store ObjectStore
}

// NewResolver создает резолвер. Корень может быть каталогом,
// адресом http(s):// или префиксом s3://bucket/prefix. store может быть nil.
func NewResolver(root string, store ObjectStore) *Resolver {
	if root == "" {
		root = "."
	}
	return &Resolver{root: root, store: store}
}

// Root возвращает корень медиатеки
func (r *Resolver) Root() string {
	return r.root
}

// Store возвращает хранилище объектов или nil
func (r *Resolver) Store() ObjectStore {
	return r.store
}

// Locate вычисляет адрес ресурса по пути трека
func (r *Resolver) Locate(p string) (Location, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return Location{}, ErrEmptyPath
	}

	if scheme, ok := schemeOf(p); ok {
		return r.locateAbsolute(scheme, p)
	}

	rootScheme, ok := schemeOf(r.root)
	if !ok {
		file := filepath.FromSlash(p)
		if !filepath.IsAbs(file) {
			file = filepath.Join(r.root, file)
		}
		return Location{Kind: KindLocal, File: file}, nil
	}

	switch rootScheme {
	case "http", "https":
		return Location{Kind: KindHTTP, URL: strings.TrimRight(r.root, "/") + "/" + escapePath(p)}, nil
	case "s3":
		bucket, prefix, err := s3.ParseURL(r.root)
		if err != nil {
			return Location{}, err
		}
		return Location{Kind: KindS3, Bucket: bucket, Key: joinKey(prefix, p)}, nil
	default:
		return Location{}, fmt.Errorf("%w: %s", ErrUnsupported, r.root)
	}
}

func (r *Resolver) locateAbsolute(scheme, p string) (Location, error) {
	switch scheme {
	case "http", "https":
		return Location{Kind: KindHTTP, URL: p}, nil
	case "s3":
		bucket, key, err := s3.ParseURL(p)
		if err != nil {
			return Location{}, err
		}
		return Location{Kind: KindS3, Bucket: bucket, Key: key}, nil
	default:
		return Location{}, fmt.Errorf("%w: %s", ErrUnsupported, p)
	}
}

// Check проверяет, что путь разрешается. Для локальных файлов
// дополнительно проверяется их наличие.
func (r *Resolver) Check(p string) (Location, error) {
	loc, err := r.Locate(p)
	if err != nil {
		return loc, err
	}

	switch loc.Kind {
	case KindLocal:
		stat, err := os.Stat(loc.File)
		if err != nil {
			return loc, fmt.Errorf("файл недоступен: %w", err)
		}
		if stat.IsDir() {
			return loc, fmt.Errorf("%w: %s является каталогом", ErrUnsupported, loc.File)
		}
	case KindS3:
		if r.store == nil {
			return loc, ErrNoStore
		}
	}
	return loc, nil
}

// Open открывает поток ресурса
func (r *Resolver) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	loc, err := r.Locate(p)
	if err != nil {
		return nil, err
	}
	return r.OpenLocation(ctx, loc)
}

// OpenLocation открывает поток по уже разрешенному адресу
func (r *Resolver) OpenLocation(ctx context.Context, loc Location) (io.ReadCloser, error) {
	switch loc.Kind {
	case KindHTTP:
		reader, err := streaming.NewReader(ctx, loc.URL, streaming.DefaultBufferSize)
		if err != nil {
			return nil, err
		}
		return reader, nil
	case KindS3:
		if r.store == nil {
			return nil, ErrNoStore
		}
		return r.store.Open(ctx, loc.Bucket, loc.Key)
	default:
		file, err := os.Open(loc.File)
		if err != nil {
			return nil, fmt.Errorf("ошибка открытия файла: %w", err)
		}
		return file, nil
	}
}

// Probe читает теги и длительность ресурса
func (r *Resolver) Probe(ctx context.Context, p string) (metadata.Info, error) {
	rc, err := r.Open(ctx, p)
	if err != nil {
		return metadata.Info{}, err
	}
	defer rc.Close()

	// Теги ID3v1 лежат в конце файла, поэтому нужен произвольный доступ
	seeker, ok := rc.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(rc)
		if err != nil {
			return metadata.Info{}, fmt.Errorf("ошибка чтения ресурса: %w", err)
		}
		seeker = bytes.NewReader(data)
	}

	return metadata.Probe(seeker, p)
}

// schemeOf возвращает схему адреса вида scheme://...
func schemeOf(p string) (string, bool) {
	scheme, _, found := strings.Cut(p, "://")
	if !found || scheme == "" || strings.ContainsAny(scheme, "/\\ ") {
		return "", false
	}
	return strings.ToLower(scheme), true
}

// escapePath кодирует каждый сегмент пути отдельно
func escapePath(p string) string {
	segments := strings.Split(strings.TrimLeft(p, "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}

func joinKey(prefix, p string) string {
	p = strings.TrimLeft(p, "/")
	if prefix == "" {
		return p
	}
	return path.Join(prefix, p)
}
