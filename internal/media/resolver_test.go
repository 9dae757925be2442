package media

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// mockStore хранилище объектов в памяти
type mockStore struct {
	objects map[string]string
	opened  []string
}

func (m *mockStore) Open(_ context.Context, bucket, key string) (io.ReadCloser, error) {
	m.opened = append(m.opened, bucket+"/"+key)
	content, ok := m.objects[bucket+"/"+key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

func (m *mockStore) DownloadTo(_ context.Context, bucket, key string, w io.WriterAt) (int64, error) {
	content, ok := m.objects[bucket+"/"+key]
	if !ok {
		return 0, errors.New("NoSuchKey")
	}
	n, err := w.WriteAt([]byte(content), 0)
	return int64(n), err
}

func (m *mockStore) Bucket() string { return "music" }

func TestLocate(t *testing.T) {
	tests := []struct {
		name     string
		root     string
		path     string
		expected Location
	}{
		{
			name:     "локальный относительный путь",
			root:     "/srv/media",
			path:     "MP3/01 Test 1.mp3",
			expected: Location{Kind: KindLocal, File: filepath.Join("/srv/media", "MP3", "01 Test 1.mp3")},
		},
		{
			name:     "абсолютный локальный путь",
			root:     "/srv/media",
			path:     "/tmp/track.mp3",
			expected: Location{Kind: KindLocal, File: "/tmp/track.mp3"},
		},
		{
			name:     "http корень",
			root:     "https://cdn.example.com/audio/",
			path:     "MP3/01 Test 1（2026 八年级）.mp3",
			expected: Location{Kind: KindHTTP, URL: "https://cdn.example.com/audio/MP3/01%20Test%201%EF%BC%882026%20%E5%85%AB%E5%B9%B4%E7%BA%A7%EF%BC%89.mp3"},
		},
		{
			name:     "абсолютный http путь",
			root:     "/srv/media",
			path:     "http://example.com/a.mp3",
			expected: Location{Kind: KindHTTP, URL: "http://example.com/a.mp3"},
		},
		{
			name:     "s3 корень с префиксом",
			root:     "s3://music/library",
			path:     "MP3/02.mp3",
			expected: Location{Kind: KindS3, Bucket: "music", Key: "library/MP3/02.mp3"},
		},
		{
			name:     "абсолютный s3 путь",
			root:     ".",
			path:     "s3://other/MP3/03.mp3",
			expected: Location{Kind: KindS3, Bucket: "other", Key: "MP3/03.mp3"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			loc, err := NewResolver(test.root, nil).Locate(test.path)
			if err != nil {
				t.Fatalf("Неожиданная ошибка: %v", err)
			}
			if loc != test.expected {
				t.Errorf("Locate(%s) = %+v; expected %+v", test.path, loc, test.expected)
			}
		})
	}
}

func TestLocateErrors(t *testing.T) {
	resolver := NewResolver("/srv/media", nil)

	if _, err := resolver.Locate("   "); !errors.Is(err, ErrEmptyPath) {
		t.Errorf("Ожидалась ErrEmptyPath, получено %v", err)
	}
	if _, err := resolver.Locate("ftp://example.com/a.mp3"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Ожидалась ErrUnsupported, получено %v", err)
	}
	if _, err := NewResolver("ftp://host", nil).Locate("a.mp3"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Ожидалась ErrUnsupported для корня, получено %v", err)
	}
}

func TestCheck(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "MP3"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "MP3", "01.mp3"), []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}

	resolver := NewResolver(root, nil)

	if _, err := resolver.Check("MP3/01.mp3"); err != nil {
		t.Errorf("Существующий файл должен проходить проверку: %v", err)
	}
	if _, err := resolver.Check("MP3/missing.mp3"); err == nil {
		t.Error("Ожидалась ошибка для отсутствующего файла")
	}
	if _, err := resolver.Check("MP3"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Каталог не должен проходить проверку, получено %v", err)
	}
	if _, err := resolver.Check("s3://music/a.mp3"); !errors.Is(err, ErrNoStore) {
		t.Errorf("Ожидалась ErrNoStore, получено %v", err)
	}
	if _, err := resolver.Check("https://example.com/a.mp3"); err != nil {
		t.Errorf("HTTP адрес не проверяется заранее: %v", err)
	}
}

func TestOpenLocal(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "track.mp3"), []byte("local audio"), 0644); err != nil {
		t.Fatal(err)
	}

	rc, err := NewResolver(root, nil).Open(context.Background(), "track.mp3")
	if err != nil {
		t.Fatalf("Ошибка открытия: %v", err)
	}
	defer rc.Close()

	data, _ := io.ReadAll(rc)
	if string(data) != "local audio" {
		t.Errorf("Неожиданное содержимое: %q", data)
	}
}

func TestOpenHTTP(t *testing.T) {
	var requestedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		_, _ = w.Write([]byte("remote audio"))
	}))
	defer server.Close()

	rc, err := NewResolver(server.URL+"/audio", nil).Open(context.Background(), "MP3/01 Test 1.mp3")
	if err != nil {
		t.Fatalf("Ошибка открытия: %v", err)
	}
	defer rc.Close()

	data, _ := io.ReadAll(rc)
	if string(data) != "remote audio" {
		t.Errorf("Неожиданное содержимое: %q", data)
	}
	if requestedPath != "/audio/MP3/01 Test 1.mp3" {
		t.Errorf("Неожиданный путь запроса: %s", requestedPath)
	}
}

func TestOpenS3(t *testing.T) {
	store := &mockStore{objects: map[string]string{"music/lib/01.mp3": "s3 audio"}}

	rc, err := NewResolver("s3://music/lib", store).Open(context.Background(), "01.mp3")
	if err != nil {
		t.Fatalf("Ошибка открытия: %v", err)
	}
	defer rc.Close()

	data, _ := io.ReadAll(rc)
	if string(data) != "s3 audio" {
		t.Errorf("Неожиданное содержимое: %q", data)
	}

	if _, err := NewResolver("s3://music", nil).Open(context.Background(), "01.mp3"); !errors.Is(err, ErrNoStore) {
		t.Errorf("Ожидалась ErrNoStore, получено %v", err)
	}
}

func TestProbeFallsBackToName(t *testing.T) {
	store := &mockStore{objects: map[string]string{"music/05 Test 5.mp3": "not an mp3"}}

	info, err := NewResolver("s3://music", store).Probe(context.Background(), "05 Test 5.mp3")
	if err == nil {
		t.Error("Ожидалась ошибка декодирования")
	}
	if info.Title != "Test 5" || info.Number != 5 {
		t.Errorf("Ожидались метаданные из имени файла, получено %+v", info)
	}
	if info.Size != int64(len("not an mp3")) {
		t.Errorf("Неожиданный размер: %d", info.Size)
	}
}
