// Package streaming содержит буферизованный HTTP-ридер для потокового чтения аудио
package streaming

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// DefaultBufferSize - размер буфера по умолчанию (256KB)
const DefaultBufferSize = 256 * 1024

// transport общий для всех ридеров, чтобы переиспользовать соединения
var transport = &http.Transport{
	Proxy: http.ProxyFromEnvironment,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	TLSHandshakeTimeout:   10 * time.Second,
	ResponseHeaderTimeout: 30 * time.Second,
	IdleConnTimeout:       300 * time.Second,
	MaxIdleConns:          10,
	MaxIdleConnsPerHost:   2,
	ExpectContinueTimeout: 1 * time.Second,
}

// Общий таймаут не задан: поток может читаться дольше любого разумного лимита
var client = &http.Client{Transport: transport}

// Reader представляет буферизованный поток для чтения данных порциями
type Reader struct {
	reader *bufio.Reader
	resp   *http.Response
	size   int64
}

// NewReader выполняет GET-запрос и возвращает ридер тела ответа.
// Принимаются только ответы 200 и 206.
func NewReader(ctx context.Context, url string, bufferSize int) (*Reader, error) {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	req.Header.Set("Accept-Encoding", "identity") // Сжатие мешает потоковому декодированию
	req.Header.Set("Range", "bytes=0-")
	req.Header.Set("User-Agent", "go-playlist/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		resp.Body.Close()
		return nil, fmt.Errorf("ошибка HTTP: %s", resp.Status)
	}

	return &Reader{
		reader: bufio.NewReaderSize(resp.Body, bufferSize),
		resp:   resp,
		size:   resp.ContentLength,
	}, nil
}

// Read реализует интерфейс io.Reader
func (sr *Reader) Read(p []byte) (n int, err error) {
	return sr.reader.Read(p)
}

// Size возвращает размер тела ответа или -1, если сервер его не сообщил
func (sr *Reader) Size() int64 {
	return sr.size
}

// Close закрывает соединение
func (sr *Reader) Close() error {
	return sr.resp.Body.Close()
}
