package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{" warn ", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, test := range tests {
		if result := ParseLevel(test.input); result != test.expected {
			t.Errorf("ParseLevel(%q) = %v; expected %v", test.input, result, test.expected)
		}
	}
}

func TestNewWritesToFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "playlist.log")

	log, err := New(Config{Level: "debug", OutputPath: logPath})
	if err != nil {
		t.Fatalf("Ошибка создания логгера: %v", err)
	}

	log.Info("трек запущен", zap.Int("index", 3))
	_ = log.Sync()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Ошибка чтения файла журнала: %v", err)
	}

	content := string(data)
	for _, expected := range []string{`"msg":"трек запущен"`, `"index":3`, `"level":"info"`} {
		if !strings.Contains(content, expected) {
			t.Errorf("Журнал не содержит %s: %s", expected, content)
		}
	}
}

func TestNewRespectsLevel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "playlist.log")

	log, err := New(Config{Level: "error", OutputPath: logPath})
	if err != nil {
		t.Fatalf("Ошибка создания логгера: %v", err)
	}

	log.Info("не должно попасть в журнал")
	_ = log.Sync()

	data, _ := os.ReadFile(logPath)
	if strings.Contains(string(data), "не должно попасть") {
		t.Errorf("Сообщение уровня info записано при уровне error: %s", data)
	}
}

func TestNewWithoutOutputs(t *testing.T) {
	log, err := New(Config{})
	if err != nil {
		t.Fatalf("Ошибка создания логгера: %v", err)
	}
	if log.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("Логгер без выходов должен быть пустым")
	}
}
