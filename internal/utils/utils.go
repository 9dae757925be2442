// Package utils содержит утилитарные функции, используемые в разных частях приложения
package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

// FormatDuration форматирует длительность в вид M:SS или H:MM:SS
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// ParseDurationLabel разбирает метку длительности вида "2:30" или "1:02:03"
func ParseDurationLabel(label string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(label), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("неверный формат длительности: %q", label)
	}

	var total time.Duration
	for i, part := range parts {
		value, err := strconv.Atoi(part)
		if err != nil || value < 0 {
			return 0, fmt.Errorf("неверный формат длительности: %q", label)
		}
		// Минуты и секунды после первого поля ограничены 59
		if i > 0 && value > 59 {
			return 0, fmt.Errorf("неверный формат длительности: %q", label)
		}
		total = total*60 + time.Duration(value)
	}
	return total * time.Second, nil
}

// TruncateString обрезает строку до указанной ширины на экране, добавляя "..." если строка длиннее.
// Широкие символы (например, китайские) занимают две колонки.
func TruncateString(s string, maxWidth int) string {
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// PadRight дополняет строку пробелами до указанной ширины на экране
func PadRight(s string, width int) string {
	return runewidth.FillRight(TruncateString(s, width), width)
}
