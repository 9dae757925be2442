// Package track содержит модель трека, синтетический источник списка и поиск
package track

import (
	"fmt"
	"strings"
)

// Track описывает один воспроизводимый элемент списка
type Track struct {
	ID       int    `yaml:"id"`
	Title    string `yaml:"title"`
	Filename string `yaml:"filename"`
	Path     string `yaml:"path"`     // Путь к ресурсу относительно media_root
	Duration string `yaml:"duration"` // Длительность для отображения, например "2:30"
}

// String возвращает человекочитаемое представление трека
func (t Track) String() string {
	return fmt.Sprintf("#%d %s (%s)", t.ID, t.Title, t.Filename)
}

// Matches проверяет, содержит ли название или имя файла подстроку term.
// term ожидается уже в нижнем регистре.
func (t Track) Matches(term string) bool {
	return strings.Contains(strings.ToLower(t.Title), term) ||
		strings.Contains(strings.ToLower(t.Filename), term)
}
