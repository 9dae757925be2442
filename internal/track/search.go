package track

import "strings"

// NormalizeTerm обрезает пробелы и приводит поисковую строку к нижнему регистру
func NormalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// Filter возвращает индексы треков, подходящих под поисковую строку,
// в исходном порядке. Пустая строка возвращает все индексы.
// Исходный срез не изменяется.
func Filter(tracks []Track, term string) []int {
	term = NormalizeTerm(term)

	indices := make([]int, 0, len(tracks))
	for i, t := range tracks {
		if term == "" || t.Matches(term) {
			indices = append(indices, i)
		}
	}
	return indices
}
