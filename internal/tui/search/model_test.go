package search

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func typeText(m *Model, text string) *Model {
	for _, r := range text {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestInputIgnoredWithoutFocus(t *testing.T) {
	model := typeText(NewModel(), "test")
	if model.Value() != "" {
		t.Errorf("Без фокуса ввод не принимается, получено %q", model.Value())
	}
}

func TestSubmit(t *testing.T) {
	model := NewModel()
	model.Focus()
	model = typeText(model, "Test 5")

	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("Enter должен возвращать команду")
	}
	msg, ok := cmd().(SubmittedMsg)
	if !ok {
		t.Fatalf("Ожидалось SubmittedMsg, получено %T", cmd())
	}
	if msg.Term != "Test 5" {
		t.Errorf("Ожидалась строка %q, получено %q", "Test 5", msg.Term)
	}
	if model.Focused() {
		t.Error("После Enter фокус снимается")
	}
}

func TestEscape(t *testing.T) {
	model := NewModel()
	model.Focus()
	model = typeText(model, "abc")

	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd != nil {
		t.Error("Esc не применяет поиск")
	}
	if model.Focused() {
		t.Error("После esc фокус снимается")
	}
	if model.Value() != "abc" {
		t.Errorf("Esc не очищает поле, получено %q", model.Value())
	}
}
