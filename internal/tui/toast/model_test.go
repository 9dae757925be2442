package toast

import (
	"strings"
	"testing"

	"github.com/hazadus/go-playlist/internal/notify"
)

func TestPushAndDismiss(t *testing.T) {
	model := NewModel()

	cmd := model.Push(notify.Error, "Ошибка воспроизведения")
	if cmd == nil {
		t.Fatal("Push должен возвращать команду скрытия")
	}
	model.Push(notify.Success, "Скачивание: 01.mp3")

	active := model.Active()
	if len(active) != 2 {
		t.Fatalf("Ожидалось 2 уведомления, получено %d", len(active))
	}

	view := model.View()
	if !strings.Contains(view, "Ошибка воспроизведения") || !strings.Contains(view, "Скачивание: 01.mp3") {
		t.Errorf("Уведомления должны отображаться:\n%s", view)
	}
	if strings.Index(view, "Ошибка") > strings.Index(view, "Скачивание") {
		t.Error("Новые уведомления отображаются ниже")
	}

	model.Update(DismissMsg{ID: active[0].ID})
	if len(model.Active()) != 1 || model.Active()[0].Message != "Скачивание: 01.mp3" {
		t.Errorf("Должно остаться второе уведомление: %+v", model.Active())
	}

	model.Update(DismissMsg{ID: active[1].ID})
	if model.View() != "" {
		t.Error("Без уведомлений вид пустой")
	}
}

func TestViewAlignedRight(t *testing.T) {
	model := NewModel()
	model.SetWidth(60)
	model.Push(notify.Info, "Привет")

	line := strings.Split(model.View(), "\n")[0]
	if !strings.HasPrefix(line, " ") {
		t.Errorf("Уведомление должно быть выровнено вправо: %q", line)
	}
	if !strings.Contains(line, "Привет") {
		t.Errorf("Первая строка должна содержать текст уведомления: %q", line)
	}
}
