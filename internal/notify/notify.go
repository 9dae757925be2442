// Package notify содержит модель всплывающих уведомлений: уровень, текст
// и стек активных уведомлений с автоматическим скрытием
package notify

import (
	"time"

	"github.com/google/uuid"
)

// DismissAfter - время жизни уведомления на экране
const DismissAfter = 3 * time.Second

// Level определяет тип уведомления
type Level int

// Уровни уведомлений
const (
	Info Level = iota
	Success
	Error
)

// String возвращает название уровня
func (l Level) String() string {
	switch l {
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Notification - одно уведомление
type Notification struct {
	ID      uuid.UUID
	Level   Level
	Message string
	Created time.Time
}

// Expired сообщает, истекло ли время показа уведомления к моменту now
func (n Notification) Expired(now time.Time) bool {
	return now.Sub(n.Created) >= DismissAfter
}

// Stack хранит активные уведомления в порядке появления
type Stack struct {
	items []Notification
	now   func() time.Time
}

// NewStack создает пустой стек уведомлений
func NewStack() *Stack {
	return &Stack{now: time.Now}
}

// Push добавляет уведомление и возвращает его
func (s *Stack) Push(level Level, message string) Notification {
	n := Notification{
		ID:      uuid.New(),
		Level:   level,
		Message: message,
		Created: s.now(),
	}
	s.items = append(s.items, n)
	return n
}

// Dismiss удаляет уведомление по ID. Возвращает false, если его уже нет.
func (s *Stack) Dismiss(id uuid.UUID) bool {
	for i, n := range s.items {
		if n.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

// Prune удаляет все уведомления с истекшим временем показа
func (s *Stack) Prune() int {
	now := s.now()
	kept := s.items[:0]
	removed := 0
	for _, n := range s.items {
		if n.Expired(now) {
			removed++
			continue
		}
		kept = append(kept, n)
	}
	s.items = kept
	return removed
}

// Active возвращает копию активных уведомлений, новые в конце
func (s *Stack) Active() []Notification {
	result := make([]Notification, len(s.items))
	copy(result, s.items)
	return result
}

// Len возвращает количество активных уведомлений
func (s *Stack) Len() int {
	return len(s.items)
}
