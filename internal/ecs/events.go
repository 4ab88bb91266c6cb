package ecs

import (
	"reflect"
	"slices"
)

// EventQueue — очередь событий текущего тика с моделью pull.
//
// Подписок и колбэков нет: потребитель сам забирает события нужного типа
// через GetEvents и тем самым сам фиксирует порядок чтения. Очередь
// очищается один раз в начале следующего тика.
type EventQueue struct {
	queues map[reflect.Type]any // reflect.Type -> *[]T
	total  int
}

func NewEventQueue() *EventQueue {
	return &EventQueue{queues: make(map[reflect.Type]any)}
}

// Publish добавляет событие в очередь его типа в порядке публикации.
func Publish[T any](q *EventQueue, event T) {
	key := reflect.TypeOf((*T)(nil)).Elem()
	list, ok := q.queues[key].(*[]T)
	if !ok {
		list = new([]T)
		q.queues[key] = list
	}
	*list = append(*list, event)
	q.total++
}

// GetEvents возвращает копию событий типа T за текущий тик.
// Если событий нет — пустой (не nil) срез.
func GetEvents[T any](q *EventQueue) []T {
	list, ok := q.queues[reflect.TypeOf((*T)(nil)).Elem()].(*[]T)
	if !ok || len(*list) == 0 {
		return []T{}
	}
	return slices.Clone(*list)
}

// Clear опустошает очереди всех типов.
func (q *EventQueue) Clear() {
	clear(q.queues)
	q.total = 0
}

// Len — общее число событий в очереди.
func (q *EventQueue) Len() int {
	return q.total
}
