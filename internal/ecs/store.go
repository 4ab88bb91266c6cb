package ecs

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"hash"
	"reflect"
	"slices"
	"sort"

	"github.com/ZiglerOllydbg/ra2-sub003/internal/core/types"
)

// ErrEntityNotAlive — попытка повесить компонент на несуществующую сущность.
var ErrEntityNotAlive = errors.New("ecs: entity is not alive")

// table — типонезависимая часть таблицы одного типа компонента.
type table interface {
	has(id types.EntityID) bool
	remove(id types.EntityID)
	len() int
	sortedIDs() []types.EntityID
	writeDigest(h hash.Hash) error
}

type typedTable[T any] struct {
	rows map[types.EntityID]T
}

func (t *typedTable[T]) has(id types.EntityID) bool {
	_, ok := t.rows[id]
	return ok
}

func (t *typedTable[T]) remove(id types.EntityID) {
	delete(t.rows, id)
}

func (t *typedTable[T]) len() int {
	return len(t.rows)
}

// sortedIDs — единственный способ обхода строк: сначала сортировка, потом итерация.
// Порядок обхода map в Go случайный и для детерминизма не годится.
func (t *typedTable[T]) sortedIDs() []types.EntityID {
	ids := make([]types.EntityID, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (t *typedTable[T]) writeDigest(h hash.Hash) error {
	var idBuf [8]byte
	for _, id := range t.sortedIDs() {
		b, err := json.Marshal(t.rows[id])
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint64(idBuf[:], uint64(id))
		h.Write(idBuf[:])
		h.Write(b)
	}
	return nil
}

// Store — хранилище компонентов: (тип компонента, ID сущности) -> значение.
//
// Компоненты — обычные структуры-значения. Сущности не держат ссылок на свои
// компоненты, всё принадлежит хранилищу. Реестр типов свой у каждого Store.
type Store struct {
	tables map[reflect.Type]table
	alive  func(types.EntityID) bool
}

// NewStore создаёт пустое хранилище. Проверку жизни сущностей подключает NewEntityTable.
func NewStore() *Store {
	return &Store{
		tables: make(map[reflect.Type]table),
	}
}

func tableFor[T any](s *Store, create bool) *typedTable[T] {
	key := reflect.TypeOf((*T)(nil)).Elem()
	if t, ok := s.tables[key]; ok {
		return t.(*typedTable[T])
	}
	if !create {
		return nil
	}
	t := &typedTable[T]{rows: make(map[types.EntityID]T)}
	s.tables[key] = t
	return t
}

// Add записывает компонент T сущности, перезаписывая предыдущий.
func Add[T any](s *Store, id types.EntityID, value T) error {
	if s.alive != nil && !s.alive(id) {
		return fmt.Errorf("%w: %s", ErrEntityNotAlive, id)
	}
	tableFor[T](s, true).rows[id] = value
	return nil
}

// Get возвращает компонент T и признак его наличия.
func Get[T any](s *Store, id types.EntityID) (T, bool) {
	t := tableFor[T](s, false)
	if t == nil {
		var zero T
		return zero, false
	}
	v, ok := t.rows[id]
	return v, ok
}

// Has — есть ли у сущности компонент T.
func Has[T any](s *Store, id types.EntityID) bool {
	t := tableFor[T](s, false)
	return t != nil && t.has(id)
}

// Remove удаляет компонент T сущности (если он был).
func Remove[T any](s *Store, id types.EntityID) {
	if t := tableFor[T](s, false); t != nil {
		t.remove(id)
	}
}

// Update применяет fn к компоненту T, если он есть. Возвращает false, если компонента нет.
func Update[T any](s *Store, id types.EntityID, fn func(*T)) bool {
	t := tableFor[T](s, false)
	if t == nil {
		return false
	}
	v, ok := t.rows[id]
	if !ok {
		return false
	}
	fn(&v)
	t.rows[id] = v
	return true
}

// AllEntitiesWith возвращает ID всех сущностей с компонентом T строго по возрастанию.
// Это единственный разрешённый способ перебора сущностей системами.
func AllEntitiesWith[T any](s *Store) []types.EntityID {
	t := tableFor[T](s, false)
	if t == nil {
		return []types.EntityID{}
	}
	return t.sortedIDs()
}

// Count — число сущностей с компонентом T.
func Count[T any](s *Store) int {
	t := tableFor[T](s, false)
	if t == nil {
		return 0
	}
	return t.len()
}

// OnEntityDestroyed удаляет сущность из таблиц всех типов.
// Вызывается только из EntityTable.Destroy.
func (s *Store) OnEntityDestroyed(id types.EntityID) {
	// Порядок обхода не важен: удаления независимы друг от друга.
	for _, t := range s.tables {
		t.remove(id)
	}
}

// ComponentCount — число компонентов, висящих на сущности.
func (s *Store) ComponentCount(id types.EntityID) int {
	n := 0
	for _, t := range s.tables {
		if t.has(id) {
			n++
		}
	}
	return n
}

// Digest — SHA-256 содержимого хранилища в каноническом порядке:
// таблицы по имени типа, строки по возрастанию ID, значения в JSON.
// Два мира в одинаковом состоянии дают одинаковый дайджест.
func (s *Store) Digest() (string, error) {
	names := make([]string, 0, len(s.tables))
	byName := make(map[string]table, len(s.tables))
	for typ, t := range s.tables {
		if t.len() == 0 {
			// пустая таблица не отличима от отсутствующей
			continue
		}
		name := typ.String()
		names = append(names, name)
		byName[name] = t
	}
	sort.Strings(names)

	h := sha256.New()
	for _, name := range names {
		h.Write([]byte(name))
		h.Write([]byte{0})
		if err := byName[name].writeDigest(h); err != nil {
			return "", fmt.Errorf("digest %s: %w", name, err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
