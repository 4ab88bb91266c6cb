package ecs

import (
	"github.com/ZiglerOllydbg/ra2-sub003/internal/core/types"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/logger"

	"github.com/sirupsen/logrus"
)

// EntityTable выдаёт и переиспользует идентификаторы сущностей одного мира.
//
// Пул переработки принадлежит конкретной таблице (а значит, конкретному World):
// несколько миров в одном процессе никогда не делят ID.
type EntityTable struct {
	store *Store

	nextID    types.EntityID   // следующий ещё ни разу не выданный ID
	allocated int              // сколько ID выдано впервые
	recycled  []types.EntityID // FIFO: кто раньше уничтожен, тот раньше переиспользуется
	alive     []bool           // alive[id] — ID сейчас занят живой сущностью
}

// NewEntityTable создаёт таблицу, связанную с хранилищем компонентов.
// Хранилище получает от таблицы оракул "жива ли сущность".
func NewEntityTable(store *Store) *EntityTable {
	t := &EntityTable{
		store:  store,
		nextID: types.NilEntityID + 1,
		alive:  make([]bool, 1, 64), // слот 0 зарезервирован под NilEntityID
	}
	if store != nil {
		store.alive = t.IsAlive
	}
	return t
}

// Create возвращает переработанный ID (в порядке уничтожения) или новый.
func (t *EntityTable) Create() types.EntityID {
	if len(t.recycled) > 0 {
		id := t.recycled[0]
		t.recycled[0] = types.NilEntityID
		t.recycled = t.recycled[1:]
		t.alive[id] = true
		return id
	}

	id := t.nextID
	t.nextID++
	t.allocated++
	t.alive = append(t.alive, true)
	return id
}

// Destroy удаляет все компоненты сущности и отправляет ID в пул переработки.
//
// Повторное уничтожение (или уничтожение никогда не выданного ID) — no-op
// с предупреждением в логе. Возвращает true, если сущность действительно удалена.
func (t *EntityTable) Destroy(id types.EntityID) bool {
	if !t.IsAlive(id) {
		logger.Log.WithFields(logrus.Fields{
			"component": "entity_table",
			"entity":    id,
		}).Warn("destroy of a dead or unknown entity ignored")
		return false
	}

	if t.store != nil {
		t.store.OnEntityDestroyed(id)
	}
	t.alive[id] = false
	t.recycled = append(t.recycled, id)
	return true
}

// IsAlive — выдан ли ID и не уничтожен ли он.
func (t *EntityTable) IsAlive(id types.EntityID) bool {
	return id != types.NilEntityID && uint64(id) < uint64(len(t.alive)) && t.alive[id]
}

// ActiveCount — число живых сущностей: выдано впервые минус лежащие в пуле.
func (t *EntityTable) ActiveCount() int {
	return t.allocated - len(t.recycled)
}

// RecycledCount — размер пула переработки.
func (t *EntityTable) RecycledCount() int {
	return len(t.recycled)
}
