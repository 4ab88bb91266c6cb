package engine

import (
	"container/heap"

	"github.com/ZiglerOllydbg/ra2-sub003/internal/core/types"
)

// TickItem обертка для элемента очереди приоритетов
type TickItem struct {
	Tick  types.Tick // Тик, на который есть отложенные команды. Чем меньше, тем раньше.
	Index int        // Индекс в куче
}

// TickQueue реализует heap.Interface: min-heap тиков с отложенными командами.
type TickQueue []*TickItem

func (pq TickQueue) Len() int { return len(pq) }

func (pq TickQueue) Less(i, j int) bool {
	return pq[i].Tick < pq[j].Tick
}

func (pq TickQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].Index = i
	pq[j].Index = j
}

func (pq *TickQueue) Push(x interface{}) {
	n := len(*pq)
	item := x.(*TickItem)
	item.Index = n
	*pq = append(*pq, item)
}

func (pq *TickQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil  // избегаем утечки памяти
	item.Index = -1 // для безопасности
	*pq = old[0 : n-1]
	return item
}

// Peek возвращает ближайший тик, не извлекая его.
func (pq TickQueue) Peek() (types.Tick, bool) {
	if len(pq) == 0 {
		return 0, false
	}
	return pq[0].Tick, true
}

// pushTick — heap.Push с упаковкой.
func (pq *TickQueue) pushTick(t types.Tick) {
	heap.Push(pq, &TickItem{Tick: t})
}

// popTick — heap.Pop с распаковкой.
func (pq *TickQueue) popTick() types.Tick {
	return heap.Pop(pq).(*TickItem).Tick
}
