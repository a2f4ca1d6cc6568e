package caches

import (
	"container/list"

	"github.com/malversoft/cachex/keys"
)

// evictor tracks eviction order for the bounded memory backends.
// Implementations are not goroutine safe; the owning cache's lock applies.
type evictor interface {
	onAccess(key keys.Key)
	onInsert(key keys.Key)
	evict() keys.Key
	remove(key keys.Key)
}

// listEvictor orders keys in a doubly-linked list. It implements FIFO, LRU
// and MRU depending on whether access refreshes position and which end is
// evicted.
type listEvictor struct {
	order   *list.List
	items   map[keys.Key]*list.Element
	refresh bool // move to front on access (LRU/MRU)
	front   bool // evict from front (MRU) instead of back
}

func newFIFOEvictor() *listEvictor {
	return &listEvictor{order: list.New(), items: make(map[keys.Key]*list.Element)}
}

func newLRUEvictor() *listEvictor {
	return &listEvictor{order: list.New(), items: make(map[keys.Key]*list.Element), refresh: true}
}

func newMRUEvictor() *listEvictor {
	return &listEvictor{order: list.New(), items: make(map[keys.Key]*list.Element), refresh: true, front: true}
}

func (e *listEvictor) onAccess(key keys.Key) {
	if !e.refresh {
		return
	}
	if el, ok := e.items[key]; ok {
		e.order.MoveToFront(el)
	}
}

func (e *listEvictor) onInsert(key keys.Key) {
	if el, ok := e.items[key]; ok {
		if e.refresh {
			e.order.MoveToFront(el)
		}
		return
	}
	e.items[key] = e.order.PushFront(key)
}

func (e *listEvictor) evict() keys.Key {
	var el *list.Element
	if e.front {
		el = e.order.Front()
	} else {
		el = e.order.Back()
	}
	if el == nil {
		return ""
	}
	key := el.Value.(keys.Key)
	e.order.Remove(el)
	delete(e.items, key)
	return key
}

func (e *listEvictor) remove(key keys.Key) {
	if el, ok := e.items[key]; ok {
		e.order.Remove(el)
		delete(e.items, key)
	}
}

// lfuEvictor evicts the least frequently used key, using frequency buckets.
type lfuEvictor struct {
	freqs   map[uint64]*list.List
	items   map[keys.Key]*list.Element
	keyFreq map[keys.Key]uint64
	minFreq uint64
}

func newLFUEvictor() *lfuEvictor {
	return &lfuEvictor{
		freqs:   make(map[uint64]*list.List),
		items:   make(map[keys.Key]*list.Element),
		keyFreq: make(map[keys.Key]uint64),
	}
}

func (e *lfuEvictor) onAccess(key keys.Key) {
	freq, ok := e.keyFreq[key]
	if !ok {
		return
	}
	el := e.items[key]
	e.freqs[freq].Remove(el)
	if e.freqs[freq].Len() == 0 {
		delete(e.freqs, freq)
		if e.minFreq == freq {
			e.minFreq++
		}
	}
	freq++
	e.keyFreq[key] = freq
	if e.freqs[freq] == nil {
		e.freqs[freq] = list.New()
	}
	e.items[key] = e.freqs[freq].PushFront(key)
}

func (e *lfuEvictor) onInsert(key keys.Key) {
	if _, ok := e.keyFreq[key]; ok {
		e.onAccess(key)
		return
	}
	e.keyFreq[key] = 1
	if e.freqs[1] == nil {
		e.freqs[1] = list.New()
	}
	e.items[key] = e.freqs[1].PushFront(key)
	e.minFreq = 1
}

func (e *lfuEvictor) evict() keys.Key {
	if len(e.keyFreq) == 0 {
		return ""
	}
	bucket := e.freqs[e.minFreq]
	el := bucket.Back()
	key := el.Value.(keys.Key)
	bucket.Remove(el)
	if bucket.Len() == 0 {
		delete(e.freqs, e.minFreq)
	}
	delete(e.items, key)
	delete(e.keyFreq, key)
	return key
}

func (e *lfuEvictor) remove(key keys.Key) {
	freq, ok := e.keyFreq[key]
	if !ok {
		return
	}
	el := e.items[key]
	e.freqs[freq].Remove(el)
	if e.freqs[freq].Len() == 0 {
		delete(e.freqs, freq)
	}
	delete(e.items, key)
	delete(e.keyFreq, key)
}

// rrEvictor evicts a key picked by the configured choice function.
type rrEvictor struct {
	order  []keys.Key
	index  map[keys.Key]int
	choice func(n int) int
}

func newRREvictor(choice func(n int) int) *rrEvictor {
	return &rrEvictor{index: make(map[keys.Key]int), choice: choice}
}

func (e *rrEvictor) onAccess(keys.Key) {}

func (e *rrEvictor) onInsert(key keys.Key) {
	if _, ok := e.index[key]; ok {
		return
	}
	e.index[key] = len(e.order)
	e.order = append(e.order, key)
}

func (e *rrEvictor) evict() keys.Key {
	if len(e.order) == 0 {
		return ""
	}
	i := e.choice(len(e.order))
	key := e.order[i]
	e.removeAt(key, i)
	return key
}

func (e *rrEvictor) remove(key keys.Key) {
	if i, ok := e.index[key]; ok {
		e.removeAt(key, i)
	}
}

func (e *rrEvictor) removeAt(key keys.Key, i int) {
	last := len(e.order) - 1
	moved := e.order[last]
	e.order[i] = moved
	e.index[moved] = i
	e.order = e.order[:last]
	delete(e.index, key)
}
