package routing

import "math"

// MinHeap is a concrete-typed min-heap used as the search frontier.
// Avoids interface boxing overhead of container/heap.
//
// Entries are ordered by (Key, Node), so equal keys pop in ascending node
// order and every search is deterministic.
type MinHeap struct {
	items []PQItem
}

// PQItem is a priority queue entry.
type PQItem struct {
	Node uint32
	Key  float64
}

func less(a, b PQItem) bool {
	if a.Key != b.Key {
		return a.Key < b.Key
	}
	return a.Node < b.Node
}

// newMinHeap returns a heap with room for capacity entries.
func newMinHeap(capacity int) *MinHeap {
	return &MinHeap{items: make([]PQItem, 0, capacity)}
}

func (h *MinHeap) Len() int { return len(h.items) }

func (h *MinHeap) Push(node uint32, key float64) {
	h.items = append(h.items, PQItem{Node: node, Key: key})
	h.siftUp(len(h.items) - 1)
}

// Pop removes and returns the minimum entry. The heap must not be empty.
func (h *MinHeap) Pop() PQItem {
	n := len(h.items)
	item := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return item
}

// Peek returns the minimum entry without removing it. The heap must not be empty.
func (h *MinHeap) Peek() PQItem {
	return h.items[0]
}

// PeekKey returns the smallest key, or +Inf if the heap is empty.
func (h *MinHeap) PeekKey() float64 {
	if len(h.items) == 0 {
		return math.Inf(1)
	}
	return h.items[0].Key
}

func (h *MinHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !less(h.items[i], h.items[parent]) {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *MinHeap) siftDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2
		if left < n && less(h.items[left], h.items[smallest]) {
			smallest = left
		}
		if right < n && less(h.items[right], h.items[smallest]) {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}
