package timeline

import "container/heap"

// minHeap is a generic binary heap over container/heap, ordered by less.
// The timeline merger uses one to keep each series' next candidate at the
// root so popping the globally-next occurrence is O(log n) in the number
// of series rather than O(n).
type minHeap[T any] struct {
	items []T
	less  func(a, b T) bool
}

func newMinHeap[T any](less func(a, b T) bool) *minHeap[T] {
	return &minHeap[T]{less: less}
}

func (h *minHeap[T]) Len() int            { return len(h.items) }
func (h *minHeap[T]) Less(i, j int) bool  { return h.less(h.items[i], h.items[j]) }
func (h *minHeap[T]) Swap(i, j int)       { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *minHeap[T]) Push(x any)          { h.items = append(h.items, x.(T)) }
func (h *minHeap[T]) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}

func (h *minHeap[T]) push(v T) { heap.Push(h, v) }

func (h *minHeap[T]) pop() T { return heap.Pop(h).(T) }

func (h *minHeap[T]) empty() bool { return len(h.items) == 0 }
