package datastructure

import (
	"fmt"

	"github.com/lintang-b-s/roadgenx/pkg/util"
)

type PriorityQueueNode[T comparable] struct {
	Item   T
	Weight float64
}

// PriorityQueue. weighted set kept as a slice sorted so that the next item out is always the last element.
// items with equal weight pop in LIFO order.
type PriorityQueue[T comparable] struct {
	ascending bool
	sorted    []PriorityQueueNode[T]
	weights   map[T]float64
}

// NewPriorityQueue. ascending=true pops the lowest weight first, ascending=false pops the highest weight first.
func NewPriorityQueue[T comparable](ascending bool) *PriorityQueue[T] {
	return &PriorityQueue[T]{
		ascending: ascending,
		sorted:    make([]PriorityQueueNode[T], 0),
		weights:   make(map[T]float64),
	}
}

func (pq *PriorityQueue[T]) IsAscending() bool {
	return pq.ascending
}

func (pq *PriorityQueue[T]) Len() int {
	return len(pq.sorted)
}

// compare. ordering of the backing slice: the item that should pop first compares greatest.
func (pq *PriorityQueue[T]) compare(a, b PriorityQueueNode[T]) int {
	c := util.CompareFloat64(a.Weight, b.Weight)
	if pq.ascending {
		return -c
	}
	return c
}

// Add. insert item with weight, after every item of equal weight. panics if the item is already queued.
func (pq *PriorityQueue[T]) Add(item T, weight float64) {
	if _, ok := pq.weights[item]; ok {
		panic(fmt.Sprintf("priority queue: item %v already queued", item))
	}
	pq.weights[item] = weight

	node := PriorityQueueNode[T]{Item: item, Weight: weight}
	i := util.UpperBound(pq.sorted, node, pq.compare)
	pq.sorted = append(pq.sorted, PriorityQueueNode[T]{})
	copy(pq.sorted[i+1:], pq.sorted[i:])
	pq.sorted[i] = node
}

// Peek. next item and its weight. panics on an empty queue.
func (pq *PriorityQueue[T]) Peek() (T, float64) {
	if len(pq.sorted) == 0 {
		panic("priority queue: peek on empty queue")
	}
	top := pq.sorted[len(pq.sorted)-1]
	return top.Item, top.Weight
}

// Pop. remove and return the next item and its weight. panics on an empty queue.
func (pq *PriorityQueue[T]) Pop() (T, float64) {
	item, weight := pq.Peek()
	pq.sorted[len(pq.sorted)-1] = PriorityQueueNode[T]{}
	pq.sorted = pq.sorted[:len(pq.sorted)-1]
	delete(pq.weights, item)
	return item, weight
}

func (pq *PriorityQueue[T]) Contains(item T) bool {
	_, ok := pq.weights[item]
	return ok
}

// Remove. remove item from the queue. returns its weight, or false if it was not queued.
func (pq *PriorityQueue[T]) Remove(item T) (float64, bool) {
	weight, ok := pq.weights[item]
	if !ok {
		return 0, false
	}
	delete(pq.weights, item)

	// binary search lands somewhere inside the run of equal weights, scan the run both ways.
	key := PriorityQueueNode[T]{Item: item, Weight: weight}
	mid := util.BinarySearch(pq.sorted, key, pq.compare)
	idx := -1
	for i := mid; i < len(pq.sorted) && pq.sorted[i].Weight == weight; i++ {
		if pq.sorted[i].Item == item {
			idx = i
			break
		}
	}
	for i := mid - 1; idx < 0 && i >= 0 && pq.sorted[i].Weight == weight; i-- {
		if pq.sorted[i].Item == item {
			idx = i
		}
	}
	if idx < 0 {
		panic(fmt.Sprintf("priority queue: item %v has a weight but is not in the sorted list", item))
	}

	copy(pq.sorted[idx:], pq.sorted[idx+1:])
	pq.sorted[len(pq.sorted)-1] = PriorityQueueNode[T]{}
	pq.sorted = pq.sorted[:len(pq.sorted)-1]
	return weight, true
}
