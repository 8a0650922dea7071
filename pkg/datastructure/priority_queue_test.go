package datastructure_test

import (
	"testing"

	"github.com/lintang-b-s/roadgenx/pkg/datastructure"
	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/rand"
)

func generateRandomInteger(rd *rand.Rand, min int, max int) int {
	return min + rd.Intn(max-min)
}

func TestPriorityQueueOrdering(t *testing.T) {
	tests := []struct {
		name      string
		ascending bool
	}{
		{"ascending pops lowest first", true},
		{"descending pops highest first", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rd := rand.New(rand.NewSource(10))
			pq := datastructure.NewPriorityQueue[int](tt.ascending)
			for i := 0; i < 2000; i++ {
				pq.Add(i, float64(generateRandomInteger(rd, 0, 100)))
			}
			assert.Equal(t, 2000, pq.Len())

			_, prev := pq.Pop()
			for pq.Len() > 0 {
				_, w := pq.Pop()
				if tt.ascending && w < prev {
					t.Errorf("PriorityQueue is not sorted ascending: %v after %v", w, prev)
				}
				if !tt.ascending && w > prev {
					t.Errorf("PriorityQueue is not sorted descending: %v after %v", w, prev)
				}
				prev = w
			}
		})
	}
}

func TestPriorityQueueTiesPopLastInFirst(t *testing.T) {
	pq := datastructure.NewPriorityQueue[string](false)
	pq.Add("a", 1)
	pq.Add("b", 1)
	pq.Add("low", 0)
	pq.Add("c", 1)

	order := []string{}
	for pq.Len() > 0 {
		item, _ := pq.Pop()
		order = append(order, item)
	}
	assert.Equal(t, []string{"c", "b", "a", "low"}, order)
}

func TestPriorityQueuePeek(t *testing.T) {
	pq := datastructure.NewPriorityQueue[string](true)
	assert.Panics(t, func() { pq.Peek() })
	assert.Panics(t, func() { pq.Pop() })

	pq.Add("x", 3)
	pq.Add("y", -2)

	item, w := pq.Peek()
	assert.Equal(t, "y", item)
	assert.Equal(t, -2.0, w)
	assert.Equal(t, 2, pq.Len())
	assert.True(t, pq.IsAscending())
}

func TestPriorityQueueDuplicatePanics(t *testing.T) {
	pq := datastructure.NewPriorityQueue[int](false)
	pq.Add(1, 5)
	assert.Panics(t, func() { pq.Add(1, 6) })
}

func TestPriorityQueueRemove(t *testing.T) {
	rd := rand.New(rand.NewSource(11))
	pq := datastructure.NewPriorityQueue[int](false)
	weights := map[int]float64{}
	for i := 0; i < 500; i++ {
		w := float64(generateRandomInteger(rd, 0, 20))
		weights[i] = w
		pq.Add(i, w)
	}

	for i := 0; i < 500; i += 3 {
		w, ok := pq.Remove(i)
		assert.True(t, ok)
		assert.Equal(t, weights[i], w)
		assert.False(t, pq.Contains(i))
	}

	_, ok := pq.Remove(0)
	assert.False(t, ok)
	_, ok = pq.Remove(10000)
	assert.False(t, ok)

	seen := map[int]bool{}
	_, prev := pq.Peek()
	for pq.Len() > 0 {
		item, w := pq.Pop()
		assert.NotEqual(t, 0, item%3, "removed item popped")
		assert.Equal(t, weights[item], w)
		assert.LessOrEqual(t, w, prev)
		seen[item] = true
		prev = w
	}
	assert.Len(t, seen, 500-167)
}

func TestPriorityQueueRemoveReAdd(t *testing.T) {
	build := func() *datastructure.PriorityQueue[string] {
		pq := datastructure.NewPriorityQueue[string](true)
		pq.Add("a", 2)
		pq.Add("b", 2)
		pq.Add("c", 2)
		pq.Add("d", 1)
		return pq
	}
	popAll := func(pq *datastructure.PriorityQueue[string]) []string {
		order := []string{}
		for pq.Len() > 0 {
			item, _ := pq.Pop()
			order = append(order, item)
		}
		return order
	}

	pq := build()
	w, ok := pq.Remove("c")
	assert.True(t, ok)
	pq.Add("c", w)
	// "c" was the last added of its tie group, re-adding it restores the original order.
	assert.Equal(t, popAll(build()), popAll(pq))

	pq = build()
	w, _ = pq.Remove("a")
	pq.Add("a", w)
	assert.Equal(t, []string{"d", "a", "c", "b"}, popAll(pq))
}
