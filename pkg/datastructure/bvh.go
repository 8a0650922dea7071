package datastructure

import (
	"fmt"
	"iter"
	"math"
	"slices"

	"github.com/golang/geo/r2"
	"github.com/lintang-b-s/roadgenx/pkg/util"
)

// NodeRef. handle to a bvh node. a ref stays valid until the node it points to is freed
// (by a Remove that collapses it) or the tree is cleared.
type NodeRef struct {
	index      int32
	generation uint32
	epoch      uint32
}

// BVHNode. either a leaf holding at most Threshold items, or an internal node with exactly two children.
type BVHNode[T comparable] struct {
	bounds     r2.Rect
	isLeaf     bool
	child1     int32
	child2     int32
	items      []T
	generation uint32
	free       bool
}

func (n *BVHNode[T]) Bounds() r2.Rect {
	return n.bounds
}

func (n *BVHNode[T]) IsLeaf() bool {
	return n.isLeaf
}

// Items. leaf items. nil for internal nodes. the returned slice must not be modified.
func (n *BVHNode[T]) Items() []T {
	return n.items
}

// BVH. bounding volume hierarchy over axis aligned rects.
// nodes live in an arena, freed slots are reused through a free list.
type BVH[T comparable] struct {
	Threshold int

	getBounds func(T) r2.Rect
	nodes     []BVHNode[T]
	freeList  []int32
	root      int32
	epoch     uint32
	count     int
}

func NewBVH[T comparable](threshold int, getBounds func(T) r2.Rect) *BVH[T] {
	if threshold < 2 {
		panic(fmt.Sprintf("bvh: threshold must be at least 2, got %d", threshold))
	}
	if getBounds == nil {
		panic("bvh: getBounds is nil")
	}
	t := &BVH[T]{
		Threshold: threshold,
		getBounds: getBounds,
	}
	t.root = t.allocNode(true)
	return t
}

// Count. number of items in the tree.
func (t *BVH[T]) Count() int {
	return t.count
}

// CountNodes. number of live nodes (leaves and internal nodes).
func (t *BVH[T]) CountNodes() int {
	return len(t.nodes) - len(t.freeList)
}

func (t *BVH[T]) Root() NodeRef {
	return t.ref(t.root)
}

// Resolve. O(1) lookup of a node handle. panics if the node was freed or the tree was cleared after the ref was taken.
func (t *BVH[T]) Resolve(ref NodeRef) *BVHNode[T] {
	if ref.epoch != t.epoch {
		panic(fmt.Sprintf("bvh: stale node ref, epoch %d, tree epoch %d", ref.epoch, t.epoch))
	}
	if ref.index < 0 || int(ref.index) >= len(t.nodes) {
		panic(fmt.Sprintf("bvh: node ref index %d out of range", ref.index))
	}
	n := &t.nodes[ref.index]
	if n.free || n.generation != ref.generation {
		panic(fmt.Sprintf("bvh: stale node ref %d, generation %d, slot generation %d", ref.index,
			ref.generation, n.generation))
	}
	return n
}

// Children. refs to both children of an internal node.
func (t *BVH[T]) Children(ref NodeRef) (NodeRef, NodeRef, bool) {
	n := t.Resolve(ref)
	if n.isLeaf {
		return NodeRef{}, NodeRef{}, false
	}
	return t.ref(n.child1), t.ref(n.child2), true
}

func (t *BVH[T]) ref(idx int32) NodeRef {
	return NodeRef{index: idx, generation: t.nodes[idx].generation, epoch: t.epoch}
}

func (t *BVH[T]) allocNode(isLeaf bool) int32 {
	if len(t.freeList) > 0 {
		idx := t.freeList[len(t.freeList)-1]
		t.freeList = t.freeList[:len(t.freeList)-1]
		n := &t.nodes[idx]
		n.free = false
		n.isLeaf = isLeaf
		n.bounds = r2.EmptyRect()
		n.items = nil
		n.child1, n.child2 = -1, -1
		return idx
	}
	t.nodes = append(t.nodes, BVHNode[T]{
		bounds: r2.EmptyRect(),
		isLeaf: isLeaf,
		child1: -1,
		child2: -1,
	})
	return int32(len(t.nodes) - 1)
}

func (t *BVH[T]) freeNode(idx int32) {
	n := &t.nodes[idx]
	n.free = true
	n.generation++
	n.items = nil
	n.bounds = r2.EmptyRect()
	t.freeList = append(t.freeList, idx)
}

// Add. insert item into the tree.
// descends to the child whose bounds center x is closer to the item center x (ties go to child 2),
// growing every traversed node. the reached leaf is split when it holds more than Threshold items.
func (t *BVH[T]) Add(item T) {
	b := t.getBounds(item)
	cx := b.Center().X

	idx := t.root
	for !t.nodes[idx].isLeaf {
		n := &t.nodes[idx]
		n.bounds = n.bounds.Union(b)

		d1 := math.Abs(t.nodes[n.child1].bounds.Center().X - cx)
		d2 := math.Abs(t.nodes[n.child2].bounds.Center().X - cx)
		if d1 < d2 {
			idx = n.child1
		} else {
			idx = n.child2
		}
	}

	leaf := &t.nodes[idx]
	if len(leaf.items) == 0 {
		leaf.bounds = b
	} else {
		leaf.bounds = leaf.bounds.Union(b)
	}
	leaf.items = append(leaf.items, item)
	t.count++

	if len(leaf.items) > t.Threshold {
		t.split(idx)
	}
}

type itemCenter[T any] struct {
	item   T
	bounds r2.Rect
	x      float64
}

// split. sort the leaf items by center x. the first n/2+1 items go to child 1, the rest to child 2.
func (t *BVH[T]) split(idx int32) {
	items := t.nodes[idx].items
	centers := make([]itemCenter[T], len(items))
	for i, it := range items {
		b := t.getBounds(it)
		centers[i] = itemCenter[T]{item: it, bounds: b, x: b.Center().X}
	}
	centers = util.QuickSortG(centers, func(a, b itemCenter[T]) int {
		return util.CompareFloat64(a.x, b.x)
	})

	// allocNode may grow the arena, take node pointers only after both allocations.
	c1 := t.allocNode(true)
	c2 := t.allocNode(true)

	half := len(centers) / 2
	left := &t.nodes[c1]
	right := &t.nodes[c2]
	left.items = make([]T, 0, t.Threshold+1)
	right.items = make([]T, 0, t.Threshold+1)
	for i, c := range centers {
		if i <= half {
			left.items = append(left.items, c.item)
			left.bounds = left.bounds.Union(c.bounds)
		} else {
			right.items = append(right.items, c.item)
			right.bounds = right.bounds.Union(c.bounds)
		}
	}

	n := &t.nodes[idx]
	n.isLeaf = false
	n.items = nil
	n.child1 = c1
	n.child2 = c2
}

// find. overlap pruned depth first search for item. returns the root to leaf path and the item position in the leaf.
func (t *BVH[T]) find(item T, b r2.Rect) ([]int32, int, bool) {
	type frame struct {
		idx   int32
		depth int
	}

	stack := []frame{{t.root, 0}}
	path := make([]int32, 0, 16)
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		path = append(path[:f.depth], f.idx)
		n := &t.nodes[f.idx]
		if !n.bounds.Intersects(b) {
			continue
		}
		if n.isLeaf {
			if pos := slices.Index(n.items, item); pos >= 0 {
				return path, pos, true
			}
			continue
		}
		stack = append(stack, frame{n.child2, f.depth + 1}, frame{n.child1, f.depth + 1})
	}
	return nil, -1, false
}

// Remove. delete item from the tree. returns false if the item is not in the tree.
// an emptied non root leaf is collapsed: its parent takes over the sibling's content.
func (t *BVH[T]) Remove(item T) bool {
	path, pos, ok := t.find(item, t.getBounds(item))
	if !ok {
		return false
	}

	leafIdx := path[len(path)-1]
	leaf := &t.nodes[leafIdx]
	leaf.items = slices.Delete(leaf.items, pos, pos+1)
	t.count--

	for i := len(path) - 1; i >= 0; i-- {
		t.recomputeBounds(path[i])
	}

	if len(t.nodes[leafIdx].items) > 0 || len(path) < 2 {
		return true
	}

	parentIdx := path[len(path)-2]
	parent := &t.nodes[parentIdx]
	siblingIdx := parent.child1
	if siblingIdx == leafIdx {
		siblingIdx = parent.child2
	}
	sibling := t.nodes[siblingIdx]

	parent.isLeaf = sibling.isLeaf
	parent.items = sibling.items
	parent.child1 = sibling.child1
	parent.child2 = sibling.child2
	parent.bounds = sibling.bounds

	t.freeNode(leafIdx)
	t.freeNode(siblingIdx)
	return true
}

func (t *BVH[T]) recomputeBounds(idx int32) {
	n := &t.nodes[idx]
	bounds := r2.EmptyRect()
	if n.isLeaf {
		for _, it := range n.items {
			bounds = bounds.Union(t.getBounds(it))
		}
	} else {
		bounds = t.nodes[n.child1].bounds.Union(t.nodes[n.child2].bounds)
	}
	n.bounds = bounds
}

// Contains. whether item is stored in the tree.
func (t *BVH[T]) Contains(item T) bool {
	_, _, ok := t.find(item, t.getBounds(item))
	return ok
}

// Clear. reset to a single empty leaf. every NodeRef taken before Clear becomes invalid.
func (t *BVH[T]) Clear() {
	t.nodes = nil
	t.freeList = nil
	t.count = 0
	t.epoch++
	t.root = t.allocNode(true)
}

// GetAll. every item, leaves visited in arena order.
// the tree must not be mutated while the sequence is consumed.
func (t *BVH[T]) GetAll() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := range t.nodes {
			n := &t.nodes[i]
			if n.free || !n.isLeaf {
				continue
			}
			for _, it := range n.items {
				if !yield(it) {
					return
				}
			}
		}
	}
}

// GetAllNearbyBnds. items whose bounds overlap rect (edges touching count as overlap).
func (t *BVH[T]) GetAllNearbyBnds(rect r2.Rect) iter.Seq[T] {
	return t.search(func(b r2.Rect) bool {
		return b.Intersects(rect)
	})
}

// GetAllNearbyPos. items whose bounds contain p.
func (t *BVH[T]) GetAllNearbyPos(p r2.Point) iter.Seq[T] {
	return t.search(func(b r2.Rect) bool {
		return b.ContainsPoint(p)
	})
}

// search. stack based traversal pruned by match on node bounds; items are filtered with the same predicate.
func (t *BVH[T]) search(match func(r2.Rect) bool) iter.Seq[T] {
	return func(yield func(T) bool) {
		stack := []int32{t.root}
		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			n := &t.nodes[idx]
			if !match(n.bounds) {
				continue
			}
			if !n.isLeaf {
				stack = append(stack, n.child2, n.child1)
				continue
			}
			for _, it := range n.items {
				if !match(t.getBounds(it)) {
					continue
				}
				if !yield(it) {
					return
				}
			}
		}
	}
}

type RectAndDepth struct {
	Rect  r2.Rect
	Depth int
}

// NodeBounds. bounds of every node with depth in [minDepth, maxDepth], breadth first. root has depth 0.
func (t *BVH[T]) NodeBounds(minDepth, maxDepth int) []RectAndDepth {
	type entry struct {
		idx   int32
		depth int
	}

	result := []RectAndDepth{}
	queue := []entry{{t.root, 0}}
	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]
		if e.depth > maxDepth {
			continue
		}

		n := &t.nodes[e.idx]
		if e.depth >= minDepth {
			result = append(result, RectAndDepth{Rect: n.bounds, Depth: e.depth})
		}
		if !n.isLeaf {
			queue = append(queue, entry{n.child1, e.depth + 1}, entry{n.child2, e.depth + 1})
		}
	}
	return result
}
