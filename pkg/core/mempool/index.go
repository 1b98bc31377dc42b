package mempool

import (
	"github.com/google/btree"
)

// btreeDegree is the degree of the ordering index tree.
const btreeDegree = 32

// index keeps pooled items ordered by Policy from the lowest priority
// (Min) to the highest one (Max).
type index struct {
	tree *btree.BTreeG[*Item]
}

func newIndex(p Policy) *index {
	return &index{
		tree: btree.NewG(btreeDegree, func(a, b *Item) bool {
			return p.Compare(a, b) > 0
		}),
	}
}

func (x *index) insert(itm *Item) {
	x.tree.ReplaceOrInsert(itm)
}

func (x *index) delete(itm *Item) bool {
	_, ok := x.tree.Delete(itm)
	return ok
}

func (x *index) len() int {
	return x.tree.Len()
}

// min returns the lowest-priority item, nil if the index is empty.
func (x *index) min() *Item {
	itm, _ := x.tree.Min()
	return itm
}

// descend iterates over items from the highest priority to the lowest one
// until f returns false.
func (x *index) descend(f func(*Item) bool) {
	x.tree.Descend(f)
}

// ascend iterates over items from the lowest priority to the highest one
// until f returns false.
func (x *index) ascend(f func(*Item) bool) {
	x.tree.Ascend(f)
}

// newAgeIndex returns an index of items ordered by admission time, the
// oldest first.
func newAgeIndex() *btree.BTreeG[*Item] {
	return btree.NewG(btreeDegree, func(a, b *Item) bool {
		if !a.added.Equal(b.added) {
			return a.added.Before(b.added)
		}
		return a.seq < b.seq
	})
}

// clone returns a lazy copy-on-write snapshot of the index. It modifies
// the index internals and needs exclusive access.
func (x *index) clone() *btree.BTreeG[*Item] {
	return x.tree.Clone()
}
