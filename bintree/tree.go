// Package bintree indexes the populated bins of a pair with a three-level
// bitmap over the 24-bit id space: one root word, one mid-level word per
// 16-bit prefix, one leaf word per 8-bit group. A set bit at a given level
// marks a sub-range holding at least one populated bin, so directional
// nearest-neighbour queries cost at most three masked word scans however
// sparse the population is.
package bintree

import (
	"math/bits"

	"github.com/holiman/uint256"
)

// Tree is the populated-bin index. The zero value is not usable; call New.
// Mid and leaf words are allocated lazily and freed when they empty.
type Tree struct {
	root uint256.Int
	mid  map[uint8]*uint256.Int
	leaf map[uint16]*uint256.Int
	size int
}

func New() *Tree {
	return &Tree{
		mid:  make(map[uint8]*uint256.Int),
		leaf: make(map[uint16]*uint256.Int),
	}
}

// Len returns the number of ids in the tree.
func (t *Tree) Len() int { return t.size }

// Contains reports whether id is in the tree.
func (t *Tree) Contains(id uint32) bool {
	w := t.leaf[uint16(id>>8)]
	return w != nil && testBit(w, uint8(id))
}

// Add inserts id, reporting whether it was newly added.
func (t *Tree) Add(id uint32) bool {
	leafKey := uint16(id >> 8)
	w := t.leaf[leafKey]
	if w == nil {
		w = new(uint256.Int)
		t.leaf[leafKey] = w
	}
	if testBit(w, uint8(id)) {
		return false
	}
	setBit(w, uint8(id))

	midKey := uint8(id >> 16)
	mw := t.mid[midKey]
	if mw == nil {
		mw = new(uint256.Int)
		t.mid[midKey] = mw
	}
	setBit(mw, uint8(leafKey))
	setBit(&t.root, midKey)

	t.size++
	return true
}

// Remove deletes id, reporting whether it was present.
func (t *Tree) Remove(id uint32) bool {
	leafKey := uint16(id >> 8)
	w := t.leaf[leafKey]
	if w == nil || !testBit(w, uint8(id)) {
		return false
	}
	clearBit(w, uint8(id))
	t.size--

	if !w.IsZero() {
		return true
	}
	delete(t.leaf, leafKey)

	midKey := uint8(id >> 16)
	mw := t.mid[midKey]
	clearBit(mw, uint8(leafKey))
	if mw.IsZero() {
		delete(t.mid, midKey)
		clearBit(&t.root, midKey)
	}
	return true
}

// NextBelow returns the largest id in the tree strictly below id.
func (t *Tree) NextBelow(id uint32) (uint32, bool) {
	leafKey := uint16(id >> 8)
	if w := t.leaf[leafKey]; w != nil {
		if b, ok := msbBelow(w, int(uint8(id))); ok {
			return uint32(leafKey)<<8 | uint32(b), true
		}
	}

	midKey := uint8(id >> 16)
	if mw := t.mid[midKey]; mw != nil {
		if b, ok := msbBelow(mw, int(uint8(leafKey))); ok {
			return t.lastOfLeaf(uint16(midKey)<<8 | uint16(b)), true
		}
	}

	if b, ok := msbBelow(&t.root, int(midKey)); ok {
		mb, _ := msbBelow(t.mid[b], 256)
		return t.lastOfLeaf(uint16(b)<<8 | uint16(mb)), true
	}
	return 0, false
}

// NextAbove returns the smallest id in the tree strictly above id.
func (t *Tree) NextAbove(id uint32) (uint32, bool) {
	leafKey := uint16(id >> 8)
	if w := t.leaf[leafKey]; w != nil {
		if b, ok := lsbAbove(w, int(uint8(id))); ok {
			return uint32(leafKey)<<8 | uint32(b), true
		}
	}

	midKey := uint8(id >> 16)
	if mw := t.mid[midKey]; mw != nil {
		if b, ok := lsbAbove(mw, int(uint8(leafKey))); ok {
			return t.firstOfLeaf(uint16(midKey)<<8 | uint16(b)), true
		}
	}

	if b, ok := lsbAbove(&t.root, int(midKey)); ok {
		mb, _ := lsbAbove(t.mid[b], -1)
		return t.firstOfLeaf(uint16(b)<<8 | uint16(mb)), true
	}
	return 0, false
}

func (t *Tree) lastOfLeaf(leafKey uint16) uint32 {
	b, _ := msbBelow(t.leaf[leafKey], 256)
	return uint32(leafKey)<<8 | uint32(b)
}

func (t *Tree) firstOfLeaf(leafKey uint16) uint32 {
	b, _ := lsbAbove(t.leaf[leafKey], -1)
	return uint32(leafKey)<<8 | uint32(b)
}

func testBit(w *uint256.Int, b uint8) bool {
	return w[b>>6]&(1<<(b&63)) != 0
}

func setBit(w *uint256.Int, b uint8) {
	w[b>>6] |= 1 << (b & 63)
}

func clearBit(w *uint256.Int, b uint8) {
	w[b>>6] &^= 1 << (b & 63)
}

// msbBelow returns the highest set bit strictly below position limit.
// limit may be 256 to scan the whole word.
func msbBelow(w *uint256.Int, limit int) (uint8, bool) {
	if w == nil || limit <= 0 {
		return 0, false
	}
	for i := (limit - 1) >> 6; i >= 0; i-- {
		limb := w[i]
		if top := limit - i<<6; top < 64 {
			limb &= 1<<top - 1
		}
		if limb != 0 {
			return uint8(i<<6 + 63 - bits.LeadingZeros64(limb)), true
		}
	}
	return 0, false
}

// lsbAbove returns the lowest set bit strictly above position floor.
// floor may be -1 to scan the whole word.
func lsbAbove(w *uint256.Int, floor int) (uint8, bool) {
	if w == nil || floor >= 255 {
		return 0, false
	}
	for i := (floor + 1) >> 6; i < 4; i++ {
		limb := w[i]
		if bottom := floor + 1 - i<<6; bottom > 0 {
			limb &^= 1<<bottom - 1
		}
		if limb != 0 {
			return uint8(i<<6 + bits.TrailingZeros64(limb)), true
		}
	}
	return 0, false
}
