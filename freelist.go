// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package memheap

// freeListInsert links it at the head of the free list, immediately after
// the sentinel. it must already be marked FREE.
func freeListInsert(h *Heap, it *item) {
	sentinel := &h.freeSentinel
	it.nextFree = sentinel.nextFree
	it.prevFree = sentinel
	sentinel.nextFree.prevFree = it
	sentinel.nextFree = it
}

// freeListRemove unlinks it from the free list. it must currently be on
// the free list (FREE and not the sentinel).
func freeListRemove(it *item) {
	it.prevFree.nextFree = it.nextFree
	it.nextFree.prevFree = it.prevFree
	it.prevFree = nil
	it.nextFree = nil
}

// freeListFirstFit scans the free list starting after the sentinel and
// returns the first item whose payload is at least size bytes, or nil if
// none fits.
func freeListFirstFit(h *Heap, size uintptr) *item {
	sentinel := &h.freeSentinel
	for it := sentinel.nextFree; it != sentinel; it = it.nextFree {
		if uintptr(it.payloadSize()) >= size {
			return it
		}
	}
	return nil
}
