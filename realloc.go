// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package memheap

import "unsafe"

// Realloc resizes the allocation at ptr to newSize bytes, preserving the
// first min(oldSize, newSize) payload bytes, in priority order:
//
//  1. newSize == 0: frees ptr and returns (nil, nil).
//  2. ptr == nil: equivalent to Alloc(newSize).
//  3. Shrinking by less than a header-plus-minPayload: returns ptr
//     unchanged, since splitting off the remainder wouldn't be worth it.
//  4. Shrinking otherwise: splits off a tail item in place.
//  5. Growing into a FREE right neighbor with enough room to leave a
//     usable remainder: expands in place.
//  6. Otherwise: allocates a new block, copies, frees the old one.
func (h *Heap) Realloc(ptr unsafe.Pointer, newSize int) (unsafe.Pointer, error) {
	if h == nil {
		return nil, ErrInvalidArgument
	}
	if newSize < 0 {
		return nil, ErrInvalidArgument
	}
	if newSize == 0 {
		return nil, Free(ptr)
	}
	if ptr == nil {
		return h.Alloc(newSize)
	}

	want := roundRequest(newSize)

	it := itemFromPayload(ptr)
	it.validate()
	if it.isFree() {
		corrupt("realloc of a free item")
	}

	h.lock.Lock()

	old := uintptr(it.payloadSize())

	if want <= old {
		if old-want < headerSize+minPayload {
			h.lock.Unlock()
			return ptr, nil
		}
		h.shrinkInPlace(it, want)
		h.lock.Unlock()
		return ptr, nil
	}

	right := it.next
	if right.isFree() && old+uintptr(right.payloadSize()) > want+minPayload {
		h.expandInPlace(it, right, want)
		h.lock.Unlock()
		return ptr, nil
	}

	h.lock.Unlock()

	newPtr, err := h.Alloc(newSize)
	if err != nil {
		return nil, err
	}
	copySize := old
	if want < copySize {
		copySize = want
	}
	copy(unsafe.Slice((*byte)(newPtr), copySize), unsafe.Slice((*byte)(ptr), copySize))
	if err := Free(ptr); err != nil {
		return nil, err
	}
	return newPtr, nil
}

// ReallocAny is Realloc for callers that don't track which heap a pointer
// came from, deriving the owning heap from the item header the same way
// Free does. It is the convenience entry point memheap/sysheap uses to
// resize allocations routed across several tiered heaps.
func ReallocAny(ptr unsafe.Pointer, newSize int) (unsafe.Pointer, error) {
	if ptr == nil {
		return nil, ErrInvalidArgument
	}
	it := itemFromPayload(ptr)
	it.validate()
	h := it.pool
	if h == nil {
		corrupt("item has no owning heap")
	}
	return h.Realloc(ptr, newSize)
}

// shrinkInPlace splits it so that it keeps exactly want bytes of payload,
// attempts to right-merge the new tail item with a FREE neighbor, and
// links the tail item onto the free list. Caller holds h.lock.
func (h *Heap) shrinkInPlace(it *item, want uintptr) {
	old := uintptr(it.payloadSize())

	tailItem := (*item)(unsafe.Add(unsafe.Pointer(it), headerSize+want))
	tailItem.pool = h
	tailItem.magic = magicConst | stateFree
	tailItem.prevFree = nil
	tailItem.nextFree = nil

	blockListInsertAfter(it, tailItem)
	// The gap freed by shrinking it from old to want bytes splits into
	// tailItem's header and tailItem's own payload; only the payload
	// portion counts toward available.
	h.available += int(old-want) - int(headerSize)

	if tailItem.next.isFree() {
		right := tailItem.next
		freeListRemove(right)
		blockListSplice(right)
		h.available += int(headerSize)
	}
	freeListInsert(h, tailItem)
}

// expandInPlace consumes bytes from right (a FREE neighbor with enough
// payload) to grow it to want bytes, leaving a smaller FREE remainder.
// Caller holds h.lock.
func (h *Heap) expandInPlace(it, right *item, want uintptr) {
	old := uintptr(it.payloadSize())
	freeListRemove(right)
	blockListSplice(right)

	remainder := (*item)(unsafe.Add(unsafe.Pointer(it), headerSize+want))
	remainder.pool = h
	remainder.magic = magicConst | stateFree
	remainder.prevFree = nil
	remainder.nextFree = nil

	blockListInsertAfter(it, remainder)
	freeListInsert(h, remainder)

	h.available -= int(want - old)
}
