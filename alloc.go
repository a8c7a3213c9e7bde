// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package memheap

import "unsafe"

// Alloc reserves a payload of at least size bytes from the heap and
// returns a pointer aligned to the platform pointer width. It returns
// ErrOutOfMemory, without modifying the heap, if no free item is large
// enough.
//
// The request is rounded up to max(alignUp(size, align), minPayload)
// before the search.
func (h *Heap) Alloc(size int) (unsafe.Pointer, error) {
	if h == nil {
		return nil, ErrInvalidArgument
	}
	if size < 0 {
		return nil, ErrInvalidArgument
	}
	want := roundRequest(size)

	h.lock.Lock()
	defer h.lock.Unlock()

	// Strict inequality: a request exactly equal to available is rejected
	// as a conservative safety margin against the header the candidate
	// item still carries at this point.
	if want >= uintptr(h.available) {
		return nil, ErrOutOfMemory
	}

	candidate := freeListFirstFit(h, want)
	if candidate == nil {
		return nil, ErrOutOfMemory
	}

	if uintptr(candidate.payloadSize()) >= want+headerSize+minPayload {
		h.split(candidate, want)
	} else {
		freeListRemove(candidate)
		h.available -= candidate.payloadSize()
	}

	candidate.pool = h
	candidate.markUsed()

	if used := h.size - h.available; used > h.maxUsed {
		h.maxUsed = used
	}

	return candidate.payload(), nil
}

// split places a new FREE item right after the first want bytes of
// candidate's payload, leaving candidate with exactly want bytes of
// payload and giving the new item the rest, less its own header.
// candidate must currently be on the free list with payload big enough
// to hold want plus a header plus minPayload (invariant 10).
func (h *Heap) split(candidate *item, want uintptr) {
	tailItem := (*item)(unsafe.Add(unsafe.Pointer(candidate), headerSize+want))
	tailItem.pool = h
	tailItem.magic = magicConst | stateFree
	tailItem.prevFree = nil
	tailItem.nextFree = nil

	blockListInsertAfter(candidate, tailItem)
	freeListRemove(candidate)
	freeListInsert(h, tailItem)

	h.available -= int(want) + int(headerSize)
}
