// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package memheap

import "unsafe"

// Free releases a payload pointer previously returned by Alloc or Realloc,
// merging it with a FREE left and/or right neighbor (coalescing invariant
// 5). Free(nil) is a no-op.
//
// Passing a pointer not obtained from this package is undefined: the
// magic checks catch many, but not all, such mistakes, and corruption
// panics rather than attempting recovery.
func Free(ptr unsafe.Pointer) error {
	if ptr == nil {
		return nil
	}
	it := itemFromPayload(ptr)
	it.validate()
	if it.isFree() {
		corrupt("double free")
	}
	it.next.validate()

	h := it.pool
	if h == nil {
		corrupt("item has no owning heap")
	}

	h.lock.Lock()
	defer h.lock.Unlock()

	it.markFree()
	h.available += it.payloadSize()

	skipInsert := false
	if it.prev.isFree() {
		left := it.prev
		blockListSplice(it)
		it = left
		h.available += int(headerSize)
		skipInsert = true
	}
	if it.next.isFree() {
		right := it.next
		freeListRemove(right)
		blockListSplice(right)
		h.available += int(headerSize)
	}

	if !skipInsert {
		freeListInsert(h, it)
	}
	return nil
}
