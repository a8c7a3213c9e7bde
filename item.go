// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package memheap

import (
	"unsafe"

	"code.hybscloud.com/memheap/internal"
)

const (
	// magicConst is a high-entropy constant stamped into every item header.
	// Its low bit is reserved for the state flag and is always 0 in the
	// constant itself.
	magicConst = uint32(0x1ea01ea0)
	// magicMask isolates the corruption-detection bits from the state bit.
	magicMask = ^uint32(1)
	// stateUsed/stateFree are the two values the state bit can take.
	stateUsed = uint32(1)
	stateFree = uint32(0)

	// align is the platform pointer alignment, selected per architecture
	// the same way internal selects CacheLineSize.
	align = uintptr(internal.PointerAlign)

	// minPayload is the minimum usable payload of any item. Requests are
	// rounded up to at least this size.
	minPayload = 12
)

// item is the fixed-size, alignment-padded record stored immediately before
// the payload of every item in the pool, whether FREE or USED.
type item struct {
	magic uint32
	pool  *Heap
	prev  *item
	next  *item

	// prevFree/nextFree are meaningful only while the item is FREE. They
	// are cleared to nil on every transition to USED, which is also what
	// makes it safe for the owner-tag overlay in tag.go to alias this
	// storage.
	prevFree *item
	nextFree *item
}

// headerSize is the alignment-padded size of one item header.
var headerSize = alignUp(unsafe.Sizeof(item{}), align)

func alignUp(n, a uintptr) uintptr {
	return (n + a - 1) &^ (a - 1)
}

func alignDown(n, a uintptr) uintptr {
	return n &^ (a - 1)
}

func roundRequest(size int) uintptr {
	n := alignUp(uintptr(size), align)
	if n < minPayload {
		n = minPayload
	}
	return n
}

func (it *item) isFree() bool { return it.magic&1 == stateFree }
func (it *item) isUsed() bool { return it.magic&1 == stateUsed }

// validate panics if the header's corruption-detection bits have been
// overwritten. Called on every free and on neighbor inspection.
func (it *item) validate() {
	if it.magic&magicMask != magicConst {
		corrupt("bad item magic")
	}
}

func (it *item) markUsed() {
	it.magic = magicConst | stateUsed
	it.prevFree = nil
	it.nextFree = nil
}

func (it *item) markFree() {
	it.magic = magicConst | stateFree
}

// addr returns the item's address in the pool as a uintptr, used for
// address-order comparisons and payload-size arithmetic.
func (it *item) addr() uintptr {
	return uintptr(unsafe.Pointer(it))
}

// payloadSize computes the usable payload size purely from the block list:
// the distance to the next item, less this item's header.
func (it *item) payloadSize() int {
	return int(it.next.addr() - it.addr() - headerSize)
}

// payload returns the pointer to the first byte after the header, the
// address callers see and eventually pass back to Free/Realloc.
func (it *item) payload() unsafe.Pointer {
	return unsafe.Add(unsafe.Pointer(it), headerSize)
}

// itemFromPayload recovers the header preceding a payload pointer
// previously handed out by Alloc or Realloc.
func itemFromPayload(ptr unsafe.Pointer) *item {
	return (*item)(unsafe.Add(ptr, -int(headerSize)))
}
