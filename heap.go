// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package memheap

import (
	"unsafe"

	"code.hybscloud.com/memheap/internal"
	"code.hybscloud.com/memheap/registry"
	"code.hybscloud.com/spin"
)

// Heap is a bounded-region heap descriptor. It manages exactly one
// contiguous pool, provided at Init and owned by the caller for the
// lifetime of the heap, as a boundary-tag doubly-linked block list plus a
// circular explicit free list.
//
// A Heap is safe for concurrent use: every mutating operation serializes
// through a single spin.Mutex.
type Heap struct {
	_ noCopy

	name  string
	pool  []byte
	start uintptr
	size  int

	// lock, available and maxUsed are the hot fields touched by every
	// operation; they are kept together and padded to a cache line so
	// neighboring heaps in a registry or sysheap table don't false-share.
	lock      spin.Mutex
	available int
	maxUsed   int
	_         [internal.CacheLineSize]byte

	freeSentinel item
	blockHead    *item
	tail         *item

	detached bool
}

// HeapName implements registry.Heap.
func (h *Heap) HeapName() string { return h.name }

// Init carves a new heap out of pool: the pool's size is rounded down to
// the platform pointer alignment, one header at the start of the pool
// belongs to the body item and one at its end to the tail sentinel, and
// the bytes between them become a single FREE item linked into both lists.
//
// Init registers the heap under name in the default registry; Detach
// unregisters it.
func Init(name string, pool []byte) (*Heap, error) {
	if pool == nil {
		return nil, ErrInvalidArgument
	}
	base := uintptr(unsafe.Pointer(unsafe.SliceData(pool)))
	size := alignDown(uintptr(len(pool)), align)
	if size < 2*headerSize+minPayload {
		return nil, ErrPoolTooSmall
	}
	pool = pool[:size]

	h := &Heap{
		name:  name,
		pool:  pool,
		start: base,
		size:  int(size),
	}
	h.available = int(size) - 2*int(headerSize)

	h.freeSentinel.magic = magicConst | stateFree
	h.freeSentinel.prevFree = &h.freeSentinel
	h.freeSentinel.nextFree = &h.freeSentinel

	body := (*item)(unsafe.Pointer(unsafe.SliceData(pool)))
	tail := (*item)(unsafe.Add(unsafe.Pointer(body), headerSize+uintptr(h.available)))

	body.magic = magicConst | stateFree
	body.pool = h
	body.prev = tail
	body.next = tail
	body.prevFree = nil
	body.nextFree = nil

	tail.magic = magicConst | stateUsed
	tail.pool = h
	tail.prev = body
	tail.next = body
	tail.prevFree = nil
	tail.nextFree = nil

	h.blockHead = body
	h.tail = tail

	freeListInsert(h, body)

	if err := registry.Default().Register(h); err != nil {
		return nil, err
	}
	return h, nil
}

// Detach unregisters the heap. The pool's contents are left untouched;
// the caller remains responsible for the backing memory's lifetime.
func (h *Heap) Detach() error {
	if h == nil {
		return ErrInvalidArgument
	}
	h.lock.Lock()
	defer h.lock.Unlock()
	if h.detached {
		return ErrDetached
	}
	h.detached = true
	registry.Default().Unregister(h.name)
	return nil
}

// Stats is a point-in-time snapshot of a heap's bookkeeping counters,
// exposed for diagnostics without leaking internal pointers.
type Stats struct {
	Name      string
	Size      int
	Available int
	MaxUsed   int
}

// Stats returns a snapshot of the heap's counters.
func (h *Heap) Stats() Stats {
	h.lock.Lock()
	defer h.lock.Unlock()
	return Stats{Name: h.name, Size: h.size, Available: h.available, MaxUsed: h.maxUsed}
}

// ItemInfo describes one block-list entry, for diagnostic iteration via
// Walk. Addr is informational only; it is not a usable payload pointer.
type ItemInfo struct {
	Addr     uintptr
	Size     int
	Used     bool
	IsTail   bool
	OwnerTag string
}

// Walk calls fn for every item in block-list (address) order, including
// the tail sentinel, stopping early if fn returns false. Walk holds the
// heap's lock for its duration, so fn must not call back into the heap.
func (h *Heap) Walk(fn func(ItemInfo) bool) {
	h.lock.Lock()
	defer h.lock.Unlock()

	it := h.blockHead
	for {
		info := ItemInfo{
			Addr:   it.addr(),
			Used:   it.isUsed(),
			IsTail: it == h.tail,
		}
		if info.IsTail {
			info.Size = 0
		} else {
			info.Size = it.payloadSize()
		}
		if it.isUsed() {
			info.OwnerTag = it.ownerTag()
		}
		if !fn(info) {
			return
		}
		if it == h.tail {
			return
		}
		it = it.next
	}
}
