// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sysheap

import (
	"math"
	"sync/atomic"
	"unsafe"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/memheap/internal"
	"code.hybscloud.com/spin"
)

// boundedPool is a lock-free MPMC bounded pool of small integer slot IDs,
// adapted from the sibling iobuf package's BoundedPool[T]. System uses
// one per tier to bound how many heaps that tier may grow to: each slot
// ID taken via tryGet admits one heap into the tier's heap table and
// becomes part of that heap's name.
// Unlike iobuf's pool, slots are never Put back — growing a new heap for
// a tier is permanent, matching the allocator's "no returning memory to
// a lower-level allocator" non-goal — so boundedPool here only ever
// drains, it never refills.
//
// The algorithm is Nikolaev's scalable bounded MPMC queue
// (https://nikitakoval.org/publications/ppopp20-queues.pdf).
type boundedPool struct {
	_ noCopy

	capacity   uint32
	mask       uint32
	entries    []atomic.Uint64
	remapM     uint32
	remapN     uint32
	remapMask  uint32
	head, tail atomic.Uint32
}

const (
	boundedPoolEntryEmpty    = 1 << 62
	boundedPoolEntryTurnMask = boundedPoolEntryEmpty>>32 - 1
)

// newBoundedPool creates a boundedPool whose capacity is capacity rounded
// up to the next power of two, pre-filled with slot IDs 0..capacity-1.
func newBoundedPool(capacity int) *boundedPool {
	if capacity < 1 || capacity > math.MaxUint32 {
		panic("capacity must be between 1 and MaxUint32")
	}
	capacity--
	capacity |= capacity >> 1
	capacity |= capacity >> 2
	capacity |= capacity >> 4
	capacity |= capacity >> 8
	capacity |= capacity >> 16
	capacity++

	remapM := min(internal.CacheLineSize/unsafe.Sizeof(atomic.Uint64{}), uintptr(capacity))
	remapN := max(1, uintptr(capacity)/remapM)
	remapMask := remapN - 1

	pool := &boundedPool{
		capacity:  uint32(capacity),
		mask:      uint32(capacity - 1),
		remapM:    uint32(remapM),
		remapN:    uint32(remapN),
		remapMask: uint32(remapMask),
		entries:   make([]atomic.Uint64, capacity),
	}
	for i := range pool.capacity {
		pool.entries[i].Store(uint64(i))
	}
	pool.tail.Store(pool.capacity)
	return pool
}

// get acquires a slot ID, blocking until one is available.
func (pool *boundedPool) get() (int, error) {
	var aw iox.Backoff
	for {
		entry, err := pool.tryGet()
		if err == nil {
			return int(entry & uint64(pool.mask)), nil
		}
		if err == iox.ErrWouldBlock {
			aw.Wait()
			continue
		}
		return 0, err
	}
}

func (pool *boundedPool) tryGet() (entry uint64, err error) {
	sw := spin.Wait{}
	for {
		h, t := pool.head.Load(), pool.tail.Load()
		hi := pool.remap(h & pool.mask)
		e := pool.entries[hi].Load()

		if h != pool.head.Load() {
			sw.Once()
			continue
		}

		if h == t {
			return boundedPoolEntryEmpty, iox.ErrWouldBlock
		}

		nextTurn := (h/pool.capacity + 1) & boundedPoolEntryTurnMask
		if e == pool.empty(nextTurn) {
			pool.head.CompareAndSwap(h, h+1)
			sw.Once()
			continue
		}
		ok := pool.entries[hi].CompareAndSwap(e, pool.empty(nextTurn))
		pool.head.CompareAndSwap(h, h+1)
		if ok {
			return e, nil
		}
		sw.Once()
	}
}

func (pool *boundedPool) remap(cursor uint32) int {
	p, q := cursor/pool.remapN, cursor&pool.remapMask
	return int(q*pool.remapM + p%pool.remapM)
}

func (pool *boundedPool) empty(turn uint32) uint64 {
	return boundedPoolEntryEmpty | uint64(turn&boundedPoolEntryTurnMask)
}
