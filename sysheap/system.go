// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sysheap implements a multi-heap façade: a multiplexer over
// several named, size-tiered memheap.Heap instances that implements
// Alloc/Free/Realloc/Calloc on top of them, the way a C runtime's malloc
// multiplexes several arenas.
//
// Requests are routed to the smallest tier whose heaps have room, first
// by trying every heap already provisioned for that tier, then — on a
// miss — the next tier up. A tier's heap table starts with one heap and
// grows, up to a configured cap, the first time every existing heap in
// that tier reports exhaustion.
package sysheap

import (
	"fmt"
	"sync"
	"unsafe"

	"code.hybscloud.com/memheap"
	"code.hybscloud.com/memheap/registry"
)

// defaultMaxExtraHeapsPerTier bounds how many additional heaps a tier may
// grow to beyond its initial one, via that tier's boundedPool of slot
// IDs. The bound is not exact: the pool rounds its capacity (the cap plus
// one for the initial heap) up to a power of two, so with the default of
// 4 a tier may hold up to 8 heaps in total.
const defaultMaxExtraHeapsPerTier = 4

var tierNames = [tierEnd]string{
	TierSmallT:  "small",
	TierMediumT: "medium",
	TierBigT:    "big",
	TierLargeT:  "large",
	TierHugeT:   "huge",
	TierVastT:   "vast",
	TierGiantT:  "giant",
	TierTitanT:  "titan",
}

type tierTable struct {
	mu    sync.RWMutex
	heaps []*memheap.Heap
	slots *boundedPool
}

// System multiplexes a tiered set of heaps under one name.
type System struct {
	name  string
	tiers [tierEnd]*tierTable
	reg   *registry.Registry
}

// New creates a System named name with the default extra-heap-per-tier
// cap, and eagerly provisions the first heap of each tier.
func New(name string) (*System, error) {
	return NewWithCapacity(name, defaultMaxExtraHeapsPerTier)
}

// NewWithCapacity is New with an explicit cap on how many extra heaps
// each tier may grow to beyond its first. As with the default, the
// tier's total heap count maxExtraHeapsPerTier+1 is rounded up to a power
// of two.
func NewWithCapacity(name string, maxExtraHeapsPerTier int) (*System, error) {
	if maxExtraHeapsPerTier < 0 {
		return nil, memheap.ErrInvalidArgument
	}
	s := &System{name: name, reg: registry.Default()}
	for t := Tier(0); t < tierEnd; t++ {
		// +1: one slot for the tier's initial heap, provisioned below,
		// plus the caller's budget of additional heaps.
		s.tiers[t] = &tierTable{slots: newBoundedPool(maxExtraHeapsPerTier + 1)}
		if _, err := s.tiers[t].grow(name, t); err != nil {
			return nil, fmt.Errorf("sysheap: provisioning tier %s: %w", tierNames[t], err)
		}
	}
	return s, nil
}

// grow provisions one more heap for the tier, or reports iox.ErrWouldBlock
// if the tier has already reached its configured extra-heap cap. It uses
// the pool's non-blocking tryGet rather than get: since slots are never
// returned, blocking here would wait forever once a tier is maxed out,
// instead of letting the caller fall back to a larger tier.
func (t *tierTable) grow(sysName string, tier Tier) (*memheap.Heap, error) {
	entry, err := t.slots.tryGet()
	if err != nil {
		return nil, err
	}
	slot := entry & uint64(t.slots.mask)
	pool := memheap.NewCacheLineAlignedPool(tier.Size())
	name := fmt.Sprintf("%s.%s.%d", sysName, tierNames[tier], slot)
	h, err := memheap.Init(name, pool)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	t.heaps = append(t.heaps, h)
	t.mu.Unlock()
	return h, nil
}

func (t *tierTable) snapshot() []*memheap.Heap {
	t.mu.RLock()
	defer t.mu.RUnlock()
	heaps := make([]*memheap.Heap, len(t.heaps))
	copy(heaps, t.heaps)
	return heaps
}

// Alloc routes a request to the smallest suitable tier: it tries every
// heap already in that tier, then grows the tier a new heap, and only
// when the tier is at its cap moves on to the next larger tier.
func (s *System) Alloc(size int) (unsafe.Pointer, error) {
	start := tierBySize(size)
	for t := start; t < tierEnd; t++ {
		if ptr, err := s.allocFromTier(t, size); err == nil {
			return ptr, nil
		} else if err != memheap.ErrOutOfMemory {
			return nil, err
		}
	}
	return nil, memheap.ErrOutOfMemory
}

func (s *System) allocFromTier(t Tier, size int) (unsafe.Pointer, error) {
	table := s.tiers[t]
	for _, h := range table.snapshot() {
		ptr, err := h.Alloc(size)
		if err == nil {
			return ptr, nil
		}
		if err != memheap.ErrOutOfMemory {
			return nil, err
		}
	}
	h, err := table.grow(s.name, t)
	if err != nil {
		return nil, memheap.ErrOutOfMemory
	}
	return h.Alloc(size)
}

// Free releases ptr back to whichever heap it came from. The owning
// heap is derived from the item's header, so Free does not need to know
// which tier allocated ptr.
func (s *System) Free(ptr unsafe.Pointer) error {
	return memheap.Free(ptr)
}

// Realloc resizes ptr within the heap that owns it, derived from the
// item's header. It does not move the block to another heap or tier:
// when the owning heap cannot hold newSize it returns
// memheap.ErrOutOfMemory and ptr stays valid.
func (s *System) Realloc(ptr unsafe.Pointer, newSize int) (unsafe.Pointer, error) {
	return memheap.ReallocAny(ptr, newSize)
}

// Calloc allocates space for n elements of size bytes each and zeroes
// the first n*size bytes of the result, the way C's calloc does. It
// returns ErrInvalidArgument on overflow of n*size.
func (s *System) Calloc(n, size int) (unsafe.Pointer, error) {
	if n < 0 || size < 0 {
		return nil, memheap.ErrInvalidArgument
	}
	total := n * size
	if size != 0 && total/size != n {
		return nil, memheap.ErrInvalidArgument
	}
	ptr, err := s.Alloc(total)
	if err != nil {
		return nil, err
	}
	if total > 0 {
		clear(unsafe.Slice((*byte)(ptr), total))
	}
	return ptr, nil
}
