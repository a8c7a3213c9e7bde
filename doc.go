// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package memheap implements a bounded-region heap allocator for
// embedded and real-time environments where the entire memory pool is
// supplied at initialization from a fixed byte range and all bookkeeping
// lives inline within that range.
//
// # Heap Layout
//
// A heap manages one contiguous pool as a boundary-tag doubly-linked
// block list, plus a circular explicit free list rooted at a sentinel
// kept outside the pool (inside the Heap descriptor). A permanent USED
// tail sentinel terminates both merging and iteration without a nil
// check:
//
//	pool := memheap.NewPool(64 * 1024)
//	h, err := memheap.Init("arena", pool)
//	if err != nil {
//	    // pool too small, or nil
//	}
//	p, err := h.Alloc(128)
//	if err != nil {
//	    // ErrOutOfMemory
//	}
//	p, err = h.Realloc(p, 256)
//	err = memheap.Free(p)
//
// # Allocation Policy
//
// Alloc uses first-fit: it scans the free list in free-list order (most
// recently freed first) and takes the first item whose payload meets the
// request, splitting off the remainder when it would still hold a header
// plus the minimum payload. There is no best-fit or segregated
// size-class policy, no background coalescing pass, and no
// defragmentation: the pool is immovable and fixed for the life of the
// heap.
//
// # Concurrency
//
// Every Heap serializes its own mutations through a single
// code.hybscloud.com/spin.Mutex — a binary, FIFO-fair primitive, the same
// concurrency dependency the sibling iobuf package uses for its bounded
// pools. An operation acquires at most one lock; Realloc's
// allocate-copy-free fallback releases the lock before calling Alloc and
// Free, which each re-acquire independently, to avoid recursive
// acquisition of a non-reentrant lock.
//
// # Corruption Detection
//
// Every header carries a 32-bit magic value combining a high-entropy
// constant with a one-bit USED/FREE state flag. Free and neighbor
// inspection validate the constant bits on every call; a mismatch is
// heap corruption and panics rather than attempting recovery.
//
// # Multi-Heap Façade, Registry, and Diagnostics
//
// A multi-heap façade, an object registry, and a diagnostic dump utility
// sit on top of this core package, each in its own package, and none of
// them reach into memheap's unexported state: memheap/sysheap (tiered
// multi-heap routing), memheap/registry (name-to-heap lookup), and
// memheap/diag (formatted block-list dumps via Heap.Walk and
// Heap.Stats).
//
// # Dependencies
//
// memheap depends on:
//   - code.hybscloud.com/spin: the per-heap mutex and, in memheap/sysheap,
//     spin-wait primitives for heap-slot backpressure.
//   - code.hybscloud.com/iox: semantic error types (ErrWouldBlock) used by
//     memheap/sysheap's bounded heap-slot pool.
package memheap
