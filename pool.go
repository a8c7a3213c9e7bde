// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package memheap

import (
	"unsafe"

	"code.hybscloud.com/memheap/internal"
)

// CacheLineSize is the CPU L1 cache line size for the current architecture,
// selected at compile time the same way internal.CacheLineSize is.
const CacheLineSize = internal.CacheLineSize

// PageSize defines the standard memory page size (4 KiB) used by NewPool
// to align freshly carved pools.
var PageSize uintptr = 4096

// SetPageSize updates the package-level page size used by NewPool.
func SetPageSize(size int) {
	PageSize = uintptr(size)
}

// NewPool allocates a page-aligned byte slice of the requested size,
// suitable as the pool argument to Init. Page alignment matters for
// heaps that back DMA-visible or mmap-backed regions in a larger system;
// ordinary in-process heaps only need pointer alignment, which Init
// establishes on its own.
//
// The returned slice shares underlying memory with a larger allocation;
// callers must not assume len(result) == cap(result).
func NewPool(size int) []byte {
	p := make([]byte, uintptr(size)+PageSize-1)
	base := unsafe.Pointer(unsafe.SliceData(p))
	offset := ((uintptr(base)+PageSize-1)/PageSize)*PageSize - uintptr(base)
	return unsafe.Slice((*byte)(unsafe.Add(base, offset)), size)
}

// NewCacheLineAlignedPool allocates a byte slice of the requested size
// whose starting address is aligned to the CPU L1 cache line. Use this
// instead of NewPool when several heaps' pools will be adjacent in
// memory (for example, one per tier in memheap/sysheap) and must not
// false-share a cache line at the boundary.
func NewCacheLineAlignedPool(size int) []byte {
	align := uintptr(CacheLineSize)
	p := make([]byte, uintptr(size)+align-1)
	base := unsafe.Pointer(unsafe.SliceData(p))
	offset := ((uintptr(base)+align-1)/align)*align - uintptr(base)
	return unsafe.Slice((*byte)(unsafe.Add(base, offset)), size)
}
