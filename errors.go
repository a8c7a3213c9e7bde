// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package memheap

import "errors"

var (
	// ErrOutOfMemory is returned by Alloc and Realloc when no free item in
	// the heap is large enough to satisfy the request. The heap is left
	// unmodified.
	ErrOutOfMemory = errors.New("memheap: out of memory")

	// ErrPoolTooSmall is returned by Init when the backing pool cannot hold
	// even the minimal single-item heap (two headers plus the minimum
	// payload).
	ErrPoolTooSmall = errors.New("memheap: pool too small")

	// ErrInvalidArgument is returned for nil heaps or pools.
	ErrInvalidArgument = errors.New("memheap: invalid argument")

	// ErrDetached is returned by Detach on a heap that has already been
	// detached. Other operations do not check for it.
	ErrDetached = errors.New("memheap: heap is detached")
)

// corruptionError marks heap-metadata corruption detected by a magic or
// adjacency check. Operations panic with this type rather than attempting
// recovery: continuing after corruption would only compound it.
type corruptionError struct {
	reason string
}

func (e *corruptionError) Error() string { return "memheap: corruption detected: " + e.reason }

func corrupt(reason string) {
	panic(&corruptionError{reason: reason})
}
