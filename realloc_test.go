// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package memheap_test

import (
	"testing"
	"unsafe"

	"code.hybscloud.com/memheap"
)

func TestRealloc_ZeroSizeFrees(t *testing.T) {
	h := newTestHeap(t, 4096)
	before := h.Stats().Available

	p, err := h.Alloc(64)
	if err != nil {
		t.Fatalf("Alloc() failed: %v", err)
	}
	got, err := h.Realloc(p, 0)
	if err != nil {
		t.Fatalf("Realloc(p, 0) failed: %v", err)
	}
	if got != nil {
		t.Errorf("Realloc(p, 0) = %v, want nil", got)
	}
	if after := h.Stats().Available; after != before {
		t.Errorf("available after Realloc(p, 0) = %d, want %d", after, before)
	}
}

func TestRealloc_NilPointerAllocates(t *testing.T) {
	h := newTestHeap(t, 4096)
	p, err := h.Realloc(nil, 64)
	if err != nil {
		t.Fatalf("Realloc(nil, 64) failed: %v", err)
	}
	if p == nil {
		t.Fatal("Realloc(nil, 64) returned nil pointer on success")
	}
}

func TestRealloc_ShrinkInPlacePreservesPrefix(t *testing.T) {
	h := newTestHeap(t, 4096)
	p, err := h.Alloc(256)
	if err != nil {
		t.Fatalf("Alloc() failed: %v", err)
	}
	src := unsafe.Slice((*byte)(p), 256)
	for i := range src {
		src[i] = byte(i)
	}

	shrunk, err := h.Realloc(p, 32)
	if err != nil {
		t.Fatalf("Realloc(shrink) failed: %v", err)
	}
	if shrunk != p {
		t.Error("shrinking in place should return the same pointer")
	}
	dst := unsafe.Slice((*byte)(shrunk), 32)
	for i := range dst {
		if dst[i] != byte(i) {
			t.Fatalf("byte %d = %d, want %d after shrink", i, dst[i], byte(i))
		}
	}
}

func TestRealloc_ShrinkBelowThresholdIsNoop(t *testing.T) {
	h := newTestHeap(t, 4096)
	p, err := h.Alloc(32)
	if err != nil {
		t.Fatalf("Alloc() failed: %v", err)
	}
	got, err := h.Realloc(p, 30) // shrinking by 2 bytes isn't worth a split
	if err != nil {
		t.Fatalf("Realloc() failed: %v", err)
	}
	if got != p {
		t.Error("a shrink too small to split should return the original pointer")
	}
}

func TestRealloc_ExpandInPlaceIntoFreeRightNeighbor(t *testing.T) {
	h := newTestHeap(t, 4096)

	p, err := h.Alloc(32)
	if err != nil {
		t.Fatalf("Alloc(p) failed: %v", err)
	}
	src := unsafe.Slice((*byte)(p), 32)
	for i := range src {
		src[i] = byte(i + 1)
	}
	// Allocate and immediately free a neighbor so there is FREE room for p
	// to expand into without moving.
	q, err := h.Alloc(512)
	if err != nil {
		t.Fatalf("Alloc(q) failed: %v", err)
	}
	if err := memheap.Free(q); err != nil {
		t.Fatalf("Free(q) failed: %v", err)
	}

	grown, err := h.Realloc(p, 256)
	if err != nil {
		t.Fatalf("Realloc(expand) failed: %v", err)
	}
	if grown != p {
		t.Error("expanding into a free right neighbor should return the same pointer")
	}
	dst := unsafe.Slice((*byte)(grown), 32)
	for i := range dst {
		if dst[i] != byte(i+1) {
			t.Fatalf("byte %d = %d, want %d after expand", i, dst[i], byte(i+1))
		}
	}
}

func TestRealloc_FallbackAllocatesCopiesAndFrees(t *testing.T) {
	h := newTestHeap(t, 4096)

	p, err := h.Alloc(32)
	if err != nil {
		t.Fatalf("Alloc(p) failed: %v", err)
	}
	src := unsafe.Slice((*byte)(p), 32)
	for i := range src {
		src[i] = byte(i + 7)
	}
	// Pin p's right neighbor USED so there's no room to expand in place,
	// forcing the allocate-copy-free fallback.
	pin, err := h.Alloc(16)
	if err != nil {
		t.Fatalf("Alloc(pin) failed: %v", err)
	}
	_ = pin

	moved, err := h.Realloc(p, 512)
	if err != nil {
		t.Fatalf("Realloc(fallback) failed: %v", err)
	}
	if moved == p {
		t.Error("fallback realloc should not return the original pointer when it cannot grow in place")
	}
	dst := unsafe.Slice((*byte)(moved), 32)
	for i := range dst {
		if dst[i] != byte(i+7) {
			t.Fatalf("byte %d = %d, want %d after fallback realloc", i, dst[i], byte(i+7))
		}
	}

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("the old pointer should be freed by the fallback path; double free did not panic")
		}
	}()
	_ = memheap.Free(p)
}

func TestReallocAny_DerivesOwningHeap(t *testing.T) {
	h := newTestHeap(t, 4096)
	p, err := h.Alloc(32)
	if err != nil {
		t.Fatalf("Alloc() failed: %v", err)
	}
	got, err := memheap.ReallocAny(p, 64)
	if err != nil {
		t.Fatalf("ReallocAny() failed: %v", err)
	}
	if got == nil {
		t.Fatal("ReallocAny() returned nil pointer on success")
	}
}

func TestReallocAny_NilIsInvalid(t *testing.T) {
	if _, err := memheap.ReallocAny(nil, 64); err != memheap.ErrInvalidArgument {
		t.Errorf("ReallocAny(nil, 64) = %v, want ErrInvalidArgument", err)
	}
}
