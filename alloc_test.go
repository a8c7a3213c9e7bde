// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package memheap_test

import (
	"testing"
	"unsafe"

	"code.hybscloud.com/memheap"
)

func newTestHeap(t *testing.T, size int) *memheap.Heap {
	t.Helper()
	pool := make([]byte, size)
	h, err := memheap.Init(t.Name(), pool)
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	t.Cleanup(func() { _ = h.Detach() })
	return h
}

func TestInit_RejectsNilAndTooSmall(t *testing.T) {
	if _, err := memheap.Init("nil-pool", nil); err != memheap.ErrInvalidArgument {
		t.Errorf("Init(nil) = %v, want ErrInvalidArgument", err)
	}
	if _, err := memheap.Init("tiny-pool", make([]byte, 4)); err != memheap.ErrPoolTooSmall {
		t.Errorf("Init(4 bytes) = %v, want ErrPoolTooSmall", err)
	}
}

func TestInit_SingleFreeBody(t *testing.T) {
	h := newTestHeap(t, 4096)
	stats := h.Stats()
	if stats.Available <= 0 || stats.Available >= stats.Size {
		t.Fatalf("Available = %d, want in (0, %d)", stats.Available, stats.Size)
	}

	count := 0
	h.Walk(func(it memheap.ItemInfo) bool {
		count++
		return true
	})
	if count != 2 {
		t.Fatalf("fresh heap should have exactly one body item and a tail, got %d items", count)
	}
}

func TestAlloc_NoSplitWhenRemainderTooSmall(t *testing.T) {
	h := newTestHeap(t, 256)
	before := h.Stats().Available

	p, err := h.Alloc(before - 8) // leaves less than a header+minPayload remainder
	if err != nil {
		t.Fatalf("Alloc() failed: %v", err)
	}
	if p == nil {
		t.Fatal("Alloc() returned nil pointer on success")
	}

	var used int
	h.Walk(func(it memheap.ItemInfo) bool {
		if it.Used && !it.IsTail {
			used++
		}
		return true
	})
	if used != 1 {
		t.Errorf("expected exactly one USED item (no split), got %d", used)
	}
}

func TestAlloc_SplitsWhenRemainderIsUsable(t *testing.T) {
	h := newTestHeap(t, 4096)

	p, err := h.Alloc(32)
	if err != nil {
		t.Fatalf("Alloc() failed: %v", err)
	}
	if p == nil {
		t.Fatal("Alloc() returned nil pointer on success")
	}

	var used, free int
	h.Walk(func(it memheap.ItemInfo) bool {
		switch {
		case it.IsTail:
		case it.Used:
			used++
		default:
			free++
		}
		return true
	})
	if used != 1 || free != 1 {
		t.Fatalf("expected a split into one USED and one FREE item, got used=%d free=%d", used, free)
	}
}

func TestAlloc_OutOfMemory(t *testing.T) {
	h := newTestHeap(t, 256)
	avail := h.Stats().Available

	if _, err := h.Alloc(avail); err != memheap.ErrOutOfMemory {
		t.Fatalf("Alloc(available) = %v, want ErrOutOfMemory", err)
	}
	if _, err := h.Alloc(avail * 10); err != memheap.ErrOutOfMemory {
		t.Fatalf("Alloc(huge) = %v, want ErrOutOfMemory", err)
	}

	// The heap must be left unmodified by a failed allocation.
	stillAvail := h.Stats().Available
	if stillAvail != avail {
		t.Errorf("available changed after failed Alloc: %d -> %d", avail, stillAvail)
	}
}

func TestAlloc_NegativeSizeIsInvalid(t *testing.T) {
	h := newTestHeap(t, 256)
	if _, err := h.Alloc(-1); err != memheap.ErrInvalidArgument {
		t.Errorf("Alloc(-1) = %v, want ErrInvalidArgument", err)
	}
}

func TestAlloc_NilHeap(t *testing.T) {
	var h *memheap.Heap
	if _, err := h.Alloc(8); err != memheap.ErrInvalidArgument {
		t.Errorf("(*Heap)(nil).Alloc() = %v, want ErrInvalidArgument", err)
	}
}

func TestAlloc_PointerWritable(t *testing.T) {
	h := newTestHeap(t, 4096)
	p, err := h.Alloc(64)
	if err != nil {
		t.Fatalf("Alloc() failed: %v", err)
	}
	buf := unsafe.Slice((*byte)(p), 64)
	for i := range buf {
		buf[i] = byte(i)
	}
	for i := range buf {
		if buf[i] != byte(i) {
			t.Fatalf("payload not writable/readable at offset %d", i)
		}
	}
}
