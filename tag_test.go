// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package memheap_test

import (
	"testing"

	"code.hybscloud.com/memheap"
)

func TestTag_SetAndGet(t *testing.T) {
	h := newTestHeap(t, 4096)
	p, err := h.Alloc(64)
	if err != nil {
		t.Fatalf("Alloc() failed: %v", err)
	}

	if got := h.Tag(p); got != "" {
		t.Errorf("Tag() on an untagged item = %q, want \"\"", got)
	}

	h.SetTag(p, "connection-buffer")
	if got := h.Tag(p); got != "connection-buffer" {
		t.Errorf("Tag() = %q, want %q", got, "connection-buffer")
	}
}

func TestTag_TruncatesLongLabels(t *testing.T) {
	h := newTestHeap(t, 4096)
	p, err := h.Alloc(64)
	if err != nil {
		t.Fatalf("Alloc() failed: %v", err)
	}

	long := "this-label-is-much-longer-than-two-pointer-words"
	h.SetTag(p, long)
	got := h.Tag(p)
	if len(got) >= len(long) {
		t.Errorf("Tag() = %q (len %d), want truncated to at most two pointer words", got, len(got))
	}
	if got != long[:len(got)] {
		t.Errorf("Tag() = %q, want a prefix of %q", got, long)
	}
}

func TestTag_PanicsOnFreeItem(t *testing.T) {
	h := newTestHeap(t, 4096)
	p, err := h.Alloc(64)
	if err != nil {
		t.Fatalf("Alloc() failed: %v", err)
	}
	if err := memheap.Free(p); err != nil {
		t.Fatalf("Free() failed: %v", err)
	}

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("SetTag() on a freed item did not panic")
		}
	}()
	h.SetTag(p, "stale")
}

func TestTag_NilPointerIsNoop(t *testing.T) {
	h := newTestHeap(t, 4096)
	h.SetTag(nil, "whatever") // must not panic
	if got := h.Tag(nil); got != "" {
		t.Errorf("Tag(nil) = %q, want \"\"", got)
	}
}
