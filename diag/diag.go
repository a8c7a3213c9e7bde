// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package diag implements the diagnostic-channel collaborator the core
// memheap package treats as external: a formatted-print sink over a
// live heap's block list, the Go-idiomatic analogue of the reference
// implementation's list_mem shell command.
//
// diag never reaches into memheap's unexported state; it is built
// entirely on the exported Heap.Stats and Heap.Walk API.
package diag

import (
	"fmt"
	"io"

	"code.hybscloud.com/memheap"
	"code.hybscloud.com/memheap/registry"
)

// Dump writes a human-readable report of h's bookkeeping counters and
// block list to w, one line per item in address order.
func Dump(w io.Writer, h *memheap.Heap) error {
	stats := h.Stats()
	if _, err := fmt.Fprintf(w, "heap %q: size=%d available=%d max_used=%d\n",
		stats.Name, stats.Size, stats.Available, stats.MaxUsed); err != nil {
		return err
	}

	var walkErr error
	h.Walk(func(it memheap.ItemInfo) bool {
		state := "FREE"
		switch {
		case it.IsTail:
			state = "TAIL"
		case it.Used:
			state = "USED"
		}
		tag := ""
		if it.OwnerTag != "" {
			tag = " tag=" + it.OwnerTag
		}
		_, walkErr = fmt.Fprintf(w, "  0x%016x size=%-8d %s%s\n", it.Addr, it.Size, state, tag)
		return walkErr == nil
	})
	return walkErr
}

// DumpAll writes a Dump report for every heap currently registered in r.
func DumpAll(w io.Writer, r *registry.Registry) error {
	var outer error
	r.Each(func(h registry.Heap) bool {
		heap, ok := h.(*memheap.Heap)
		if !ok {
			return true
		}
		if outer = Dump(w, heap); outer != nil {
			return false
		}
		return true
	})
	return outer
}
