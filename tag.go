// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package memheap

import "unsafe"

// ownerTagSize is the number of bytes available for an owner tag: the
// combined storage of prevFree and nextFree, which are unused while the
// item is USED.
const ownerTagSize = int(2 * unsafe.Sizeof(uintptr(0)))

// ownerTagBytes reinterprets the item's free-list link fields as a raw
// byte array. This is only safe while the item is USED: in the FREE state
// those two words are live free-list pointers.
func (it *item) ownerTagBytes() *[ownerTagSize]byte {
	return (*[ownerTagSize]byte)(unsafe.Pointer(&it.prevFree))
}

func (it *item) setOwnerTag(tag string) {
	buf := it.ownerTagBytes()
	clear(buf[:])
	copy(buf[:], tag)
}

func (it *item) ownerTag() string {
	buf := it.ownerTagBytes()
	n := 0
	for n < len(buf) && buf[n] != 0 {
		n++
	}
	return string(buf[:n])
}

// SetTag attaches a short debug label to the USED item backing ptr,
// aliasing the item's otherwise-idle free-list link storage. Labels
// longer than two pointer words are truncated. Tagging a pointer
// not currently allocated from this heap, or one that is FREE, is a
// contract violation and panics like any other corruption.
//
// SetTag is a debug overlay: it has no effect on allocation, coalescing,
// or accounting.
func (h *Heap) SetTag(ptr unsafe.Pointer, tag string) {
	if ptr == nil {
		return
	}
	it := itemFromPayload(ptr)
	h.lock.Lock()
	defer h.lock.Unlock()
	it.validate()
	if it.isFree() {
		corrupt("cannot tag a free item")
	}
	if it.pool != h {
		corrupt("cannot tag an item owned by another heap")
	}
	it.setOwnerTag(tag)
}

// Tag returns the debug label previously attached with SetTag, or "" if
// none was set.
func (h *Heap) Tag(ptr unsafe.Pointer) string {
	if ptr == nil {
		return ""
	}
	it := itemFromPayload(ptr)
	h.lock.Lock()
	defer h.lock.Unlock()
	it.validate()
	if it.isFree() {
		return ""
	}
	return it.ownerTag()
}
