// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package memheap

// blockListSplice removes mid from the block list, joining its neighbors
// directly: prev.next = mid.next, mid.next.prev = prev.
func blockListSplice(mid *item) {
	mid.prev.next = mid.next
	mid.next.prev = mid.prev
}

// blockListInsertAfter inserts it into the block list immediately after
// prev, between prev and prev's former next neighbor.
func blockListInsertAfter(prev, it *item) {
	it.prev = prev
	it.next = prev.next
	prev.next.prev = it
	prev.next = it
}
