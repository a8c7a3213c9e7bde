// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package memheap

// noCopy is a sentinel used to prevent copying of Heap, which embeds a
// spin.Mutex. go vet's copylocks check flags any value containing a
// noCopy field that is passed or assigned by value.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
