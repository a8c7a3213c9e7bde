// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sysheap

// noCopy prevents accidental copies of boundedPool, which embeds atomic
// counters that must not move once published.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
