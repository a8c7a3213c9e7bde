// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package registry implements the object-registry collaborator the core
// memheap package depends on: a name-to-heap lookup table that the
// multi-heap façade (memheap/sysheap) and the diagnostic dump
// (memheap/diag) use to enumerate live heaps, without memheap itself
// depending on either.
//
// The registry only knows about a minimal Heap interface, so it never
// imports memheap; memheap imports registry instead, to register and
// unregister heaps at Init and Detach.
package registry

import (
	"errors"
	"sync"
)

// ErrAlreadyRegistered is returned by Register when a heap with the same
// name is already live in the registry.
var ErrAlreadyRegistered = errors.New("registry: name already registered")

// Heap is the minimal contract a heap descriptor must satisfy to be
// tracked by a Registry. memheap.Heap implements it.
type Heap interface {
	HeapName() string
}

// Registry is a mutex-protected, name-keyed table of live heaps. It is
// safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	heaps map[string]Heap
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{heaps: make(map[string]Heap)}
}

// Register adds h under h.HeapName(). It returns ErrAlreadyRegistered if
// that name is already in use.
func (r *Registry) Register(h Heap) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := h.HeapName()
	if _, exists := r.heaps[name]; exists {
		return ErrAlreadyRegistered
	}
	r.heaps[name] = h
	return nil
}

// Unregister removes the heap registered under name, if any.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.heaps, name)
}

// Lookup returns the heap registered under name, if any.
func (r *Registry) Lookup(name string) (Heap, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.heaps[name]
	return h, ok
}

// Each calls fn for every registered heap, in unspecified order, until
// fn returns false or every heap has been visited. Each takes a
// snapshot of the registry under its read lock before calling fn, so fn
// may itself call Register or Unregister without deadlocking.
func (r *Registry) Each(fn func(Heap) bool) {
	r.mu.RLock()
	snapshot := make([]Heap, 0, len(r.heaps))
	for _, h := range r.heaps {
		snapshot = append(snapshot, h)
	}
	r.mu.RUnlock()

	for _, h := range snapshot {
		if !fn(h) {
			return
		}
	}
}

// Len reports the number of currently registered heaps.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.heaps)
}

var defaultRegistry = New()

// Default returns the package-level registry that memheap.Init and
// memheap.Heap.Detach use.
func Default() *Registry {
	return defaultRegistry
}
