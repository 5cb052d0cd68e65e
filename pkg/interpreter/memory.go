package interpreter

import (
	"errors"
	"fmt"
	"sync"
)

var ErrBadAddress = errors.New("bad address")

// Memory is the byte copy primitive the aggregate return path needs.
type Memory interface {
	Copy(dst, src Address, n int64)
}

// heapBase keeps address 0 free so it can mean null.
const heapBase = 16

// Heap is a bump allocated byte arena shared by all activations of an
// interpreter. All operations hold the heap lock, so a copy is never seen
// half done.
type Heap struct {
	mu  sync.Mutex
	mem []byte
}

// NewHeap creates an empty heap.
func NewHeap() *Heap {
	return &Heap{mem: make([]byte, heapBase)}
}

// Alloc reserves size zeroed bytes aligned to 8 and returns their address.
func (h *Heap) Alloc(size int64) Address {
	h.mu.Lock()
	defer h.mu.Unlock()

	start := (int64(len(h.mem)) + 7) &^ 7
	h.mem = append(h.mem, make([]byte, start-int64(len(h.mem))+size)...)
	return Address(start)
}

// Size returns the number of bytes in use including the reserved prefix.
func (h *Heap) Size() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return int64(len(h.mem))
}

func (h *Heap) span(addr Address, n int64) ([]byte, error) {
	if n < 0 || addr < heapBase || int64(addr)+n > int64(len(h.mem)) {
		return nil, fmt.Errorf("%w: %s+%d (heap size %d)", ErrBadAddress, addr, n, len(h.mem))
	}
	return h.mem[int64(addr) : int64(addr)+n], nil
}

// Read returns a copy of n bytes at addr.
func (h *Heap) Read(addr Address, n int64) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	b, err := h.span(addr, n)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

// Write stores data at addr.
func (h *Heap) Write(addr Address, data []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	b, err := h.span(addr, int64(len(data)))
	if err != nil {
		return err
	}
	copy(b, data)
	return nil
}

// Copy moves n bytes from src to dst. A zero length copy does nothing, even
// for null addresses. Ranges outside the heap are a caller defect and panic.
func (h *Heap) Copy(dst, src Address, n int64) {
	if n == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	from, err := h.span(src, n)
	if err != nil {
		panic(fmt.Errorf("memcopy source: %w", err))
	}
	to, err := h.span(dst, n)
	if err != nil {
		panic(fmt.Errorf("memcopy destination: %w", err))
	}
	copy(to, from)
}
