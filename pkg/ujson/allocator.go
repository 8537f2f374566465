package ujson

import "sync"

// Allocator supplies the heap scratch buffer used for string unescaping once
// a string no longer fits the decoder's inline buffer.
type Allocator interface {
	Alloc(n int) ([]byte, error)
	Realloc(b []byte, n int) ([]byte, error)
	Free(b []byte)
}

// HeapAllocator allocates with make and leaves freeing to the garbage
// collector. It is the default.
type HeapAllocator struct{}

func (HeapAllocator) Alloc(n int) ([]byte, error) {
	return make([]byte, n), nil
}

func (HeapAllocator) Realloc(b []byte, n int) ([]byte, error) {
	if n <= cap(b) {
		return b[:n], nil
	}
	nb := make([]byte, n)
	copy(nb, b)
	return nb, nil
}

func (HeapAllocator) Free([]byte) {}

// PoolAllocator recycles scratch buffers through a sync.Pool, which helps
// callers decoding many documents with long strings. Buffers larger than
// MaxRetain are not returned to the pool; zero means 1 MiB.
type PoolAllocator struct {
	MaxRetain int

	pool sync.Pool
}

func (p *PoolAllocator) Alloc(n int) ([]byte, error) {
	if v, ok := p.pool.Get().(*[]byte); ok && cap(*v) >= n {
		return (*v)[:n], nil
	}
	return make([]byte, n), nil
}

func (p *PoolAllocator) Realloc(b []byte, n int) ([]byte, error) {
	if n <= cap(b) {
		return b[:n], nil
	}
	nb, err := p.Alloc(n)
	if err != nil {
		return nil, err
	}
	copy(nb, b)
	p.Free(b)
	return nb, nil
}

func (p *PoolAllocator) Free(b []byte) {
	limit := p.MaxRetain
	if limit <= 0 {
		limit = 1 << 20
	}
	if b == nil || cap(b) > limit {
		return
	}
	b = b[:0]
	p.pool.Put(&b)
}
