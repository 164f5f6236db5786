package pools

import (
	"math/bits"
	"sync"
)

// MaxPooledClass is the largest size class (1<<MaxPooledClass elements) kept
// in a pool. Bigger slices are allocated directly and dropped on Put.
const MaxPooledClass = 24

// SlicePool pools slices of T in power-of-two size classes.
type SlicePool[T any] struct {
	classes [MaxPooledClass + 1]sync.Pool
}

// NewSlicePool creates an empty slice pool.
func NewSlicePool[T any]() *SlicePool[T] {
	return &SlicePool[T]{}
}

// classFor returns the smallest class whose capacity fits size.
func classFor(size int) int {
	if size <= 1 {
		return 0
	}
	return bits.Len(uint(size - 1))
}

// Get returns a slice of length size. Contents are unspecified: callers must
// initialise every element they read.
func (p *SlicePool[T]) Get(size int) []T {
	if size < 0 {
		size = 0
	}
	c := classFor(size)
	if c > MaxPooledClass {
		return make([]T, size)
	}

	sp, ok := p.classes[c].Get().(*[]T)
	if !ok || cap(*sp) < size {
		return make([]T, size, 1<<c)
	}
	return (*sp)[:size]
}

// Put returns a slice to the pool. The caller must not use s afterwards.
func (p *SlicePool[T]) Put(s []T) {
	c := cap(s)
	if c == 0 {
		return
	}
	// Floor class so every slice in class k has capacity >= 1<<k.
	class := bits.Len(uint(c)) - 1
	if class > MaxPooledClass {
		return
	}
	s = s[:0]
	p.classes[class].Put(&s)
}

var (
	defaultInt32Pool   = NewSlicePool[int32]()
	defaultFloat64Pool = NewSlicePool[float64]()
)

// GetInt32s returns an int32 slice of length size from the default pool.
func GetInt32s(size int) []int32 {
	return defaultInt32Pool.Get(size)
}

// PutInt32s returns an int32 slice to the default pool.
func PutInt32s(s []int32) {
	defaultInt32Pool.Put(s)
}

// GetFloat64s returns a float64 slice of length size from the default pool.
func GetFloat64s(size int) []float64 {
	return defaultFloat64Pool.Get(size)
}

// PutFloat64s returns a float64 slice to the default pool.
func PutFloat64s(s []float64) {
	defaultFloat64Pool.Put(s)
}
