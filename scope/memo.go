package scope

import "sync/atomic"

// Memo caches one value keyed by a version stamp supplied by the caller.
// A version mismatch recomputes the value. Concurrent callers may compute
// the same version twice; the last store wins and both results are equal.
type Memo[T any] struct {
	cell atomic.Pointer[memoEntry[T]]
}

type memoEntry[T any] struct {
	version int64
	value   T
}

// Get returns the value cached for version, computing it if needed.
// The second result reports whether the cached value was used.
func (m *Memo[T]) Get(version int64, compute func() T) (T, bool) {
	if e := m.cell.Load(); e != nil && e.version == version {
		return e.value, true
	}
	v := compute()
	m.cell.Store(&memoEntry[T]{version: version, value: v})
	return v, false
}

// Invalidate drops the cached value.
func (m *Memo[T]) Invalidate() {
	m.cell.Store(nil)
}
