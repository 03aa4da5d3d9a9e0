package parser

import "github.com/oarkflow/dbml/ast"

// slab is a monotonic typed allocator. It hands out sub-slices of larger
// chunks so a parse costs a handful of allocations instead of one per node.
// Memory stays visible to the garbage collector because the chunks are
// ordinary typed slices.
//
// All chunks are kept on reset() and reused by the next parse, which means
// a tree built before reset() must not be used after it.
type slab[T any] struct {
	chunks [][]T
	cur    int
	off    int
}

const (
	initialChunkSize = 256
	growFactor       = 2
)

// alloc returns a zeroed slice of length and capacity n. Appending to it
// never overwrites a neighbour.
func (s *slab[T]) alloc(n int) []T {
	if n == 0 {
		return nil
	}
	for {
		if s.cur < len(s.chunks) {
			chunk := s.chunks[s.cur]
			if s.off+n <= len(chunk) {
				out := chunk[s.off : s.off+n : s.off+n]
				s.off += n
				clear(out)
				return out
			}
			if s.cur+1 < len(s.chunks) {
				s.cur++
				s.off = 0
				continue
			}
		}
		size := initialChunkSize
		if len(s.chunks) > 0 {
			size = len(s.chunks[len(s.chunks)-1]) * growFactor
		}
		if size < n {
			size = n + initialChunkSize
		}
		s.chunks = append(s.chunks, make([]T, size))
		s.cur = len(s.chunks) - 1
		s.off = 0
	}
}

func (s *slab[T]) reset() {
	s.cur = 0
	s.off = 0
}

// nodeArena owns the nodes and child lists of one parse.
type nodeArena struct {
	nodes slab[ast.Node]
	lists slab[*ast.Node]
}

func (a *nodeArena) node() *ast.Node {
	return &a.nodes.alloc(1)[0]
}

// children copies kids into an exactly sized list owned by the arena.
func (a *nodeArena) children(kids []*ast.Node) []*ast.Node {
	out := a.lists.alloc(len(kids))
	copy(out, kids)
	return out
}

func (a *nodeArena) reset() {
	a.nodes.reset()
	a.lists.reset()
}
