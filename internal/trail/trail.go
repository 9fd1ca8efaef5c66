// Package trail keeps the recent path of every bob in a chain.
//
// Each link has its own bounded buffer. Points are stored oldest first and
// the oldest are evicted once a buffer reaches its capacity.
package trail

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/san-kum/pendulab/internal/chain"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	MinCapacity     = 100
	MaxCapacity     = 5000
	DefaultCapacity = 1000
)

type Buffer struct {
	rings    []*ring
	capacity int
}

// New returns an empty buffer for n links. A capacity outside
// [MinCapacity, MaxCapacity] falls back to DefaultCapacity.
func New(n, capacity int) *Buffer {
	if !ValidCapacity(capacity) {
		capacity = DefaultCapacity
	}
	b := &Buffer{rings: make([]*ring, n), capacity: capacity}
	for i := range b.rings {
		b.rings[i] = newRing(capacity)
	}
	return b
}

func ValidCapacity(n int) bool {
	return n >= MinCapacity && n <= MaxCapacity
}

// ParseCapacity parses textual capacity input. Leading and trailing
// whitespace is ignored; anything else that is not a base-10 integer in
// range is rejected.
func ParseCapacity(text string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", chain.ErrCapacity, text)
	}
	if !ValidCapacity(n) {
		return 0, fmt.Errorf("%w: %d not in [%d, %d]", chain.ErrCapacity, n, MinCapacity, MaxCapacity)
	}
	return n, nil
}

func (b *Buffer) Links() int    { return len(b.rings) }
func (b *Buffer) Capacity() int { return b.capacity }

// Len returns the number of points stored for link.
func (b *Buffer) Len(link int) int {
	if link < 0 || link >= len(b.rings) {
		return 0
	}
	return b.rings[link].len()
}

// Push appends p to link's trail. Out-of-range links are ignored.
func (b *Buffer) Push(link int, p r2.Vec) {
	if link < 0 || link >= len(b.rings) {
		return
	}
	b.rings[link].push(p)
}

// PushAll appends points[i] to link i, for every link, so all trails gain a
// point on the same frame.
func (b *Buffer) PushAll(points []r2.Vec) {
	for i := 0; i < len(points) && i < len(b.rings); i++ {
		b.rings[i].push(points[i])
	}
}

// SetCapacity changes the capacity and reports whether n was accepted.
// Rejected values leave the buffer untouched. When shrinking, each trail
// keeps its most recent points.
func (b *Buffer) SetCapacity(n int) bool {
	if !ValidCapacity(n) {
		return false
	}
	if n == b.capacity {
		return true
	}
	for i, r := range b.rings {
		b.rings[i] = r.resize(n)
	}
	b.capacity = n
	return true
}

func (b *Buffer) Clear() {
	for _, r := range b.rings {
		r.clear()
	}
}

// Snapshot returns a copy of every trail in chronological order.
func (b *Buffer) Snapshot() [][]r2.Vec {
	out := make([][]r2.Vec, len(b.rings))
	for i, r := range b.rings {
		out[i] = r.slice()
	}
	return out
}

// Trail returns a copy of one link's trail.
func (b *Buffer) Trail(link int) []r2.Vec {
	if link < 0 || link >= len(b.rings) {
		return nil
	}
	return b.rings[link].slice()
}

// Last returns the newest point of link's trail.
func (b *Buffer) Last(link int) (r2.Vec, bool) {
	if link < 0 || link >= len(b.rings) {
		return r2.Vec{}, false
	}
	return b.rings[link].last()
}

// Drawable reports whether link has enough points to draw a polyline.
func (b *Buffer) Drawable(link int) bool {
	return b.Len(link) >= 2
}
