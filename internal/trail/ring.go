package trail

import "gonum.org/v1/gonum/spatial/r2"

// ring is a fixed-capacity ring buffer of points.
type ring struct {
	data []r2.Vec
	pos  int
	full bool
}

func newRing(capacity int) *ring {
	return &ring{data: make([]r2.Vec, capacity)}
}

func (r *ring) push(p r2.Vec) {
	r.data[r.pos] = p
	r.pos++
	if r.pos >= len(r.data) {
		r.pos = 0
		r.full = true
	}
}

func (r *ring) len() int {
	if r.full {
		return len(r.data)
	}
	return r.pos
}

// slice returns the contents in insertion order.
func (r *ring) slice() []r2.Vec {
	out := make([]r2.Vec, r.len())
	if r.full {
		copy(out, r.data[r.pos:])
		copy(out[len(r.data)-r.pos:], r.data[:r.pos])
	} else {
		copy(out, r.data[:r.pos])
	}
	return out
}

func (r *ring) last() (r2.Vec, bool) {
	switch {
	case r.pos > 0:
		return r.data[r.pos-1], true
	case r.full:
		return r.data[len(r.data)-1], true
	}
	return r2.Vec{}, false
}

// resize returns a ring of the new capacity holding the most recent points.
func (r *ring) resize(capacity int) *ring {
	pts := r.slice()
	if len(pts) > capacity {
		pts = pts[len(pts)-capacity:]
	}
	nr := newRing(capacity)
	for _, p := range pts {
		nr.push(p)
	}
	return nr
}

func (r *ring) clear() {
	r.pos = 0
	r.full = false
}
