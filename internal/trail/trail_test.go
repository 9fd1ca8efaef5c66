package trail

import (
	"errors"
	"testing"

	"github.com/san-kum/pendulab/internal/chain"
	"gonum.org/v1/gonum/spatial/r2"
)

func pt(i int) r2.Vec { return r2.Vec{X: float64(i), Y: float64(-i)} }

func TestNewFallsBackToDefault(t *testing.T) {
	tests := []struct {
		capacity int
		expected int
	}{
		{100, 100},
		{5000, 5000},
		{99, DefaultCapacity},
		{5001, DefaultCapacity},
		{0, DefaultCapacity},
	}

	for _, tt := range tests {
		b := New(2, tt.capacity)
		if b.Capacity() != tt.expected {
			t.Errorf("New(2, %d): expected capacity %d, got %d", tt.capacity, tt.expected, b.Capacity())
		}
	}
}

func TestPushEvictsOldest(t *testing.T) {
	b := New(1, MinCapacity)
	for i := 0; i < 250; i++ {
		b.Push(0, pt(i))
		if b.Len(0) > b.Capacity() {
			t.Fatalf("len %d exceeds capacity %d", b.Len(0), b.Capacity())
		}
	}

	got := b.Trail(0)
	if len(got) != 100 {
		t.Fatalf("expected 100 points, got %d", len(got))
	}
	for i, p := range got {
		if p != pt(150+i) {
			t.Fatalf("point %d: expected %v, got %v", i, pt(150+i), p)
		}
	}

	last, ok := b.Last(0)
	if !ok || last != pt(249) {
		t.Errorf("expected last %v, got %v (%v)", pt(249), last, ok)
	}
}

func TestPushAllKeepsLinksAligned(t *testing.T) {
	b := New(3, MinCapacity)
	for i := 0; i < 130; i++ {
		b.PushAll([]r2.Vec{pt(i), pt(1000 + i), pt(2000 + i)})
	}

	snap := b.Snapshot()
	for link := range snap {
		if len(snap[link]) != len(snap[0]) {
			t.Fatalf("link %d length %d, link 1 length %d", link+1, len(snap[link]), len(snap[0]))
		}
	}
	for i := range snap[0] {
		if snap[1][i].X-snap[0][i].X != 1000 || snap[2][i].X-snap[0][i].X != 2000 {
			t.Fatalf("index %d: trails out of step", i)
		}
	}
}

func TestPushIgnoresUnknownLink(t *testing.T) {
	b := New(1, MinCapacity)
	b.Push(3, pt(1))
	b.Push(-1, pt(1))
	if b.Len(0) != 0 {
		t.Errorf("expected empty trail, got %d points", b.Len(0))
	}
}

func TestSetCapacity(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		accepted bool
	}{
		{"min", 100, true},
		{"max", 5000, true},
		{"below", 99, false},
		{"well below", 50, false},
		{"above", 5001, false},
		{"negative", -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(1, 1000)
			b.Push(0, pt(1))

			if got := b.SetCapacity(tt.n); got != tt.accepted {
				t.Fatalf("SetCapacity(%d) = %v, want %v", tt.n, got, tt.accepted)
			}
			want := 1000
			if tt.accepted {
				want = tt.n
			}
			if b.Capacity() != want {
				t.Errorf("capacity %d, want %d", b.Capacity(), want)
			}
			if b.Len(0) != 1 {
				t.Errorf("trail lost points: %d", b.Len(0))
			}
		})
	}
}

func TestSetCapacityTruncatesToRecent(t *testing.T) {
	b := New(2, 1000)
	for i := 0; i < 1000; i++ {
		b.PushAll([]r2.Vec{pt(i), pt(i)})
	}

	if !b.SetCapacity(100) {
		t.Fatal("SetCapacity(100) rejected")
	}

	for link, tr := range b.Snapshot() {
		if len(tr) != 100 {
			t.Fatalf("link %d: expected 100 points, got %d", link+1, len(tr))
		}
		for i, p := range tr {
			if p != pt(900+i) {
				t.Fatalf("link %d point %d: expected %v, got %v", link+1, i, pt(900+i), p)
			}
		}
	}

	if !b.SetCapacity(5000) {
		t.Fatal("SetCapacity(5000) rejected")
	}
	b.Push(0, pt(1000))
	tr := b.Trail(0)
	if len(tr) != 101 || tr[0] != pt(900) || tr[100] != pt(1000) {
		t.Errorf("growing lost order: len %d first %v last %v", len(tr), tr[0], tr[len(tr)-1])
	}
}

func TestClear(t *testing.T) {
	b := New(2, MinCapacity)
	for i := 0; i < 150; i++ {
		b.PushAll([]r2.Vec{pt(i), pt(i)})
	}

	b.Clear()

	for link := 0; link < 2; link++ {
		if b.Len(link) != 0 || b.Drawable(link) {
			t.Errorf("link %d not cleared", link+1)
		}
		if _, ok := b.Last(link); ok {
			t.Errorf("link %d still has a last point", link+1)
		}
	}
	b.Push(0, pt(7))
	if tr := b.Trail(0); len(tr) != 1 || tr[0] != pt(7) {
		t.Errorf("push after clear: %v", tr)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	b := New(1, MinCapacity)
	b.Push(0, pt(1))
	b.Push(0, pt(2))

	snap := b.Snapshot()
	snap[0][0] = pt(99)

	if b.Trail(0)[0] != pt(1) {
		t.Error("snapshot aliases the buffer")
	}
}

func TestDrawable(t *testing.T) {
	b := New(1, MinCapacity)
	if b.Drawable(0) {
		t.Error("empty trail drawable")
	}
	b.Push(0, pt(1))
	if b.Drawable(0) {
		t.Error("single point drawable")
	}
	b.Push(0, pt(2))
	if !b.Drawable(0) {
		t.Error("two points not drawable")
	}
}

func TestParseCapacity(t *testing.T) {
	tests := []struct {
		input    string
		expected int
		wantErr  bool
	}{
		{"100", 100, false},
		{" 2500 ", 2500, false},
		{"5000", 5000, false},
		{"99", 0, true},
		{"5001", 0, true},
		{"abc", 0, true},
		{"", 0, true},
		{"12.5", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseCapacity(tt.input)
		if tt.wantErr {
			if !errors.Is(err, chain.ErrCapacity) {
				t.Errorf("ParseCapacity(%q): expected ErrCapacity, got %v", tt.input, err)
			}
			continue
		}
		if err != nil || got != tt.expected {
			t.Errorf("ParseCapacity(%q) = %d, %v; want %d", tt.input, got, err, tt.expected)
		}
	}
}
