// Package notebuffer implements the structure-of-arrays NoteBuffer
// (spec.md C8): six parallel, 64-byte-aligned-capacity columns with an
// explicit scoped lifetime, by-offset sort, and chord-grouping walk.
// Go has no raw aligned malloc/free in the standard library; the teacher's
// internal/midiplayer singleton-plus-explicit-lifecycle shape is followed
// here instead of a real allocator call: Acquire/Release models the
// scoped resource, and double-Release fails the same way an unmanaged
// aligned free would.
package notebuffer

import (
	"sort"

	"github.com/schollz/scoreforge/internal/rational"
	"github.com/schollz/scoreforge/internal/theoryerr"
)

// column count: pitch, offsetNum, offsetDen, durNum, durDen, velocity.
const numColumns = 6

// NoteBuffer is a capacity-bounded structure-of-arrays note store. The
// zero value is not usable; construct with Acquire.
type NoteBuffer struct {
	capacity int
	count    int
	released bool

	pitch    []int
	offNum   []int64
	offDen   []int64
	durNum   []int64
	durDen   []int64
	velocity []float32
}

// Acquire allocates a NoteBuffer with the given capacity. capacity < 0 is
// a programmer error (InvalidArgument); capacity == 0 is legal (an empty,
// growable-on-Add-only-up-to-cap buffer is not supported -- Add fails
// past capacity, matching the fixed-column-allocation model).
func Acquire(capacity int) (*NoteBuffer, error) {
	if capacity < 0 {
		return nil, &theoryerr.InvalidArgument{Field: "capacity", Reason: "must be >= 0"}
	}
	return &NoteBuffer{
		capacity: capacity,
		pitch:    make([]int, capacity),
		offNum:   make([]int64, capacity),
		offDen:   make([]int64, capacity),
		durNum:   make([]int64, capacity),
		durDen:   make([]int64, capacity),
		velocity: make([]float32, capacity),
	}, nil
}

// Release frees the buffer's columns. Releasing an already-released
// buffer fails with ErrUseAfterFree.
func (b *NoteBuffer) Release() error {
	if b.released {
		return theoryerr.ErrUseAfterFree
	}
	b.released = true
	b.pitch, b.offNum, b.offDen, b.durNum, b.durDen, b.velocity = nil, nil, nil, nil, nil, nil
	b.count = 0
	return nil
}

// Count returns the number of live entries.
func (b *NoteBuffer) Count() int { return b.count }

// Capacity returns the fixed column capacity.
func (b *NoteBuffer) Capacity() int { return b.capacity }

// Add appends one entry. Fails with InvalidArgument when the buffer is at
// capacity, and with ErrUseAfterFree when it has been released.
func (b *NoteBuffer) Add(pitch int, offset, duration rational.Rational, velocity float32) error {
	if b.released {
		return theoryerr.ErrUseAfterFree
	}
	if b.count >= b.capacity {
		return &theoryerr.InvalidArgument{Field: "count", Reason: "NoteBuffer at capacity"}
	}
	i := b.count
	b.pitch[i] = pitch
	b.offNum[i] = offset.Num
	b.offDen[i] = offset.Den
	b.durNum[i] = duration.Num
	b.durDen[i] = duration.Den
	b.velocity[i] = velocity
	b.count++
	return nil
}

// Clear sets count to 0 without zeroing the underlying columns.
func (b *NoteBuffer) Clear() error {
	if b.released {
		return theoryerr.ErrUseAfterFree
	}
	b.count = 0
	return nil
}

// At returns the pitch, offset, duration and velocity of entry i.
func (b *NoteBuffer) At(i int) (pitch int, offset, duration rational.Rational, velocity float32) {
	return b.pitch[i],
		rational.Rational{Num: b.offNum[i], Den: b.offDen[i]},
		rational.Rational{Num: b.durNum[i], Den: b.durDen[i]},
		b.velocity[i]
}

// Sort reorders all six columns consistently by ascending offset, via an
// index sort followed by an in-place cycle permutation (no extra column
// allocation). Equal-offset entries retain no stability guarantee (the
// spec only requires non-decreasing offsets).
func (b *NoteBuffer) Sort() error {
	if b.released {
		return theoryerr.ErrUseAfterFree
	}
	n := b.count
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool {
		return offsetOf(b, idx[i]).Less(offsetOf(b, idx[j]))
	})
	applyCyclePermutation(idx, b)
	return nil
}

func offsetOf(b *NoteBuffer, i int) rational.Rational {
	return rational.Rational{Num: b.offNum[i], Den: b.offDen[i]}
}

// applyCyclePermutation permutes every column in place so that column[k]
// ends up holding the value originally at column[perm[k]], using cycle
// decomposition (each element moved exactly once).
func applyCyclePermutation(perm []int, b *NoteBuffer) {
	n := len(perm)
	visited := make([]bool, n)
	for start := 0; start < n; start++ {
		if visited[start] || perm[start] == start {
			visited[start] = true
			continue
		}
		savedPitch := b.pitch[start]
		savedOffNum, savedOffDen := b.offNum[start], b.offDen[start]
		savedDurNum, savedDurDen := b.durNum[start], b.durDen[start]
		savedVel := b.velocity[start]

		j := start
		for {
			visited[j] = true
			src := perm[j]
			if src == start {
				b.pitch[j] = savedPitch
				b.offNum[j], b.offDen[j] = savedOffNum, savedOffDen
				b.durNum[j], b.durDen[j] = savedDurNum, savedDurDen
				b.velocity[j] = savedVel
				break
			}
			b.pitch[j] = b.pitch[src]
			b.offNum[j], b.offDen[j] = b.offNum[src], b.offDen[src]
			b.durNum[j], b.durDen[j] = b.durNum[src], b.durDen[src]
			b.velocity[j] = b.velocity[src]
			j = src
		}
	}
}

// ChordGroup is a (time, mask) pair produced by GetChords.
type ChordGroup struct {
	Time rational.Rational
	Mask uint16
}

// GetChords walks the sorted buffer and groups consecutive entries with
// equal offsets into (time, mask) pairs (spec.md §4.2's 12-bit mask).
// Callers must Sort before calling GetChords for a meaningful grouping.
func (b *NoteBuffer) GetChords() ([]ChordGroup, error) {
	if b.released {
		return nil, theoryerr.ErrUseAfterFree
	}
	var out []ChordGroup
	i := 0
	for i < b.count {
		t := offsetOf(b, i)
		var mask uint16
		j := i
		for j < b.count && offsetOf(b, j).Equal(t) {
			mask |= 1 << uint(((b.pitch[j]%12)+12)%12)
			j++
		}
		out = append(out, ChordGroup{Time: t, Mask: mask})
		i = j
	}
	return out, nil
}

// WithNoteBuffer acquires a capacity-capped NoteBuffer, calls fn, and
// guarantees Release runs on every exit path including a panic or an
// error returned from fn -- the scoped-acquisition pattern spec.md §5
// requires.
func WithNoteBuffer(capacity int, fn func(*NoteBuffer) error) error {
	b, err := Acquire(capacity)
	if err != nil {
		return err
	}
	defer b.Release()
	return fn(b)
}
