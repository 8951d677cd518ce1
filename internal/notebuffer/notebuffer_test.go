package notebuffer

import (
	"testing"

	"github.com/schollz/scoreforge/internal/rational"
	"github.com/schollz/scoreforge/internal/theoryerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndSortOrdersByOffset(t *testing.T) {
	b, err := Acquire(4)
	require.NoError(t, err)
	defer b.Release()

	require.NoError(t, b.Add(67, rational.Must(1, 2), rational.Must(1, 4), 1))
	require.NoError(t, b.Add(60, rational.Zero, rational.Must(1, 4), 1))
	require.NoError(t, b.Add(64, rational.Zero, rational.Must(1, 4), 1))
	require.NoError(t, b.Add(72, rational.Must(1, 4), rational.Must(1, 4), 1))

	require.NoError(t, b.Sort())

	var offsets []rational.Rational
	for i := 0; i < b.Count(); i++ {
		_, off, _, _ := b.At(i)
		offsets = append(offsets, off)
	}
	for i := 1; i < len(offsets); i++ {
		assert.False(t, offsets[i].Less(offsets[i-1]))
	}
}

func TestGetChordsGroupsByOffset(t *testing.T) {
	b, err := Acquire(3)
	require.NoError(t, err)
	defer b.Release()

	require.NoError(t, b.Add(60, rational.Zero, rational.Must(1, 4), 1))
	require.NoError(t, b.Add(64, rational.Zero, rational.Must(1, 4), 1))
	require.NoError(t, b.Add(67, rational.Zero, rational.Must(1, 4), 1))
	require.NoError(t, b.Sort())

	groups, err := b.GetChords()
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, uint16(1<<0|1<<4|1<<7), groups[0].Mask)
}

func TestClearDoesNotShrinkCapacity(t *testing.T) {
	b, err := Acquire(2)
	require.NoError(t, err)
	defer b.Release()

	require.NoError(t, b.Add(60, rational.Zero, rational.Must(1, 4), 1))
	require.NoError(t, b.Clear())
	assert.Equal(t, 0, b.Count())
	assert.Equal(t, 2, b.Capacity())
}

func TestAddPastCapacityFails(t *testing.T) {
	b, err := Acquire(1)
	require.NoError(t, err)
	defer b.Release()

	require.NoError(t, b.Add(60, rational.Zero, rational.Must(1, 4), 1))
	err = b.Add(64, rational.Zero, rational.Must(1, 4), 1)
	require.Error(t, err)
}

func TestDoubleReleaseFailsWithUseAfterFree(t *testing.T) {
	b, err := Acquire(1)
	require.NoError(t, err)
	require.NoError(t, b.Release())
	err = b.Release()
	assert.Equal(t, theoryerr.ErrUseAfterFree, err)
}

func TestWithNoteBufferReleasesOnError(t *testing.T) {
	var captured *NoteBuffer
	err := WithNoteBuffer(2, func(b *NoteBuffer) error {
		captured = b
		return theoryerr.ErrDivisionByZero
	})
	require.Error(t, err)
	assert.Error(t, captured.Release())
}
