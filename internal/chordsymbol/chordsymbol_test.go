package chordsymbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePitchesAlteredExtensions(t *testing.T) {
	got, err := ParsePitches("C7(b9,#11)")
	require.NoError(t, err)
	assert.Equal(t, []int{60, 64, 67, 70, 73, 78}, got)
}

func TestParsePitchesPolychord(t *testing.T) {
	got, err := ParsePitches("C|G")
	require.NoError(t, err)
	assert.Equal(t, []int{60, 64, 67, 79, 83, 86}, got)
}

func TestParsePitchesSlashBass(t *testing.T) {
	got, err := ParsePitches("C/E")
	require.NoError(t, err)
	// Bass E (pitch class 4) at MIDI 52; the upper E is suppressed since
	// its pitch class duplicates the bass.
	assert.Equal(t, []int{52, 60, 67}, got)
}

func TestParsePitchesSlashBassSuppressesDuplicatePitchClass(t *testing.T) {
	got, err := ParsePitches("C/C")
	require.NoError(t, err)
	assert.Equal(t, []int{48, 64, 67}, got)
}

func TestParsePitchesBasicQualities(t *testing.T) {
	maj, err := ParsePitches("C")
	require.NoError(t, err)
	assert.Equal(t, []int{60, 64, 67}, maj)

	min, err := ParsePitches("Cm")
	require.NoError(t, err)
	assert.Equal(t, []int{60, 63, 67}, min)

	dim, err := ParsePitches("Cdim")
	require.NoError(t, err)
	assert.Equal(t, []int{60, 63, 66}, dim)

	aug, err := ParsePitches("Caug")
	require.NoError(t, err)
	assert.Equal(t, []int{60, 64, 68}, aug)

	power, err := ParsePitches("C5")
	require.NoError(t, err)
	assert.Equal(t, []int{60, 67}, power)
}

func TestParsePitchesHalfDiminished(t *testing.T) {
	got, err := ParsePitches("Cø7")
	require.NoError(t, err)
	assert.Equal(t, []int{60, 63, 66, 70}, got)
}

func TestParsePitchesAltChord(t *testing.T) {
	got, err := ParsePitches("C7alt")
	require.NoError(t, err)
	assert.Equal(t, []int{60, 64, 68, 70, 73}, got)
}

func TestParsePitchesAddAndOmit(t *testing.T) {
	got, err := ParsePitches("Cadd9")
	require.NoError(t, err)
	assert.Equal(t, []int{60, 64, 67, 74}, got)

	got2, err := ParsePitches("C7no5")
	require.NoError(t, err)
	assert.Equal(t, []int{60, 64, 70}, got2)
}

func TestParseEmptyFails(t *testing.T) {
	_, err := Parse("")
	require.Error(t, err)
}
