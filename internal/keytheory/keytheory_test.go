package keytheory

import (
	"testing"

	"github.com/schollz/scoreforge/internal/chordtable"
	"github.com/stretchr/testify/assert"
)

func TestIdentifyKeyCMajorScale(t *testing.T) {
	mask := chordtable.GetMask([]int{60, 62, 64, 65, 67, 69, 71})
	got := IdentifyKey(mask)
	assert.Equal(t, KeySignature{Root: 0, IsMajor: true}, got.Key)
	assert.GreaterOrEqual(t, got.Confidence, 0.8)
}

func TestIdentifyKeyPrefersMajorOnTie(t *testing.T) {
	// The empty mask ties every key at score 0; major at root 0 must win.
	got := IdentifyKey(chordtable.Mask(0))
	assert.Equal(t, KeySignature{Root: 0, IsMajor: true}, got.Key)
}

func TestAnalyzeRomanNumerals(t *testing.T) {
	cKey := KeySignature{Root: 0, IsMajor: true}

	v := Analyze([]int{67, 71, 74}, cKey)
	assert.Equal(t, "V", v.Text)

	v7 := Analyze([]int{67, 71, 74, 77}, cKey)
	assert.Equal(t, "V7", v7.Text)
}

func TestAnalyzeProgression(t *testing.T) {
	cKey := KeySignature{Root: 0, IsMajor: true}

	dm7 := Analyze([]int{62, 65, 69, 72}, cKey)
	assert.Equal(t, "ii7", dm7.Text)

	g7 := Analyze([]int{67, 71, 74, 77}, cKey)
	assert.Equal(t, "V7", g7.Text)

	cmaj7 := Analyze([]int{60, 64, 67, 71}, cKey)
	assert.Equal(t, "Imaj7", cmaj7.Text)
}

func TestDegreePitchClassUsesModeSteps(t *testing.T) {
	major := KeySignature{Root: 0, IsMajor: true}
	minor := KeySignature{Root: 0, IsMajor: false}
	assert.Equal(t, 4, major.DegreePitchClass(3)) // E
	assert.Equal(t, 3, minor.DegreePitchClass(3)) // Eb
}
