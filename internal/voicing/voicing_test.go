package voicing

import (
	"testing"

	"github.com/schollz/scoreforge/internal/chordtable"
	"github.com/schollz/scoreforge/internal/theoryerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckRulesDetectsParallelOctaves(t *testing.T) {
	prev := Voicing{60, 64, 67, 72} // C4 E4 G4 C5
	curr := Voicing{62, 65, 69, 74} // D4 F4 A4 D5
	flags, penalty := CheckRules(prev, curr, 0)
	assert.True(t, flags.Has(ParallelOctaves))
	assert.True(t, penalty >= Weight[ParallelOctaves])
}

func TestCheckRulesCleanMotionHasNoViolations(t *testing.T) {
	prev := Voicing{60, 64, 67, 72} // C4 E4 G4 C5
	curr := Voicing{60, 64, 67, 71} // C4 E4 G4 B4
	flags, penalty := CheckRules(prev, curr, 0)
	assert.Equal(t, Violation(0), flags)
	assert.Equal(t, 0, penalty)
}

func TestCheckRulesVoiceCrossing(t *testing.T) {
	prev := Voicing{60, 64, 67, 72}
	curr := Voicing{60, 68, 64, 72} // tenor above alto
	flags, _ := CheckRules(prev, curr, 0)
	assert.True(t, flags.Has(VoiceCrossing))
}

func TestCheckRulesLargeLeap(t *testing.T) {
	prev := Voicing{40, 55, 62, 72}
	curr := Voicing{55, 55, 62, 72} // bass leaps 15 semitones
	flags, _ := CheckRules(prev, curr, 0)
	assert.True(t, flags.Has(LargeLeap))
}

func TestCheckRulesUnresolvedLeadingTone(t *testing.T) {
	// B3 (pc 11, leading tone in C major) in the bass must resolve up a
	// step to C.
	prev := Voicing{59, 64, 67, 74}
	curr := Voicing{55, 64, 67, 74} // bass drops to G instead of rising to C
	flags, _ := CheckRules(prev, curr, 0)
	assert.True(t, flags.Has(UnresolvedLeadingTone))
}

func TestPenaltySumsWeights(t *testing.T) {
	flags := ParallelFifths | VoiceCrossing
	assert.Equal(t, Weight[ParallelFifths]+Weight[VoiceCrossing], flags.Penalty())
}

func TestSolveThreeChordProgressionNoStrictViolations(t *testing.T) {
	cMaj := chordtable.GetMask([]int{0, 4, 7})
	g7 := chordtable.GetMask([]int{7, 11, 2, 5})
	progression := []chordtable.Mask{cMaj, g7, cMaj}

	path, err := Solve(progression, 0, Strict, 1.0, 0)
	require.NoError(t, err)
	require.Len(t, path, 3)

	for i := 1; i < len(path); i++ {
		flags, _ := CheckRules(path[i-1], path[i], 0)
		assert.False(t, flags.Has(ParallelFifths))
		assert.False(t, flags.Has(ParallelOctaves))
		assert.False(t, flags.Has(VoiceCrossing))
	}

	total := 0.0
	for i := 1; i < len(path); i++ {
		total += TransitionCost(path[i-1], path[i], 0, 1.0)
	}
	assert.True(t, total >= 0)
}

func TestSolveEmptyProgressionFails(t *testing.T) {
	_, err := Solve(nil, 0, Default, 1.0, 0)
	require.Error(t, err)
}

func TestSolveRespectsMaxTransitionCostCap(t *testing.T) {
	cMaj := chordtable.GetMask([]int{0, 4, 7})
	fMaj := chordtable.GetMask([]int{5, 9, 0})
	progression := []chordtable.Mask{cMaj, fMaj}

	// A near-zero cap forbids every transition with any real cost, so no
	// path can possibly complete the second chord.
	_, err := Solve(progression, 0, Default, 1.0, 0.0001)
	require.Error(t, err)
	var nvp *theoryerr.NoValidPath
	require.ErrorAs(t, err, &nvp)
	assert.Equal(t, 0.0001, nvp.Cap)
}

func TestRelaxedModeLoosensEnumerationSpacing(t *testing.T) {
	// C major has voicings with a tenor-alto or alto-soprano gap wider than
	// an octave; Default's spacing rule excludes them from enumeration but
	// Relaxed admits them, so Relaxed yields strictly more candidates.
	wide := chordtable.GetMask([]int{0, 4, 7})
	strictCands := candidatesForMask(wide, true)
	relaxedCands := candidatesForMask(wide, false)
	assert.Greater(t, len(relaxedCands), len(strictCands))
}

func TestBestSingleReturnsValidVoicing(t *testing.T) {
	cMaj := chordtable.GetMask([]int{0, 4, 7})
	v, err := BestSingle(cMaj)
	require.NoError(t, err)
	assert.Less(t, v[Bass], v[Tenor])
	assert.Less(t, v[Tenor], v[Alto])
	assert.Less(t, v[Alto], v[Soprano])
}
