package chordtable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetMaskIgnoresOctaveDuplicates(t *testing.T) {
	base := GetMask([]int{60, 64, 67})
	withOctaves := GetMask([]int{48, 60, 64, 76, 67, 79})
	assert.Equal(t, base, withOctaves)
}

func TestIdentifyKnownChords(t *testing.T) {
	cases := []struct {
		pitches []int
		root    int
		quality Quality
	}{
		{[]int{60, 64, 67}, 0, Major},
		{[]int{67, 71, 74, 77}, 7, Dominant7},
		{[]int{60, 64, 66, 70}, 0, Dominant7Flat5},
	}
	for _, c := range cases {
		got := IdentifyPitches(c.pitches)
		assert.Equal(t, c.root, got.RootPC, "%v", c.pitches)
		assert.Equal(t, c.quality, got.Quality, "%v", c.pitches)
	}
}

func TestIdentifyUnknownMaskIsSentinel(t *testing.T) {
	// A mask with every pitch class set cannot be any template.
	got := Identify(Mask(0xFFF))
	assert.Equal(t, Unknown, got.Quality)
}

func TestTemplateRoundTrip(t *testing.T) {
	// Templates whose masks coincide (Sus4 on G equals Sus2 on C) identify
	// as the first (template, root) pair in canonical order.
	firstQuality := map[Mask]Quality{}
	for _, tpl := range templates {
		for root := 0; root < 12; root++ {
			var m Mask
			pitches := make([]int, 0, len(tpl.offsets))
			for _, step := range tpl.offsets {
				pc := (root + step) % 12
				m |= 1 << uint(pc)
				pitches = append(pitches, 60+pc)
			}
			want, seen := firstQuality[m]
			if !seen {
				want = tpl.quality
				firstQuality[m] = want
			}
			got := Identify(m)
			assert.Equal(t, want, got.Quality, "template %v root %d", tpl.quality, root)
		}
	}
}
