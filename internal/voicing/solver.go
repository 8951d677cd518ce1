package voicing

import (
	"sort"
	"sync"

	"github.com/schollz/scoreforge/internal/chordtable"
	"github.com/schollz/scoreforge/internal/theoryerr"
)

// Mode selects how aggressively CheckRules violations are treated during
// the DP search.
type Mode int

const (
	Strict Mode = iota
	Default
	Relaxed
)

// hardBan returns the flags that make a transition infeasible outright
// under mode, regardless of weighted cost.
func hardBan(mode Mode) Violation {
	switch mode {
	case Strict:
		return ParallelFifths | ParallelOctaves | VoiceCrossing | DoubledLeadingTone | UnresolvedLeadingTone
	case Relaxed:
		return VoiceCrossing
	default:
		return ParallelFifths | ParallelOctaves | VoiceCrossing
	}
}

// parallelFanoutThreshold is the pair-evaluation count above which the DP
// inner loop fans out across goroutines (spec.md §5).
const parallelFanoutThreshold = 1000

// defaultCapForMode is the max_transition_cost a caller gets by passing 0
// to Solve: Relaxed raises it, Strict tightens it (spec.md §4.8's "Relaxed
// raises the cap and loosens spacing").
func defaultCapForMode(mode Mode) float64 {
	switch mode {
	case Strict:
		return 150
	case Relaxed:
		return 400
	default:
		return 250
	}
}

// maxAdjacentSpacing is the spacing rule enumerated candidates must honor
// by default: no gap between adjacent upper voices wider than an octave
// (spec.md §4.8's "optional spacing rule"). Relaxed mode turns this
// enumeration-time filter off, leaving only CheckRules' softer
// ExcessiveSpacing penalty to discourage (not forbid) wide spacing.
const maxAdjacentSpacing = 12

// candidatesForMask enumerates every strictly-ascending SATB voicing whose
// four pitch classes all belong to mask and which together cover every
// pitch class present in mask at least once. When enforceSpacing is set,
// candidates whose tenor-alto or alto-soprano gap exceeds
// maxAdjacentSpacing are excluded outright rather than merely penalized.
func candidatesForMask(mask chordtable.Mask, enforceSpacing bool) []Voicing {
	pcsInRange := func(r Range) []int {
		var out []int
		for p := r.Low; p <= r.High; p++ {
			pc := p % 12
			if mask.Contains(pc) {
				out = append(out, p)
			}
		}
		return out
	}

	bassOpts := pcsInRange(BassRange)
	tenorOpts := pcsInRange(TenorRange)
	altoOpts := pcsInRange(AltoRange)
	sopranoOpts := pcsInRange(SopranoRange)

	required := 0
	for pc := 0; pc < 12; pc++ {
		if mask.Contains(pc) {
			required++
		}
	}

	var out []Voicing
	for _, b := range bassOpts {
		for _, t := range tenorOpts {
			if t <= b {
				continue
			}
			for _, a := range altoOpts {
				if a <= t {
					continue
				}
				if enforceSpacing && a-t > maxAdjacentSpacing {
					continue
				}
				for _, s := range sopranoOpts {
					if s <= a {
						continue
					}
					if enforceSpacing && s-a > maxAdjacentSpacing {
						continue
					}
					seen := map[int]bool{}
					seen[b%12] = true
					seen[t%12] = true
					seen[a%12] = true
					seen[s%12] = true
					if len(seen) < required {
						continue
					}
					out = append(out, Voicing{b, t, a, s})
				}
			}
		}
	}
	return out
}

// Solve finds the minimum-cost SATB voicing path realizing progression (a
// sequence of pitch-class masks) under keyRoot, using a Viterbi-style DP
// over each chord's enumerated candidates. smoothnessWeight scales the
// melodic-motion term relative to the rule penalty (spec.md's
// TransitionCost formula); pass 1.0 for the default balance. maxTransitionCost
// is the cap beyond which a transition is skipped outright (spec.md §4.8);
// pass 0 to use mode's default cap. Relaxed mode both raises that default
// cap and stops enforcing the enumeration-time spacing rule.
func Solve(progression []chordtable.Mask, keyRoot int, mode Mode, smoothnessWeight float64, maxTransitionCost float64) ([]Voicing, error) {
	if len(progression) == 0 {
		return nil, &theoryerr.NoValidPath{Stage: "solve", Cap: 0}
	}

	cap := maxTransitionCost
	if cap <= 0 {
		cap = defaultCapForMode(mode)
	}
	enforceSpacing := mode != Relaxed

	candidates := make([][]Voicing, len(progression))
	for i, m := range progression {
		candidates[i] = candidatesForMask(m, enforceSpacing)
		if len(candidates[i]) == 0 {
			return nil, &theoryerr.NoValidPath{Stage: "enumerate", Cap: cap}
		}
	}

	const inf = 1e18
	dp := make([][]float64, len(progression))
	back := make([][]int, len(progression))
	for i := range candidates {
		dp[i] = make([]float64, len(candidates[i]))
		back[i] = make([]int, len(candidates[i]))
		for j := range dp[i] {
			dp[i][j] = inf
			back[i][j] = -1
		}
	}
	for j := range candidates[0] {
		dp[0][j] = 0
	}

	ban := hardBan(mode)

	for i := 1; i < len(progression); i++ {
		prevRow := candidates[i-1]
		currRow := candidates[i]
		pairs := len(prevRow) * len(currRow)

		evalCurr := func(j int) {
			curr := currRow[j]
			best := inf
			bestK := -1
			for k, prev := range prevRow {
				if dp[i-1][k] >= inf {
					continue
				}
				flags, _ := CheckRules(prev, curr, keyRoot)
				if flags&ban != 0 {
					continue
				}
				transitionCost := TransitionCost(prev, curr, keyRoot, smoothnessWeight)
				if transitionCost > cap {
					continue // exceeds max_transition_cost
				}
				cost := dp[i-1][k] + transitionCost
				if cost < best {
					best = cost
					bestK = k
				}
			}
			dp[i][j] = best
			back[i][j] = bestK
		}

		if pairs > parallelFanoutThreshold {
			var wg sync.WaitGroup
			wg.Add(len(currRow))
			for j := range currRow {
				j := j
				go func() {
					defer wg.Done()
					evalCurr(j)
				}()
			}
			wg.Wait()
		} else {
			for j := range currRow {
				evalCurr(j)
			}
		}
	}

	last := len(progression) - 1
	bestJ := -1
	bestCost := inf
	for j, c := range dp[last] {
		if c < bestCost {
			bestCost = c
			bestJ = j
		}
	}
	if bestJ == -1 {
		return nil, &theoryerr.NoValidPath{Stage: "dp", Cap: cap}
	}

	path := make([]Voicing, len(progression))
	j := bestJ
	for i := last; i >= 0; i-- {
		path[i] = candidates[i][j]
		j = back[i][j]
	}
	return path, nil
}

// BestSingle picks the candidate voicing with the narrowest bass-to-soprano
// span (ties in no defined order) for a single chord with no predecessor
// context -- used to seed a progression's
// first chord display or for ad hoc single-chord realization.
func BestSingle(mask chordtable.Mask) (Voicing, error) {
	cands := candidatesForMask(mask, true)
	if len(cands) == 0 {
		return Voicing{}, &theoryerr.NoValidPath{Stage: "enumerate", Cap: 0}
	}
	sort.Slice(cands, func(i, j int) bool {
		si := cands[i][3] - cands[i][0]
		sj := cands[j][3] - cands[j][0]
		return si < sj
	})
	return cands[0], nil
}
