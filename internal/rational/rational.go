// Package rational implements exact fraction arithmetic used for every
// offset and duration in the engine. Values are always normalized: the
// denominator is positive and the fraction is in lowest terms.
package rational

import (
	"fmt"

	"github.com/schollz/scoreforge/internal/theoryerr"
)

// Rational is an exact num/den fraction. Zero value is the invalid 0/0 --
// always construct via New.
type Rational struct {
	Num int64
	Den int64
}

// Zero is the normalized representation of 0.
var Zero = Rational{Num: 0, Den: 1}

// New constructs a normalized Rational. den must not be zero.
func New(num, den int64) (Rational, error) {
	if den == 0 {
		return Rational{}, &theoryerr.InvalidArgument{Field: "den", Reason: "denominator must not be zero"}
	}
	return normalize(num, den), nil
}

// Must is New but panics on error; for literals known to be valid at
// construction time (test fixtures, internal tables).
func Must(num, den int64) Rational {
	r, err := New(num, den)
	if err != nil {
		panic(err)
	}
	return r
}

func gcd(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

func normalize(num, den int64) Rational {
	if num == 0 {
		return Rational{Num: 0, Den: 1}
	}
	if den < 0 {
		num, den = -num, -den
	}
	g := gcd(num, den)
	return Rational{Num: num / g, Den: den / g}
}

// Add returns r + o.
func (r Rational) Add(o Rational) Rational {
	if r.Den == o.Den {
		return normalize(r.Num+o.Num, r.Den)
	}
	return normalize(r.Num*o.Den+o.Num*r.Den, r.Den*o.Den)
}

// Sub returns r - o.
func (r Rational) Sub(o Rational) Rational {
	if r.Den == o.Den {
		return normalize(r.Num-o.Num, r.Den)
	}
	return normalize(r.Num*o.Den-o.Num*r.Den, r.Den*o.Den)
}

// Mul returns r * o.
func (r Rational) Mul(o Rational) Rational {
	return normalize(r.Num*o.Num, r.Den*o.Den)
}

// Div returns r / o. Fails with ErrDivisionByZero when o's numerator is 0.
func (r Rational) Div(o Rational) (Rational, error) {
	if o.Num == 0 {
		return Rational{}, theoryerr.ErrDivisionByZero
	}
	return normalize(r.Num*o.Den, r.Den*o.Num), nil
}

// Cmp compares r to o via cross-multiplication: -1, 0, 1.
func (r Rational) Cmp(o Rational) int {
	lhs := r.Num * o.Den
	rhs := o.Num * r.Den
	switch {
	case lhs < rhs:
		return -1
	case lhs > rhs:
		return 1
	default:
		return 0
	}
}

// Less reports whether r < o.
func (r Rational) Less(o Rational) bool { return r.Cmp(o) < 0 }

// Equal reports whether r == o (both are assumed normalized).
func (r Rational) Equal(o Rational) bool { return r.Num == o.Num && r.Den == o.Den }

// IsZero reports whether r is the normalized zero value.
func (r Rational) IsZero() bool { return r.Num == 0 }

// ToDouble converts to float64. Informational only -- never used in a
// comparison or equality check within the engine.
func (r Rational) ToDouble() float64 {
	return float64(r.Num) / float64(r.Den)
}

// String formats as "n" when the denominator is 1, else "n/d".
func (r Rational) String() string {
	if r.Den == 1 {
		return fmt.Sprintf("%d", r.Num)
	}
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// Neg returns -r.
func (r Rational) Neg() Rational {
	return Rational{Num: -r.Num, Den: r.Den}
}

// Min returns the lesser of a, b.
func Min(a, b Rational) Rational {
	if a.Less(b) {
		return a
	}
	return b
}

// Max returns the greater of a, b.
func Max(a, b Rational) Rational {
	if a.Less(b) {
		return b
	}
	return a
}
