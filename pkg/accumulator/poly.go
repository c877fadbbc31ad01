package accumulator

import (
	"errors"
	"math/big"
)

// Polynomial is a dense coefficient vector over F_r, low-degree term
// first: Polynomial[i] is the coefficient of X^i. The zero polynomial is
// represented as Polynomial{0}; polynomials are kept trimmed (no
// trailing zero coefficient) except for that one case.
type Polynomial []*big.Int

func polyOne() Polynomial  { return Polynomial{big.NewInt(1)} }
func polyZero() Polynomial { return Polynomial{big.NewInt(0)} }

func isZeroPoly(p Polynomial) bool {
	return len(p) == 1 && p[0].Sign() == 0
}

func polyDegree(p Polynomial) int {
	if isZeroPoly(p) {
		return -1
	}
	return len(p) - 1
}

func cloneCoeffs(p Polynomial) Polynomial {
	out := make(Polynomial, len(p))
	for i, c := range p {
		out[i] = new(big.Int).Set(c)
	}
	return out
}

func trim(p Polynomial) Polynomial {
	n := len(p)
	for n > 1 && p[n-1].Sign() == 0 {
		n--
	}
	return p[:n]
}

// polyFromRoots builds ∏(X + root_i) mod m, the polynomial whose roots
// are -root_i — i.e. the accumulator polynomial for the key scalars
// `roots`.
func polyFromRoots(roots []*big.Int, m *big.Int) Polynomial {
	p := polyOne()
	for _, root := range roots {
		p = mulLinear(p, root, m)
	}
	return p
}

// mulLinear multiplies p by (X + root) mod m.
func mulLinear(p Polynomial, root *big.Int, m *big.Int) Polynomial {
	out := make(Polynomial, len(p)+1)
	for i := range out {
		out[i] = big.NewInt(0)
	}
	for i, c := range p {
		// c*X^i * X contributes to X^(i+1)
		out[i+1].Add(out[i+1], c)
		out[i+1].Mod(out[i+1], m)

		// c*X^i * root contributes to X^i
		term := new(big.Int).Mul(c, root)
		term.Mod(term, m)
		out[i].Add(out[i], term)
		out[i].Mod(out[i], m)
	}
	return trim(out)
}

func polyAdd(a, b Polynomial, m *big.Int) Polynomial {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make(Polynomial, n)
	zero := big.NewInt(0)
	for i := 0; i < n; i++ {
		av, bv := zero, zero
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		s := new(big.Int).Add(av, bv)
		s.Mod(s, m)
		out[i] = s
	}
	return trim(out)
}

func polyScale(a Polynomial, c *big.Int, m *big.Int) Polynomial {
	out := make(Polynomial, len(a))
	for i, v := range a {
		s := new(big.Int).Mul(v, c)
		s.Mod(s, m)
		out[i] = s
	}
	return trim(out)
}

func polyNeg(a Polynomial, m *big.Int) Polynomial {
	return polyScale(a, big.NewInt(-1), m)
}

func polySub(a, b Polynomial, m *big.Int) Polynomial {
	return polyAdd(a, polyNeg(b, m), m)
}

func polyMul(a, b Polynomial, m *big.Int) Polynomial {
	if isZeroPoly(a) || isZeroPoly(b) {
		return polyZero()
	}
	out := make(Polynomial, len(a)+len(b)-1)
	for i := range out {
		out[i] = big.NewInt(0)
	}
	for i, av := range a {
		if av.Sign() == 0 {
			continue
		}
		for j, bv := range b {
			if bv.Sign() == 0 {
				continue
			}
			term := new(big.Int).Mul(av, bv)
			term.Mod(term, m)
			out[i+j].Add(out[i+j], term)
			out[i+j].Mod(out[i+j], m)
		}
	}
	return trim(out)
}

// polyDivMod performs polynomial long division a = q*b + r over F_r.
func polyDivMod(a, b Polynomial, m *big.Int) (q, r Polynomial, err error) {
	if isZeroPoly(b) {
		return nil, nil, errors.New("accumulator: division by zero polynomial")
	}
	degB := polyDegree(b)
	lead := b[degB]
	leadInv := new(big.Int).ModInverse(lead, m)
	if leadInv == nil {
		return nil, nil, errors.New("accumulator: divisor leading coefficient not invertible")
	}

	r = cloneCoeffs(a)
	qCoeffs := []*big.Int{big.NewInt(0)}

	for polyDegree(r) >= degB && !isZeroPoly(r) {
		degR := polyDegree(r)
		coeff := new(big.Int).Mul(r[degR], leadInv)
		coeff.Mod(coeff, m)
		shift := degR - degB

		termPoly := make(Polynomial, shift+1)
		for i := range termPoly {
			termPoly[i] = big.NewInt(0)
		}
		termPoly[shift] = coeff

		r = polySub(r, polyMul(termPoly, b, m), m)

		for len(qCoeffs) <= shift {
			qCoeffs = append(qCoeffs, big.NewInt(0))
		}
		qCoeffs[shift] = coeff
	}

	return trim(Polynomial(qCoeffs)), trim(r), nil
}

// polyExtGCD runs the extended Euclidean algorithm over F_r[X], returning
// g, s, t such that a*s + b*t = g.
func polyExtGCD(a, b Polynomial, m *big.Int) (g, s, t Polynomial, err error) {
	oldR, curR := cloneCoeffs(a), cloneCoeffs(b)
	oldS, curS := polyOne(), polyZero()
	oldT, curT := polyZero(), polyOne()

	for !isZeroPoly(curR) {
		q, rem, derr := polyDivMod(oldR, curR, m)
		if derr != nil {
			return nil, nil, nil, derr
		}
		oldR, curR = curR, rem
		oldS, curS = curS, polySub(oldS, polyMul(q, curS, m), m)
		oldT, curT = curT, polySub(oldT, polyMul(q, curT, m), m)
	}
	return oldR, oldS, oldT, nil
}
