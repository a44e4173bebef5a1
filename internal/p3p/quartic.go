package p3p

import "math/cmplx"

// solveQuartic extracts the four roots of the quartic polynomial
// A*x^4 + B*x^3 + C*x^2 + D*x + E, with factors = [A, B, C, D, E], using
// Ferrari's resolvent-cubic method. Intermediate values are complex128 so
// that cube and square roots of negative reals stay well-defined; each
// returned root is the real part of its branch. Imaginary residue is not
// checked, so complex root pairs surface as real values that downstream
// validation must reject.
func solveQuartic(factors [5]float64) [4]float64 {
	a := factors[0]
	b := factors[1]
	c := factors[2]
	d := factors[3]
	e := factors[4]

	apw2 := a * a
	bpw2 := b * b
	apw3 := apw2 * a
	bpw3 := bpw2 * b
	apw4 := apw3 * a
	bpw4 := bpw3 * b

	// Depressed quartic x^4 + alpha*x^2 + beta*x + gamma.
	alpha := -3*bpw2/(8*apw2) + c/a
	beta := bpw3/(8*apw3) - b*c/(2*apw2) + d/a
	gamma := -3*bpw4/(256*apw4) + bpw2*c/(16*apw3) - b*d/(4*apw2) + e/a

	alphapw2 := alpha * alpha
	alphapw3 := alphapw2 * alpha

	p := complex(-alphapw2/12-gamma, 0)
	q := complex(-alphapw3/108+alpha*gamma/3-beta*beta/8, 0)
	r := -q/2 + cmplx.Sqrt(q*q/4+p*p*p/27)

	u := cmplx.Pow(r, 1.0/3.0)
	var y complex128
	if real(u) == 0 {
		// A vanishing cube root would blow up the P/(3U) term.
		y = complex(-5.0*alpha/6.0, 0) - cmplx.Pow(q, 1.0/3.0)
	} else {
		y = complex(-5.0*alpha/6.0, 0) - p/(3*u) + u
	}

	w := cmplx.Sqrt(complex(alpha, 0) + 2*y)

	// Four branches: outer sign of w pairs with the sign of the beta/w
	// term under the inner radical.
	off := complex(-b/(4*a), 0)
	inner := complex(3*alpha, 0) + 2*y
	bw := 2 * complex(beta, 0) / w

	var roots [4]float64
	roots[0] = real(off + 0.5*(w+cmplx.Sqrt(-(inner+bw))))
	roots[1] = real(off + 0.5*(w-cmplx.Sqrt(-(inner+bw))))
	roots[2] = real(off + 0.5*(-w+cmplx.Sqrt(-(inner-bw))))
	roots[3] = real(off + 0.5*(-w-cmplx.Sqrt(-(inner-bw))))
	return roots
}
