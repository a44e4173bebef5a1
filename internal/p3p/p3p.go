package p3p

// p3p implements Kneip's parametrization of the perspective-three-point
// problem: the absolute pose of a calibrated camera from exactly three
// 2D-to-3D correspondences. The observation rays and the world points are
// each re-expressed in a purpose-built orthonormal frame, which reduces the
// geometry to a single quartic polynomial in cos(theta). Each real root
// back-substitutes into one candidate pose, so the solver returns up to
// four algebraic candidates.
//
// Candidate selection is out of scope here. A downstream verifier (RANSAC
// hypothesis scoring, a fourth correspondence, reprojection error) must pick
// the correct pose and must screen candidates with Pose.Validate first:
// numerically degenerate inputs (coincident rays, roots outside [-1, 1])
// propagate as non-finite matrix entries rather than as errors.

import (
	"errors"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// ErrCollinear is returned when the three world points lie on a single
// line. The intermediate world frame is undefined in that configuration,
// so no candidate poses can be produced.
var ErrCollinear = errors.New("p3p: world points are collinear")

// ComputePoses computes the camera pose candidates for three bearing
// vectors and their corresponding world points.
//
// features holds unit-length rays in the camera frame, ordered to match
// worldPoints by correspondence index. Unit length is the caller's
// responsibility; vectors are not renormalized here.
//
// On success the result always contains exactly four candidates, one per
// algebraic branch of the quartic. Branches with complex or out-of-range
// roots yield candidates with non-finite entries instead of being dropped,
// keeping the output a fixed-size hypothesis batch.
func ComputePoses(features, worldPoints [3]r3.Vector) ([]Pose, error) {
	p1 := worldPoints[0]
	p2 := worldPoints[1]
	p3 := worldPoints[2]

	if p2.Sub(p1).Cross(p3.Sub(p1)).Norm() == 0 {
		return nil, ErrCollinear
	}

	f1 := features[0]
	f2 := features[1]
	f3 := features[2]

	// Reorder correspondences 1 and 2 so that f3 ends up with a
	// non-positive third coordinate in the intermediate camera frame,
	// keeping theta within [0, pi] (sin(theta) >= 0 downstream). The
	// frame's third axis is f1 x f2 up to positive scale, so the sign
	// test does not need the frame itself.
	if f1.Cross(f2).Dot(f3) > 0 {
		f1, f2 = f2, f1
		p1, p2 = p2, p1
	}

	// Intermediate camera frame T: rows e1, e2, e3.
	e1 := f1
	e3 := f1.Cross(f2).Normalize()
	e2 := e3.Cross(e1)
	t := frameFromRows(e1, e2, e3)
	f3t := mulVec(t, f3)

	// Intermediate world frame N with P1 as origin.
	n1 := p2.Sub(p1).Normalize()
	n3 := n1.Cross(p3.Sub(p1)).Normalize()
	n2 := n3.Cross(n1)
	n := frameFromRows(n1, n2, n3)
	p3t := mulVec(n, p3.Sub(p1))

	// Scalar invariants of the reduced geometry.
	d12 := p2.Sub(p1).Norm()
	fr1 := f3t.X / f3t.Z
	fr2 := f3t.Y / f3t.Z
	pp1 := p3t.X
	pp2 := p3t.Y

	cosBeta := f1.Dot(f2)
	b := 1/(1-cosBeta*cosBeta) - 1
	if cosBeta < 0 {
		b = -math.Sqrt(b)
	} else {
		b = math.Sqrt(b)
	}

	factors := quarticFactors(fr1, fr2, pp1, pp2, d12, b)
	roots := solveQuartic(factors)

	poses := make([]Pose, 0, 4)
	for _, r := range roots {
		poses = append(poses, backSubstitute(r, fr1, fr2, pp1, pp2, d12, b, p1, n, t))
	}
	return poses, nil
}

// quarticFactors expands the law-of-cosines plus angle-constraint system
// into the five coefficients of the quartic in cos(theta). The expansion is
// closed-form with no branching; terms use powers up to the 4th of p1, p2
// and up to the 2nd of b, d12.
func quarticFactors(fr1, fr2, pp1, pp2, d12, b float64) [5]float64 {
	fr1pw2 := fr1 * fr1
	fr2pw2 := fr2 * fr2

	pp1pw2 := pp1 * pp1
	pp1pw3 := pp1pw2 * pp1
	pp1pw4 := pp1pw3 * pp1

	pp2pw2 := pp2 * pp2
	pp2pw3 := pp2pw2 * pp2
	pp2pw4 := pp2pw3 * pp2

	d12pw2 := d12 * d12
	bpw2 := b * b

	var factors [5]float64

	factors[0] = -fr2pw2*pp2pw4 - pp2pw4*fr1pw2 - pp2pw4

	factors[1] = 2*pp2pw3*d12*b +
		2*fr2pw2*pp2pw3*d12*b -
		2*fr2*pp2pw3*fr1*d12

	factors[2] = -fr2pw2*pp2pw2*pp1pw2 -
		fr2pw2*pp2pw2*d12pw2*bpw2 -
		fr2pw2*pp2pw2*d12pw2 +
		fr2pw2*pp2pw4 +
		pp2pw4*fr1pw2 +
		2*pp1*pp2pw2*d12 +
		2*fr1*fr2*pp1*pp2pw2*d12*b -
		pp2pw2*pp1pw2*fr1pw2 +
		2*pp1*pp2pw2*fr2pw2*d12 -
		pp2pw2*d12pw2*bpw2 -
		2*pp1pw2*pp2pw2

	factors[3] = 2*pp1pw2*pp2*d12*b +
		2*fr2*pp2pw3*fr1*d12 -
		2*fr2pw2*pp2pw3*d12*b -
		2*pp1*pp2*d12pw2*b

	factors[4] = -2*fr2*pp2pw2*fr1*pp1*d12*b +
		fr2pw2*pp2pw2*d12pw2 +
		2*pp1pw3*d12 -
		pp1pw2*d12pw2 +
		fr2pw2*pp2pw2*pp1pw2 -
		pp1pw4 -
		2*fr2pw2*pp2pw2*pp1*d12 +
		pp2pw2*fr1pw2*pp1pw2 +
		fr2pw2*pp2pw2*d12pw2*bpw2

	return factors
}

// backSubstitute reconstructs one candidate pose from a quartic root
// r = cos(theta). The camera center and rotation come out in the
// intermediate frames and are mapped back through N and T.
func backSubstitute(r, fr1, fr2, pp1, pp2, d12, b float64, p1 r3.Vector, n, t *mat.Dense) Pose {
	cotAlpha := (-fr1*pp1/fr2 - r*pp2 + d12*b) /
		(-fr1*r*pp2/fr2 + pp1 - d12)

	cosTheta := r
	sinTheta := math.Sqrt(1 - r*r)
	sinAlpha := math.Sqrt(1 / (cotAlpha*cotAlpha + 1))
	cosAlpha := math.Sqrt(1 - sinAlpha*sinAlpha)
	if cotAlpha < 0 {
		cosAlpha = -cosAlpha
	}

	// Camera center in the intermediate world frame, then back to world.
	scale := d12 * (sinAlpha*b + cosAlpha)
	c := r3.Vector{
		X: scale * cosAlpha,
		Y: scale * cosTheta * sinAlpha,
		Z: scale * sinTheta * sinAlpha,
	}
	center := p1.Add(mulTransposeVec(n, c))

	// Rotation in the intermediate frames, mapped back as N^T * R'^T * T.
	rp := mat.NewDense(3, 3, []float64{
		-cosAlpha, -sinAlpha * cosTheta, -sinAlpha * sinTheta,
		sinAlpha, -cosAlpha * cosTheta, -cosAlpha * sinTheta,
		0, -sinTheta, cosTheta,
	})

	var rt mat.Dense
	rt.Mul(rp.T(), t)
	rotation := mat.NewDense(3, 3, nil)
	rotation.Mul(n.T(), &rt)

	return Pose{Rotation: rotation, Center: center}
}

// frameFromRows assembles an orthonormal 3x3 frame whose rows are the given
// basis vectors, so left-multiplication maps a vector into that basis.
func frameFromRows(r1, r2, r3v r3.Vector) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		r1.X, r1.Y, r1.Z,
		r2.X, r2.Y, r2.Z,
		r3v.X, r3v.Y, r3v.Z,
	})
}

func mulVec(m *mat.Dense, v r3.Vector) r3.Vector {
	return r3.Vector{
		X: m.At(0, 0)*v.X + m.At(0, 1)*v.Y + m.At(0, 2)*v.Z,
		Y: m.At(1, 0)*v.X + m.At(1, 1)*v.Y + m.At(1, 2)*v.Z,
		Z: m.At(2, 0)*v.X + m.At(2, 1)*v.Y + m.At(2, 2)*v.Z,
	}
}

func mulTransposeVec(m *mat.Dense, v r3.Vector) r3.Vector {
	return r3.Vector{
		X: m.At(0, 0)*v.X + m.At(1, 0)*v.Y + m.At(2, 0)*v.Z,
		Y: m.At(0, 1)*v.X + m.At(1, 1)*v.Y + m.At(2, 1)*v.Z,
		Z: m.At(0, 2)*v.X + m.At(1, 2)*v.Y + m.At(2, 2)*v.Z,
	}
}
