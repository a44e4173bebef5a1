package p3p

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// OrthonormalityTolerance bounds how far R*R^T may drift from identity
// (and the determinant from +1) before a candidate rotation is rejected.
const OrthonormalityTolerance = 1e-6

// Pose is one candidate camera pose. Rotation is 3x3 and maps vectors from
// the camera's local frame into the world frame; Center is the camera
// center in world coordinates.
type Pose struct {
	Rotation *mat.Dense
	Center   r3.Vector
}

// Matrix returns the candidate as a 3x4 matrix [R | t] with the camera
// center as the translation column.
func (p Pose) Matrix() *mat.Dense {
	m := mat.NewDense(3, 4, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m.Set(i, j, p.Rotation.At(i, j))
		}
	}
	m.Set(0, 3, p.Center.X)
	m.Set(1, 3, p.Center.Y)
	m.Set(2, 3, p.Center.Z)
	return m
}

// Bearing returns the unit camera-frame ray toward the given world point:
// normalize(R^T * (world - Center)). It inverts the pinhole observation
// model, so reprojection residuals can be measured directly against the
// input bearing vectors.
func (p Pose) Bearing(world r3.Vector) r3.Vector {
	d := world.Sub(p.Center)
	return mulTransposeVec(p.Rotation, d).Normalize()
}

// Validate screens a candidate before use. Solver branches that hit an
// unchecked numeric degeneracy (coincident rays, a root outside [-1, 1])
// come out with non-finite entries or a broken rotation rather than an
// error, so every candidate must pass here before it is trusted.
//
// A valid candidate has finite entries, an orthonormal rotation and
// determinant +1, all within OrthonormalityTolerance.
func (p Pose) Validate() error {
	if p.Rotation == nil {
		return fmt.Errorf("p3p: pose has no rotation")
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if v := p.Rotation.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("p3p: rotation entry (%d,%d) is not finite", i, j)
			}
		}
	}
	for _, v := range []float64{p.Center.X, p.Center.Y, p.Center.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("p3p: camera center is not finite")
		}
	}

	var rrt mat.Dense
	rrt.Mul(p.Rotation, p.Rotation.T())
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if math.Abs(rrt.At(i, j)-want) > OrthonormalityTolerance {
				return fmt.Errorf("p3p: rotation is not orthonormal (R*R^T entry (%d,%d) = %v)", i, j, rrt.At(i, j))
			}
		}
	}

	if det := mat.Det(p.Rotation); math.Abs(det-1) > OrthonormalityTolerance {
		return fmt.Errorf("p3p: rotation determinant %v is not +1", det)
	}
	return nil
}
