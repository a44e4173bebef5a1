// localize computes candidate camera poses from three 2D-3D
// correspondences read from a JSON file. It prints all four algebraic
// candidates; picking the right one needs extra observations and is left to
// the surrounding pipeline.
//
// Input file format:
//
//	{
//	  "bearings": [[x,y,z], [x,y,z], [x,y,z]],
//	  "points":   [[x,y,z], [x,y,z], [x,y,z]]
//	}
//
// Bearings are camera-frame ray directions (normalized on load); points are
// the corresponding world coordinates.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/fovea-vision/localize/internal/histogram"
	"github.com/fovea-vision/localize/internal/p3p"
	"github.com/fovea-vision/localize/internal/posedb"
)

var (
	inputPath    = flag.String("input", "", "Path to correspondences JSON file (required)")
	dbPath       = flag.String("db", "", "Record the solve to this sqlite database")
	histPath     = flag.String("hist", "", "Write a reprojection-residual histogram PNG to this path")
	validateOnly = flag.Bool("validate", false, "Print only candidates that pass validation")
	label        = flag.String("label", "", "Label to store with the solve record")
)

// correspondenceFile is the on-disk input format.
type correspondenceFile struct {
	Bearings [][3]float64 `json:"bearings"`
	Points   [][3]float64 `json:"points"`
}

func loadCorrespondences(path string) (features, points [3]r3.Vector, raw []byte, err error) {
	raw, err = os.ReadFile(path)
	if err != nil {
		return features, points, nil, fmt.Errorf("read input: %w", err)
	}

	var cf correspondenceFile
	if err = json.Unmarshal(raw, &cf); err != nil {
		return features, points, nil, fmt.Errorf("parse input: %w", err)
	}
	if len(cf.Bearings) != 3 || len(cf.Points) != 3 {
		return features, points, nil, fmt.Errorf("expected exactly 3 correspondences, got %d bearings and %d points",
			len(cf.Bearings), len(cf.Points))
	}

	for i := 0; i < 3; i++ {
		b := r3.Vector{X: cf.Bearings[i][0], Y: cf.Bearings[i][1], Z: cf.Bearings[i][2]}
		if b.Norm() == 0 {
			return features, points, nil, fmt.Errorf("bearing %d is the zero vector", i)
		}
		features[i] = b.Normalize()
		points[i] = r3.Vector{X: cf.Points[i][0], Y: cf.Points[i][1], Z: cf.Points[i][2]}
	}
	return features, points, raw, nil
}

// flattenPose returns the 3x4 candidate matrix as a row-major slice for
// JSON storage.
func flattenPose(pose p3p.Pose) []float64 {
	m := pose.Matrix()
	out := make([]float64, 0, 12)
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			out = append(out, m.At(i, j))
		}
	}
	return out
}

func recordSolve(path string, input []byte, poses []p3p.Pose) error {
	db, err := posedb.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	flattened := make([][]float64, len(poses))
	for i, pose := range poses {
		flattened[i] = flattenPose(pose)
	}
	candidates, err := json.Marshal(flattened)
	if err != nil {
		return fmt.Errorf("marshal candidates: %w", err)
	}

	rec := &posedb.SolveRecord{
		Label:           *label,
		Correspondences: json.RawMessage(input),
		Candidates:      candidates,
	}
	if err := db.Insert(rec); err != nil {
		return err
	}
	log.Printf("Recorded solve %s", rec.SolveID)
	return nil
}

func writeResidualHistogram(path string, features, points [3]r3.Vector, poses []p3p.Pose) error {
	// Log-spaced bins over the useful angular-error range (radians).
	h := histogram.New([]float64{1e-12, 1e-9, 1e-6, 1e-3, 1e-1})
	for _, pose := range poses {
		if pose.Validate() != nil {
			continue
		}
		for i := range points {
			residual := pose.Bearing(points[i]).Sub(features[i]).Norm()
			h.Add(residual)
		}
	}
	if err := h.SavePNG(path, "Per-candidate reprojection residuals"); err != nil {
		return err
	}
	log.Printf("Residual histogram:\n%s", h.String())
	return nil
}

func main() {
	flag.Parse()

	if *inputPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	features, points, raw, err := loadCorrespondences(*inputPath)
	if err != nil {
		log.Fatalf("Failed to load correspondences: %v", err)
	}

	poses, err := p3p.ComputePoses(features, points)
	if err != nil {
		log.Fatalf("Solve failed: %v", err)
	}

	printed := 0
	for i, pose := range poses {
		verr := pose.Validate()
		if *validateOnly && verr != nil {
			continue
		}

		status := "valid"
		if verr != nil {
			status = verr.Error()
		}
		fmt.Printf("candidate %d (%s):\n%v\n\n", i, status,
			mat.Formatted(pose.Matrix(), mat.Prefix(""), mat.Squeeze()))
		printed++
	}
	if printed == 0 {
		log.Print("No candidates passed validation")
	}

	if *dbPath != "" {
		if err := recordSolve(*dbPath, raw, poses); err != nil {
			log.Fatalf("Failed to record solve: %v", err)
		}
	}
	if *histPath != "" {
		if err := writeResidualHistogram(*histPath, features, points, poses); err != nil {
			log.Fatalf("Failed to write histogram: %v", err)
		}
	}
}
