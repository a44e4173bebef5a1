package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/fovea-vision/localize/internal/p3p"
)

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func TestLoadCorrespondences_NormalizesBearings(t *testing.T) {
	path := writeInput(t, `{
		"bearings": [[0,0,2], [3,0,4], [0,5,0]],
		"points":   [[1,0,0], [0,1,0], [0,0,1]]
	}`)

	features, points, raw, err := loadCorrespondences(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(raw) == 0 {
		t.Error("expected raw input bytes")
	}

	for i, f := range features {
		if math.Abs(f.Norm()-1) > 1e-12 {
			t.Errorf("bearing %d not unit length: %v", i, f.Norm())
		}
	}
	if (points[0] != r3.Vector{X: 1, Y: 0, Z: 0}) {
		t.Errorf("unexpected first point: %v", points[0])
	}
}

func TestLoadCorrespondences_Errors(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"wrong count", `{"bearings": [[0,0,1]], "points": [[1,0,0]]}`},
		{"zero bearing", `{"bearings": [[0,0,0],[0,0,1],[0,1,0]], "points": [[1,0,0],[0,1,0],[0,0,1]]}`},
		{"bad json", `{`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeInput(t, tc.content)
			if _, _, _, err := loadCorrespondences(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFlattenPose_RowMajorLayout(t *testing.T) {
	pose := p3p.Pose{
		Rotation: mat.NewDense(3, 3, []float64{
			1, 2, 3,
			4, 5, 6,
			7, 8, 9,
		}),
		Center: r3.Vector{X: 10, Y: 11, Z: 12},
	}

	got := flattenPose(pose)
	want := []float64{1, 2, 3, 10, 4, 5, 6, 11, 7, 8, 9, 12}
	if len(got) != len(want) {
		t.Fatalf("length: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: got %v, want %v", i, got[i], want[i])
		}
	}
}
