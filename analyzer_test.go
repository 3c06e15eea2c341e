package depthquality

import (
	"image"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"gonum.org/v1/gonum/stat"

	pc "go.viam.com/depthquality/pointcloud"
	"go.viam.com/depthquality/transform"
	"go.viam.com/depthquality/utils"
)

func testParams() *transform.DepthCameraParams {
	return &transform.DepthCameraParams{
		Width: 640, Height: 480,
		Fx: 380, Fy: 380,
		Ppx: 320, Ppy: 240,
		BaselineMM: 50,
	}
}

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer(DefaultConfig(), testParams())
	test.That(t, err, test.ShouldBeNil)
	return a
}

// planePoints generates n points lying exactly on the given plane,
// scattered on a grid around the plane's closest point to the origin.
func planePoints(n int, eq [4]float64) []r3.Vector {
	plane := pc.NewPlane(eq).Normalized()
	normal := plane.Normal()
	var u r3.Vector
	if math.Abs(normal.X) < 0.9 {
		u = normal.Cross(r3.Vector{X: 1})
	} else {
		u = normal.Cross(r3.Vector{Y: 1})
	}
	u = u.Normalize()
	v := normal.Cross(u).Normalize()
	origin := normal.Mul(-plane.Equation()[3])
	pts := make([]r3.Vector, 0, n)
	for i := 0; i < n; i++ {
		a := 0.02*float64(i%10) - 0.1
		b := 0.02*float64(i/10) - 0.1
		pts = append(pts, origin.Add(u.Mul(a)).Add(v.Mul(b)))
	}
	return pts
}

func TestAnalyzeFrameZeroNoise(t *testing.T) {
	a := newTestAnalyzer(t)
	// wall at z = 5, head on
	eq := [4]float64{0, 0, 1, -5}
	points := planePoints(100, eq)
	roi := image.Rect(0, 0, 10, 10)

	metrics, err := a.AnalyzeFrame(points, pc.NewPlane(eq), roi)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, metrics.AvgErrorMM, test.ShouldAlmostEqual, 0, 1e-6)
	test.That(t, metrics.StdErrorMM, test.ShouldAlmostEqual, 0, 1e-6)
	test.That(t, metrics.SubpixelRMS, test.ShouldAlmostEqual, 0, 1e-6)
	test.That(t, metrics.FillRatePct, test.ShouldAlmostEqual, 100)
	test.That(t, metrics.DistanceM, test.ShouldAlmostEqual, 5)
	test.That(t, metrics.AngleDeg, test.ShouldAlmostEqual, 0, 1e-6)
}

func TestAnalyzeFrameTiltedWall(t *testing.T) {
	a := newTestAnalyzer(t)
	// wall tilted 30 degrees off head-on
	tilt := utils.DegToRad(30)
	eq := [4]float64{math.Sin(tilt), 0, math.Cos(tilt), -1}
	points := planePoints(50, eq)

	metrics, err := a.AnalyzeFrame(points, pc.NewPlane(eq), image.Rect(0, 0, 20, 20))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, metrics.AngleDeg, test.ShouldAlmostEqual, 30, 1e-3)
	test.That(t, metrics.DistanceM, test.ShouldAlmostEqual, 1, 1e-6)
	test.That(t, metrics.AvgErrorMM, test.ShouldAlmostEqual, 0, 1e-6)
}

func TestAnalyzeFrameFillRate(t *testing.T) {
	a := newTestAnalyzer(t)
	eq := [4]float64{0, 0, 1, -2}
	points := planePoints(50, eq)

	// 50 points in a 10x10 pixel window, regardless of plane or distances
	metrics, err := a.AnalyzeFrame(points, pc.NewPlane(eq), image.Rect(0, 0, 10, 10))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, metrics.FillRatePct, test.ShouldAlmostEqual, 50)

	metrics, err = a.AnalyzeFrame(points, pc.NewPlane(eq), image.Rect(5, 5, 25, 30))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, metrics.FillRatePct, test.ShouldAlmostEqual, 10)
}

// distancePoints returns points whose perpendicular distances to the z = 0
// plane are exactly 1..n mm.
func distancePoints(n int) []r3.Vector {
	pts := make([]r3.Vector, 0, n)
	for i := 1; i <= n; i++ {
		pts = append(pts, r3.Vector{X: 0.5, Y: 0.5, Z: float64(i) / 1000})
	}
	return pts
}

func TestAnalyzeFrameOutlierTrimming(t *testing.T) {
	a := newTestAnalyzer(t)
	plane := pc.NewPlane([4]float64{0, 0, 1, 0})
	points := distancePoints(100)

	metrics, err := a.AnalyzeFrame(points, plane, image.Rect(0, 0, 20, 20))
	test.That(t, err, test.ShouldBeNil)

	// 2.5% of 100 = 2 samples cropped from each tail, leaving 3..98 mm
	retained := make([]float64, 0, 96)
	for d := 3; d <= 98; d++ {
		retained = append(retained, float64(d))
	}
	test.That(t, metrics.AvgErrorMM, test.ShouldAlmostEqual, stat.Mean(retained, nil), 1e-9)
	test.That(t, metrics.AvgErrorMM, test.ShouldAlmostEqual, 50.5, 1e-9)

	var sumSq float64
	for _, d := range retained {
		sumSq += (d - 50.5) * (d - 50.5)
	}
	test.That(t, metrics.StdErrorMM, test.ShouldAlmostEqual, math.Sqrt(sumSq/96), 1e-9)
}

func TestAnalyzeFrameNoTrimOnSmallSet(t *testing.T) {
	a := newTestAnalyzer(t)
	plane := pc.NewPlane([4]float64{0, 0, 1, 0})
	// 2.5% of 20 truncates to zero, nothing is cropped
	points := distancePoints(20)

	metrics, err := a.AnalyzeFrame(points, plane, image.Rect(0, 0, 20, 20))
	test.That(t, err, test.ShouldBeNil)

	dists := make([]float64, 0, 20)
	for d := 1; d <= 20; d++ {
		dists = append(dists, float64(d))
	}
	test.That(t, metrics.AvgErrorMM, test.ShouldAlmostEqual, stat.Mean(dists, nil), 1e-9)
	test.That(t, metrics.StdErrorMM, test.ShouldAlmostEqual, stat.PopStdDev(dists, nil), 1e-9)
}

func TestAnalyzeFrameSubpixelRMS(t *testing.T) {
	a := newTestAnalyzer(t)
	plane := pc.NewPlane([4]float64{0, 0, 1, -1})
	// four points on the wall at z = 1, one a millimeter behind it
	points := []r3.Vector{
		{X: 0, Y: 0.1, Z: 1},
		{X: 0.1, Y: 0, Z: 1},
		{X: -0.1, Y: 0, Z: 1},
		{X: 0, Y: -0.1, Z: 1},
		{X: 0, Y: 0, Z: 1.001},
	}

	metrics, err := a.AnalyzeFrame(points, plane, image.Rect(0, 0, 10, 10))
	test.That(t, err, test.ShouldBeNil)

	// only the offset point contributes disparity error: its range is
	// 1.001 m against a projected range of 1 m
	bf := 50 * 380 * 0.001
	expected := math.Abs(bf/1.001-bf/1.0) / math.Sqrt(5)
	test.That(t, metrics.SubpixelRMS, test.ShouldAlmostEqual, expected, 1e-9)
	test.That(t, metrics.AvgErrorMM, test.ShouldAlmostEqual, 0.2, 1e-9)
}

func TestAnalyzeFrameDegenerateInput(t *testing.T) {
	a := newTestAnalyzer(t)
	plane := pc.NewPlane([4]float64{0, 0, 1, -1})
	roi := image.Rect(0, 0, 10, 10)

	_, err := a.AnalyzeFrame(nil, plane, roi)
	test.That(t, errors.Is(err, ErrTooFewPoints), test.ShouldBeTrue)

	_, err = a.AnalyzeFrame(planePoints(2, [4]float64{0, 0, 1, -1}), plane, roi)
	test.That(t, errors.Is(err, ErrTooFewPoints), test.ShouldBeTrue)

	_, err = a.AnalyzeFrame(planePoints(10, [4]float64{0, 0, 1, -1}), plane, image.Rect(3, 3, 3, 9))
	test.That(t, errors.Is(err, ErrEmptyROI), test.ShouldBeTrue)

	_, err = a.AnalyzeFrame(planePoints(10, [4]float64{0, 0, 1, -1}), pc.NewEmptyPlane(), roi)
	test.That(t, errors.Is(err, ErrInvalidPlane), test.ShouldBeTrue)
}

func TestConfigCheckValid(t *testing.T) {
	cfg := DefaultConfig()
	test.That(t, cfg.CheckValid(), test.ShouldBeNil)

	cfg.OutlierCropPercent = -1
	err := cfg.CheckValid()
	test.That(t, err.Error(), test.ShouldContainSubstring, "outlier_crop_percent must be in [0, 50)")

	cfg.OutlierCropPercent = 50
	err = cfg.CheckValid()
	test.That(t, err.Error(), test.ShouldContainSubstring, "outlier_crop_percent must be in [0, 50)")

	cfg = DefaultConfig()
	cfg.MinPoints = 0
	err = cfg.CheckValid()
	test.That(t, err.Error(), test.ShouldContainSubstring, "min_points cannot be less than 1")
}

func TestNewAnalyzerRejectsBadCalibration(t *testing.T) {
	params := testParams()
	params.BaselineMM = 0
	_, err := NewAnalyzer(DefaultConfig(), params)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "invalid stereo baseline")

	params = testParams()
	params.Fx = -10
	_, err = NewAnalyzer(DefaultConfig(), params)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "invalid focal length")
}
