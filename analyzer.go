// Package depthquality evaluates the geometric quality of a stereo depth
// sensor's output. Each captured frame supplies the points of a region of
// interest together with a plane fitted to them; the analyzer reduces that
// to six scalar quality metrics suitable for live calibration and QA
// readouts against a flat target.
package depthquality

import (
	"image"
	"math"
	"sort"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	pc "go.viam.com/depthquality/pointcloud"
	"go.viam.com/depthquality/transform"
	"go.viam.com/depthquality/utils"
)

// DefaultOutlierCropPercent is the percentage of samples discarded from each
// tail of the sorted distances before averaging, matching the reference
// behavior of treating 5% of the extreme points as outliers.
const DefaultOutlierCropPercent = 2.5

// DefaultMinPoints is the minimum number of retained points for a frame's
// metrics to be meaningful.
const DefaultMinPoints = 3

var (
	// ErrTooFewPoints is returned when the region of interest holds too few
	// valid points after outlier trimming. The frame is skipped; no values
	// are emitted.
	ErrTooFewPoints = errors.New("too few points in region of interest to compute metrics")
	// ErrEmptyROI is returned when the region of interest has no pixel area.
	ErrEmptyROI = errors.New("region of interest has no pixel area")
	// ErrInvalidPlane is returned when the fitted plane has a zero normal.
	ErrInvalidPlane = errors.New("fitted plane has a zero normal")
)

// Config holds the analyzer's tuning knobs.
type Config struct {
	// OutlierCropPercent is the percentage of samples trimmed from each
	// tail of the distance distribution. Zero disables trimming.
	OutlierCropPercent float64
	// MinPoints is the minimum number of points that must remain after
	// trimming for metrics to be emitted.
	MinPoints int
}

// DefaultConfig returns the reference analyzer configuration.
func DefaultConfig() Config {
	return Config{
		OutlierCropPercent: DefaultOutlierCropPercent,
		MinPoints:          DefaultMinPoints,
	}
}

// CheckValid checks if the fields of Config have valid inputs.
func (cfg Config) CheckValid() error {
	if cfg.OutlierCropPercent < 0 || cfg.OutlierCropPercent >= 50 {
		return errors.Errorf("outlier_crop_percent must be in [0, 50), got %v", cfg.OutlierCropPercent)
	}
	if cfg.MinPoints < 1 {
		return errors.Errorf("min_points cannot be less than 1, got %v", cfg.MinPoints)
	}
	return nil
}

// FrameMetrics are the six scalar quality metrics derived from one frame.
type FrameMetrics struct {
	// AvgErrorMM is the trimmed mean of absolute point-to-plane distances, in mm.
	AvgErrorMM float64
	// StdErrorMM is the spread of point-to-plane distances around the mean, in mm.
	StdErrorMM float64
	// SubpixelRMS is the root mean square of per-point disparity errors, in subpixels.
	SubpixelRMS float64
	// FillRatePct is the percentage of ROI pixels that produced a valid point.
	FillRatePct float64
	// DistanceM is the distance from the sensor to the plane, in meters.
	DistanceM float64
	// AngleDeg is the angle between the plane normal and the sensor's
	// principal axis, in degrees.
	AngleDeg float64
}

// Analyzer computes FrameMetrics from per-frame inputs. It is stateless
// beyond its validated configuration and may be shared across goroutines.
type Analyzer struct {
	cfg    Config
	params *transform.DepthCameraParams
}

// NewAnalyzer validates the configuration and calibration once, at session
// setup. Per-frame calls may then assume both are well formed.
func NewAnalyzer(cfg Config, params *transform.DepthCameraParams) (*Analyzer, error) {
	if err := cfg.CheckValid(); err != nil {
		return nil, err
	}
	if err := params.CheckValid(); err != nil {
		return nil, err
	}
	return &Analyzer{cfg: cfg, params: params}, nil
}

// pointError pairs a point's absolute distance to the plane (in mm) with its
// disparity-domain error (in subpixels).
type pointError struct {
	distMM    float64
	disparity float64
}

// AnalyzeFrame reduces one frame's worth of points to the six quality
// metrics. The points must already be confined to the region of interest
// and have nonzero range; the plane is the per-frame fit over those points.
//
// For each point the signed perpendicular distance to the plane and the
// disparity error between the point and its projection onto the plane are
// collected, the pairs are sorted by absolute distance and both tails are
// cropped, and the aggregates are computed over the retained middle band.
// Distance and angle come from the plane equation alone; fill rate relates
// the untrimmed point count to the full ROI pixel area.
func (a *Analyzer) AnalyzeFrame(points []r3.Vector, plane *pc.Plane, roi image.Rectangle) (FrameMetrics, error) {
	area := roi.Dx() * roi.Dy()
	if area <= 0 {
		return FrameMetrics{}, ErrEmptyROI
	}
	if plane.Normal().Norm() == 0 {
		return FrameMetrics{}, ErrInvalidPlane
	}
	p := plane.Normalized()
	eq := p.Equation()

	calc := make([]pointError, 0, len(points))
	for _, pt := range points {
		dist := p.Distance(pt)
		proj := p.Project(pt)
		calc = append(calc, pointError{
			distMM:    math.Abs(dist) * 1000,
			disparity: a.params.Disparity(pt.Norm()) - a.params.Disparity(proj.Norm()),
		})
	}
	sort.Slice(calc, func(i, j int) bool {
		if calc[i].distMM != calc[j].distMM {
			return calc[i].distMM < calc[j].distMM
		}
		return calc[i].disparity < calc[j].disparity
	})

	nOutliers := int(float64(len(calc)) * a.cfg.OutlierCropPercent / 100)
	// The reference divides the mean by the trimmed pair count but the
	// squared-deviation sums by the total point count minus the cropped
	// outliers. With one pair per point the two denominators coincide;
	// they are kept separate so the convention stays visible.
	meanCount := len(calc) - 2*nOutliers
	spreadCount := len(points) - 2*nOutliers
	if meanCount < a.cfg.MinPoints {
		return FrameMetrics{}, ErrTooFewPoints
	}
	retained := calc[nOutliers : len(calc)-nOutliers]

	var totalDistance float64
	for _, e := range retained {
		totalDistance += e.distMM
	}
	avg := totalDistance / float64(meanCount)

	var totalSqDiffs, totalSqDisparity float64
	for _, e := range retained {
		totalSqDiffs += utils.Square(e.distMM - avg)
		totalSqDisparity += utils.Square(e.disparity)
	}

	return FrameMetrics{
		AvgErrorMM:  avg,
		StdErrorMM:  math.Sqrt(totalSqDiffs / float64(spreadCount)),
		SubpixelRMS: math.Sqrt(totalSqDisparity / float64(spreadCount)),
		FillRatePct: float64(len(points)) / float64(area) * 100,
		// the origin-to-plane distance is encoded in the offset of the
		// unit-normal plane equation
		DistanceM: -eq[3],
		AngleDeg:  utils.RadToDeg(math.Acos(math.Abs(eq[2]))),
	}, nil
}
