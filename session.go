package depthquality

import (
	"image"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"

	pc "go.viam.com/depthquality/pointcloud"
	"go.viam.com/depthquality/transform"
)

// Session owns the six standard metric tracks for one sensor evaluation run
// and routes each analyzed frame's scalars into them. Calibration constants
// are validated once here, at setup, never per frame.
//
// OnFrame is meant to be called from a single frame-processing goroutine;
// track readers may run concurrently with it.
type Session struct {
	analyzer *Analyzer
	logger   golog.Logger
	tracks   map[string]*Track
	order    []string
}

// NewSession validates the configuration and calibration and creates the
// standard tracks with empty histories.
func NewSession(cfg Config, params *transform.DepthCameraParams, logger golog.Logger) (*Session, error) {
	analyzer, err := NewAnalyzer(cfg, params)
	if err != nil {
		return nil, err
	}
	s := &Session{
		analyzer: analyzer,
		logger:   logger,
		tracks:   map[string]*Track{},
	}
	for _, spec := range StandardMetrics() {
		s.tracks[spec.Name] = NewTrack(spec)
		s.order = append(s.order, spec.Name)
	}
	return s, nil
}

// OnFrame analyzes one frame and appends each resulting scalar to its
// track. A degenerate frame (too few points, empty ROI, bad plane) is
// skipped entirely: the error is returned, every track's history is left
// unchanged, and no NaN or Inf ever enters a track.
func (s *Session) OnFrame(points []r3.Vector, plane *pc.Plane, roi image.Rectangle) error {
	metrics, err := s.analyzer.AnalyzeFrame(points, plane, roi)
	if err != nil {
		s.logger.Debugw("skipping frame", "reason", err, "points", len(points))
		return err
	}
	s.tracks[MetricAvgError].AddValue(metrics.AvgErrorMM)
	s.tracks[MetricStdError].AddValue(metrics.StdErrorMM)
	s.tracks[MetricSubpixelRMS].AddValue(metrics.SubpixelRMS)
	s.tracks[MetricFillRate].AddValue(metrics.FillRatePct)
	s.tracks[MetricDistance].AddValue(metrics.DistanceM)
	s.tracks[MetricAngle].AddValue(metrics.AngleDeg)
	return nil
}

// Track returns the track for the given metric name.
func (s *Session) Track(name string) (*Track, bool) {
	t, ok := s.tracks[name]
	return t, ok
}

// Tracks returns all tracks in readout order.
func (s *Session) Tracks() []*Track {
	out := make([]*Track, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.tracks[name])
	}
	return out
}
