package depthquality

// Names of the standard depth quality metrics.
const (
	MetricAvgError    = "Average Error"
	MetricStdError    = "STD (Error)"
	MetricSubpixelRMS = "Subpixel RMS"
	MetricFillRate    = "Fill-Rate"
	MetricDistance    = "Distance"
	MetricAngle       = "Angle"
)

// StandardMetrics returns the six canonical metric definitions with their
// display bounds, unit labels and classification ranges, in readout order.
func StandardMetrics() []MetricSpec {
	return []MetricSpec{
		{
			Name: MetricAvgError,
			Min:  0, Max: 10,
			Unit: "(mm)",
			Description: "Average Distance from Plane Fit\n" +
				"Approximates a plane within the ROI and calculates\n" +
				"the average distance of points in the ROI\n" +
				"from that plane, in mm",
			Ranges: Ranges{
				Good: Interval{0, 1},
				Warn: Interval{1, 7},
				Bad:  Interval{7, 1000},
			},
		},
		{
			Name: MetricStdError,
			Min:  0, Max: 10,
			Unit: "(mm)",
			Description: "Standard Deviation from Plane Fit\n" +
				"Approximates a plane within the ROI and calculates\n" +
				"the standard deviation of distances\n" +
				"of points in the ROI from that plane",
			Ranges: Ranges{
				Good: Interval{0, 1},
				Warn: Interval{1, 7},
				Bad:  Interval{7, 1000},
			},
		},
		{
			Name: MetricSubpixelRMS,
			Min:  0, Max: 1,
			Unit: "(mm)",
			Description: "Normalized RMS from the Plane Fit.\n" +
				"Provides the subpixel accuracy of the sensor:\n" +
				"each point's range and its projection's range are\n" +
				"converted to disparity with D = BL*FL/Z, and the\n" +
				"RMS of the per-point disparity differences is taken",
			Ranges: Ranges{
				Good: Interval{0, 0.1},
				Warn: Interval{0.1, 0.5},
				Bad:  Interval{0.5, 1},
			},
		},
		{
			Name: MetricFillRate,
			Min:  0, Max: 100,
			Unit: "%",
			Description: "Fill Rate\n" +
				"Percentage of pixels with valid depth values\n" +
				"out of all pixels within the ROI",
			Ranges: Ranges{
				Good: Interval{90, 100},
				Warn: Interval{50, 90},
				Bad:  Interval{0, 50},
			},
		},
		{
			Name: MetricDistance,
			Min:  0, Max: 5,
			Unit: "(m)",
			Description: "Approximate Distance\n" +
				"When facing a flat wall at right angle\n" +
				"this metric estimates the distance\n" +
				"in meters to that wall",
			Ranges: Ranges{
				Good: Interval{0, 2},
				Warn: Interval{2, 3},
				Bad:  Interval{3, 7},
			},
		},
		{
			Name: MetricAngle,
			Min:  0, Max: 180,
			Unit: "(deg)",
			Description: "Wall Angle\n" +
				"When facing a flat wall this metric\n" +
				"estimates the angle to the wall.",
			Ranges: Ranges{
				Good: Interval{-5, 5},
				Warn: Interval{-10, 10},
				Bad:  Interval{-100, 100},
			},
		},
	}
}
