// Package segmentation implements the plane fitting used to reconstruct a
// flat target surface from a region of interest of a point cloud.
package segmentation

import (
	"math"
	"math/rand"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	pc "go.viam.com/depthquality/pointcloud"
	"go.viam.com/depthquality/utils"
)

// ErrTooFewPointsForPlane is returned when the input has fewer than the three
// points needed to define a plane.
var ErrTooFewPointsForPlane = errors.New("need at least 3 points to fit a plane")

// SegmentPlane fits the biggest plane in the given points with RANSAC.
// nIterations is the number of iterations for ransac.
// nIter to choose? nIter = log(1-p)/log(1-(1-e)^s), where p is prob of success, e is outlier ratio, s is subset size (3 for plane).
// threshold is the maximum allowed distance to the found plane for a point to belong to it.
// The returned plane has a unit normal oriented so that its offset encodes
// the negated distance from the origin, and the plane's inliers are returned
// alongside it.
func SegmentPlane(pts pc.Vectors, nIterations int, threshold float64) (*pc.Plane, pc.Vectors, error) {
	if len(pts) < 3 {
		return nil, nil, ErrTooFewPointsForPlane
	}
	r := rand.New(rand.NewSource(1))
	nPoints := len(pts)

	var bestEquation [4]float64
	bestInliers := 0

	for i := 0; i < nIterations; i++ {
		// sample 3 points from the slice of 3D points
		n1, n2, n3 := utils.SampleRandomIntRange(0, nPoints-1, r),
			utils.SampleRandomIntRange(0, nPoints-1, r),
			utils.SampleRandomIntRange(0, nPoints-1, r)
		p1, p2, p3 := pts[n1], pts[n2], pts[n3]

		// get 2 vectors that are going to define the plane
		v1 := p2.Sub(p1)
		v2 := p3.Sub(p1)
		// cross product to get the normal unit vector to the plane (v1, v2)
		cross := v1.Cross(v2)
		if cross.Norm() == 0 {
			// sampled points are collinear, no plane to test
			continue
		}
		vec := cross.Normalize()
		// find current plane equation denoted as:
		// vec.X*x + vec.Y*y + vec.Z*z + d = 0
		// to find d, pick a point and deduce d from the plane equation (vec orth to p1, p2, p3)
		d := -vec.Dot(p2)

		currentEquation := [4]float64{vec.X, vec.Y, vec.Z, d}
		currentPlane := pc.NewPlane(currentEquation)

		// store all the points that are below a certain distance to the plane
		currentInliers := 0
		for _, pt := range pts {
			if math.Abs(currentPlane.Distance(pt)) < threshold {
				currentInliers++
			}
		}
		// if the current plane contains more points than the previously stored one, save this one as the biggest plane
		if currentInliers > bestInliers {
			bestEquation = currentEquation
			bestInliers = currentInliers
		}
	}
	if bestInliers == 0 {
		return nil, nil, errors.New("no plane found within the distance threshold")
	}

	// orient the normal away from the sensor so the offset encodes the
	// negated origin-to-plane distance
	if bestEquation[3] > 0 {
		for i := range bestEquation {
			bestEquation[i] = -bestEquation[i]
		}
	}

	bestPlane := pc.NewPlane(bestEquation)
	inliers := make(pc.Vectors, 0, bestInliers)
	for _, pt := range pts {
		if math.Abs(bestPlane.Distance(pt)) < threshold {
			inliers = append(inliers, pt)
		}
	}
	return bestPlane, inliers, nil
}

// FitPlaneToInliers refines a RANSAC plane by recomputing the offset from the
// inlier centroid, keeping the sampled normal. Cheap refinement used before
// quality analysis so the distance readout does not depend on a single
// sampled point.
func FitPlaneToInliers(plane *pc.Plane, inliers pc.Vectors) *pc.Plane {
	if len(inliers) == 0 {
		return plane
	}
	centroid := r3.Vector{}
	for _, pt := range inliers {
		centroid = centroid.Add(pt)
	}
	centroid = centroid.Mul(1 / float64(len(inliers)))
	eq := plane.Normalized().Equation()
	normal := r3.Vector{X: eq[0], Y: eq[1], Z: eq[2]}
	eq[3] = -normal.Dot(centroid)
	return pc.NewPlane(eq)
}
