package pointcloud

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestEmptyPlane(t *testing.T) {
	plane := NewEmptyPlane()
	test.That(t, plane.Equation(), test.ShouldResemble, [4]float64{})
	test.That(t, plane.Normal(), test.ShouldResemble, r3.Vector{})
	test.That(t, plane.Offset(), test.ShouldEqual, 0.0)
	pt := r3.Vector{X: 1, Y: 2, Z: 3}
	test.That(t, plane.Distance(pt), test.ShouldEqual, 0)
	test.That(t, plane.Project(pt), test.ShouldResemble, pt)
	test.That(t, plane.Normalized().Equation(), test.ShouldResemble, [4]float64{})
}

func TestNewPlane(t *testing.T) {
	// a plane of slope 1 in x and y through the origin
	eq := [4]float64{1, 1, -1, 0}
	plane := NewPlane(eq)
	test.That(t, plane.Equation(), test.ShouldResemble, eq)
	test.That(t, plane.Normal(), test.ShouldResemble, r3.Vector{X: 1, Y: 1, Z: -1})
	test.That(t, plane.Offset(), test.ShouldEqual, 0.0)

	pt := r3.Vector{X: -1, Y: -1, Z: 1}
	test.That(t, math.Abs(plane.Distance(pt)), test.ShouldAlmostEqual, math.Sqrt(3))

	// points on the plane have zero distance
	test.That(t, plane.Distance(r3.Vector{X: 2, Y: 2, Z: 4}), test.ShouldAlmostEqual, 0)
}

func TestNormalized(t *testing.T) {
	plane := NewPlane([4]float64{0, 0, 2, -10})
	normalized := plane.Normalized()
	test.That(t, normalized.Normal().Norm(), test.ShouldAlmostEqual, 1)
	test.That(t, normalized.Equation(), test.ShouldResemble, [4]float64{0, 0, 1, -5})
	// distances are unchanged by normalization
	pt := r3.Vector{X: 4, Y: 2, Z: 6}
	test.That(t, plane.Distance(pt), test.ShouldAlmostEqual, normalized.Distance(pt))
}

func TestProject(t *testing.T) {
	plane := NewPlane([4]float64{1, 1, -1, 0})
	pt := r3.Vector{X: 0, Y: 0, Z: 1}
	proj := plane.Project(pt)
	// the projection lies on the plane
	test.That(t, plane.Distance(proj), test.ShouldAlmostEqual, 0)
	test.That(t, proj.X, test.ShouldAlmostEqual, 1./3)
	test.That(t, proj.Y, test.ShouldAlmostEqual, 1./3)
	test.That(t, proj.Z, test.ShouldAlmostEqual, 2./3)
	// projecting an on-plane point is a no-op
	onPlane := r3.Vector{X: 1, Y: 1, Z: 2}
	proj = plane.Project(onPlane)
	test.That(t, proj.X, test.ShouldAlmostEqual, onPlane.X)
	test.That(t, proj.Y, test.ShouldAlmostEqual, onPlane.Y)
	test.That(t, proj.Z, test.ShouldAlmostEqual, onPlane.Z)
}

func TestIntersect(t *testing.T) {
	// plane at z = 0
	plane := NewPlane([4]float64{0, 0, 1, 0})
	// perpendicular line at x=4, y=9, should intersect at (4,9,0)
	p0, p1 := r3.Vector{X: 4, Y: 9, Z: 22}, r3.Vector{X: 4, Y: 9, Z: 12.3}
	result := plane.Intersect(p0, p1)
	test.That(t, result, test.ShouldNotBeNil)
	test.That(t, result.X, test.ShouldAlmostEqual, 4.0)
	test.That(t, result.Y, test.ShouldAlmostEqual, 9.0)
	test.That(t, result.Z, test.ShouldAlmostEqual, 0.0)
	// parallel line at z=4 should return nil
	p0, p1 = r3.Vector{X: 4, Y: 9, Z: 4}, r3.Vector{X: 22, Y: -3, Z: 4}
	test.That(t, plane.Intersect(p0, p1), test.ShouldBeNil)
	// tilted line with slope of 1 should intersect at (2, 9, 0)
	p0, p1 = r3.Vector{X: 4, Y: 9, Z: 2}, r3.Vector{X: 3, Y: 9, Z: 1}
	result = plane.Intersect(p0, p1)
	test.That(t, result, test.ShouldNotBeNil)
	test.That(t, result.X, test.ShouldAlmostEqual, 2.0)
	test.That(t, result.Y, test.ShouldAlmostEqual, 9.0)
	test.That(t, result.Z, test.ShouldAlmostEqual, 0.0)
	// if p1 is before p0, should still give the same result
	result = plane.Intersect(p1, p0)
	test.That(t, result, test.ShouldNotBeNil)
	test.That(t, result.X, test.ShouldAlmostEqual, 2.0)
	test.That(t, result.Y, test.ShouldAlmostEqual, 9.0)
	test.That(t, result.Z, test.ShouldAlmostEqual, 0.0)
}
