package pointcloud

import (
	"math"

	"github.com/golang/geo/r3"
)

// Plane is an infinite plane in 3D space, described by the equation
// eq[0]x + eq[1]y + eq[2]z + eq[3] = 0.
type Plane struct {
	equation [4]float64
}

// NewEmptyPlane initializes an empty plane object.
func NewEmptyPlane() *Plane {
	return &Plane{[4]float64{}}
}

// NewPlane creates a plane from the given equation.
func NewPlane(equation [4]float64) *Plane {
	return &Plane{equation}
}

// Equation returns the plane equation [0]x + [1]y + [2]z + [3] = 0.
func (p *Plane) Equation() [4]float64 {
	return p.equation
}

// Normal returns the normal vector of the plane.
func (p *Plane) Normal() r3.Vector {
	return r3.Vector{X: p.equation[0], Y: p.equation[1], Z: p.equation[2]}
}

// Offset returns the d term of the plane equation.
func (p *Plane) Offset() float64 {
	return p.equation[3]
}

// Normalized returns the same plane with its normal scaled to unit length
// and the offset adjusted to match. An empty plane is returned unchanged.
func (p *Plane) Normalized() *Plane {
	norm := p.Normal().Norm()
	if norm == 0 {
		return p
	}
	return &Plane{[4]float64{
		p.equation[0] / norm,
		p.equation[1] / norm,
		p.equation[2] / norm,
		p.equation[3] / norm,
	}}
}

// Distance calculates the signed distance from the plane to the input point.
func (p *Plane) Distance(pt r3.Vector) float64 {
	norm := p.Normal().Norm()
	if norm == 0 {
		return 0
	}
	return (p.equation[0]*pt.X + p.equation[1]*pt.Y + p.equation[2]*pt.Z + p.equation[3]) / norm
}

// Project returns the orthogonal projection of the input point onto the plane.
func (p *Plane) Project(pt r3.Vector) r3.Vector {
	norm := p.Normal().Norm()
	if norm == 0 {
		return pt
	}
	dist := p.Distance(pt)
	return pt.Sub(p.Normal().Mul(dist / norm))
}

// Intersect calculates the intersection point of the line defined by the
// two given points with the plane, or nil if the line is parallel to it.
func (p *Plane) Intersect(p0, p1 r3.Vector) *r3.Vector {
	line := p1.Sub(p0)
	parallel := p.Normal().Dot(line)
	if math.Abs(parallel) < 1e-10 {
		return nil
	}
	w := p0.Sub(p.Normal().Mul(-p.equation[3] / p.Normal().Norm2()))
	fraction := -p.Normal().Dot(w) / parallel
	result := p0.Add(line.Mul(fraction))
	return &result
}
