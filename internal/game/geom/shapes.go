package geom

import (
	"math"

	"github.com/solarlune/resolv"
)

// Circle is a circle at Center with the given Radius.
type Circle struct {
	Center Vec
	Radius float64
}

// Box is an oriented rectangle: Center, half extents, and a rotation in
// radians. Rotation 0 means axis-aligned.
type Box struct {
	Center   Vec
	HalfW    float64
	HalfH    float64
	Rotation float64
}

// Segment is a line segment from A to B.
type Segment struct {
	A Vec
	B Vec
}

// The overlap tests below delegate boundary intersection to resolv shapes.
// resolv reports contacts where two outlines cross, so a shape swallowed
// whole by another produces no contact; every test here pairs the resolv
// check with a containment check for that case. Overlap means shared area.

func (c Circle) shape() *resolv.Circle {
	return resolv.NewCircle(c.Center.X, c.Center.Y, c.Radius)
}

// corners returns the box's world-space corners in winding order.
func (b Box) corners() [4]Vec {
	local := [4]Vec{
		{-b.HalfW, -b.HalfH},
		{b.HalfW, -b.HalfH},
		{b.HalfW, b.HalfH},
		{-b.HalfW, b.HalfH},
	}
	var out [4]Vec
	for i, p := range local {
		out[i] = b.Center.Add(p.Rotate(b.Rotation))
	}
	return out
}

func (b Box) shape() *resolv.ConvexPolygon {
	c := b.corners()
	return resolv.NewConvexPolygon(
		c[0].X, c[0].Y,
		c[1].X, c[1].Y,
		c[2].X, c[2].Y,
		c[3].X, c[3].Y,
	)
}

// contains reports whether p lies inside the box. The point is transformed
// into the box's local frame, where the box is axis-aligned.
func (b Box) contains(p Vec) bool {
	local := p.Sub(b.Center).Rotate(-b.Rotation)
	return math.Abs(local.X) <= b.HalfW && math.Abs(local.Y) <= b.HalfH
}

func (s Segment) line() *resolv.ConvexPolygon {
	return resolv.NewLine(s.A.X, s.A.Y, s.B.X, s.B.Y)
}

// body returns the capsule's rectangular middle as an oriented box.
//
// Precondition: s.A != s.B and thickness > 0.
func (s Segment) body(thickness float64) Box {
	d := s.B.Sub(s.A)
	return Box{
		Center:   s.A.Add(d.Scale(0.5)),
		HalfW:    d.Len() / 2,
		HalfH:    thickness,
		Rotation: math.Atan2(d.Y, d.X),
	}
}

// CirclesOverlap reports whether a and b overlap. Touching counts as overlap.
func CirclesOverlap(a, b Circle) bool {
	if a.Center.Dist(b.Center) <= math.Abs(a.Radius-b.Radius) {
		// One circle inside the other; the outlines never cross.
		return true
	}
	return a.shape().Intersection(0, 0, b.shape()) != nil
}

// CircleBoxOverlap reports whether c overlaps the oriented box b.
func CircleBoxOverlap(c Circle, b Box) bool {
	if b.contains(c.Center) {
		return true
	}
	if c.shape().Intersection(0, 0, b.shape()) != nil {
		return true
	}
	// Box fully inside the circle: with no outline crossing and the circle
	// center outside the box, one corner decides it.
	return b.corners()[0].Dist(c.Center) <= c.Radius
}

// SegmentCircleOverlap reports whether a segment thickened by half-width
// thickness (a capsule) overlaps c.
//
// Precondition: thickness >= 0.
func SegmentCircleOverlap(s Segment, thickness float64, c Circle) bool {
	if CirclesOverlap(Circle{Center: s.A, Radius: thickness}, c) ||
		CirclesOverlap(Circle{Center: s.B, Radius: thickness}, c) {
		return true
	}
	if s.A == s.B {
		// The capsule degenerates to the endpoint circles checked above.
		return false
	}
	if thickness <= 0 {
		return c.shape().Intersection(0, 0, s.line()) != nil
	}
	return CircleBoxOverlap(c, s.body(thickness))
}

// SegmentBoxOverlap reports whether a segment thickened by half-width
// thickness overlaps the oriented box b.
//
// Precondition: thickness >= 0.
func SegmentBoxOverlap(s Segment, thickness float64, b Box) bool {
	if CircleBoxOverlap(Circle{Center: s.A, Radius: thickness}, b) ||
		CircleBoxOverlap(Circle{Center: s.B, Radius: thickness}, b) {
		return true
	}
	if s.A == s.B {
		return false
	}
	if thickness <= 0 {
		return b.shape().Intersection(0, 0, s.line()) != nil
	}
	return boxesOverlap(s.body(thickness), b)
}

// boxesOverlap reports whether two oriented boxes overlap.
func boxesOverlap(a, b Box) bool {
	// Convex shapes that overlap without either center inside the other
	// always have crossing outlines, so the two checks together are complete.
	if a.contains(b.Center) || b.contains(a.Center) {
		return true
	}
	return a.shape().Intersection(0, 0, b.shape()) != nil
}
