package csg

import (
	"iter"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// node is one level of a BSP tree. polygons all lie in plane; front and back
// partition the half-spaces on either side. A nil plane marks an empty tree.
// Trees are owned by a single boolean operation and thrown away afterwards.
type node struct {
	plane    *Plane
	polygons []Polygon
	front    *node
	back     *node
}

// newTree builds a BSP tree from polygons.
func newTree(polygons []Polygon, r *Report) *node {
	n := &node{}
	n.build(polygons, r)
	return n
}

// build inserts polygons into the tree. The first polygon's plane becomes the
// splitter of a fresh node; polygons coplanar with a node stay on it.
func (n *node) build(polygons []Polygon, r *Report) {
	if len(polygons) == 0 {
		return
	}
	if n.plane == nil {
		pl := polygons[0].Plane
		n.plane = &pl
	}
	var front, back []Polygon
	for _, p := range polygons {
		n.plane.split(p, &n.polygons, &n.polygons, &front, &back, r)
	}
	if len(front) > 0 {
		if n.front == nil {
			n.front = &node{}
		}
		n.front.build(front, r)
	}
	if len(back) > 0 {
		if n.back == nil {
			n.back = &node{}
		}
		n.back.build(back, r)
	}
}

// invert turns solid space into empty space and back.
func (n *node) invert() {
	for i, p := range n.polygons {
		n.polygons[i] = p.Flip()
	}
	if n.plane != nil {
		flipped := n.plane.Flip()
		n.plane = &flipped
	}
	if n.front != nil {
		n.front.invert()
	}
	if n.back != nil {
		n.back.invert()
	}
	n.front, n.back = n.back, n.front
}

// clipPolygons removes the parts of polygons that lie inside this tree.
func (n *node) clipPolygons(polygons []Polygon, r *Report) []Polygon {
	if n.plane == nil {
		out := make([]Polygon, len(polygons))
		copy(out, polygons)
		return out
	}
	var front, back []Polygon
	for _, p := range polygons {
		n.plane.split(p, &front, &back, &front, &back, r)
	}
	if n.front != nil {
		front = n.front.clipPolygons(front, r)
	}
	if n.back != nil {
		back = n.back.clipPolygons(back, r)
	} else {
		back = nil
	}
	return append(front, back...)
}

// clipTo removes every polygon of this tree that lies inside other.
func (n *node) clipTo(other *node, r *Report) {
	n.polygons = other.clipPolygons(n.polygons, r)
	if n.front != nil {
		n.front.clipTo(other, r)
	}
	if n.back != nil {
		n.back.clipTo(other, r)
	}
}

// allPolygons yields every polygon stored in the tree: the node's own list,
// then the front subtree, then the back subtree. The sequence can be ranged
// over any number of times.
func (n *node) allPolygons() iter.Seq[Polygon] {
	return func(yield func(Polygon) bool) {
		n.walk(yield)
	}
}

func (n *node) walk(yield func(Polygon) bool) bool {
	for _, p := range n.polygons {
		if !yield(p) {
			return false
		}
	}
	if n.front != nil && !n.front.walk(yield) {
		return false
	}
	if n.back != nil && !n.back.walk(yield) {
		return false
	}
	return true
}

// contains reports whether pos lies strictly inside the solid the tree
// bounds. Points on a splitting plane are treated as being in front of it.
func (n *node) contains(pos v3.Vec) bool {
	if n.plane == nil {
		return false
	}
	if n.plane.Distance(pos) >= 0 {
		if n.front == nil {
			return false
		}
		return n.front.contains(pos)
	}
	if n.back == nil {
		return true
	}
	return n.back.contains(pos)
}
