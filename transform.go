package motion

import "math"

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// IdentityTransform returns the identity affine matrix [a, b, c, d, tx, ty].
func IdentityTransform() [6]float64 {
	return identityTransform
}

// computeLocalTransform computes the local affine matrix from the node's
// transform properties. Returns [a, b, c, d, tx, ty].
//
// Composition order:
//
//	Translate(-PivotX, -PivotY) -> Scale -> Rotate -> Translate(X, Y)
func computeLocalTransform(n *Node) [6]float64 {
	return composeTransform(n.X, n.Y, n.ScaleX, n.ScaleY, n.Rotation, n.PivotX, n.PivotY)
}

// composeTransform builds the pivot/scale/rotate/translate matrix shared by
// nodes and shape groups.
func composeTransform(x, y, sx, sy, rotation, px, py float64) [6]float64 {
	sin, cos := math.Sincos(rotation)

	// After Scale * Translate(-pivot):
	//   a=sx, b=0, c=0, d=sy, tx=-px*sx, ty=-py*sy
	preTx := -px * sx
	preTy := -py * sy

	// After Rotate:
	ra := cos * sx
	rb := sin * sx
	rc := -sin * sy
	rd := cos * sy
	rtx := cos*preTx - sin*preTy
	rty := sin*preTx + cos*preTy

	// After Translate(X, Y):
	return [6]float64{ra, rb, rc, rd, rtx + x, rty + y}
}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// MultiplyAffine returns parent * child.
func MultiplyAffine(parent, child [6]float64) [6]float64 {
	return multiplyAffine(parent, child)
}

// invertAffine computes the inverse of a 2D affine matrix.
// Returns the identity matrix if the matrix is singular (determinant ≈ 0).
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityTransform
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// transformVector applies the linear part of an affine matrix to a vector.
func transformVector(m [6]float64, v Vec2) Vec2 {
	return Vec2{m[0]*v.X + m[2]*v.Y, m[1]*v.X + m[3]*v.Y}
}

// UpdateWorld recomputes world transforms and alphas for n's subtree in
// pre-order, so parents are resolved before their children. parentTransform
// and parentAlpha describe the space n lives in.
//
// A clip's matte node is resolved in the space of Clip.Space, which is an
// ancestor of n and therefore already up to date when n is visited, followed
// by the local transforms of Clip.Parents. Parents contribute no alpha.
func UpdateWorld(n *Node, parentTransform [6]float64, parentAlpha float64) {
	updateWorldTransform(n, parentTransform, parentAlpha, parentAlpha)
}

func updateWorldTransform(n *Node, parentTransform [6]float64, parentAlpha, parentBase float64) {
	local := computeLocalTransform(n)
	n.worldTransform = multiplyAffine(parentTransform, local)
	if n.InheritAlpha {
		n.worldAlpha = parentAlpha * n.Alpha
	} else {
		n.worldAlpha = parentBase * n.Alpha
	}
	n.baseAlpha = parentBase
	if n.alphaScope {
		n.baseAlpha = n.worldAlpha
	}

	if n.Clip != nil && n.Clip.Matte != nil {
		space, alpha := parentTransform, parentBase
		if sp := n.Clip.Space; sp != nil {
			space, alpha = sp.worldTransform, sp.worldAlpha
		}
		for _, p := range n.Clip.Parents {
			space = multiplyAffine(space, computeLocalTransform(p))
		}
		updateWorldTransform(n.Clip.Matte, space, alpha, alpha)
	}

	for _, child := range n.children {
		updateWorldTransform(child, n.worldTransform, n.worldAlpha, n.baseAlpha)
	}
}

// WorldTransform returns the node's resolved affine matrix from the last
// UpdateWorld.
func (n *Node) WorldTransform() [6]float64 {
	return n.worldTransform
}

// WorldAlpha returns the node's resolved alpha from the last UpdateWorld.
func (n *Node) WorldAlpha() float64 {
	return n.worldAlpha
}

// --- Transform property setters ---

// SetPosition sets the node's local X and Y.
func (n *Node) SetPosition(x, y float64) {
	n.X = x
	n.Y = y
}

// SetScale sets the node's ScaleX and ScaleY.
func (n *Node) SetScale(sx, sy float64) {
	n.ScaleX = sx
	n.ScaleY = sy
}

// SetPivot sets the node's PivotX and PivotY.
func (n *Node) SetPivot(px, py float64) {
	n.PivotX = px
	n.PivotY = py
}

// --- Coordinate conversion ---

// WorldToLocal converts a world-space point to this node's local coordinate space.
func (n *Node) WorldToLocal(wx, wy float64) (lx, ly float64) {
	inv := invertAffine(n.worldTransform)
	return transformPoint(inv, wx, wy)
}

// LocalToWorld converts a local-space point to world-space.
func (n *Node) LocalToWorld(lx, ly float64) (wx, wy float64) {
	return transformPoint(n.worldTransform, lx, ly)
}
