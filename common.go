package quadtree

// Rect is a rectangle given by its center and its full width and height.
// Origin is the center of the world, x+ is right and y+ is up.
type Rect struct {
	X int
	Y int
	W int
	H int
}

// NewRect creates a Rect centered on (x, y).
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Box returns the left/top/right/bottom form of the rectangle.
// Halving is an arithmetic shift, so odd sizes round toward negative infinity.
func (r Rect) Box() Box {
	w2 := r.W >> 1
	h2 := r.H >> 1
	return Box{
		Left:   r.X - w2,
		Top:    r.Y + h2,
		Right:  r.X + w2,
		Bottom: r.Y - h2,
	}
}

// Box is an axis aligned rectangle in world space. Top > Bottom.
type Box struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// Intersects is the exact overlap test used by queries. Touching edges do not overlap.
func (a Box) Intersects(b Box) bool {
	return a.Left < b.Right &&
		a.Right > b.Left &&
		a.Top > b.Bottom &&
		a.Bottom < b.Top
}

// Region is the implicit extent of a quad node: a center and half extents.
// It is never stored per node, only computed while descending.
type Region struct {
	MidX  int
	MidY  int
	HalfW int
	HalfH int
}

// Box returns the region as a left/top/right/bottom rectangle.
func (r Region) Box() Box {
	return Box{
		Left:   r.MidX - r.HalfW,
		Top:    r.MidY + r.HalfH,
		Right:  r.MidX + r.HalfW,
		Bottom: r.MidY - r.HalfH,
	}
}

// Child returns the sub-region of quadrant q (TopLeft, TopRight, BottomLeft, BottomRight).
func (r Region) Child(q int) Region {
	w4 := r.HalfW >> 1
	h4 := r.HalfH >> 1
	c := Region{HalfW: w4, HalfH: h4}
	if q == TopLeft || q == BottomLeft {
		c.MidX = r.MidX - w4
	} else {
		c.MidX = r.MidX + w4
	}
	if q == TopLeft || q == TopRight {
		c.MidY = r.MidY + h4
	} else {
		c.MidY = r.MidY - h4
	}
	return c
}

// Child order of a branch. The first child index of a branch plus the quadrant
// gives the node index of that child.
const (
	TopLeft = iota
	TopRight
	BottomLeft
	BottomRight
)
