package sim

import (
	"time"

	"github.com/bmharper/quadtree-go"
	"github.com/jakecoffman/cp/v2"
)

// Sprite is a moving square.
type Sprite struct {
	ID        int
	Handle    int // element index in the scene's tree, -1 when not inserted
	Position  cp.Vector
	Velocity  cp.Vector
	Size      int
	Colliding bool
}

// Rect returns the sprite's bounding rectangle on the integer grid.
func (s *Sprite) Rect() quadtree.Rect {
	return quadtree.NewRect(int(s.Position.X), int(s.Position.Y), s.Size, s.Size)
}

// Update clamps each velocity component to maxVelocity, integrates it over dt
// and bounces off the world's walls.
func (s *Sprite) Update(bounds quadtree.Box, maxVelocity float64, dt time.Duration) {
	s.Velocity.X = cp.Clamp(s.Velocity.X, -maxVelocity, maxVelocity)
	s.Velocity.Y = cp.Clamp(s.Velocity.Y, -maxVelocity, maxVelocity)
	s.Position = s.Position.Add(s.Velocity.Mult(dt.Seconds()))

	if s.Position.X < float64(bounds.Left) {
		s.Position.X = float64(bounds.Left)
		s.Velocity.X = -s.Velocity.X
	} else if s.Position.X > float64(bounds.Right) {
		s.Position.X = float64(bounds.Right)
		s.Velocity.X = -s.Velocity.X
	}

	if s.Position.Y < float64(bounds.Bottom) {
		s.Position.Y = float64(bounds.Bottom)
		s.Velocity.Y = -s.Velocity.Y
	} else if s.Position.Y > float64(bounds.Top) {
		s.Position.Y = float64(bounds.Top)
		s.Velocity.Y = -s.Velocity.Y
	}
}

// Intersects is the narrow phase test. It uses the same boxes the tree
// indexes, so the quadtree and brute force find the same pairs.
func (s *Sprite) Intersects(other *Sprite) bool {
	return s.Rect().Box().Intersects(other.Rect().Box())
}

// Collide exchanges the velocity components along the line between the two
// centers and pushes the sprites one unit apart. Sprites sharing a center
// are separated along the x axis.
func (s *Sprite) Collide(other *Sprite) {
	dir := cp.Vector{X: 1}
	if delta := other.Position.Sub(s.Position); delta.LengthSq() > 0 {
		dir = delta.Normalize()
	}
	normal := dir.Perp()

	alongA := dir.Mult(s.Velocity.Dot(dir))
	alongB := dir.Mult(other.Velocity.Dot(dir))
	normalA := normal.Mult(s.Velocity.Dot(normal))
	normalB := normal.Mult(other.Velocity.Dot(normal))

	s.Velocity = normalA.Add(alongB)
	other.Velocity = normalB.Add(alongA)
	s.Position = s.Position.Sub(dir)
	other.Position = other.Position.Add(dir)
}
