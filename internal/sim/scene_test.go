package sim

import (
	"math"
	"testing"
	"time"

	"github.com/bmharper/quadtree-go"
	"github.com/jakecoffman/cp/v2"
	"github.com/stretchr/testify/require"
)

func smallConfig() Config {
	c := DefaultConfig()
	c.WorldWidth = 400
	c.WorldHeight = 300
	c.NumberSprites = 300
	c.MaxQuadTreeDepth = 6
	c.QuadTreeSplitThreshold = 4
	c.Seed = 7
	return c
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"zero width", func(c *Config) { c.WorldWidth = 0 }},
		{"negative sprites", func(c *Config) { c.NumberSprites = -1 }},
		{"negative velocity", func(c *Config) { c.MaxSpriteVelocity = -5 }},
		{"zero min size", func(c *Config) { c.MinRectSize = 0 }},
		{"inverted sizes", func(c *Config) { c.MinRectSize = 20 }},
		{"zero threshold", func(c *Config) { c.QuadTreeSplitThreshold = 0 }},
		{"negative depth", func(c *Config) { c.MaxQuadTreeDepth = -1 }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := DefaultConfig()
			test.modify(&c)
			require.Error(t, c.Validate())

			_, err := NewScene(c)
			require.Error(t, err)
		})
	}
}

func TestNewSceneDeterministic(t *testing.T) {
	a, err := NewScene(smallConfig())
	require.NoError(t, err)
	b, err := NewScene(smallConfig())
	require.NoError(t, err)
	require.Equal(t, a.Sprites(), b.Sprites())

	c := smallConfig()
	box := quadtree.NewRect(0, 0, c.WorldWidth, c.WorldHeight).Box()
	for _, sp := range a.Sprites() {
		require.Equal(t, -1, sp.Handle)
		require.GreaterOrEqual(t, sp.Size, c.MinRectSize)
		require.LessOrEqual(t, sp.Size, c.MaxRectSize)
		require.GreaterOrEqual(t, sp.Position.X, float64(box.Left))
		require.LessOrEqual(t, sp.Position.X, float64(box.Right))
		require.GreaterOrEqual(t, sp.Position.Y, float64(box.Bottom))
		require.LessOrEqual(t, sp.Position.Y, float64(box.Top))
		requireVelocityClamped(t, sp, c.MaxSpriteVelocity)
	}
}

func TestBuild(t *testing.T) {
	s, err := NewScene(smallConfig())
	require.NoError(t, err)
	s.Build()
	requireIndexed(t, s)

	// A second build is a no-op.
	s.Build()
	require.Equal(t, len(s.Sprites()), s.Tree().Len())
}

func TestStep(t *testing.T) {
	for _, useTree := range []bool{true, false} {
		c := smallConfig()
		c.UseQuadTree = useTree
		s, err := NewScene(c)
		require.NoError(t, err)
		s.Build()

		box := s.World().Box()
		for i := 0; i < 30; i++ {
			fs := s.Step(time.Second / 30)
			require.Equal(t, i+1, fs.Frame)
			require.Equal(t, len(s.Sprites()), fs.Tree.Elements)
			require.GreaterOrEqual(t, fs.Collisions, 0)
		}
		require.Equal(t, 30, s.Frame())
		requireIndexed(t, s)

		for _, sp := range s.Sprites() {
			require.GreaterOrEqual(t, sp.Position.X, float64(box.Left)-1)
			require.LessOrEqual(t, sp.Position.X, float64(box.Right)+1)
			require.GreaterOrEqual(t, sp.Position.Y, float64(box.Bottom)-1)
			require.LessOrEqual(t, sp.Position.Y, float64(box.Top)+1)
			requireVelocityClamped(t, sp, c.MaxSpriteVelocity)
		}
	}
}

func TestCollisionModesAgree(t *testing.T) {
	c := smallConfig()
	c.NumberSprites = 600

	c.UseQuadTree = true
	quad, err := NewScene(c)
	require.NoError(t, err)
	quad.Build()

	c.UseQuadTree = false
	brute, err := NewScene(c)
	require.NoError(t, err)
	brute.Build()

	var total int
	for i := 0; i < 40; i++ {
		qs := quad.Step(time.Second / 30)
		bs := brute.Step(time.Second / 30)
		require.Equal(t, bs.Collisions, qs.Collisions, "frame %v", i+1)
		require.Equal(t, brute.Sprites(), quad.Sprites(), "frame %v", i+1)
		total += qs.Collisions
	}
	require.Greater(t, total, 0)
}

func TestTouchingSpritesDoNotCollide(t *testing.T) {
	for _, useTree := range []bool{true, false} {
		c := smallConfig()
		c.NumberSprites = 2
		c.MaxSpriteVelocity = 0
		c.UseQuadTree = useTree
		s, err := NewScene(c)
		require.NoError(t, err)

		// Boxes [8, 12] and [12, 16] share an edge. Their centers are closer
		// than the mean size.
		sprites := s.Sprites()
		sprites[0].Position = cp.Vector{X: 10, Y: 10}
		sprites[0].Size = 5
		sprites[1].Position = cp.Vector{X: 14, Y: 10}
		sprites[1].Size = 5
		s.Build()

		require.False(t, sprites[0].Intersects(&sprites[1]))
		require.Zero(t, s.Update(time.Second/60), "quadtree: %v", useTree)
		require.False(t, sprites[0].Colliding)
		require.False(t, sprites[1].Colliding)
	}
}

func TestCollidingSprites(t *testing.T) {
	for _, useTree := range []bool{true, false} {
		c := smallConfig()
		c.NumberSprites = 3
		c.MaxSpriteVelocity = 0
		c.UseQuadTree = useTree
		s, err := NewScene(c)
		require.NoError(t, err)

		sprites := s.Sprites()
		sprites[0].Position = cp.Vector{X: 10, Y: 10}
		sprites[0].Size = 10
		sprites[1].Position = cp.Vector{X: 14, Y: 10}
		sprites[1].Size = 10
		sprites[2].Position = cp.Vector{X: 100, Y: 100}
		sprites[2].Size = 10
		s.Build()

		require.Equal(t, 1, s.Update(time.Second/60))
		require.True(t, sprites[0].Colliding)
		require.True(t, sprites[1].Colliding)
		require.False(t, sprites[2].Colliding)
		require.Equal(t, 9.0, sprites[0].Position.X)
		require.Equal(t, 15.0, sprites[1].Position.X)

		// Flags are reset every frame.
		sprites[0].Position = cp.Vector{X: -100, Y: -100}
		s.Update(time.Second / 60)
		require.False(t, sprites[0].Colliding)
		require.False(t, sprites[1].Colliding)
	}
}

func TestSpriteBounce(t *testing.T) {
	bounds := quadtree.Box{Left: -10, Top: 10, Right: 10, Bottom: -10}
	sp := Sprite{Position: cp.Vector{X: 9, Y: -9}, Velocity: cp.Vector{X: 4, Y: -4}}
	sp.Update(bounds, 100, time.Second)
	require.Equal(t, cp.Vector{X: 10, Y: -10}, sp.Position)
	require.Equal(t, cp.Vector{X: -4, Y: 4}, sp.Velocity)

	sp.Update(bounds, 100, time.Second/2)
	require.Equal(t, cp.Vector{X: 8, Y: -8}, sp.Position)
}

func TestSpriteVelocityClamp(t *testing.T) {
	bounds := quadtree.Box{Left: -1000, Top: 1000, Right: 1000, Bottom: -1000}
	sp := Sprite{Velocity: cp.Vector{X: 500, Y: -500}}
	sp.Update(bounds, 100, time.Second)
	require.Equal(t, cp.Vector{X: 100, Y: -100}, sp.Velocity)
	require.Equal(t, cp.Vector{X: 100, Y: -100}, sp.Position)

	sp.Velocity = cp.Vector{X: -30, Y: 250}
	sp.Update(bounds, 100, time.Second)
	require.Equal(t, cp.Vector{X: -30, Y: 100}, sp.Velocity)
	require.Equal(t, cp.Vector{X: 70, Y: 0}, sp.Position)
}

func TestSpriteCollide(t *testing.T) {
	a := Sprite{Position: cp.Vector{X: 0, Y: 0}, Velocity: cp.Vector{X: 10, Y: 3}, Size: 10}
	b := Sprite{Position: cp.Vector{X: 4, Y: 0}, Velocity: cp.Vector{X: -10, Y: -2}, Size: 10}
	require.True(t, a.Intersects(&b))

	a.Collide(&b)
	require.InDelta(t, -10, a.Velocity.X, 1e-9)
	require.InDelta(t, 3, a.Velocity.Y, 1e-9)
	require.InDelta(t, 10, b.Velocity.X, 1e-9)
	require.InDelta(t, -2, b.Velocity.Y, 1e-9)
	require.InDelta(t, -1, a.Position.X, 1e-9)
	require.InDelta(t, 5, b.Position.X, 1e-9)

	far := Sprite{Position: cp.Vector{X: 20, Y: 0}, Size: 10}
	require.False(t, a.Intersects(&far))
}

func TestSpriteCollideSamePosition(t *testing.T) {
	a := Sprite{Position: cp.Vector{X: 5, Y: 5}, Velocity: cp.Vector{X: 1, Y: 1}, Size: 6}
	b := Sprite{Position: cp.Vector{X: 5, Y: 5}, Velocity: cp.Vector{X: -1, Y: 0}, Size: 6}
	a.Collide(&b)
	require.InDelta(t, -1, a.Velocity.X, 1e-9)
	require.InDelta(t, 1, a.Velocity.Y, 1e-9)
	require.InDelta(t, 1, b.Velocity.X, 1e-9)
	require.InDelta(t, 0, b.Velocity.Y, 1e-9)
	require.Equal(t, cp.Vector{X: 4, Y: 5}, a.Position)
	require.Equal(t, cp.Vector{X: 6, Y: 5}, b.Position)
}

func requireVelocityClamped(t *testing.T, sp Sprite, maxVelocity int) {
	t.Helper()
	require.LessOrEqual(t, math.Abs(sp.Velocity.X), float64(maxVelocity))
	require.LessOrEqual(t, math.Abs(sp.Velocity.Y), float64(maxVelocity))
}

func requireIndexed(t *testing.T, s *Scene) {
	t.Helper()
	tree := s.Tree()
	require.Equal(t, len(s.Sprites()), tree.Len())
	for _, sp := range s.Sprites() {
		require.NotEqual(t, -1, sp.Handle)
		require.Equal(t, sp.ID, tree.ElementID(sp.Handle))
		require.Equal(t, sp.Rect().Box(), tree.ElementBox(sp.Handle))
	}
}
