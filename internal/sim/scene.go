// Package sim is a headless sprite simulation that drives a quadtree every
// frame: broad phase collision detection, reindexing of moved sprites and
// cleanup of empty branches.
package sim

import (
	"cmp"
	"math/rand"
	"slices"
	"time"

	"github.com/bmharper/quadtree-go"
	"github.com/bmharper/quadtree-go/internal/metrics"
	"github.com/jakecoffman/cp/v2"
)

// Scene is a world of sprites indexed by a quadtree.
type Scene struct {
	config  Config
	world   quadtree.Rect
	tree    *quadtree.Quadtree
	sprites []Sprite
	pairs   []quadtree.Pair
	frame   int
}

// FrameStats describes a simulated frame.
type FrameStats struct {
	Frame      int            `json:"frame"`
	Collisions int            `json:"collisions"`
	Duration   time.Duration  `json:"duration"`
	Tree       quadtree.Stats `json:"tree"`
}

// NewScene creates a scene with randomly placed sprites. Sprites are not
// inserted into the tree until Build is called.
func NewScene(c Config) (*Scene, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	world := quadtree.NewRect(0, 0, c.WorldWidth, c.WorldHeight)
	s := &Scene{
		config:  c,
		world:   world,
		tree:    quadtree.New(world, c.QuadTreeSplitThreshold, c.MaxQuadTreeDepth),
		sprites: make([]Sprite, c.NumberSprites),
	}

	rng := rand.New(rand.NewSource(c.Seed))
	b := world.Box()
	for i := range s.sprites {
		s.sprites[i] = Sprite{
			ID:     i,
			Handle: -1,
			Position: cp.Vector{
				X: float64(b.Left + rng.Intn(b.Right-b.Left+1)),
				Y: float64(b.Bottom + rng.Intn(b.Top-b.Bottom+1)),
			},
			Velocity: cp.Vector{
				X: randomVelocity(rng, c.MaxSpriteVelocity),
				Y: randomVelocity(rng, c.MaxSpriteVelocity),
			},
			Size: c.MinRectSize + rng.Intn(c.MaxRectSize-c.MinRectSize+1),
		}
	}
	return s, nil
}

func randomVelocity(rng *rand.Rand, maxVelocity int) float64 {
	if maxVelocity == 0 {
		return 0
	}
	return float64(rng.Intn(2*maxVelocity+1) - maxVelocity)
}

func (s *Scene) Config() Config {
	return s.config
}

func (s *Scene) World() quadtree.Rect {
	return s.world
}

func (s *Scene) Tree() *quadtree.Quadtree {
	return s.tree
}

func (s *Scene) Sprites() []Sprite {
	return s.sprites
}

func (s *Scene) Frame() int {
	return s.frame
}

// Build inserts every sprite that is not in the tree yet.
func (s *Scene) Build() {
	for i := range s.sprites {
		sp := &s.sprites[i]
		if sp.Handle != -1 {
			continue
		}
		start := time.Now()
		sp.Handle = s.tree.Insert(sp.ID, sp.Rect())
		metrics.InstrumentOp(metrics.OpInsert, start)
	}
}

// Update advances the scene by dt and returns the number of colliding pairs
// that were resolved.
func (s *Scene) Update(dt time.Duration) int {
	for i := range s.sprites {
		s.sprites[i].Colliding = false
	}

	var collisions int
	if s.config.UseQuadTree {
		collisions = s.quadCollision()
	} else {
		collisions = s.bruteCollision()
	}

	start := time.Now()
	bounds := s.world.Box()
	maxVelocity := float64(s.config.MaxSpriteVelocity)
	for i := range s.sprites {
		s.sprites[i].Update(bounds, maxVelocity, dt)
	}
	metrics.InstrumentPhysics(start)

	for i := range s.sprites {
		sp := &s.sprites[i]
		if sp.Handle != -1 {
			start := time.Now()
			s.tree.Remove(sp.Handle)
			metrics.InstrumentOp(metrics.OpRemove, start)
		}

		start := time.Now()
		sp.Handle = s.tree.Insert(sp.ID, sp.Rect())
		metrics.InstrumentOp(metrics.OpInsert, start)
	}
	return collisions
}

// Clean collapses branches left empty by the last update.
func (s *Scene) Clean() {
	start := time.Now()
	s.tree.Clean()
	metrics.InstrumentOp(metrics.OpClean, start)
}

// Step runs a whole frame: update, clean and instrumentation.
func (s *Scene) Step(dt time.Duration) FrameStats {
	start := time.Now()
	collisions := s.Update(dt)
	s.Clean()
	s.frame++

	mode := metrics.ModeBrute
	if s.config.UseQuadTree {
		mode = metrics.ModeQuadtree
	}
	metrics.InstrumentFrame(mode, start)
	metrics.InstrumentCollisions(mode, collisions)

	stats := s.tree.Stats()
	metrics.InstrumentTree(stats)

	return FrameStats{
		Frame:      s.frame,
		Collisions: collisions,
		Duration:   time.Since(start),
		Tree:       stats,
	}
}

// quadCollision and bruteCollision both find every colliding pair before
// resolving any of them, then resolve in ascending (A, B) order. Given the same
// sprites both modes therefore produce the same frame.
func (s *Scene) quadCollision() int {
	start := time.Now()
	candidates := s.tree.CollidingPairs(s.pairs)
	metrics.InstrumentOp(metrics.OpCollision, start)

	s.pairs = candidates[:0]
	for _, p := range candidates {
		if !s.sprites[p.A].Intersects(&s.sprites[p.B]) {
			continue
		}
		if p.A > p.B {
			p.A, p.B = p.B, p.A
		}
		s.pairs = append(s.pairs, p)
	}

	slices.SortFunc(s.pairs, func(a, b quadtree.Pair) int {
		if a.A != b.A {
			return cmp.Compare(a.A, b.A)
		}
		return cmp.Compare(a.B, b.B)
	})
	return s.resolveAll()
}

func (s *Scene) bruteCollision() int {
	s.pairs = s.pairs[:0]
	for i := range s.sprites {
		for j := i + 1; j < len(s.sprites); j++ {
			if s.sprites[i].Intersects(&s.sprites[j]) {
				s.pairs = append(s.pairs, quadtree.Pair{A: i, B: j})
			}
		}
	}
	return s.resolveAll()
}

func (s *Scene) resolveAll() int {
	for _, p := range s.pairs {
		a := &s.sprites[p.A]
		b := &s.sprites[p.B]
		a.Collide(b)
		a.Colliding = true
		b.Colliding = true
	}
	return len(s.pairs)
}
