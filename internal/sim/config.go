package sim

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
)

// Config describes a simulated world.
type Config struct {
	WorldWidth             int
	WorldHeight            int
	NumberSprites          int
	MaxSpriteVelocity      int
	MinRectSize            int
	MaxRectSize            int
	MaxQuadTreeDepth       int
	QuadTreeSplitThreshold int
	UseQuadTree            bool
	Seed                   int64
}

func DefaultConfig() Config {
	return Config{
		WorldWidth:             2000,
		WorldHeight:            2000,
		NumberSprites:          10000,
		MaxSpriteVelocity:      120,
		MinRectSize:            5,
		MaxRectSize:            10,
		MaxQuadTreeDepth:       8,
		QuadTreeSplitThreshold: 8,
		UseQuadTree:            true,
	}
}

// Validate checks that a scene can be built from the configuration.
func (c Config) Validate() error {
	if c.WorldWidth <= 0 || c.WorldHeight <= 0 {
		return errors.New("world size must be positive").
			WithTag("width", c.WorldWidth).
			WithTag("height", c.WorldHeight)
	}

	if c.NumberSprites < 0 {
		return errors.New("number of sprites can't be negative").
			WithTag("sprites", c.NumberSprites)
	}

	if c.MaxSpriteVelocity < 0 {
		return errors.New("max sprite velocity can't be negative").
			WithTag("max_velocity", c.MaxSpriteVelocity)
	}

	if c.MinRectSize <= 0 || c.MinRectSize > c.MaxRectSize {
		return errors.New("invalid sprite size range").
			WithTag("min_size", c.MinRectSize).
			WithTag("max_size", c.MaxRectSize)
	}

	if c.QuadTreeSplitThreshold < 1 {
		return errors.New("split threshold must be at least 1").
			WithTag("split_threshold", c.QuadTreeSplitThreshold)
	}

	if c.MaxQuadTreeDepth < 0 {
		return errors.New("max depth can't be negative").
			WithTag("max_depth", c.MaxQuadTreeDepth)
	}

	return nil
}
