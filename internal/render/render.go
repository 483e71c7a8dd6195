// Package render draws a quadtree and the sprites it indexes.
package render

import (
	"image"
	"image/color"
	"io"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/bmharper/quadtree-go"
	"github.com/bmharper/quadtree-go/internal/sim"
	"github.com/fogleman/gg"
)

var (
	background = color.RGBA{12, 12, 28, 255}
	spriteIdle = color.RGBA{80, 200, 120, 255}
	spriteHit  = color.RGBA{230, 40, 40, 255}
)

// Render draws the leaves of the tree as outlines and sprites as filled
// squares, scaled to a width x height image. Deeper leaves are fainter.
func Render(tree *quadtree.Quadtree, sprites []sim.Sprite, width, height int) image.Image {
	dc := gg.NewContext(width, height)
	dc.SetColor(background)
	dc.DrawRectangle(0, 0, float64(width), float64(height))
	dc.Fill()

	v := newViewport(tree.Bounds(), width, height)

	dc.SetLineWidth(1)
	maxDepth := tree.MaxDepth()
	tree.Traverse(nil, func(_ int, r quadtree.Region, depth int) {
		dc.SetColor(color.RGBA{255, 255, 255, leafAlpha(depth, maxDepth)})
		x, y, w, h := v.box(r.Box())
		dc.DrawRectangle(x, y, w, h)
		dc.Stroke()
	})

	for i := range sprites {
		sp := &sprites[i]
		if sp.Colliding {
			dc.SetColor(spriteHit)
		} else {
			dc.SetColor(spriteIdle)
		}
		x, y, w, h := v.box(sp.Rect().Box())
		dc.DrawRectangle(x, y, w, h)
		dc.Fill()
	}

	return dc.Image()
}

func leafAlpha(depth, maxDepth int) uint8 {
	step := 64
	if maxDepth > 0 {
		step = 64 / maxDepth
	}
	a := 12 + (64 - depth*step)
	if a < 12 {
		a = 12
	}
	return uint8(a)
}

// EncodePNG writes img to w.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := gg.EncodePNG(w, img); err != nil {
		return errors.New("encoding png failed").Wrap(err)
	}
	return nil
}

// viewport maps world coordinates, y up, onto image pixels, y down.
type viewport struct {
	left   float64
	top    float64
	scaleX float64
	scaleY float64
}

func newViewport(world quadtree.Rect, width, height int) viewport {
	b := world.Box()
	return viewport{
		left:   float64(b.Left),
		top:    float64(b.Top),
		scaleX: float64(width) / float64(b.Right-b.Left),
		scaleY: float64(height) / float64(b.Top-b.Bottom),
	}
}

func (v viewport) box(b quadtree.Box) (x, y, w, h float64) {
	x = (float64(b.Left) - v.left) * v.scaleX
	y = (v.top - float64(b.Top)) * v.scaleY
	w = float64(b.Right-b.Left) * v.scaleX
	h = float64(b.Top-b.Bottom) * v.scaleY
	return x, y, w, h
}
