package viz

import (
	"github.com/san-kum/vmc/internal/vmc"
)

// Walkers draws each particle as a 2×2 dot, projected onto the xy plane.
// One-dimensional systems are drawn along the x axis.
func Walkers(c *Canvas, particles []vmc.Particle) {
	for _, p := range particles {
		x, y := p.Position.At(0), 0.0
		if p.Dim() > 1 {
			y = p.Position.At(1)
		}
		if x < -c.Extent || x > c.Extent || y < -c.Extent || y > c.Extent {
			continue
		}
		px, py := c.Project(x, y)
		c.Set(px, py)
		c.Set(px+1, py)
		c.Set(px, py+1)
		c.Set(px+1, py+1)
	}
}
