package viz

import (
	"strings"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a Braille pixel grid of Width×Height cells, each holding 2×4
// sub-pixels. Plot maps world coordinates in [-Extent, Extent]² onto it.
type Canvas struct {
	Width, Height int
	Extent        float64
	Grid          [][]rune
}

func NewCanvas(w, h int, extent float64) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Extent: extent,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set turns on the sub-pixel (x, y); the grid is (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// Project maps a world point to sub-pixel coordinates, y pointing up.
func (c *Canvas) Project(x, y float64) (int, int) {
	w, h := float64(c.Width*2-1), float64(c.Height*4-1)
	px := (x + c.Extent) / (2 * c.Extent) * w
	py := (c.Extent - y) / (2 * c.Extent) * h
	return int(px + 0.5), int(py + 0.5)
}

// Plot sets the sub-pixel nearest to the world point. Points outside the
// extent are dropped.
func (c *Canvas) Plot(x, y float64) {
	if x < -c.Extent || x > c.Extent || y < -c.Extent || y > c.Extent {
		return
	}
	c.Set(c.Project(x, y))
}

// DrawLine draws a line using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Axes draws the x and y axes through the world origin.
func (c *Canvas) Axes() {
	x0, y0 := c.Project(-c.Extent, 0)
	x1, y1 := c.Project(c.Extent, 0)
	c.DrawLine(x0, y0, x1, y1)
	x0, y0 = c.Project(0, -c.Extent)
	x1, y1 = c.Project(0, c.Extent)
	c.DrawLine(x0, y0, x1, y1)
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
