package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/setanarut/vec"
)

// CellAspect is how many columns make up one row visually.
const CellAspect = 2.0

// Camera maps world coordinates to terminal cells. The y axis points up in
// the world and down on the screen.
type Camera struct {
	Center vec.Vec2
	// ViewWidth is the world width visible across Columns.
	ViewWidth     float64
	Columns, Rows int
}

// NewCamera frames a view of viewWidth world units around center.
func NewCamera(center vec.Vec2, viewWidth float64, columns, rows int) Camera {
	return Camera{Center: center, ViewWidth: viewWidth, Columns: columns, Rows: rows}
}

// Matrix returns the homogeneous world to cell transform.
func (c Camera) Matrix() mgl64.Mat3 {
	sx := float64(c.Columns) / c.ViewWidth
	sy := sx / CellAspect
	return mgl64.Translate2D(float64(c.Columns)/2, float64(c.Rows)/2).
		Mul3(mgl64.Scale2D(sx, -sy)).
		Mul3(mgl64.Translate2D(-c.Center.X, -c.Center.Y))
}

// ToCell returns the cell containing p.
func (c Camera) ToCell(p vec.Vec2) (x, y int) {
	v := c.Matrix().Mul3x1(mgl64.Vec3{p.X, p.Y, 1})
	return int(math.Floor(v[0])), int(math.Floor(v[1]))
}

// Visible reports whether a cell lies on the screen.
func (c Camera) Visible(x, y int) bool {
	return x >= 0 && y >= 0 && x < c.Columns && y < c.Rows
}
