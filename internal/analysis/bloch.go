package analysis

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"github.com/san-kum/qdynsim/internal/dynamo"
)

type BlochVector struct {
	T       float64
	X, Y, Z float64
}

// BlochTrajectory maps every state of a result onto the Bloch sphere of the
// levels (lower, upper). The vector is normalized by the population of the
// subspace, so leakage out of it does not shrink the vector.
func BlochTrajectory(res *dynamo.Result, lower, upper int) ([]BlochVector, error) {
	if res == nil || len(res.Y) == 0 {
		return nil, fmt.Errorf("empty result")
	}
	n := len(res.Y[0])
	if lower < 0 || upper < 0 || lower >= n || upper >= n || lower == upper {
		return nil, fmt.Errorf("levels (%d, %d) invalid for dimension %d: %w", lower, upper, n, dynamo.ErrDimensionMismatch)
	}

	out := make([]BlochVector, len(res.Y))
	for i, y := range res.Y {
		a, b := y[lower], y[upper]
		pa := real(a)*real(a) + imag(a)*imag(a)
		pb := real(b)*real(b) + imag(b)*imag(b)
		p := pa + pb
		v := BlochVector{T: res.T[i]}
		if p > 0 {
			c := 2 * cmplx.Conj(a) * b / complex(p, 0)
			v.X = real(c)
			v.Y = imag(c)
			v.Z = (pa - pb) / p
		}
		out[i] = v
	}
	return out, nil
}

// Point is a projected 2D coordinate.
type Point struct{ X, Y float64 }

// ProjectionToASCII draws points on a width×height canvas, with axes where
// they cross the visible area.
func ProjectionToASCII(points []Point, width, height int) string {
	if len(points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	for _, p := range points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// ProjectXZ projects Bloch vectors on the x-z plane.
func ProjectXZ(vs []BlochVector) []Point {
	out := make([]Point, len(vs))
	for i, v := range vs {
		out[i] = Point{X: v.X, Y: v.Z}
	}
	return out
}
