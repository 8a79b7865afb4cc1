package loader

import (
	"DoorScene/internal/renderer"
	"errors"
	"fmt"
)

var ErrBadGrid = errors.New("plane needs a positive size and at least one segment per side")

// PlaneGeometry builds a width x height plane in the XY plane facing +Z,
// split into segX x segY quads. Vertices run row by row from the top-left
// corner; UVs go from (0,1) there to (1,0) at the bottom-right.
func PlaneGeometry(width, height float32, segX, segY int) (*renderer.Model, error) {
	if width <= 0 || height <= 0 || segX < 1 || segY < 1 {
		return nil, fmt.Errorf("%w: %vx%v with %dx%d segments", ErrBadGrid, width, height, segX, segY)
	}

	gridX1 := segX + 1
	gridY1 := segY + 1
	segW := width / float32(segX)
	segH := height / float32(segY)

	data := make([]float32, 0, gridX1*gridY1*renderer.FloatsPerVertex)
	for iy := 0; iy < gridY1; iy++ {
		y := height/2 - float32(iy)*segH
		for ix := 0; ix < gridX1; ix++ {
			x := -width/2 + float32(ix)*segW
			u := float32(ix) / float32(segX)
			v := 1 - float32(iy)/float32(segY)
			data = append(data,
				x, y, 0,
				u, v,
				0, 0, 1)
		}
	}

	faces := make([]int32, 0, segX*segY*6)
	for iy := 0; iy < segY; iy++ {
		for ix := 0; ix < segX; ix++ {
			a := int32(ix + gridX1*iy)
			b := int32(ix + gridX1*(iy+1))
			c := int32(ix + 1 + gridX1*(iy+1))
			d := int32(ix + 1 + gridX1*iy)
			faces = append(faces, a, b, d, b, c, d)
		}
	}

	return renderer.NewModel("plane", data, faces), nil
}
