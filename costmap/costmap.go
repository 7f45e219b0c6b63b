// Package costmap provides the occupancy grid the follower validates
// simulated trajectories against.
package costmap

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Cost values follow the conventional inflated-costmap encoding: cells at or
// above InscribedObstacle cannot be traversed by the robot center.
const (
	FreeSpace         = 0
	InscribedObstacle = 253
	LethalObstacle    = 254
)

// Grid is the read-only view the follower needs of an occupancy grid.
type Grid interface {
	// WorldToGrid converts a world coordinate to cell indices, reporting
	// whether the coordinate falls on the grid.
	WorldToGrid(x, y float64) (cellX, cellY int, ok bool)
	// CostAt returns the traversal cost of a cell.
	CostAt(cellX, cellY int) int
	// Resolution returns the edge length of one cell in meters.
	Resolution() float64
}

// Costmap is an in-memory Grid whose origin is the world coordinate of its
// lower-left corner. It is not safe for concurrent mutation.
type Costmap struct {
	originX    float64
	originY    float64
	resolution float64
	costs      *mat.Dense // rows are y cells, columns are x cells
}

// New creates an all-free costmap of the given dimensions in cells.
func New(width, height int, resolution, originX, originY float64) (*Costmap, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("costmap dimensions must be positive, got %dx%d", width, height)
	}
	if resolution <= 0 {
		return nil, errors.Errorf("costmap resolution must be positive, got %f", resolution)
	}
	return &Costmap{
		originX:    originX,
		originY:    originY,
		resolution: resolution,
		costs:      mat.NewDense(height, width, nil),
	}, nil
}

// Resolution returns the cell edge length in meters.
func (c *Costmap) Resolution() float64 {
	return c.resolution
}

// WorldToGrid converts a world coordinate to cell indices, reporting whether
// the coordinate falls on the grid.
func (c *Costmap) WorldToGrid(x, y float64) (int, int, bool) {
	if x < c.originX || y < c.originY {
		return 0, 0, false
	}
	cellX := int((x - c.originX) / c.resolution)
	cellY := int((y - c.originY) / c.resolution)
	rows, cols := c.costs.Dims()
	if cellX >= cols || cellY >= rows {
		return 0, 0, false
	}
	return cellX, cellY, true
}

// CostAt returns the traversal cost of a cell.
func (c *Costmap) CostAt(cellX, cellY int) int {
	return int(c.costs.At(cellY, cellX))
}

// SetCost assigns the traversal cost of a cell.
func (c *Costmap) SetCost(cellX, cellY, cost int) {
	c.costs.Set(cellY, cellX, float64(cost))
}

// SetObstacle marks every cell covered by the world-frame axis-aligned
// rectangle as lethal. Portions outside the grid are ignored.
func (c *Costmap) SetObstacle(minX, minY, maxX, maxY float64) {
	rows, cols := c.costs.Dims()
	for cellY := 0; cellY < rows; cellY++ {
		for cellX := 0; cellX < cols; cellX++ {
			x := c.originX + (float64(cellX)+0.5)*c.resolution
			y := c.originY + (float64(cellY)+0.5)*c.resolution
			if x >= minX && x <= maxX && y >= minY && y <= maxY {
				c.costs.Set(cellY, cellX, LethalObstacle)
			}
		}
	}
}
