// pkg/physics/collision.go
package physics

// Circle represents a circular collision shape
type Circle struct {
	Center Vector2D
	Radius float64
}

// Collides checks if two circles are overlapping
func (c Circle) Collides(other Circle) bool {
	r := c.Radius + other.Radius
	return c.Center.DistanceSquared(other.Center) < r*r
}

// Bounds returns the axis-aligned square enclosing the circle
func (c Circle) Bounds() Rect {
	return Rect{Center: c.Center, Width: c.Radius * 2, Height: c.Radius * 2}
}

// Rect represents a rectangular area described by its center
type Rect struct {
	Center Vector2D
	Width  float64
	Height float64
}

// RectFromCorner builds a Rect from its top-left corner and size
func RectFromCorner(x, y, width, height float64) Rect {
	return Rect{
		Center: Vector2D{X: x + width/2, Y: y + height/2},
		Width:  width,
		Height: height,
	}
}

// Min returns the top-left corner
func (r Rect) Min() Vector2D {
	return Vector2D{X: r.Center.X - r.Width/2, Y: r.Center.Y - r.Height/2}
}

// Max returns the bottom-right corner
func (r Rect) Max() Vector2D {
	return Vector2D{X: r.Center.X + r.Width/2, Y: r.Center.Y + r.Height/2}
}

// Contains reports whether point lies inside the rectangle (min edges inclusive)
func (r Rect) Contains(point Vector2D) bool {
	min, max := r.Min(), r.Max()
	return point.X >= min.X && point.X < max.X &&
		point.Y >= min.Y && point.Y < max.Y
}

// Intersects reports whether two rectangles overlap
func (r Rect) Intersects(other Rect) bool {
	rMin, rMax := r.Min(), r.Max()
	oMin, oMax := other.Min(), other.Max()
	return !(oMin.X > rMax.X || oMax.X < rMin.X ||
		oMin.Y > rMax.Y || oMax.Y < rMin.Y)
}

// QuadTree partitions points in a fixed area so overlap queries only visit
// nearby objects.
type QuadTree[T any] struct {
	Boundary  Rect
	Capacity  int
	points    []Vector2D
	objects   []T
	divided   bool
	northWest *QuadTree[T]
	northEast *QuadTree[T]
	southWest *QuadTree[T]
	southEast *QuadTree[T]
}

// NewQuadTree creates a new quad tree with the given boundary and capacity
func NewQuadTree[T any](boundary Rect, capacity int) *QuadTree[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &QuadTree[T]{
		Boundary: boundary,
		Capacity: capacity,
		points:   make([]Vector2D, 0, capacity),
		objects:  make([]T, 0, capacity),
	}
}

// Insert adds object at point. It returns false when point lies outside the tree.
func (qt *QuadTree[T]) Insert(point Vector2D, object T) bool {
	if !qt.Boundary.Contains(point) {
		return false
	}

	if len(qt.points) < qt.Capacity && !qt.divided {
		qt.points = append(qt.points, point)
		qt.objects = append(qt.objects, object)
		return true
	}

	if !qt.divided {
		qt.subdivide()
	}

	return qt.northWest.Insert(point, object) ||
		qt.northEast.Insert(point, object) ||
		qt.southWest.Insert(point, object) ||
		qt.southEast.Insert(point, object)
}

// subdivide splits the quadtree into four quadrants
func (qt *QuadTree[T]) subdivide() {
	x := qt.Boundary.Center.X
	y := qt.Boundary.Center.Y
	w := qt.Boundary.Width / 2
	h := qt.Boundary.Height / 2

	qt.northWest = NewQuadTree[T](Rect{Center: Vector2D{X: x - w/2, Y: y - h/2}, Width: w, Height: h}, qt.Capacity)
	qt.northEast = NewQuadTree[T](Rect{Center: Vector2D{X: x + w/2, Y: y - h/2}, Width: w, Height: h}, qt.Capacity)
	qt.southWest = NewQuadTree[T](Rect{Center: Vector2D{X: x - w/2, Y: y + h/2}, Width: w, Height: h}, qt.Capacity)
	qt.southEast = NewQuadTree[T](Rect{Center: Vector2D{X: x + w/2, Y: y + h/2}, Width: w, Height: h}, qt.Capacity)
	qt.divided = true
}

// Query returns every object whose point lies inside area
func (qt *QuadTree[T]) Query(area Rect) []T {
	var found []T
	return qt.query(area, found)
}

func (qt *QuadTree[T]) query(area Rect, found []T) []T {
	if !qt.Boundary.Intersects(area) {
		return found
	}

	for i, point := range qt.points {
		if area.Contains(point) {
			found = append(found, qt.objects[i])
		}
	}

	if !qt.divided {
		return found
	}

	found = qt.northWest.query(area, found)
	found = qt.northEast.query(area, found)
	found = qt.southWest.query(area, found)
	found = qt.southEast.query(area, found)
	return found
}

// Len returns the number of objects stored in the tree
func (qt *QuadTree[T]) Len() int {
	n := len(qt.points)
	if qt.divided {
		n += qt.northWest.Len() + qt.northEast.Len() + qt.southWest.Len() + qt.southEast.Len()
	}
	return n
}
