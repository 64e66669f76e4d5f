package kinematic

import "fmt"

// Vector is a position in world space. Any value is accepted as-is;
// nothing here knows about world bounds.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vector) String() string {
	return fmt.Sprintf("(%g, %g)", v.X, v.Y)
}
