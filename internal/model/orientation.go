package model

// Orientation is one of the four cardinal facing directions.
type Orientation uint8

const (
	OrientationNone  Orientation = 0
	OrientationUp    Orientation = 1
	OrientationDown  Orientation = 2
	OrientationLeft  Orientation = 3
	OrientationRight Orientation = 4
)

// Orientations lists the cardinal directions in adjacency scan order.
var Orientations = [4]Orientation{OrientationLeft, OrientationUp, OrientationRight, OrientationDown}

func (o Orientation) String() string {
	switch o {
	case OrientationUp:
		return "up"
	case OrientationLeft:
		return "left"
	case OrientationRight:
		return "right"
	default:
		return "down"
	}
}

// Delta returns the unit grid step for the orientation.
func (o Orientation) Delta() (dx, dy int) {
	switch o {
	case OrientationUp:
		return 0, -1
	case OrientationDown:
		return 0, 1
	case OrientationLeft:
		return -1, 0
	case OrientationRight:
		return 1, 0
	}
	return 0, 0
}

// OrientationFromDelta maps a step to a facing. Horizontal movement wins on diagonals.
func OrientationFromDelta(dx, dy int) Orientation {
	switch {
	case dx < 0:
		return OrientationLeft
	case dx > 0:
		return OrientationRight
	case dy < 0:
		return OrientationUp
	case dy > 0:
		return OrientationDown
	}
	return OrientationNone
}

// ParseOrientation reads the single-letter door notation used by map files ("u", "d", "l", "r").
// Anything else faces down.
func ParseOrientation(s string) Orientation {
	switch s {
	case "u", "up":
		return OrientationUp
	case "l", "left":
		return OrientationLeft
	case "r", "right":
		return OrientationRight
	default:
		return OrientationDown
	}
}
