package layout

type Edge uint8

const (
	EdgeInside Edge = 0
	EdgeNear   Edge = 1 // Close to the page border, clients highlight the drop zone
	EdgeDelete Edge = 2 // Dragged onto the border, clients ask whether to delete
)

const (
	nearDivisor   = 4
	deleteDivisor = 5
)

func (e Edge) String() string {
	switch e {
	case EdgeNear:
		return "near"
	case EdgeDelete:
		return "delete"
	}
	return "inside"
}

func (e Edge) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e *Edge) UnmarshalText(b []byte) error {
	switch string(b) {
	case "near":
		*e = EdgeNear
	case "delete":
		*e = EdgeDelete
	default:
		*e = EdgeInside
	}
	return nil
}

// DetectEdge checks the element center against the page borders. The element counts as
// crossing a border when its center is closer to it than element/divisor.
func DetectEdge(position Point, element, page Size) Edge {
	centerX := position.X + element.Width/2
	centerY := position.Y + element.Height/2
	if crosses(centerX, centerY, element, page, deleteDivisor) {
		return EdgeDelete
	}
	if crosses(centerX, centerY, element, page, nearDivisor) {
		return EdgeNear
	}
	return EdgeInside
}

func crosses(centerX, centerY float64, element, page Size, divisor float64) bool {
	dx := element.Width / divisor
	dy := element.Height / divisor
	return centerX-dx < 0 || centerY-dy < 0 ||
		centerX+dx >= page.Width || centerY+dy >= page.Height
}
