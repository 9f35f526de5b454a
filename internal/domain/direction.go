package domain

// DirectionCode is the raw gesture code reported by a sensor driver.
type DirectionCode int

// Driver gesture codes. DirAll is reported by some drivers when motion was seen
// on every axis; it has no Direction of its own.
const (
	DirNone DirectionCode = iota
	DirLeft
	DirRight
	DirUp
	DirDown
	DirNear
	DirFar
	DirAll
)

// Direction is a recognised gesture.
type Direction string

const (
	DirectionNone  Direction = "NONE"
	DirectionUp    Direction = "UP"
	DirectionDown  Direction = "DOWN"
	DirectionLeft  Direction = "LEFT"
	DirectionRight Direction = "RIGHT"
	DirectionNear  Direction = "NEAR"
	DirectionFar   Direction = "FAR"
)

// DirectionFromCode maps a driver code to a Direction.
// Every code has an answer: anything unrecognised is DirectionNone.
func DirectionFromCode(code DirectionCode) Direction {
	switch code {
	case DirUp:
		return DirectionUp
	case DirDown:
		return DirectionDown
	case DirLeft:
		return DirectionLeft
	case DirRight:
		return DirectionRight
	case DirNear:
		return DirectionNear
	case DirFar:
		return DirectionFar
	default:
		return DirectionNone
	}
}
