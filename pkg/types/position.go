package types

import "fmt"

// Position selects where Insert places a new entry.
type Position int

// Position policies. The zero value is not a valid Position.
const (
	PositionBeginning Position = iota + 1
	PositionMiddle
	PositionEnd
)

var positionNames = map[Position]string{
	PositionBeginning: "beginning",
	PositionMiddle:    "middle",
	PositionEnd:       "end",
}

// ParsePosition returns the Position for "beginning", "middle", or "end".
func ParsePosition(s string) (Position, error) {
	for p, name := range positionNames {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidPosition, s)
}

func (p Position) String() string {
	if name, ok := positionNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Position(%d)", int(p))
}

// Index returns the insertion index for a section holding n entries.
// Middle is floor(n/2) of the length before insertion.
func (p Position) Index(n int) (int, error) {
	switch p {
	case PositionBeginning:
		return 0, nil
	case PositionMiddle:
		return n / 2, nil
	case PositionEnd:
		return n, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrInvalidPosition, p)
	}
}
