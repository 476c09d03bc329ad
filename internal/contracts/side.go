package contracts

import "fmt"

// Side is the side of the ball a lineup or system state belongs to
type Side string

const (
	SideOffense Side = "offense"
	SideDefense Side = "defense"
)

// Sides lists every valid side in resolution order
var Sides = []Side{SideOffense, SideDefense}

// Valid reports whether s is offense or defense
func (s Side) Valid() bool {
	return s == SideOffense || s == SideDefense
}

func (s Side) String() string {
	return string(s)
}

// ParseSide validates a raw side value
func ParseSide(raw string) (Side, error) {
	s := Side(raw)
	if !s.Valid() {
		return "", &ValidationError{Field: "side", Message: fmt.Sprintf("unknown side %q (want offense or defense)", raw)}
	}
	return s, nil
}
