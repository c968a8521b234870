package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Movement is a change in a node's position within its collection.
// Finite integers are relative offsets; +Inf moves to the front (end of the
// collection) and -Inf to the back (start of the collection).
type Movement float64

const (
	MoveForward  Movement = 1
	MoveBackward Movement = -1
)

var (
	MoveToFront = Movement(math.Inf(1))
	MoveToBack  = Movement(math.Inf(-1))
)

// Validate returns ErrInvalidMovement unless m is a finite integer or an infinity.
func (m Movement) Validate() error {
	f := float64(m)
	if math.IsInf(f, 0) {
		return nil
	}
	if math.IsNaN(f) || f != math.Trunc(f) {
		return fmt.Errorf("%w: %v", ErrInvalidMovement, f)
	}
	return nil
}

// Target computes the destination index of a node at from in a collection of
// the given length. The result may fall outside [0, length-1]; callers treat
// that as an out-of-range move. m must be valid.
func (m Movement) Target(from, length int) int {
	f := float64(m)
	switch {
	case math.IsInf(f, 1):
		return length - 1
	case math.IsInf(f, -1):
		return 0
	}

	to := float64(from) + f
	if to < 0 {
		return -1
	}
	if to >= float64(length) {
		return length
	}
	return int(to)
}

// String renders infinities the way they travel on the wire.
func (m Movement) String() string {
	f := float64(m)
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ParseMovement parses a wire representation: an integer, or one of
// "Infinity", "+Infinity", "-Infinity" (case-insensitive, "inf" accepted).
func ParseMovement(s string) (Movement, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "infinity", "+infinity", "inf", "+inf":
		return MoveToFront, nil
	case "-infinity", "-inf":
		return MoveToBack, nil
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMovement, s)
	}
	m := Movement(f)
	if err := m.Validate(); err != nil {
		return 0, err
	}
	return m, nil
}

// MarshalJSON encodes infinities as strings, since JSON numbers cannot hold them.
func (m Movement) MarshalJSON() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if math.IsInf(float64(m), 0) {
		return json.Marshal(m.String())
	}
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a number or a string understood by ParseMovement.
func (m *Movement) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseMovement(s)
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidMovement, data)
	}
	*m = Movement(f)
	return m.Validate()
}
