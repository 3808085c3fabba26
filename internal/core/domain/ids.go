package domain

import "strconv"

// ComponentID identifies a component instance within a project.
type ComponentID uint64

// MarkerID identifies a marker. Ids grow with insertion order.
type MarkerID uint64

// LinkID identifies a marker link.
type LinkID uint64

// ConnectionID identifies a pin connection.
type ConnectionID uint64

func (id ComponentID) String() string  { return "c" + strconv.FormatUint(uint64(id), 10) }
func (id MarkerID) String() string     { return "m" + strconv.FormatUint(uint64(id), 10) }
func (id LinkID) String() string       { return "l" + strconv.FormatUint(uint64(id), 10) }
func (id ConnectionID) String() string { return "p" + strconv.FormatUint(uint64(id), 10) }

// PinRef addresses one pin of one component.
type PinRef struct {
	Component ComponentID
	Pin       InternedString
}

func (r PinRef) String() string {
	return r.Component.String() + "." + r.Pin.String()
}
