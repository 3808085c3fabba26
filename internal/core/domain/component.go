package domain

import "slices"

// PinSpec declares one input or output pin of a component.
type PinSpec struct {
	Name     string
	Kind     MediaKind
	Required bool
}

// MarkerSpec declares an internal marker created together with a component.
type MarkerSpec struct {
	Name   string
	Locked bool
	Local  Time
}

// ComponentSpec describes a component to insert into a project.
type ComponentSpec struct {
	Processor  string
	Duration   Time
	Elastic    bool
	Start      Time
	Inputs     []PinSpec
	Outputs    []PinSpec
	Parameters []NamedParameter
	Markers    []MarkerSpec
	Layer      int
	Placement  *Placement
}

// Component is a component instance stored in the project arena.
// Slices are never mutated in place; edits replace them.
type Component struct {
	ID         ComponentID
	Processor  InternedString
	Duration   Time
	Elastic    bool
	Inputs     []PinSpec
	Outputs    []PinSpec
	Parameters []NamedParameter
	Left       MarkerID
	Right      MarkerID
	Markers    []MarkerID
	Length     LinkID
	Layer      int
	Placement  Placement
}

// Input returns the input pin named name.
func (c *Component) Input(name string) (PinSpec, int, bool) {
	return findPin(c.Inputs, name)
}

// Output returns the output pin named name.
func (c *Component) Output(name string) (PinSpec, int, bool) {
	return findPin(c.Outputs, name)
}

// Parameter returns the parameter named name.
func (c *Component) Parameter(name string) (Parameter, int, bool) {
	i := slices.IndexFunc(c.Parameters, func(p NamedParameter) bool { return p.Name == name })
	if i < 0 {
		return Parameter{}, -1, false
	}
	return c.Parameters[i].Param, i, true
}

// Produces returns the set of kinds the component's output pins carry.
func (c *Component) Produces() KindSet {
	var s KindSet
	for _, p := range c.Outputs {
		s |= KindSet(p.Kind)
	}
	return s
}

func findPin(pins []PinSpec, name string) (PinSpec, int, bool) {
	i := slices.IndexFunc(pins, func(p PinSpec) bool { return p.Name == name })
	if i < 0 {
		return PinSpec{}, -1, false
	}
	return pins[i], i, true
}

// Marker is a named point on a component's local timeline.
type Marker struct {
	ID        MarkerID
	Component ComponentID
	Name      string
	// Locked markers are pinned to Local on the component's own timeline.
	Locked bool
	Local  Time
	// Hint is the last known global position.
	Hint Time
	// Anchored markers are pinned to Anchor on the global timeline.
	Anchored bool
	Anchor   Time
}

// MarkerLink constrains To to sit Offset after From on the global timeline.
type MarkerLink struct {
	ID        LinkID
	From      MarkerID
	To        MarkerID
	Offset    Time
	Intrinsic bool
}

// Other returns the endpoint of l opposite m.
func (l MarkerLink) Other(m MarkerID) MarkerID {
	if l.From == m {
		return l.To
	}
	return l.From
}

// Connection is a typed edge from an output pin to an input pin.
type Connection struct {
	ID   ConnectionID
	From PinRef
	To   PinRef
	Kind MediaKind
}
