package domain

import (
	"maps"
	"slices"

	"go.trai.ch/zerr"
)

// Names of the two boundary markers every component owns.
const (
	LeftMarker  = "left"
	RightMarker = "right"
)

// Project is the mutable project graph: an arena of components, markers,
// links and connections indexed by stable ids. It is not safe for concurrent
// use; readers work on Snapshots.
//
// Every mutation validates fully before it writes, so a rejected edit leaves
// the project untouched.
type Project struct {
	id       string
	nextID   uint64
	revision uint64

	components  map[ComponentID]Component
	markers     map[MarkerID]Marker
	links       map[LinkID]MarkerLink
	connections map[ConnectionID]Connection
	inputs      map[PinRef]ConnectionID
}

// NewProject creates an empty project.
func NewProject(id string) *Project {
	return &Project{
		id:          id,
		components:  make(map[ComponentID]Component),
		markers:     make(map[MarkerID]Marker),
		links:       make(map[LinkID]MarkerLink),
		connections: make(map[ConnectionID]Connection),
		inputs:      make(map[PinRef]ConnectionID),
	}
}

// ID returns the project identifier.
func (p *Project) ID() string { return p.id }

// Revision increases with every successful edit.
func (p *Project) Revision() uint64 { return p.revision }

func (p *Project) alloc() uint64 {
	p.nextID++
	return p.nextID
}

// AddComponent inserts a component with its boundary markers and, unless the
// spec is elastic, its intrinsic length link.
func (p *Project) AddComponent(spec ComponentSpec) (ComponentID, Invalidation, error) {
	if err := validateSpec(&spec); err != nil {
		return 0, Invalidation{}, err
	}

	placement := DefaultPlacement()
	if spec.Placement != nil {
		placement = *spec.Placement
	}

	c := Component{
		ID:         ComponentID(p.alloc()),
		Processor:  NewInternedString(spec.Processor),
		Duration:   spec.Duration,
		Elastic:    spec.Elastic,
		Inputs:     slices.Clone(spec.Inputs),
		Outputs:    slices.Clone(spec.Outputs),
		Parameters: cloneParameters(spec.Parameters),
		Layer:      spec.Layer,
		Placement:  placement,
	}
	t := newTouched().component(c.ID)

	left := p.newMarker(c.ID, LeftMarker, true, 0, spec.Start)
	right := p.newMarker(c.ID, RightMarker, true, spec.Duration, spec.Start+spec.Duration)
	c.Left, c.Right = left.ID, right.ID
	c.Markers = []MarkerID{left.ID, right.ID}
	t.marker(left.ID, right.ID)

	if !spec.Elastic {
		c.Length = p.newLink(left.ID, right.ID, spec.Duration, true).ID
	}
	for _, ms := range spec.Markers {
		m := p.newMarker(c.ID, ms.Name, ms.Locked, ms.Local, spec.Start+ms.Local)
		c.Markers = append(c.Markers, m.ID)
		t.marker(m.ID)
		if ms.Locked && !spec.Elastic {
			p.newLink(left.ID, m.ID, ms.Local, true)
		}
	}

	p.components[c.ID] = c
	p.revision++
	return c.ID, t.build(), nil
}

func validateSpec(spec *ComponentSpec) error {
	if spec.Processor == "" {
		return zerr.Wrap(ErrInvalidArgument, "component has no processor")
	}
	if spec.Duration <= 0 {
		return zerr.With(zerr.Wrap(ErrInvalidArgument, "component duration must be positive"),
			"duration", spec.Duration.String())
	}
	if err := validatePins(spec.Inputs, "input"); err != nil {
		return err
	}
	if err := validatePins(spec.Outputs, "output"); err != nil {
		return err
	}

	params := make(map[string]struct{}, len(spec.Parameters))
	for _, np := range spec.Parameters {
		if _, dup := params[np.Name]; dup {
			return zerr.With(zerr.Wrap(ErrDuplicateName, "duplicate parameter"), "parameter", np.Name)
		}
		params[np.Name] = struct{}{}
		if err := np.Param.Validate(); err != nil {
			return zerr.With(err, "parameter", np.Name)
		}
	}

	names := map[string]struct{}{LeftMarker: {}, RightMarker: {}}
	for _, ms := range spec.Markers {
		if ms.Name == "" {
			return zerr.Wrap(ErrInvalidArgument, "marker has no name")
		}
		if _, dup := names[ms.Name]; dup {
			return zerr.With(zerr.Wrap(ErrDuplicateName, "duplicate marker"), "marker", ms.Name)
		}
		names[ms.Name] = struct{}{}
		if ms.Locked && ms.Local < 0 {
			return zerr.With(zerr.Wrap(ErrInvalidArgument, "locked marker time must not be negative"), "marker", ms.Name)
		}
	}

	if spec.Placement != nil {
		return validatePlacement(*spec.Placement)
	}
	return nil
}

func validatePins(pins []PinSpec, direction string) error {
	seen := make(map[string]struct{}, len(pins))
	for _, pin := range pins {
		if pin.Name == "" {
			return zerr.With(zerr.Wrap(ErrInvalidArgument, "pin has no name"), "direction", direction)
		}
		if _, dup := seen[pin.Name]; dup {
			return zerr.With(zerr.Wrap(ErrDuplicateName, "duplicate pin"), direction, pin.Name)
		}
		seen[pin.Name] = struct{}{}
		if pin.Kind != KindImage && pin.Kind != KindAudio {
			return zerr.With(zerr.Wrap(ErrInvalidArgument, "pin has no media kind"), direction, pin.Name)
		}
	}
	return nil
}

func validatePlacement(pl Placement) error {
	if pl.Opacity < 0 || pl.Opacity > 1 {
		return zerr.With(zerr.Wrap(ErrInvalidArgument, "opacity out of range"), "opacity", pl.Opacity)
	}
	if pl.Gain < 0 {
		return zerr.With(zerr.Wrap(ErrInvalidArgument, "gain must not be negative"), "gain", pl.Gain)
	}
	if pl.Blend > BlendScreen {
		return zerr.With(zerr.Wrap(ErrInvalidArgument, "unknown blend mode"), "blend", int(pl.Blend))
	}
	return nil
}

func cloneParameters(in []NamedParameter) []NamedParameter {
	out := make([]NamedParameter, len(in))
	for i, np := range in {
		out[i] = np
		if c, ok := np.Param.Curve(); ok {
			out[i].Param = Animated(*c)
		}
	}
	return out
}

func (p *Project) newMarker(c ComponentID, name string, locked bool, local, hint Time) Marker {
	m := Marker{ID: MarkerID(p.alloc()), Component: c, Name: name, Locked: locked, Local: local, Hint: hint}
	p.markers[m.ID] = m
	return m
}

func (p *Project) newLink(from, to MarkerID, offset Time, intrinsic bool) MarkerLink {
	l := MarkerLink{ID: LinkID(p.alloc()), From: from, To: to, Offset: offset, Intrinsic: intrinsic}
	p.links[l.ID] = l
	return l
}

// RemoveComponent deletes a component together with its markers, every link
// touching those markers and every connection touching the component.
func (p *Project) RemoveComponent(id ComponentID) (Invalidation, error) {
	c, ok := p.components[id]
	if !ok {
		return Invalidation{}, danglingComponent(id)
	}
	t := newTouched().component(id)

	owned := make(map[MarkerID]struct{}, len(c.Markers))
	for _, m := range c.Markers {
		owned[m] = struct{}{}
		t.marker(m)
	}
	for lid, l := range p.links {
		_, from := owned[l.From]
		_, to := owned[l.To]
		if from || to {
			t.marker(l.From, l.To)
			delete(p.links, lid)
		}
	}
	for cid, conn := range p.connections {
		if conn.From.Component == id || conn.To.Component == id {
			t.component(conn.To.Component)
			p.deleteConnection(cid)
		}
	}
	for m := range owned {
		delete(p.markers, m)
	}
	delete(p.components, id)

	p.revision++
	return t.build(), nil
}

// AddMarker adds an internal marker to a component. A nil locked time leaves
// the marker free on the component's timeline.
func (p *Project) AddMarker(component ComponentID, name string, locked *Time, hint Time) (MarkerID, Invalidation, error) {
	c, ok := p.components[component]
	if !ok {
		return 0, Invalidation{}, danglingComponent(component)
	}
	if name == "" {
		return 0, Invalidation{}, zerr.Wrap(ErrInvalidArgument, "marker has no name")
	}
	for _, mid := range c.Markers {
		if p.markers[mid].Name == name {
			return 0, Invalidation{}, zerr.With(zerr.Wrap(ErrDuplicateName, "duplicate marker"), "marker", name)
		}
	}
	if locked != nil && *locked < 0 {
		return 0, Invalidation{}, zerr.With(zerr.Wrap(ErrInvalidArgument, "locked marker time must not be negative"), "marker", name)
	}

	var local Time
	if locked != nil {
		local = *locked
	}
	m := p.newMarker(component, name, locked != nil, local, hint)
	if locked != nil && !c.Elastic {
		p.newLink(c.Left, m.ID, local, true)
	}
	c.Markers = append(slices.Clone(c.Markers), m.ID)
	p.components[component] = c

	p.revision++
	return m.ID, newTouched().marker(m.ID, c.Left).component(component).build(), nil
}

// RemoveMarker deletes an internal marker and every link touching it.
func (p *Project) RemoveMarker(id MarkerID) (Invalidation, error) {
	m, ok := p.markers[id]
	if !ok {
		return Invalidation{}, danglingMarker(id)
	}
	c := p.components[m.Component]
	if id == c.Left || id == c.Right {
		return Invalidation{}, zerr.With(zerr.Wrap(ErrBoundaryMarker, "cannot remove"), "marker", id.String())
	}

	t := newTouched().marker(id).component(c.ID)
	for lid, l := range p.links {
		if l.From == id || l.To == id {
			t.marker(l.From, l.To)
			delete(p.links, lid)
		}
	}
	c.Markers = slices.DeleteFunc(slices.Clone(c.Markers), func(mid MarkerID) bool { return mid == id })
	p.components[c.ID] = c
	delete(p.markers, id)

	p.revision++
	return t.build(), nil
}

// AddLink constrains to = from + offset on the global timeline.
func (p *Project) AddLink(from, to MarkerID, offset Time) (LinkID, Invalidation, error) {
	if _, ok := p.markers[from]; !ok {
		return 0, Invalidation{}, danglingMarker(from)
	}
	if _, ok := p.markers[to]; !ok {
		return 0, Invalidation{}, danglingMarker(to)
	}
	if from == to {
		return 0, Invalidation{}, zerr.With(zerr.Wrap(ErrInvalidArgument, "link endpoints are the same marker"), "marker", from.String())
	}
	l := p.newLink(from, to, offset, false)
	p.revision++
	return l.ID, newTouched().marker(from, to).build(), nil
}

// RemoveLink deletes a user link.
func (p *Project) RemoveLink(id LinkID) (Invalidation, error) {
	l, err := p.userLink(id)
	if err != nil {
		return Invalidation{}, err
	}
	delete(p.links, id)
	p.revision++
	return newTouched().marker(l.From, l.To).build(), nil
}

// SetLinkOffset changes the offset of a user link.
func (p *Project) SetLinkOffset(id LinkID, offset Time) (Invalidation, error) {
	l, err := p.userLink(id)
	if err != nil {
		return Invalidation{}, err
	}
	l.Offset = offset
	p.links[id] = l
	p.revision++
	return newTouched().marker(l.From, l.To).build(), nil
}

func (p *Project) userLink(id LinkID) (MarkerLink, error) {
	l, ok := p.links[id]
	if !ok {
		return MarkerLink{}, zerr.With(zerr.Wrap(ErrDanglingReference, "unknown link"), "link", id.String())
	}
	if l.Intrinsic {
		return MarkerLink{}, zerr.With(zerr.Wrap(ErrIntrinsicLink, "cannot edit"), "link", id.String())
	}
	return l, nil
}

// SetDuration changes a component's local length, moving its right boundary
// lock and rewriting its intrinsic length link.
func (p *Project) SetDuration(component ComponentID, d Time) (Invalidation, error) {
	c, ok := p.components[component]
	if !ok {
		return Invalidation{}, danglingComponent(component)
	}
	if d <= 0 {
		return Invalidation{}, zerr.With(zerr.Wrap(ErrInvalidArgument, "component duration must be positive"), "duration", d.String())
	}

	right := p.markers[c.Right]
	right.Local = d
	p.markers[c.Right] = right
	if c.Length != 0 {
		l := p.links[c.Length]
		l.Offset = d
		p.links[c.Length] = l
	}
	c.Duration = d
	p.components[component] = c

	p.revision++
	return newTouched().marker(c.Left, c.Right).component(component).build(), nil
}

// Connect adds an edge from an output pin to an input pin.
func (p *Project) Connect(from, to PinRef) (ConnectionID, Invalidation, error) {
	src, ok := p.components[from.Component]
	if !ok {
		return 0, Invalidation{}, danglingComponent(from.Component)
	}
	dst, ok := p.components[to.Component]
	if !ok {
		return 0, Invalidation{}, danglingComponent(to.Component)
	}
	out, _, ok := src.Output(from.Pin.String())
	if !ok {
		return 0, Invalidation{}, zerr.With(zerr.Wrap(ErrDanglingReference, "unknown output pin"), "pin", from.String())
	}
	in, _, ok := dst.Input(to.Pin.String())
	if !ok {
		return 0, Invalidation{}, zerr.With(zerr.Wrap(ErrDanglingReference, "unknown input pin"), "pin", to.String())
	}
	if out.Kind != in.Kind {
		err := zerr.With(zerr.Wrap(ErrKindMismatch, "pin kinds differ"), "from", from.String())
		err = zerr.With(err, "from_kind", out.Kind.String())
		err = zerr.With(err, "to", to.String())
		return 0, Invalidation{}, zerr.With(err, "to_kind", in.Kind.String())
	}
	if existing, occupied := p.inputs[to]; occupied {
		return 0, Invalidation{}, zerr.With(zerr.With(zerr.Wrap(ErrPinOccupied, "cannot connect"), "pin", to.String()), "connection", existing.String())
	}

	ids := slices.Sorted(maps.Keys(p.components))
	deps := p.upstreamFunc()
	withEdge := func(c ComponentID) []ComponentID {
		if c == to.Component {
			return append(deps(c), from.Component)
		}
		return deps(c)
	}
	if _, err := topologicalOrder(ids, withEdge); err != nil {
		return 0, Invalidation{}, err
	}

	conn := Connection{ID: ConnectionID(p.alloc()), From: from, To: to, Kind: out.Kind}
	p.connections[conn.ID] = conn
	p.inputs[to] = conn.ID
	p.revision++
	return conn.ID, newTouched().component(to.Component).build(), nil
}

func (p *Project) upstreamFunc() func(ComponentID) []ComponentID {
	up := make(map[ComponentID][]ComponentID, len(p.components))
	for _, id := range slices.Sorted(maps.Keys(p.connections)) {
		conn := p.connections[id]
		up[conn.To.Component] = append(up[conn.To.Component], conn.From.Component)
	}
	return func(c ComponentID) []ComponentID {
		return slices.Clone(up[c])
	}
}

// Disconnect removes a connection.
func (p *Project) Disconnect(id ConnectionID) (Invalidation, error) {
	conn, ok := p.connections[id]
	if !ok {
		return Invalidation{}, zerr.With(zerr.Wrap(ErrDanglingReference, "unknown connection"), "connection", id.String())
	}
	p.deleteConnection(id)
	p.revision++
	return newTouched().component(conn.To.Component).build(), nil
}

func (p *Project) deleteConnection(id ConnectionID) {
	conn := p.connections[id]
	delete(p.inputs, conn.To)
	delete(p.connections, id)
}

// SetParameter replaces a declared parameter. The new value must keep its kind.
func (p *Project) SetParameter(component ComponentID, name string, param Parameter) (Invalidation, error) {
	c, ok := p.components[component]
	if !ok {
		return Invalidation{}, danglingComponent(component)
	}
	cur, i, ok := c.Parameter(name)
	if !ok {
		return Invalidation{}, zerr.With(zerr.Wrap(ErrDanglingReference, "unknown parameter"), "parameter", name)
	}
	if err := param.Validate(); err != nil {
		return Invalidation{}, zerr.With(err, "parameter", name)
	}
	if cur.Kind() != param.Kind() {
		err := zerr.With(zerr.Wrap(ErrKindMismatch, "parameter kind cannot change"), "parameter", name)
		return Invalidation{}, zerr.With(err, "kind", param.Kind().String())
	}

	c.Parameters = cloneParameters(c.Parameters)
	c.Parameters[i].Param = cloneParameters([]NamedParameter{{Param: param}})[0].Param
	p.components[component] = c
	p.revision++
	return newTouched().component(component).build(), nil
}

// SetAnchor pins a marker to a global time, or releases it when at is nil.
func (p *Project) SetAnchor(marker MarkerID, at *Time) (Invalidation, error) {
	m, ok := p.markers[marker]
	if !ok {
		return Invalidation{}, danglingMarker(marker)
	}
	m.Anchored = at != nil
	m.Anchor = 0
	if at != nil {
		m.Anchor = *at
		m.Hint = *at
	}
	p.markers[marker] = m
	p.revision++
	return newTouched().marker(marker).component(m.Component).build(), nil
}

// SetLayer changes a component's composite order.
func (p *Project) SetLayer(component ComponentID, layer int) (Invalidation, error) {
	c, ok := p.components[component]
	if !ok {
		return Invalidation{}, danglingComponent(component)
	}
	c.Layer = layer
	p.components[component] = c
	p.revision++
	return newTouched().component(component).build(), nil
}

// SetPlacement changes how a component is blended into the composite.
func (p *Project) SetPlacement(component ComponentID, pl Placement) (Invalidation, error) {
	c, ok := p.components[component]
	if !ok {
		return Invalidation{}, danglingComponent(component)
	}
	if err := validatePlacement(pl); err != nil {
		return Invalidation{}, err
	}
	c.Placement = pl
	p.components[component] = c
	p.revision++
	return newTouched().component(component).build(), nil
}

// Snapshot returns an immutable copy of the project's index tables.
func (p *Project) Snapshot() *Snapshot {
	return &Snapshot{
		id:          p.id,
		revision:    p.revision,
		nextID:      p.nextID,
		components:  maps.Clone(p.components),
		markers:     maps.Clone(p.markers),
		links:       maps.Clone(p.links),
		connections: maps.Clone(p.connections),
		inputs:      maps.Clone(p.inputs),
	}
}

// Restore replaces the project state with s. Ids handed out after s was taken
// are never reused.
func (p *Project) Restore(s *Snapshot) Invalidation {
	p.load(s)
	p.revision++
	return Invalidation{All: true}
}

// Rollback discards every change made since s was taken, revision included.
// s must be the latest snapshot that was handed out.
func (p *Project) Rollback(s *Snapshot) {
	p.load(s)
	p.revision = s.revision
}

func (p *Project) load(s *Snapshot) {
	p.components = maps.Clone(s.components)
	p.markers = maps.Clone(s.markers)
	p.links = maps.Clone(s.links)
	p.connections = maps.Clone(s.connections)
	p.inputs = maps.Clone(s.inputs)
	p.nextID = max(p.nextID, s.nextID)
}

func danglingComponent(id ComponentID) error {
	return zerr.With(zerr.Wrap(ErrDanglingReference, "unknown component"), "component", id.String())
}

func danglingMarker(id MarkerID) error {
	return zerr.With(zerr.Wrap(ErrDanglingReference, "unknown marker"), "marker", id.String())
}
