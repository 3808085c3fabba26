package renderer

import (
	"cmp"
	"slices"
	"sync"

	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/core/ports"
	"go.trai.ch/zerr"
)

// request is what one RenderFrame or RenderAudio call asks for.
type request struct {
	kind domain.MediaKind
	// at is the global time of an image request.
	at domain.Time
	// span is the global span of an audio request.
	span   domain.Span
	frames int
}

// nodeID identifies a node within a request. span is the global span the
// node is evaluated over, the instant {t, t} for an image.
type nodeID struct {
	component domain.ComponentID
	kind      domain.MediaKind
	span      domain.Span
}

// node is one component evaluated for one media kind within a request.
type node struct {
	id   nodeID
	comp domain.Component
	proc ports.Processor
	// planErr is a failure known before evaluation, e.g. an unknown processor.
	planErr error

	local     domain.Time
	localSpan domain.Span
	// global is the span the node's output covers. active is the part of it
	// inside the component's own span, the part the processor renders.
	global domain.Span
	active domain.Span
	// frames is the length of the output; the processor renders activeFrames
	// of them starting lead frames in, the rest is silence.
	frames       int
	activeFrames int
	lead         int
	params       domain.Params

	// inputs follow the component's input pins; nil entries are placeholders.
	inputs     []*node
	inputKinds []domain.MediaKind
	key        domain.Fingerprint

	once    sync.Once
	out     domain.Output
	tainted bool
	err     error
}

// plan is the set of nodes a request touches.
type plan struct {
	req   request
	view  *domain.View
	nodes map[nodeID]*node
	top   []*node
	// failures are components the request needs whose timing did not resolve.
	failures []NodeFailure
	reported map[domain.ComponentID]bool
}

func (r *Renderer) newPlan(view *domain.View, req request) (*plan, error) {
	p := &plan{req: req, view: view, nodes: make(map[nodeID]*node), reported: make(map[domain.ComponentID]bool)}
	snap := view.Snapshot
	want := req.want()

	var live []domain.ComponentID
	for _, id := range snap.Components() {
		c, _ := snap.Component(id)
		if !c.Produces().Has(req.kind) {
			continue
		}
		if p.reaches(id, req.kind, want) {
			live = append(live, id)
		}
	}

	for _, id := range live {
		if p.consumedByLive(id) {
			continue
		}
		nid, at := nodeID{component: id, kind: req.kind, span: want}, want
		if req.kind == domain.KindAudio {
			// Top-level tracks cover only their own span and are offset by
			// the mixer.
			ct, _ := view.Timing.Component(id)
			at = domain.Span{Start: max(want.Start, ct.Span.Start), End: min(want.End, ct.Span.End)}
			nid.span = at
		}
		n, err := r.planNode(p, nid, at)
		if err != nil {
			return nil, err
		}
		p.top = append(p.top, n)
	}

	slices.SortStableFunc(p.top, func(a, b *node) int {
		return cmp.Or(cmp.Compare(a.comp.Layer, b.comp.Layer), cmp.Compare(a.comp.ID, b.comp.ID))
	})
	return p, nil
}

// want is the global span the request covers. An image request is the
// instant {at, at}.
func (req request) want() domain.Span {
	if req.kind == domain.KindAudio {
		return req.span
	}
	return domain.Span{Start: req.at, End: req.at}
}

// reaches reports whether a component resolved to a span that want reaches.
// Start is inclusive and end exclusive. A component whose timing failed is
// recorded as a failure of the request.
func (p *plan) reaches(id domain.ComponentID, kind domain.MediaKind, want domain.Span) bool {
	ct, ok := p.view.Timing.Component(id)
	if !ok {
		return false
	}
	if !ct.Valid() {
		if !p.reported[id] {
			p.reported[id] = true
			p.failures = append(p.failures, NodeFailure{Component: id, Err: ct.Err})
		}
		return false
	}
	if kind == domain.KindAudio {
		return ct.Span.Overlaps(want)
	}
	return ct.Span.Contains(want.Start)
}

// consumedByLive reports whether the requested kind of id flows into another
// live component producing that kind, which composites it in its place.
func (p *plan) consumedByLive(id domain.ComponentID) bool {
	snap := p.view.Snapshot
	for _, conn := range snap.Consumers(id) {
		if conn.Kind != p.req.kind {
			continue
		}
		c, ok := snap.Component(conn.To.Component)
		if !ok || !c.Produces().Has(p.req.kind) {
			continue
		}
		if p.reaches(c.ID, p.req.kind, p.req.want()) {
			return true
		}
	}
	return false
}

func (r *Renderer) planNode(p *plan, id nodeID, want domain.Span) (*node, error) {
	if n, ok := p.nodes[id]; ok {
		return n, nil
	}
	snap := p.view.Snapshot
	c, _ := snap.Component(id.component)
	ct, _ := p.view.Timing.Component(id.component)

	n := &node{id: id, comp: c}
	p.nodes[id] = n
	r.placeNode(n, ct, want)

	proc, ok := r.registry.Lookup(c.Processor.String())
	switch {
	case !ok:
		n.planErr = zerr.With(zerr.Wrap(domain.ErrUnknownProcessor, "processor is not registered"), "processor", c.Processor.String())
	case !proc.Capabilities().Kinds.Has(id.kind):
		err := zerr.With(zerr.Wrap(domain.ErrUnexpectedOutput, "processor cannot produce kind"), "processor", c.Processor.String())
		n.planErr = zerr.With(err, "kind", id.kind.String())
	default:
		n.proc = proc
	}

	n.inputs = make([]*node, len(c.Inputs))
	n.inputKinds = make([]domain.MediaKind, len(c.Inputs))
	for i, pin := range c.Inputs {
		n.inputKinds[i] = pin.Kind
		conn, connected := snap.InputFor(domain.PinRef{Component: c.ID, Pin: domain.NewInternedString(pin.Name)})
		if !connected {
			if pin.Required {
				err := zerr.With(zerr.Wrap(domain.ErrMissingInput, "cannot evaluate"), "component", c.ID.String())
				return nil, zerr.With(err, "pin", pin.Name)
			}
			continue
		}
		// Inputs cover exactly what the processor renders, so audio from an
		// upstream with a different span stays aligned.
		upWant := n.active
		if conn.Kind != domain.KindAudio {
			upWant.End = upWant.Start
		}
		upID := nodeID{component: conn.From.Component, kind: conn.Kind, span: upWant}
		if !p.reaches(conn.From.Component, conn.Kind, upWant) {
			continue
		}
		up, err := r.planNode(p, upID, upWant)
		if err != nil {
			return nil, err
		}
		n.inputs[i] = up
	}

	n.key = r.nodeKey(n)
	return n, nil
}

// placeNode maps want onto the component's local timeline.
func (r *Renderer) placeNode(n *node, ct domain.ComponentTiming, want domain.Span) {
	if n.id.kind != domain.KindAudio {
		n.global = domain.Span{Start: want.Start, End: want.Start}
		n.active = n.global
		n.local = ct.Map.ToLocal(want.Start)
	} else {
		n.global = want
		n.active = domain.Span{
			Start: max(want.Start, ct.Span.Start),
			End:   min(want.End, ct.Span.End),
		}
		n.localSpan = domain.Span{Start: ct.Map.ToLocal(n.active.Start), End: ct.Map.ToLocal(n.active.End)}
		n.local = n.localSpan.Start
		n.frames = domain.SamplesIn(want.Length(), r.format.SampleRate)
		n.lead = min(domain.SamplesIn(n.active.Start-want.Start, r.format.SampleRate), n.frames)
		n.activeFrames = min(domain.SamplesIn(n.active.Length(), r.format.SampleRate), n.frames-n.lead)
	}

	n.params = make(domain.Params, len(n.comp.Parameters))
	for i, np := range n.comp.Parameters {
		n.params[i] = domain.NamedValue{Name: np.Name, Value: np.Param.Eval(n.local)}
	}
}

// nodeKey fingerprints everything the node's result depends on. Upstream keys
// must already be set.
func (r *Renderer) nodeKey(n *node) domain.Fingerprint {
	b := domain.NewKeyBuilder("node").
		Uint64(uint64(n.comp.ID)).
		String(n.comp.Processor.String()).
		Tag(byte(n.id.kind)).
		Format(r.format)

	for _, nv := range n.params {
		b.String(nv.Name).Value(nv.Value)
	}
	for i, in := range n.inputs {
		if in == nil {
			b.Tag('p').Tag(byte(n.inputKinds[i]))
			continue
		}
		b.Tag('u').Fingerprint(in.key)
	}

	audio := n.id.kind == domain.KindAudio
	if r.timeInvariant(n) {
		b.Tag('i')
	} else {
		b.Tag('t').Time(n.local)
		if audio {
			b.Time(n.localSpan.End)
		}
	}
	if audio {
		b.Int64(int64(n.frames)).Int64(int64(n.lead)).Int64(int64(n.activeFrames))
	}
	return b.Sum()
}

func (r *Renderer) timeInvariant(n *node) bool {
	if n.proc == nil || !n.proc.Capabilities().TimeInvariant {
		return false
	}
	for _, np := range n.comp.Parameters {
		if !np.Param.IsConstant() {
			return false
		}
	}
	return true
}
