package app

import (
	"github.com/google/uuid"
	"go.trai.ch/delta/internal/adapters/processors" //nolint:depguard // Wired in app layer
	"go.trai.ch/delta/internal/core/domain"
)

// SampleDuration is the length of the built-in project.
var SampleDuration = domain.Seconds(10)

// SampleOptions tunes the built-in project.
type SampleOptions struct {
	// Overlay is a frame store drawn over the sample at half opacity.
	Overlay string
}

// Sample is the built-in project and the clips it is made of.
type Sample struct {
	Project *domain.Project
	Red     domain.ComponentID
	Blue    domain.ComponentID
	Tone    domain.ComponentID
}

// SampleProject builds the demo timeline: red for the first five seconds,
// blue for the next five, directly after red, and a tone underneath both.
func SampleProject(opts SampleOptions) (*Sample, error) {
	p := domain.NewProject(uuid.NewString())
	half := SampleDuration / 2
	image := []domain.PinSpec{{Name: "out", Kind: domain.KindImage}}

	red, err := addAnchored(p, domain.ComponentSpec{
		Processor:  processors.Solid,
		Duration:   half,
		Outputs:    image,
		Parameters: params("color", domain.RGBA(1, 0, 0, 1)),
	})
	if err != nil {
		return nil, err
	}

	blue, _, err := p.AddComponent(domain.ComponentSpec{
		Processor:  processors.Solid,
		Duration:   half,
		Start:      half,
		Outputs:    image,
		Parameters: params("color", domain.RGBA(0, 0, 1, 1)),
	})
	if err != nil {
		return nil, err
	}
	snap := p.Snapshot()
	rc, _ := snap.Component(red)
	bc, _ := snap.Component(blue)
	if _, _, err := p.AddLink(rc.Right, bc.Left, 0); err != nil {
		return nil, err
	}

	tone, err := addAnchored(p, domain.ComponentSpec{
		Processor: processors.Tone,
		Duration:  SampleDuration,
		Outputs:   []domain.PinSpec{{Name: "out", Kind: domain.KindAudio}},
		Parameters: append(
			params("frequency", domain.Float(440)),
			params("amplitude", domain.Float(0.25))...,
		),
	})
	if err != nil {
		return nil, err
	}

	if opts.Overlay != "" {
		if err := addOverlay(p, opts.Overlay); err != nil {
			return nil, err
		}
	}
	return &Sample{Project: p, Red: red, Blue: blue, Tone: tone}, nil
}

// addOverlay decodes source and fades it through a gain filter.
func addOverlay(p *domain.Project, source string) error {
	media, err := addAnchored(p, domain.ComponentSpec{
		Processor:  processors.Media,
		Duration:   SampleDuration,
		Outputs:    []domain.PinSpec{{Name: "out", Kind: domain.KindImage}},
		Parameters: params("source", domain.String(source)),
		Layer:      1,
	})
	if err != nil {
		return err
	}
	fade, err := addAnchored(p, domain.ComponentSpec{
		Processor:  processors.Gain,
		Duration:   SampleDuration,
		Inputs:     []domain.PinSpec{{Name: "in", Kind: domain.KindImage, Required: true}},
		Outputs:    []domain.PinSpec{{Name: "out", Kind: domain.KindImage}},
		Parameters: params("opacity", domain.Float(0.5)),
		Layer:      1,
	})
	if err != nil {
		return err
	}
	_, _, err = p.Connect(
		domain.PinRef{Component: media, Pin: domain.NewInternedString("out")},
		domain.PinRef{Component: fade, Pin: domain.NewInternedString("in")},
	)
	return err
}

// addAnchored adds a component whose left edge is pinned to its start.
func addAnchored(p *domain.Project, spec domain.ComponentSpec) (domain.ComponentID, error) {
	id, _, err := p.AddComponent(spec)
	if err != nil {
		return 0, err
	}
	c, _ := p.Snapshot().Component(id)
	start := spec.Start
	if _, err := p.SetAnchor(c.Left, &start); err != nil {
		return 0, err
	}
	return id, nil
}

func params(name string, v domain.Value) []domain.NamedParameter {
	return []domain.NamedParameter{{Name: name, Param: domain.Constant(v)}}
}
