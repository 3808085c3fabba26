package processors

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/delta/internal/adapters/cas"
	"go.trai.ch/delta/internal/core/ports"
)

// NodeID is the unique identifier for the processor registry Graft node.
const NodeID graft.ID = "adapter.processors"

func init() {
	graft.Register(graft.Node[ports.ProcessorRegistry]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{cas.DecoderNodeID},
		Run: func(ctx context.Context) (ports.ProcessorRegistry, error) {
			decoder, err := graft.Dep[ports.MediaDecoder](ctx)
			if err != nil {
				return nil, err
			}
			return NewDefaultRegistry(decoder), nil
		},
	})
}
