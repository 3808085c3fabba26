package compositor

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/delta/internal/core/ports"
)

// NodeID is the unique identifier for the compositor Graft node.
const NodeID graft.ID = "adapter.compositor"

func init() {
	graft.Register(graft.Node[ports.Compositor]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Compositor, error) {
			return NewCPU(), nil
		},
	})
}
