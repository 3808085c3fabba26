package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/delta/internal/core/ports"
)

// DecoderNodeID is the unique identifier for the media decoder Graft node.
const DecoderNodeID graft.ID = "adapter.media_decoder"

func init() {
	graft.Register(graft.Node[ports.MediaDecoder]{
		ID:        DecoderNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.MediaDecoder, error) {
			decoder, err := NewDecoder()
			if err != nil {
				return nil, err
			}
			return decoder, nil
		},
	})
}
