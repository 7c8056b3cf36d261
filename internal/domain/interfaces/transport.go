package interfaces

import (
	"context"

	domaintypes "apnode/internal/domain/types"
)

// Transport performs the network hop of a delivery.
type Transport interface {
	Deliver(
		ctx context.Context,
		req domaintypes.OutboundRequest,
	) (domaintypes.RemoteResponse, error)
}
