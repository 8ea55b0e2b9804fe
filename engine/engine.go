package engine

import (
	"context"

	"nash/communication"
)

// Engine answers solve requests, in process or through a server.
type Engine interface {
	Solve(ctx context.Context, req communication.SolveRequest) (*communication.SolveResponse, error)
}
