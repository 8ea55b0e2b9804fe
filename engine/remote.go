package engine

import (
	"context"

	"nash/communication"
	"nash/communication/client"
)

// Remote forwards requests to a solve server.
type Remote struct {
	client *client.Client
}

var _ Engine = (*Remote)(nil)

func NewRemote(serverURL string) *Remote {
	return &Remote{client: client.NewClient(serverURL)}
}

func (r *Remote) Solve(ctx context.Context, req communication.SolveRequest) (*communication.SolveResponse, error) {
	return r.client.Solve(ctx, req)
}
