package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"nash/communication"
	"nash/communication/client"
	"nash/communication/server"
	"nash/engine"
	"nash/game"

	"github.com/stretchr/testify/require"
)

func TestClientSolve(t *testing.T) {
	srv := httptest.NewServer(server.NewServer(engine.NewLocal(), 0).Handler())
	defer srv.Close()

	t.Run("round trip", func(t *testing.T) {
		doc, err := game.ParseYAML([]byte("strategic:\n  - [[1, -1], [-1, 1]]\n  - [[-1, 1], [1, -1]]\n"))
		require.NoError(t, err)
		resp, err := client.NewClient(srv.URL+"/").Solve(context.Background(), communication.SolveRequest{Game: doc, Exact: true})
		require.NoError(t, err)
		require.Len(t, resp.Equilibria, 1)
		require.Equal(t, []string{"1/2", "1/2"}, resp.Equilibria[0].Distributions[0].Probs)
	})

	t.Run("remote engine", func(t *testing.T) {
		doc, err := game.ParseYAML([]byte("strategic:\n  - [[1, 0], [0, 1]]\n  - [[1, 0], [0, 1]]\n"))
		require.NoError(t, err)
		resp, err := engine.NewRemote(srv.URL).Solve(context.Background(), communication.SolveRequest{Game: doc, Exact: true, MaxDepth: 1})
		require.NoError(t, err)
		require.Len(t, resp.Equilibria, 2)
	})

	t.Run("server refuses the game", func(t *testing.T) {
		doc, err := game.ParseYAML([]byte("tree:\n  players: 3\n  root: {payoffs: [1, 2, 3]}\n"))
		require.NoError(t, err)
		resp, err := client.NewClient(srv.URL).Solve(context.Background(), communication.SolveRequest{Game: doc})
		require.ErrorIs(t, err, client.ErrRemote)
		require.NotNil(t, resp)
		require.Contains(t, resp.Error, "undefined")
	})

	t.Run("plain text error", func(t *testing.T) {
		resp, err := client.NewClient(srv.URL).Solve(context.Background(), communication.SolveRequest{})
		require.ErrorIs(t, err, client.ErrRemote)
		require.Nil(t, resp)
	})

	t.Run("unreachable server", func(t *testing.T) {
		dead := httptest.NewServer(http.NotFoundHandler())
		url := dead.URL
		dead.Close()
		_, err := client.NewClient(url).Solve(context.Background(), communication.SolveRequest{})
		require.Error(t, err)
		require.NotErrorIs(t, err, client.ErrRemote)
	})
}
