package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"nash/communication"
	"nash/engine"
	"nash/game"
	"nash/lcp"

	"github.com/rs/zerolog/log"
)

const maxRequestBytes = 8 << 20

type Server struct {
	engine  engine.Engine
	timeout time.Duration
	mux     *http.ServeMux
}

// NewServer serves e over HTTP. A positive timeout bounds each solve; the
// equilibria found until then are still returned.
func NewServer(e engine.Engine, timeout time.Duration) *Server {
	s := &Server{
		engine:  e,
		timeout: timeout,
		mux:     http.NewServeMux(),
	}
	s.mux.HandleFunc("/solve", s.handleSolve)
	s.mux.HandleFunc("/health", s.handleHealth)
	return s
}

func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe runs until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.mux}
	errs := make(chan error, 1)
	go func() {
		log.Info().Msgf("solve server listening on %s", addr)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req communication.SolveRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid json: %v", err), http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := s.engine.Solve(ctx, req)
	status := http.StatusOK
	if err != nil {
		status = statusFor(err)
		log.Warn().Err(err).Msg("solve failed")
		if resp == nil {
			resp = &communication.SolveResponse{Equilibria: []communication.Equilibrium{}, Error: err.Error()}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Msg("failed to write solve response")
	}
}

// statusFor separates games the solver cannot handle from internal failures.
func statusFor(err error) int {
	switch {
	case errors.Is(err, lcp.ErrUndefined),
		errors.Is(err, game.ErrInvalidDocument),
		errors.Is(err, game.ErrInvalidPayoffs),
		errors.Is(err, game.ErrInvalidPlayer),
		errors.Is(err, game.ErrInvalidInfoset),
		errors.Is(err, game.ErrInvalidChance),
		errors.Is(err, communication.ErrInvalidRequest):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
