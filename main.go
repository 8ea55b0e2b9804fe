package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"nash/communication"
	"nash/communication/server"
	"nash/engine"
	"nash/experiments"
	"nash/experiments/metrics"
	"nash/game"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func main() {
	fs := flag.NewFlagSet("nash", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: nash [flags] game.yaml\n       nash -serve [flags]\n       nash -experiment agreement|throughput [flags]\n")
		fs.PrintDefaults()
	}
	cfg, err := ParseConfig(fs, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		log.Error().Err(err).Msg("nash failed")
		os.Exit(1)
	}
}

// Run executes the command described by cfg.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: errOut}).Level(level).With().Timestamp().Logger()

	switch {
	case cfg.Serve:
		return server.NewServer(engine.NewLocal(), cfg.Timeout).ListenAndServe(ctx, cfg.Addr)
	case cfg.Experiment == "agreement":
		return experiments.RunAgreementExperiment(ctx, outDir(cfg), cfg.Seed)
	case cfg.Experiment == "throughput":
		return experiments.RunThroughputExperiment(ctx, outDir(cfg), cfg.Seed)
	case cfg.Experiment != "":
		return fmt.Errorf("unknown experiment %q", cfg.Experiment)
	case cfg.Game == "":
		return errors.New("game file is required")
	}
	return solveFile(ctx, cfg, out)
}

func outDir(cfg Config) string {
	if cfg.OutDir != "" {
		return cfg.OutDir
	}
	return "experiments"
}

func solveFile(ctx context.Context, cfg Config, out io.Writer) error {
	tag, err := language.Parse(cfg.Lang)
	if err != nil {
		return fmt.Errorf("invalid language %q: %w", cfg.Lang, err)
	}
	printer := message.NewPrinter(tag)

	doc, err := game.Load(cfg.Game)
	if err != nil {
		return err
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	var e engine.Engine = engine.NewLocal()
	if cfg.Remote != "" {
		e = engine.NewRemote(cfg.Remote)
	}
	req := communication.SolveRequest{
		Game:      doc,
		StopAfter: cfg.StopAfter,
		MaxDepth:  cfg.MaxDepth,
		Exact:     cfg.Exact,
		Tolerance: cfg.Tolerance,
	}
	resp, solveErr := e.Solve(ctx, req)
	if resp == nil {
		return solveErr
	}

	if doc.Title != "" {
		fmt.Fprintf(out, "%s\n", doc.Title)
	}
	for i, eq := range resp.Equilibria {
		fmt.Fprintf(out, "equilibrium %d:", i+1)
		for _, d := range eq.Distributions {
			if d.Infoset < 0 {
				fmt.Fprintf(out, " p%d=[%s]", d.Player, strings.Join(d.Probs, " "))
			} else {
				fmt.Fprintf(out, " p%d/%d=[%s]", d.Player, d.Infoset, strings.Join(d.Probs, " "))
			}
		}
		fmt.Fprintf(out, " payoffs=%v\n", eq.Payoffs)
	}
	m := resp.Metrics
	printer.Fprintf(out, "%d equilibria, %d paths, %d pivots, %d dead ends, depth %d, %s\n",
		len(resp.Equilibria), m.Paths, m.Pivots, m.DeadEnds, m.Depth, m.Duration)
	if m.Interrupted {
		fmt.Fprintln(out, "interrupted, results are partial")
	}

	if cfg.OutDir != "" {
		if err := writeResults(cfg, resp); err != nil {
			return err
		}
	}
	return solveErr
}

func writeResults(cfg Config, resp *communication.SolveResponse) error {
	writer, err := metrics.NewWriter(cfg.OutDir)
	if err != nil {
		return err
	}
	m := resp.Metrics
	run := metrics.RunRecord{
		ID:    1,
		Game:  cfg.Game,
		Exact: cfg.Exact,
		SolveMetric: metrics.SolveMetric{
			StopAfter:   cfg.StopAfter,
			MaxDepth:    cfg.MaxDepth,
			Paths:       m.Paths,
			Pivots:      m.Pivots,
			DeadEnds:    m.DeadEnds,
			Equilibria:  m.Equilibria,
			Depth:       m.Depth,
			Interrupted: m.Interrupted,
		},
	}
	if err := writer.WriteRunRecords([]metrics.RunRecord{run}); err != nil {
		return err
	}

	var records []metrics.EquilibriumRecord
	for i, eq := range resp.Equilibria {
		for _, d := range eq.Distributions {
			for a, p := range d.Probs {
				records = append(records, metrics.EquilibriumRecord{
					Run:         1,
					Equilibrium: i + 1,
					Player:      d.Player,
					Infoset:     d.Infoset,
					Action:      a,
					Probability: p,
				})
			}
		}
	}
	if err := writer.WriteEquilibria(records); err != nil {
		return err
	}
	log.Info().Msgf("results in %s", writer.Dir())
	return nil
}
