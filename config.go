package main

import (
	"flag"
	"fmt"
	"time"

	"nash/meta"

	"github.com/caarlos0/env/v11"
)

// Config holds the command configuration. Environment variables give the
// defaults and flags override them.
type Config struct {
	StopAfter  int           `env:"NASH_STOP_AFTER"  envDefault:"0"`
	MaxDepth   int           `env:"NASH_MAX_DEPTH"   envDefault:"0"`
	Exact      bool          `env:"NASH_EXACT"       envDefault:"true"`
	Tolerance  float64       `env:"NASH_TOLERANCE"   envDefault:"1e-9"`
	LogLevel   string        `env:"NASH_LOG_LEVEL"   envDefault:"info"`
	OutDir     string        `env:"NASH_OUT_DIR"`
	Addr       string        `env:"NASH_ADDR"        envDefault:":8080"`
	Remote     string        `env:"NASH_REMOTE"`
	Timeout    time.Duration `env:"NASH_TIMEOUT"     envDefault:"0s"`
	Lang       string        `env:"NASH_LANG"        envDefault:"en"`
	Serve      bool
	Experiment string
	Seed       uint64
	Game       string
}

// ParseConfig parses the environment and then flags into a Config. The game
// file is the first positional argument.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs.IntVar(&cfg.StopAfter, "stop-after", cfg.StopAfter, "stop after this many equilibria (0 = all reachable)")
	fs.IntVar(&cfg.MaxDepth, "max-depth", cfg.MaxDepth, "maximum branching depth (0 = unlimited)")
	fs.BoolVar(&cfg.Exact, "exact", cfg.Exact, "use exact rational arithmetic")
	fs.Float64Var(&cfg.Tolerance, "tolerance", cfg.Tolerance, "comparison tolerance of floating arithmetic")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.OutDir, "out", cfg.OutDir, "directory for csv results")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address with -serve")
	fs.StringVar(&cfg.Remote, "remote", cfg.Remote, "solve on this server instead of locally")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "time limit per solve (0 = none)")
	fs.StringVar(&cfg.Lang, "lang", cfg.Lang, "language of the printed summary")
	fs.BoolVar(&cfg.Serve, "serve", false, "run the solve server")
	fs.StringVar(&cfg.Experiment, "experiment", "", "run an experiment: agreement or throughput")
	fs.Uint64Var(&cfg.Seed, "seed", 1, "random seed of experiments")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.Game = fs.Arg(0)

	if cfg.StopAfter < 0 || cfg.MaxDepth < 0 {
		return Config{}, fmt.Errorf("limits must not be negative")
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = meta.TOLERANCE
	}
	if cfg.Tolerance >= meta.PERTURBATION {
		return Config{}, fmt.Errorf("tolerance %g must be below %g", cfg.Tolerance, meta.PERTURBATION)
	}
	return cfg, nil
}
