package metrics

import (
	"sync/atomic"
	"time"
)

type SolveMetric struct {
	Duration    time.Duration
	StopAfter   int
	MaxDepth    int
	Paths       int
	Pivots      int
	DeadEnds    int
	Equilibria  int
	Depth       int // deepest branch explored
	Interrupted bool
}

// RunRecord is one solve of one game in an experiment.
type RunRecord struct {
	ID     int
	Game   string
	Rows   int
	Cols   int
	Exact  bool
	Agreed bool // same supports as the other field
	SolveMetric
}

// EquilibriumRecord is one probability of one equilibrium.
type EquilibriumRecord struct {
	Run         int // RunRecord.ID
	Equilibrium int
	Player      int
	Infoset     int // -1 in strategic form
	Action      int
	Probability string
}

type Collector interface {
	Start(stopAfter, maxDepth int)
	AddPath()
	AddPivots(n int)
	AddDeadEnd()
	AddEquilibrium()
	SetDepth(depth int)
	SetInterrupted(value bool)
	Complete() SolveMetric
}

type collector struct {
	stopAfter   int
	maxDepth    int
	startTime   time.Time
	paths       atomic.Int32
	pivots      atomic.Int64
	deadEnds    atomic.Int32
	equilibria  atomic.Int32
	depth       atomic.Int32
	interrupted atomic.Bool
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(stopAfter, maxDepth int) {
	m.startTime = time.Now()
	m.stopAfter = stopAfter
	m.maxDepth = maxDepth
}

func (m *collector) AddPath() {
	m.paths.Add(1)
}

func (m *collector) AddPivots(n int) {
	m.pivots.Add(int64(n))
}

func (m *collector) AddDeadEnd() {
	m.deadEnds.Add(1)
}

func (m *collector) AddEquilibrium() {
	m.equilibria.Add(1)
}

func (m *collector) SetDepth(depth int) {
	for {
		current := m.depth.Load()
		if int32(depth) <= current || m.depth.CompareAndSwap(current, int32(depth)) {
			return
		}
	}
}

func (m *collector) SetInterrupted(value bool) {
	m.interrupted.Store(value)
}

func (m *collector) Complete() SolveMetric {
	return SolveMetric{
		Duration:    time.Since(m.startTime),
		StopAfter:   m.stopAfter,
		MaxDepth:    m.maxDepth,
		Paths:       int(m.paths.Load()),
		Pivots:      int(m.pivots.Load()),
		DeadEnds:    int(m.deadEnds.Load()),
		Equilibria:  int(m.equilibria.Load()),
		Depth:       int(m.depth.Load()),
		Interrupted: m.interrupted.Load(),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(stopAfter, maxDepth int) {}
func (m *dummyCollector) AddPath()                      {}
func (m *dummyCollector) AddPivots(n int)               {}
func (m *dummyCollector) AddDeadEnd()                   {}
func (m *dummyCollector) AddEquilibrium()               {}
func (m *dummyCollector) SetDepth(depth int)            {}
func (m *dummyCollector) SetInterrupted(value bool)     {}
func (m *dummyCollector) Complete() SolveMetric         { return SolveMetric{} }
