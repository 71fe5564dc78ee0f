package searcher

import (
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	Goroutines int
	MaxDepth   int
	Depth      int // Deepest fully completed depth
	Duration   time.Duration
	Nodes      int64
	Cutoffs    int64
	TableHits  int64
	Partial    bool // The move came from an interrupted iteration
}

type Collector interface {
	Start(goroutines, maxDepth int)
	AddNode()
	AddCutoff()
	AddTableHit()
	CompleteDepth(depth int)
	SetPartial()
	Complete() SearchMetric
}

type collector struct {
	goroutines int
	maxDepth   int
	startTime  time.Time
	depth      atomic.Int32
	nodes      atomic.Int64
	cutoffs    atomic.Int64
	tableHits  atomic.Int64
	partial    atomic.Bool
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(goroutines, maxDepth int) {
	m.startTime = time.Now()
	m.goroutines = goroutines
	m.maxDepth = maxDepth
}

func (m *collector) AddNode() {
	m.nodes.Add(1)
}

func (m *collector) AddCutoff() {
	m.cutoffs.Add(1)
}

func (m *collector) AddTableHit() {
	m.tableHits.Add(1)
}

func (m *collector) CompleteDepth(depth int) {
	m.depth.Store(int32(depth))
}

func (m *collector) SetPartial() {
	m.partial.Store(true)
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Goroutines: m.goroutines,
		MaxDepth:   m.maxDepth,
		Depth:      int(m.depth.Load()),
		Duration:   time.Since(m.startTime),
		Nodes:      m.nodes.Load(),
		Cutoffs:    m.cutoffs.Load(),
		TableHits:  m.tableHits.Load(),
		Partial:    m.partial.Load(),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(goroutines, maxDepth int) {}
func (m *dummyCollector) AddNode()                       {}
func (m *dummyCollector) AddCutoff()                     {}
func (m *dummyCollector) AddTableHit()                   {}
func (m *dummyCollector) CompleteDepth(depth int)        {}
func (m *dummyCollector) SetPartial()                    {}
func (m *dummyCollector) Complete() SearchMetric         { return SearchMetric{} }
