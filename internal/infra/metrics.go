package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	ticksProcessed atomic.Uint64
	haltsTriggered atomic.Uint64
	resumes        atomic.Uint64
	gameEvents     atomic.Uint64
	pricingFaults  atomic.Uint64
	broadcastDrops atomic.Uint64
	tradesFilled   atomic.Uint64

	// Tick latency tracking
	tickLatencySumNs atomic.Int64
	tickLatencyCount atomic.Uint64

	// Gauges
	activeClients atomic.Int32
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordTick records one completed tick with its latency.
func (m *Metrics) RecordTick(latencyNs int64) {
	m.ticksProcessed.Add(1)
	m.tickLatencySumNs.Add(latencyNs)
	m.tickLatencyCount.Add(1)
}

// RecordHalt records a circuit-breaker trigger.
func (m *Metrics) RecordHalt() {
	m.haltsTriggered.Add(1)
}

// RecordResume records a circuit-breaker resume.
func (m *Metrics) RecordResume() {
	m.resumes.Add(1)
}

// RecordGameEvent records one applied live game event.
func (m *Metrics) RecordGameEvent() {
	m.gameEvents.Add(1)
}

// RecordPricingFault records an isolated per-instrument numeric fault.
func (m *Metrics) RecordPricingFault() {
	m.pricingFaults.Add(1)
}

// RecordBroadcastDrop records a frame dropped on a slow websocket client.
func (m *Metrics) RecordBroadcastDrop() {
	m.broadcastDrops.Add(1)
}

// RecordTradeFilled records a portfolio fill.
func (m *Metrics) RecordTradeFilled() {
	m.tradesFilled.Add(1)
}

// IncrementClients increments active websocket clients by 1.
func (m *Metrics) IncrementClients() {
	m.activeClients.Add(1)
}

// DecrementClients decrements active websocket clients by 1.
func (m *Metrics) DecrementClients() {
	m.activeClients.Add(-1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	TicksProcessed uint64
	HaltsTriggered uint64
	Resumes        uint64
	GameEvents     uint64
	PricingFaults  uint64
	BroadcastDrops uint64
	TradesFilled   uint64
	AvgTickNs      int64
	ActiveClients  int32
	Timestamp      time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgTick int64
	count := m.tickLatencyCount.Load()
	if count > 0 {
		avgTick = m.tickLatencySumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		TicksProcessed: m.ticksProcessed.Load(),
		HaltsTriggered: m.haltsTriggered.Load(),
		Resumes:        m.resumes.Load(),
		GameEvents:     m.gameEvents.Load(),
		PricingFaults:  m.pricingFaults.Load(),
		BroadcastDrops: m.broadcastDrops.Load(),
		TradesFilled:   m.tradesFilled.Load(),
		AvgTickNs:      avgTick,
		ActiveClients:  m.activeClients.Load(),
		Timestamp:      time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.ticksProcessed.Store(0)
	m.haltsTriggered.Store(0)
	m.resumes.Store(0)
	m.gameEvents.Store(0)
	m.pricingFaults.Store(0)
	m.broadcastDrops.Store(0)
	m.tradesFilled.Store(0)
	m.tickLatencySumNs.Store(0)
	m.tickLatencyCount.Store(0)
	m.activeClients.Store(0)
}
