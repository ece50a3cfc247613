package wallet

import (
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// NoopMetricsCollector is a no-op implementation of MetricsCollector
type NoopMetricsCollector struct{}

func (n *NoopMetricsCollector) RecordOperationDuration(string, time.Duration)               {}
func (n *NoopMetricsCollector) RecordOperationResult(string, string)                        {}
func (n *NoopMetricsCollector) RecordCacheHit(string)                                       {}
func (n *NoopMetricsCollector) RecordCacheMiss(string)                                      {}
func (n *NoopMetricsCollector) RecordBalanceChange(int64, decimal.Decimal, decimal.Decimal) {}
func (n *NoopMetricsCollector) RecordError(string, string)                                  {}
func (n *NoopMetricsCollector) RecordTransaction(string, decimal.Decimal)                   {}

// HitStats counts cache lookups for one key family.
type HitStats struct {
	Hits   int64   `json:"hits"`
	Misses int64   `json:"misses"`
	Ratio  float64 `json:"ratio"`
}

type OperationStats struct {
	Count     int64   `json:"count"`
	Failures  int64   `json:"failures"`
	AvgMillis float64 `json:"avgMillis"`
}

type VolumeStats struct {
	Count  int64           `json:"count"`
	Volume decimal.Decimal `json:"volume"`
}

// StatsSnapshot is a point in time copy of the counters kept by
// StatsCollector.
type StatsSnapshot struct {
	Cache        HitStats                  `json:"cache"`
	CacheByKind  map[string]HitStats       `json:"cacheByKind"`
	Operations   map[string]OperationStats `json:"operations"`
	Errors       map[string]int64          `json:"errors"`
	Transactions map[string]VolumeStats    `json:"transactions"`

	// NetBalance is the sum of every recorded balance change.
	BalanceChanges int64           `json:"balanceChanges"`
	NetBalance     decimal.Decimal `json:"netBalance"`
}

type opCounter struct {
	count    int64
	failures int64
	total    time.Duration
}

// StatsCollector keeps in-process counters for the ledger. Cache lookups
// are grouped by the first segment of the key.
type StatsCollector struct {
	mu      sync.Mutex
	hits    map[string]int64
	misses  map[string]int64
	ops     map[string]*opCounter
	errors  map[string]int64
	volumes map[string]VolumeStats

	balanceChanges int64
	netBalance     decimal.Decimal
}

func NewStatsCollector() *StatsCollector {
	return &StatsCollector{
		hits:    make(map[string]int64),
		misses:  make(map[string]int64),
		ops:     make(map[string]*opCounter),
		errors:  make(map[string]int64),
		volumes: make(map[string]VolumeStats),
	}
}

func keyKind(key string) string {
	kind, _, _ := strings.Cut(key, ":")
	return kind
}

func (s *StatsCollector) op(name string) *opCounter {
	c, ok := s.ops[name]
	if !ok {
		c = &opCounter{}
		s.ops[name] = c
	}
	return c
}

func (s *StatsCollector) RecordOperationDuration(operation string, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.op(operation)
	c.count++
	c.total += duration
}

func (s *StatsCollector) RecordOperationResult(operation, result string) {
	if result == "success" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.op(operation).failures++
}

func (s *StatsCollector) RecordCacheHit(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits[keyKind(key)]++
}

func (s *StatsCollector) RecordCacheMiss(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.misses[keyKind(key)]++
}

func (s *StatsCollector) RecordBalanceChange(_ int64, oldBalance, newBalance decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balanceChanges++
	s.netBalance = s.netBalance.Add(newBalance.Sub(oldBalance))
}

func (s *StatsCollector) RecordError(operation, kind string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors[operation+":"+kind]++
}

func (s *StatsCollector) RecordTransaction(txType string, value decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.volumes[txType]
	v.Count++
	v.Volume = v.Volume.Add(value)
	s.volumes[txType] = v
}

func (s *StatsCollector) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := StatsSnapshot{
		BalanceChanges: s.balanceChanges,
		NetBalance:     s.netBalance,
		CacheByKind:    make(map[string]HitStats),
		Operations:     make(map[string]OperationStats, len(s.ops)),
		Errors:         make(map[string]int64, len(s.errors)),
		Transactions:   make(map[string]VolumeStats, len(s.volumes)),
	}
	for kind, n := range s.hits {
		h := snap.CacheByKind[kind]
		h.Hits = n
		snap.CacheByKind[kind] = h
		snap.Cache.Hits += n
	}
	for kind, n := range s.misses {
		h := snap.CacheByKind[kind]
		h.Misses = n
		snap.CacheByKind[kind] = h
		snap.Cache.Misses += n
	}
	for kind, h := range snap.CacheByKind {
		h.Ratio = hitRatio(h.Hits, h.Misses)
		snap.CacheByKind[kind] = h
	}
	snap.Cache.Ratio = hitRatio(snap.Cache.Hits, snap.Cache.Misses)

	for name, c := range s.ops {
		st := OperationStats{Count: c.count, Failures: c.failures}
		if c.count > 0 {
			st.AvgMillis = float64(c.total.Milliseconds()) / float64(c.count)
		}
		snap.Operations[name] = st
	}
	for k, n := range s.errors {
		snap.Errors[k] = n
	}
	for k, v := range s.volumes {
		snap.Transactions[k] = v
	}
	return snap
}

func hitRatio(hits, misses int64) float64 {
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses) * 100
}
