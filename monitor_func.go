package onionfetch

import (
	"sync"
	"time"
)

// MonitorFunc turns a function into a Monitor
func MonitorFunc(interval time.Duration, logFunc func(Stats)) Monitor {
	return &monitorFunc{
		interval: interval,
		logFunc:  logFunc,
	}
}

type monitorFunc struct {
	interval time.Duration
	logFunc  func(Stats)
	mu       sync.Mutex
	hits     int
	misses   int
	backend  int
	errors   int
	timeouts int
	cancels  int
}

func (m *monitorFunc) GetInterval() time.Duration {
	return m.interval
}

// Log hands the counters to logFunc and resets them
func (m *monitorFunc) Log(stats Stats) {
	m.mu.Lock()
	stats.Hits, m.hits = m.hits, 0
	stats.Misses, m.misses = m.misses, 0
	stats.Backend, m.backend = m.backend, 0
	stats.Errors, m.errors = m.errors, 0
	stats.Timeouts, m.timeouts = m.timeouts, 0
	stats.Cancels, m.cancels = m.cancels, 0
	m.mu.Unlock()

	m.logFunc(stats)
}

func (m *monitorFunc) Hit() {
	m.mu.Lock()
	m.hits++
	m.mu.Unlock()
}

func (m *monitorFunc) Miss() {
	m.mu.Lock()
	m.misses++
	m.mu.Unlock()
}

func (m *monitorFunc) Backend() {
	m.mu.Lock()
	m.backend++
	m.mu.Unlock()
}

func (m *monitorFunc) Error() {
	m.mu.Lock()
	m.errors++
	m.mu.Unlock()
}

func (m *monitorFunc) Timeout() {
	m.mu.Lock()
	m.timeouts++
	m.mu.Unlock()
}

func (m *monitorFunc) Cancel() {
	m.mu.Lock()
	m.cancels++
	m.mu.Unlock()
}

// nopMonitor is used when no Monitor is configured
type nopMonitor struct{}

func (nopMonitor) GetInterval() time.Duration { return 0 }
func (nopMonitor) Log(Stats)                  {}
func (nopMonitor) Hit()                       {}
func (nopMonitor) Miss()                      {}
func (nopMonitor) Backend()                   {}
func (nopMonitor) Error()                     {}
func (nopMonitor) Timeout()                   {}
func (nopMonitor) Cancel()                    {}
