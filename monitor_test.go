package onionfetch

import (
	"testing"
	"time"
)

// Log should report and reset counters
func TestMonitor(t *testing.T) {
	var got Stats
	testMonitor := MonitorFunc(100*time.Second, func(s Stats) {
		got = s
	})
	for i := 0; i < 4; i++ {
		testMonitor.Hit()
	}
	testMonitor.Miss()
	testMonitor.Timeout()
	testMonitor.Log(Stats{Size: 3})
	if got.Hits != 4 || got.Misses != 1 || got.Timeouts != 1 || got.Size != 3 {
		t.Fatalf("Monitor not logging correctly (%+v)", got)
	}
	testMonitor.Log(Stats{})
	if got.Hits != 0 {
		t.Fatalf("Monitor not reset after Log (%d hits)", got.Hits)
	}
}
