package onionfetch

import (
	"time"
)

// Monitor is an interface for collecting metrics about the client
type Monitor interface {
	GetInterval() time.Duration
	Log(Stats)
	Hit()
	Miss()
	Backend()
	Error()
	Timeout()
	Cancel()
}

// Stats is the snapshot handed to Monitor.Log once per interval.
// Counters cover the interval only.
type Stats struct {
	Size     int
	Hits     int
	Misses   int
	Backend  int
	Errors   int
	Timeouts int
	Cancels  int
}
