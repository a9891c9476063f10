// Package port probes TCP ports on the local loopback interface.
package port

import (
	"context"
	"net"
	"strconv"
	"time"
)

// probeTimeout bounds a single connection attempt.
const probeTimeout = 1 * time.Second

// Prober reports whether a TCP listener is bound to a loopback port.
// It is a function type so tests and the supervisor can substitute fakes.
type Prober func(port int) bool

// InUse reports whether something is listening on the given loopback port.
// Any socket-level error reads as "not in use": the probe fails open.
func InUse(port int) bool {
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", addr, probeTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// WaitFree polls until the port is free, up to attempts probes spaced by
// interval. It returns true if the port was observed free.
func WaitFree(ctx context.Context, probe Prober, port, attempts int, interval time.Duration) bool {
	for i := 0; i < attempts; i++ {
		if !probe(port) {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(interval):
		}
	}
	return !probe(port)
}

// WaitBound polls until the port is occupied, up to the given timeout,
// probing every interval. It returns true if a listener appeared.
func WaitBound(ctx context.Context, probe Prober, port int, timeout, interval time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if probe(port) {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(interval):
		}
	}
	return probe(port)
}
