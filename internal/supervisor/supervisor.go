// Package supervisor manages the lifecycle of the assistant API server
// child process: cleaning up stale instances bound to its port, launching
// the child with captured output, confirming it bound the port, and
// tearing it down on shutdown.
package supervisor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/clinicboard/medassist/internal/debug"
	"github.com/clinicboard/medassist/internal/port"
	"github.com/clinicboard/medassist/internal/proc"
)

// State is the supervisor lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateCleaningUp
	StateLaunching
	StateRunning
	StateShuttingDown
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCleaningUp:
		return "cleaning-up"
	case StateLaunching:
		return "launching"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting-down"
	default:
		return "unknown"
	}
}

// Default timing for cleanup and startup polling.
const (
	DefaultReleaseAttempts = 5
	DefaultReleaseInterval = 500 * time.Millisecond
	DefaultStartupTimeout  = 30 * time.Second
	DefaultStartupInterval = 500 * time.Millisecond
	DefaultSweepTimeout    = 5 * time.Second
)

// Config holds everything the supervisor needs. All state lives here
// explicitly; there are no package-level paths or mode flags.
type Config struct {
	// Port is the TCP port the child is expected to bind.
	Port int

	// PIDFile is the sidecar file recording the child's process id.
	PIDFile string

	// LogFile captures the child's combined output; truncated per launch.
	LogFile string

	// Hosted skips the port sweep and suppresses cleanup failures.
	Hosted bool

	// Command and Args describe the child process.
	Command string
	Args    []string

	// Polling knobs; zero values take the defaults above.
	ReleaseAttempts int
	ReleaseInterval time.Duration
	StartupTimeout  time.Duration
	StartupInterval time.Duration
	SweepTimeout    time.Duration
}

// Supervisor drives one launch of the child process.
type Supervisor struct {
	cfg      Config
	platform proc.Platform
	probe    port.Prober

	state atomic.Int32

	cmd          *exec.Cmd
	logFile      *os.File
	childPID     atomic.Int32
	shutdownOnce sync.Once
}

// Option customizes a Supervisor.
type Option func(*Supervisor)

// WithPlatform overrides the OS process capability. Used in tests.
func WithPlatform(p proc.Platform) Option {
	return func(s *Supervisor) { s.platform = p }
}

// WithProber overrides the port probe. Used in tests.
func WithProber(p port.Prober) Option {
	return func(s *Supervisor) { s.probe = p }
}

// New creates a supervisor for the given configuration.
func New(cfg Config, opts ...Option) *Supervisor {
	if cfg.ReleaseAttempts <= 0 {
		cfg.ReleaseAttempts = DefaultReleaseAttempts
	}
	if cfg.ReleaseInterval <= 0 {
		cfg.ReleaseInterval = DefaultReleaseInterval
	}
	if cfg.StartupTimeout <= 0 {
		cfg.StartupTimeout = DefaultStartupTimeout
	}
	if cfg.StartupInterval <= 0 {
		cfg.StartupInterval = DefaultStartupInterval
	}
	if cfg.SweepTimeout <= 0 {
		cfg.SweepTimeout = DefaultSweepTimeout
	}

	s := &Supervisor{
		cfg:      cfg,
		platform: proc.Native(),
		probe:    port.InUse,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	return State(s.state.Load())
}

// ChildPID returns the launched child's process id, or 0 before launch.
func (s *Supervisor) ChildPID() int {
	return int(s.childPID.Load())
}

// Cleanup frees the target port from any stale prior instance: kill by
// recorded pid, then (outside hosted mode) sweep every listener on the
// port, then poll for release. Failures are warnings; the launch proceeds
// regardless.
//
// The sweep terminates whatever owns the port, whether or not this
// application started it. Every killed pid is logged.
func (s *Supervisor) Cleanup(ctx context.Context) error {
	// Shutdown reuses this sequence; it stays in the shutting-down state.
	if s.State() != StateShuttingDown {
		s.state.Store(int32(StateCleaningUp))
	}

	if !s.probe(s.cfg.Port) {
		debug.Log("supervisor", "port %d is free", s.cfg.Port)
		return nil
	}

	debug.Info("supervisor", "port %d is in use, cleaning up", s.cfg.Port)

	// Kill by recorded pid first
	if pid, err := ReadPIDFile(s.cfg.PIDFile); err == nil {
		debug.Info("supervisor", "killing recorded pid %d", pid)
		if err := s.platform.KillTree(pid); err != nil {
			debug.Warn("supervisor", "kill of pid %d failed: %v", pid, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.cfg.ReleaseInterval):
		}
	} else if err != ErrNoSidecar {
		debug.Warn("supervisor", "unusable pid file: %v", err)
	}

	// Sweep every listener on the port, unless a managed environment
	// owns process lifecycle
	if s.probe(s.cfg.Port) && !s.cfg.Hosted {
		s.sweep(ctx)
	}

	if !port.WaitFree(ctx, s.probe, s.cfg.Port, s.cfg.ReleaseAttempts, s.cfg.ReleaseInterval) {
		debug.Warn("supervisor", "port %d still in use after cleanup attempts", s.cfg.Port)
	} else {
		debug.Log("supervisor", "port %d released", s.cfg.Port)
	}

	return ctx.Err()
}

// sweep kills each process listening on the target port.
func (s *Supervisor) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, s.cfg.SweepTimeout)
	defer cancel()

	pids, err := s.platform.ListenersOnPort(sweepCtx, s.cfg.Port)
	if err != nil {
		debug.Warn("supervisor", "listener enumeration failed: %v", err)
		return
	}

	self := os.Getpid()
	for _, pid := range pids {
		if pid == self {
			continue
		}
		debug.Warn("supervisor", "killing pid %d bound to port %d", pid, s.cfg.Port)
		if err := s.platform.KillTree(pid); err != nil {
			debug.Warn("supervisor", "kill of pid %d failed: %v", pid, err)
		}
	}
}

// Launch spawns the child process with its combined output redirected to
// the (truncated) log file and records its pid in the sidecar file.
func (s *Supervisor) Launch(ctx context.Context) (int, error) {
	s.state.Store(int32(StateLaunching))

	logFile, err := os.Create(s.cfg.LogFile)
	if err != nil {
		return 0, fmt.Errorf("failed to create child log file: %w", err)
	}

	cmd := exec.Command(s.cfg.Command, s.cfg.Args...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.Env = os.Environ()
	proc.SetProcAttr(cmd)

	if err := cmd.Start(); err != nil {
		logFile.Close()
		return 0, fmt.Errorf("failed to start %s: %w", s.cfg.Command, err)
	}

	s.cmd = cmd
	s.logFile = logFile
	s.childPID.Store(int32(cmd.Process.Pid))

	// Reap the child when it exits
	go func() { _ = cmd.Wait() }()

	if err := WritePIDFile(s.cfg.PIDFile, cmd.Process.Pid); err != nil {
		debug.Warn("supervisor", "%v", err)
	}

	debug.Info("supervisor", "started %s (pid %d) on port %d", s.cfg.Command, cmd.Process.Pid, s.cfg.Port)
	return cmd.Process.Pid, nil
}

// WaitReady polls until the child binds the port. On timeout it surfaces
// the tail of the child's log as a diagnostic but does not kill the
// launch; the operator decides what to do.
func (s *Supervisor) WaitReady(ctx context.Context) bool {
	if port.WaitBound(ctx, s.probe, s.cfg.Port, s.cfg.StartupTimeout, s.cfg.StartupInterval) {
		s.state.Store(int32(StateRunning))
		debug.Info("supervisor", "child is serving on port %d", s.cfg.Port)
		return true
	}

	debug.Warn("supervisor", "child did not bind port %d within %s", s.cfg.Port, s.cfg.StartupTimeout)
	if tail := s.logTail(); tail != "" {
		debug.Warn("supervisor", "child log tail:\n%s", tail)
	}
	return false
}

// Shutdown runs the cleanup sequence against the launched child and
// removes the sidecar file. It executes at most once; later calls are
// no-ops. The hosting command wires its signal handling to this method.
func (s *Supervisor) Shutdown(ctx context.Context) {
	s.shutdownOnce.Do(func() {
		s.state.Store(int32(StateShuttingDown))
		debug.Info("supervisor", "stopping child on port %d", s.cfg.Port)

		// Kill the child we own directly; the cleanup sequence below
		// handles anything else still bound to the port.
		if pid := s.ChildPID(); pid > 0 {
			if err := s.platform.KillTree(pid); err != nil {
				debug.Warn("supervisor", "kill of child pid %d failed: %v", pid, err)
			}
		}

		if err := s.Cleanup(ctx); err != nil {
			debug.Warn("supervisor", "cleanup during shutdown: %v", err)
		}

		RemovePIDFile(s.cfg.PIDFile)

		if s.logFile != nil {
			s.logFile.Close()
			s.logFile = nil
		}
		s.state.Store(int32(StateIdle))
	})
}

// logTail returns up to the last 2KB of the child's log file.
func (s *Supervisor) logTail() string {
	data, err := os.ReadFile(s.cfg.LogFile)
	if err != nil {
		return ""
	}
	const tailSize = 2048
	if len(data) > tailSize {
		data = data[len(data)-tailSize:]
	}
	return string(data)
}
