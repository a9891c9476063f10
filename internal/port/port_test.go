package port

import (
	"context"
	"net"
	"testing"
	"time"
)

// listenLoopback binds an ephemeral loopback port and returns it with the
// listener kept open for the test's lifetime.
func listenLoopback(t *testing.T) (net.Listener, int) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	return ln, ln.Addr().(*net.TCPAddr).Port
}

func TestInUse(t *testing.T) {
	ln, p := listenLoopback(t)

	if !InUse(p) {
		t.Errorf("InUse(%d) = false with an open listener", p)
	}

	ln.Close()

	// Give the OS a moment to tear the listener down
	deadline := time.Now().Add(2 * time.Second)
	for InUse(p) && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}

	if InUse(p) {
		t.Errorf("InUse(%d) = true after listener closed", p)
	}
}

func TestInUseFreePort(t *testing.T) {
	// Bind and immediately release to find a port with no listener
	ln, p := listenLoopback(t)
	ln.Close()
	time.Sleep(50 * time.Millisecond)

	if InUse(p) {
		t.Errorf("InUse(%d) = true for a port with no listener", p)
	}
}

func TestWaitFree(t *testing.T) {
	calls := 0
	probe := Prober(func(int) bool {
		calls++
		return calls < 3 // occupied for the first two probes
	})

	ok := WaitFree(context.Background(), probe, 8080, 5, time.Millisecond)
	if !ok {
		t.Error("WaitFree = false; want true once the port frees up")
	}
	if calls != 3 {
		t.Errorf("probe called %d times; want 3", calls)
	}
}

func TestWaitFreeGivesUp(t *testing.T) {
	occupied := Prober(func(int) bool { return true })

	if WaitFree(context.Background(), occupied, 8080, 3, time.Millisecond) {
		t.Error("WaitFree = true for a permanently occupied port")
	}
}

func TestWaitFreeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	occupied := Prober(func(int) bool { return true })
	if WaitFree(ctx, occupied, 8080, 10, time.Second) {
		t.Error("WaitFree = true after context cancellation")
	}
}

func TestWaitBound(t *testing.T) {
	calls := 0
	probe := Prober(func(int) bool {
		calls++
		return calls >= 2 // bound on the second probe
	})

	ok := WaitBound(context.Background(), probe, 8080, time.Second, time.Millisecond)
	if !ok {
		t.Error("WaitBound = false; want true once the listener appears")
	}
}

func TestWaitBoundTimeout(t *testing.T) {
	free := Prober(func(int) bool { return false })

	start := time.Now()
	ok := WaitBound(context.Background(), free, 8080, 20*time.Millisecond, 5*time.Millisecond)
	if ok {
		t.Error("WaitBound = true for a port that never binds")
	}
	if time.Since(start) > 2*time.Second {
		t.Error("WaitBound overran its timeout")
	}
}
