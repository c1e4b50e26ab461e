// Copyright (c) 2026 SSHHub Team
// SSHHub - SSH connection hub
// This source code is licensed under the MIT license found in the LICENSE file.

package probe

import (
	"context"
	"errors"
	"net"
	"os"
	"strconv"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/toeirei/sshhub/internal/model"
)

// closedPort returns a localhost port with nothing listening on it.
func closedPort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	_ = l.Close()
	return port
}

// blockingDial never connects; it returns when the context ends.
func blockingDial(ctx context.Context, _, _ string) (net.Conn, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestProbe_Online(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer func() { _ = l.Close() }()
	go func() {
		for {
			c, err := l.Accept()
			if err != nil {
				return
			}
			_ = c.Close()
		}
	}()

	port := l.Addr().(*net.TCPAddr).Port
	if got := Probe(context.Background(), "127.0.0.1", port, DefaultTimeout); got != model.Online {
		t.Fatalf("expected Online, got %s", got)
	}
}

func TestProbe_ClosedPortIsOfflineWithinBound(t *testing.T) {
	port := closedPort(t)
	start := time.Now()
	got := Probe(context.Background(), "127.0.0.1", port, 600*time.Millisecond)
	if got != model.Offline {
		t.Fatalf("expected Offline, got %s", got)
	}
	if elapsed := time.Since(start); elapsed > 700*time.Millisecond {
		t.Fatalf("probe took %s, expected under 700ms", elapsed)
	}
}

func TestProbe_TimeoutIsOffline(t *testing.T) {
	p := &Prober{Timeout: 50 * time.Millisecond, Dial: blockingDial}
	start := time.Now()
	if got := p.Probe(context.Background(), "192.0.2.1", 22); got != model.Offline {
		t.Fatalf("expected Offline, got %s", got)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("timeout not honoured: %s", elapsed)
	}
}

func TestProbe_InvalidInput(t *testing.T) {
	p := &Prober{Dial: func(context.Context, string, string) (net.Conn, error) {
		t.Fatal("dial must not be called")
		return nil, nil
	}}
	if got := p.Probe(context.Background(), "h", 70000); got != model.Error {
		t.Fatalf("expected Error for bad port, got %s", got)
	}
	if got := p.Probe(context.Background(), "", 22); got != model.Error {
		t.Fatalf("expected Error for empty host, got %s", got)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want model.ProbeStatus
	}{
		{"nil", nil, model.Online},
		{"deadline", context.DeadlineExceeded, model.Offline},
		{"cancelled", context.Canceled, model.Offline},
		{"dns", &net.DNSError{Err: "no such host", Name: "nowhere.invalid", IsNotFound: true}, model.Error},
		{"dns timeout", &net.DNSError{Err: "i/o timeout", Name: "slow", IsTimeout: true}, model.Offline},
		{"refused", &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}, model.Offline},
		// WSAECONNREFUSED, as returned on Windows.
		{"refused windows", &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connectex", syscall.Errno(10061))}, model.Offline},
		{"unreachable windows", &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connectex", syscall.Errno(10065))}, model.Offline},
		{"dns in dial", &net.OpError{Op: "dial", Net: "tcp", Err: &net.DNSError{Err: "no such host", Name: "x.invalid", IsNotFound: true}}, model.Error},
		{"read failure", &net.OpError{Op: "read", Net: "tcp", Err: errors.New("broken")}, model.Error},
		{"other", errors.New("boom"), model.Error},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestProbeAll_SkipsUnscannedTargets(t *testing.T) {
	var dials atomic.Int32
	p := &Prober{Timeout: 50 * time.Millisecond, Dial: func(ctx context.Context, n, a string) (net.Conn, error) {
		dials.Add(1)
		return blockingDial(ctx, n, a)
	}}
	targets := []model.Target{
		{ID: 1, Host: "a", Port: 22, ScanOnline: false},
		{ID: 2, Host: "b", Port: 22, ScanOnline: true},
		{ID: 3, Host: "c", Port: 22, ScanOnline: false},
	}
	got := p.ProbeAll(context.Background(), targets)
	if got[1] != model.NotScanned || got[3] != model.NotScanned {
		t.Fatalf("unscanned targets got a status: %v", got)
	}
	if got[2] != model.Offline {
		t.Fatalf("expected target 2 Offline, got %s", got[2])
	}
	if n := dials.Load(); n != 1 {
		t.Fatalf("expected exactly one dial, got %d", n)
	}
}

func TestProbeAll_RunsConcurrently(t *testing.T) {
	const timeout = 100 * time.Millisecond
	p := &Prober{Timeout: timeout, Dial: blockingDial}

	var targets []model.Target
	for i := 1; i <= 25; i++ {
		targets = append(targets, model.Target{ID: i, Host: "192.0.2." + strconv.Itoa(i), Port: 22, ScanOnline: true})
	}

	start := time.Now()
	got := p.ProbeAll(context.Background(), targets)
	elapsed := time.Since(start)

	if len(got) != len(targets) {
		t.Fatalf("expected %d results, got %d", len(targets), len(got))
	}
	for id, s := range got {
		if s != model.Offline {
			t.Fatalf("target %d: expected Offline, got %s", id, s)
		}
	}
	if elapsed > 4*timeout {
		t.Fatalf("ProbeAll took %s for %d targets; probes are not concurrent", elapsed, len(targets))
	}
}
