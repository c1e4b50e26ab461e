// Copyright (c) 2026 SSHHub Team
// SSHHub - SSH connection hub
// This source code is licensed under the MIT license found in the LICENSE file.

// Package probe classifies the reachability of targets with bounded TCP
// connection attempts.
package probe

import (
	"context"
	"errors"
	"net"
	"os"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/toeirei/sshhub/internal/logging"
	"github.com/toeirei/sshhub/internal/model"
)

// DefaultTimeout bounds a single connection attempt.
const DefaultTimeout = 600 * time.Millisecond

// DialFunc opens a network connection. net.Dialer.DialContext satisfies it.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Prober runs connection attempts against targets.
type Prober struct {
	Timeout time.Duration
	Dial    DialFunc
}

// New returns a Prober using the given timeout (DefaultTimeout when <= 0).
func New(timeout time.Duration) *Prober {
	return &Prober{Timeout: timeout}
}

func (p *Prober) timeout() time.Duration {
	if p == nil || p.Timeout <= 0 {
		return DefaultTimeout
	}
	return p.Timeout
}

func (p *Prober) dial() DialFunc {
	if p != nil && p.Dial != nil {
		return p.Dial
	}
	var d net.Dialer
	return d.DialContext
}

// Probe attempts a single TCP connection to host:port.
func Probe(ctx context.Context, host string, port int, timeout time.Duration) model.ProbeStatus {
	return New(timeout).Probe(ctx, host, port)
}

// Probe attempts a single TCP connection to host:port within p.Timeout.
func (p *Prober) Probe(ctx context.Context, host string, port int) model.ProbeStatus {
	if port <= 0 {
		port = model.DefaultPort
	}
	if port > 65535 || host == "" {
		return model.Error
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()

	start := time.Now()
	conn, err := p.dial()(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err == nil {
		_ = conn.Close()
	}
	status := Classify(err)
	logging.Debugf("probe %s:%d -> %s in %s (err: %v)", host, port, status, time.Since(start).Round(time.Millisecond), err)
	return status
}

// Classify maps a dial error to a status: nil is Online; timeouts and
// socket-level dial failures (refused, unreachable) are Offline; everything
// else, including name resolution failures, is Error.
func Classify(err error) model.ProbeStatus {
	if err == nil {
		return model.Online
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && !dnsErr.IsTimeout {
		return model.Error
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || errors.Is(err, os.ErrDeadlineExceeded) {
		return model.Offline
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return model.Offline
	}
	// Any other socket-level dial failure means nothing answered. This also
	// covers platform codes the list below does not name (WSAECONNREFUSED).
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return model.Offline
	}
	for _, errno := range []syscall.Errno{
		syscall.ECONNREFUSED,
		syscall.ECONNRESET,
		syscall.EHOSTUNREACH,
		syscall.ENETUNREACH,
		syscall.EHOSTDOWN,
	} {
		if errors.Is(err, errno) {
			return model.Offline
		}
	}
	return model.Error
}

// ProbeAll probes every target with ScanOnline set, one goroutine each, and
// waits for all of them. Other targets are reported NotScanned without any
// network I/O. The call returns within roughly one timeout.
func (p *Prober) ProbeAll(ctx context.Context, targets []model.Target) map[int]model.ProbeStatus {
	statuses := make([]model.ProbeStatus, len(targets))

	var g errgroup.Group
	for i, t := range targets {
		if !t.ScanOnline {
			continue
		}
		g.Go(func() error {
			statuses[i] = p.Probe(ctx, t.Host, t.EffectivePort())
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[int]model.ProbeStatus, len(targets))
	for i, t := range targets {
		out[t.ID] = statuses[i]
	}
	return out
}
