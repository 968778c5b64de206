// Package clock supplies the current time for commands that print "now".
package clock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/beevik/ntp"
)

// Source returns the current standard time.
type Source interface {
	Now(ctx context.Context) (time.Time, error)
}

// System reads the local clock.
type System struct{}

// Now implements Source.
func (System) Now(context.Context) (time.Time, error) {
	return time.Now().UTC(), nil
}

// NTP corrects the local clock by the offset measured against an NTP
// server. The offset is measured once and reused.
type NTP struct {
	Server  string
	Timeout time.Duration

	// query is ntp.QueryWithOptions outside tests.
	query func(host string, opts ntp.QueryOptions) (*ntp.Response, error)

	mu     sync.Mutex
	offset time.Duration
	synced bool
}

// NewNTP returns an NTP source for server with a five second timeout.
func NewNTP(server string) *NTP {
	return &NTP{Server: server, Timeout: 5 * time.Second, query: ntp.QueryWithOptions}
}

// Now implements Source. It fails when the server cannot be reached or
// its response does not validate.
func (n *NTP) Now(ctx context.Context) (time.Time, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.synced {
		if err := n.sync(ctx); err != nil {
			return time.Time{}, err
		}
	}
	return time.Now().Add(n.offset).UTC(), nil
}

// Offset returns the last measured local clock error.
func (n *NTP) Offset() time.Duration {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.offset
}

func (n *NTP) sync(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timeout := n.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout || timeout == 0 {
			timeout = left
		}
	}
	query := n.query
	if query == nil {
		query = ntp.QueryWithOptions
	}

	resp, err := query(n.Server, ntp.QueryOptions{Timeout: timeout})
	if err != nil {
		return fmt.Errorf("ntp query %s: %w", n.Server, err)
	}
	if err := resp.Validate(); err != nil {
		return fmt.Errorf("ntp response from %s: %w", n.Server, err)
	}
	n.offset = resp.ClockOffset
	n.synced = true
	return nil
}

// Fixed always returns the same instant. Tests and golden output use it.
type Fixed time.Time

// Now implements Source.
func (f Fixed) Now(context.Context) (time.Time, error) {
	return time.Time(f).UTC(), nil
}
