// Package rendezvous assembles a cluster across nodes sharing a directory.
//
// rank 0 acts as the coordinator: it starts the runtime head, publishes the
// join address, waits for every peer to signal membership, runs the job and
// signals completion. every other rank is a peer: it waits for the address,
// joins, signals membership and waits for completion.
//
// all synchronization is performed by polling the shared directory. watching
// the directory for changes only shortens the wait between polls.
package rendezvous

import (
	"context"
	"time"

	"github.com/james-lawrence/launcher/backoff"
	"github.com/james-lawrence/launcher/workspace"
)

// DefaultPollInterval how often records within the shared directory are checked.
const DefaultPollInterval = 5 * time.Second

// EnvHeadAddress provides the job with the recorded address of the runtime head.
const EnvHeadAddress = "LAUNCHER_HEAD_ADDRESS"

type runtime interface {
	Head(ctx context.Context, port int) (string, error)
	Join(ctx context.Context, address string) error
}

// Option for the coordinator and peers.
type Option func(*settings)

// OptionPollInterval how often the shared directory is checked.
func OptionPollInterval(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.poll = backoff.Constant(d)
		}
	}
}

// OptionPollStrategy fine grained control over the delay between checks.
func OptionPollStrategy(b backoff.Strategy) Option {
	return func(s *settings) {
		s.poll = b
	}
}

// OptionWatch wake early when the shared directory changes.
func OptionWatch(b bool) Option {
	return func(s *settings) {
		s.watch = b
	}
}

// OptionStatus receives human readable progress updates.
func OptionStatus(status func(string)) Option {
	return func(s *settings) {
		s.status = status
	}
}

type settings struct {
	poll   backoff.Strategy
	watch  bool
	status func(string)
}

func newSettings(options ...Option) settings {
	s := settings{
		poll:   backoff.Constant(DefaultPollInterval),
		status: func(string) {},
	}

	for _, opt := range options {
		opt(&s)
	}

	return s
}

// await polls until the check is satisfied.
func (t settings) await(ctx context.Context, ws workspace.Workspace, check func(attempt int) (bool, error)) error {
	var (
		wake <-chan struct{}
	)

	if t.watch {
		wctx, done := context.WithCancel(ctx)
		defer done()
		wake = watch(wctx, ws.Dir)
	}

	return backoff.Until(ctx, t.poll, wake, check)
}
