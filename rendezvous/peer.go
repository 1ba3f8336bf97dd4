package rendezvous

import (
	"context"
	"fmt"
	"log"

	"github.com/pkg/errors"

	"github.com/james-lawrence/launcher/workspace"
)

// NewPeer for the given rank, must be greater than zero.
func NewPeer(ws workspace.Workspace, rt runtime, rank int, options ...Option) Peer {
	return Peer{
		ws:       ws,
		rt:       rt,
		rank:     rank,
		settings: newSettings(options...),
		options:  options,
	}
}

// Peer a non-zero rank node.
type Peer struct {
	settings
	ws      workspace.Workspace
	rt      runtime
	rank    int
	options []Option
}

// Join waits for the address record, joins the runtime and signals membership.
// a failed join is logged but still signals membership, the join command's
// exit status is not part of the rendezvous.
func (t Peer) Join(ctx context.Context) (address string, err error) {
	if t.rank < 1 {
		return "", errors.Errorf("invalid peer rank: %d", t.rank)
	}

	if err = t.ws.Init(); err != nil {
		return "", err
	}

	if address, err = AwaitAddress(ctx, t.ws, t.options...); err != nil {
		return "", err
	}

	t.status(fmt.Sprintf("joining %s", address))
	if err = t.rt.Join(ctx, address); err != nil {
		if ctx.Err() != nil {
			return "", errors.Wrap(ctx.Err(), "join interrupted")
		}

		log.Println("runtime join reported an error, continuing", err)
	}

	if err = t.ws.Join(t.rank); err != nil {
		return "", errors.Wrap(err, "unable to signal membership")
	}

	log.Println("membership signalled", t.ws.MemberPath(t.rank))
	t.status(fmt.Sprintf("joined %s", address))

	return address, nil
}

// Run the peer: join the cluster then wait for the job to complete.
func (t Peer) Run(ctx context.Context) (c workspace.Completion, err error) {
	if _, err = t.Join(ctx); err != nil {
		return c, err
	}

	t.status("waiting for job completion")
	if c, err = AwaitCompletion(ctx, t.ws, t.options...); err != nil {
		return c, err
	}

	t.status(fmt.Sprintf("job completed %s", describe(c)))
	return c, nil
}
