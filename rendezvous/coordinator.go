package rendezvous

import (
	"context"
	"fmt"
	"log"

	"github.com/pkg/errors"

	"github.com/james-lawrence/launcher/jobs"
	"github.com/james-lawrence/launcher/workspace"
)

// NewCoordinator for a cluster of the given number of nodes, including itself.
func NewCoordinator(ws workspace.Workspace, rt runtime, nodes int, options ...Option) Coordinator {
	return Coordinator{
		ws:       ws,
		rt:       rt,
		nodes:    nodes,
		settings: newSettings(options...),
		options:  options,
	}
}

// Coordinator the rank 0 node.
type Coordinator struct {
	settings
	ws      workspace.Workspace
	rt      runtime
	nodes   int
	options []Option
}

// Bootstrap starts the runtime head on the port and publishes its address.
// returns the recorded address, which differs from the announced address
// when a previous invocation within the same trial already published one.
func (t Coordinator) Bootstrap(ctx context.Context, port int) (recorded string, err error) {
	var (
		announced string
	)

	if err = t.ws.Init(); err != nil {
		return "", err
	}

	if announced, err = t.rt.Head(ctx, port); err != nil {
		return "", errors.Wrap(err, "runtime head failed to start")
	}

	if recorded, err = t.ws.Publish(announced); err != nil {
		return "", err
	}

	if recorded != announced {
		log.Println("address record already present, keeping", recorded, "discarding", announced)
	} else {
		log.Println("address published", recorded, t.ws.AddressPath())
	}

	t.status(fmt.Sprintf("address published %s", recorded))

	return recorded, nil
}

// Run the coordinator: bootstrap the runtime, wait for every peer, run the job,
// then signal completion. the completion record is written once the job
// has been launched regardless of its exit status.
func (t Coordinator) Run(ctx context.Context, port int, job jobs.Job) (c workspace.Completion, err error) {
	var (
		code    int
		address string
	)

	if t.nodes < 1 {
		return c, errors.Errorf("invalid node count: %d", t.nodes)
	}

	if err = job.Validate(); err != nil {
		return c, err
	}

	if address, err = t.Bootstrap(ctx, port); err != nil {
		return c, err
	}

	if err = AwaitMembers(ctx, t.ws, t.nodes, t.options...); err != nil {
		return c, err
	}

	job = job.With(jobs.OptionEnviron(EnvHeadAddress + "=" + address))

	log.Println("launching job", job)
	t.status(fmt.Sprintf("job running %s", job))

	if code, err = job.Run(ctx); err != nil {
		log.Println("job failed", code, err)
	} else {
		log.Println("job exited", code)
	}

	c = workspace.NewCompletion(code)
	if cerr := t.ws.Complete(c); cerr != nil {
		return c, errors.Wrap(cerr, "unable to signal completion")
	}

	t.status(fmt.Sprintf("job completed %s", describe(c)))
	log.Println("completion signalled", t.ws.CompletionPath())

	return c, err
}
