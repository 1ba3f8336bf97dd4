package rendezvous

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/james-lawrence/launcher/internal/fsx"
	"github.com/james-lawrence/launcher/workspace"
)

// Members returns the distinct peer ranks, within [1, nodes), that have
// signalled membership.
func Members(ws workspace.Workspace, nodes int) (members []int, err error) {
	var (
		ranks []int
	)

	if ranks, err = ws.Ranks(); err != nil {
		return members, err
	}

	for _, r := range ranks {
		if r < 1 || r >= nodes {
			continue
		}

		members = append(members, r)
	}

	return members, nil
}

// AwaitMembers blocks until every peer of a cluster with the given number of
// nodes has signalled membership.
func AwaitMembers(ctx context.Context, ws workspace.Workspace, nodes int, options ...Option) (err error) {
	var (
		s        = newSettings(options...)
		expected = nodes - 1
		limit    = rate.NewLimiter(rate.Every(5*time.Second), 1)
		last     = -1
	)

	log.Println("waiting for peers to join", expected)

	err = s.await(ctx, ws, func(attempt int) (bool, error) {
		members, err := Members(ws, nodes)
		if err != nil {
			return false, err
		}

		joined := len(members)
		if joined != last || limit.Allow() {
			progress := fmt.Sprintf("peers joined %d/%d", joined, expected)
			log.Println(progress)
			s.status(progress)
			last = joined
		}

		return joined >= expected, nil
	})

	if err != nil {
		return errors.Wrap(err, "membership barrier")
	}

	log.Println("all peers have joined")
	return nil
}

// AwaitAddress blocks until the address record is published and returns it.
func AwaitAddress(ctx context.Context, ws workspace.Workspace, options ...Option) (address string, err error) {
	s := newSettings(options...)

	log.Println("waiting for the address record", ws.AddressPath())
	err = s.await(ctx, ws, func(attempt int) (_ bool, err error) {
		if address, err = ws.Address(); err != nil {
			return false, fsx.IgnoreIsNotExist(err)
		}

		return true, nil
	})

	if err != nil {
		return "", errors.Wrap(err, "address barrier")
	}

	log.Println("detected address", address)
	return address, nil
}

// AwaitCompletion blocks until the completion record is written.
func AwaitCompletion(ctx context.Context, ws workspace.Workspace, options ...Option) (c workspace.Completion, err error) {
	s := newSettings(options...)

	log.Println("waiting for the completion record", ws.CompletionPath())
	err = s.await(ctx, ws, func(attempt int) (_ bool, err error) {
		if c, err = ws.Completed(); err != nil {
			return false, fsx.IgnoreIsNotExist(err)
		}

		return true, nil
	})

	if err != nil {
		return c, errors.Wrap(err, "completion barrier")
	}

	log.Println("detected completion", describe(c))
	return c, nil
}

func describe(c workspace.Completion) string {
	if c.Exit == nil {
		return c.Status
	}

	return fmt.Sprintf("%s exit %d", c.Status, *c.Exit)
}
