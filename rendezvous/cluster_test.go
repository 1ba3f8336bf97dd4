package rendezvous_test

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/james-lawrence/launcher/rendezvous"
	"github.com/james-lawrence/launcher/workspace"
)

var _ = Describe("Cluster", func() {
	It("should assemble a three node cluster, run the job and release every peer", func() {
		var (
			wg      sync.WaitGroup
			ws      = newWorkspace()
			rt      = &fakeRuntime{address: "10.0.0.5:31000"}
			results = make(chan workspace.Completion, 3)
		)

		ctx, done := context.WithTimeout(context.Background(), 30*time.Second)
		defer done()

		for _, rank := range []int{1, 2} {
			wg.Add(1)
			go func(rank int) {
				defer GinkgoRecover()
				defer wg.Done()
				// every node derives its own view of the same shared directory.
				peer := workspace.New(ws.Root, ws.JobID, ws.TrialID)
				c, err := NewPeer(peer, rt, rank, fast).Run(ctx)
				Expect(err).To(Succeed())
				results <- c
			}(rank)
		}

		// peers are blocked on the address record until the coordinator starts.
		Consistently(rt.Joined, 10*tick).Should(BeEmpty())

		// the job only succeeds when both membership records exist at launch.
		job := quietJob("sh", "-c", "test -e "+ws.MemberPath(1)+" && test -e "+ws.MemberPath(2))
		c, err := NewCoordinator(ws, rt, 3, fast).Run(ctx, 31000, job)
		Expect(err).To(Succeed())
		Expect(c.Succeeded()).To(BeTrue())
		results <- c

		wg.Wait()
		close(results)

		Expect(results).To(HaveLen(3))
		for c := range results {
			Expect(c.Succeeded()).To(BeTrue())
		}

		Expect(rt.Joined()).To(Equal([]string{"10.0.0.5:31000", "10.0.0.5:31000"}))
		Expect(ws.Ranks()).To(Equal([]int{1, 2}))
	})
})
