package rendezvous_test

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/james-lawrence/launcher/backoff"
	. "github.com/james-lawrence/launcher/rendezvous"
	"github.com/james-lawrence/launcher/workspace"
)

var _ = Describe("Barriers", func() {
	var ws workspace.Workspace

	BeforeEach(func() {
		ws = newWorkspace()
	})

	DescribeTable("AwaitMembers should unblock once every peer joined",
		func(nodes int) {
			ctx, done := context.WithTimeout(context.Background(), 10*time.Second)
			defer done()

			result := make(chan error, 1)
			go func() {
				result <- AwaitMembers(ctx, ws, nodes, fast)
			}()

			for _, r := range rand.Perm(nodes - 1) {
				Consistently(result, 5*tick).ShouldNot(Receive())
				// duplicate signals from a restarted peer do not count twice.
				Expect(ws.Join(r + 1)).To(Succeed())
				Expect(ws.Join(r + 1)).To(Succeed())
			}

			Eventually(result).Should(Receive(BeNil()))
		},
		Entry("single node", 1),
		Entry("two nodes", 2),
		Entry("three nodes", 3),
		Entry("four nodes", 4),
		Entry("six nodes", 6),
	)

	It("should ignore records outside of the cluster's ranks", func() {
		ctx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()

		result := make(chan error, 1)
		go func() {
			result <- AwaitMembers(ctx, ws, 3, fast)
		}()

		Expect(ws.Join(0)).To(Succeed())
		Expect(ws.Join(3)).To(Succeed())
		Expect(ws.Join(7)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(ws.Dir, ws.TrialID+"_worker_rank_one"), nil, 0600)).To(Succeed())
		Expect(workspace.New(ws.Root, ws.JobID, "other").Join(1)).To(Succeed())
		Expect(workspace.New(ws.Root, ws.JobID, "other").Join(2)).To(Succeed())
		Consistently(result, 10*tick).ShouldNot(Receive())

		Expect(ws.Join(2)).To(Succeed())
		Consistently(result, 10*tick).ShouldNot(Receive())
		Expect(ws.Join(1)).To(Succeed())
		Eventually(result).Should(Receive(BeNil()))

		Expect(Members(ws, 3)).To(Equal([]int{1, 2}))
	})

	It("should report progress", func() {
		var updates atomic.Int64
		Expect(ws.Join(1)).To(Succeed())
		Expect(AwaitMembers(context.Background(), ws, 2, fast, OptionStatus(func(string) {
			updates.Add(1)
		}))).To(Succeed())
		Expect(updates.Load()).To(BeNumerically(">=", 1))
	})

	It("should fail when the workspace disappears", func() {
		Expect(os.RemoveAll(ws.Dir)).To(Succeed())
		Expect(AwaitMembers(context.Background(), ws, 2, fast)).ToNot(Succeed())
	})

	Describe("AwaitAddress", func() {
		It("should return the address once published", func() {
			ctx, done := context.WithTimeout(context.Background(), 10*time.Second)
			defer done()

			result := make(chan string, 1)
			go func() {
				defer GinkgoRecover()
				address, err := AwaitAddress(ctx, ws, fast)
				Expect(err).To(Succeed())
				result <- address
			}()

			Consistently(result, 5*tick).ShouldNot(Receive())
			Expect(ws.Publish(" 10.0.0.5:31000\n")).To(Equal("10.0.0.5:31000"))
			Eventually(result).Should(Receive(Equal("10.0.0.5:31000")))
		})
	})

	Describe("AwaitCompletion", func() {
		It("should remain blocked while the record is absent", func() {
			const polls = 25
			var attempts atomic.Int64

			strategy := backoff.StrategyFunc(func(int) time.Duration {
				attempts.Add(1)
				return time.Millisecond
			})

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			result := make(chan error, 1)
			go func() {
				_, err := AwaitCompletion(ctx, ws, OptionPollStrategy(strategy))
				result <- err
			}()

			Eventually(attempts.Load).Should(BeNumerically(">=", polls))
			Consistently(result, 5*tick).ShouldNot(Receive())

			cancel()
			Eventually(result).Should(Receive(MatchError(context.Canceled)))
		})

		It("should honor the deadline", func() {
			ctx, done := context.WithTimeout(context.Background(), 10*tick)
			defer done()

			_, err := AwaitCompletion(ctx, ws, fast)
			Expect(err).To(MatchError(context.DeadlineExceeded))
		})

		It("should return the recorded exit status", func() {
			Expect(ws.Complete(workspace.NewCompletion(0))).To(Succeed())
			c, err := AwaitCompletion(context.Background(), ws, fast)
			Expect(err).To(Succeed())
			Expect(c.Succeeded()).To(BeTrue())
		})

		It("should wake when the directory changes", func() {
			ctx, done := context.WithTimeout(context.Background(), 10*time.Second)
			defer done()

			result := make(chan error, 1)
			go func() {
				_, err := AwaitCompletion(ctx, ws, OptionPollInterval(time.Hour), OptionWatch(true))
				result <- err
			}()

			Consistently(result, 10*tick).ShouldNot(Receive())
			Expect(ws.Complete(workspace.NewCompletion(0))).To(Succeed())
			Eventually(result, 5*time.Second).Should(Receive(BeNil()))
		})
	})
})
