package workspace_test

import (
	"os"
	"path/filepath"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/james-lawrence/launcher/internal/x/gomegax"
	"github.com/james-lawrence/launcher/internal/x/testingx"
	. "github.com/james-lawrence/launcher/workspace"
)

var _ = Describe("Workspace", func() {
	It("should derive the artifact paths from the job and trial", func() {
		ws := New("root", "job1", "trial1")
		Expect(ws.Dir).To(Equal(filepath.Join("root", "job1")))
		Expect(ws.AddressPath()).To(Equal(filepath.Join("root", "job1", "trial1_head_address")))
		Expect(ws.CompletionPath()).To(Equal(filepath.Join("root", "job1", "trial1_job_done")))
		Expect(ws.MemberPath(3)).To(Equal(filepath.Join("root", "job1", "trial1_worker_rank_3")))
	})

	It("should fall back to sentinel identifiers", func() {
		ws := New("root", "", "  ")
		Expect(ws.JobID).To(Equal(FallbackJobID))
		Expect(ws.TrialID).To(Equal(FallbackTrialID))
		Expect(ws.Dir).To(Equal(filepath.Join("root", FallbackJobID)))
	})

	It("should be safe to initialize concurrently", func() {
		var (
			wg   sync.WaitGroup
			root = testingx.TempDir()
			job  = testingx.ID()
		)

		errs := make(chan error, 16)
		for i := 0; i < cap(errs); i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- New(root, job, "trial").Init()
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			Expect(err).To(Succeed())
		}

		Expect(New(root, job, "trial").Init()).To(Succeed())
		Expect(filepath.Join(root, job)).To(BeADirectory())
	})

	DescribeTable("ParseRank",
		func(name string, expected int, ok bool) {
			rank, err := New("root", "job", "trial").ParseRank(name)
			if !ok {
				Expect(err).To(HaveOccurred())
				return
			}
			Expect(err).To(Succeed())
			Expect(rank).To(Equal(expected))
		},
		Entry("single digit", "trial_worker_rank_1", 1, true),
		Entry("multiple digits", "trial_worker_rank_12", 12, true),
		Entry("leading zeros", "trial_worker_rank_007", 7, true),
		Entry("missing rank", "trial_worker_rank_", 0, false),
		Entry("negative rank", "trial_worker_rank_-1", 0, false),
		Entry("signed rank", "trial_worker_rank_+1", 0, false),
		Entry("trailing garbage", "trial_worker_rank_1.tmp", 0, false),
		Entry("different trial", "other_worker_rank_1", 0, false),
		Entry("staged record", ".trial_worker_rank_1.1234", 0, false),
		Entry("address record", "trial_head_address", 0, false),
	)

	Describe("Ranks", func() {
		var ws Workspace

		BeforeEach(func() {
			ws = New(testingx.TempDir(), testingx.ID(), "trial")
			Expect(ws.Init()).To(Succeed())
		})

		It("should list the distinct ranks that joined and skip noise", func() {
			Expect(ws.Join(2)).To(Succeed())
			Expect(ws.Join(1)).To(Succeed())
			Expect(ws.Join(2)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(ws.Dir, "trial_worker_rank_x"), nil, 0600)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(ws.Dir, "other_worker_rank_5"), nil, 0600)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(ws.Dir, testingx.Word()), nil, 0600)).To(Succeed())
			Expect(os.Mkdir(filepath.Join(ws.Dir, "trial_worker_rank_9"), 0700)).To(Succeed())

			Expect(ws.Ranks()).To(Equal([]int{1, 2}))
		})

		It("should write the membership marker content", func() {
			Expect(ws.Join(1)).To(Succeed())
			Expect(ws.MemberPath(1)).To(gomegax.HaveFileContents("joined"))
		})

		It("should reject negative ranks", func() {
			Expect(ws.Join(-1)).ToNot(Succeed())
		})

		It("should fail when the workspace is missing", func() {
			_, err := New(testingx.TempDir(), testingx.ID(), "trial").Ranks()
			Expect(err).To(HaveOccurred())
		})
	})
})
