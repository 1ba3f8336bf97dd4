// Package workspace manages the shared directory used as the rendezvous medium
// between nodes of a single job attempt. every artifact is scoped by the job id
// (directory) and the trial id (file name prefix) so unrelated attempts sharing
// a filesystem never collide.
//
// Layout under <root>/<job-id>/:
//
//	<trial-id>_head_address       address record, written once by the coordinator.
//	<trial-id>_worker_rank_<rank> membership record, written once by each peer.
//	<trial-id>_job_done           completion record, written once after the job exits.
package workspace

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/james-lawrence/launcher/internal/fsx"
)

const (
	// FallbackJobID used when the scheduler does not provide a job id.
	FallbackJobID = "UNKNOWN_JOB_ID"
	// FallbackTrialID used when the scheduler does not provide a trial id.
	FallbackTrialID = "UNKNOWN_TRIAL_ID"

	suffixAddress    = "_head_address"
	suffixCompletion = "_job_done"
	infixMember      = "_worker_rank_"
)

const (
	dirPerm  = 0755
	filePerm = 0644
)

// New derives the workspace for the job attempt. blank identifiers fall back
// to the sentinel values.
func New(root, jobID, trialID string) Workspace {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		jobID = FallbackJobID
	}

	trialID = strings.TrimSpace(trialID)
	if trialID == "" {
		trialID = FallbackTrialID
	}

	return Workspace{
		Root:    root,
		JobID:   jobID,
		TrialID: trialID,
		Dir:     filepath.Join(root, jobID),
	}
}

// Workspace the paths of a single job attempt within the shared directory.
type Workspace struct {
	Root    string
	JobID   string
	TrialID string
	Dir     string
}

// Init creates the workspace directory. safe to invoke concurrently from
// every node, an existing directory is not an error.
func (t Workspace) Init() error {
	return fsx.MkDirs(dirPerm, t.Dir)
}

// AddressPath location of the address record.
func (t Workspace) AddressPath() string {
	return filepath.Join(t.Dir, t.TrialID+suffixAddress)
}

// CompletionPath location of the completion record.
func (t Workspace) CompletionPath() string {
	return filepath.Join(t.Dir, t.TrialID+suffixCompletion)
}

// MemberPath location of the membership record for the rank.
func (t Workspace) MemberPath(rank int) string {
	return filepath.Join(t.Dir, t.memberPrefix()+strconv.Itoa(rank))
}

func (t Workspace) memberPrefix() string {
	return t.TrialID + infixMember
}

// ParseRank extracts the rank from a membership record's file name.
func (t Workspace) ParseRank(name string) (rank int, err error) {
	prefix := t.memberPrefix()
	if !strings.HasPrefix(name, prefix) {
		return -1, errors.Errorf("not a membership record: %s", name)
	}

	digits := strings.TrimPrefix(name, prefix)
	if digits == "" || strings.TrimLeft(digits, "0123456789") != "" {
		return -1, errors.Errorf("malformed membership record: %s", name)
	}

	if rank, err = strconv.Atoi(digits); err != nil {
		return -1, errors.Wrapf(err, "malformed membership record: %s", name)
	}

	return rank, nil
}

// Ranks lists the distinct ranks that have written a membership record, sorted.
// names that do not parse are skipped, spurious files within a shared
// directory are expected.
func (t Workspace) Ranks() (ranks []int, err error) {
	var (
		entries []os.DirEntry
		seen    = make(map[int]struct{})
	)

	if entries, err = os.ReadDir(t.Dir); err != nil {
		return ranks, errors.Wrapf(err, "unable to list workspace: %s", t.Dir)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		rank, err := t.ParseRank(e.Name())
		if err != nil {
			continue
		}

		if _, ok := seen[rank]; ok {
			continue
		}

		seen[rank] = struct{}{}
		ranks = append(ranks, rank)
	}

	sort.Ints(ranks)

	return ranks, nil
}
