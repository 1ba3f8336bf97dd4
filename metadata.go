package launcher

import (
	"github.com/pkg/errors"

	"github.com/james-lawrence/launcher/internal/envx"
	"github.com/james-lawrence/launcher/workspace"
)

// Metadata identity of this node within the job, provided by the scheduler.
type Metadata struct {
	JobID   string
	TrialID string
	Nodes   int
	Rank    int
}

// MetadataFromEnv resolves the node's identity from the environment.
// missing identifiers fall back to sentinels, a missing or invalid node count
// or rank is an error.
func MetadataFromEnv() (m Metadata, err error) {
	m = Metadata{
		JobID:   envx.String(workspace.FallbackJobID, EnvJobID, EnvJobIDLegacy),
		TrialID: envx.String(workspace.FallbackTrialID, EnvTrialID, EnvTrialIDLegacy),
	}

	if m.Nodes, err = envx.RequiredInt(EnvNodeCount, EnvNodeCountLegacy); err != nil {
		return m, errors.Wrap(err, "node count")
	}

	if m.Rank, err = envx.RequiredInt(EnvRank, EnvRankLegacy); err != nil {
		return m, errors.Wrap(err, "rank")
	}

	return m, m.Validate()
}

// Validate the node count and rank.
func (t Metadata) Validate() error {
	if t.Nodes < 1 {
		return errors.Errorf("node count must be at least 1: %d", t.Nodes)
	}

	if t.Rank < 0 || t.Rank >= t.Nodes {
		return errors.Errorf("rank %d outside of [0, %d)", t.Rank, t.Nodes)
	}

	return nil
}

// Coordinator rank 0 coordinates the rendezvous.
func (t Metadata) Coordinator() bool {
	return t.Rank == 0
}

// Role human readable role, used as the log prefix.
func (t Metadata) Role() string {
	if t.Coordinator() {
		return "COORDINATOR"
	}

	return "PEER"
}

// Workspace for the job and trial rooted at the given directory.
func (t Metadata) Workspace(root string) workspace.Workspace {
	return workspace.New(root, t.JobID, t.TrialID)
}
