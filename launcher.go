// Package launcher bootstraps a multi node cluster runtime through a shared
// directory: rank 0 starts the runtime head and publishes its address, the
// remaining ranks join it, and the coordinator runs the job once every peer
// has joined.
package launcher

import (
	"time"
)

const (
	// DefaultWorkDir shared directory used for the rendezvous.
	DefaultWorkDir = "ray_work_dir"
	// DefaultRuntime cluster runtime binary.
	DefaultRuntime = "ray"
	// DefaultPort requests a free port be allocated for the runtime head.
	DefaultPort = -1
	// DefaultPollInterval interval between rendezvous checks.
	DefaultPollInterval = 5 * time.Second
	// DefaultJobPollInterval interval between job exit checks.
	DefaultJobPollInterval = 10 * time.Second
)
