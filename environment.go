package launcher

// defines available environment variables for configuration. the legacy names
// are consulted when the primary variable is unset.
const (
	EnvJobID           = "LAUNCHER_JOB_ID"     // identifier shared by every node of the job.
	EnvJobIDLegacy     = "MERLIN_JOB_ID"       // scheduler provided job identifier.
	EnvTrialID         = "LAUNCHER_TRIAL_ID"   // identifier of the attempt, isolates retries of the same job.
	EnvTrialIDLegacy   = "ARNOLD_TRIAL_ID"     // scheduler provided trial identifier.
	EnvNodeCount       = "LAUNCHER_NODE_COUNT" // total number of nodes, including the coordinator. integer.
	EnvNodeCountLegacy = "ARNOLD_WORKER_NUM"   // scheduler provided node count.
	EnvRank            = "LAUNCHER_RANK"       // rank of this node within [0, node count). integer.
	EnvRankLegacy      = "ARNOLD_ID"           // scheduler provided rank.

	EnvWorkDir       = "LAUNCHER_WORK_DIR"       // shared directory used for the rendezvous.
	EnvRuntime       = "LAUNCHER_RUNTIME"        // cluster runtime binary.
	EnvPort          = "LAUNCHER_PORT"           // port for the runtime head, -1 allocates a free port.
	EnvNodeIP        = "LAUNCHER_NODE_IP"        // ip advertised by the runtime head. 'auto' detects the private ip.
	EnvPollInterval  = "LAUNCHER_POLL_INTERVAL"  // interval between rendezvous checks. time.Duration.
	EnvJobPoll       = "LAUNCHER_JOB_POLL"       // interval between job exit checks. time.Duration.
	EnvTimeout       = "LAUNCHER_TIMEOUT"        // upper bound for the entire run, 0 disables. time.Duration.
	EnvWatch         = "LAUNCHER_WATCH"          // wake early on filesystem events. boolean.
	EnvPropagateExit = "LAUNCHER_PROPAGATE_EXIT" // coordinator exits with the job's status. boolean.
	EnvConfig        = "LAUNCHER_CONFIG"         // path to a yaml or toml configuration file.
	EnvFile          = "LAUNCHER_ENV_FILE"       // path to a dotenv file applied before identifiers are resolved.

	EnvLogsVerbose = "LAUNCHER_LOGS_VERBOSE" // enable verbose logging. boolean, see strconv.ParseBool for valid values.
	EnvProfile     = "LAUNCHER_PROFILE"      // enable profiling: cpu, mem, block, mutex, trace.
	EnvProfileDir  = "LAUNCHER_PROFILE_DIR"  // directory profiles are written to.
)
