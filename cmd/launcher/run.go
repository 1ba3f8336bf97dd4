package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"

	"github.com/james-lawrence/launcher"
	"github.com/james-lawrence/launcher/clusterrt"
	"github.com/james-lawrence/launcher/cmd/launcher/cmdopts"
	"github.com/james-lawrence/launcher/internal/errorsx"
	"github.com/james-lawrence/launcher/internal/fsx"
	"github.com/james-lawrence/launcher/internal/netx"
	"github.com/james-lawrence/launcher/internal/systemx"
	"github.com/james-lawrence/launcher/jobs"
	"github.com/james-lawrence/launcher/rendezvous"
	"github.com/james-lawrence/launcher/workspace"
)

type cmdRun struct {
	Config        string        `name:"config" help:"yaml or toml configuration file, flags take precedence over its values" env:"${env_launcher_config}" type:"path"`
	WorkDir       string        `name:"work-dir" aliases:"ray-work-dir" help:"shared directory used for the rendezvous" default:"${vars_launcher_default_work_dir}" env:"${env_launcher_work_dir}"`
	Port          int           `name:"port" help:"port for the runtime head, -1 allocates a free port" default:"${vars_launcher_default_port}" env:"${env_launcher_port}"`
	Runtime       string        `name:"runtime" help:"cluster runtime binary" default:"${vars_launcher_default_runtime}" env:"${env_launcher_runtime}"`
	NodeIP        string        `name:"node-ip" help:"ip address the runtime head advertises, 'auto' detects the private ip" env:"${env_launcher_node_ip}"`
	Poll          time.Duration `name:"poll" help:"interval between rendezvous checks" default:"${vars_launcher_default_poll_interval}" env:"${env_launcher_poll_interval}"`
	JobPoll       time.Duration `name:"job-poll" help:"interval between job exit checks" default:"${vars_launcher_default_job_poll_interval}" env:"${env_launcher_job_poll}"`
	Timeout       time.Duration `name:"timeout" help:"upper bound for the entire run, 0 waits forever" default:"0s" env:"${env_launcher_timeout}"`
	Watch         bool          `name:"watch" help:"wake early on filesystem events, polling remains authoritative" env:"${env_launcher_watch}"`
	PropagateExit bool          `name:"propagate-exit" help:"coordinator exits with the job's exit status" env:"${env_launcher_propagate_exit}"`
	Command       []string      `arg:"" passthrough:"" required:"" help:"job to run once every node has joined"`
}

// config layers the flags over the configuration file over the defaults.
// flags left at their default values do not override the file.
func (t cmdRun) config() (c launcher.Config, err error) {
	defaults := launcher.NewConfig()

	if t.Config != "" && !fsx.IsRegularFile(t.Config) {
		return c, errors.Errorf("configuration file not found: %s", t.Config)
	}

	if c, err = launcher.LoadConfig(t.Config, defaults); err != nil {
		return c, err
	}

	options := []launcher.ConfigOption{}
	if t.WorkDir != defaults.WorkDir {
		options = append(options, launcher.ConfigOptionWorkDir(t.WorkDir))
	}

	if t.Port != defaults.Port {
		options = append(options, launcher.ConfigOptionPort(t.Port))
	}

	if t.Runtime != defaults.Runtime {
		options = append(options, launcher.ConfigOptionRuntime(t.Runtime))
	}

	if t.NodeIP != defaults.NodeIP {
		options = append(options, launcher.ConfigOptionNodeIP(t.NodeIP))
	}

	if t.Poll != defaults.PollInterval {
		options = append(options, launcher.ConfigOptionPollInterval(t.Poll))
	}

	if t.JobPoll != defaults.JobPollInterval {
		options = append(options, launcher.ConfigOptionJobPollInterval(t.JobPoll))
	}

	if t.Timeout != defaults.Timeout {
		options = append(options, launcher.ConfigOptionTimeout(t.Timeout))
	}

	if t.Watch {
		options = append(options, launcher.ConfigOptionWatch(true))
	}

	if t.PropagateExit {
		options = append(options, launcher.ConfigOptionPropagateExit(true))
	}

	for _, opt := range options {
		opt(&c)
	}

	return c, nil
}

func (t cmdRun) Run(gctx *cmdopts.Global) (err error) {
	var (
		config launcher.Config
		md     launcher.Metadata
		ctx    context.Context
		done   context.CancelFunc
	)

	if config, err = t.config(); err != nil {
		return err
	}

	if md, err = launcher.MetadataFromEnv(); err != nil {
		return errors.Wrap(err, "invalid node identity")
	}

	log.SetPrefix(fmt.Sprintf("[%s] ", md.Role()))
	if gctx.Verbose() {
		log.Println("configuration", spew.Sdump(config), spew.Sdump(md))
	}

	if config.Timeout > 0 {
		ctx, done = context.WithTimeout(gctx.Context, config.Timeout)
	} else {
		ctx, done = context.WithCancel(gctx.Context)
	}
	defer done()

	ws := md.Workspace(config.WorkDir)
	options := []rendezvous.Option{
		rendezvous.OptionPollInterval(config.PollInterval),
		rendezvous.OptionWatch(config.Watch),
		rendezvous.OptionStatus(systemx.Status),
	}

	if md.Coordinator() {
		err = t.coordinate(ctx, config, md, ws, options...)
	} else {
		err = t.join(ctx, config, md, ws, options...)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Wrapf(err, "timed out after %s", config.Timeout)
	}

	return err
}

func (t cmdRun) coordinate(ctx context.Context, config launcher.Config, md launcher.Metadata, ws workspace.Workspace, options ...rendezvous.Option) (err error) {
	var (
		port int
		ip   string
		c    workspace.Completion
	)

	if port, err = netx.PortOrFree(config.Port); err != nil {
		return err
	}

	if ip, err = netx.ResolveIP(config.NodeIP); err != nil {
		return err
	}

	log.Println(systemx.HostnameOrLocalhost(), "coordinating", md.Nodes, "nodes for job", md.JobID, "trial", md.TrialID, "runtime port", port)

	rt := clusterrt.New(config.Runtime, clusterrt.OptionNodeIP(ip))
	job := jobs.New(t.Command, jobs.OptionPollInterval(config.JobPollInterval))

	systemx.Notify("READY=1")
	c, err = rendezvous.NewCoordinator(ws, rt, md.Nodes, options...).Run(ctx, port, job)
	if errors.Cause(err) == clusterrt.ErrAddressNotFound {
		return errors.Wrapf(err, "%s did not announce an address, is %s installed and able to start a head node?", config.Runtime, config.Runtime)
	}

	if err != nil {
		return err
	}

	if config.PropagateExit && !c.Succeeded() && c.Exit != nil {
		return errorsx.Exit(*c.Exit, errors.Errorf("job exited with status %d", *c.Exit))
	}

	return nil
}

func (t cmdRun) join(ctx context.Context, config launcher.Config, md launcher.Metadata, ws workspace.Workspace, options ...rendezvous.Option) (err error) {
	rt := clusterrt.New(config.Runtime)

	log.Println(systemx.HostnameOrLocalhost(), "joining job", md.JobID, "trial", md.TrialID, "as rank", md.Rank, "of", md.Nodes)

	systemx.Notify("READY=1")
	if _, err = rendezvous.NewPeer(ws, rt, md.Rank, options...).Run(ctx); err != nil {
		return err
	}

	log.Println("job completed, exiting")
	return nil
}
