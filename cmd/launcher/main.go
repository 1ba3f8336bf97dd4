// Package main is the launcher: every node of the job runs it with the same
// arguments, rank 0 coordinates the cluster runtime and runs the job while the
// remaining ranks join the runtime and wait for the job to complete.
package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"sync"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/posener/complete"
	"github.com/willabides/kongplete"

	"github.com/james-lawrence/launcher"
	"github.com/james-lawrence/launcher/cmd/launcher/autocomplete"
	"github.com/james-lawrence/launcher/cmd/launcher/cmdopts"
	"github.com/james-lawrence/launcher/internal/debugx"
	"github.com/james-lawrence/launcher/internal/envx"
	"github.com/james-lawrence/launcher/internal/errorsx"
	"github.com/james-lawrence/launcher/internal/profilex"
	"github.com/james-lawrence/launcher/internal/systemx"
)

func main() {
	var shellCli struct {
		cmdopts.Global
		Run                cmdRun                       `cmd:"" default:"withargs" help:"rendezvous with the other nodes of the job and run the job on rank 0"`
		Status             cmdStatus                    `cmd:"" help:"display the rendezvous records of a job"`
		Version            cmdVersion                   `cmd:"" help:"display versioning information"`
		InstallCompletions kongplete.InstallCompletions `cmd:"" help:"install shell completions"`
	}

	var (
		err error
		ctx *kong.Context
	)

	shellCli.Context, shellCli.Shutdown = context.WithCancel(context.Background())
	shellCli.Cleanup = &sync.WaitGroup{}

	log.SetFlags(log.Flags() | log.Lshortfile)
	go debugx.DumpOnSignal(shellCli.Context, syscall.SIGUSR2)
	go systemx.Cleanup(shellCli.Context, shellCli.Shutdown, shellCli.Cleanup, os.Kill, os.Interrupt, syscall.SIGTERM)(func() {
		log.Println("waiting for systems to shutdown")
	})

	parser := kong.Must(
		&shellCli,
		kong.Name("launcher"),
		kong.Description("bootstraps a multi node cluster runtime through a shared directory and runs a job on it"),
		kong.Vars{
			"vars_launcher_default_work_dir":          launcher.DefaultWorkDir,
			"vars_launcher_default_runtime":           launcher.DefaultRuntime,
			"vars_launcher_default_port":              strconv.Itoa(launcher.DefaultPort),
			"vars_launcher_default_poll_interval":     launcher.DefaultPollInterval.String(),
			"vars_launcher_default_job_poll_interval": launcher.DefaultJobPollInterval.String(),
			"env_launcher_work_dir":                   launcher.EnvWorkDir,
			"env_launcher_runtime":                    launcher.EnvRuntime,
			"env_launcher_port":                       launcher.EnvPort,
			"env_launcher_node_ip":                    launcher.EnvNodeIP,
			"env_launcher_poll_interval":              launcher.EnvPollInterval,
			"env_launcher_job_poll":                   launcher.EnvJobPoll,
			"env_launcher_timeout":                    launcher.EnvTimeout,
			"env_launcher_watch":                      launcher.EnvWatch,
			"env_launcher_propagate_exit":             launcher.EnvPropagateExit,
			"env_launcher_config":                     launcher.EnvConfig,
			"env_launcher_env_file":                   launcher.EnvFile,
			"env_launcher_job_id":                     launcher.EnvJobID,
			"env_launcher_trial_id":                   launcher.EnvTrialID,
		},
		kong.UsageOnError(),
		kong.Bind(&shellCli.Global),
	)

	// Run kongplete.Complete to handle completion requests
	kongplete.Complete(parser,
		kongplete.WithPredictor("launcher.job", complete.PredictFunc(autocomplete.Jobs)),
	)

	if ctx, err = parser.Parse(os.Args[1:]); err != nil {
		shellCli.LogCause(err)
		os.Exit(1)
	}

	if err = shellCli.LogCause(shellCli.Configure()); err != nil {
		os.Exit(1)
	}

	profile := profilex.Start(
		envx.String("", launcher.EnvProfile),
		envx.String("", launcher.EnvProfileDir),
	)

	if err = shellCli.LogCause(ctx.Run()); err != nil {
		shellCli.Shutdown()
	}

	profile.Stop()
	shellCli.Shutdown()
	shellCli.Cleanup.Wait()

	if code := errorsx.ExitCode(err); code != 0 {
		os.Exit(code)
	}
}
