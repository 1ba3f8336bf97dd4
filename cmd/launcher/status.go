package main

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/pterm/pterm"

	"github.com/james-lawrence/launcher"
	"github.com/james-lawrence/launcher/cmd/launcher/cmdopts"
	"github.com/james-lawrence/launcher/internal/fsx"
	"github.com/james-lawrence/launcher/rendezvous"
	"github.com/james-lawrence/launcher/workspace"
)

type cmdStatus struct {
	WorkDir string `name:"work-dir" aliases:"ray-work-dir" help:"shared directory used for the rendezvous" default:"${vars_launcher_default_work_dir}" env:"${env_launcher_work_dir}"`
	JobID   string `name:"job" help:"job to inspect" env:"${env_launcher_job_id}" predictor:"launcher.job"`
	TrialID string `name:"trial" help:"trial to inspect" env:"${env_launcher_trial_id}"`
	Nodes   int    `name:"nodes" help:"expected number of nodes, 0 lists every membership record" default:"0"`
}

func (t cmdStatus) Run(gctx *cmdopts.Global) (err error) {
	var (
		address string
		members []int
		c       workspace.Completion
	)

	md := launcher.Metadata{JobID: t.JobID, TrialID: t.TrialID}
	ws := md.Workspace(t.WorkDir)

	if !fsx.DirExists(ws.Dir) {
		return errors.Errorf("workspace not found: %s", ws.Dir)
	}

	if address, err = ws.Address(); fsx.IgnoreIsNotExist(err) != nil {
		return err
	} else if err != nil {
		address = "pending"
	}

	if t.Nodes > 0 {
		members, err = rendezvous.Members(ws, t.Nodes)
	} else {
		members, err = ws.Ranks()
	}

	if fsx.IgnoreIsNotExist(err) != nil {
		return err
	}

	completion := "pending"
	if c, err = ws.Completed(); fsx.IgnoreIsNotExist(err) != nil {
		return err
	} else if err == nil {
		completion = c.Status
		if c.Exit != nil {
			completion = fmt.Sprintf("%s (exit %d)", c.Status, *c.Exit)
		}
	}

	joined := strconv.Itoa(len(members))
	if t.Nodes > 0 {
		joined = fmt.Sprintf("%d/%d", len(members), t.Nodes-1)
	}

	data := pterm.TableData{
		{"record", "value"},
		{"directory", ws.Dir},
		{"trial", ws.TrialID},
		{"address", address},
		{"peers joined", joined},
		{"ranks", fmt.Sprint(members)},
		{"completion", completion},
	}

	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
