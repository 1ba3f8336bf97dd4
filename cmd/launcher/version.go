package main

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/logrusorgru/aurora"
	"github.com/mattn/go-isatty"

	"github.com/james-lawrence/launcher/cmd/launcher/cmdopts"
)

type cmdVersion struct{}

func (t cmdVersion) Run(gctx *cmdopts.Global) (err error) {
	var (
		ok       bool
		info     *debug.BuildInfo
		ts       time.Time
		revision = "unknown"
		dirty    bool
	)

	if info, ok = debug.ReadBuildInfo(); !ok {
		return errors.New("unable to detect build information")
	}

	for _, v := range info.Settings {
		switch v.Key {
		case "vcs.modified":
			if dirty, err = strconv.ParseBool(v.Value); err != nil {
				return err
			}
		case "vcs.revision":
			revision = v.Value
		case "vcs.time":
			if ts, err = time.Parse(time.RFC3339, v.Value); err != nil {
				return err
			}
		}
	}

	au := aurora.NewAurora(isatty.IsTerminal(os.Stdout.Fd()))
	if _, err = fmt.Println(au.Bold(info.Main.Path), info.Main.Version, info.GoVersion); err != nil {
		return err
	}

	if _, err = fmt.Println("revision", revision, ts.Format("2006-01-02")); err != nil {
		return err
	}

	if dirty {
		_, err = fmt.Println(au.Red("unsupported modified build"))
	}

	return err
}
