package cmdopts

import (
	"context"
	"log"
	"os"
	"sync"

	"github.com/james-lawrence/launcher"
	"github.com/james-lawrence/launcher/internal/envx"
	"github.com/james-lawrence/launcher/internal/logx"
	"github.com/pkg/errors"
)

type Global struct {
	Verbosity int                `help:"increase verbosity of logging" short:"v" type:"counter" default:"0"`
	EnvFile   string             `name:"env-file" help:"dotenv file applied to the environment before the node's identity is resolved" env:"${env_launcher_env_file}" type:"path"`
	Context   context.Context    `kong:"-"`
	Shutdown  context.CancelFunc `kong:"-"`
	Cleanup   *sync.WaitGroup    `kong:"-"`
}

// Verbose reports if stack traces should be logged.
func (t Global) Verbose() bool {
	return t.Verbosity > 0 || envx.Boolean(false, launcher.EnvLogsVerbose)
}

// Configure the process from the global options: logging and the environment file.
func (t Global) Configure() error {
	log.SetFlags(log.Flags() | log.Lshortfile)
	log.SetOutput(os.Stderr)

	if t.EnvFile == "" {
		return nil
	}

	return errors.Wrap(envx.LoadFile(t.EnvFile), "environment file")
}

// LogCause logs the error, including the stack trace when verbose.
func (t Global) LogCause(err error) error {
	return logx.Cause(t.Verbose(), err)
}
