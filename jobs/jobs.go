// Package jobs launches the user supplied job once the cluster is assembled
// and monitors it until it exits.
package jobs

import (
	"context"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/james-lawrence/launcher/backoff"
	"github.com/james-lawrence/launcher/internal/errorsx"
)

// DefaultPollInterval how often the job is checked for completion.
const DefaultPollInterval = 10 * time.Second

// ErrEmptyCommand the job has no command to execute.
const ErrEmptyCommand = errorsx.String("job command is empty")

// Unknown exit status reported when the job never ran or was killed by a signal.
const Unknown = -1

// Option for the job.
type Option func(*Job)

// OptionPollInterval how often the job is checked for completion.
func OptionPollInterval(d time.Duration) Option {
	return func(j *Job) {
		if d > 0 {
			j.poll = d
		}
	}
}

// OptionOutput where the job's stdout and stderr are written.
func OptionOutput(stdout, stderr io.Writer) Option {
	return func(j *Job) {
		j.stdout = stdout
		j.stderr = stderr
	}
}

// OptionEnviron additional environment variables for the job.
func OptionEnviron(environ ...string) Option {
	return func(j *Job) {
		j.environ = append(j.environ, environ...)
	}
}

// New job executing the command.
func New(command []string, options ...Option) Job {
	j := Job{
		command: command,
		poll:    DefaultPollInterval,
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}

	for _, opt := range options {
		opt(&j)
	}

	return j
}

// Job a child process launched by the coordinator.
type Job struct {
	command []string
	environ []string
	poll    time.Duration
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// With returns a copy of the job with the options applied.
func (t Job) With(options ...Option) Job {
	t.environ = append([]string(nil), t.environ...)
	for _, opt := range options {
		opt(&t)
	}

	return t
}

func (t Job) String() string {
	return strings.Join(t.command, " ")
}

// Validate the job can be launched.
func (t Job) Validate() error {
	if len(t.command) == 0 {
		return ErrEmptyCommand
	}

	return nil
}

// Run launches the job and blocks until it exits. the job's exit status is
// returned; a non-zero status is not an error. cancelling the context kills
// the job, in which case the context's error is returned alongside the status.
func (t Job) Run(ctx context.Context) (code int, err error) {
	if err = t.Validate(); err != nil {
		return Unknown, err
	}

	cmd := exec.Command(t.command[0], t.command[1:]...)
	cmd.Stdin = t.stdin
	cmd.Stdout = t.stdout
	cmd.Stderr = t.stderr
	if len(t.environ) > 0 {
		cmd.Env = append(os.Environ(), t.environ...)
	}

	if err = cmd.Start(); err != nil {
		return Unknown, errors.Wrapf(err, "unable to launch job: %s", t)
	}

	log.Println("job launched", cmd.Process.Pid, t)

	exited := make(chan error, 1)
	go func() {
		exited <- cmd.Wait()
	}()

	err = backoff.Until(ctx, backoff.Constant(t.poll), nil, func(attempt int) (bool, error) {
		select {
		case werr := <-exited:
			exited <- werr
			return true, nil
		default:
			return false, nil
		}
	})

	if err != nil {
		// the job may have exited during the final sleep.
		select {
		case werr := <-exited:
			return status(cmd, werr), nil
		default:
		}

		log.Println("job interrupted, killing", cmd.Process.Pid, err)
		if kerr := cmd.Process.Kill(); kerr != nil {
			log.Println("failed to kill job", kerr)
		}
	}

	return status(cmd, <-exited), err
}

func status(cmd *exec.Cmd, err error) int {
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}

	if err != nil {
		log.Println("job wait failed", err)
	}

	return Unknown
}
