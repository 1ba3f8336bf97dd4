package workspace

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"

	"github.com/james-lawrence/launcher/internal/fsx"
)

const (
	contentJoined = "joined"
	statusDone    = "done"
)

// Publish writes the address record. the record is immutable, when it
// already exists the previously recorded address is returned and the
// provided address is discarded.
func (t Workspace) Publish(address string) (recorded string, err error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", errors.New("refusing to publish a blank address")
	}

	if err = fsx.Publish(t.AddressPath(), []byte(address), filePerm); err == nil {
		return address, nil
	}

	if !errors.Is(err, os.ErrExist) {
		return "", err
	}

	if recorded, err = t.Address(); err != nil {
		return "", err
	}

	return recorded, nil
}

// Address reads the address record. the error satisfies errors.Is(err, os.ErrNotExist)
// while the record is absent or still empty.
func (t Workspace) Address() (address string, err error) {
	var (
		raw []byte
	)

	if raw, err = os.ReadFile(t.AddressPath()); err != nil {
		return "", errors.Wrapf(err, "unable to read address record: %s", t.AddressPath())
	}

	if address = strings.TrimSpace(string(raw)); address == "" {
		return "", errors.Wrapf(os.ErrNotExist, "address record is empty: %s", t.AddressPath())
	}

	return address, nil
}

// Join writes the membership record for the rank. idempotent.
func (t Workspace) Join(rank int) error {
	if rank < 0 {
		return errors.Errorf("invalid rank: %d", rank)
	}

	return fsx.IgnoreIsExist(fsx.Publish(t.MemberPath(rank), []byte(contentJoined), filePerm))
}

// Completion the content of the completion record.
type Completion struct {
	Status string `yaml:"status"`
	// Exit status of the job, nil when unknown.
	Exit *int `yaml:"exit,omitempty"`
}

// Succeeded true when the job is known to have exited cleanly.
func (t Completion) Succeeded() bool {
	return t.Exit != nil && *t.Exit == 0
}

// NewCompletion for a job that exited with the given code.
func NewCompletion(code int) Completion {
	return Completion{Status: statusDone, Exit: &code}
}

// Complete writes the completion record. once present the record is never
// rewritten, completing twice is not an error.
func (t Workspace) Complete(c Completion) (err error) {
	var (
		encoded []byte
	)

	if c.Status == "" {
		c.Status = statusDone
	}

	if encoded, err = yaml.Marshal(c); err != nil {
		return errors.Wrap(err, "unable to encode completion record")
	}

	return fsx.IgnoreIsExist(fsx.Publish(t.CompletionPath(), encoded, filePerm))
}

// Completed reads the completion record. the error satisfies
// errors.Is(err, os.ErrNotExist) while the record is absent.
func (t Workspace) Completed() (c Completion, err error) {
	var (
		raw []byte
	)

	if raw, err = os.ReadFile(t.CompletionPath()); err != nil {
		return c, errors.Wrapf(err, "unable to read completion record: %s", t.CompletionPath())
	}

	return decodeCompletion(raw), nil
}

// records written by older launchers contain only the word done.
func decodeCompletion(raw []byte) (c Completion) {
	if err := yaml.Unmarshal(raw, &c); err != nil || c.Status == "" {
		return Completion{Status: statusDone}
	}

	return c
}
