// Package clusterrt drives the cluster runtime's command line interface.
// the runtime is treated as an opaque process: the coordinator starts its head
// and scrapes the join address from the output, peers join using that address.
package clusterrt

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/james-lawrence/launcher/internal/errorsx"
)

// DefaultBinary the runtime invoked when none is specified.
const DefaultBinary = "ray"

// ErrAddressNotFound the runtime's output did not announce a join address.
const ErrAddressNotFound = errorsx.String("unable to parse the head address from the runtime output")

// Option for the runtime.
type Option func(*CLI)

// OptionNodeIP advertise the provided ip address when starting the head.
func OptionNodeIP(ip string) Option {
	return func(c *CLI) {
		c.nodeIP = ip
	}
}

// OptionOutput where the output of the runtime's commands is copied.
func OptionOutput(w io.Writer) Option {
	return func(c *CLI) {
		c.output = w
	}
}

// New runtime driven by the binary.
func New(binary string, options ...Option) CLI {
	if strings.TrimSpace(binary) == "" {
		binary = DefaultBinary
	}

	c := CLI{
		binary: binary,
		output: os.Stderr,
	}

	for _, opt := range options {
		opt(&c)
	}

	return c
}

// CLI runtime driven through its command line interface.
type CLI struct {
	binary string
	nodeIP string
	output io.Writer
}

// Marker the text preceding the join address within the head's output.
func (t CLI) Marker() string {
	return Marker(filepath.Base(t.binary))
}

// Head starts the runtime head bound to the port and returns the announced join address.
func (t CLI) Head(ctx context.Context, port int) (address string, err error) {
	var (
		out  []byte
		args = []string{"start", "--head", fmt.Sprintf("--port=%d", port)}
	)

	if t.nodeIP != "" {
		args = append(args, fmt.Sprintf("--node-ip-address=%s", t.nodeIP))
	}

	log.Println("starting runtime head", t.binary, strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, t.binary, args...)
	out, err = cmd.CombinedOutput()
	if _, cerr := t.output.Write(out); cerr != nil {
		log.Println("failed to copy runtime output", cerr)
	}

	if address, perr := ParseAddress(t.Marker(), out); perr == nil {
		if err != nil {
			log.Println("runtime head announced an address but exited with an error", err)
		}

		return address, nil
	} else if err != nil {
		return "", errors.Wrapf(perr, "%s start --head failed: %v", t.binary, err)
	} else {
		return "", perr
	}
}

// Join the runtime cluster announced at the address. blocks until the join command exits.
func (t CLI) Join(ctx context.Context, address string) error {
	log.Println("joining runtime cluster", t.binary, "start --address", address)
	cmd := exec.CommandContext(ctx, t.binary, "start", "--address", address)
	cmd.Stdout = t.output
	cmd.Stderr = t.output

	return errors.Wrapf(cmd.Run(), "%s start --address %s", t.binary, address)
}

// Marker for the given runtime name.
func Marker(runtime string) string {
	return fmt.Sprintf("%s start --address=", runtime)
}

// ParseAddress scans the output for the first line containing the marker and returns
// the text following it, trimmed of whitespace and quotes.
func ParseAddress(marker string, output []byte) (string, error) {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		idx := strings.LastIndex(line, marker)
		if idx < 0 {
			continue
		}

		address := strings.TrimSpace(line[idx+len(marker):])
		address = strings.TrimSpace(strings.NewReplacer("'", "", "\"", "").Replace(address))
		if address == "" {
			continue
		}

		return address, nil
	}

	if err := scanner.Err(); err != nil {
		return "", errors.Wrap(err, "unable to scan runtime output")
	}

	return "", ErrAddressNotFound
}
