package systemx

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/coreos/go-systemd/v22/daemon"
)

// HostnameOrLocalhost returns the hostname, otherwise fallsback to localhost.
func HostnameOrLocalhost() string {
	const localhost = "localhost"
	return HostnameOrDefault(localhost)
}

// HostnameOrDefault returns the hostname, or the provided fallback.
func HostnameOrDefault(fallback string) string {
	var (
		err      error
		hostname string
	)

	if hostname, err = os.Hostname(); err != nil {
		log.Println("failed to get hostname", err)
		return fallback
	}

	return hostname
}

// Cleanup - waits for one of the provided signals, or for the provided context's
// done event to be received. Once received the cleanup function is executed and
// blocks while it waits for everything to finish
func Cleanup(ctx context.Context, cancel func(), wg *sync.WaitGroup, sigs ...os.Signal) func(func()) {
	return func(cleanup func()) {
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, sigs...)
		defer signal.Stop(signals)

		select {
		case <-ctx.Done():
		case <-signals:
			cancel()
		}

		cleanup()
		wg.Wait()
	}
}

// Notify reports state to the service manager. a noop when the process
// is not supervised by systemd.
func Notify(states ...string) {
	if _, err := daemon.SdNotify(false, strings.Join(states, "\n")); err != nil {
		log.Println("failed to notify service manager", err)
	}
}

// Status reports a human readable status to the service manager.
func Status(s string) {
	Notify("STATUS=" + s)
}
