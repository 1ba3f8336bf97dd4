package profilex

import (
	"log"
	"os"
	"strings"

	"github.com/pkg/profile"
)

type Stoppable interface {
	Stop()
}

type StopFunc func()

func (t StopFunc) Stop() {
	t()
}

func Noop() Stoppable {
	return StopFunc(func() {})
}

// Start profiling based on the provided mode (cpu, mem, block, mutex, trace).
// an unknown or blank mode disables profiling.
func Start(mode string, dir string) Stoppable {
	var (
		option func(*profile.Profile)
	)

	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "":
		return Noop()
	case "cpu":
		option = profile.CPUProfile
	case "mem":
		option = profile.MemProfile
	case "block":
		option = profile.BlockProfile
	case "mutex":
		option = profile.MutexProfile
	case "trace":
		option = profile.TraceProfile
	default:
		log.Println("unknown profiling mode, profiling disabled", mode)
		return Noop()
	}

	if dir == "" {
		dir = os.TempDir()
	}

	return profile.Start(option, profile.ProfilePath(dir), profile.NoShutdownHook, profile.Quiet)
}
