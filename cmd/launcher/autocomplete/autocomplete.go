package autocomplete

import (
	"os"
	"strings"

	"github.com/posener/complete"

	"github.com/james-lawrence/launcher"
	"github.com/james-lawrence/launcher/internal/envx"
)

var workDirFlags = []string{"--work-dir", "--ray-work-dir"}

// workDir resolves the work directory from the arguments typed so far, falling
// back to the environment. the last occurrence of the flag wins.
func workDir(args complete.Args) (dir string) {
	for i, arg := range args.Completed {
		for _, flag := range workDirFlags {
			if v, ok := strings.CutPrefix(arg, flag+"="); ok {
				dir = v
			} else if arg == flag && i+1 < len(args.Completed) {
				dir = args.Completed[i+1]
			}
		}
	}

	if dir == "" {
		return envx.String(launcher.DefaultWorkDir, launcher.EnvWorkDir)
	}

	return dir
}

// Jobs predicts the job ids present within the work directory.
func Jobs(args complete.Args) (results []string) {
	entries, err := os.ReadDir(workDir(args))
	if err != nil {
		return nil
	}

	for _, d := range entries {
		if !d.IsDir() {
			continue
		}

		if name := d.Name(); strings.HasPrefix(name, args.Last) {
			results = append(results, name)
		}
	}

	return results
}
