//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mitchellh/go-ps"
)

// ExecutableName returns the base name of the running binary, or fallback
// when it cannot be determined.
func ExecutableName(fallback string) string {
	path, err := os.Executable()
	if err != nil {
		return fallback
	}

	return filepath.Base(path)
}

// FindInstances returns the PIDs of other processes running executable.
// On Windows the ".exe" suffix is optional.
func FindInstances(executable string) ([]int, error) {
	processList, err := ps.Processes()
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	return matchInstances(processList, executable, os.Getpid()), nil
}

// matchInstances filters processList down to executable, skipping self.
func matchInstances(processList []ps.Process, executable string, self int) []int {
	want := normalizeExecutable(executable)

	var pids []int

	for _, process := range processList {
		if process.Pid() == self {
			continue
		}

		if normalizeExecutable(process.Executable()) != want {
			continue
		}

		pids = append(pids, process.Pid())
	}

	return pids
}

// normalizeExecutable makes names comparable across platforms.
func normalizeExecutable(name string) string {
	if runtime.GOOS == "windows" {
		return strings.TrimSuffix(strings.ToLower(name), ".exe")
	}

	return name
}
