//go:build linux

package process_linux

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"memscan/process"
)

// FindByPID returns basic info for a running process, or an error if the
// PID does not exist
func FindByPID(pid process.ProcessID) (*process.ProcessInfo, error) {
	if !pidExists(pid) {
		return nil, process.ErrProcessUnavailable
	}

	name := ""
	if comm, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(int(pid)), "comm")); err == nil {
		name = strings.TrimSuffix(string(comm), "\n")
	}

	return &process.ProcessInfo{PID: pid, Name: name}, nil
}

// FindPIDsByName walks /proc and returns the PIDs of all processes whose
// comm name matches exactly
func FindPIDsByName(name string) ([]process.ProcessID, error) {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil, err
	}

	var pids []process.ProcessID
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		pid, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}

		comm, err := os.ReadFile(filepath.Join("/proc", entry.Name(), "comm"))
		if err != nil {
			// Process went away between ReadDir and ReadFile
			continue
		}

		if strings.TrimSuffix(string(comm), "\n") == name {
			pids = append(pids, process.ProcessID(pid))
		}
	}

	return pids, nil
}
