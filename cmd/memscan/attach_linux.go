//go:build linux

package main

import (
	"fmt"

	"memscan/process"
	"memscan/process_linux"
)

// attach opens the target process by PID, or by exact name when pid is zero
func attach(pid int, name string) (*process_linux.LinuxProcess, error) {
	if pid == 0 && name == "" {
		return nil, fmt.Errorf("either --pid or --name is required")
	}

	if pid == 0 {
		pids, err := process_linux.FindPIDsByName(name)
		if err != nil {
			return nil, fmt.Errorf("failed to look up %q: %w", name, err)
		}
		switch len(pids) {
		case 0:
			return nil, fmt.Errorf("no process named %q", name)
		case 1:
			pid = int(pids[0])
		default:
			return nil, fmt.Errorf("%d processes named %q, use --pid", len(pids), name)
		}
	}

	return process_linux.NewWithPID(process.ProcessID(pid))
}
