// Package process terminates browser process trees left behind by a render.
package process

import (
	"errors"
	"fmt"
)

// ErrInvalidPID rejects PIDs that would address the caller's own process group.
var ErrInvalidPID = errors.New("invalid pid")

// KillGroup force-kills pid and every process in its group. It is safe to call
// on a process that already exited.
func KillGroup(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPID, pid)
	}
	return killGroup(pid)
}
