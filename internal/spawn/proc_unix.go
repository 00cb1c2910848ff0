//go:build !windows

package spawn

import (
	"os/exec"
	"syscall"
)

// setProcAttr places the child in its own process group so termination
// signals reach the whole agent tree, not just the direct child.
func setProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// signalGroup delivers SIGTERM to the child's process group, giving the
// agent a chance to flush and exit.
func signalGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	// Negative pid addresses the process group. ESRCH just means the group
	// is already gone.
	_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM)
}

// killGroup force-kills the child's process group.
func killGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}
