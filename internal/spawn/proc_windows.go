//go:build windows

package spawn

import "os/exec"

func setProcAttr(cmd *exec.Cmd) {}

// Windows has no process groups in the POSIX sense; termination and kill
// collapse into one hard stop of the direct child.
func signalGroup(cmd *exec.Cmd) {
	killGroup(cmd)
}

func killGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = cmd.Process.Kill()
}
