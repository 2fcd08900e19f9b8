//go:build windows

package main

import (
	"os/exec"
	"syscall"
)

// detach starts the child in its own process group so Ctrl+C in the console does not reach it
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}
