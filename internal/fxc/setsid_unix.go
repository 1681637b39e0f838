//go:build !windows

package fxc

import "syscall"

// sessionAttr places the compiler in its own process group so a terminal
// interrupt reaches fxwatch first; the compiler is then stopped through the
// cancelled context.
func sessionAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}
