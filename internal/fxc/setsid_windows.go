//go:build windows

package fxc

import "syscall"

// sessionAttr returns an empty SysProcAttr on Windows where process groups
// are not configured this way.
func sessionAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{}
}
