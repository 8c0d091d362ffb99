//go:build linux

package core

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// setOSThreadName sets the calling OS thread's debug name, so the render
// and sync threads are identifiable in top/perf/a debugger. Must be called
// after runtime.LockOSThread so the name lands on the thread actually
// running the render or sync loop, not whichever OS thread happened to
// service this goroutine beforehand. Thread names are truncated to 15
// bytes by the kernel (PR_SET_NAME).
func setOSThreadName(name string) {
	if len(name) > 15 {
		name = name[:15]
	}
	b := append([]byte(name), 0)
	_ = unix.Prctl(unix.PR_SET_NAME, uintptr(unsafe.Pointer(&b[0])), 0, 0, 0)
}
