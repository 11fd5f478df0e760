//go:build unix

package readiness

import (
	"runtime"

	"golang.org/x/sys/unix"
)

func machine() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return runtime.GOARCH
	}
	m := unix.ByteSliceToString(uts.Machine[:])
	if m == "" {
		return runtime.GOARCH
	}
	return m
}
