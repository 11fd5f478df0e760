//go:build !unix

package readiness

import "runtime"

func machine() string {
	return runtime.GOARCH
}
