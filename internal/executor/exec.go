package executor

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrCanceled is returned by [Container.Exec] when ctx is canceled
// while a command is running.
var ErrCanceled = errors.New("executor: execution canceled")

var execCounter atomic.Uint64

// nextExecID returns a process ID unique within this executor's
// lifetime, suitable for containerd's per-task exec ID namespace.
func nextExecID() string {
	return fmt.Sprintf("exec-%d", execCounter.Add(1))
}
