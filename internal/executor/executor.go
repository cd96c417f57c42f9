package executor

import "context"

// Mount binds a host directory into the container's filesystem at
// container creation time. Source is a host path, Target the
// corresponding path inside the container.
type Mount struct {
	Source string
	Target string
}

// RunOptions controls one command execution inside an already-started
// container.
type RunOptions struct {
	// Env are additional environment bindings layered over the
	// container's base environment: srcdir, pkgdir, recipe, pkgname,
	// pkgver, the host/architecture marker, and the recipe's flags.
	Env map[string]string

	// WorkDir is the container-side working directory for this
	// invocation (e.g. the mounted srcdir or pkgdir path).
	WorkDir string

	// Script is the shell snippet to execute, run as `sh -c script`.
	Script string
}

// Result is the outcome of one RunOptions execution.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Executor starts containers from an image reference and runs shell
// snippets inside them.
type Executor interface {
	// StartContainer pulls image (if not already present), creates a
	// container with the given bind mounts, and starts its long-running
	// task. id scopes the container uniquely within this executor.
	StartContainer(ctx context.Context, id, image string, mounts []Mount) (Container, error)
}

// Container is a running, executor-backed environment that can run
// repeated commands (the prepare/build/package phases all share one
// Container per architecture) and must be destroyed when no longer
// needed.
type Container interface {
	// Exec runs opts.Script inside the container and waits for it to
	// exit. A non-zero exit code is not itself an error; it is the
	// caller's responsibility (the builder pipeline) to convert it to
	// [ErrBuildScript].
	Exec(ctx context.Context, opts RunOptions) (*Result, error)

	// Destroy kills and removes the container's task and filesystem
	// state. Safe to call on an already-destroyed container.
	Destroy(ctx context.Context)
}
