package executor

import (
	"context"
	"log/slog"
	"strings"
	"syscall"

	containerd "github.com/containerd/containerd/v2/client"
	"github.com/containerd/containerd/v2/pkg/cio"
	"github.com/containerd/containerd/v2/pkg/oci"
	"github.com/containerd/errdefs"
	specs "github.com/opencontainers/runtime-spec/specs-go"
)

const (
	// snapshotter used for container filesystems. fuse-overlayfs provides
	// overlay semantics without requiring root privileges (no mount(2)),
	// allowing the build core to run as a regular user.
	snapshotter = "fuse-overlayfs"

	// ociRuntime is the OCI runtime shim for running containers.
	ociRuntime = "io.containerd.runc.v2"
)

// ContainerdExecutor runs recipe phases inside containerd-managed
// containers.
type ContainerdExecutor struct {
	client   *containerd.Client
	platform string
}

// NewContainerdExecutor connects to the containerd daemon at address,
// scoping all operations to namespace. The returned executor must be
// closed with [ContainerdExecutor.Close] when no longer needed.
func NewContainerdExecutor(address, namespace, platform string) (*ContainerdExecutor, error) {
	client, err := containerd.New(address, containerd.WithDefaultNamespace(namespace))
	if err != nil {
		return nil, &RuntimeError{Op: "connect", Cause: err}
	}
	if platform == "" {
		platform = "linux/amd64"
	}
	return &ContainerdExecutor{client: client, platform: platform}, nil
}

// Close closes the containerd client connection.
func (e *ContainerdExecutor) Close() error {
	return e.client.Close()
}

// StartContainer pulls image (unpacking it for e.platform if not already
// present), creates a container bound to the given host mounts, and
// starts a long-running task so subsequent Exec calls have a running
// process to attach to. Any existing container with the same ID is
// removed first.
func (e *ContainerdExecutor) StartContainer(ctx context.Context, id, image string, mounts []Mount) (Container, error) {
	img, err := e.client.Pull(ctx, image, containerd.WithPlatform(e.platform), containerd.WithPullUnpack)
	if err != nil {
		return nil, &RuntimeError{Op: "pull " + image, Cause: err}
	}

	c := &containerdContainer{client: e.client, id: id, platform: e.platform}
	c.remove(ctx)

	ctr, err := e.client.NewContainer(ctx, id,
		containerd.WithImage(img),
		containerd.WithSnapshotter(snapshotter),
		containerd.WithNewSnapshot(id, img),
		containerd.WithRuntime(ociRuntime, nil),
		containerd.WithNewSpec(
			oci.WithDefaultSpecForPlatform(e.platform),
			oci.WithImageConfig(img),
			oci.WithHostNamespace(specs.NetworkNamespace),
			oci.WithHostResolvconf,
			oci.WithMounts(ociMounts(mounts)),
			oci.WithProcessArgs("sleep", "infinity"),
		),
	)
	if err != nil {
		return nil, &RuntimeError{Op: "create container", Cause: err}
	}

	task, err := ctr.NewTask(ctx, cio.NullIO)
	if err != nil {
		ctr.Delete(ctx, containerd.WithSnapshotCleanup)
		return nil, &RuntimeError{Op: "create task", Cause: err}
	}
	if err := task.Start(ctx); err != nil {
		task.Delete(ctx)
		ctr.Delete(ctx, containerd.WithSnapshotCleanup)
		return nil, &RuntimeError{Op: "start task", Cause: err}
	}

	slog.Debug("container started", "id", id, "image", image, "platform", e.platform)
	return c, nil
}

// ociMounts converts [Mount]s into OCI bind mount specs.
func ociMounts(mounts []Mount) []specs.Mount {
	out := make([]specs.Mount, len(mounts))
	for i, m := range mounts {
		out[i] = specs.Mount{
			Type:        "bind",
			Source:      m.Source,
			Destination: m.Target,
			Options:     []string{"rbind", "rw"},
		}
	}
	return out
}

// containerdContainer is the concrete [Container] backed by a single
// containerd container and its running task.
type containerdContainer struct {
	client   *containerd.Client
	id       string
	platform string
}

// Exec runs opts.Script inside the container via "sh -c", waiting for it
// to exit.
func (c *containerdContainer) Exec(ctx context.Context, opts RunOptions) (*Result, error) {
	pspec, err := c.buildProcessSpec(ctx, opts)
	if err != nil {
		return nil, &RuntimeError{Op: "build process spec", Cause: err}
	}

	var stdout, stderr strings.Builder
	exitCode, err := c.execProcess(ctx, pspec, &stdout, &stderr)
	if err != nil {
		return nil, err
	}

	return &Result{ExitCode: exitCode, Stdout: stdout.String(), Stderr: stderr.String()}, nil
}

// buildProcessSpec builds an OCI process spec for `sh -c opts.Script`,
// copying the container's base spec and overriding env/cwd/args.
func (c *containerdContainer) buildProcessSpec(ctx context.Context, opts RunOptions) (*specs.Process, error) {
	ctr, err := c.client.LoadContainer(ctx, c.id)
	if err != nil {
		return nil, err
	}

	spec, err := ctr.Spec(ctx)
	if err != nil {
		return nil, err
	}

	pspec := *spec.Process
	pspec.Terminal = false
	pspec.Args = []string{"/bin/sh", "-c", opts.Script}

	if len(opts.Env) > 0 {
		pspec.Env = mergeEnv(pspec.Env, opts.Env)
	}
	if opts.WorkDir != "" {
		pspec.Cwd = opts.WorkDir
	}

	return &pspec, nil
}

func mergeEnv(base []string, overrides map[string]string) []string {
	merged := make(map[string]string, len(base)+len(overrides))
	for _, entry := range base {
		if k, v, ok := strings.Cut(entry, "="); ok {
			merged[k] = v
		}
	}
	for k, v := range overrides {
		merged[k] = v
	}

	result := make([]string, 0, len(merged))
	for k, v := range merged {
		result = append(result, k+"="+v)
	}
	return result
}

// execProcess starts pspec as an additional exec on the container's
// running task and waits for it to exit.
func (c *containerdContainer) execProcess(ctx context.Context, pspec *specs.Process, stdout, stderr *strings.Builder) (int, error) {
	ctr, err := c.client.LoadContainer(ctx, c.id)
	if err != nil {
		return 0, &RuntimeError{Op: "load container", Cause: err}
	}
	task, err := ctr.Task(ctx, nil)
	if err != nil {
		return 0, &RuntimeError{Op: "load task", Cause: err}
	}

	process, err := task.Exec(ctx, nextExecID(), pspec, cio.NewCreator(
		cio.WithStreams(nil, stdout, stderr),
	))
	if err != nil {
		return 0, &RuntimeError{Op: "exec", Cause: err}
	}

	statusC, err := process.Wait(ctx)
	if err != nil {
		process.Delete(ctx)
		return 0, &RuntimeError{Op: "wait", Cause: err}
	}

	if err := process.Start(ctx); err != nil {
		process.Delete(ctx)
		return 0, &RuntimeError{Op: "start exec", Cause: err}
	}

	select {
	case <-ctx.Done():
		process.Kill(ctx, syscall.SIGKILL)
		<-statusC
		process.Delete(ctx)
		return 0, ErrCanceled
	case exitStatus := <-statusC:
		process.Delete(ctx)
		code, _, err := exitStatus.Result()
		if err != nil {
			return 0, &RuntimeError{Op: "exit status", Cause: err}
		}
		return int(code), nil
	}
}

// Destroy kills and removes the container along with its snapshot.
// Best-effort: failures are logged, not returned.
func (c *containerdContainer) Destroy(ctx context.Context) {
	ctr, err := c.client.LoadContainer(ctx, c.id)
	if err != nil {
		if !errdefs.IsNotFound(err) {
			slog.Warn("failed to load container for destruction", "id", c.id, "error", err)
		}
		return
	}

	if task, err := ctr.Task(ctx, nil); err == nil {
		task.Kill(ctx, syscall.SIGKILL)
		task.Delete(ctx, containerd.WithProcessKill)
	}

	if err := ctr.Delete(ctx, containerd.WithSnapshotCleanup); err != nil && !errdefs.IsNotFound(err) {
		slog.Warn("failed to delete container during destruction", "id", c.id, "error", err)
	}
}

// remove destroys any stale container from a previous run with the same
// ID, a no-op if none exists.
func (c *containerdContainer) remove(ctx context.Context) {
	existing, err := c.client.LoadContainer(ctx, c.id)
	if err != nil {
		return
	}
	if task, err := existing.Task(ctx, nil); err == nil {
		task.Kill(ctx, syscall.SIGKILL)
		task.Delete(ctx, containerd.WithProcessKill)
	}
	existing.Delete(ctx, containerd.WithSnapshotCleanup)
}
