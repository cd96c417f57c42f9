// Package executor implements the container-backed execution capability
// of the build core: running a shell snippet inside an isolated
// environment reproducing a named container image, with the recipe's
// srcdir (and, during packaging, pkgdir) bound in read-write and a
// deterministic environment.
//
// [Executor] is the abstract contract the builder pipeline depends on;
// [ContainerdExecutor] is the concrete implementation backed by
// containerd. It resolves and pulls a registry reference (the recipe's
// image field) and binds the work directories in at container creation
// time, so nothing ever needs to copy a tree across the mount boundary.
package executor
