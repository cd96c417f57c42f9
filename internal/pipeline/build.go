package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/opkgforge/corebuild/internal/executor"
	"github.com/opkgforge/corebuild/internal/fetch"
	"github.com/opkgforge/corebuild/internal/hooks"
	"github.com/opkgforge/corebuild/internal/paths"
	"github.com/opkgforge/corebuild/internal/recipe"
)

// Options controls one [Builder.Run] invocation.
type Options struct {
	RecipeDir string // Directory containing the "package" recipe file.
	WorkDir   string // Root of the per-recipe, per-architecture build tree.
	DistDir   string // Root of the output directory for finished ipk archives.

	// Archs restricts the build to a subset of the recipe's declared
	// architectures. Empty means build every declared architecture.
	Archs []string

	// Env seeds the parse-phase shell environment, forwarded to
	// internal/parser unchanged.
	Env map[string]string
}

// Result is returned after [Builder.Run] completes every requested
// architecture.
type Result struct {
	// Archives maps architecture tag to the ipk archive paths produced
	// for that architecture, in package-declaration order.
	Archives map[string][]string
}

// Builder drives a recipe through PARSE, FETCH, PREPARE, BUILD,
// PACKAGE, and ARCHIVE, firing hooks between the phases.
type Builder struct {
	Executor executor.Executor
	Fetcher  fetch.Fetcher
	Hooks    *hooks.Registry

	// Image is the OCI image to pull for a container whose recipe
	// variant doesn't declare its own; recipe.BuildRecipe.Image is used
	// when non-empty.
	Image string

	// Hook-requested state for the run in progress. The pipeline is
	// single-threaded, so plain fields suffice.
	imageOverrides map[string]string
	cleanups       []func(ctx context.Context) error
}

// OverrideImage replaces the container image used for arch's remaining
// phases. It only takes effect before that architecture's container is
// started, which limits it to the post_parse and post_fetch_sources
// hooks.
func (b *Builder) OverrideImage(arch, image string) {
	if b.imageOverrides == nil {
		b.imageOverrides = make(map[string]string)
	}
	b.imageOverrides[arch] = image
}

// RegisterCleanup schedules fn to run after the current architecture's
// phases finish, in reverse registration order, whether or not they
// succeeded. Cleanup failures are logged and do not fail the build.
func (b *Builder) RegisterCleanup(fn func(ctx context.Context) error) {
	b.cleanups = append(b.cleanups, fn)
}

// runCleanups drains every registered cleanup, last-registered first.
func (b *Builder) runCleanups(ctx context.Context) {
	for i := len(b.cleanups) - 1; i >= 0; i-- {
		if err := b.cleanups[i](ctx); err != nil {
			slog.Warn("hook cleanup failed", "error", err)
		}
	}
	b.cleanups = nil
}

// New returns a Builder wired to run containers through exec, fetch
// sources through fetcher, and dispatch hooks through registry.
func New(exec executor.Executor, fetcher fetch.Fetcher, registry *hooks.Registry) *Builder {
	return &Builder{Executor: exec, Fetcher: fetcher, Hooks: registry}
}

// Run parses the recipe at opts.RecipeDir and builds every requested
// architecture in declaration order. Each architecture is fail-fast:
// Run stops at the first architecture failure and reports which one;
// retrying or continuing with the remaining architectures is the
// caller's call.
func (b *Builder) Run(ctx context.Context, opts Options) (*Result, error) {
	rec, err := b.parse(ctx, opts)
	if err != nil {
		return nil, err
	}

	archs := opts.Archs
	if len(archs) == 0 {
		archs = rec.Archs
	}

	result := &Result{Archives: make(map[string][]string, len(archs))}

	for _, arch := range archs {
		slog.Info("building architecture", "arch", arch, "recipe", rec.RecipeDir)

		archives, err := b.buildArch(ctx, rec, arch, opts)
		if err != nil {
			return nil, err
		}
		result.Archives[arch] = archives
	}

	return result, nil
}

// buildArch drives one architecture's BuildRecipe through FETCH,
// PREPARE, BUILD, and then PACKAGE/ARCHIVE for every package, sharing
// one container across PREPARE, BUILD, and PACKAGE.
func (b *Builder) buildArch(ctx context.Context, rec *recipe.Recipe, arch string, opts Options) ([]string, error) {
	defer b.runCleanups(ctx)

	bv, ok := rec.Variants[arch]
	if !ok {
		return nil, &PhaseError{Arch: arch, Phase: "parse", Cause: fmt.Errorf("%w: architecture %q not declared by recipe", ErrPipeline, arch)}
	}

	recipeName := filepath.Base(rec.RecipeDir)
	srcDir := paths.SrcDir(opts.WorkDir, recipeName, arch)
	if err := os.MkdirAll(srcDir, paths.DefaultDirMode); err != nil {
		return nil, &PhaseError{Arch: arch, Phase: "fetch", Cause: err}
	}

	if err := b.fetch(ctx, rec, bv, srcDir); err != nil {
		return nil, err
	}

	// Cancellation is honoured at every phase boundary; the executor
	// additionally kills any in-flight process on its own.
	if err := ctx.Err(); err != nil {
		return nil, &PhaseError{Arch: arch, Phase: "fetch", Cause: err}
	}

	basePkgDir := paths.PkgDir(opts.WorkDir, recipeName, arch, "")
	if err := os.MkdirAll(basePkgDir, paths.DefaultDirMode); err != nil {
		return nil, &PhaseError{Arch: arch, Phase: "package", Cause: err}
	}

	image := bv.Image
	if image == "" {
		image = b.Image
	}
	if override, ok := b.imageOverrides[arch]; ok {
		image = override
	}

	ctr, err := b.Executor.StartContainer(ctx, containerID(recipeName, arch), image, []executor.Mount{
		{Source: srcDir, Target: mountSrc},
		{Source: basePkgDir, Target: mountPkg},
		{Source: opts.DistDir, Target: mountDist},
	})
	if err != nil {
		return nil, &PhaseError{Arch: arch, Phase: "prepare", Cause: fmt.Errorf("start container: %w", err)}
	}
	defer ctr.Destroy(ctx)

	if err := b.prepare(ctx, rec, bv, srcDir, ctr); err != nil {
		return nil, err
	}

	if err := b.build(ctx, rec, bv, srcDir, ctr); err != nil {
		return nil, err
	}

	var archives []string

	for _, name := range bv.PackageNames {
		if err := ctx.Err(); err != nil {
			return nil, &PhaseError{Arch: arch, Phase: "package", Cause: err}
		}
		pkg := bv.Packages[name]

		pkgDir := paths.PkgDir(opts.WorkDir, recipeName, arch, name)
		if err := os.RemoveAll(pkgDir); err != nil {
			return nil, &PhaseError{Arch: arch, Phase: "package", Cause: err}
		}
		if err := os.MkdirAll(pkgDir, paths.DefaultDirMode); err != nil {
			return nil, &PhaseError{Arch: arch, Phase: "package", Cause: err}
		}

		if err := b.pkg(ctx, rec, bv, pkg, srcDir, pkgDir, ctr); err != nil {
			return nil, err
		}

		archivePath := paths.ArchiveFile(opts.DistDir, arch, pkg.Name, pkg.Version)
		if err := b.archive(ctx, rec, bv, pkg, pkgDir, archivePath); err != nil {
			return nil, err
		}

		archives = append(archives, archivePath)
	}

	return archives, nil
}

func containerID(recipeName, arch string) string {
	return fmt.Sprintf("corebuild-%s-%s", recipeName, arch)
}
