package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/opkgforge/corebuild/internal/executor"
	"github.com/opkgforge/corebuild/internal/fetch"
	"github.com/opkgforge/corebuild/internal/hooks"
	"github.com/opkgforge/corebuild/internal/ipk"
	"github.com/opkgforge/corebuild/internal/parser"
	"github.com/opkgforge/corebuild/internal/recipe"
)

// parse is the PARSE phase: load and specialize the recipe, then fire
// post_parse.
func (b *Builder) parse(ctx context.Context, opts Options) (*recipe.Recipe, error) {
	rec, err := parser.Parse(ctx, opts.RecipeDir, parser.Options{Env: opts.Env})
	if err != nil {
		return nil, &PhaseError{Phase: "parse", Cause: err}
	}

	if err := b.Hooks.FirePostParse(ctx, hooks.ParseArgs{Builder: b, Recipe: rec}); err != nil {
		return nil, &PhaseError{Phase: "parse", Cause: err}
	}

	return rec, nil
}

// fetch is the FETCH phase: acquire and verify every declared source
// into srcDir, then fire post_fetch_sources.
func (b *Builder) fetch(ctx context.Context, rec *recipe.Recipe, bv *recipe.BuildRecipe, srcDir string) error {
	slog.Info("fetching sources", "arch", bv.Arch)

	if err := fetch.Acquire(ctx, b.Fetcher, bv, srcDir); err != nil {
		return &PhaseError{Arch: bv.Arch, Phase: "fetch", Cause: err}
	}

	if err := b.Hooks.FirePostFetchSources(ctx, hooks.FetchArgs{Builder: b, Recipe: rec, Build: bv, SrcDir: srcDir}); err != nil {
		return &PhaseError{Arch: bv.Arch, Phase: "fetch", Cause: err}
	}

	return nil
}

// prepare is the optional PREPARE phase: if the recipe declares a
// prepare() body, run it via the executor with srcdir as the working
// directory, then fire post_prepare.
func (b *Builder) prepare(ctx context.Context, rec *recipe.Recipe, bv *recipe.BuildRecipe, srcDir string, ctr executor.Container) error {
	if bv.Prepare == "" {
		slog.Debug("skipping prepare (nothing to do)", "arch", bv.Arch)
	} else {
		slog.Info("preparing source files", "arch", bv.Arch)

		recipeName := filepath.Base(rec.RecipeDir)
		res, err := ctr.Exec(ctx, executor.RunOptions{
			Env:     baseEnv(recipeName, bv),
			WorkDir: mountSrc,
			Script:  bv.Prepare,
		})
		if err != nil {
			return &PhaseError{Arch: bv.Arch, Phase: "prepare", Cause: err}
		}
		if res.ExitCode != 0 {
			return &PhaseError{Arch: bv.Arch, Phase: "prepare", Cause: &executor.BuildScriptError{
				Phase: "prepare", ExitCode: res.ExitCode, Stderr: res.Stderr,
			}}
		}
	}

	if err := b.Hooks.FirePostPrepare(ctx, hooks.PrepareArgs{Builder: b, Recipe: rec, Build: bv, SrcDir: srcDir}); err != nil {
		return &PhaseError{Arch: bv.Arch, Phase: "prepare", Cause: err}
	}

	return nil
}

// build is the BUILD phase: pin srcdir's mtimes to the recipe's
// timestamp, install makedepends inside the container, run build(),
// then fire post_build (which is where the built-in strip hook runs).
func (b *Builder) build(ctx context.Context, rec *recipe.Recipe, bv *recipe.BuildRecipe, srcDir string, ctr executor.Container) error {
	if bv.Build == "" {
		slog.Debug("skipping build (nothing to do)", "arch", bv.Arch)
	} else {
		slog.Info("building artifacts", "arch", bv.Arch)

		if err := pinMtimes(srcDir, rec.Timestamp); err != nil {
			return &PhaseError{Arch: bv.Arch, Phase: "build", Cause: err}
		}

		recipeName := filepath.Base(rec.RecipeDir)
		script := bv.Build
		if pre := makedependsScript(bv); pre != "" {
			script = pre + "\n" + script
		}

		res, err := ctr.Exec(ctx, executor.RunOptions{
			Env:     baseEnv(recipeName, bv),
			WorkDir: mountSrc,
			Script:  script,
		})
		if err != nil {
			return &PhaseError{Arch: bv.Arch, Phase: "build", Cause: err}
		}
		if res.ExitCode != 0 {
			return &PhaseError{Arch: bv.Arch, Phase: "build", Cause: &executor.BuildScriptError{
				Phase: "build", ExitCode: res.ExitCode, Stderr: res.Stderr,
			}}
		}
	}

	if err := b.Hooks.FirePostBuild(ctx, hooks.BuildArgs{
		Builder: b, Recipe: rec, Build: bv, SrcDir: srcDir, SrcMount: mountSrc, Container: ctr,
	}); err != nil {
		return &PhaseError{Arch: bv.Arch, Phase: "build", Cause: err}
	}

	return nil
}

// pkg is the PACKAGE phase: run package() via the executor with both
// srcdir and pkgdir available, then fire post_package.
func (b *Builder) pkg(ctx context.Context, rec *recipe.Recipe, bv *recipe.BuildRecipe, pkg *recipe.Package, srcDir, pkgDir string, ctr executor.Container) error {
	slog.Info("packaging build artifacts", "arch", bv.Arch, "package", pkg.Name)

	recipeName := filepath.Base(rec.RecipeDir)
	pkgMount := mountPkg + "/" + pkg.Name

	res, err := ctr.Exec(ctx, executor.RunOptions{
		Env:     packageEnv(recipeName, bv, pkg),
		WorkDir: pkgMount,
		Script:  pkg.PackageScript,
	})
	if err != nil {
		return &PhaseError{Arch: bv.Arch, Phase: "package", Cause: err}
	}
	if res.ExitCode != 0 {
		return &PhaseError{Arch: bv.Arch, Phase: "package", Cause: &executor.BuildScriptError{
			Phase: "package", ExitCode: res.ExitCode, Stderr: res.Stderr,
		}}
	}

	if err := b.Hooks.FirePostPackage(ctx, hooks.PackageArgs{
		Builder: b, Recipe: rec, Build: bv, Package: pkg, PkgDir: pkgDir, Container: ctr,
	}); err != nil {
		return &PhaseError{Arch: bv.Arch, Phase: "package", Cause: err}
	}

	return nil
}

// archive is the ARCHIVE phase: write pkgDir's contents and pkg's
// metadata to an ipk at archivePath, then fire post_archive.
func (b *Builder) archive(ctx context.Context, rec *recipe.Recipe, bv *recipe.BuildRecipe, pkg *recipe.Package, pkgDir, archivePath string) error {
	slog.Info("creating archive", "arch", bv.Arch, "package", pkg.Name, "path", archivePath)

	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return &PhaseError{Arch: bv.Arch, Phase: "archive", Cause: err}
	}

	f, err := os.Create(archivePath)
	if err != nil {
		return &PhaseError{Arch: bv.Arch, Phase: "archive", Cause: err}
	}

	if err := ipk.Write(f, rec.Timestamp, pkg, bv.Arch, pkgDir); err != nil {
		f.Close()
		return &PhaseError{Arch: bv.Arch, Phase: "archive", Cause: err}
	}
	if err := f.Close(); err != nil {
		return &PhaseError{Arch: bv.Arch, Phase: "archive", Cause: err}
	}

	if err := os.Chtimes(archivePath, rec.Timestamp, rec.Timestamp); err != nil {
		return &PhaseError{Arch: bv.Arch, Phase: "archive", Cause: err}
	}

	if err := b.Hooks.FirePostArchive(ctx, hooks.ArchiveArgs{
		Builder: b, Recipe: rec, Build: bv, Package: pkg, ArchivePath: archivePath,
	}); err != nil {
		return &PhaseError{Arch: bv.Arch, Phase: "archive", Cause: err}
	}

	return nil
}

// pinMtimes sets atime and mtime of every regular file under dir to ts
// so repeated builds of identical inputs produce identical artifacts.
func pinMtimes(dir string, ts time.Time) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		return os.Chtimes(path, ts, ts)
	})
}
