package hooks

import (
	"context"

	"github.com/opkgforge/corebuild/internal/executor"
	"github.com/opkgforge/corebuild/internal/recipe"
)

// Event names the six fixed firing points of the build pipeline.
type Event string

const (
	EventPostParse        Event = "post_parse"
	EventPostFetchSources Event = "post_fetch_sources"
	EventPostPrepare      Event = "post_prepare"
	EventPostBuild        Event = "post_build"
	EventPostPackage      Event = "post_package"
	EventPostArchive      Event = "post_archive"
)

// Builder is the narrow mutation surface handlers receive alongside each
// event payload: enough to steer later phases without handing out the
// pipeline's internals. Image overrides only take effect before the
// affected architecture's container is started (post_parse and
// post_fetch_sources); cleanups run after that architecture's phases
// finish, in reverse registration order, whether or not they succeeded.
type Builder interface {
	OverrideImage(arch, image string)
	RegisterCleanup(fn func(ctx context.Context) error)
}

// ParseArgs is passed to handlers registered on [EventPostParse]. The
// Recipe may still be mutated here; it must be treated as read-only by
// every later event.
type ParseArgs struct {
	Builder Builder
	Recipe  *recipe.Recipe
}

// FetchArgs is passed to handlers registered on [EventPostFetchSources].
type FetchArgs struct {
	Builder Builder
	Recipe  *recipe.Recipe
	Build   *recipe.BuildRecipe
	SrcDir  string
}

// PrepareArgs is passed to handlers registered on [EventPostPrepare].
type PrepareArgs struct {
	Builder Builder
	Recipe  *recipe.Recipe
	Build   *recipe.BuildRecipe
	SrcDir  string
}

// BuildArgs is passed to handlers registered on [EventPostBuild]. The
// Container is the same one the pipeline used to run the recipe's
// build() body, so a hook can run further commands without starting a
// second container.
type BuildArgs struct {
	Builder Builder
	Recipe  *recipe.Recipe
	Build   *recipe.BuildRecipe

	SrcDir string // Host-side path to the recipe's source directory.
	// SrcMount is the path SrcDir is bind-mounted at inside Container,
	// the path hook-issued commands must use to address source files.
	SrcMount string

	Container executor.Container
}

// PackageArgs is passed to handlers registered on [EventPostPackage].
type PackageArgs struct {
	Builder   Builder
	Recipe    *recipe.Recipe
	Build     *recipe.BuildRecipe
	Package   *recipe.Package
	PkgDir    string
	Container executor.Container
}

// ArchiveArgs is passed to handlers registered on [EventPostArchive].
type ArchiveArgs struct {
	Builder     Builder
	Recipe      *recipe.Recipe
	Build       *recipe.BuildRecipe
	Package     *recipe.Package
	ArchivePath string
}

// HookModule is any value loaded into the registry. A module implements
// zero or more of the six interfaces below; Fire uses type assertion to
// find the ones it supports, so an unrelated module is silently skipped
// for events it doesn't implement.
type HookModule interface{}

// PostParse is implemented by modules handling [EventPostParse].
type PostParse interface {
	PostParse(ctx context.Context, args ParseArgs) error
}

// PostFetchSources is implemented by modules handling
// [EventPostFetchSources].
type PostFetchSources interface {
	PostFetchSources(ctx context.Context, args FetchArgs) error
}

// PostPrepare is implemented by modules handling [EventPostPrepare].
type PostPrepare interface {
	PostPrepare(ctx context.Context, args PrepareArgs) error
}

// PostBuild is implemented by modules handling [EventPostBuild].
type PostBuild interface {
	PostBuild(ctx context.Context, args BuildArgs) error
}

// PostPackage is implemented by modules handling [EventPostPackage].
type PostPackage interface {
	PostPackage(ctx context.Context, args PackageArgs) error
}

// PostArchive is implemented by modules handling [EventPostArchive].
type PostArchive interface {
	PostArchive(ctx context.Context, args ArchiveArgs) error
}
