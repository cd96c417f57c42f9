package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/opkgforge/corebuild/internal/executor"
	"github.com/opkgforge/corebuild/internal/hooks"
	"github.com/opkgforge/corebuild/internal/recipe"
)

// fakeExecutor/fakeContainer let the pipeline run end-to-end against a
// recorded script trace instead of a real containerd daemon.
type fakeExecutor struct {
	t         *testing.T
	container *fakeContainer
}

func (e *fakeExecutor) StartContainer(ctx context.Context, id, image string, mounts []executor.Mount) (executor.Container, error) {
	e.container = &fakeContainer{t: e.t, mounts: mounts}
	return e.container, nil
}

type fakeContainer struct {
	t         *testing.T
	mounts    []executor.Mount
	scripts   []string
	destroyed bool
}

func (c *fakeContainer) Exec(ctx context.Context, opts executor.RunOptions) (*executor.Result, error) {
	c.scripts = append(c.scripts, opts.Script)
	return &executor.Result{ExitCode: 0}, nil
}

func (c *fakeContainer) Destroy(ctx context.Context) {
	c.destroyed = true
}

type fakeFetcher struct{}

func (fakeFetcher) Fetch(ctx context.Context, uri, dest string) error {
	return os.WriteFile(dest, []byte("source contents"), 0o644)
}

const buildTestRecipe = `
archs=(armv7)
timestamp=2024-01-15T00:00:00Z
maintainer="Jane Dev <jane@example.com>"
url="https://example.com/widget"
license=MIT
source=(https://example.com/widget.tar.gz)
sha256sums=(SKIP)
noextract=(widget.tar.gz)

pkgnames=(widget)
pkgver=1.0-1
pkgdesc="A widget"
section=utils

image=toltoolchain:v3.1

build() {
	make
}

package() {
	install -D -m 755 widget "$pkgdir"/opt/bin/widget
}
`

func TestBuilderRunEndToEnd(t *testing.T) {
	recipeDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(recipeDir, "package"), []byte(buildTestRecipe), 0o644); err != nil {
		t.Fatal(err)
	}

	workDir := t.TempDir()
	distDir := t.TempDir()

	exec := &fakeExecutor{t: t}
	builder := New(exec, fakeFetcher{}, hooks.NewRegistry())

	result, err := builder.Run(context.Background(), Options{
		RecipeDir: recipeDir,
		WorkDir:   workDir,
		DistDir:   distDir,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	archives, ok := result.Archives["armv7"]
	if !ok || len(archives) != 1 {
		t.Fatalf("Archives[armv7] = %v, want 1 entry", archives)
	}

	if _, err := os.Stat(archives[0]); err != nil {
		t.Errorf("expected archive at %s: %v", archives[0], err)
	}

	if exec.container == nil || !exec.container.destroyed {
		t.Error("container was not created and destroyed")
	}
	if len(exec.container.scripts) != 2 {
		t.Fatalf("container ran %d scripts, want 2 (build, package)", len(exec.container.scripts))
	}
}

func TestBuilderRunFailsOnUnknownArch(t *testing.T) {
	recipeDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(recipeDir, "package"), []byte(buildTestRecipe), 0o644); err != nil {
		t.Fatal(err)
	}

	builder := New(&fakeExecutor{t: t}, fakeFetcher{}, hooks.NewRegistry())

	_, err := builder.Run(context.Background(), Options{
		RecipeDir: recipeDir,
		WorkDir:   t.TempDir(),
		DistDir:   t.TempDir(),
		Archs:     []string{"nonexistent"},
	})
	if err == nil {
		t.Fatal("expected error for unknown architecture")
	}
}

const splitRecipe = `
archs=(armv7)
timestamp=2024-01-15T00:00:00Z
source=()
sha256sums=()

pkgnames=(suite-bin suite-doc)

build() {
	make
}

suite-bin() {
	pkgver=2.0-1
	pkgdesc="suite binaries"
	section=utils
	package() {
		install -D -m 755 bin "$pkgdir"/opt/bin/suite
	}
}

suite-doc() {
	pkgver=2.0-1
	pkgdesc="suite docs"
	section=utils
	package() {
		install -D -m 644 README "$pkgdir"/opt/share/doc/suite/README
	}
}
`

// countingHooks records every event it sees, in firing order.
type countingHooks struct {
	events []string
}

func (h *countingHooks) PostParse(ctx context.Context, args hooks.ParseArgs) error {
	h.events = append(h.events, "post_parse")
	return nil
}

func (h *countingHooks) PostFetchSources(ctx context.Context, args hooks.FetchArgs) error {
	h.events = append(h.events, "post_fetch_sources")
	return nil
}

func (h *countingHooks) PostPrepare(ctx context.Context, args hooks.PrepareArgs) error {
	h.events = append(h.events, "post_prepare")
	return nil
}

func (h *countingHooks) PostBuild(ctx context.Context, args hooks.BuildArgs) error {
	h.events = append(h.events, "post_build")
	return nil
}

func (h *countingHooks) PostPackage(ctx context.Context, args hooks.PackageArgs) error {
	h.events = append(h.events, "post_package:"+args.Package.Name)
	return nil
}

func (h *countingHooks) PostArchive(ctx context.Context, args hooks.ArchiveArgs) error {
	h.events = append(h.events, "post_archive:"+filepath.Base(args.ArchivePath))
	return nil
}

func TestBuilderRunMultiPackageHookOrder(t *testing.T) {
	recipeDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(recipeDir, "package"), []byte(splitRecipe), 0o644); err != nil {
		t.Fatal(err)
	}

	counter := &countingHooks{}
	registry := hooks.NewRegistry()
	registry.Register("counter", counter)

	builder := New(&fakeExecutor{t: t}, fakeFetcher{}, registry)

	result, err := builder.Run(context.Background(), Options{
		RecipeDir: recipeDir,
		WorkDir:   t.TempDir(),
		DistDir:   t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := len(result.Archives["armv7"]); got != 2 {
		t.Fatalf("got %d archives, want 2", got)
	}

	want := []string{
		"post_parse",
		"post_fetch_sources",
		"post_prepare",
		"post_build",
		"post_package:suite-bin",
		"post_archive:suite-bin_2.0-1_armv7.ipk",
		"post_package:suite-doc",
		"post_archive:suite-doc_2.0-1_armv7.ipk",
	}
	if len(counter.events) != len(want) {
		t.Fatalf("events = %v, want %v", counter.events, want)
	}
	for i := range want {
		if counter.events[i] != want[i] {
			t.Errorf("event %d = %q, want %q", i, counter.events[i], want[i])
		}
	}
}

// appendPackageHook grows the recipe during post_parse; the pipeline must
// pick up the extra package at archive time.
type appendPackageHook struct{}

func (appendPackageHook) PostParse(ctx context.Context, args hooks.ParseArgs) error {
	for _, bv := range args.Recipe.Variants {
		extra := &recipe.Package{
			Parent:        bv,
			Name:          "widget-extra",
			Version:       "1.0-1",
			Description:   "injected by hook",
			Section:       "utils",
			PackageScript: ":",
		}
		bv.PackageNames = append(bv.PackageNames, extra.Name)
		bv.Packages[extra.Name] = extra
	}
	return nil
}

func TestBuilderRunHookMutationAddsPackage(t *testing.T) {
	recipeDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(recipeDir, "package"), []byte(buildTestRecipe), 0o644); err != nil {
		t.Fatal(err)
	}

	registry := hooks.NewRegistry()
	registry.Register("append", appendPackageHook{})

	builder := New(&fakeExecutor{t: t}, fakeFetcher{}, registry)

	result, err := builder.Run(context.Background(), Options{
		RecipeDir: recipeDir,
		WorkDir:   t.TempDir(),
		DistDir:   t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	archives := result.Archives["armv7"]
	if len(archives) != 2 {
		t.Fatalf("got %d archives, want 2 (declared + hook-injected)", len(archives))
	}
	if filepath.Base(archives[1]) != "widget-extra_1.0-1_armv7.ipk" {
		t.Errorf("second archive = %s, want widget-extra_1.0-1_armv7.ipk", archives[1])
	}
}
