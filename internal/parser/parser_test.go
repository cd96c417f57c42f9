package parser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/opkgforge/corebuild/internal/recipe"
)

func writeRecipeDir(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, RecipeFileName), []byte(body), 0o644); err != nil {
		t.Fatalf("write recipe: %v", err)
	}
	return dir
}

const singlePackageRecipe = `
archs=(armv7 aarch64)
timestamp=2024-01-15T00:00:00Z
maintainer="Jane Dev <jane@example.com>"
url="https://example.com/widget"
license=MIT
source=(https://example.com/widget.tar.gz)
sha256sums=(SKIP)

pkgnames=(widget)
pkgver=1.0-1
pkgdesc="A widget"
section=utils

image_armv7=toltoolchain:v3.1
image_aarch64=toltoolchain:v4.0

prepare() {
	echo prepare
}

build() {
	make
}

package() {
	install -D -m 755 widget "$pkgdir"/opt/bin/widget
}
`

func TestParseSinglePackage(t *testing.T) {
	dir := writeRecipeDir(t, singlePackageRecipe)

	rec, err := Parse(context.Background(), dir, Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if got, want := rec.Maintainer, "Jane Dev <jane@example.com>"; got != want {
		t.Errorf("Maintainer = %q, want %q", got, want)
	}
	if len(rec.Archs) != 2 {
		t.Fatalf("Archs = %v, want 2 entries", rec.Archs)
	}

	armv7, ok := rec.Variants["armv7"]
	if !ok {
		t.Fatal("missing armv7 variant")
	}
	if armv7.Image != "toltoolchain:v3.1" {
		t.Errorf("armv7 Image = %q, want toltoolchain:v3.1", armv7.Image)
	}
	aarch64, ok := rec.Variants["aarch64"]
	if !ok {
		t.Fatal("missing aarch64 variant")
	}
	if aarch64.Image != "toltoolchain:v4.0" {
		t.Errorf("aarch64 Image = %q, want toltoolchain:v4.0", aarch64.Image)
	}

	pkg, ok := armv7.Packages["widget"]
	if !ok {
		t.Fatal("missing widget package in armv7 variant")
	}
	if pkg.Version != "1.0-1" {
		t.Errorf("pkg.Version = %q, want 1.0-1", pkg.Version)
	}
	if !strings.Contains(pkg.PackageScript, "install -D -m 755") {
		t.Errorf("PackageScript = %q, missing install line", pkg.PackageScript)
	}
	if !strings.Contains(armv7.Build, "make") {
		t.Errorf("Build = %q, missing make", armv7.Build)
	}
}

const splitPackageRecipe = `
archs=(armv7)
source=(https://example.com/suite.tar.gz)
sha256sums=(SKIP)

pkgnames=(suite-bin suite-doc)

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
	installdepends=(suite-bin)
	package() {
		install -D -m 644 README "$pkgdir"/opt/share/doc/suite/README
	}
}
`

func TestParseSplitPackage(t *testing.T) {
	dir := writeRecipeDir(t, splitPackageRecipe)

	rec, err := Parse(context.Background(), dir, Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	bv := rec.Variants["armv7"]
	if len(bv.Packages) != 2 {
		t.Fatalf("got %d packages, want 2", len(bv.Packages))
	}

	doc, ok := bv.Packages["suite-doc"]
	if !ok {
		t.Fatal("missing suite-doc package")
	}
	if len(doc.InstallDepends) != 1 || doc.InstallDepends[0].Name != "suite-bin" {
		t.Errorf("suite-doc InstallDepends = %v, want [suite-bin]", doc.InstallDepends)
	}
	if !strings.Contains(doc.PackageScript, "README") {
		t.Errorf("suite-doc PackageScript = %q, missing README line", doc.PackageScript)
	}

	bin := bv.Packages["suite-bin"]
	if strings.Contains(bin.PackageScript, "README") {
		t.Errorf("suite-bin PackageScript leaked suite-doc's body: %q", bin.PackageScript)
	}
}

func TestParseMissingPackageFunction(t *testing.T) {
	dir := writeRecipeDir(t, `
archs=(armv7)
source=()
sha256sums=()
pkgnames=(a b)

a() {
	pkgver=1.0-1
	pkgdesc=a
	section=utils
	package() { :; }
}
`)

	_, err := Parse(context.Background(), dir, Options{})
	if err == nil {
		t.Fatal("Parse: want error for missing package function \"b\"")
	}
	if !errors.Is(err, errNoPackageFn) {
		t.Errorf("Parse err = %v, want wrapping errNoPackageFn", err)
	}
}

func TestParseRejectsCrossArchAssocFold(t *testing.T) {
	dir := writeRecipeDir(t, `
archs=(armv7 aarch64)
source=()
sha256sums=()
pkgnames=(widget)
pkgver=1.0-1
pkgdesc=widget
section=utils
declare -A extra=([k]=v)
declare -A extra_armv7=([k2]=v2)
package() { :; }
`)

	_, err := Parse(context.Background(), dir, Options{})
	if err == nil {
		t.Fatal("Parse: want error for associative-array arch fold")
	}
	var parseErr *recipe.ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("Parse err = %v, want *recipe.ParseError", err)
	}
}

func TestParseRejectsSplitPackageVersionRegression(t *testing.T) {
	dir := writeRecipeDir(t, `
archs=(armv7)
source=()
sha256sums=()
pkgver=2.0-1

pkgnames=(suite-bin suite-old)

suite-bin() {
	pkgdesc="suite binaries"
	section=utils
	package() { :; }
}

suite-old() {
	pkgver=1.9-1
	pkgdesc="regressed version"
	section=utils
	package() { :; }
}
`)

	_, err := Parse(context.Background(), dir, Options{})
	if err == nil {
		t.Fatal("Parse: want error for split package pkgver below the recipe-level default")
	}
	if !errors.Is(err, errVersionRegression) {
		t.Errorf("Parse err = %v, want wrapping errVersionRegression", err)
	}
}

func TestParseAllowsSplitPackageVersionBump(t *testing.T) {
	dir := writeRecipeDir(t, `
archs=(armv7)
source=()
sha256sums=()
pkgver=2.0-1

pkgnames=(suite-bin suite-new)

suite-bin() {
	pkgdesc="suite binaries"
	section=utils
	package() { :; }
}

suite-new() {
	pkgver=2.0-2
	pkgdesc="bumped revision"
	section=utils
	package() { :; }
}
`)

	rec, err := Parse(context.Background(), dir, Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := rec.Variants["armv7"].Packages["suite-new"].Version; got != "2.0-2" {
		t.Errorf("suite-new Version = %q, want 2.0-2", got)
	}
}
