package paths

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory naming under XDG base directories.
	appName = "corebuild"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// DefaultWorkDir returns the default root under which per-recipe,
// per-architecture build state (srcdir, pkgdir) is created when the caller
// supplies none.
//
//	Linux: ~/.cache/corebuild/work
//	macOS: ~/Library/Caches/corebuild/work
func DefaultWorkDir() string {
	return filepath.Join(xdg.CacheHome, appName, "work")
}

// DefaultDistDir returns the default root under which finished ipk archives
// are placed when the caller supplies none.
//
//	Linux: ~/.cache/corebuild/dist
//	macOS: ~/Library/Caches/corebuild/dist
func DefaultDistDir() string {
	return filepath.Join(xdg.CacheHome, appName, "dist")
}

// SrcDir returns the fixed location of a recipe's
// architecture-specific source directory: <workDir>/<recipe>/<arch>/src.
func SrcDir(workDir, recipeName, arch string) string {
	return filepath.Join(workDir, recipeName, arch, "src")
}

// PkgDir returns the fixed location of one package's
// staging directory: <workDir>/<recipe>/<arch>/pkg/<name>.
func PkgDir(workDir, recipeName, arch, pkgName string) string {
	return filepath.Join(workDir, recipeName, arch, "pkg", pkgName)
}

// ArchiveFile returns the fixed location of a package's
// emitted archive: <distDir>/<arch>/<name>_<ver>_<arch>.ipk.
func ArchiveFile(distDir, arch, name, version string) string {
	return filepath.Join(distDir, arch, fmt.Sprintf("%s_%s_%s.ipk", name, version, arch))
}
