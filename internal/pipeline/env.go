package pipeline

import (
	"strings"

	"github.com/opkgforge/corebuild/internal/recipe"
)

// baseEnv returns the environment bindings common to every phase
// executed inside the build container for one architecture: srcdir, the
// architecture tag (as both "arch" and the "HOST" marker), and the
// union of the variant's flags. recipeName is the recipe directory's
// base name, bound as "recipe" for scripts that want to log or branch
// on it.
func baseEnv(recipeName string, bv *recipe.BuildRecipe) map[string]string {
	env := map[string]string{
		"srcdir": mountSrc,
		"recipe": recipeName,
		"arch":   bv.Arch,
		"HOST":   bv.Arch,
	}
	for flag := range bv.Flags {
		// A "name=value" flag binds name to value; a bare flag binds its
		// own name to "1" so scripts can test it with [[ -n $flag ]].
		if name, value, ok := strings.Cut(flag, "="); ok {
			env[name] = value
		} else {
			env[flag] = "1"
		}
	}
	return env
}

// packageEnv extends baseEnv with the pkgdir/pkgname/pkgver bindings a
// package() body needs.
func packageEnv(recipeName string, bv *recipe.BuildRecipe, pkg *recipe.Package) map[string]string {
	env := baseEnv(recipeName, bv)
	env["pkgdir"] = mountPkg + "/" + pkg.Name
	env["pkgname"] = pkg.Name
	env["pkgver"] = pkg.Version
	return env
}
