package parser

import (
	"context"

	"github.com/opkgforge/corebuild/internal/recipe"
	"github.com/opkgforge/corebuild/internal/shellbridge"
	"github.com/opkgforge/corebuild/internal/version"
)

// parseBuildRecipe extracts the per-architecture BuildRecipe fields from an
// already arch-folded symbol table, then discovers its packages.
func parseBuildRecipe(ctx context.Context, parent *recipe.Recipe, arch string, vars shellbridge.Symbols, funcs shellbridge.Functions, baseEnv map[string]string) (*recipe.BuildRecipe, error) {
	image, err := optionalScalar(vars, "image", "")
	if err != nil {
		return nil, err
	}

	flagsList, err := optionalIndexed(vars, "flags", nil)
	if err != nil {
		return nil, err
	}

	makeDepsRaw, err := optionalIndexed(vars, "makedepends", nil)
	if err != nil {
		return nil, err
	}
	makeDeps, err := parseMakeDeps(makeDepsRaw)
	if err != nil {
		return nil, err
	}

	sources, err := optionalIndexed(vars, "source", parent.Sources)
	if err != nil {
		return nil, err
	}
	checksums, err := optionalIndexed(vars, "sha256sums", parent.Checksums)
	if err != nil {
		return nil, err
	}

	bv := &recipe.BuildRecipe{
		Parent:      parent,
		Arch:        arch,
		Image:       image,
		Flags:       toSet(flagsList),
		Sources:     sources,
		Checksums:   checksums,
		MakeDepends: makeDeps,
		Prepare:     funcs["prepare"],
		Build:       funcs["build"],
		Packages:    make(map[string]*recipe.Package),
	}

	pkgnames, err := requireIndexed(vars, "pkgnames")
	if err != nil {
		return nil, err
	}

	if len(pkgnames) == 1 {
		// Single-package recipes never define a per-name function: every
		// field the package needs is already present at the recipe level.
		pkg, err := buildPackage(bv, pkgnames[0], vars, funcs)
		if err != nil {
			return nil, err
		}
		bv.PackageNames = []string{pkg.Name}
		bv.Packages[pkg.Name] = pkg
		return bv, nil
	}

	// Recipe-level pkgver is the floor for every split package: a package
	// function may bump its own version up, never down.
	defaultVersion, err := optionalScalar(vars, "pkgver", "")
	if err != nil {
		return nil, err
	}

	pkgEnv := make(map[string]string, len(baseEnv)+1)
	for k, v := range baseEnv {
		pkgEnv[k] = v
	}
	pkgEnv["arch"] = arch

	for _, name := range pkgnames {
		body, ok := funcs[name]
		if !ok {
			return nil, recipe.NewParseError("pkgnames["+name+"]", errNoPackageFn)
		}

		pkgResult, err := shellbridge.EvaluateString(
			ctx,
			renderAssignments(vars)+"\n"+body,
			"package:"+name,
			pkgEnv,
		)
		if err != nil {
			return nil, err
		}

		mergedFuncs := make(shellbridge.Functions, len(funcs)+len(pkgResult.Funcs))
		for k, v := range funcs {
			mergedFuncs[k] = v
		}
		for k, v := range pkgResult.Funcs {
			mergedFuncs[k] = v
		}

		pkg, err := buildPackage(bv, name, pkgResult.Vars, mergedFuncs)
		if err != nil {
			return nil, err
		}
		if defaultVersion != "" && pkg.Version != defaultVersion {
			if version.Compare(version.Parse(pkg.Version), version.Parse(defaultVersion)) < 0 {
				return nil, recipe.NewParseError("packages["+pkg.Name+"].pkgver", errVersionRegression)
			}
		}
		if _, dup := bv.Packages[pkg.Name]; dup {
			return nil, recipe.NewParseError("packages["+pkg.Name+"]", ErrDuplicatePackage)
		}
		bv.PackageNames = append(bv.PackageNames, pkg.Name)
		bv.Packages[pkg.Name] = pkg
	}

	return bv, nil
}

// buildPackage extracts a single Package's fields from its resolved symbol
// table. name is the declared pkgnames entry, which always wins over
// whatever (if anything) a "pkgname" scalar says inside the package's own
// function body.
func buildPackage(parent *recipe.BuildRecipe, name string, vars shellbridge.Symbols, funcs shellbridge.Functions) (*recipe.Package, error) {
	version, err := requireScalar(vars, "pkgver")
	if err != nil {
		return nil, err
	}
	desc, err := requireScalar(vars, "pkgdesc")
	if err != nil {
		return nil, err
	}
	section, err := requireScalar(vars, "section")
	if err != nil {
		return nil, err
	}
	homepage, err := optionalScalar(vars, "url", "")
	if err != nil {
		return nil, err
	}

	installRaw, err := optionalIndexed(vars, "installdepends", nil)
	if err != nil {
		return nil, err
	}
	install, err := parseDeps(installRaw, "installdepends")
	if err != nil {
		return nil, err
	}

	conflictsRaw, err := optionalIndexed(vars, "conflicts", nil)
	if err != nil {
		return nil, err
	}
	conflicts, err := parseDeps(conflictsRaw, "conflicts")
	if err != nil {
		return nil, err
	}

	replacesRaw, err := optionalIndexed(vars, "replaces", nil)
	if err != nil {
		return nil, err
	}
	replaces, err := parseDeps(replacesRaw, "replaces")
	if err != nil {
		return nil, err
	}

	recommendsRaw, err := optionalIndexed(vars, "recommends", nil)
	if err != nil {
		return nil, err
	}
	recommends, err := parseDeps(recommendsRaw, "recommends")
	if err != nil {
		return nil, err
	}

	suggestsRaw, err := optionalIndexed(vars, "optdepends", nil)
	if err != nil {
		return nil, err
	}
	suggests, err := parseDeps(suggestsRaw, "optdepends")
	if err != nil {
		return nil, err
	}

	providesRaw, err := optionalIndexed(vars, "provides", nil)
	if err != nil {
		return nil, err
	}
	provides, err := parseDeps(providesRaw, "provides")
	if err != nil {
		return nil, err
	}

	confFiles, err := optionalIndexed(vars, "conffiles", nil)
	if err != nil {
		return nil, err
	}

	packageFn, ok := funcs["package"]
	if !ok {
		return nil, recipe.NewParseError("packages["+name+"].package", errMissingField)
	}

	return &recipe.Package{
		Parent:         parent,
		Name:           name,
		Version:        version,
		Description:    desc,
		Homepage:       homepage,
		Section:        section,
		InstallDepends: install,
		Recommends:     recommends,
		Suggests:       suggests,
		Conflicts:      conflicts,
		Replaces:       replaces,
		Provides:       provides,
		ConfFiles:      confFiles,
		PackageScript:  packageFn,
		Configure:      funcs["configure"],
		PreInstall:     funcs["preinstall"],
		PostInstall:    funcs["postinstall"],
		PreRemove:      funcs["preremove"],
		PostRemove:     funcs["postremove"],
		PreUpgrade:     funcs["preupgrade"],
		PostUpgrade:    funcs["postupgrade"],
	}, nil
}
