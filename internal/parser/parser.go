package parser

import (
	"context"
	"path/filepath"
	"time"

	"github.com/opkgforge/corebuild/internal/recipe"
	"github.com/opkgforge/corebuild/internal/shellbridge"
)

// RecipeFileName is the fixed basename of a recipe's shell declaration file
// within its recipe directory.
const RecipeFileName = "package"

// Options controls shell evaluation of the recipe file.
type Options struct {
	// Env seeds the parse-phase shell environment (srcdir/pkgdir
	// placeholders and any sentinel the recipe can use to distinguish
	// parse-phase from build-phase evaluation). The
	// parser derives the per-variant arch binding itself and need not be
	// supplied here.
	Env map[string]string
}

// Parse loads and fully specializes the recipe rooted at recipeDir (which
// must contain a "package" shell file), returning a [recipe.Recipe] with one
// [recipe.BuildRecipe] variant per declared architecture, validated against
// every invariant in internal/recipe.
func Parse(ctx context.Context, recipeDir string, opts Options) (*recipe.Recipe, error) {
	path := filepath.Join(recipeDir, RecipeFileName)

	result, err := shellbridge.Evaluate(ctx, path, opts.Env)
	if err != nil {
		return nil, err
	}

	rec, err := parseGeneric(recipeDir, result.Vars)
	if err != nil {
		return nil, err
	}

	for _, arch := range rec.Archs {
		specialized, err := foldArch(result.Vars, rec.Archs, arch)
		if err != nil {
			return nil, err
		}

		bv, err := parseBuildRecipe(ctx, rec, arch, specialized, result.Funcs, opts.Env)
		if err != nil {
			return nil, err
		}
		rec.Variants[arch] = bv
	}

	if err := recipe.Validate(rec); err != nil {
		return nil, err
	}

	return rec, nil
}

// parseGeneric extracts the recipe-wide fields that live on Recipe itself,
// before any per-architecture fold is applied.
func parseGeneric(recipeDir string, vars shellbridge.Symbols) (*recipe.Recipe, error) {
	archs, err := optionalIndexed(vars, "archs", []string{"rmall"})
	if err != nil {
		return nil, err
	}

	timestampStr, err := optionalScalar(vars, "timestamp", "")
	if err != nil {
		return nil, err
	}
	var timestamp time.Time
	if timestampStr != "" {
		timestamp, err = time.Parse(time.RFC3339, timestampStr)
		if err != nil {
			return nil, recipe.NewParseError("timestamp", err)
		}
	}

	sources, err := optionalIndexed(vars, "source", nil)
	if err != nil {
		return nil, err
	}
	checksums, err := optionalIndexed(vars, "sha256sums", nil)
	if err != nil {
		return nil, err
	}
	noextractList, err := optionalIndexed(vars, "noextract", nil)
	if err != nil {
		return nil, err
	}

	maintainer, err := optionalScalar(vars, "maintainer", "")
	if err != nil {
		return nil, err
	}
	url, err := optionalScalar(vars, "url", "")
	if err != nil {
		return nil, err
	}
	license, err := optionalScalar(vars, "license", "")
	if err != nil {
		return nil, err
	}

	return &recipe.Recipe{
		RecipeDir:  recipeDir,
		Timestamp:  timestamp,
		Maintainer: maintainer,
		URL:        url,
		License:    license,
		Sources:    sources,
		Checksums:  checksums,
		NoExtract:  toSet(noextractList),
		Archs:      archs,
		Variants:   make(map[string]*recipe.BuildRecipe, len(archs)),
	}, nil
}
