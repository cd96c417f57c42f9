package parser

import (
	"github.com/opkgforge/corebuild/internal/recipe"
	"github.com/opkgforge/corebuild/internal/shellbridge"
)

func requireScalar(vars shellbridge.Symbols, name string) (string, error) {
	sym, ok := vars[name]
	if !ok {
		return "", recipe.NewParseError(name, errMissingField)
	}
	if sym.Kind != shellbridge.KindScalar {
		return "", recipe.NewParseError(name, errWrongKind)
	}
	return sym.Scalar, nil
}

func optionalScalar(vars shellbridge.Symbols, name, def string) (string, error) {
	sym, ok := vars[name]
	if !ok {
		return def, nil
	}
	if sym.Kind != shellbridge.KindScalar {
		return "", recipe.NewParseError(name, errWrongKind)
	}
	return sym.Scalar, nil
}

func optionalIndexed(vars shellbridge.Symbols, name string, def []string) ([]string, error) {
	sym, ok := vars[name]
	if !ok {
		return def, nil
	}
	if sym.Kind != shellbridge.KindIndexed {
		return nil, recipe.NewParseError(name, errWrongKind)
	}
	return sym.Indexed, nil
}

func requireIndexed(vars shellbridge.Symbols, name string) ([]string, error) {
	sym, ok := vars[name]
	if !ok {
		return nil, recipe.NewParseError(name, errMissingField)
	}
	if sym.Kind != shellbridge.KindIndexed {
		return nil, recipe.NewParseError(name, errWrongKind)
	}
	return sym.Indexed, nil
}

// parseDeps converts a raw dependency-spec array into a Dependency set,
// requiring every entry to target the install-time host (never "build:");
// only makedepends may name build-host dependencies.
func parseDeps(raw []string, field string) ([]recipe.Dependency, error) {
	deps := make([]recipe.Dependency, 0, len(raw))
	for _, spec := range raw {
		dep, err := recipe.ParseDependency(spec)
		if err != nil {
			return nil, recipe.NewParseError(field, err)
		}
		if dep.Host != recipe.TargetHost {
			return nil, recipe.NewParseError(field, errBuildHostNotAllowed)
		}
		deps = append(deps, dep)
	}
	return deps, nil
}

// parseMakeDeps converts makedepends entries, which uniquely may target
// either host.
func parseMakeDeps(raw []string) ([]recipe.Dependency, error) {
	deps := make([]recipe.Dependency, 0, len(raw))
	for _, spec := range raw {
		dep, err := recipe.ParseDependency(spec)
		if err != nil {
			return nil, recipe.NewParseError("makedepends", err)
		}
		deps = append(deps, dep)
	}
	return deps, nil
}

func toSet(list []string) map[string]struct{} {
	set := make(map[string]struct{}, len(list))
	for _, v := range list {
		set[v] = struct{}{}
	}
	return set
}
