package parser

import (
	"github.com/opkgforge/corebuild/internal/recipe"
	"github.com/opkgforge/corebuild/internal/shellbridge"
)

// foldArch projects the full recipe-wide symbol table onto the view for a
// single architecture: every "<base>_<arch>" symbol
// overrides (scalar) or extends (indexed array) its base for that arch's
// view, and is dropped entirely from every other arch's view.
func foldArch(vars shellbridge.Symbols, archs []string, arch string) (shellbridge.Symbols, error) {
	archSet := make(map[string]bool, len(archs))
	for _, a := range archs {
		archSet[a] = true
	}

	out := make(shellbridge.Symbols, len(vars))
	for name, sym := range vars {
		if _, _, ok := splitArchSuffix(name, archSet); ok {
			continue // suffixed symbols are folded in below, never copied verbatim
		}
		out[name] = sym
	}

	for name, sym := range vars {
		base, suffix, ok := splitArchSuffix(name, archSet)
		if !ok || suffix != arch {
			continue
		}

		baseSym, hasBase := out[base]
		if !hasBase {
			out[base] = sym
			continue
		}

		merged, err := mergeSymbol(baseSym, sym, base)
		if err != nil {
			return nil, err
		}
		out[base] = merged
	}

	return out, nil
}

// splitArchSuffix splits name into "<base>_<arch>" when its trailing
// underscore-delimited segment names a declared architecture.
func splitArchSuffix(name string, archs map[string]bool) (base, suffix string, ok bool) {
	idx := -1
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '_' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", "", false
	}
	suffix = name[idx+1:]
	if !archs[suffix] {
		return "", "", false
	}
	return name[:idx], suffix, true
}

// mergeSymbol folds a suffixed symbol into its already-present base: a
// scalar base is replaced, an indexed array base is extended. A suffixed
// variable colliding with an associative-array base has no defined merge
// and is rejected as a parse error.
func mergeSymbol(base, suffixed shellbridge.Symbol, name string) (shellbridge.Symbol, error) {
	if base.Kind == shellbridge.KindAssoc || suffixed.Kind == shellbridge.KindAssoc {
		return shellbridge.Symbol{}, recipe.NewParseError(name, errAssocFold)
	}
	if base.Kind != suffixed.Kind {
		return shellbridge.Symbol{}, recipe.NewParseError(name, errKindMismatch)
	}

	switch base.Kind {
	case shellbridge.KindScalar:
		return suffixed, nil
	case shellbridge.KindIndexed:
		merged := append(append([]string(nil), base.Indexed...), suffixed.Indexed...)
		return shellbridge.Symbol{Kind: shellbridge.KindIndexed, Indexed: merged}, nil
	default:
		return shellbridge.Symbol{}, recipe.NewParseError(name, errKindMismatch)
	}
}
