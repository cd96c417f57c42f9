package recipe

import (
	"path/filepath"
	"strings"
)

// ControlFields renders the RFC-822-style control metadata block for a
// Package in a fixed key order (Package,
// Description, Homepage, Version, Section, Maintainer, License,
// Architecture, Depends, Conflicts, Replaces, Source), with the
// optional Recommends/Suggests/Provides fields appended after it.
// Dependency lists are comma-space separated, preserving declaration order.
func (p *Package) ControlFields(arch string) []KV {
	fields := []KV{
		{"Package", p.Name},
		{"Description", p.Description},
	}
	if p.Homepage != "" {
		fields = append(fields, KV{"Homepage", p.Homepage})
	}
	fields = append(fields,
		KV{"Version", p.Version},
		KV{"Section", p.Section},
	)

	var recipeDir string
	if p.Parent != nil && p.Parent.Parent != nil {
		if m := p.Parent.Parent.Maintainer; m != "" {
			fields = append(fields, KV{"Maintainer", m})
		}
		if l := p.Parent.Parent.License; l != "" {
			fields = append(fields, KV{"License", l})
		}
		recipeDir = p.Parent.Parent.RecipeDir
	}
	fields = append(fields, KV{"Architecture", arch})

	fields = appendDeps(fields, "Depends", p.InstallDepends)
	fields = appendDeps(fields, "Conflicts", p.Conflicts)
	fields = appendDeps(fields, "Replaces", p.Replaces)

	if recipeDir != "" {
		fields = append(fields, KV{"Source", filepath.Base(recipeDir)})
	}

	fields = appendDeps(fields, "Recommends", p.Recommends)
	fields = appendDeps(fields, "Suggests", p.Suggests)
	fields = appendDeps(fields, "Provides", p.Provides)

	return fields
}

// KV is a single ordered control-file key/value pair.
type KV struct {
	Key   string
	Value string
}

func appendDeps(fields []KV, key string, deps []Dependency) []KV {
	if len(deps) == 0 {
		return fields
	}
	parts := make([]string, len(deps))
	for i, d := range deps {
		parts[i] = d.String()
	}
	return append(fields, KV{key, strings.Join(parts, ", ")})
}
