package recipe

import "regexp"

var (
	checksumRe = regexp.MustCompile(`^(SKIP|[0-9a-f]{64})$`)
	pkgNameRe  = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)
	versionRe  = regexp.MustCompile(`^[A-Za-z0-9.+~-]+-([1-9][0-9]*)$`)
)

// Validate checks invariants I1-I5 against a fully specialized Recipe.
// I6 (archive timestamps) is enforced by the archive writer, not here.
func Validate(r *Recipe) error {
	// I1: sources/checksums aligned.
	if len(r.Sources) != len(r.Checksums) {
		return NewParseError("sources", errLenMismatch)
	}

	// I2: checksum shape.
	for _, c := range r.Checksums {
		if !checksumRe.MatchString(c) {
			return NewParseError("checksums", errBadChecksum)
		}
	}

	// I3: every declared arch has exactly one variant.
	seen := make(map[string]struct{}, len(r.Archs))
	for _, a := range r.Archs {
		if _, dup := seen[a]; dup {
			return NewParseError("archs", errDuplicateArch)
		}
		seen[a] = struct{}{}
		if _, ok := r.Variants[a]; !ok {
			return NewParseError("archs", errMissingVariant)
		}
	}
	if len(r.Variants) != len(seen) {
		return NewParseError("archs", errMissingVariant)
	}

	for arch, bv := range r.Variants {
		if err := validateBuildRecipe(arch, bv); err != nil {
			return err
		}
	}

	return nil
}

func validateBuildRecipe(arch string, bv *BuildRecipe) error {
	// I1: sources/checksums aligned, re-checked per arch since an
	// arch-suffixed override can change either array's length independently
	// of the recipe-level pair already checked in Validate.
	if len(bv.Sources) != len(bv.Checksums) {
		return NewParseError("variants["+arch+"].sources", errLenMismatch)
	}
	for _, c := range bv.Checksums {
		if !checksumRe.MatchString(c) {
			return NewParseError("variants["+arch+"].checksums", errBadChecksum)
		}
	}

	// I4: packages non-empty, names valid.
	if len(bv.Packages) == 0 {
		return NewParseError("packages", errNoPackages)
	}
	for name, pkg := range bv.Packages {
		if !pkgNameRe.MatchString(name) {
			return NewParseError("packages["+name+"].name", errBadPackageName)
		}
		if err := validatePackage(pkg); err != nil {
			return err
		}
	}
	return nil
}

func validatePackage(pkg *Package) error {
	// I5: version shape.
	if !versionRe.MatchString(pkg.Version) {
		return NewParseError("packages["+pkg.Name+"].version", errBadVersion)
	}
	return nil
}
