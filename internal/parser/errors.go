package parser

import "errors"

var (
	errMissingField        = errors.New("missing required field")
	errWrongKind           = errors.New("field declared with the wrong shell value kind")
	errAssocFold           = errors.New("suffixed variable collides with an associative-array base")
	errKindMismatch        = errors.New("base and suffixed variable declare different shell value kinds")
	errNoPackageFn         = errors.New("split-package recipe is missing the function for a declared package name")
	errVersionRegression   = errors.New("split package declares a pkgver lower than the recipe-level default")
	errBuildHostNotAllowed = errors.New("only target-host dependencies are allowed in this field")
)

// ErrDuplicatePackage is raised when two package declarations in one
// BuildRecipe resolve to the same name; accepting them would leave
// maintainer-script ordering undefined, so this is rejected at parse time.
var ErrDuplicatePackage = errors.New("duplicate package name across split-package definitions")
