// Package recipe holds the typed, architecture-specialized representation
// of a package build recipe: a [Recipe] loaded from a shell script, its
// per-architecture [BuildRecipe] variants, and the [Package] descriptors
// each variant produces.
//
// Values in this package are created once during parsing and are mutated
// only by the post_parse hook; they live for the duration of one build
// run. BuildRecipe and Package hold non-owning back-references to their
// parent so the object graph stays acyclic for ownership purposes.
package recipe
