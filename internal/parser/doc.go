// Package parser turns a shellbridge.Result — a flat symbol table plus
// function bodies harvested from a recipe file — into a fully specialized
// recipe.Recipe: one recipe.BuildRecipe per declared architecture, each with
// its packages discovered and populated.
package parser
