// Package pipeline drives a parsed recipe through six fixed phases —
// PARSE, FETCH, PREPARE, BUILD, PACKAGE, ARCHIVE — firing a named hook
// after each, and produces one ipk archive per declared package per
// architecture.
//
// Run drives every requested architecture independently and aborts an
// architecture's build on the first phase failure. PREPARE, BUILD, and
// PACKAGE share one container per architecture; each package stages
// into its own fresh pkgdir.
package pipeline
