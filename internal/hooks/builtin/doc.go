// Package builtin ships the reference hook modules that come compiled
// into the build core rather than loaded as a plugin, demonstrating the
// hook contract end-to-end.
//
// [StripHook] runs after the build() phase: it walks srcdir for ELF binaries with a symbol table,
// strips them inside the build container (native strip for x86, the
// cross toolchain's strip for ARM), and restores their mtimes so a
// subsequent `make install` in the package phase doesn't consider them
// rebuilt. Skipped entirely when the recipe declares the "nostrip" flag.
package builtin
