// Package paths computes the fixed directory layout for one
// build run: a per-architecture srcdir and per-package pkgdir beneath a
// work directory, and the final ipk location beneath a dist directory.
//
// DefaultWorkDir and DefaultDistDir follow XDG conventions on Linux and
// platform-native conventions on macOS and Windows when the caller does
// not supply an explicit root.
package paths
