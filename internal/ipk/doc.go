// Package ipk implements the deterministic archive writer of the build
// core: a three-member BSD "ar" archive (debian-binary, control.tar.gz,
// data.tar.gz) with every timestamp, owner, and entry order pinned so
// that two builds from identical inputs produce byte-identical output.
package ipk
