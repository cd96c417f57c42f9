// Package shellbridge evaluates a recipe file — a shell script using
// Bash array/function semantics — and harvests its declared-variable
// snapshot and function-name set, without ever running a command
// outside a declaration.
//
// The recipe is parsed once into a *syntax.File and evaluated with an
// in-process interp.Runner (mvdan.cc/sh/v3), so variable assignments
// and arithmetic/parameter expansion resolve exactly as Bash would;
// every external command is rejected by a custom ExecHandler, which
// rules out network, filesystem, and subshell side effects at parse
// time by construction. Function bodies are never evaluated; their raw
// source text is sliced out of the original file for later use as
// build-phase script bodies.
package shellbridge
