// Package hooks implements the named-extension-point registry of the
// build pipeline: six firing points, each dispatching to zero or more
// loaded modules in registration order.
//
// Modules are loaded from compiled Go plugins (the standard library's
// plugin package) by path. A module need only export the handler
// methods it cares about; each Registry.Fire* method detects which of
// the six events a loaded [HookModule] handles via type assertion
// against one-method interfaces.
package hooks
