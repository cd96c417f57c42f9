package hooks

import (
	"context"
	"fmt"
	"plugin"
)

// registered is one loaded hook module and the name it was registered
// under, used for diagnostics and for HookError's Module field.
type registered struct {
	name string
	mod  HookModule
}

// Registry holds loaded hook modules in registration order and fires
// them at the six named points in the build pipeline. The zero value is
// an empty registry ready to use.
type Registry struct {
	modules []registered
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a module under name, appending it to the firing order.
// Used both for compiled-in modules (internal/hooks/builtin) and for
// modules already loaded via [Registry.Load].
func (r *Registry) Register(name string, mod HookModule) {
	r.modules = append(r.modules, registered{name: name, mod: mod})
}

// Load opens the Go plugin at path and registers the value exported as
// "Hook" under name. The plugin mechanism is Linux-only; any
// host-specific restriction is the caller's concern.
func (r *Registry) Load(name, path string) error {
	p, err := plugin.Open(path)
	if err != nil {
		return fmt.Errorf("hooks: open plugin %s: %w", path, err)
	}

	sym, err := p.Lookup("Hook")
	if err != nil {
		return fmt.Errorf("hooks: plugin %s has no Hook symbol: %w", path, err)
	}

	mod, ok := sym.(HookModule)
	if !ok {
		return fmt.Errorf("hooks: plugin %s's Hook symbol has an unexpected type", path)
	}

	r.Register(name, mod)
	return nil
}

// FirePostParse invokes every registered module's PostParse handler, in
// registration order, stopping at the first error.
func (r *Registry) FirePostParse(ctx context.Context, args ParseArgs) error {
	for _, m := range r.modules {
		h, ok := m.mod.(PostParse)
		if !ok {
			continue
		}
		if err := h.PostParse(ctx, args); err != nil {
			return &HookError{Event: EventPostParse, Module: m.name, Cause: err}
		}
	}
	return nil
}

// FirePostFetchSources invokes every registered module's
// PostFetchSources handler, in registration order, stopping at the
// first error.
func (r *Registry) FirePostFetchSources(ctx context.Context, args FetchArgs) error {
	for _, m := range r.modules {
		h, ok := m.mod.(PostFetchSources)
		if !ok {
			continue
		}
		if err := h.PostFetchSources(ctx, args); err != nil {
			return &HookError{Event: EventPostFetchSources, Module: m.name, Cause: err}
		}
	}
	return nil
}

// FirePostPrepare invokes every registered module's PostPrepare
// handler, in registration order, stopping at the first error.
func (r *Registry) FirePostPrepare(ctx context.Context, args PrepareArgs) error {
	for _, m := range r.modules {
		h, ok := m.mod.(PostPrepare)
		if !ok {
			continue
		}
		if err := h.PostPrepare(ctx, args); err != nil {
			return &HookError{Event: EventPostPrepare, Module: m.name, Cause: err}
		}
	}
	return nil
}

// FirePostBuild invokes every registered module's PostBuild handler, in
// registration order, stopping at the first error.
func (r *Registry) FirePostBuild(ctx context.Context, args BuildArgs) error {
	for _, m := range r.modules {
		h, ok := m.mod.(PostBuild)
		if !ok {
			continue
		}
		if err := h.PostBuild(ctx, args); err != nil {
			return &HookError{Event: EventPostBuild, Module: m.name, Cause: err}
		}
	}
	return nil
}

// FirePostPackage invokes every registered module's PostPackage
// handler, in registration order, stopping at the first error.
func (r *Registry) FirePostPackage(ctx context.Context, args PackageArgs) error {
	for _, m := range r.modules {
		h, ok := m.mod.(PostPackage)
		if !ok {
			continue
		}
		if err := h.PostPackage(ctx, args); err != nil {
			return &HookError{Event: EventPostPackage, Module: m.name, Cause: err}
		}
	}
	return nil
}

// FirePostArchive invokes every registered module's PostArchive
// handler, in registration order, stopping at the first error.
func (r *Registry) FirePostArchive(ctx context.Context, args ArchiveArgs) error {
	for _, m := range r.modules {
		h, ok := m.mod.(PostArchive)
		if !ok {
			continue
		}
		if err := h.PostArchive(ctx, args); err != nil {
			return &HookError{Event: EventPostArchive, Module: m.name, Cause: err}
		}
	}
	return nil
}
