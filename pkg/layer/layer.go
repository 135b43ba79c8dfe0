// layer defines the unit of configuration logic and the renderer that
// runs every layer once in dependency order
package layer

import (
	"github.com/tim-beatham/smegsim/pkg/registry"
)

// Layer contributes configuration to the shared topology
type Layer interface {
	// GetName: unique name other layers depend on
	GetName() string
	// GetDependencies: names of the layers that must render first
	GetDependencies() []string
	// Render: mutate the topology. Dependencies have already rendered and
	// published their state into the context's registry
	Render(ctx *Context) error
}

// Context is handed to every layer's Render
type Context struct {
	Registry *registry.Registry
}

// GetLayer: fetch the rendered layer registered under name as a T
func GetLayer[T any](ctx *Context, name string) (T, error) {
	return registry.Lookup[T](ctx.Registry, registry.GLOBAL_SCOPE, registry.LAYER_KIND, name)
}

func NewContext(r *registry.Registry) *Context {
	return &Context{Registry: r}
}
