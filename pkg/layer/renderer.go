package layer

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	logging "github.com/tim-beatham/smegsim/pkg/log"
	"github.com/tim-beatham/smegsim/pkg/registry"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// CyclicDependencyError: no render order exists. Each entry of Cycles is
// one strongly connected set of layer names
type CyclicDependencyError struct {
	Cycles [][]string
}

func (e *CyclicDependencyError) Error() string {
	cycles := make([]string, len(e.Cycles))

	for index, cycle := range e.Cycles {
		cycles[index] = "[" + strings.Join(cycle, ", ") + "]"
	}

	return fmt.Sprintf("layer: cyclic dependency between %s", strings.Join(cycles, " "))
}

// MissingDependencyError: a layer depends on a name no layer is registered under
type MissingDependencyError struct {
	Layer      string
	Dependency string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("layer: %s depends on %s which is not registered", e.Layer, e.Dependency)
}

var ErrAlreadyRendered = errors.New("layer: render pass already ran")

// Renderer orders the registered layers by dependency and renders each
// exactly once
type Renderer struct {
	ctx      *Context
	rendered bool
}

// AddLayer: registers the layer under its name
func (r *Renderer) AddLayer(l Layer) error {
	return r.ctx.Registry.Register(registry.GLOBAL_SCOPE, registry.LAYER_KIND, l.GetName(), l)
}

// GetLayers: registered layers in registration order
func (r *Renderer) GetLayers() []Layer {
	return registry.ByType[Layer](r.ctx.Registry.Scoped(registry.GLOBAL_SCOPE), registry.LAYER_KIND)
}

// Order: the registered layers in render order, dependencies first
func (r *Renderer) Order() ([]Layer, error) {
	layers := r.GetLayers()
	ids := make(map[string]int64, len(layers))
	g := simple.NewDirectedGraph()

	for index, l := range layers {
		ids[l.GetName()] = int64(index)
		g.AddNode(simple.Node(index))
	}

	for index, l := range layers {
		for _, dependency := range l.GetDependencies() {
			depId, exists := ids[dependency]

			if !exists {
				return nil, &MissingDependencyError{Layer: l.GetName(), Dependency: dependency}
			}

			if depId == int64(index) {
				return nil, &CyclicDependencyError{Cycles: [][]string{{l.GetName()}}}
			}

			g.SetEdge(g.NewEdge(simple.Node(depId), simple.Node(index)))
		}
	}

	sorted, err := topo.SortStabilized(g, nil)

	if err != nil {
		var unorderable topo.Unorderable

		if errors.As(err, &unorderable) {
			return nil, newCyclicDependencyError(layers, unorderable)
		}

		return nil, err
	}

	order := make([]Layer, len(sorted))

	for index, node := range sorted {
		order[index] = layers[node.ID()]
	}

	return order, nil
}

func newCyclicDependencyError(layers []Layer, unorderable topo.Unorderable) error {
	cycles := make([][]string, 0, len(unorderable))

	for _, component := range unorderable {
		names := make([]string, len(component))

		for index, node := range component {
			names[index] = layers[node.ID()].GetName()
		}

		sort.Strings(names)
		cycles = append(cycles, names)
	}

	return &CyclicDependencyError{Cycles: cycles}
}

// Render: renders every layer once in dependency order. Ordering errors
// are reported before any layer renders and a failing layer aborts the pass
func (r *Renderer) Render() error {
	if r.rendered {
		return ErrAlreadyRendered
	}

	order, err := r.Order()

	if err != nil {
		return err
	}

	r.rendered = true

	for _, l := range order {
		logging.Log.WriteInfof("rendering layer %s...", l.GetName())

		if err := l.Render(r.ctx); err != nil {
			return fmt.Errorf("layer %s: %w", l.GetName(), err)
		}
	}

	return nil
}

func (r *Renderer) GetContext() *Context {
	return r.ctx
}

func NewRenderer(ctx *Context) *Renderer {
	return &Renderer{ctx: ctx}
}
