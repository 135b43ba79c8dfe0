// emulator wires the registry, the renderer and the standard layers
// together into one render pass
package emulator

import (
	"github.com/tim-beatham/smegsim/pkg/layer"
	"github.com/tim-beatham/smegsim/pkg/layers/base"
	"github.com/tim-beatham/smegsim/pkg/registry"
	"github.com/tim-beatham/smegsim/pkg/topology"
	"gonum.org/v1/gonum/stat"
)

type Emulator struct {
	ctx      *layer.Context
	renderer *layer.Renderer
}

// AddLayer: register a layer to take part in the render pass
func (e *Emulator) AddLayer(l layer.Layer) error {
	return e.renderer.AddLayer(l)
}

// Render: render every layer once in dependency order
func (e *Emulator) Render() error {
	return e.renderer.Render()
}

// Order: names of the layers in the order they render
func (e *Emulator) Order() ([]string, error) {
	order, err := e.renderer.Order()

	if err != nil {
		return nil, err
	}

	names := make([]string, len(order))

	for index, l := range order {
		names[index] = l.GetName()
	}

	return names, nil
}

func (e *Emulator) GetContext() *layer.Context {
	return e.ctx
}

func (e *Emulator) GetRegistry() *registry.Registry {
	return e.ctx.Registry
}

// GetBase: the registered Base layer
func (e *Emulator) GetBase() (*base.Base, error) {
	return layer.GetLayer[*base.Base](e.ctx, base.LAYER_NAME)
}

// GetNodes: every published router then host of every AS, in AS order
func (e *Emulator) GetNodes() ([]*topology.Node, error) {
	b, err := layer.GetLayer[base.AsnLister](e.ctx, base.LAYER_NAME)

	if err != nil {
		return nil, err
	}

	nodes := make([]*topology.Node, 0)

	for _, asn := range b.GetAsns() {
		nodes = append(nodes, base.GetRouters(e.ctx, asn)...)
		nodes = append(nodes, base.GetHosts(e.ctx, asn)...)
	}

	return nodes, nil
}

// Summary: rendered protocol statistics over all routers
type Summary struct {
	Routers       int
	Protocols     int
	MeanProtocols float64
	StdProtocols  float64
}

func (e *Emulator) Summarise(kind string) (Summary, error) {
	nodes, err := e.GetNodes()

	if err != nil {
		return Summary{}, err
	}

	counts := make([]float64, 0)
	total := 0

	for _, node := range nodes {
		if node.GetRole() != topology.ROUTER_ROLE {
			continue
		}

		count := len(node.ProtocolsOfKind(kind))
		counts = append(counts, float64(count))
		total += count
	}

	summary := Summary{Routers: len(counts), Protocols: total}

	switch {
	case len(counts) == 1:
		summary.MeanProtocols = counts[0]
	case len(counts) > 1:
		summary.MeanProtocols, summary.StdProtocols = stat.MeanStdDev(counts, nil)
	}

	return summary, nil
}

func NewEmulator() *Emulator {
	ctx := layer.NewContext(registry.NewRegistry())
	return &Emulator{ctx: ctx, renderer: layer.NewRenderer(ctx)}
}
