// routing installs the routing daemon's baseline protocols on every router
package routing

import (
	"fmt"
	"strings"

	"github.com/tim-beatham/smegsim/pkg/layer"
	"github.com/tim-beatham/smegsim/pkg/layers/base"
	logging "github.com/tim-beatham/smegsim/pkg/log"
	"github.com/tim-beatham/smegsim/pkg/topology"
)

const LAYER_NAME = "Routing"

// START_COMMAND starts the routing daemon in the background
const START_COMMAND = "bird -d"

const kernelBody = `
    scan time 60;
    import none;
    export all;
`

type Routing struct{}

func (r *Routing) GetName() string {
	return LAYER_NAME
}

func (r *Routing) GetDependencies() []string {
	return []string{base.LAYER_NAME}
}

// directBody: the direct protocol covering every interface of the router
func directBody(node *topology.Node) string {
	var b strings.Builder
	b.WriteString("\n")

	for _, iface := range node.GetInterfaces() {
		fmt.Fprintf(&b, "    interface \"%s\";\n", iface.GetNet().GetName())
	}

	return b.String()
}

func (r *Routing) Render(ctx *layer.Context) error {
	b, err := layer.GetLayer[base.AsnLister](ctx, base.LAYER_NAME)

	if err != nil {
		return err
	}

	for _, asn := range b.GetAsns() {
		for _, router := range base.GetRouters(ctx, asn) {
			logging.Log.WriteInfof("bootstrapping as%d/%s as router...", asn, router.GetName())

			router.AddProtocol("device", "", "")
			router.AddProtocol("direct", "local_nets", directBody(router))
			router.AddProtocol("kernel", "", kernelBody)
			router.AppendStartCommand(START_COMMAND)
		}
	}

	return nil
}

func NewRouting() *Routing {
	return &Routing{}
}
