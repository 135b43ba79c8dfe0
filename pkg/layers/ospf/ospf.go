// ospf configures the internal gateway protocol of every AS and decides
// which networks are excluded from internal routing
package ospf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tim-beatham/smegsim/pkg/layer"
	"github.com/tim-beatham/smegsim/pkg/layers/base"
	"github.com/tim-beatham/smegsim/pkg/layers/routing"
	"github.com/tim-beatham/smegsim/pkg/lib"
	logging "github.com/tim-beatham/smegsim/pkg/log"
	"github.com/tim-beatham/smegsim/pkg/registry"
	"github.com/tim-beatham/smegsim/pkg/topology"
)

const LAYER_NAME = "Ospf"

// TABLE is the IGP table OSPF routes are kept in
const TABLE = "t_ospf"

// MaskQuery is the capability the Ospf layer publishes to other layers
type MaskQuery interface {
	// IsMasked: whether the network is excluded from internal routing
	IsMasked(net *topology.Network) bool
}

type networkKey struct {
	asn  int
	name string
}

type Ospf struct {
	maskedNets map[networkKey]struct{}
	maskedAsns map[int]struct{}
}

func (o *Ospf) GetName() string {
	return LAYER_NAME
}

func (o *Ospf) GetDependencies() []string {
	return []string{routing.LAYER_NAME}
}

// Mask: exclude the network from OSPF and from internal peering
func (o *Ospf) Mask(net *topology.Network) {
	o.MaskByName(net.GetAsn(), net.GetName())
}

// MaskByName: exclude the network name of AS asn
func (o *Ospf) MaskByName(asn int, name string) {
	o.maskedNets[networkKey{asn: asn, name: name}] = struct{}{}
}

// MaskAsn: disable OSPF for the whole AS
func (o *Ospf) MaskAsn(asn int) {
	o.maskedAsns[asn] = struct{}{}
}

func (o *Ospf) IsMasked(net *topology.Network) bool {
	if net.IsMasked() {
		return true
	}

	_, masked := o.maskedNets[networkKey{asn: net.GetAsn(), name: net.GetName()}]
	return masked
}

// IsAsnMasked: whether OSPF is disabled for the AS
func (o *Ospf) IsAsnMasked(asn int) bool {
	_, masked := o.maskedAsns[asn]
	return masked
}

// MaskedAsns: masked AS numbers in ascending order
func (o *Ospf) MaskedAsns() []int {
	return lib.SortedKeys(o.maskedAsns)
}

// RenderAreaConfig: the OSPF block of a router. Exchange and masked
// networks are announced as stubs and never form adjacencies
func RenderAreaConfig(active, stub []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n    table %s;\n", TABLE)
	b.WriteString("    import all;\n")
	b.WriteString("    export all;\n")
	b.WriteString("    area 0 {\n")

	for _, name := range stub {
		fmt.Fprintf(&b, "        interface \"%s\" { stub; };\n", name)
	}

	for _, name := range active {
		fmt.Fprintf(&b, "        interface \"%s\" { hello 1; dead count 2; };\n", name)
	}

	b.WriteString("    };\n")
	return b.String()
}

func (o *Ospf) Render(ctx *layer.Context) error {
	b, err := layer.GetLayer[base.AsnLister](ctx, base.LAYER_NAME)

	if err != nil {
		return err
	}

	for _, asn := range b.GetAsns() {
		nets := registry.ByType[*topology.Network](ctx.Registry.Scoped(strconv.Itoa(asn)), registry.NET_KIND)

		for _, net := range nets {
			if o.IsMasked(net) {
				net.SetMasked(true)
			}
		}
	}

	for _, asn := range b.GetAsns() {
		if o.IsAsnMasked(asn) {
			logging.Log.WriteInfof("ospf disabled for as%d", asn)
			continue
		}

		for _, router := range base.GetRouters(ctx, asn) {
			active := make([]string, 0)
			stub := make([]string, 0)

			for _, iface := range router.GetInterfaces() {
				net := iface.GetNet()

				if net.GetType() == topology.INTERNET_EXCHANGE || o.IsMasked(net) {
					stub = append(stub, net.GetName())
					continue
				}

				active = append(active, net.GetName())
			}

			if len(active)+len(stub) == 0 {
				logging.Log.WriteWarnf("ignoring as%d/%s: no interfaces", asn, router.GetName())
				continue
			}

			router.AddTable(TABLE)
			router.AddProtocol("ospf", "ospf1", RenderAreaConfig(active, stub))
			logging.Log.WriteInfof("as%d/%s: ospf on %d interfaces, %d stubs", asn, router.GetName(), len(active), len(stub))
		}
	}

	return nil
}

func NewOspf() *Ospf {
	return &Ospf{
		maskedNets: make(map[networkKey]struct{}),
		maskedAsns: make(map[int]struct{}),
	}
}
