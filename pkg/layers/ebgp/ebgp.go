// ebgp peers the border routers of two ASes across an internet exchange
package ebgp

import (
	"fmt"
	"net/netip"

	"github.com/tim-beatham/smegsim/pkg/layer"
	"github.com/tim-beatham/smegsim/pkg/layers/base"
	"github.com/tim-beatham/smegsim/pkg/layers/ibgp"
	"github.com/tim-beatham/smegsim/pkg/layers/routing"
	logging "github.com/tim-beatham/smegsim/pkg/log"
	"github.com/tim-beatham/smegsim/pkg/registry"
	"github.com/tim-beatham/smegsim/pkg/topology"
)

const LAYER_NAME = "Ebgp"

const peerTemplate = `
    table %s;
    import all;
    export all;
    local %s as %d;
    neighbor %s as %d;
`

// RenderPeerConfig: the protocol block of one side of an eBGP session
func RenderPeerConfig(localAddr netip.Addr, localAsn int, peerAddr netip.Addr, peerAsn int) string {
	return fmt.Sprintf(peerTemplate, ibgp.TABLE, localAddr, localAsn, peerAddr, peerAsn)
}

// PeerName: protocol name of the session towards peerAsn
func PeerName(peerAsn int) string {
	return fmt.Sprintf("x_as%d", peerAsn)
}

// Peering is a private peering between A and B on exchange Ix
type Peering struct {
	Ix int
	A  int
	B  int
}

type Ebgp struct {
	peerings []Peering
}

func (e *Ebgp) GetName() string {
	return LAYER_NAME
}

func (e *Ebgp) GetDependencies() []string {
	return []string{routing.LAYER_NAME}
}

// AddPrivatePeering: peer AS a with AS b on exchange ix. A pair peers on
// at most one exchange as the session is named after the peer AS
func (e *Ebgp) AddPrivatePeering(ix, a, b int) error {
	if a == b {
		return fmt.Errorf("ebgp: as%d cannot peer with itself", a)
	}

	for _, peering := range e.peerings {
		if (peering.A == a && peering.B == b) || (peering.A == b && peering.B == a) {
			return fmt.Errorf("ebgp: as%d and as%d already peer at ix%d", a, b, peering.Ix)
		}
	}

	e.peerings = append(e.peerings, Peering{Ix: ix, A: a, B: b})
	return nil
}

func (e *Ebgp) GetPeerings() []Peering {
	return e.peerings
}

// exchangeInterface: the first router of the AS connected to the exchange
func exchangeInterface(ctx *layer.Context, asn int, ix *topology.Network) *topology.Interface {
	for _, router := range base.GetRouters(ctx, asn) {
		if iface := router.GetInterface(ix); iface != nil {
			return iface
		}
	}

	return nil
}

func (e *Ebgp) Render(ctx *layer.Context) error {
	for _, peering := range e.peerings {
		ix, err := registry.Lookup[*topology.Network](ctx.Registry, base.IX_SCOPE, registry.NET_KIND, base.ExchangeName(peering.Ix))

		if err != nil {
			return err
		}

		aif := exchangeInterface(ctx, peering.A, ix)

		if aif == nil {
			return fmt.Errorf("ebgp: as%d has no router in %s", peering.A, ix.GetName())
		}

		bif := exchangeInterface(ctx, peering.B, ix)

		if bif == nil {
			return fmt.Errorf("ebgp: as%d has no router in %s", peering.B, ix.GetName())
		}

		for _, side := range [][2]*topology.Interface{{aif, bif}, {bif, aif}} {
			local, remote := side[0], side[1]
			router := local.GetNode()
			router.AddTable(ibgp.TABLE)
			router.AddProtocol(ibgp.PROTOCOL_KIND, PeerName(remote.GetNode().GetAsn()),
				RenderPeerConfig(local.GetAddress(), router.GetAsn(), remote.GetAddress(), remote.GetNode().GetAsn()))
		}

		logging.Log.WriteInfof("adding peering: %s as%d <-> %s as%d (ebgp, %s)",
			aif.GetAddress(), peering.A, bif.GetAddress(), peering.B, ix.GetName())
	}

	return nil
}

func NewEbgp() *Ebgp {
	return &Ebgp{peerings: make([]Peering, 0)}
}
