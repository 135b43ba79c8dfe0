// ibgp sets up a full mesh of iBGP sessions between the routers of every AS
package ibgp

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/tim-beatham/smegsim/pkg/layer"
	"github.com/tim-beatham/smegsim/pkg/layers/base"
	"github.com/tim-beatham/smegsim/pkg/layers/ospf"
	"github.com/tim-beatham/smegsim/pkg/lib"
	logging "github.com/tim-beatham/smegsim/pkg/log"
	"github.com/tim-beatham/smegsim/pkg/topology"
)

const LAYER_NAME = "Ibgp"

// TABLE is the BGP table sessions import into and export from
const TABLE = "t_bgp"

const PROTOCOL_KIND = "bgp"

const sessionTemplate = `
    table %s;
    import all;
    export all;
    igp table %s;
    local %s as %d;
    neighbor %s as %d;
`

// RenderSessionConfig: the protocol block of one iBGP session
func RenderSessionConfig(localAddr, peerAddr netip.Addr, asn int) string {
	return fmt.Sprintf(sessionTemplate, TABLE, ospf.TABLE, localAddr, asn, peerAddr, asn)
}

// SessionName: name of the nth session installed on a router, n from 1
func SessionName(n int) string {
	return fmt.Sprintf("ibgp%d", n)
}

// Session is one directional session installed on Local
type Session struct {
	Asn       int
	Name      string
	Local     *topology.Node
	Remote    *topology.Node
	LocalAddr netip.Addr
	PeerAddr  netip.Addr
}

type Ibgp struct {
	masked   map[int]struct{}
	sessions []Session
}

func (i *Ibgp) GetName() string {
	return LAYER_NAME
}

func (i *Ibgp) GetDependencies() []string {
	return []string{ospf.LAYER_NAME}
}

// Mask: disable iBGP for the AS, for example because it uses route
// reflectors instead of a full mesh
func (i *Ibgp) Mask(asn int) {
	i.masked[asn] = struct{}{}
}

func (i *Ibgp) IsMasked(asn int) bool {
	_, masked := i.masked[asn]
	return masked
}

// Masked: masked AS numbers in ascending order
func (i *Ibgp) Masked() []int {
	return lib.SortedKeys(i.masked)
}

// GetSessions: every session installed by the last render in installation order
func (i *Ibgp) GetSessions() []Session {
	return i.sessions
}

// FirstEligibleInterface: the first interface of the node, in join order,
// that is neither on an exchange nor on a masked network. nil if none
func FirstEligibleInterface(node *topology.Node, masks ospf.MaskQuery) *topology.Interface {
	for _, iface := range node.GetInterfaces() {
		net := iface.GetNet()

		if net.GetType() == topology.INTERNET_EXCHANGE {
			continue
		}

		if masks.IsMasked(net) {
			continue
		}

		return iface
	}

	return nil
}

func (i *Ibgp) Render(ctx *layer.Context) error {
	b, err := layer.GetLayer[base.AsnLister](ctx, base.LAYER_NAME)

	if err != nil {
		return err
	}

	masks, err := layer.GetLayer[ospf.MaskQuery](ctx, ospf.LAYER_NAME)

	if err != nil {
		return err
	}

	i.sessions = make([]Session, 0)

	for _, asn := range b.GetAsns() {
		if i.IsMasked(asn) {
			logging.Log.WriteInfof("as%d masked, skipping", asn)
			continue
		}

		logging.Log.WriteInfof("setting up IBGP peering for as%d...", asn)
		i.renderAs(asn, base.GetRouters(ctx, asn), masks)
	}

	return nil
}

// renderAs: mesh the routers of one AS. Eligibility does not change during
// a render pass so each router's interface is resolved once up front
func (i *Ibgp) renderAs(asn int, routers []*topology.Node, masks ospf.MaskQuery) {
	eligible := make([]*topology.Interface, len(routers))

	for index, router := range routers {
		eligible[index] = FirstEligibleInterface(router, masks)

		if eligible[index] == nil {
			logging.Log.WriteWarnf("ignoring as%d/%s: no valid internal interface", asn, router.GetName())
		}
	}

	for localIndex, local := range routers {
		lif := eligible[localIndex]

		if lif == nil {
			continue
		}

		logging.Log.WriteInfof("setting up IBGP peering on as%d/%s...", asn, local.GetName())

		n := 1

		for remoteIndex, remote := range routers {
			if local == remote {
				continue
			}

			rif := eligible[remoteIndex]

			if rif == nil {
				continue
			}

			session := Session{
				Asn:       asn,
				Name:      SessionName(n),
				Local:     local,
				Remote:    remote,
				LocalAddr: lif.GetAddress(),
				PeerAddr:  rif.GetAddress(),
			}

			// sessions resolve next hops through the igp table
			local.AddTable(ospf.TABLE)
			local.AddTable(TABLE)
			local.AddProtocol(PROTOCOL_KIND, session.Name, RenderSessionConfig(session.LocalAddr, session.PeerAddr, asn))
			i.sessions = append(i.sessions, session)
			n++

			logging.Log.WriteInfof("adding peering: %s <-> %s (ibgp, as%d)", session.LocalAddr, session.PeerAddr, asn)
		}
	}
}

func (i *Ibgp) String() string {
	var b strings.Builder
	b.WriteString("IbgpLayer:\n")
	b.WriteString("    Masked ASes:\n")

	for _, asn := range i.Masked() {
		fmt.Fprintf(&b, "        %d\n", asn)
	}

	return b.String()
}

func NewIbgp(masked ...int) *Ibgp {
	ibgp := &Ibgp{masked: make(map[int]struct{}), sessions: make([]Session, 0)}

	for _, asn := range masked {
		ibgp.Mask(asn)
	}

	return ibgp
}
