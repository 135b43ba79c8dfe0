package graph

import (
	"fmt"

	"github.com/tim-beatham/smegsim/pkg/layers/base"
	"github.com/tim-beatham/smegsim/pkg/layers/ebgp"
	"github.com/tim-beatham/smegsim/pkg/layers/ibgp"
	"github.com/tim-beatham/smegsim/pkg/topology"
)

// TopologyGraphConverter converts a rendered topology to a graph
type TopologyGraphConverter interface {
	// Generate: convert the topology to textual form
	Generate() (string, error)
}

// SessionDOTConverter draws every router, one cluster per AS, with an edge
// per iBGP router pair and per eBGP peering
type SessionDOTConverter struct {
	routers     []*topology.Node
	sessions    []ibgp.Session
	peerings    []ebgp.Peering
	exchangeIfs map[string]map[int]*topology.Interface
}

func nodeId(node *topology.Node) string {
	return fmt.Sprintf("as%d/%s", node.GetAsn(), node.GetName())
}

func clusterLabel(asn int) string {
	return fmt.Sprintf("as%d", asn)
}

func (c *SessionDOTConverter) Generate() (string, error) {
	g := NewGraph("smegsim", GRAPH)

	for _, router := range c.routers {
		label := clusterLabel(router.GetAsn())
		cluster := g.GetCluster(label)

		if cluster == nil {
			cluster = NewSubGraph(label, GRAPH)
			g.PutCluster(cluster)
		}

		cluster.PutNode(nodeId(router), router.GetName(), CIRCLE)

		for _, iface := range router.GetInterfaces() {
			net := iface.GetNet()

			if net.GetType() != topology.INTERNET_EXCHANGE {
				continue
			}

			if _, ok := c.exchangeIfs[net.GetName()]; !ok {
				c.exchangeIfs[net.GetName()] = make(map[int]*topology.Interface)
			}

			if _, ok := c.exchangeIfs[net.GetName()][router.GetAsn()]; !ok {
				c.exchangeIfs[net.GetName()][router.GetAsn()] = iface
			}
		}
	}

	for _, session := range c.sessions {
		cluster := g.GetCluster(clusterLabel(session.Asn))

		if cluster == nil {
			continue
		}

		cluster.PutEdge("ibgp", nodeId(session.Local), nodeId(session.Remote))
	}

	for _, peering := range c.peerings {
		ix := base.ExchangeName(peering.Ix)
		aif, aok := c.exchangeIfs[ix][peering.A]
		bif, bok := c.exchangeIfs[ix][peering.B]

		if !aok || !bok {
			continue
		}

		g.PutEdge(ix, nodeId(aif.GetNode()), nodeId(bif.GetNode()))
	}

	return g.GetDOT()
}

func NewSessionGraphConverter(routers []*topology.Node, sessions []ibgp.Session, peerings []ebgp.Peering) TopologyGraphConverter {
	return &SessionDOTConverter{
		routers:     routers,
		sessions:    sessions,
		peerings:    peerings,
		exchangeIfs: make(map[string]map[int]*topology.Interface),
	}
}
