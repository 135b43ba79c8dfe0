package topology

import (
	"fmt"
	"net/netip"
)

// AutonomousSystem: an independently administered set of networks,
// routers and hosts
type AutonomousSystem struct {
	asn      int
	networks []*Network
	routers  []*Node
	hosts    []*Node
}

func (a *AutonomousSystem) GetAsn() int {
	return a.asn
}

// CreateNetwork: creates an internal network. An invalid prefix defaults
// to 10.asn.n.0/24 where n is the number of existing networks
func (a *AutonomousSystem) CreateNetwork(name string, prefix netip.Prefix) (*Network, error) {
	if a.GetNetwork(name) != nil {
		return nil, errorf("as%d: network %s already exists", a.asn, name)
	}

	if !prefix.IsValid() {
		if a.asn > 255 || len(a.networks) > 255 {
			return nil, errorf("as%d: network %s needs an explicit prefix", a.asn, name)
		}

		prefix = netip.MustParsePrefix(fmt.Sprintf("10.%d.%d.0/24", a.asn, len(a.networks)))
	}

	net := NewNetwork(name, a.asn, LOCAL_NETWORK, prefix)
	a.networks = append(a.networks, net)
	return net, nil
}

func (a *AutonomousSystem) GetNetwork(name string) *Network {
	for _, net := range a.networks {
		if net.name == name {
			return net
		}
	}

	return nil
}

func (a *AutonomousSystem) GetNetworks() []*Network {
	return a.networks
}

func (a *AutonomousSystem) createNode(name string, role NodeRole) (*Node, error) {
	if a.GetRouter(name) != nil || a.GetHost(name) != nil {
		return nil, errorf("as%d: node %s already exists", a.asn, name)
	}

	return NewNode(name, a.asn, role), nil
}

func (a *AutonomousSystem) CreateRouter(name string) (*Node, error) {
	router, err := a.createNode(name, ROUTER_ROLE)

	if err != nil {
		return nil, err
	}

	a.routers = append(a.routers, router)
	return router, nil
}

func (a *AutonomousSystem) CreateHost(name string) (*Node, error) {
	host, err := a.createNode(name, HOST_ROLE)

	if err != nil {
		return nil, err
	}

	a.hosts = append(a.hosts, host)
	return host, nil
}

func (a *AutonomousSystem) GetRouter(name string) *Node {
	for _, router := range a.routers {
		if router.name == name {
			return router
		}
	}

	return nil
}

// GetRouters: routers in creation order
func (a *AutonomousSystem) GetRouters() []*Node {
	return a.routers
}

func (a *AutonomousSystem) GetHost(name string) *Node {
	for _, host := range a.hosts {
		if host.name == name {
			return host
		}
	}

	return nil
}

func (a *AutonomousSystem) GetHosts() []*Node {
	return a.hosts
}

func NewAutonomousSystem(asn int) *AutonomousSystem {
	return &AutonomousSystem{
		asn:      asn,
		networks: make([]*Network, 0),
		routers:  make([]*Node, 0),
		hosts:    make([]*Node, 0),
	}
}
