// topology is the declarative model layers read and mutate: autonomous
// systems, networks, routers and hosts
package topology

import (
	"fmt"
	"net/netip"
)

type NetworkType string

const (
	LOCAL_NETWORK     NetworkType = "local"
	INTERNET_EXCHANGE NetworkType = "ix"
)

type NodeRole string

const (
	ROUTER_ROLE NodeRole = "router"
	HOST_ROLE   NodeRole = "host"
)

const (
	routerAddressStart = 254
	hostAddressStart   = 71
)

// TopologyError: the topology could not be constructed as declared
type TopologyError struct {
	msg string
}

func (e *TopologyError) Error() string {
	return e.msg
}

func errorf(format string, args ...interface{}) error {
	return &TopologyError{msg: fmt.Sprintf(format, args...)}
}

// Network: a broadcast domain nodes connect to
type Network struct {
	name   string
	asn    int
	kind   NetworkType
	prefix netip.Prefix
	masked bool
	// nextRouter and nextHost are the next host offsets to allocate
	nextRouter int
	nextHost   int
	assigned   map[netip.Addr]struct{}
}

func (n *Network) GetName() string {
	return n.name
}

// GetAsn: owning AS, 0 for an internet exchange
func (n *Network) GetAsn() int {
	return n.asn
}

func (n *Network) GetType() NetworkType {
	return n.kind
}

func (n *Network) GetPrefix() netip.Prefix {
	return n.prefix
}

// IsMasked: whether the network is excluded from internal routing
func (n *Network) IsMasked() bool {
	return n.masked
}

// SetMasked: marks the network excluded from internal routing
func (n *Network) SetMasked(masked bool) {
	n.masked = masked
}

// hostAddress: address at the given host offset within the prefix
func (n *Network) hostAddress(offset int) (netip.Addr, error) {
	hostBits := n.prefix.Addr().BitLen() - n.prefix.Bits()

	if offset <= 0 || (hostBits < 63 && uint64(offset) >= (uint64(1)<<hostBits)-1) {
		return netip.Addr{}, errorf("network %s: host offset %d outside %s", n.name, offset, n.prefix)
	}

	network := n.prefix.Masked().Addr()
	bytes := network.As16()
	carry := uint64(offset)

	// offset fits in the host bits so the carry never reaches the network part
	for i := len(bytes) - 1; i >= 0 && carry > 0; i-- {
		sum := uint64(bytes[i]) + carry&0xff
		bytes[i] = byte(sum)
		carry = carry>>8 + sum>>8
	}

	addr := netip.AddrFrom16(bytes)

	if network.Is4() {
		addr = addr.Unmap()
	}

	return addr, nil
}

// Allocate: allocates the next free address for the role. Routers are
// allocated downwards from .254 and hosts upwards from .71
func (n *Network) Allocate(role NodeRole) (netip.Addr, error) {
	for {
		var offset int

		switch role {
		case ROUTER_ROLE:
			offset = n.nextRouter
			n.nextRouter--
		default:
			offset = n.nextHost
			n.nextHost++
		}

		addr, err := n.hostAddress(offset)

		if err != nil {
			return netip.Addr{}, errorf("network %s: address space exhausted", n.name)
		}

		if _, taken := n.assigned[addr]; !taken {
			n.assigned[addr] = struct{}{}
			return addr, nil
		}
	}
}

// Claim: reserves the given address on the network
func (n *Network) Claim(addr netip.Addr) error {
	if !n.prefix.Contains(addr) {
		return errorf("network %s: address %s not in %s", n.name, addr, n.prefix)
	}

	if _, taken := n.assigned[addr]; taken {
		return errorf("network %s: address %s already assigned", n.name, addr)
	}

	n.assigned[addr] = struct{}{}
	return nil
}

// AddressAt: address at the host offset within the prefix
func (n *Network) AddressAt(offset int) (netip.Addr, error) {
	return n.hostAddress(offset)
}

// IsAssigned: whether the address is already used on the network
func (n *Network) IsAssigned(addr netip.Addr) bool {
	_, taken := n.assigned[addr]
	return taken
}

func NewNetwork(name string, asn int, kind NetworkType, prefix netip.Prefix) *Network {
	nextRouter := routerAddressStart
	hostBits := prefix.Addr().BitLen() - prefix.Bits()

	if hostBits < 8 {
		nextRouter = (1 << hostBits) - 2
	}

	return &Network{
		name:       name,
		asn:        asn,
		kind:       kind,
		prefix:     prefix.Masked(),
		nextRouter: nextRouter,
		nextHost:   hostAddressStart,
		assigned:   make(map[netip.Addr]struct{}),
	}
}
