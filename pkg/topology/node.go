package topology

import (
	"net/netip"
	"slices"
)

// Interface: a node's attachment to a network
type Interface struct {
	node    *Node
	net     *Network
	address netip.Addr
}

func (i *Interface) GetNode() *Node {
	return i.node
}

func (i *Interface) GetNet() *Network {
	return i.net
}

func (i *Interface) GetAddress() netip.Addr {
	return i.address
}

// GetPrefix: the interface address with the network's prefix length
func (i *Interface) GetPrefix() netip.Prefix {
	return netip.PrefixFrom(i.address, i.net.prefix.Bits())
}

// Protocol: a rendered protocol configuration block
type Protocol struct {
	Kind string
	Name string
	Body string
}

// Node: a router or host
type Node struct {
	name          string
	asn           int
	role          NodeRole
	interfaces    []*Interface
	tables        []string
	protocols     []*Protocol
	startCommands []string
}

func (n *Node) GetName() string {
	return n.name
}

func (n *Node) GetAsn() int {
	return n.asn
}

func (n *Node) GetRole() NodeRole {
	return n.role
}

// GetInterfaces: the node's interfaces in the order they were joined
func (n *Node) GetInterfaces() []*Interface {
	return n.interfaces
}

// GetInterface: the interface connected to the network, nil if none
func (n *Node) GetInterface(net *Network) *Interface {
	for _, iface := range n.interfaces {
		if iface.net == net {
			return iface
		}
	}

	return nil
}

// JoinNetwork: connects the node to the network. An invalid address
// allocates the next free address for the node's role
func (n *Node) JoinNetwork(net *Network, address netip.Addr) (*Interface, error) {
	if n.GetInterface(net) != nil {
		return nil, errorf("node as%d/%s already joined %s", n.asn, n.name, net.name)
	}

	var err error

	if address.IsValid() {
		err = net.Claim(address)
	} else {
		address, err = net.Allocate(n.role)
	}

	if err != nil {
		return nil, err
	}

	iface := &Interface{node: n, net: net, address: address}
	n.interfaces = append(n.interfaces, iface)
	return iface, nil
}

// AddTable: installs a routing table. Installing a table twice is a no-op
func (n *Node) AddTable(name string) {
	if !slices.Contains(n.tables, name) {
		n.tables = append(n.tables, name)
	}
}

func (n *Node) GetTables() []string {
	return n.tables
}

// AddProtocol: installs a protocol block. A block with the same kind and
// name is replaced in place
func (n *Node) AddProtocol(kind, name, body string) {
	for _, protocol := range n.protocols {
		if protocol.Kind == kind && protocol.Name == name {
			protocol.Body = body
			return
		}
	}

	n.protocols = append(n.protocols, &Protocol{Kind: kind, Name: name, Body: body})
}

// GetProtocol: the installed block with kind and name, nil if absent
func (n *Node) GetProtocol(kind, name string) *Protocol {
	for _, protocol := range n.protocols {
		if protocol.Kind == kind && protocol.Name == name {
			return protocol
		}
	}

	return nil
}

// GetProtocols: installed protocol blocks in installation order
func (n *Node) GetProtocols() []*Protocol {
	return n.protocols
}

// ProtocolsOfKind: installed protocol blocks of the kind
func (n *Node) ProtocolsOfKind(kind string) []*Protocol {
	protocols := make([]*Protocol, 0)

	for _, protocol := range n.protocols {
		if protocol.Kind == kind {
			protocols = append(protocols, protocol)
		}
	}

	return protocols
}

// AppendStartCommand: adds a command run when the node starts. Duplicate
// commands are ignored
func (n *Node) AppendStartCommand(command string) {
	if !slices.Contains(n.startCommands, command) {
		n.startCommands = append(n.startCommands, command)
	}
}

func (n *Node) GetStartCommands() []string {
	return n.startCommands
}

func NewNode(name string, asn int, role NodeRole) *Node {
	return &Node{
		name:          name,
		asn:           asn,
		role:          role,
		interfaces:    make([]*Interface, 0),
		tables:        make([]string, 0),
		protocols:     make([]*Protocol, 0),
		startCommands: make([]string, 0),
	}
}
