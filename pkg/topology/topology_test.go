package topology

import (
	"errors"
	"net/netip"
	"testing"
)

func TestCreateNetworkDefaultPrefix(t *testing.T) {
	as := NewAutonomousSystem(150)
	as.CreateNetwork("net0", netip.Prefix{})
	net1, err := as.CreateNetwork("net1", netip.Prefix{})

	if err != nil {
		t.Fatal(err)
	}

	if net1.GetPrefix().String() != "10.150.1.0/24" {
		t.Fatalf(`Expected 10.150.1.0/24 got %s`, net1.GetPrefix())
	}
}

func TestCreateNetworkLargeAsnNeedsPrefix(t *testing.T) {
	as := NewAutonomousSystem(65000)

	_, err := as.CreateNetwork("net0", netip.Prefix{})

	var topoErr *TopologyError

	if !errors.As(err, &topoErr) {
		t.Fatalf(`expected a TopologyError got %v`, err)
	}
}

func TestCreateNetworkDuplicateFails(t *testing.T) {
	as := NewAutonomousSystem(150)
	as.CreateNetwork("net0", netip.Prefix{})

	if _, err := as.CreateNetwork("net0", netip.Prefix{}); err == nil {
		t.Fatal(`error should be thrown`)
	}
}

func TestCreateRouterDuplicateNameFails(t *testing.T) {
	as := NewAutonomousSystem(150)
	as.CreateRouter("r1")

	if _, err := as.CreateHost("r1"); err == nil {
		t.Fatal(`error should be thrown`)
	}
}

func TestJoinNetworkAllocatesByRole(t *testing.T) {
	as := NewAutonomousSystem(150)
	net, _ := as.CreateNetwork("net0", netip.Prefix{})
	r1, _ := as.CreateRouter("r1")
	r2, _ := as.CreateRouter("r2")
	h1, _ := as.CreateHost("h1")

	i1, _ := r1.JoinNetwork(net, netip.Addr{})
	i2, _ := r2.JoinNetwork(net, netip.Addr{})
	ih, _ := h1.JoinNetwork(net, netip.Addr{})

	if i1.GetAddress().String() != "10.150.0.254" {
		t.Fatalf(`Expected 10.150.0.254 got %s`, i1.GetAddress())
	}

	if i2.GetAddress().String() != "10.150.0.253" {
		t.Fatalf(`Expected 10.150.0.253 got %s`, i2.GetAddress())
	}

	if ih.GetAddress().String() != "10.150.0.71" {
		t.Fatalf(`Expected 10.150.0.71 got %s`, ih.GetAddress())
	}

	if ih.GetPrefix().String() != "10.150.0.71/24" {
		t.Fatalf(`Expected 10.150.0.71/24 got %s`, ih.GetPrefix())
	}
}

func TestJoinNetworkSkipsClaimedAddress(t *testing.T) {
	as := NewAutonomousSystem(150)
	net, _ := as.CreateNetwork("net0", netip.Prefix{})
	r1, _ := as.CreateRouter("r1")
	r2, _ := as.CreateRouter("r2")

	r1.JoinNetwork(net, netip.MustParseAddr("10.150.0.254"))
	iface, err := r2.JoinNetwork(net, netip.Addr{})

	if err != nil {
		t.Fatal(err)
	}

	if iface.GetAddress().String() != "10.150.0.253" {
		t.Fatalf(`Expected 10.150.0.253 got %s`, iface.GetAddress())
	}
}

func TestJoinNetworkAddressOutsidePrefixFails(t *testing.T) {
	as := NewAutonomousSystem(150)
	net, _ := as.CreateNetwork("net0", netip.Prefix{})
	r1, _ := as.CreateRouter("r1")

	if _, err := r1.JoinNetwork(net, netip.MustParseAddr("10.0.0.1")); err == nil {
		t.Fatal(`error should be thrown`)
	}
}

func TestJoinNetworkTwiceFails(t *testing.T) {
	as := NewAutonomousSystem(150)
	net, _ := as.CreateNetwork("net0", netip.Prefix{})
	r1, _ := as.CreateRouter("r1")
	r1.JoinNetwork(net, netip.Addr{})

	if _, err := r1.JoinNetwork(net, netip.Addr{}); err == nil {
		t.Fatal(`error should be thrown`)
	}
}

func TestAllocateExhaustsSmallNetwork(t *testing.T) {
	net := NewNetwork("tiny", 1, LOCAL_NETWORK, netip.MustParsePrefix("10.0.0.0/30"))

	first, err := net.Allocate(ROUTER_ROLE)

	if err != nil {
		t.Fatal(err)
	}

	if first.String() != "10.0.0.2" {
		t.Fatalf(`Expected 10.0.0.2 got %s`, first)
	}

	net.Allocate(ROUTER_ROLE)

	if _, err := net.Allocate(ROUTER_ROLE); err == nil {
		t.Fatal(`error should be thrown`)
	}
}

func TestAddTableIsIdempotent(t *testing.T) {
	node := NewNode("r1", 1, ROUTER_ROLE)
	node.AddTable("t_bgp")
	node.AddTable("t_bgp")

	if len(node.GetTables()) != 1 {
		t.Fatalf(`Expected 1 table got %d`, len(node.GetTables()))
	}
}

func TestAddProtocolReplacesSameName(t *testing.T) {
	node := NewNode("r1", 1, ROUTER_ROLE)
	node.AddProtocol("bgp", "ibgp1", "old")
	node.AddProtocol("bgp", "ibgp2", "other")
	node.AddProtocol("bgp", "ibgp1", "new")

	protocols := node.GetProtocols()

	if len(protocols) != 2 {
		t.Fatalf(`Expected 2 protocols got %d`, len(protocols))
	}

	if protocols[0].Name != "ibgp1" || protocols[0].Body != "new" {
		t.Fatalf(`protocol should be replaced in place`)
	}
}

func TestProtocolsOfKind(t *testing.T) {
	node := NewNode("r1", 1, ROUTER_ROLE)
	node.AddProtocol("ospf", "ospf1", "")
	node.AddProtocol("bgp", "ibgp1", "")
	node.AddProtocol("bgp", "ibgp2", "")

	if len(node.ProtocolsOfKind("bgp")) != 2 {
		t.Fatalf(`Expected 2 bgp protocols`)
	}

	if node.GetProtocol("ospf", "ospf1") == nil {
		t.Fatalf(`ospf1 should be installed`)
	}
}

func TestAddressAtWidePrefix(t *testing.T) {
	ix := NewNetwork("ix100", 0, INTERNET_EXCHANGE, netip.MustParsePrefix("fd00::/64"))

	addr, err := ix.AddressAt(4200000000)

	if err != nil {
		t.Fatal(err)
	}

	if addr != netip.MustParseAddr("fd00::fa56:ea00") {
		t.Fatalf(`Expected fd00::fa56:ea00 got %s`, addr)
	}
}

func TestAddressAtCarriesAcrossBytes(t *testing.T) {
	net := NewNetwork("net0", 150, LOCAL_NETWORK, netip.MustParsePrefix("10.150.0.0/16"))

	addr, err := net.AddressAt(300)

	if err != nil {
		t.Fatal(err)
	}

	if addr != netip.MustParseAddr("10.150.1.44") {
		t.Fatalf(`Expected 10.150.1.44 got %s`, addr)
	}

	if _, err := net.AddressAt(65535); err == nil {
		t.Fatal(`error should be thrown`)
	}
}
