package graph

import (
	"net/netip"
	"strings"
	"testing"

	"github.com/tim-beatham/smegsim/pkg/layers/ebgp"
	"github.com/tim-beatham/smegsim/pkg/layers/ibgp"
	"github.com/tim-beatham/smegsim/pkg/topology"
)

func TestUndirectedEdgeIsDeduplicated(t *testing.T) {
	g := NewGraph("test", GRAPH)
	g.PutNode("a", "a", CIRCLE)
	g.PutNode("b", "b", CIRCLE)
	g.PutEdge("", "a", "b")
	g.PutEdge("", "b", "a")

	dot, err := g.GetDOT()

	if err != nil {
		t.Fatal(err)
	}

	if strings.Count(dot, "--") != 1 {
		t.Fatalf(`Expected one edge got %s`, dot)
	}
}

func TestDirectedEdgesAreKept(t *testing.T) {
	g := NewGraph("test", DIGRAPH)
	g.PutEdge("", "a", "b")
	g.PutEdge("", "b", "a")

	dot, _ := g.GetDOT()

	if strings.Count(dot, "->") != 2 {
		t.Fatalf(`Expected two edges got %s`, dot)
	}
}

func TestGetDOTIsDeterministic(t *testing.T) {
	build := func() string {
		g := NewGraph("test", GRAPH)

		for _, name := range []string{"e", "d", "c", "b", "a"} {
			g.PutNode(name, name, CIRCLE)
			g.PutEdge("", name, "a")
		}

		dot, _ := g.GetDOT()
		return dot
	}

	first := build()

	for i := 0; i < 10; i++ {
		if build() != first {
			t.Fatalf(`DOT output should not depend on map order`)
		}
	}
}

func TestSessionGraph(t *testing.T) {
	ix := topology.NewNetwork("ix100", 0, topology.INTERNET_EXCHANGE, netip.MustParsePrefix("10.100.0.0/24"))
	as150 := topology.NewAutonomousSystem(150)
	r1, _ := as150.CreateRouter("r1")
	r2, _ := as150.CreateRouter("r2")
	as151 := topology.NewAutonomousSystem(151)
	r3, _ := as151.CreateRouter("r1")
	r1.JoinNetwork(ix, netip.Addr{})
	r3.JoinNetwork(ix, netip.Addr{})

	sessions := []ibgp.Session{
		{Asn: 150, Name: "ibgp1", Local: r1, Remote: r2},
		{Asn: 150, Name: "ibgp1", Local: r2, Remote: r1},
	}
	peerings := []ebgp.Peering{{Ix: 100, A: 150, B: 151}}

	dot, err := NewSessionGraphConverter([]*topology.Node{r1, r2, r3}, sessions, peerings).Generate()

	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(dot, `subgraph "clusteras150"`) || !strings.Contains(dot, `subgraph "clusteras151"`) {
		t.Fatalf(`expected a cluster per as got %s`, dot)
	}

	if !strings.Contains(dot, `"as150/r1" -- "as150/r2" [label="ibgp"];`) {
		t.Fatalf(`expected the ibgp edge got %s`, dot)
	}

	if strings.Count(dot, `[label="ibgp"]`) != 1 {
		t.Fatalf(`both directions of a session should be one edge`)
	}

	if !strings.Contains(dot, `"as150/r1" -- "as151/r1" [label="ix100"];`) {
		t.Fatalf(`expected the ebgp edge got %s`, dot)
	}
}
