// Graph allows the definition of a DOT graph in golang
package graph

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/tim-beatham/smegsim/pkg/lib"
)

type GraphType string
type Shape string

const (
	GRAPH   GraphType = "graph"
	DIGRAPH GraphType = "digraph"
)

const CIRCLE Shape = "circle"

type Graph interface {
	Dottable
	GetType() GraphType
}

// Dottable means an implementer can convert the struct to DOT representation
type Dottable interface {
	GetDOT() (string, error)
}

// Node: represents a graphviz node
type Node struct {
	Name  string
	Label string
	Shape Shape
}

// Edge: an edge between adjacent nodes, directed or not depending on the
// graph it belongs to
type Edge struct {
	Label    string
	From     string
	To       string
	Directed bool
}

// Cluster: represents a subgraph in the graph
type Cluster struct {
	Type  GraphType
	Label string
	nodes map[string]*Node
	edges map[string]*Edge
}

// RootGraph: represents the top level graph
type RootGraph struct {
	Type     GraphType
	Label    string
	nodes    map[string]*Node
	clusters map[string]*Cluster
	edges    map[string]*Edge
}

const numColours = 12

func (n *Node) hash() int {
	h := fnv.New32a()
	h.Write([]byte(n.Name))
	return (int(h.Sum32()) % numColours) + 1
}

// GetDOT: convert the node into DOT format
func (n *Node) GetDOT() (string, error) {
	return fmt.Sprintf("\"%s\" [label=\"%s\", shape=%s, style=\"filled\", fillcolor=%d];\n",
		n.Name, n.Label, n.Shape, n.hash()), nil
}

// GetDOT: convert the edge into DOT format
func (e *Edge) GetDOT() (string, error) {
	connector := "--"

	if e.Directed {
		connector = "->"
	}

	return fmt.Sprintf("\"%s\" %s \"%s\" [label=\"%s\"];\n", e.From, connector, e.To, e.Label), nil
}

// writeConstituents: writes the elements ordered by key so the output
// is the same for the same graph
func writeConstituents[D Dottable](result *strings.Builder, elements map[string]D) error {
	for _, element := range lib.SortedValues(elements) {
		dot, err := element.GetDOT()

		if err != nil {
			return err
		}

		result.WriteString(dot)
	}

	return nil
}

// putNode: puts a node if it does not already exist
func putNode(nodes map[string]*Node, name, label string, shape Shape) {
	if _, exists := nodes[name]; exists {
		return
	}

	nodes[name] = &Node{Name: name, Label: label, Shape: shape}
}

func putEdge(graphType GraphType, edges map[string]*Edge, label, from, to string) {
	key := from + "\x00" + to

	if graphType == GRAPH && to < from {
		key = to + "\x00" + from
	}

	if _, exists := edges[key]; exists {
		return
	}

	edges[key] = &Edge{Label: label, From: from, To: to, Directed: graphType == DIGRAPH}
}

// PutNode: puts a node in the root graph
func (g *RootGraph) PutNode(name, label string, shape Shape) {
	putNode(g.nodes, name, label, shape)
}

// PutEdge: adds an edge between two nodes. In an undirected graph a->b
// and b->a are the same edge
func (g *RootGraph) PutEdge(label, from, to string) {
	putEdge(g.Type, g.edges, label, from, to)
}

// PutCluster: puts a cluster in the root graph
func (g *RootGraph) PutCluster(cluster *Cluster) {
	g.clusters[cluster.Label] = cluster
}

// GetCluster: the cluster with the label, nil if absent
func (g *RootGraph) GetCluster(label string) *Cluster {
	return g.clusters[label]
}

// GetType: get the graph type. DIRECTED|UNDIRECTED
func (g *RootGraph) GetType() GraphType {
	return g.Type
}

// GetDOT: convert the root graph into dot format
func (g *RootGraph) GetDOT() (string, error) {
	var result strings.Builder

	result.WriteString(fmt.Sprintf("%s \"%s\" {\n", g.Type, g.Label))
	result.WriteString("node [colorscheme=set312];\n")
	result.WriteString("layout = fdp;\n")

	for _, cluster := range lib.SortedValues(g.clusters) {
		clusterDOT, err := cluster.GetDOT()

		if err != nil {
			return "", err
		}

		result.WriteString(clusterDOT)
	}

	if err := writeConstituents(&result, g.nodes); err != nil {
		return "", err
	}

	if err := writeConstituents(&result, g.edges); err != nil {
		return "", err
	}

	result.WriteString("}\n")
	return result.String(), nil
}

// PutNode: puts a node in the cluster
func (c *Cluster) PutNode(name, label string, shape Shape) {
	putNode(c.nodes, name, label, shape)
}

// PutEdge: adds an edge between two nodes of the cluster
func (c *Cluster) PutEdge(label, from, to string) {
	putEdge(c.Type, c.edges, label, from, to)
}

// GetType: get the type of the subgraph (directed|undirected)
func (c *Cluster) GetType() GraphType {
	return c.Type
}

// GetDOT: convert the cluster into dot format
func (c *Cluster) GetDOT() (string, error) {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("subgraph \"cluster%s\" {\n", c.Label))
	builder.WriteString(fmt.Sprintf("label = \"%s\";\n", c.Label))

	if err := writeConstituents(&builder, c.nodes); err != nil {
		return "", err
	}

	if err := writeConstituents(&builder, c.edges); err != nil {
		return "", err
	}

	builder.WriteString("}\n")
	return builder.String(), nil
}

// NewSubGraph: instantiate a new subgraph
func NewSubGraph(label string, graphType GraphType) *Cluster {
	return &Cluster{
		Label: label,
		Type:  graphType,
		nodes: make(map[string]*Node),
		edges: make(map[string]*Edge),
	}
}

// NewGraph: create a new root graph
func NewGraph(label string, graphType GraphType) *RootGraph {
	return &RootGraph{
		Type:     graphType,
		Label:    label,
		clusters: make(map[string]*Cluster),
		nodes:    make(map[string]*Node),
		edges:    make(map[string]*Edge),
	}
}
