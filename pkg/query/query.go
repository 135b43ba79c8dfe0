package query

import (
	"encoding/json"
	"fmt"

	"github.com/jmespath/go-jmespath"
	"github.com/tim-beatham/smegsim/pkg/lib"
	"github.com/tim-beatham/smegsim/pkg/topology"
)

// Querier queries the rendered topology and returns the result as JSON
type Querier interface {
	Query(queryParams string) ([]byte, error)
}

// JmesQuerier: queries the rendered nodes in JMESPath syntax
type JmesQuerier struct {
	nodes []*topology.Node
}

// QueryError: query error if something went wrong
type QueryError struct {
	msg string
}

func (m *QueryError) Error() string {
	return m.msg
}

// QueryInterface: represents a single interface in the query
type QueryInterface struct {
	Network string `json:"network"`
	Type    string `json:"type"`
	Address string `json:"address"`
	Masked  bool   `json:"masked"`
}

// QueryProtocol: represents an installed protocol block
type QueryProtocol struct {
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	Config string `json:"config"`
}

// QueryNode: represents a single node in the query
type QueryNode struct {
	Name          string           `json:"name"`
	Asn           int              `json:"asn"`
	Role          string           `json:"role"`
	Interfaces    []QueryInterface `json:"interfaces"`
	Tables        []string         `json:"tables"`
	Protocols     []QueryProtocol  `json:"protocols"`
	StartCommands []string         `json:"startCommands"`
}

// Query: evaluates the JMESPath expression against every node
func (j *JmesQuerier) Query(queryParams string) ([]byte, error) {
	nodes := lib.Map(j.nodes, NodeToQueryNode)

	// round trip through JSON so expressions see the json field names
	encoded, err := json.Marshal(nodes)

	if err != nil {
		return nil, err
	}

	var data interface{}

	if err := json.Unmarshal(encoded, &data); err != nil {
		return nil, err
	}

	result, err := jmespath.Search(queryParams, data)

	if err != nil {
		return nil, &QueryError{msg: fmt.Sprintf("invalid query %s: %s", queryParams, err.Error())}
	}

	return json.Marshal(result)
}

// NodeToQueryNode: convert the node into a query abstraction
func NodeToQueryNode(node *topology.Node) *QueryNode {
	queryNode := new(QueryNode)
	queryNode.Name = node.GetName()
	queryNode.Asn = node.GetAsn()
	queryNode.Role = string(node.GetRole())
	queryNode.Interfaces = lib.Map(node.GetInterfaces(), func(i *topology.Interface) QueryInterface {
		return QueryInterface{
			Network: i.GetNet().GetName(),
			Type:    string(i.GetNet().GetType()),
			Address: i.GetAddress().String(),
			Masked:  i.GetNet().IsMasked(),
		}
	})
	queryNode.Tables = node.GetTables()
	queryNode.Protocols = lib.Map(node.GetProtocols(), func(p *topology.Protocol) QueryProtocol {
		return QueryProtocol{Kind: p.Kind, Name: p.Name, Config: p.Body}
	})
	queryNode.StartCommands = node.GetStartCommands()

	return queryNode
}

func NewJmesQuerier(nodes []*topology.Node) Querier {
	return &JmesQuerier{nodes: nodes}
}
