// compiler serialises rendered nodes into routing daemon configuration
// files and start scripts
package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tim-beatham/smegsim/pkg/hosts"
	logging "github.com/tim-beatham/smegsim/pkg/log"
	"github.com/tim-beatham/smegsim/pkg/topology"
)

const (
	BIRD_CONF_FILE = "bird.conf"
	START_SCRIPT   = "start.sh"
)

// Compiler writes the rendered nodes somewhere they can be run from
type Compiler interface {
	Compile(nodes []*topology.Node) error
}

// BirdCompiler writes one directory per node below OutputDir
type BirdCompiler struct {
	OutputDir string
}

// RenderBirdConfig: the BIRD configuration of the node. Tables and
// protocols appear in installation order
func RenderBirdConfig(node *topology.Node) string {
	var b strings.Builder

	for _, iface := range node.GetInterfaces() {
		if iface.GetAddress().Is4() {
			fmt.Fprintf(&b, "router id %s;\n", iface.GetAddress())
			break
		}
	}

	for _, table := range node.GetTables() {
		fmt.Fprintf(&b, "table %s;\n", table)
	}

	for _, protocol := range node.GetProtocols() {
		header := protocol.Kind

		if protocol.Name != "" {
			header += " " + protocol.Name
		}

		fmt.Fprintf(&b, "protocol %s {%s}\n", header, protocol.Body)
	}

	return b.String()
}

// RenderStartScript: shell script configuring the node's interfaces and
// running its start commands
func RenderStartScript(node *topology.Node) string {
	var b strings.Builder
	b.WriteString("#!/bin/bash\n")

	for _, iface := range node.GetInterfaces() {
		fmt.Fprintf(&b, "ip addr add %s dev %s\n", iface.GetPrefix(), iface.GetNet().GetName())
	}

	for _, command := range node.GetStartCommands() {
		b.WriteString(command)
		b.WriteString("\n")
	}

	return b.String()
}

// NodeDir: directory of the node relative to the output directory
func NodeDir(node *topology.Node) string {
	return filepath.Join(fmt.Sprintf("as%d", node.GetAsn()), node.GetName())
}

// HostAlias: name of the node in the hosts file
func HostAlias(node *topology.Node) string {
	return fmt.Sprintf("%s.as%d", node.GetName(), node.GetAsn())
}

// BuildHosts: one entry per node with an interface, resolving to the
// address of its first interface
func BuildHosts(nodes []*topology.Node) hosts.HostsManipulator {
	manipulator := hosts.NewHostsManipulator("")

	for _, node := range nodes {
		interfaces := node.GetInterfaces()

		if len(interfaces) == 0 {
			continue
		}

		manipulator.AddAddr(interfaces[0].GetAddress(), HostAlias(node))
	}

	return manipulator
}

func (c *BirdCompiler) Compile(nodes []*topology.Node) error {
	for _, node := range nodes {
		dir := filepath.Join(c.OutputDir, NodeDir(node))

		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}

		if node.GetRole() == topology.ROUTER_ROLE {
			err := os.WriteFile(filepath.Join(dir, BIRD_CONF_FILE), []byte(RenderBirdConfig(node)), 0644)

			if err != nil {
				return err
			}
		}

		err := os.WriteFile(filepath.Join(dir, START_SCRIPT), []byte(RenderStartScript(node)), 0755)

		if err != nil {
			return err
		}

		logging.Log.WriteInfof("compiled as%d/%s into %s", node.GetAsn(), node.GetName(), dir)
	}

	if err := os.MkdirAll(c.OutputDir, 0755); err != nil {
		return err
	}

	return BuildHosts(nodes).Write(filepath.Join(c.OutputDir, hosts.HOSTS_FILE))
}

func NewBirdCompiler(outputDir string) Compiler {
	return &BirdCompiler{OutputDir: outputDir}
}
