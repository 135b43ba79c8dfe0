package main

import (
	"fmt"
	"os"

	"github.com/akamensky/argparse"
	"github.com/tim-beatham/smegsim/pkg/compiler"
	"github.com/tim-beatham/smegsim/pkg/conf"
	graph "github.com/tim-beatham/smegsim/pkg/dot"
	"github.com/tim-beatham/smegsim/pkg/emulator"
	"github.com/tim-beatham/smegsim/pkg/layer"
	"github.com/tim-beatham/smegsim/pkg/layers/ebgp"
	"github.com/tim-beatham/smegsim/pkg/layers/ibgp"
	"github.com/tim-beatham/smegsim/pkg/lib"
	logging "github.com/tim-beatham/smegsim/pkg/log"
	"github.com/tim-beatham/smegsim/pkg/query"
	"github.com/tim-beatham/smegsim/pkg/topology"
)

// loadEmulator: parse the topology file and build the emulator it describes
func loadEmulator(path string) (*emulator.Emulator, *conf.TopologyConfiguration, error) {
	c, err := conf.ParseTopologyConfiguration(path)

	if err != nil {
		return nil, nil, err
	}

	logging.SetLogger(logging.NewLogrusLogger(c.LogLevel, os.Stderr))

	emu, err := emulator.NewEmulatorFromConfiguration(c)

	if err != nil {
		return nil, nil, err
	}

	return emu, c, nil
}

func renderTopology(path, outputDir string) error {
	emu, c, err := loadEmulator(path)

	if err != nil {
		return err
	}

	if err := emu.Render(); err != nil {
		return err
	}

	nodes, err := emu.GetNodes()

	if err != nil {
		return err
	}

	if outputDir == "" {
		outputDir = c.OutputDir
	}

	if err := compiler.NewBirdCompiler(outputDir).Compile(nodes); err != nil {
		return err
	}

	summary, err := emu.Summarise(ibgp.PROTOCOL_KIND)

	if err != nil {
		return err
	}

	fmt.Printf("rendered %d routers: %d bgp sessions, %.2f +/- %.2f per router\n",
		summary.Routers, summary.Protocols, summary.MeanProtocols, summary.StdProtocols)
	return nil
}

func graphTopology(path string) error {
	emu, _, err := loadEmulator(path)

	if err != nil {
		return err
	}

	if err := emu.Render(); err != nil {
		return err
	}

	nodes, err := emu.GetNodes()

	if err != nil {
		return err
	}

	ibgpLayer, err := layer.GetLayer[*ibgp.Ibgp](emu.GetContext(), ibgp.LAYER_NAME)

	if err != nil {
		return err
	}

	ebgpLayer, err := layer.GetLayer[*ebgp.Ebgp](emu.GetContext(), ebgp.LAYER_NAME)

	if err != nil {
		return err
	}

	routers := lib.Filter(nodes, func(node *topology.Node) bool {
		return node.GetRole() == topology.ROUTER_ROLE
	})

	dot, err := graph.NewSessionGraphConverter(routers, ibgpLayer.GetSessions(), ebgpLayer.GetPeerings()).Generate()

	if err != nil {
		return err
	}

	fmt.Println(dot)
	return nil
}

func queryTopology(path, expression string) error {
	emu, _, err := loadEmulator(path)

	if err != nil {
		return err
	}

	if err := emu.Render(); err != nil {
		return err
	}

	nodes, err := emu.GetNodes()

	if err != nil {
		return err
	}

	result, err := query.NewJmesQuerier(nodes).Query(expression)

	if err != nil {
		return err
	}

	fmt.Println(string(result))
	return nil
}

func printOrder(path string) error {
	emu, _, err := loadEmulator(path)

	if err != nil {
		return err
	}

	order, err := emu.Order()

	if err != nil {
		return err
	}

	for index, name := range order {
		fmt.Printf("%d %s\n", index+1, name)
	}

	return nil
}

func main() {
	parser := argparse.NewParser("smegsim",
		"smegsim Render emulated internet topologies into routing daemon configuration")

	renderCmd := parser.NewCommand("render", "Render the topology and write every node's configuration")
	graphCmd := parser.NewCommand("graph", "Convert the rendered BGP sessions into DOT format")
	queryCmd := parser.NewCommand("query", "Query the rendered nodes using JMESPath")
	orderCmd := parser.NewCommand("order", "Print the order the layers render in")

	var renderConfig *string = renderCmd.String("c", "config", &argparse.Options{
		Required: true,
		Help:     "Path to the topology file",
	})

	var renderOutput *string = renderCmd.String("o", "output", &argparse.Options{
		Help: "Directory to write node configuration into. Overrides outputDir of the topology file",
	})

	var graphConfig *string = graphCmd.String("c", "config", &argparse.Options{
		Required: true,
		Help:     "Path to the topology file",
	})

	var queryConfig *string = queryCmd.String("c", "config", &argparse.Options{
		Required: true,
		Help:     "Path to the topology file",
	})

	var queryExpression *string = queryCmd.String("q", "query", &argparse.Options{
		Required: true,
		Help:     "JMESPath query of the rendered nodes",
	})

	var orderConfig *string = orderCmd.String("c", "config", &argparse.Options{
		Required: true,
		Help:     "Path to the topology file",
	})

	err := parser.Parse(os.Args)

	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(2)
	}

	switch {
	case renderCmd.Happened():
		err = renderTopology(*renderConfig, *renderOutput)
	case graphCmd.Happened():
		err = graphTopology(*graphConfig)
	case queryCmd.Happened():
		err = queryTopology(*queryConfig, *queryExpression)
	case orderCmd.Happened():
		err = printOrder(*orderConfig)
	}

	if err != nil {
		logging.Log.WriteErrorf("%s", err.Error())
		os.Exit(1)
	}
}
