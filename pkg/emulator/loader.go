package emulator

import (
	"fmt"

	"github.com/tim-beatham/smegsim/pkg/conf"
	"github.com/tim-beatham/smegsim/pkg/layer"
	"github.com/tim-beatham/smegsim/pkg/layers/base"
	"github.com/tim-beatham/smegsim/pkg/layers/ebgp"
	"github.com/tim-beatham/smegsim/pkg/layers/ibgp"
	"github.com/tim-beatham/smegsim/pkg/layers/ospf"
	"github.com/tim-beatham/smegsim/pkg/layers/routing"
	"github.com/tim-beatham/smegsim/pkg/topology"
)

func joinNetworks(as *topology.AutonomousSystem, node *topology.Node, attachments []conf.AttachmentConfiguration) error {
	for _, attachment := range attachments {
		address, err := conf.ParseAddress(attachment.Address)

		if err != nil {
			return err
		}

		net := as.GetNetwork(attachment.Name)

		if net == nil {
			return fmt.Errorf("as%d/%s: unknown network %s", as.GetAsn(), node.GetName(), attachment.Name)
		}

		if _, err := node.JoinNetwork(net, address); err != nil {
			return err
		}
	}

	return nil
}

func buildBase(c *conf.TopologyConfiguration) (*base.Base, error) {
	b := base.NewBase()

	for _, ixConf := range c.Exchanges {
		prefix, err := conf.ParsePrefix(ixConf.Prefix)

		if err != nil {
			return nil, err
		}

		if _, err := b.CreateInternetExchange(ixConf.Id, prefix); err != nil {
			return nil, err
		}
	}

	for _, asConf := range c.Ases {
		as, err := b.CreateAutonomousSystem(asConf.Asn)

		if err != nil {
			return nil, err
		}

		for _, netConf := range asConf.Networks {
			prefix, err := conf.ParsePrefix(netConf.Prefix)

			if err != nil {
				return nil, err
			}

			if _, err := as.CreateNetwork(netConf.Name, prefix); err != nil {
				return nil, err
			}
		}

		for _, routerConf := range asConf.Routers {
			router, err := as.CreateRouter(routerConf.Name)

			if err != nil {
				return nil, err
			}

			if err := joinNetworks(as, router, routerConf.Networks); err != nil {
				return nil, err
			}

			for _, ixConf := range routerConf.Exchanges {
				address, err := conf.ParseAddress(ixConf.Address)

				if err != nil {
					return nil, err
				}

				ix := b.GetInternetExchange(ixConf.Id)

				if ix == nil {
					return nil, fmt.Errorf("as%d/%s: unknown exchange %d", as.GetAsn(), router.GetName(), ixConf.Id)
				}

				if _, err := base.JoinInternetExchange(router, ix, address); err != nil {
					return nil, err
				}
			}
		}

		for _, hostConf := range asConf.Hosts {
			host, err := as.CreateHost(hostConf.Name)

			if err != nil {
				return nil, err
			}

			if err := joinNetworks(as, host, hostConf.Networks); err != nil {
				return nil, err
			}
		}
	}

	return b, nil
}

// NewEmulatorFromConfiguration: builds the topology and registers the
// Base, Routing, Ospf, Ibgp and Ebgp layers configured by c
func NewEmulatorFromConfiguration(c *conf.TopologyConfiguration) (*Emulator, error) {
	b, err := buildBase(c)

	if err != nil {
		return nil, err
	}

	o := ospf.NewOspf()

	for _, asn := range c.Ospf.MaskAsns {
		o.MaskAsn(asn)
	}

	for _, mask := range c.Ospf.MaskNetworks {
		o.MaskByName(mask.Asn, mask.Name)
	}

	e := ebgp.NewEbgp()

	for _, peering := range c.Ebgp.Peerings {
		if err := e.AddPrivatePeering(peering.Ix, peering.A, peering.B); err != nil {
			return nil, err
		}
	}

	emu := NewEmulator()

	layers := []layer.Layer{b, routing.NewRouting(), o, ibgp.NewIbgp(c.Ibgp.MaskAsns...), e}

	for _, l := range layers {
		if err := emu.AddLayer(l); err != nil {
			return nil, err
		}
	}

	return emu, nil
}
