// base owns the autonomous systems and internet exchanges of the topology
// and publishes their nodes and networks for the other layers
package base

import (
	"fmt"
	"net/netip"
	"strconv"

	"github.com/tim-beatham/smegsim/pkg/layer"
	"github.com/tim-beatham/smegsim/pkg/lib"
	logging "github.com/tim-beatham/smegsim/pkg/log"
	"github.com/tim-beatham/smegsim/pkg/registry"
	"github.com/tim-beatham/smegsim/pkg/topology"
)

const LAYER_NAME = "Base"

// IX_SCOPE is the registry scope exchange networks are published under
const IX_SCOPE = "ix"

// AsnLister is the capability the Base layer publishes to other layers
type AsnLister interface {
	GetAsns() []int
}

type Base struct {
	ases      map[int]*topology.AutonomousSystem
	exchanges map[int]*topology.Network
}

func (b *Base) GetName() string {
	return LAYER_NAME
}

func (b *Base) GetDependencies() []string {
	return []string{}
}

// CreateAutonomousSystem: declares a new AS
func (b *Base) CreateAutonomousSystem(asn int) (*topology.AutonomousSystem, error) {
	if asn <= 0 {
		return nil, fmt.Errorf("base: invalid asn %d", asn)
	}

	if _, exists := b.ases[asn]; exists {
		return nil, fmt.Errorf("base: as%d already exists", asn)
	}

	as := topology.NewAutonomousSystem(asn)
	b.ases[asn] = as
	return as, nil
}

func (b *Base) GetAutonomousSystem(asn int) *topology.AutonomousSystem {
	return b.ases[asn]
}

// GetAsns: every declared AS number in ascending order
func (b *Base) GetAsns() []int {
	return lib.SortedKeys(b.ases)
}

// ExchangeName: name of the network of internet exchange id
func ExchangeName(id int) string {
	return fmt.Sprintf("ix%d", id)
}

// CreateInternetExchange: declares an exchange network. An invalid prefix
// defaults to 10.id.0.0/24
func (b *Base) CreateInternetExchange(id int, prefix netip.Prefix) (*topology.Network, error) {
	if _, exists := b.exchanges[id]; exists {
		return nil, fmt.Errorf("base: exchange %d already exists", id)
	}

	if !prefix.IsValid() {
		if id <= 0 || id > 255 {
			return nil, fmt.Errorf("base: exchange %d needs an explicit prefix", id)
		}

		prefix = netip.MustParsePrefix(fmt.Sprintf("10.%d.0.0/24", id))
	}

	ix := topology.NewNetwork(ExchangeName(id), 0, topology.INTERNET_EXCHANGE, prefix)
	b.exchanges[id] = ix
	return ix, nil
}

func (b *Base) GetInternetExchange(id int) *topology.Network {
	return b.exchanges[id]
}

// GetExchangeIds: every declared exchange id in ascending order
func (b *Base) GetExchangeIds() []int {
	return lib.SortedKeys(b.exchanges)
}

// JoinInternetExchange: connects an AS router to an exchange. An invalid
// address uses host offset asn when it fits, otherwise the next free one
func JoinInternetExchange(router *topology.Node, ix *topology.Network, address netip.Addr) (*topology.Interface, error) {
	if !address.IsValid() {
		if addr, err := ix.AddressAt(router.GetAsn()); err == nil && !ix.IsAssigned(addr) {
			address = addr
		}
	}

	return router.JoinNetwork(ix, address)
}

// Render: publishes every node and network under its AS scope
func (b *Base) Render(ctx *layer.Context) error {
	for _, id := range b.GetExchangeIds() {
		ix := b.exchanges[id]

		if err := ctx.Registry.Register(IX_SCOPE, registry.NET_KIND, ix.GetName(), ix); err != nil {
			return err
		}
	}

	for _, asn := range b.GetAsns() {
		as := b.ases[asn]
		scope := strconv.Itoa(asn)

		logging.Log.WriteInfof("publishing as%d: %d routers, %d hosts, %d networks",
			asn, len(as.GetRouters()), len(as.GetHosts()), len(as.GetNetworks()))

		for _, net := range as.GetNetworks() {
			if err := ctx.Registry.Register(scope, registry.NET_KIND, net.GetName(), net); err != nil {
				return err
			}
		}

		for _, router := range as.GetRouters() {
			if err := ctx.Registry.Register(scope, registry.ROUTER_KIND, router.GetName(), router); err != nil {
				return err
			}
		}

		for _, host := range as.GetHosts() {
			if err := ctx.Registry.Register(scope, registry.HOST_KIND, host.GetName(), host); err != nil {
				return err
			}
		}
	}

	return nil
}

// GetRouters: the routers published under the AS scope in creation order
func GetRouters(ctx *layer.Context, asn int) []*topology.Node {
	return registry.ByType[*topology.Node](ctx.Registry.Scoped(strconv.Itoa(asn)), registry.ROUTER_KIND)
}

// GetHosts: the hosts published under the AS scope in creation order
func GetHosts(ctx *layer.Context, asn int) []*topology.Node {
	return registry.ByType[*topology.Node](ctx.Registry.Scoped(strconv.Itoa(asn)), registry.HOST_KIND)
}

func NewBase() *Base {
	return &Base{
		ases:      make(map[int]*topology.AutonomousSystem),
		exchanges: make(map[int]*topology.Network),
	}
}
