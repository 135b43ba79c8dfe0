// conf defines topology file parsing for smegsim
package conf

import (
	"fmt"
	"net/netip"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type TopologyConfigurationError struct {
	msg string
}

func (m *TopologyConfigurationError) Error() string {
	return m.msg
}

func configErrorf(format string, args ...interface{}) error {
	return &TopologyConfigurationError{msg: fmt.Sprintf(format, args...)}
}

type LogLevel string

const (
	ERROR   LogLevel = "error"
	WARNING LogLevel = "warning"
	INFO    LogLevel = "info"
)

const DEFAULT_OUTPUT_DIR = "./output"

// AttachmentConfiguration attaches a node to a network
type AttachmentConfiguration struct {
	// Name of the AS network to join
	Name string `yaml:"name" validate:"required"`
	// Address to use on the network. Empty allocates the next free address
	Address string `yaml:"address" validate:"omitempty,ip"`
}

// ExchangeAttachmentConfiguration attaches a router to an internet exchange
type ExchangeAttachmentConfiguration struct {
	Id      int    `yaml:"id" validate:"required,gte=1"`
	Address string `yaml:"address" validate:"omitempty,ip"`
}

type NetworkConfiguration struct {
	Name string `yaml:"name" validate:"required"`
	// Prefix of the network. Empty defaults to 10.asn.n.0/24
	Prefix string `yaml:"prefix" validate:"omitempty,cidr"`
}

type RouterConfiguration struct {
	Name      string                            `yaml:"name" validate:"required"`
	Networks  []AttachmentConfiguration         `yaml:"networks" validate:"dive"`
	Exchanges []ExchangeAttachmentConfiguration `yaml:"exchanges" validate:"dive"`
}

type HostConfiguration struct {
	Name     string                    `yaml:"name" validate:"required"`
	Networks []AttachmentConfiguration `yaml:"networks" validate:"dive"`
}

type AutonomousSystemConfiguration struct {
	Asn      int                    `yaml:"asn" validate:"required,gte=1"`
	Networks []NetworkConfiguration `yaml:"networks" validate:"dive"`
	Routers  []RouterConfiguration  `yaml:"routers" validate:"dive"`
	Hosts    []HostConfiguration    `yaml:"hosts" validate:"dive"`
}

type ExchangeConfiguration struct {
	Id     int    `yaml:"id" validate:"required,gte=1"`
	Prefix string `yaml:"prefix" validate:"omitempty,cidr"`
}

// NetworkMaskConfiguration names an AS network to exclude from OSPF
type NetworkMaskConfiguration struct {
	Asn  int    `yaml:"asn" validate:"required,gte=1"`
	Name string `yaml:"name" validate:"required"`
}

type OspfConfiguration struct {
	// MaskAsns: ASes with OSPF disabled
	MaskAsns []int `yaml:"maskAsns"`
	// MaskNetworks: networks excluded from OSPF and iBGP
	MaskNetworks []NetworkMaskConfiguration `yaml:"maskNetworks" validate:"dive"`
}

type IbgpConfiguration struct {
	// MaskAsns: ASes that do not get a full iBGP mesh
	MaskAsns []int `yaml:"maskAsns"`
}

type PeeringConfiguration struct {
	Ix int `yaml:"ix" validate:"required,gte=1"`
	A  int `yaml:"a" validate:"required,gte=1"`
	B  int `yaml:"b" validate:"required,gte=1,nefield=A"`
}

type EbgpConfiguration struct {
	Peerings []PeeringConfiguration `yaml:"peerings" validate:"dive"`
}

type TopologyConfiguration struct {
	// LogLevel: error|warning|info
	LogLevel LogLevel `yaml:"logLevel" validate:"omitempty,eq=error|eq=warning|eq=info"`
	// OutputDir: directory the compiler writes node configuration into
	OutputDir string                          `yaml:"outputDir"`
	Exchanges []ExchangeConfiguration         `yaml:"exchanges" validate:"dive"`
	Ases      []AutonomousSystemConfiguration `yaml:"ases" validate:"required,min=1,dive"`
	Ospf      OspfConfiguration               `yaml:"ospf"`
	Ibgp      IbgpConfiguration               `yaml:"ibgp"`
	Ebgp      EbgpConfiguration               `yaml:"ebgp"`
}

// ValidateTopologyConfiguration: validates the struct tags then checks that
// every reference names something declared
func ValidateTopologyConfiguration(c *TopologyConfiguration) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	err := validate.Struct(c)

	if err != nil {
		return err
	}

	if c.LogLevel == "" {
		c.LogLevel = INFO
	}

	if c.OutputDir == "" {
		c.OutputDir = DEFAULT_OUTPUT_DIR
	}

	return validateReferences(c)
}

func validateReferences(c *TopologyConfiguration) error {
	exchanges := make(map[int]struct{})

	for _, ix := range c.Exchanges {
		if _, exists := exchanges[ix.Id]; exists {
			return configErrorf("exchange %d declared twice", ix.Id)
		}

		exchanges[ix.Id] = struct{}{}
	}

	networks := make(map[int]map[string]struct{})

	for _, as := range c.Ases {
		if _, exists := networks[as.Asn]; exists {
			return configErrorf("as%d declared twice", as.Asn)
		}

		names := make(map[string]struct{})

		for _, net := range as.Networks {
			names[net.Name] = struct{}{}
		}

		networks[as.Asn] = names

		for _, router := range as.Routers {
			for _, attachment := range router.Networks {
				if _, ok := names[attachment.Name]; !ok {
					return configErrorf("as%d/%s: unknown network %s", as.Asn, router.Name, attachment.Name)
				}
			}

			for _, attachment := range router.Exchanges {
				if _, ok := exchanges[attachment.Id]; !ok {
					return configErrorf("as%d/%s: unknown exchange %d", as.Asn, router.Name, attachment.Id)
				}
			}
		}

		for _, host := range as.Hosts {
			for _, attachment := range host.Networks {
				if _, ok := names[attachment.Name]; !ok {
					return configErrorf("as%d/%s: unknown network %s", as.Asn, host.Name, attachment.Name)
				}
			}
		}
	}

	for _, mask := range c.Ospf.MaskNetworks {
		names, ok := networks[mask.Asn]

		if !ok {
			return configErrorf("ospf: unknown as%d", mask.Asn)
		}

		if _, ok := names[mask.Name]; !ok {
			return configErrorf("ospf: unknown network as%d/%s", mask.Asn, mask.Name)
		}
	}

	for _, peering := range c.Ebgp.Peerings {
		if _, ok := exchanges[peering.Ix]; !ok {
			return configErrorf("ebgp: unknown exchange %d", peering.Ix)
		}

		for _, asn := range []int{peering.A, peering.B} {
			if _, ok := networks[asn]; !ok {
				return configErrorf("ebgp: unknown as%d", asn)
			}
		}
	}

	return nil
}

// ParsePrefix: parses an optional prefix, the zero prefix if empty
func ParsePrefix(prefix string) (netip.Prefix, error) {
	if prefix == "" {
		return netip.Prefix{}, nil
	}

	return netip.ParsePrefix(prefix)
}

// ParseAddress: parses an optional address, the zero address if empty
func ParseAddress(address string) (netip.Addr, error) {
	if address == "" {
		return netip.Addr{}, nil
	}

	return netip.ParseAddr(address)
}

// ParseTopologyConfiguration parses the topology file and validates it
func ParseTopologyConfiguration(filePath string) (*TopologyConfiguration, error) {
	yamlBytes, err := os.ReadFile(filePath)

	if err != nil {
		return nil, err
	}

	return UnmarshalTopologyConfiguration(yamlBytes)
}

func UnmarshalTopologyConfiguration(yamlBytes []byte) (*TopologyConfiguration, error) {
	var conf TopologyConfiguration

	err := yaml.Unmarshal(yamlBytes, &conf)

	if err != nil {
		return nil, err
	}

	return &conf, ValidateTopologyConfiguration(&conf)
}
