// hosts: utility for writing the name of every emulated node into a
// hosts file
package hosts

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strings"

	"github.com/tim-beatham/smegsim/pkg/lib"
)

// HOSTS_FILE is the name of the hosts file in the output directory
const HOSTS_FILE = "hosts"

const DOMAIN_HEADER = "#SMEGSIM AUTO GENERATED HOSTS"
const DOMAIN_TRAILER = "#SMEGSIM AUTO GENERATED HOSTS END"

// Generic interface to manipulate a hosts file
type HostsManipulator interface {
	// AddAddr associates an alias with a given IP address
	AddAddr(ipAddr netip.Addr, alias string)
	// Remove deletes the entry
	Remove(alias string)
	// Render the generated section
	Render() string
	// Write the generated section to the file at path, keeping whatever
	// else is in the file
	Write(path string) error
}

type HostsManipulatorImpl struct {
	hosts map[string]netip.Addr
	simId string
}

// AddAddr implements HostsManipulator.
func (m *HostsManipulatorImpl) AddAddr(ipAddr netip.Addr, alias string) {
	m.hosts[alias] = ipAddr
}

// Remove implements HostsManipulator.
func (m *HostsManipulatorImpl) Remove(alias string) {
	delete(m.hosts, alias)
}

type HostsEntry struct {
	Alias string
	Ip    netip.Addr
}

// removeHosts: contents of the file without the generated section
func (m *HostsManipulatorImpl) removeHosts(hostsFile []byte) (string, error) {
	var contents strings.Builder

	scanner := bufio.NewScanner(bytes.NewReader(hostsFile))

	hostsSection := false

	for scanner.Scan() {
		line := scanner.Text()

		if !hostsSection && strings.Contains(line, DOMAIN_HEADER+m.simId) {
			hostsSection = true
		}

		if !hostsSection {
			contents.WriteString(line + "\n")
		}

		if hostsSection && strings.Contains(line, DOMAIN_TRAILER+m.simId) {
			hostsSection = false
		}
	}

	return contents.String(), scanner.Err()
}

// Render implements HostsManipulator. Entries are ordered by alias
func (m *HostsManipulatorImpl) Render() string {
	var hosts strings.Builder

	hosts.WriteString(DOMAIN_HEADER + m.simId + "\n")

	for _, alias := range lib.SortedKeys(m.hosts) {
		hosts.WriteString(fmt.Sprintf("%s\t%s\n", m.hosts[alias].String(), alias))
	}

	hosts.WriteString(DOMAIN_TRAILER + m.simId + "\n")
	return hosts.String()
}

// Write implements HostsManipulator
func (m *HostsManipulatorImpl) Write(path string) error {
	hostsFile, err := os.ReadFile(path)

	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	contents, err := m.removeHosts(hostsFile)

	if err != nil {
		return err
	}

	return os.WriteFile(path, []byte(contents+m.Render()), 0644)
}

// ParseLine parses a line of a hosts file
func ParseLine(line string) (*HostsEntry, error) {
	fields := strings.Fields(line)

	if len(fields) != 2 {
		return nil, fmt.Errorf("expected entry length of 2 was %d", len(fields))
	}

	ipAddr := fields[0]
	alias := fields[1]

	ip, err := netip.ParseAddr(ipAddr)

	if err != nil {
		return nil, fmt.Errorf("failed to parse ip for %s", alias)
	}

	return &HostsEntry{Ip: ip, Alias: alias}, nil
}

func NewHostsManipulator(simId string) HostsManipulator {
	return &HostsManipulatorImpl{hosts: make(map[string]netip.Addr), simId: simId}
}
