package hosts

import (
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderIsSortedByAlias(t *testing.T) {
	m := NewHostsManipulator("")
	m.AddAddr(netip.MustParseAddr("10.151.0.254"), "r1.as151")
	m.AddAddr(netip.MustParseAddr("10.150.0.254"), "r1.as150")

	expected := DOMAIN_HEADER + "\n" +
		"10.150.0.254\tr1.as150\n" +
		"10.151.0.254\tr1.as151\n" +
		DOMAIN_TRAILER + "\n"

	if m.Render() != expected {
		t.Fatalf(`Expected %q got %q`, expected, m.Render())
	}
}

func TestRemove(t *testing.T) {
	m := NewHostsManipulator("")
	m.AddAddr(netip.MustParseAddr("10.150.0.254"), "r1.as150")
	m.Remove("r1.as150")

	if strings.Contains(m.Render(), "r1.as150") {
		t.Fatalf(`r1.as150 should have been removed`)
	}
}

func TestWriteReplacesGeneratedSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), HOSTS_FILE)
	os.WriteFile(path, []byte("127.0.0.1\tlocalhost\n"), 0644)

	first := NewHostsManipulator("")
	first.AddAddr(netip.MustParseAddr("10.150.0.254"), "r1.as150")

	if err := first.Write(path); err != nil {
		t.Fatal(err)
	}

	second := NewHostsManipulator("")
	second.AddAddr(netip.MustParseAddr("10.150.0.253"), "r2.as150")

	if err := second.Write(path); err != nil {
		t.Fatal(err)
	}

	contents, _ := os.ReadFile(path)

	if !strings.HasPrefix(string(contents), "127.0.0.1\tlocalhost\n") {
		t.Fatalf(`existing entries should be kept got %q`, contents)
	}

	if strings.Contains(string(contents), "r1.as150") {
		t.Fatalf(`the old generated section should be replaced got %q`, contents)
	}

	if strings.Count(string(contents), DOMAIN_TRAILER) != 1 {
		t.Fatalf(`Expected exactly one generated section got %q`, contents)
	}
}

func TestParseLine(t *testing.T) {
	entry, err := ParseLine("10.150.0.254\tr1.as150")

	if err != nil {
		t.Fatal(err)
	}

	if entry.Alias != "r1.as150" || entry.Ip != netip.MustParseAddr("10.150.0.254") {
		t.Fatalf(`unexpected entry %+v`, entry)
	}

	if _, err := ParseLine("10.150.0.254"); err == nil {
		t.Fatal(`error should be thrown`)
	}

	if _, err := ParseLine("notanip r1"); err == nil {
		t.Fatal(`error should be thrown`)
	}
}
