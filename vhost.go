package main

import (
	"fmt"
	"net"
	"strings"
)

// CatchAll is the hostname of a virtual host that answers for any Host,
// including requests that carry none.
const CatchAll = "*"

type VirtualHost struct {
	Hostname     string
	DocumentRoot string
}

// VirtualHostTable is an ordered, immutable list of virtual hosts. It is
// built once at startup and shared by every connection without locking.
type VirtualHostTable struct {
	hosts []VirtualHost
}

// NewVirtualHostTable copies hosts into a new table, normalising hostnames.
// Duplicates are kept; Resolve returns the first one. Use Duplicates to
// report them.
func NewVirtualHostTable(hosts []VirtualHost) (*VirtualHostTable, error) {
	if len(hosts) == 0 {
		return nil, fmt.Errorf("no virtual hosts configured")
	}

	table := &VirtualHostTable{hosts: make([]VirtualHost, 0, len(hosts))}
	for _, vh := range hosts {
		name := normalizeHost(vh.Hostname)
		if name == "" {
			return nil, fmt.Errorf("virtual host with empty hostname (root %q)", vh.DocumentRoot)
		}
		if vh.DocumentRoot == "" {
			return nil, fmt.Errorf("virtual host %q has no document root", name)
		}
		table.hosts = append(table.hosts, VirtualHost{Hostname: name, DocumentRoot: vh.DocumentRoot})
	}
	return table, nil
}

// SingleRootTable serves one document root for every host.
func SingleRootTable(documentRoot string) (*VirtualHostTable, error) {
	return NewVirtualHostTable([]VirtualHost{{Hostname: CatchAll, DocumentRoot: documentRoot}})
}

// Resolve returns the document root for the given Host header value.
func (t *VirtualHostTable) Resolve(host string) (string, bool) {
	name := normalizeHost(host)
	for _, vh := range t.hosts {
		if vh.Hostname == CatchAll || (name != "" && vh.Hostname == name) {
			return vh.DocumentRoot, true
		}
	}
	return "", false
}

// Hosts returns a copy of the table's entries in lookup order.
func (t *VirtualHostTable) Hosts() []VirtualHost {
	return append([]VirtualHost(nil), t.hosts...)
}

// Duplicates lists hostnames configured more than once. Only the first
// entry for each of them is ever used.
func (t *VirtualHostTable) Duplicates() []string {
	seen := make(map[string]int, len(t.hosts))
	var dups []string
	for _, vh := range t.hosts {
		seen[vh.Hostname]++
		if seen[vh.Hostname] == 2 {
			dups = append(dups, vh.Hostname)
		}
	}
	return dups
}

// normalizeHost lowercases a Host value and drops any port, so that
// "Example.com:8080" and "example.com" name the same virtual host.
func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" || host == CatchAll {
		return host
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	// Bracketed IPv6 literal without a port.
	return strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
}
